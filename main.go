package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"contactbook/config"
	"contactbook/db"
	"contactbook/handlers"
	"contactbook/middleware"
	"contactbook/services"
)

func runMigrations(log *slog.Logger) {
	sqlBytes, err := os.ReadFile("schema.sql")
	if err != nil {
		log.Error("failed to read schema.sql", "err", err)
		os.Exit(1)
	}

	if _, err := db.GetDB().Exec(string(sqlBytes)); err != nil {
		log.Error("failed to apply schema", "err", err)
		os.Exit(1)
	}
	log.Info("database schema verified")
}

func newContactStore(cfg *config.Config, log *slog.Logger) services.ContactStore {
	if cfg.ContactsBackend == config.BackendFile {
		log.Warn("file contact backend is single-process only; use mongo for multi-client deployments")
		store, err := services.NewFileContactStore(cfg.ContactsFile)
		if err != nil {
			log.Error("failed to open contacts file", "err", err)
			os.Exit(1)
		}
		return store
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := db.InitMongo(ctx, cfg.MongoURI)
	if err != nil {
		log.Error("failed to connect to mongo", "err", err)
		os.Exit(1)
	}
	return services.NewMongoContactStore(client.Database(cfg.MongoDatabase))
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	if err := db.InitDB(cfg.DatabaseURL); err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	runMigrations(log)

	users := services.NewPostgresUserStore(db.GetDB())
	tokens := services.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	mailer := services.NewSendGridMailer(cfg.SendGridKey, cfg.MailFrom, cfg.BaseURL, log)
	avatars, err := services.NewAvatarService(cfg.TmpDir, cfg.AvatarDir, log)
	if err != nil {
		log.Error("failed to prepare avatar directories", "err", err)
		os.Exit(1)
	}
	contacts := newContactStore(cfg, log)

	auth := &handlers.AuthHandler{
		Users:   users,
		Tokens:  tokens,
		Mailer:  mailer,
		Avatars: avatars,
		Log:     log,
		Timeout: cfg.StoreTimeout,
	}
	contactsHandler := &handlers.ContactsHandler{
		Store:   contacts,
		Log:     log,
		Timeout: cfg.StoreTimeout,
	}
	authRequired := middleware.AuthRequired(users, tokens, cfg.StoreTimeout)

	r := gin.Default()
	r.Static("/avatars", cfg.AvatarDir)

	u := r.Group("/users")
	{
		u.POST("/register", auth.Register)
		u.POST("/login", auth.Login)
		u.POST("/logout", authRequired, auth.Logout)
		u.GET("/current", authRequired, auth.Current)
		u.PATCH("/avatars", authRequired, auth.UpdateAvatar)
		u.GET("/verify/:token", auth.Verify)
		u.POST("/verify", auth.ResendVerification)
	}

	cg := r.Group("/contacts", authRequired)
	{
		cg.GET("", contactsHandler.List)
		cg.GET("/:id", contactsHandler.Get)
		cg.POST("", contactsHandler.Create)
		cg.PUT("/:id", contactsHandler.Update)
		cg.PATCH("/:id/favorite", contactsHandler.SetFavorite)
		cg.DELETE("/:id", contactsHandler.Delete)
	}

	log.Info("server starting", "port", cfg.Port, "contacts_backend", cfg.ContactsBackend)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
