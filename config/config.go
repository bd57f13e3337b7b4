package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendMongo = "mongo"
	BackendFile  = "file"
)

type Config struct {
	Port        string        `env:"PORT" envDefault:"8080"`
	DatabaseURL string        `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret   string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"1h"`

	// ContactsBackend selects where contacts live. The file backend is
	// single-process only; see services.FileContactStore.
	ContactsBackend string `env:"CONTACTS_BACKEND" envDefault:"mongo"`
	MongoURI        string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase   string `env:"MONGO_DATABASE" envDefault:"contactbook"`
	ContactsFile    string `env:"CONTACTS_FILE" envDefault:"db/contacts.json"`

	SendGridKey string `env:"SENDGRID_API_KEY"`
	MailFrom    string `env:"MAIL_FROM" envDefault:"no-reply@contactbook.local"`
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	AvatarDir string `env:"AVATAR_DIR" envDefault:"public/avatars"`
	TmpDir    string `env:"TMP_DIR" envDefault:"tmp"`

	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.ContactsBackend != BackendMongo && cfg.ContactsBackend != BackendFile {
		return nil, fmt.Errorf("CONTACTS_BACKEND must be %q or %q, got %q",
			BackendMongo, BackendFile, cfg.ContactsBackend)
	}
	return cfg, nil
}
