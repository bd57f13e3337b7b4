package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"contactbook/apperr"
	"contactbook/models"
)

const uniqueViolation = "23505"

// UserStore owns persisted user records. Mutations are single atomic
// statements keyed by user id (or by verification token), so concurrent
// requests never observe a partially applied state.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, avatarURL, verificationToken string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// SetActiveToken stores token as the user's only valid session token;
	// nil clears it (logout).
	SetActiveToken(ctx context.Context, id string, token *string) error
	// ConsumeVerificationToken marks the holder verified and clears the
	// token in one statement. A second call with the same token reports
	// not-found.
	ConsumeVerificationToken(ctx context.Context, token string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id, avatarURL string) error
}

type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

const userColumns = `id, email, password_hash, active_token, avatar_url, verification_token, verified, subscription, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var activeToken, verificationToken sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &activeToken, &u.AvatarURL,
		&verificationToken, &u.Verified, &u.Subscription, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if activeToken.Valid {
		u.ActiveToken = &activeToken.String
	}
	if verificationToken.Valid {
		u.VerificationToken = &verificationToken.String
	}
	return &u, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, email, passwordHash, avatarURL, verificationToken string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, password_hash, avatar_url, verification_token)
		VALUES (lower($1), $2, $3, $4)
		RETURNING `+userColumns,
		email, passwordHash, avatarURL, verificationToken)

	u, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, apperr.Conflict("Email in use")
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = lower($1)`, email)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user by email: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("fetching user by id: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) SetActiveToken(ctx context.Context, id string, token *string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET active_token = $2 WHERE id = $1`, id, token)
	if err != nil {
		return fmt.Errorf("updating active token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}

func (s *PostgresUserStore) ConsumeVerificationToken(ctx context.Context, token string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET verified = TRUE, verification_token = NULL
		WHERE verification_token = $1
		RETURNING `+userColumns,
		token)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("consuming verification token: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) UpdateAvatar(ctx context.Context, id, avatarURL string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET avatar_url = $2 WHERE id = $1`, id, avatarURL)
	if err != nil {
		return fmt.Errorf("updating avatar: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("User not found")
	}
	return nil
}
