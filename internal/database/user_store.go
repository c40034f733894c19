package database

import (
	"context"
	"database/sql"

	"github.com/01moynul/taptosell-cart/internal/auth"
	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/pkg/errors"
)

// UserStore is the MySQL implementation of auth.UserStore.
type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (user_id, name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role.String(), u.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return auth.ErrEmailTaken
		}
		return errors.Wrap(err, "insert user")
	}
	return nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var (
		u    models.User
		role string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, name, email, password_hash, role, created_at
		FROM users
		WHERE email = ?`, email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, auth.ErrUserNotFound
		}
		return models.User{}, errors.Wrap(err, "select user")
	}

	u.Role, err = models.ParseRole(role)
	if err != nil {
		return models.User{}, errors.Wrapf(err, "user %s", u.ID)
	}
	return u, nil
}
