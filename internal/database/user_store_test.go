package database

import (
	"context"
	"testing"
	"time"

	"github.com/01moynul/taptosell-cart/internal/auth"
	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockUserStore(t *testing.T) (*UserStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewUserStore(db), mock
}

func TestUserStoreCreateUser(t *testing.T) {
	user := models.User{
		ID:           uuid.New(),
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         models.RoleCustomer,
		CreatedAt:    time.Now().UTC(),
	}

	t.Run("insert", func(t *testing.T) {
		store, mock := newMockUserStore(t)
		mock.ExpectExec(sqlRe("INSERT INTO users")).
			WithArgs(user.ID.String(), "Ada", "ada@example.com", "$2a$10$hash", "customer", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.CreateUser(context.Background(), user))
	})

	t.Run("duplicate email", func(t *testing.T) {
		store, mock := newMockUserStore(t)
		mock.ExpectExec(sqlRe("INSERT INTO users")).
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'ada@example.com'"})

		err := store.CreateUser(context.Background(), user)
		assert.ErrorIs(t, err, auth.ErrEmailTaken)
	})
}

func TestUserStoreGetUserByEmail(t *testing.T) {
	columns := []string{"user_id", "name", "email", "password_hash", "role", "created_at"}
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		store, mock := newMockUserStore(t)
		mock.ExpectQuery(sqlRe("FROM users WHERE email = ?")).
			WithArgs("ada@example.com").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id.String(), "Ada", "ada@example.com", "hash", "seller", time.Now()))

		u, err := store.GetUserByEmail(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, u.ID)
		assert.Equal(t, models.RoleSeller, u.Role)
	})

	t.Run("not found", func(t *testing.T) {
		store, mock := newMockUserStore(t)
		mock.ExpectQuery(sqlRe("FROM users")).WillReturnRows(sqlmock.NewRows(columns))

		_, err := store.GetUserByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, auth.ErrUserNotFound)
	})

	t.Run("unknown stored role", func(t *testing.T) {
		store, mock := newMockUserStore(t)
		mock.ExpectQuery(sqlRe("FROM users")).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(id.String(), "Ada", "ada@example.com", "hash", "superuser", time.Now()))

		_, err := store.GetUserByEmail(context.Background(), "ada@example.com")
		assert.Error(t, err)
	})
}
