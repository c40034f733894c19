package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/01moynul/taptosell-cart/internal/config"
	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrEmailTaken      = errors.New("email is already registered")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidRole     = errors.New("role must be customer or seller")
	ErrInvalidInput    = errors.New("missing required data")
)

// UserStore persists accounts for registration and login.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
}

// Credentials is the login body.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the registration body. Role defaults to customer.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
}

type Authenticator struct {
	users    UserStore
	validate *validator.Validate
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthenticator(users UserStore, cfg config.AuthConfig) *Authenticator {
	return &Authenticator{
		users:    users,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.TokenTTL,
		now:      defaultNow,
	}
}

// check runs the struct tags of a request body. The message names the
// first offending field.
func (a *Authenticator) check(body any) error {
	err := a.validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s failed %s", ErrInvalidInput, strings.ToLower(fe.Field()), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

// registrableRole resolves the submitted role. Admin accounts are never
// created through registration.
func registrableRole(raw string) (models.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return models.RoleCustomer, nil
	}
	role, err := models.ParseRole(raw)
	if err != nil || (role != models.RoleCustomer && role != models.RoleSeller) {
		return models.RoleUnknown, ErrInvalidRole
	}
	return role, nil
}

// Register creates an account with a bcrypt password hash.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := a.check(in); err != nil {
		return models.User{}, err
	}
	role, err := registrableRole(in.Role)
	if err != nil {
		return models.User{}, err
	}

	var password models.Password
	if err := password.Set(in.Password); err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: password.Hash,
		Role:         role,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate checks credentials and returns the principal they belong to.
// Unknown email and wrong password fail the same way.
func (a *Authenticator) Authenticate(ctx context.Context, creds Credentials) (models.Principal, error) {
	creds.Email = strings.ToLower(strings.TrimSpace(creds.Email))
	if err := a.check(creds); err != nil {
		return models.Principal{}, err
	}
	user, err := a.users.GetUserByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.Principal{}, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
		}
		return models.Principal{}, err
	}

	password := models.Password{Hash: user.PasswordHash}
	ok, err := password.Matches(creds.Password)
	if err != nil {
		return models.Principal{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return models.Principal{}, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}
	return models.Principal{UserID: user.ID, Role: user.Role}, nil
}
