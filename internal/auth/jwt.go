package auth

import (
	"fmt"
	"time"

	"github.com/01moynul/taptosell-cart/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of an access token. Subject carries the user ID.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 access token for the principal.
func (a *Authenticator) IssueToken(p models.Principal) (string, error) {
	now := a.now()
	claims := Claims{
		Role: p.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature, algorithm and expiry, then rebuilds the
// principal from the claims.
func (a *Authenticator) ParseToken(tokenString string) (models.Principal, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return models.Principal{}, fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: invalid subject claim", ErrUnauthenticated)
	}
	role, err := models.ParseRole(claims.Role)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: invalid role claim", ErrUnauthenticated)
	}
	return models.Principal{UserID: userID, Role: role}, nil
}

func defaultNow() time.Time {
	return time.Now()
}
