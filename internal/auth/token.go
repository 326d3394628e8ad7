package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is the validity window of a freshly issued token.
const DefaultSessionTTL = 8 * time.Hour

// TokenIssuer mints signed access tokens. Tokens are authorized by looking
// them up in the session store, so the signature only guarantees integrity.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is required")
	}
	return &TokenIssuer{secret: []byte(secret)}, nil
}

// Issue signs a token for userID valid between issuedAt and expiresAt.
// Every call yields a distinct token through a random jti.
func (i *TokenIssuer) Issue(userID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Audience:  jwt.ClaimStrings{userID},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return token.SignedString(i.secret)
}
