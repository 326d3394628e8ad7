package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

var (
	// ErrUsernameTaken is returned when an insert violates users_username_key.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken is returned when an insert violates users_email_key.
	ErrEmailTaken = errors.New("email already exists")
	// ErrDuplicateToken is returned when an access token collides.
	ErrDuplicateToken = errors.New("access token already exists")
)

const uniqueViolation = pq.ErrorCode("23505")

const (
	constraintUsername    = "users_username_key"
	constraintEmail       = "users_email_key"
	constraintAccessToken = "user_auth_tokens_access_token_key"
)

// translateUniqueViolation maps unique-constraint failures onto store errors
// and returns any other error unchanged.
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	switch pqErr.Constraint {
	case constraintUsername:
		return ErrUsernameTaken
	case constraintEmail:
		return ErrEmailTaken
	case constraintAccessToken:
		return ErrDuplicateToken
	default:
		return err
	}
}
