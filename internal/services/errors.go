package services

import "fmt"

// Kind classifies an expected, user-facing failure.
type Kind int

const (
	KindConflict Kind = iota + 1
	KindAuthentication
	KindSignOut
	KindAuthorization
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	case KindSignOut:
		return "signout"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a failure surfaced verbatim to clients as {code, message}.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrUsernameTaken = &Error{KindConflict, "SGR-001", "Try any other Username, this Username has already been taken"}
	ErrEmailTaken    = &Error{KindConflict, "SGR-002", "This user has already been registered, try with any other emailId"}

	ErrUnknownUser = &Error{KindAuthentication, "ATH-001", "This username does not exist"}
	ErrBadPassword = &Error{KindAuthentication, "ATH-002", "Password Failed"}

	ErrNotSignedIn = &Error{KindSignOut, "SGR-001", "User is not Signed in."}

	ErrUnauthorizedNotSignedIn = &Error{KindAuthorization, "ATHR-001", "User has not signed in"}
	ErrUnauthorizedSignedOut   = &Error{KindAuthorization, "ATHR-002", "User is signed out.Sign in first to get user details"}

	ErrUserNotFound = &Error{KindNotFound, "USR-001", "User with entered uuid does not exist ."}
)
