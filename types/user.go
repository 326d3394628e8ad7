package types

import "time"

// DefaultRole is assigned to every account created through signup.
const DefaultRole = "nonadmin"

// User represents a registered account.
// It contains identity, credentials, profile, and audit metadata.
type User struct {
	// ID is the system-generated UUID of the user.
	ID string `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"userName" db:"username"`

	// Email is the user's unique email address.
	Email string `json:"emailAddress" db:"email"`

	// PasswordHash stores the salted hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Salt is the per-user random value mixed into PasswordHash.
	Salt string `json:"-" db:"salt"`

	FirstName     string `json:"firstName" db:"first_name"`
	LastName      string `json:"lastName" db:"last_name"`
	Country       string `json:"country" db:"country"`
	AboutMe       string `json:"aboutMe" db:"about_me"`
	DOB           string `json:"dob" db:"dob"`
	ContactNumber string `json:"contactNumber" db:"contact_number"`

	// Role is a free-form tag such as "admin" or "nonadmin".
	Role string `json:"role" db:"role"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Profile is the public view of a user.
type Profile struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	UserName      string `json:"userName"`
	EmailAddress  string `json:"emailAddress"`
	AboutMe       string `json:"aboutMe"`
	Country       string `json:"country"`
	ContactNumber string `json:"contactNumber"`
	DOB           string `json:"dob"`
}

// Profile projects the user onto its public fields.
func (u User) Profile() Profile {
	return Profile{
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		UserName:      u.Username,
		EmailAddress:  u.Email,
		AboutMe:       u.AboutMe,
		Country:       u.Country,
		ContactNumber: u.ContactNumber,
		DOB:           u.DOB,
	}
}
