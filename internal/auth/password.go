// Package auth holds the credential primitives used by the account service:
// salted password hashing and session token issuance.
package auth

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltBytes        = 32
	hashIterations   = 1000
	derivedKeyLength = 64
)

// Hasher derives per-user salts and PBKDF2-HMAC-SHA512 password hashes.
type Hasher struct {
	iterations int
}

func NewHasher() *Hasher {
	return &Hasher{iterations: hashIterations}
}

// DeriveSalt returns a fresh base64-encoded random salt.
func (h *Hasher) DeriveSalt() (string, error) {
	var buf [saltBytes]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("read random salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf[:]), nil
}

// Hash returns the upper-case hex PBKDF2 digest of password under salt. The
// salt is mixed in as its stored base64 text, not the decoded bytes.
func (h *Hasher) Hash(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), h.iterations, derivedKeyLength, sha512.New)
	return strings.ToUpper(hex.EncodeToString(key))
}

// Verify reports whether password hashes to storedHash under salt.
func (h *Hasher) Verify(password, salt, storedHash string) bool {
	computed := h.Hash(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
