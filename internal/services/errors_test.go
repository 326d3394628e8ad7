package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_CodesAndKinds(t *testing.T) {
	tests := []struct {
		err  *Error
		kind Kind
		code string
	}{
		{ErrUsernameTaken, KindConflict, "SGR-001"},
		{ErrEmailTaken, KindConflict, "SGR-002"},
		{ErrUnknownUser, KindAuthentication, "ATH-001"},
		{ErrBadPassword, KindAuthentication, "ATH-002"},
		{ErrNotSignedIn, KindSignOut, "SGR-001"},
		{ErrUnauthorizedNotSignedIn, KindAuthorization, "ATHR-001"},
		{ErrUnauthorizedSignedOut, KindAuthorization, "ATHR-002"},
		{ErrUserNotFound, KindNotFound, "USR-001"},
	}
	for _, tc := range tests {
		t.Run(tc.code+"/"+tc.kind.String(), func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.err.Kind)
			assert.Equal(t, tc.code, tc.err.Code)
			assert.NotEmpty(t, tc.err.Message)
		})
	}
}

func TestError_UnwrapsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("signin: %w", ErrBadPassword)

	var target *Error
	assert.True(t, errors.As(wrapped, &target))
	assert.Equal(t, "ATH-002", target.Code)
	assert.Equal(t, "ATH-002: Password Failed", ErrBadPassword.Error())
}
