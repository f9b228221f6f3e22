package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserErrorMessageAndUnwrap(t *testing.T) {
	err := NewUserError("that row was already amended", ErrSuperseded)

	assert.ErrorIs(t, err, ErrSuperseded)

	var userErr *UserError
	assert.ErrorAs(t, err, &userErr)
	assert.Equal(t, "that row was already amended", userErr.UserMessage)
	assert.Contains(t, err.Error(), "already superseded")
}

func TestUserErrorWithoutCause(t *testing.T) {
	err := &UserError{UserMessage: "nothing to show"}
	assert.Equal(t, "nothing to show", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}
