package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrapf(ErrExternal, "claude API error (%d)", 529)

	assert.True(t, Is(err, ErrExternal))
	assert.Equal(t, "claude API error (529): external service error", err.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestMultiError(t *testing.T) {
	var m MultiError
	assert.Nil(t, m.ToError())

	m.Add(nil)
	assert.False(t, m.HasErrors())

	m.Add(Wrap(ErrTimeout, "claude"))
	m.Add(Wrap(ErrProviderNotConfigured, "openai"))

	err := m.ToError()
	assert.Error(t, err)
	assert.True(t, Is(err, ErrTimeout))
	assert.True(t, Is(err, ErrProviderNotConfigured))
	assert.Contains(t, err.Error(), "multiple errors (2)")
}

func TestValidationErrorMatchesInvalidInput(t *testing.T) {
	err := Wrap(NewValidationError("comments", "comments array is required"), "decode request")

	assert.True(t, Is(err, ErrInvalidInput))

	var ve *ValidationError
	assert.True(t, As(err, &ve))
	assert.Equal(t, "comments", ve.Field)
}
