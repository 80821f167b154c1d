package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorWrapsUnknownAsInternal(t *testing.T) {
	err := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestCloneKeepsIdentityForErrorsIs(t *testing.T) {
	cloned := Clone(ErrAuthentication, "No signature found")
	wrapped := fmt.Errorf("webhook: %w", cloned)

	assert.True(t, errors.Is(wrapped, ErrAuthentication))
	assert.False(t, errors.Is(wrapped, ErrValidation))
	assert.Equal(t, "No signature found", FromError(wrapped).Message)
	assert.Equal(t, "invalid signature", ErrAuthentication.Message)
}
