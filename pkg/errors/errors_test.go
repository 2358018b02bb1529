package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorWrapsPlainErrors(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestCloneKeepsCodeAndMatches(t *testing.T) {
	clone := Clone(ErrValidation, "title is required")
	assert.Equal(t, "title is required", clone.Message)
	assert.Equal(t, ErrValidation.Code, clone.Code)
	assert.True(t, errors.Is(clone, ErrValidation))
	assert.False(t, errors.Is(clone, ErrNotFound))
	assert.Equal(t, "validation failed", ErrValidation.Message, "template must stay untouched")
}

func TestIsCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("layer: %w", Clone(ErrNotFound, "room not found"))
	assert.True(t, IsCode(err, ErrNotFound.Code))
	assert.False(t, IsCode(err, ErrValidation.Code))
	assert.False(t, IsCode(nil, ErrNotFound.Code))
}
