package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("dispatch: %w", Server(KindBackendUnavailable, "backend call failed", cause))

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindBackendUnavailable))
	assert.False(t, IsClient(err))
	assert.Equal(t, "BACKEND_UNAVAILABLE_backend call failed", Summarize(err))
}

func TestClient(t *testing.T) {
	err := Client(KindNotFound, "invalid service id", nil)

	assert.True(t, IsClient(err))
	assert.EqualError(t, err, "NOT_FOUND: invalid service id")
}

func TestSummarize_PlainError(t *testing.T) {
	assert.Equal(t, "", Summarize(nil))
	assert.Equal(t, "boom", Summarize(errors.New("boom")))
}
