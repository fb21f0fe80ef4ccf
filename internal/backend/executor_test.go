package backend

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	a := m.Called(ctx, name, args, stdin)
	stdout, _ := a.Get(0).([]byte)
	stderr, _ := a.Get(1).([]byte)
	return stdout, stderr, a.Error(2)
}

func TestExecutor_Execute(t *testing.T) {
	runner := new(MockCommandRunner)
	stdin := bytes.NewReader([]byte("in"))
	args := []string{"-i", "pipe:0", "-f", "wav", "pipe:1"}

	runner.On("Run", mock.Anything, "/usr/bin/ffmpeg", args, stdin).
		Return([]byte("RIFF"), []byte(nil), nil).Once()

	e := NewExecutorWithRunner("/usr/bin/ffmpeg", time.Second, runner)
	out, err := e.Execute(context.Background(), args, stdin)

	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), out)
	runner.AssertExpectations(t)
}

func TestExecutor_Execute_FoldsStderr(t *testing.T) {
	runner := new(MockCommandRunner)
	runner.On("Run", mock.Anything, "ffmpeg", mock.Anything, mock.Anything).
		Return([]byte(nil), []byte("ffmpeg version 6\npipe:0: Invalid data found when processing input\n"), errors.New("exit status 1"))

	e := NewExecutorWithRunner("ffmpeg", 0, runner)
	_, err := e.Execute(context.Background(), nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid data found")
	assert.NotContains(t, err.Error(), "ffmpeg version")
}

func TestNewExecutor_MissingBinary(t *testing.T) {
	_, err := NewExecutor("definitely-not-a-real-binary-name", time.Second)
	assert.ErrorIs(t, err, ErrBinaryNotFound)
}
