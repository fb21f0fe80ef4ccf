package xfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "logs", "lingua.log"), ExpandTilde("~/logs/lingua.log"))
	assert.Equal(t, home, ExpandTilde("~"))
	assert.Equal(t, "/var/log/lingua.log", ExpandTilde("/var/log/lingua.log"))
	assert.Equal(t, "~user/file", ExpandTilde("~user/file"))
}

func TestEnsureDir(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "a", "b", "lingua.log")

	require.NoError(t, EnsureDir(target))

	info, err := os.Stat(filepath.Join(root, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
