package authstore_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botfleet/internal/infra/authstore"
)

func TestRoot_EnsureAndExists(t *testing.T) {
	root := authstore.NewRoot(t.TempDir())

	assert.False(t, root.Exists("acme", "bot1"))

	dir, err := root.Ensure("acme", "bot1")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.True(t, root.Exists("acme", "bot1"))
}

func TestRoot_CredentialsPath(t *testing.T) {
	root := authstore.NewRoot("auth")
	got := root.CredentialsPath("acme", "bot1")
	assert.Equal(t, filepath.Join("auth", "acme", "bot_bot1", "credentials.json"), got)
}

func TestRoot_Remove(t *testing.T) {
	root := authstore.NewRoot(t.TempDir())
	_, err := root.Ensure("acme", "bot1")
	require.NoError(t, err)

	require.NoError(t, root.Remove("acme", "bot1"))
	assert.False(t, root.Exists("acme", "bot1"))
}

func TestRoot_Move(t *testing.T) {
	base := t.TempDir()
	root := authstore.NewRoot(base)

	dir, err := root.Ensure("acme", "bot1")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.json"), []byte("x"), 0o600))

	require.NoError(t, root.Move("acme", "globex", "bot1"))

	assert.False(t, root.Exists("acme", "bot1"))
	assert.True(t, root.Exists("globex", "bot1"))

	data, err := os.ReadFile(root.CredentialsPath("globex", "bot1"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestRoot_MoveNonExistentIsNoop(t *testing.T) {
	root := authstore.NewRoot(t.TempDir())
	assert.NoError(t, root.Move("acme", "globex", "missing"))
}
