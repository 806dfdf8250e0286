package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0755))
}

func TestClean_RemovesBuildArtifacts(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t)
	root := d.root

	mkdirAll(t, filepath.Join(root, "dist"))
	mkdirAll(t, filepath.Join(root, "build"))
	mkdirAll(t, filepath.Join(root, "pkga.egg-info"))
	mkdirAll(t, filepath.Join(root, "src", "pkga", "__pycache__"))
	mkdirAll(t, filepath.Join(root, "tests", "__pycache__"))

	// Contents inside the environment and .git must survive.
	mkdirAll(t, filepath.Join(root, ".venv", "lib", "__pycache__"))
	mkdirAll(t, filepath.Join(root, ".git", "objects"))

	// Source files survive.
	srcFile := filepath.Join(root, "src", "pkga", "core.py")
	require.NoError(t, os.WriteFile(srcFile, []byte("x = 1\n"), 0644))

	require.NoError(t, d.Run(context.Background(), "clean", nil))

	for _, gone := range []string{
		filepath.Join(root, "dist"),
		filepath.Join(root, "build"),
		filepath.Join(root, "pkga.egg-info"),
		filepath.Join(root, "src", "pkga", "__pycache__"),
		filepath.Join(root, "tests", "__pycache__"),
	} {
		_, err := os.Stat(gone)
		assert.True(t, os.IsNotExist(err), "%s must be removed", gone)
	}

	for _, kept := range []string{
		filepath.Join(root, ".venv", "lib", "__pycache__"),
		filepath.Join(root, ".git", "objects"),
		srcFile,
	} {
		_, err := os.Stat(kept)
		assert.NoError(t, err, "%s must survive clean", kept)
	}
}

func TestClean_NothingToRemove(t *testing.T) {
	d, env, runner, _ := newTestDispatcher(t)

	require.NoError(t, d.Run(context.Background(), "clean", nil))

	// clean is in-process and environment-independent.
	assert.Zero(t, env.calls)
	assert.Empty(t, runner.cmds)
}
