package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a non-bare repository in a fresh temp dir.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir
}

func TestFindRoot_AtRepositoryRoot(t *testing.T) {
	dir := initRepo(t)

	root, err := FindRoot(dir)
	require.NoError(t, err)

	// TempDir may sit behind a symlink (e.g. /tmp on macOS), so compare
	// resolved paths.
	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

func TestFindRoot_FromNestedDirectory(t *testing.T) {
	dir := initRepo(t)
	nested := filepath.Join(dir, "src", "pkg")
	require.NoError(t, os.MkdirAll(nested, 0755))

	root, err := FindRoot(nested)
	require.NoError(t, err)

	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

func TestFindRoot_OutsideRepository(t *testing.T) {
	dir := t.TempDir()

	_, err := FindRoot(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestFindRoot_BareRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, true)
	require.NoError(t, err)

	// A bare repository has no work tree to serve as a project root.
	// Depending on how detection resolves this surfaces as either
	// ErrBareRepo or ErrRootNotFound; both reject the directory.
	_, err = FindRoot(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBareRepo) || errors.Is(err, ErrRootNotFound),
		"unexpected error: %v", err)
}
