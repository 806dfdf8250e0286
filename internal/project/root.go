// Package project locates the project root for venvtask.
//
// The root is the work tree of the enclosing git repository. All relative
// paths in the tool (environment directory, requirements manifest, config
// file) resolve against it.
package project

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

// Common errors.
var (
	ErrRootNotFound = errors.New("project root not found")
	ErrBareRepo     = errors.New("repository has no work tree")
)

// FindRoot discovers the project root by walking up from dir to the
// repository boundary. It returns an absolute path.
func FindRoot(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", dir, err)
	}

	repo, err := git.PlainOpenWithOptions(absDir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s is not inside a git repository", ErrRootNotFound, absDir)
		}
		return "", fmt.Errorf("%w: %v", ErrRootNotFound, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return "", fmt.Errorf("%w: %s", ErrBareRepo, absDir)
		}
		return "", fmt.Errorf("failed to resolve work tree: %w", err)
	}

	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return "", fmt.Errorf("failed to resolve work tree root: %w", err)
	}
	return root, nil
}
