package tasks

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// cleanDirs are the build output directories removed from the project root.
var cleanDirs = []string{"dist", "build"}

// clean removes build artifacts: dist/, build/, *.egg-info at the root,
// and __pycache__ trees everywhere except the environment and .git.
func (d *Dispatcher) clean(ctx context.Context) error {
	for _, dir := range cleanDirs {
		if err := d.removeAll(filepath.Join(d.root, dir)); err != nil {
			return err
		}
	}

	eggInfo, err := filepath.Glob(filepath.Join(d.root, "*.egg-info"))
	if err != nil {
		return fmt.Errorf("failed to glob egg-info: %w", err)
	}
	for _, path := range eggInfo {
		if err := d.removeAll(path); err != nil {
			return err
		}
	}

	caches, err := d.findPycaches(ctx)
	if err != nil {
		return err
	}
	for _, path := range caches {
		if err := d.removeAll(path); err != nil {
			return err
		}
	}
	return nil
}

// findPycaches collects __pycache__ directories under the root, skipping
// the environment directory and .git.
func (d *Dispatcher) findPycaches(ctx context.Context) ([]string, error) {
	var caches []string
	err := filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !entry.IsDir() || path == d.root {
			return nil
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		if rel == d.venvDir || entry.Name() == ".git" {
			return filepath.SkipDir
		}
		if entry.Name() == "__pycache__" {
			caches = append(caches, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for bytecode caches: %w", err)
	}
	return caches, nil
}

func (d *Dispatcher) removeAll(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	d.log.Debug("removing", zap.String("path", path))
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
