// Package version resolves the project's version tag.
//
// Resolution order: exact git tag on HEAD, then the version declared in
// pyproject.toml, then the short commit hash. This mirrors what a
// git-describe based version target reports.
package version

import (
	"errors"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// ErrUnresolvable means no tag, declared version, or commit was found.
var ErrUnresolvable = errors.New("version could not be resolved")

const shortHashLen = 7

// Resolve returns the version string for the project at root.
func Resolve(root string) (string, error) {
	tag, hash := describeHead(root)
	if tag != "" {
		return tag, nil
	}
	if v := pyprojectVersion(root); v != "" {
		return v, nil
	}
	if hash != "" {
		return hash[:shortHashLen], nil
	}
	return "", ErrUnresolvable
}

// describeHead returns the name of a tag pointing at HEAD (empty if none)
// and the HEAD hash (empty if the repository has no commits).
func describeHead(root string) (tag, hash string) {
	repo, err := git.PlainOpen(root)
	if err != nil {
		return "", ""
	}

	head, err := repo.Head()
	if err != nil {
		return "", ""
	}
	headHash := head.Hash()

	tags, err := repo.Tags()
	if err != nil {
		return "", headHash.String()
	}

	var found string
	_ = tags.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		// Annotated tags point at a tag object, not the commit.
		if tagObj, err := repo.TagObject(ref.Hash()); err == nil {
			target = tagObj.Target
		}
		if target == headHash {
			found = ref.Name().Short()
			return storer.ErrStop
		}
		return nil
	})

	return found, headHash.String()
}

// pyprojectVersion reads [project].version from pyproject.toml, returning
// "" when the file or the field is absent.
func pyprojectVersion(root string) string {
	var doc struct {
		Project struct {
			Version string `toml:"version"`
		} `toml:"project"`
	}
	if _, err := toml.DecodeFile(filepath.Join(root, "pyproject.toml"), &doc); err != nil {
		return ""
	}
	return doc.Project.Version
}
