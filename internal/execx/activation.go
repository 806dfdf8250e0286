// Package execx runs task subprocesses with an explicit activation context.
//
// Activation is modeled as an immutable value threaded into every
// invocation instead of mutated process-global state. Repeated application
// cannot stack duplicate search-path entries, which is the failure mode of
// appending to $PATH on every activation.
package execx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by LookPath when no candidate is executable.
var ErrNotFound = errors.New("executable not found")

// Activation describes the environment an activated subprocess runs in.
type Activation struct {
	// PathPrefix lists directories prepended to the search path, highest
	// precedence first.
	PathPrefix []string

	// Vars are environment variables set for the subprocess.
	Vars map[string]string

	// Drop lists environment variables removed from the subprocess
	// environment entirely.
	Drop []string
}

// PathEntries merges the activation prefix with the ambient search path
// taken from base (a slice in os.Environ form). Prefix entries appear
// exactly once and before every ambient entry, no matter how many times
// the activation has already been applied.
func (a *Activation) PathEntries(base []string) []string {
	ambient := filepath.SplitList(lookupEnv(base, "PATH"))
	if a == nil {
		return ambient
	}

	seen := make(map[string]struct{}, len(a.PathPrefix))
	entries := make([]string, 0, len(a.PathPrefix)+len(ambient))
	for _, dir := range a.PathPrefix {
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		entries = append(entries, dir)
	}
	for _, dir := range ambient {
		if _, ok := seen[dir]; ok {
			continue
		}
		entries = append(entries, dir)
	}
	return entries
}

// Environ builds the full subprocess environment from base. PATH is
// replaced with the merged entries from PathEntries; Vars override and
// Drop removes matching base variables.
func (a *Activation) Environ(base []string) []string {
	merged := strings.Join(a.PathEntries(base), string(os.PathListSeparator))
	if a == nil {
		return replaceEnv(base, map[string]string{"PATH": merged}, nil)
	}

	overrides := make(map[string]string, len(a.Vars)+1)
	for k, v := range a.Vars {
		overrides[k] = v
	}
	overrides["PATH"] = merged
	return replaceEnv(base, overrides, a.Drop)
}

// LookPath resolves name through the activation's merged search path. An
// absolute or slash-containing name is checked directly. A nil receiver
// searches the ambient path only.
func (a *Activation) LookPath(name string, base []string) (string, error) {
	if strings.Contains(name, string(os.PathSeparator)) {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	for _, dir := range a.PathEntries(base) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}

// lookupEnv finds key in an os.Environ-form slice.
func lookupEnv(environ []string, key string) string {
	prefix := key + "="
	for _, kv := range environ {
		if strings.HasPrefix(kv, prefix) {
			return kv[len(prefix):]
		}
	}
	return ""
}

// replaceEnv returns base with overrides applied and drop keys removed.
func replaceEnv(base []string, overrides map[string]string, drop []string) []string {
	skip := make(map[string]struct{}, len(overrides)+len(drop))
	for k := range overrides {
		skip[k] = struct{}{}
	}
	for _, k := range drop {
		skip[k] = struct{}{}
	}

	out := make([]string, 0, len(base)+len(overrides))
	for _, kv := range base {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, skipped := skip[key]; skipped {
			continue
		}
		out = append(out, kv)
	}
	for k, v := range overrides {
		out = append(out, k+"="+v)
	}
	return out
}
