package execx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv(path string) []string {
	return []string{"HOME=/home/u", "PATH=" + path}
}

func TestActivation_PathEntries_PrefixFirst(t *testing.T) {
	act := &Activation{PathPrefix: []string{"/p/.venv/bin", "/p/bin"}}

	entries := act.PathEntries(baseEnv("/usr/bin:/bin"))

	assert.Equal(t, []string{"/p/.venv/bin", "/p/bin", "/usr/bin", "/bin"}, entries)
}

func TestActivation_PathEntries_NoDuplicateOnReapply(t *testing.T) {
	act := &Activation{PathPrefix: []string{"/p/.venv/bin", "/p/bin"}}
	base := baseEnv("/usr/bin:/bin")

	// Apply repeatedly, feeding each result back in as the ambient
	// environment. The prefix must appear at most once regardless of how
	// many times activation already happened.
	env := base
	for i := 0; i < 3; i++ {
		env = act.Environ(env)
	}

	path := lookupEnv(env, "PATH")
	entries := filepath.SplitList(path)
	assert.Equal(t, []string{"/p/.venv/bin", "/p/bin", "/usr/bin", "/bin"}, entries)
	assert.Equal(t, 1, strings.Count(path, "/p/.venv/bin"))
}

func TestActivation_Environ_VarsAndDrop(t *testing.T) {
	act := &Activation{
		PathPrefix: []string{"/p/.venv/bin"},
		Vars:       map[string]string{"VIRTUAL_ENV": "/p/.venv"},
		Drop:       []string{"PYTHONHOME"},
	}
	base := append(baseEnv("/usr/bin"), "PYTHONHOME=/opt/py")

	env := act.Environ(base)

	assert.Equal(t, "/p/.venv", lookupEnv(env, "VIRTUAL_ENV"))
	assert.Equal(t, "/home/u", lookupEnv(env, "HOME"))
	for _, kv := range env {
		assert.False(t, strings.HasPrefix(kv, "PYTHONHOME="), "PYTHONHOME must be dropped, got %q", kv)
	}
}

func TestActivation_Nil_IsAmbient(t *testing.T) {
	var act *Activation
	base := baseEnv("/usr/bin:/bin")

	assert.Equal(t, []string{"/usr/bin", "/bin"}, act.PathEntries(base))
	assert.Equal(t, "/usr/bin:/bin", lookupEnv(act.Environ(base), "PATH"))
}

// writeStub installs a fake executable named name under dir.
func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	return path
}

func TestActivation_LookPath_PrefersPrefix(t *testing.T) {
	venvBin := filepath.Join(t.TempDir(), "bin")
	systemBin := filepath.Join(t.TempDir(), "bin")
	venvTool := writeStub(t, venvBin, "tool", "exit 0")
	writeStub(t, systemBin, "tool", "exit 0")

	act := &Activation{PathPrefix: []string{venvBin}}
	base := baseEnv(systemBin)

	got, err := act.LookPath("tool", base)
	require.NoError(t, err)
	assert.Equal(t, venvTool, got)
}

func TestActivation_LookPath_EnvironmentOnlyTool(t *testing.T) {
	// A tool installed only inside the environment resolves through the
	// activation but not through the ambient path.
	venvBin := filepath.Join(t.TempDir(), "bin")
	systemBin := filepath.Join(t.TempDir(), "bin")
	require.NoError(t, os.MkdirAll(systemBin, 0755))
	writeStub(t, venvBin, "pkga", "exit 0")

	base := baseEnv(systemBin)

	act := &Activation{PathPrefix: []string{venvBin}}
	_, err := act.LookPath("pkga", base)
	require.NoError(t, err)

	var ambient *Activation
	_, err = ambient.LookPath("pkga", base)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestActivation_LookPath_NonExecutableSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tool"), []byte("data"), 0644))

	act := &Activation{PathPrefix: []string{dir}}
	_, err := act.LookPath("tool", baseEnv(""))
	assert.ErrorIs(t, err, ErrNotFound)
}
