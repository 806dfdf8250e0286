package execx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command is a single subprocess invocation.
type Command struct {
	// Name is the executable, resolved through the activation's search
	// path when not an absolute path.
	Name string

	// Args are the arguments, exec form (no shell interpretation).
	Args []string

	// Dir is the working directory.
	Dir string
}

// String renders the command for diagnostics.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// ExitError reports a subprocess that ran and exited non-zero. The code
// propagates unchanged to the venvtask exit status.
type ExitError struct {
	Cmd  string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Cmd, e.Code)
}

// ExitCode maps an error to a process exit status: 0 on nil, the
// subprocess's own code for an ExitError, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Runner executes commands. The interface exists so the bootstrapper and
// dispatcher can be tested with a recording fake.
type Runner interface {
	// Run executes cmd under the given activation (nil means ambient
	// environment) and blocks until it exits.
	Run(ctx context.Context, cmd Command, act *Activation) error
}

// ExecRunner runs commands with os/exec, streaming output through.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer

	// Base is the base environment in os.Environ form. Nil means the
	// current process environment, captured per invocation.
	Base []string
}

// NewRunner returns a runner wired to the given output streams.
func NewRunner(stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{Stdout: stdout, Stderr: stderr}
}

// Run executes cmd. The executable is resolved through the activation's
// merged search path by hand: exec.Command would consult the parent
// process's own PATH, which is exactly the ambient state activation is
// meant to shadow.
func (r *ExecRunner) Run(ctx context.Context, cmd Command, act *Activation) error {
	base := r.Base
	if base == nil {
		base = os.Environ()
	}

	path, err := act.LookPath(cmd.Name, base)
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", cmd.Name, err)
	}

	c := exec.CommandContext(ctx, path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = act.Environ(base)
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr
	c.Stdin = os.Stdin

	if err := c.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Cmd: cmd.String(), Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run %q: %w", cmd.String(), err)
	}
	return nil
}
