// Package tasks maps task names to fixed command sequences and runs them
// against the activated environment.
package tasks

import (
	"context"
	"errors"

	"github.com/fyrsmithlabs/venvtask/internal/execx"
)

// ErrUnknownTask means the requested name is not in the task table. No
// subprocess runs for an unknown task.
var ErrUnknownTask = errors.New("unknown task")

// Task is one entry of the static task table.
type Task struct {
	Name    string
	Summary string

	// NeedsEnv makes Run establish the environment before the body.
	NeedsEnv bool

	// Commands is the fixed argv sequence, run in order, fail-fast.
	// Executables resolve through the activation's search path.
	Commands [][]string

	// Action is an in-process body for tasks that are not plain command
	// sequences. Set instead of Commands.
	Action func(ctx context.Context, d *Dispatcher, act *execx.Activation, args []string) error
}

// table is the fixed task set, in help display order. It is populated in
// init rather than a package-level initializer: the clean-build and help
// actions reach back through Lookup and All, which would otherwise make
// the initializer depend on itself.
var table []Task

func init() {
	table = []Task{
		{
			Name:     "build",
			Summary:  "Build source and wheel distributions",
			NeedsEnv: true,
			Commands: [][]string{{"python", "-m", "build"}},
		},
		{
			Name:    "clean",
			Summary: "Remove build artifacts and bytecode caches",
			Action: func(ctx context.Context, d *Dispatcher, _ *execx.Activation, _ []string) error {
				return d.clean(ctx)
			},
		},
		{
			Name:     "clean-build",
			Summary:  "Clean, then build distributions",
			NeedsEnv: true,
			Action: func(ctx context.Context, d *Dispatcher, act *execx.Activation, _ []string) error {
				if err := d.clean(ctx); err != nil {
					return err
				}
				build, _ := Lookup("build")
				return d.runCommands(ctx, build, act, nil)
			},
		},
		{
			Name:     "test",
			Summary:  "Run the test suite",
			NeedsEnv: true,
			Commands: [][]string{{"python", "-m", "pytest"}},
		},
		{
			Name:     "test-dev",
			Summary:  "Run tests verbosely, stopping at the first failure; extra args go to pytest",
			NeedsEnv: true,
			Commands: [][]string{{"python", "-m", "pytest", "-x", "-vv"}},
		},
		{
			Name:     "lint",
			Summary:  "Run style checks",
			NeedsEnv: true,
			Commands: [][]string{{"python", "-m", "flake8"}},
		},
		{
			Name:     "lint-types",
			Summary:  "Run static type checks",
			NeedsEnv: true,
			Commands: [][]string{{"python", "-m", "mypy", "."}},
		},
		{
			Name:    "version",
			Summary: "Print the resolved version tag",
			Action: func(ctx context.Context, d *Dispatcher, _ *execx.Activation, _ []string) error {
				return d.printVersion()
			},
		},
		{
			Name:     "venv",
			Summary:  "Create and provision the environment if absent",
			NeedsEnv: true,
		},
		{
			Name:    "help",
			Summary: "List available tasks",
			Action: func(ctx context.Context, d *Dispatcher, _ *execx.Activation, _ []string) error {
				return d.printHelp()
			},
		},
	}
}

// All returns the task table in display order.
func All() []Task {
	out := make([]Task, len(table))
	copy(out, table)
	return out
}

// Lookup finds a task by name.
func Lookup(name string) (Task, bool) {
	for _, t := range table {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}
