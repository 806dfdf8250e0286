package tasks

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/venvtask/internal/execx"
	"github.com/fyrsmithlabs/venvtask/internal/logging"
	"github.com/fyrsmithlabs/venvtask/internal/version"
)

// EnvProvider establishes the project environment on demand.
// *bootstrap.Bootstrapper is the production implementation.
type EnvProvider interface {
	EnsureActivated(ctx context.Context) (*execx.Activation, error)
}

// Dispatcher executes tasks from the static table.
type Dispatcher struct {
	root    string
	venvDir string
	env     EnvProvider
	runner  execx.Runner
	log     *logging.Logger
	stdout  io.Writer
}

// NewDispatcher creates a dispatcher rooted at the project root. venvDir
// is the environment directory name, excluded from clean's sweep.
func NewDispatcher(root, venvDir string, env EnvProvider, runner execx.Runner, log *logging.Logger, stdout io.Writer) *Dispatcher {
	return &Dispatcher{
		root:    root,
		venvDir: venvDir,
		env:     env,
		runner:  runner,
		log:     log.Named("tasks"),
		stdout:  stdout,
	}
}

// Run executes the named task. An empty name runs help. Tasks that need
// the environment establish it first; command sequences run in order and
// abort at the first failure, whose exit status propagates unchanged.
func (d *Dispatcher) Run(ctx context.Context, name string, extraArgs []string) error {
	if name == "" {
		name = "help"
	}

	task, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q (run \"venvtask help\" for the task list)", ErrUnknownTask, name)
	}

	var act *execx.Activation
	if task.NeedsEnv {
		a, err := d.env.EnsureActivated(ctx)
		if err != nil {
			return err
		}
		act = a
	}

	d.log.Debug("running task", zap.String("task", task.Name))

	if task.Action != nil {
		return task.Action(ctx, d, act, extraArgs)
	}
	return d.runCommands(ctx, task, act, extraArgs)
}

// runCommands executes a task's command sequence fail-fast. Extra args are
// appended to the final command.
func (d *Dispatcher) runCommands(ctx context.Context, task Task, act *execx.Activation, extraArgs []string) error {
	for i, argv := range task.Commands {
		args := argv[1:]
		if i == len(task.Commands)-1 && len(extraArgs) > 0 {
			args = append(append([]string(nil), args...), extraArgs...)
		}
		cmd := execx.Command{Name: argv[0], Args: args, Dir: d.root}
		if err := d.runner.Run(ctx, cmd, act); err != nil {
			return err
		}
	}
	return nil
}

// printVersion resolves and prints the project version.
func (d *Dispatcher) printVersion() error {
	v, err := version.Resolve(d.root)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(d.stdout, v)
	return err
}

// printHelp lists the task table. It reads only static data, so it works
// with no environment and no repository.
func (d *Dispatcher) printHelp() error {
	fmt.Fprintln(d.stdout, "venvtask runs project maintenance tasks inside the project-local environment.")
	fmt.Fprintln(d.stdout)
	fmt.Fprintln(d.stdout, "Tasks:")

	w := tabwriter.NewWriter(d.stdout, 0, 4, 2, ' ', 0)
	for _, t := range All() {
		fmt.Fprintf(w, "  %s\t%s\n", t.Name, t.Summary)
	}
	return w.Flush()
}
