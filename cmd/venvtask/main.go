// Package main implements the venvtask CLI, a project-local environment
// bootstrapper and task runner.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/venvtask/internal/bootstrap"
	"github.com/fyrsmithlabs/venvtask/internal/config"
	"github.com/fyrsmithlabs/venvtask/internal/execx"
	"github.com/fyrsmithlabs/venvtask/internal/logging"
	"github.com/fyrsmithlabs/venvtask/internal/project"
	"github.com/fyrsmithlabs/venvtask/internal/tasks"
)

// version of the venvtask binary itself, set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status: the failing
// subprocess's own code, 2 for usage errors, 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, tasks.ErrUnknownTask) {
		return 2
	}
	return execx.ExitCode(err)
}

var rootCmd = &cobra.Command{
	Use:   "venvtask [task]",
	Short: "Project-local environment bootstrapper and task runner",
	Long: `venvtask creates an isolated virtual environment under the project root,
installs the project and its development dependencies into it, and runs
maintenance tasks inside that environment. Any task that needs the
environment provisions it first; an existing environment is reused as-is.

Run "venvtask help" for the task list.`,
	Version:      version,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	// Fallback for no arguments (help) and for names the subcommand set
	// does not know, so unknown tasks report through the dispatcher.
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runTask(cmd.Context(), "help", nil)
		}
		return runTask(cmd.Context(), args[0], args[1:])
	},
}

func init() {
	for _, task := range tasks.All() {
		cmd := &cobra.Command{
			Use:          task.Name,
			Short:        task.Summary,
			Args:         cobra.NoArgs,
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTask(cmd.Context(), cmd.Name(), args)
			},
		}
		if task.Name == "test-dev" {
			// Everything after the task name goes to pytest verbatim.
			cmd.Use = "test-dev [pytest args...]"
			cmd.Args = cobra.ArbitraryArgs
			cmd.DisableFlagParsing = true
		}
		rootCmd.AddCommand(cmd)
	}
}

// runTask wires the components for one invocation and dispatches.
func runTask(ctx context.Context, name string, extraArgs []string) error {
	// help reads only the static task table; it must work outside any
	// repository and with no environment.
	if name == "help" {
		d := tasks.NewDispatcher("", "", nil, nil, logging.NewNop(), os.Stdout)
		return d.Run(ctx, "help", nil)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	root, err := project.FindRoot(cwd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(root)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // stderr flush

	runner := execx.NewRunner(os.Stdout, os.Stderr)
	boot := bootstrap.New(root, cfg, runner, logger)
	dispatcher := tasks.NewDispatcher(root, cfg.VenvDir, boot, runner, logger, os.Stdout)

	return dispatcher.Run(ctx, name, extraArgs)
}
