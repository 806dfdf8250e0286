// Package bootstrap provisions and activates the project-local environment.
//
// Provisioning is a two-state machine. StateAbsent transitions to
// StatePresent through a fixed step sequence: create the virtual
// environment, rewrite its activation script, upgrade pip, install the
// project in editable mode, install the requirements manifest. Every step
// tolerates partial state from an interrupted earlier run, so a failed
// bootstrap is retried by simply invoking it again. StatePresent only
// rebuilds the activation value; it never reinstalls.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/venvtask/internal/config"
	"github.com/fyrsmithlabs/venvtask/internal/execx"
	"github.com/fyrsmithlabs/venvtask/internal/logging"
)

// State is the provisioning state of the environment.
type State int

const (
	// StateAbsent means the environment interpreter does not exist yet.
	StateAbsent State = iota

	// StatePresent means the environment is provisioned.
	StatePresent
)

func (s State) String() string {
	if s == StatePresent {
		return "present"
	}
	return "absent"
}

// Bootstrapper guarantees a provisioned, activated environment.
type Bootstrapper struct {
	root   string
	cfg    *config.Config
	runner execx.Runner
	log    *logging.Logger

	// lookPath resolves the base interpreter on the ambient path.
	// Swappable for tests.
	lookPath func(name string, base []string) (string, error)
}

// New creates a bootstrapper for the given project root.
func New(root string, cfg *config.Config, runner execx.Runner, log *logging.Logger) *Bootstrapper {
	return &Bootstrapper{
		root:   root,
		cfg:    cfg,
		runner: runner,
		log:    log.Named("bootstrap"),
		lookPath: func(name string, base []string) (string, error) {
			var ambient *execx.Activation
			return ambient.LookPath(name, base)
		},
	}
}

// VenvDir returns the absolute environment directory.
func (b *Bootstrapper) VenvDir() string {
	return filepath.Join(b.root, b.cfg.VenvDir)
}

// venvPython is the environment's own interpreter; its existence is the
// StatePresent marker.
func (b *Bootstrapper) venvPython() string {
	return filepath.Join(b.VenvDir(), "bin", "python")
}

// State reports whether the environment is provisioned.
func (b *Bootstrapper) State() State {
	if _, err := os.Stat(b.venvPython()); err == nil {
		return StatePresent
	}
	return StateAbsent
}

// Activation builds the activation value for the environment: the
// environment's bin directory and the project-local bin directory take
// precedence over everything ambient.
func (b *Bootstrapper) Activation() *execx.Activation {
	return &execx.Activation{
		PathPrefix: []string{
			filepath.Join(b.VenvDir(), "bin"),
			filepath.Join(b.root, "bin"),
		},
		Vars: map[string]string{
			"VIRTUAL_ENV": b.VenvDir(),
		},
		Drop: []string{"PYTHONHOME"},
	}
}

// EnsureActivated guarantees a provisioned environment and returns its
// activation. With the environment already present this performs no
// filesystem mutation and runs no subprocess.
func (b *Bootstrapper) EnsureActivated(ctx context.Context) (*execx.Activation, error) {
	if b.State() == StatePresent {
		b.log.Debug("environment present", zap.String("venv", b.VenvDir()))
		return b.Activation(), nil
	}

	// Precondition: the base interpreter must exist before anything is
	// written to disk.
	interpreter, err := b.lookPath(b.cfg.Interpreter, os.Environ())
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not on PATH", ErrMissingToolchain, b.cfg.Interpreter)
	}

	b.log.Info("creating environment",
		zap.String("venv", b.VenvDir()),
		zap.String("interpreter", interpreter))

	if err := b.run(ctx, nil, interpreter, "-m", "venv", b.cfg.VenvDir); err != nil {
		return nil, &StepError{Step: StepCreate, Err: err}
	}

	if err := b.writeActivateBlock(); err != nil {
		return nil, &StepError{Step: StepActivate, Err: err}
	}

	act := b.Activation()
	python := b.venvPython()

	if err := b.run(ctx, act, python, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return nil, &StepError{Step: StepUpgradePip, Err: err}
	}

	if err := b.run(ctx, act, python, "-m", "pip", "install", "-e", "."); err != nil {
		return nil, &StepError{Step: StepInstallProject, Err: err}
	}

	manifest := filepath.Join(b.root, b.cfg.Requirements)
	if _, err := os.Stat(manifest); err == nil {
		if err := b.run(ctx, act, python, "-m", "pip", "install", "-r", b.cfg.Requirements); err != nil {
			return nil, &StepError{Step: StepInstallRequirements, Err: err}
		}
	} else {
		b.log.Debug("no requirements manifest, skipping", zap.String("manifest", manifest))
	}

	b.log.Info("environment ready", zap.String("venv", b.VenvDir()))
	return act, nil
}

func (b *Bootstrapper) run(ctx context.Context, act *execx.Activation, name string, args ...string) error {
	return b.runner.Run(ctx, execx.Command{Name: name, Args: args, Dir: b.root}, act)
}
