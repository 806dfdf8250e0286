package bootstrap

import (
	"errors"
	"fmt"
)

// ErrMissingToolchain means the base interpreter is absent from the
// ambient search path. The check runs before any filesystem mutation, so
// no partial environment exists after this error.
var ErrMissingToolchain = errors.New("base interpreter not found")

// Step identifies a provisioning sub-step.
type Step string

const (
	StepCreate              Step = "create"
	StepActivate            Step = "activate"
	StepUpgradePip          Step = "upgrade-pip"
	StepInstallProject      Step = "install-project"
	StepInstallRequirements Step = "install-requirements"
)

// StepError reports which provisioning sub-step failed. The environment is
// left as-is; re-invocation is safe because every step tolerates the
// partial state an earlier attempt left behind.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("environment provisioning failed at step %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
