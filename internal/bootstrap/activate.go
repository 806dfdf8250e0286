package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// activateMarker guards the block venvtask appends to the activation
// script. Its presence means the block was already written.
const activateMarker = "# venvtask: project-local bin takes precedence"

// activateBlock prepends binDir to PATH only when it is not already
// present, so the script stays safe to source any number of times.
func activateBlock(binDir string) string {
	return fmt.Sprintf(`
%s
case ":$PATH:" in
    *":%s:"*) ;;
    *)
        PATH=%q:"$PATH"
        export PATH
        ;;
esac
`, activateMarker, binDir, binDir)
}

// writeActivateBlock appends the guarded PATH block to the environment's
// activation script. Appending happens at most once; a retry after a
// failed later step finds the marker and leaves the script untouched.
func (b *Bootstrapper) writeActivateBlock() error {
	scriptPath := filepath.Join(b.VenvDir(), "bin", "activate")

	existing, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to read activation script: %w", err)
	}
	if strings.Contains(string(existing), activateMarker) {
		return nil
	}

	f, err := os.OpenFile(scriptPath, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open activation script: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(activateBlock(filepath.Join(b.root, "bin"))); err != nil {
		return fmt.Errorf("failed to append to activation script: %w", err)
	}
	return nil
}
