package outdir

import (
	"fmt"
	"os"

	"github.com/xschemadev/staticrun/ui"
)

// Prepare removes dir and everything under it, then recreates it empty
// so reports from a previous run never linger.
func Prepare(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		ui.Verbosef("failed to remove output directory: %s", dir)
		return fmt.Errorf("failed to clear output directory: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		ui.Verbosef("failed to create output directory: %s", dir)
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ui.Verbosef("output directory ready: %s", dir)
	return nil
}
