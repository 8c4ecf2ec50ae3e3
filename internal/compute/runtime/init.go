package runtime

import (
	"fmt"
	"os"

	"fmsub/internal/compute"
	"fmsub/internal/compute/endpoint"
)

// Initialize creates the runtime directory tree rooted at the configured
// working directory. It must be called once, before any script is rendered
// or submitted.
func Initialize() error {
	compute.Runtime = endpoint.Runtime(compute.Environment.WorkingDirectory)

	// create the ~/.fmsub directory, if it does not exist.
	if err := os.MkdirAll(compute.Runtime.String(), endpoint.RuntimeDirectoryPermissions); err != nil {
		return fmt.Errorf("failed to create RuntimeDir '%s': %w", compute.Runtime.String(), err)
	}

	// create the ~/.fmsub/scripts directory, if it does not exist.
	if err := os.MkdirAll(compute.Runtime.ScriptsDir(), endpoint.RuntimeDirectoryPermissions); err != nil {
		return fmt.Errorf("failed to create ScriptsDir '%s': %w", compute.Runtime.ScriptsDir(), err)
	}

	// create the ~/.fmsub/logs directory, if it does not exist.
	if err := os.MkdirAll(compute.Runtime.LogsDir(), endpoint.RuntimeDirectoryPermissions); err != nil {
		return fmt.Errorf("failed to create LogsDir '%s': %w", compute.Runtime.LogsDir(), err)
	}

	// create the ~/.fmsub/runs directory, if it does not exist.
	if err := os.MkdirAll(compute.Runtime.RunsDir(), endpoint.RuntimeDirectoryPermissions); err != nil {
		return fmt.Errorf("failed to create RunsDir '%s': %w", compute.Runtime.RunsDir(), err)
	}

	compute.DefaultLogger.Info().
		Str("workingDirectory", compute.Runtime.String()).
		Str("trainBin", compute.Environment.TrainBin).
		Msg("Runtime info")

	return nil
}
