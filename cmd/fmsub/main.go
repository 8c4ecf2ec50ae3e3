package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fmsub/internal/compute"
	"fmsub/internal/compute/runtime"
	"fmsub/pkg/version"

	"github.com/dimiro1/banner"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const bannerTemplate = `{{ .Title "fmsub" "" 4 }}
GoVersion: {{ .GoVersion }} | GOOS: {{ .GOOS }} | GOARCH: {{ .GOARCH }} | NumCPU: {{ .NumCPU }}
`

var (
	flagRuntimeDir string
	flagCondaEnv   string
	flagTrainBin   string
	flagNoSlurm    bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "fmsub",
	Short:         "Submit forward-models GPU training runs to a Slurm cluster",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if flagVerbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		banner.Init(os.Stderr, flagVerbose, false, strings.NewReader(bannerTemplate))

		dir := flagRuntimeDir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("could not resolve home directory: %w", err)
			}
			dir = filepath.Join(home, ".fmsub")
		}

		compute.Environment = compute.HostEnvironment{
			WorkingDirectory: dir,
			CondaEnv:         flagCondaEnv,
			TrainBin:         flagTrainBin,
			RunSlurm:         !flagNoSlurm,
		}

		return runtime.Initialize()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fmsub version: %s (built: %s)\n", version.Version, version.BuildTime)
	},
}

// normalizeFlagName accepts the snake_case spellings used in the training
// config, so --job_name works alongside --job-name.
func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func init() {
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	rootCmd.PersistentFlags().StringVar(&flagRuntimeDir, "runtime-dir", "", "Runtime directory (default ~/.fmsub)")
	rootCmd.PersistentFlags().StringVar(&flagCondaEnv, "conda-env", "forward_models", "Conda environment activated by generated scripts")
	rootCmd.PersistentFlags().StringVar(&flagTrainBin, "train-bin", "forward_models", "Training entry point invoked by generated scripts")
	rootCmd.PersistentFlags().BoolVar(&flagNoSlurm, "no-slurm", false, "Run the generated script directly under bash instead of sbatch")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		compute.DefaultLogger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
