package main

import (
	"fmt"
	"os"
	"path/filepath"

	"fmsub/internal/compute"
	"fmsub/internal/compute/script"

	"github.com/spf13/cobra"
)

var scriptFlags = struct {
	configPath string
	jobName    string
	outputPath string
	toFile     string

	nodes       int
	tasks       int
	partition   string
	walltime    string
	gpus        int
	cpusPerTask int
	memory      string
	sbatchFlags []string
}{}

// scriptCmd renders the batch script without submitting anything. Useful for
// inspection and for clusters where submission happens from another host.
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "Render the batch script for a training run without submitting it",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := filepath.Abs(scriptFlags.configPath)
		if err != nil {
			return err
		}

		outputPath := scriptFlags.outputPath
		if outputPath == "" {
			outputPath = filepath.Join(compute.Runtime.LogsDir(), scriptFlags.jobName+"-%j.out")
		}

		content, err := script.Render(script.JobFields{
			JobName:    scriptFlags.jobName,
			OutputPath: outputPath,
			ResourceRequest: script.ResourceRequest{
				Nodes:       scriptFlags.nodes,
				Tasks:       scriptFlags.tasks,
				Partition:   scriptFlags.partition,
				Time:        scriptFlags.walltime,
				GPUs:        scriptFlags.gpus,
				CPUsPerTask: scriptFlags.cpusPerTask,
				Memory:      scriptFlags.memory,
			},
			CustomFlags: scriptFlags.sbatchFlags,
			CondaEnv:    compute.Environment.CondaEnv,
			TrainBin:    compute.Environment.TrainBin,
			ConfigPath:  configPath,
			RunSlurm:    compute.Environment.RunSlurm,
		})
		if err != nil {
			return err
		}

		if scriptFlags.toFile == "" {
			fmt.Print(content)
			return nil
		}

		if err := os.WriteFile(scriptFlags.toFile, []byte(content), 0o755); err != nil {
			return fmt.Errorf("could not write script '%s': %w", scriptFlags.toFile, err)
		}
		compute.DefaultLogger.Info().Str("script", scriptFlags.toFile).Msg("batch script written")

		return nil
	},
}

func init() {
	scriptCmd.Flags().StringVarP(&scriptFlags.configPath, "config", "c", "", "Path to the training config JSON (required)")
	scriptCmd.Flags().StringVar(&scriptFlags.jobName, "job-name", "fm_train", "Scheduler job name")
	scriptCmd.Flags().StringVarP(&scriptFlags.outputPath, "output", "o", "", "Job output file (default uses the %j job-id pattern)")
	scriptCmd.Flags().StringVar(&scriptFlags.toFile, "to", "", "Write the script to this file instead of stdout")
	scriptCmd.Flags().IntVar(&scriptFlags.nodes, "nodes", 1, "Node count")
	scriptCmd.Flags().IntVar(&scriptFlags.tasks, "ntasks", 1, "Task count")
	scriptCmd.Flags().StringVarP(&scriptFlags.partition, "partition", "p", "gpu", "Partition to schedule against")
	scriptCmd.Flags().StringVarP(&scriptFlags.walltime, "time", "t", "72:00:00", "Wall-clock limit (hours:minutes:seconds)")
	scriptCmd.Flags().IntVar(&scriptFlags.gpus, "gpus", 1, "GPUs per node (0 disables the gres directive)")
	scriptCmd.Flags().IntVar(&scriptFlags.cpusPerTask, "cpus-per-task", 0, "CPUs per task (0 omits the directive)")
	scriptCmd.Flags().StringVar(&scriptFlags.memory, "mem", "", "Memory per node, e.g. 32G (empty omits the directive)")
	scriptCmd.Flags().StringArrayVar(&scriptFlags.sbatchFlags, "sbatch-flag", nil, "Extra raw #SBATCH directives (repeatable)")

	_ = scriptCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(scriptCmd)
}
