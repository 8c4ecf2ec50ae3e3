package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"fmsub/internal/compute"
	"fmsub/internal/compute/script"
	"fmsub/internal/compute/slurm"
	"fmsub/internal/config"
	"fmsub/internal/watch"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var submitFlags = struct {
	configPath string
	jobName    string
	outputPath string

	nodes       int
	tasks       int
	partition   string
	walltime    string
	gpus        int
	cpusPerTask int
	memory      string
	sbatchFlags []string

	skipValidate bool
	wait         bool
	waitTimeout  time.Duration
}{}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Render a batch script for a training run and hand it to the scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := compute.DefaultLogger

		// Catch config mistakes before queue time is spent. The training
		// program remains the authority on its own settings.
		cfg, err := config.Load(submitFlags.configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid training config '%s': %w", submitFlags.configPath, err)
		}
		log.Debug().
			Str("model", cfg.ModelName).
			Int("epochs", cfg.NumEpochs).
			Int("batchSize", cfg.BatchSize).
			Msg("training config loaded")

		configPath, err := filepath.Abs(submitFlags.configPath)
		if err != nil {
			return err
		}

		outputPath := submitFlags.outputPath
		if outputPath == "" {
			outputPath = filepath.Join(compute.Runtime.LogsDir(),
				fmt.Sprintf("%s-%s.out", submitFlags.jobName, uuid.NewString()[:8]))
		}

		fields := script.JobFields{
			JobName:    submitFlags.jobName,
			OutputPath: outputPath,
			ResourceRequest: script.ResourceRequest{
				Nodes:       submitFlags.nodes,
				Tasks:       submitFlags.tasks,
				Partition:   submitFlags.partition,
				Time:        submitFlags.walltime,
				GPUs:        submitFlags.gpus,
				CPUsPerTask: submitFlags.cpusPerTask,
				Memory:      submitFlags.memory,
			},
			CustomFlags: submitFlags.sbatchFlags,
			CondaEnv:    compute.Environment.CondaEnv,
			TrainBin:    compute.Environment.TrainBin,
			ConfigPath:  configPath,
			RunSlurm:    compute.Environment.RunSlurm,
		}

		if compute.Environment.RunSlurm {
			warnUnknownPartition(submitFlags.partition)
		}

		scriptPath, err := script.WriteFile(compute.Runtime.ScriptsDir(), fields)
		if err != nil {
			return err
		}
		log.Info().Str("script", scriptPath).Msg("batch script written")

		if !submitFlags.skipValidate {
			if err := script.ValidateScript(scriptPath); err != nil {
				return fmt.Errorf("generated script failed validation: %w", err)
			}
		}

		if !compute.Environment.RunSlurm {
			if err := slurm.SubmitJobDirect(scriptPath, outputPath); err != nil {
				return err
			}
			log.Info().Str("output", outputPath).Msg("running directly under bash")
		} else {
			jobID, err := slurm.SubmitJob(scriptPath)
			if err != nil {
				return err
			}
			log.Info().Str("jobID", jobID).Str("output", outputPath).Msg("job submitted")
			fmt.Println(jobID)
		}

		if !submitFlags.wait {
			return nil
		}

		ctx := cmd.Context()
		if submitFlags.waitTimeout > 0 {
			var cancel func()
			ctx, cancel = context.WithTimeout(ctx, submitFlags.waitTimeout)
			defer cancel()
		}

		log.Info().Str("output", outputPath).Msg("waiting for the completion banner")
		if err := watch.WaitForCompletion(ctx, outputPath); err != nil {
			return fmt.Errorf("waiting for completion: %w", err)
		}
		log.Info().Msg("job finished")

		return nil
	},
}

// warnUnknownPartition checks the requested partition against the cluster
// inventory. Purely advisory: sinfo may be unavailable on login nodes with a
// restricted PATH, and submission must still proceed.
func warnUnknownPartition(partition string) {
	stats, err := slurm.GetClusterStats()
	if err != nil {
		compute.DefaultLogger.Debug().Err(err).Msg("could not query cluster stats")
		return
	}

	if !stats.HasPartition(partition) {
		compute.DefaultLogger.Warn().
			Str("partition", partition).
			Strs("known", stats.Partitions()).
			Msg("requested partition is not advertised by the cluster")
	}
}

func init() {
	submitCmd.Flags().StringVarP(&submitFlags.configPath, "config", "c", "", "Path to the training config JSON (required)")
	submitCmd.Flags().StringVar(&submitFlags.jobName, "job-name", "fm_train", "Scheduler job name")
	submitCmd.Flags().StringVarP(&submitFlags.outputPath, "output", "o", "", "Job output file (default under ~/.fmsub/logs)")
	submitCmd.Flags().IntVar(&submitFlags.nodes, "nodes", 1, "Node count")
	submitCmd.Flags().IntVar(&submitFlags.tasks, "ntasks", 1, "Task count")
	submitCmd.Flags().StringVarP(&submitFlags.partition, "partition", "p", "gpu", "Partition to schedule against")
	submitCmd.Flags().StringVarP(&submitFlags.walltime, "time", "t", "72:00:00", "Wall-clock limit (hours:minutes:seconds)")
	submitCmd.Flags().IntVar(&submitFlags.gpus, "gpus", 1, "GPUs per node (0 disables the gres directive)")
	submitCmd.Flags().IntVar(&submitFlags.cpusPerTask, "cpus-per-task", 0, "CPUs per task (0 omits the directive)")
	submitCmd.Flags().StringVar(&submitFlags.memory, "mem", "", "Memory per node, e.g. 32G (empty omits the directive)")
	submitCmd.Flags().StringArrayVar(&submitFlags.sbatchFlags, "sbatch-flag", nil, "Extra raw #SBATCH directives (repeatable)")
	submitCmd.Flags().BoolVar(&submitFlags.skipValidate, "skip-validate", false, "Skip bash -n validation of the generated script")
	submitCmd.Flags().BoolVarP(&submitFlags.wait, "wait", "w", false, "Block until the completion banner appears in the output file")
	submitCmd.Flags().DurationVar(&submitFlags.waitTimeout, "wait-timeout", 0, "Give up waiting after this duration (0 waits forever)")

	_ = submitCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(submitCmd)
}
