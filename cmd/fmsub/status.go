package main

import (
	"fmt"
	"time"

	"fmsub/internal/compute"
	"fmsub/internal/compute/slurm"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var statusFlags = struct {
	wait         bool
	pollInterval time.Duration
}{}

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Report the scheduler state of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID := args[0]

		if !statusFlags.wait {
			state, err := slurm.GetJobState(jobID)
			if err != nil {
				return err
			}
			fmt.Println(state)
			return nil
		}

		limiter := rate.NewLimiter(rate.Every(statusFlags.pollInterval), 1)

		compute.DefaultLogger.Info().
			Str("jobID", jobID).
			Dur("pollInterval", statusFlags.pollInterval).
			Msg("waiting for the job to terminate")

		state, err := slurm.WaitForTermination(cmd.Context(), jobID, limiter)
		if err != nil {
			return err
		}

		fmt.Println(state)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVarP(&statusFlags.wait, "wait", "w", false, "Poll until the job reaches a terminal state")
	statusCmd.Flags().DurationVar(&statusFlags.pollInterval, "poll-interval", 10*time.Second, "How often to query the scheduler while waiting")

	rootCmd.AddCommand(statusCmd)
}
