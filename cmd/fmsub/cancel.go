package main

import (
	"fmt"

	"fmsub/internal/compute/slurm"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a submitted job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := slurm.CancelJob(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", out, err)
		}

		if out != "" {
			fmt.Print(out)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
