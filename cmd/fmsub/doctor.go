package main

import (
	"fmt"
	"os"
	"os/exec"

	"fmsub/internal/compute"
	"fmsub/internal/compute/slurm"

	"github.com/matishsiao/goInfo"
	"github.com/spf13/cobra"
)

// doctorCmd inspects the submission host: platform, scheduler front-ends,
// accelerator tooling. Purely observational.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the submission host for scheduler and GPU tooling",
	RunE: func(cmd *cobra.Command, args []string) error {
		if info, err := goInfo.GetInfo(); err == nil {
			fmt.Printf("Host:      %s\n", info.Hostname)
			fmt.Printf("Platform:  %s %s (%s)\n", info.OS, info.Core, info.Platform)
			fmt.Printf("Kernel:    %s\n", info.Kernel)
			fmt.Printf("CPUs:      %d\n", info.CPUs)
		} else {
			compute.DefaultLogger.Warn().Err(err).Msg("could not inspect platform")
		}

		local := slurm.GetLocalResources()
		fmt.Printf("Memory:    %d MB\n", local.MemoryMB)
		fmt.Printf("Storage:   %d MB\n", local.StorageMB)
		fmt.Println()

		for _, bin := range []string{
			slurm.Slurm.SubmitCmd,
			slurm.Slurm.CancelCmd,
			slurm.Slurm.QueueCmd,
			slurm.Slurm.StatsCmd,
			slurm.Slurm.AcctCmd,
			"nvidia-smi",
			"conda",
			compute.Environment.TrainBin,
		} {
			if path, err := exec.LookPath(bin); err == nil {
				fmt.Printf("%-12s %s\n", bin, path)
			} else {
				fmt.Printf("%-12s not found\n", bin)
			}
		}
		fmt.Println()

		if jobID, inJob := os.LookupEnv("SLURM_JOB_ID"); inJob {
			fmt.Printf("Running inside Slurm job %s; submission from here is disabled.\n", jobID)
		}

		if slurm.Available() {
			fmt.Println("Scheduler: available for submission")
		} else {
			fmt.Println("Scheduler: NOT available (use --no-slurm to run directly)")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
