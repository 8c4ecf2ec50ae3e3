package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"fmsub/internal/compute/slurm"

	"github.com/spf13/cobra"
)

var nodesCmd = &cobra.Command{
	Use:   "nodes",
	Short: "List cluster nodes with their CPUs, memory, GPUs and partitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := slurm.GetClusterStats()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tCPUS\tFREE MEM (MB)\tGPUS\tPARTITIONS")
		for _, node := range stats.Nodes {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
				node.Name, node.CPUs, node.FreeMemory, node.GPUs(),
				strings.Join(node.Partitions, ","))
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(nodesCmd)
}
