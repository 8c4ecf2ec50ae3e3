// Copyright © 2022 FORTH-ICS
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package slurm contains code for accessing compute resources via Slurm.
package slurm

import (
	"os"
	"os/exec"
)

// Slurm holds the front-end commands of the scheduler. The table exists so
// tests and exotic installations can point at different binaries.
var Slurm = struct {
	SubmitCmd string
	CancelCmd string
	QueueCmd  string
	StatsCmd  string
	AcctCmd   string
}{
	SubmitCmd: "sbatch",
	CancelCmd: "scancel",
	QueueCmd:  "squeue",
	StatsCmd:  "sinfo",
	AcctCmd:   "sacct",
}

// Available reports whether jobs can be submitted from this host: the submit
// command must resolve, and we must not already be inside a scheduled job.
func Available() bool {
	if _, err := exec.LookPath(Slurm.SubmitCmd); err != nil {
		return false
	}

	_, inJob := os.LookupEnv("SLURM_JOB_ID")

	return !inJob
}
