package script_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"fmsub/internal/compute/script"

	qt "github.com/frankban/quicktest"
)

// A run whose training step crashes must still print the full completion
// banner, with whatever identifiers the scheduler exported, and the script
// itself must exit with status 0.
func TestFailingTrainingStillReportsCompletion(t *testing.T) {
	c := qt.New(t)

	dir := t.TempDir()

	stub := filepath.Join(dir, "train-stub.sh")
	err := os.WriteFile(stub, []byte("#!/bin/bash\necho 'training exploded' >&2\nexit 7\n"), 0o755)
	c.Assert(err, qt.IsNil)

	fields := testFields()
	fields.RunSlurm = false
	fields.ResourceRequest.GPUs = 0
	fields.TrainBin = stub
	fields.ConfigPath = filepath.Join(dir, "config.json")

	scriptPath, err := script.WriteFile(dir, fields)
	c.Assert(err, qt.IsNil)

	cmd := exec.Command("bash", scriptPath)
	cmd.Env = append(os.Environ(),
		"HOME="+dir, // keep the user's real shell profile out of the test
		"SLURM_JOB_ID=4242",
		"SLURM_JOB_NAME=fm_train",
		"SLURM_JOB_NUM_NODES=1",
		"SLURM_NTASKS=1",
		"SLURM_JOB_PARTITION=gpu",
	)

	out, err := cmd.CombinedOutput()
	c.Assert(err, qt.IsNil, qt.Commentf("script must exit 0, output:\n%s", out))

	c.Assert(string(out), qt.Contains, "training exploded")
	c.Assert(string(out), qt.Contains, "JOB FINISHED")
	c.Assert(string(out), qt.Contains, "Job ID:        4242")
	c.Assert(string(out), qt.Contains, "Partition:     gpu")

	// SLURM_CPUS_ON_NODE was never exported: the line prints empty instead of failing
	c.Assert(string(out), qt.Contains, "CPUs on node:  \n")
}
