package script_test

import (
	"os"
	"strings"
	"testing"

	"fmsub/internal/compute/script"

	qt "github.com/frankban/quicktest"
)

func testFields() script.JobFields {
	return script.JobFields{
		JobName:    "fm_train",
		OutputPath: "/home/user/.fmsub/logs/fm_train-1234.out",
		ResourceRequest: script.ResourceRequest{
			Nodes:     1,
			Tasks:     1,
			Partition: "gpu",
			Time:      "72:00:00",
			GPUs:      1,
		},
		CondaEnv:   "forward_models",
		TrainBin:   "forward_models",
		ConfigPath: "/home/user/config.json",
		RunSlurm:   true,
	}
}

func TestRenderDirectives(t *testing.T) {
	c := qt.New(t)

	content, err := script.Render(testFields())
	c.Assert(err, qt.IsNil)

	c.Assert(content, qt.Contains, "#SBATCH --job-name=fm_train")
	c.Assert(content, qt.Contains, "#SBATCH --output=/home/user/.fmsub/logs/fm_train-1234.out")
	c.Assert(content, qt.Contains, "#SBATCH --nodes=1")
	c.Assert(content, qt.Contains, "#SBATCH --ntasks=1")
	c.Assert(content, qt.Contains, "#SBATCH --partition=gpu")
	c.Assert(content, qt.Contains, "#SBATCH --time=72:00:00")
	c.Assert(content, qt.Contains, "#SBATCH --gres=gpu:1")
	c.Assert(content, qt.Contains, "module load cuda")

	// optional directives are absent when unset
	c.Assert(strings.Contains(content, "--cpus-per-task"), qt.IsFalse)
	c.Assert(strings.Contains(content, "--mem="), qt.IsFalse)
}

func TestRenderOptionalDirectives(t *testing.T) {
	c := qt.New(t)

	fields := testFields()
	fields.ResourceRequest.CPUsPerTask = 8
	fields.ResourceRequest.Memory = "32G"
	fields.CustomFlags = []string{"--no-requeue", "--exclusive"}

	content, err := script.Render(fields)
	c.Assert(err, qt.IsNil)

	c.Assert(content, qt.Contains, "#SBATCH --cpus-per-task=8")
	c.Assert(content, qt.Contains, "#SBATCH --mem=32G")
	c.Assert(content, qt.Contains, "#SBATCH --no-requeue")
	c.Assert(content, qt.Contains, "#SBATCH --exclusive")
}

// The script must always run its steps in fixed order: environment setup,
// accelerator query, training invocation, completion report.
func TestRenderStepOrder(t *testing.T) {
	c := qt.New(t)

	content, err := script.Render(testFields())
	c.Assert(err, qt.IsNil)

	steps := []string{
		"source ~/.bashrc",
		"conda activate forward_models",
		"nvidia-smi || true",
		"forward_models --config_name",
		"JOB FINISHED",
		"$SLURM_JOB_ID",
		"$SLURM_JOB_NAME",
		"$SLURM_JOB_NUM_NODES",
		"$SLURM_CPUS_ON_NODE",
		"$SLURM_NTASKS",
		"$SLURM_JOB_PARTITION",
	}

	last := -1
	for _, step := range steps {
		idx := strings.Index(content, step)
		c.Assert(idx >= 0, qt.IsTrue, qt.Commentf("step %q missing", step))
		c.Assert(idx > last, qt.IsTrue, qt.Commentf("step %q out of order", step))
		last = idx
	}
}

func TestRenderWithoutSlurm(t *testing.T) {
	c := qt.New(t)

	fields := testFields()
	fields.RunSlurm = false

	content, err := script.Render(fields)
	c.Assert(err, qt.IsNil)

	c.Assert(strings.Contains(content, "#SBATCH"), qt.IsFalse)
	c.Assert(content, qt.Contains, "conda activate forward_models")
	c.Assert(content, qt.Contains, "JOB FINISHED")
}

func TestRenderEscapesConfigPath(t *testing.T) {
	c := qt.New(t)

	fields := testFields()
	fields.ConfigPath = "/home/user/my runs/config.json"

	content, err := script.Render(fields)
	c.Assert(err, qt.IsNil)

	c.Assert(content, qt.Contains, "--config_name '/home/user/my runs/config.json'")
}

func TestRenderTruncatesJobName(t *testing.T) {
	c := qt.New(t)

	fields := testFields()
	fields.JobName = strings.Repeat("x", 100)

	content, err := script.Render(fields)
	c.Assert(err, qt.IsNil)

	c.Assert(content, qt.Contains, "#SBATCH --job-name="+strings.Repeat("x", 64)+"\n")
}

func TestWriteFile(t *testing.T) {
	c := qt.New(t)

	dir := t.TempDir()

	first, err := script.WriteFile(dir, testFields())
	c.Assert(err, qt.IsNil)

	second, err := script.WriteFile(dir, testFields())
	c.Assert(err, qt.IsNil)

	// repeated submissions never clobber each other
	c.Assert(first, qt.Not(qt.Equals), second)

	info, err := os.Stat(first)
	c.Assert(err, qt.IsNil)
	c.Assert(info.Mode().Perm(), qt.Equals, os.FileMode(0o755))

	content, err := os.ReadFile(first)
	c.Assert(err, qt.IsNil)
	c.Assert(strings.HasPrefix(string(content), "#!/bin/bash"), qt.IsTrue)
}

func TestEscapeSingleQuote(t *testing.T) {
	c := qt.New(t)

	c.Assert(script.EscapeSingleQuote("plain"), qt.Equals, "plain")
	c.Assert(script.EscapeSingleQuote("with space"), qt.Equals, "'with space'")
	c.Assert(script.EscapeSingleQuote("it's"), qt.Equals, `'it'"'"'s'`)
}
