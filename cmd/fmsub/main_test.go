package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Flags may be spelled with underscores, matching the training config keys.
func TestSnakeCaseFlagSpelling(t *testing.T) {
	dir := t.TempDir()

	configPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(configPath, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	scriptPath := filepath.Join(dir, "job.sh")
	rootCmd.SetArgs([]string{
		"script",
		"--runtime-dir", dir,
		"--config", configPath,
		"--job_name", "renamed",
		"--to", scriptPath,
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("script command failed: %v", err)
	}

	content, err := os.ReadFile(scriptPath)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if !strings.Contains(string(content), "#SBATCH --job-name=renamed") {
		t.Fatalf("--job_name was not applied, script:\n%s", content)
	}
}
