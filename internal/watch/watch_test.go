package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWaitReturnsWhenMarkerAlreadyPresent(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "job.out")
	content := "training output\n==============================\n JOB FINISHED\n"
	if err := os.WriteFile(outputFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := WaitForCompletion(ctx, outputFile); err != nil {
		t.Fatalf("expected immediate completion, got: %v", err)
	}
}

func TestWaitDetectsMarkerWrittenLater(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "job.out")

	go func() {
		time.Sleep(200 * time.Millisecond)
		// simulate the scheduler creating the file, then the job finishing
		_ = os.WriteFile(outputFile, []byte("starting up\n"), 0o644)

		time.Sleep(200 * time.Millisecond)
		f, err := os.OpenFile(outputFile, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		defer f.Close()
		_, _ = f.WriteString(" JOB FINISHED\n")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := WaitForCompletion(ctx, outputFile); err != nil {
		t.Fatalf("expected completion, got: %v", err)
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "job.out")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := WaitForCompletion(ctx, outputFile)
	if err == nil {
		t.Fatal("expected a context error, got nil")
	}
	if ctx.Err() == nil {
		t.Fatal("context should have expired")
	}
}

func TestContainsMarker(t *testing.T) {
	dir := t.TempDir()

	missing := filepath.Join(dir, "missing.out")
	found, err := containsMarker(missing)
	if err != nil {
		t.Fatalf("missing file should not be an error, got: %v", err)
	}
	if found {
		t.Fatal("missing file cannot contain the marker")
	}

	partial := filepath.Join(dir, "partial.out")
	if err := os.WriteFile(partial, []byte("still training...\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	found, err = containsMarker(partial)
	if err != nil || found {
		t.Fatalf("expected no marker, got found=%v err=%v", found, err)
	}
}

// Progress bars written with carriage returns end up in the log as one
// enormous line. The banner after it must still be found.
func TestWaitDetectsMarkerAfterLongProgressLine(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "job.out")
	content := strings.Repeat("#", 128*1024) + "\n JOB FINISHED\n"
	if err := os.WriteFile(outputFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := WaitForCompletion(ctx, outputFile); err != nil {
		t.Fatalf("expected completion, got: %v", err)
	}
}

func TestContainsMarkerSplitAcrossReadBoundary(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "job.out")

	// pad so the marker straddles the 64 KiB read boundary
	pad := 64*1024 - len(FinishedMarker)/2
	content := strings.Repeat("x", pad) + FinishedMarker + "\n"
	if err := os.WriteFile(outputFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}

	found, err := containsMarker(outputFile)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !found {
		t.Fatal("marker across the read boundary was missed")
	}
}
