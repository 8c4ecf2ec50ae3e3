package process

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestExecute(t *testing.T) {
	out, err := Execute("echo", "hello")
	if err != nil {
		t.Fatalf("echo failed: %v", err)
	}
	if strings.TrimSpace(string(out)) != "hello" {
		t.Fatalf("expected 'hello', got %q", out)
	}
}

func TestExecuteFailureKeepsOutput(t *testing.T) {
	out, err := Execute("sh", "-c", "echo oops >&2; exit 3")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(string(out), "oops") {
		t.Fatalf("expected stderr in output, got %q", out)
	}
}

func TestExecuteInDir(t *testing.T) {
	dir := t.TempDir()

	out, err := ExecuteInDir(dir, "pwd")
	if err != nil {
		t.Fatalf("pwd failed: %v", err)
	}
	if !strings.Contains(string(out), dir) {
		t.Fatalf("expected %q in output, got %q", dir, out)
	}
}

func TestExecuteWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := ExecuteWithContext(ctx, "sleep", "10")
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
