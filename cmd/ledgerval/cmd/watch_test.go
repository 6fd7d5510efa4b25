package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"golang-ledger-validator/pkg/errors"
)

func startWatcher(t *testing.T, path string, calls *atomic.Int32) {
	t.Helper()
	fw, err := watchFile(path, 20*time.Millisecond, func() { calls.Add(1) }, testLogger())
	if err != nil {
		t.Fatalf("failed to watch: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fw.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("watcher returned error: %v", err)
		}
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatchFile_DebouncesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	if err := os.WriteFile(path, []byte("Membe Id\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	startWatcher(t, path, &calls)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("Membe Id\n1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(100 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected a burst of writes to trigger once, got %d", got)
	}
}

func TestWatchFile_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")
	if err := os.WriteFile(path, []byte("Membe Id\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	startWatcher(t, path, &calls)

	// The validated copy lands in the same directory.
	if err := os.WriteFile(filepath.Join(dir, "ledger_validated.csv"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("expected sibling writes to be ignored, got %d calls", got)
	}

	if err := os.WriteFile(path, []byte("Membe Id\n1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return calls.Load() == 1 })
}

func TestWatchFile_MissingDirectory(t *testing.T) {
	_, err := watchFile(filepath.Join(t.TempDir(), "missing", "ledger.csv"), time.Millisecond, func() {}, testLogger())
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestFailedRuns_Summary(t *testing.T) {
	var failures failedRuns
	if got := failures.summary(); got.Total != 0 || got.Error() != "no errors" {
		t.Fatalf("expected an empty summary, got %d: %s", got.Total, got.Error())
	}

	failures.add(errors.ValidationError(errors.CodeIssuesFound, "ledger_validated.csv", 2, nil))
	failures.add(fmt.Errorf("zip: not a valid zip file"))

	summary := failures.summary()
	if summary.Total != 2 {
		t.Fatalf("expected 2 failed runs, got %d", summary.Total)
	}
	if !summary.HasCode(errors.CodeIssuesFound) {
		t.Error("expected the issues_found run to keep its code")
	}
	if !summary.HasCode(errors.CodeUnexpectedError) {
		t.Error("expected a plain error to be wrapped as unexpected")
	}
	if got := summary.Error(); got != "2 errors occurred (internal: 1, validation: 1)" {
		t.Errorf("unexpected summary: %s", got)
	}
}
