package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, rebuilds <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-rebuilds:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestRun_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "dpdp.txt")
	if err := os.WriteFile(sourcePath, []byte("1. Short title.—Body\n"), 0644); err != nil {
		t.Fatal(err)
	}

	rebuilds := make(chan struct{}, 16)
	w := New([]string{sourcePath, ""}, 50*time.Millisecond, func() error {
		rebuilds <- struct{}{}
		return nil
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, rebuilds, "initial rebuild")

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(sourcePath, []byte("1. Short title.—Amended\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, rebuilds, "rebuild after change")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "dpdp.txt")
	if err := os.WriteFile(sourcePath, []byte("1. Short title.—Body\n"), 0644); err != nil {
		t.Fatal(err)
	}

	rebuilds := make(chan struct{}, 16)
	w := New([]string{sourcePath}, 20*time.Millisecond, func() error {
		rebuilds <- struct{}{}
		return nil
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitFor(t, rebuilds, "initial rebuild")

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-rebuilds:
		t.Error("rebuild triggered by unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestRun_RebuildErrorsDoNotStop(t *testing.T) {
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "dpdp.txt")
	if err := os.WriteFile(sourcePath, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	rebuilds := make(chan struct{}, 16)
	w := New([]string{sourcePath}, 20*time.Millisecond, func() error {
		rebuilds <- struct{}{}
		return errors.New("segmentation failed")
	}, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	waitFor(t, rebuilds, "initial rebuild")
	if err := os.WriteFile(sourcePath, []byte("y"), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, rebuilds, "rebuild after failure")
}

func TestRun_NoFiles(t *testing.T) {
	w := New(nil, 0, func() error { return nil }, discardLogger())
	if w.debounce != DefaultDebounce {
		t.Errorf("expected default debounce, got %v", w.debounce)
	}
	if err := w.Run(context.Background()); err == nil {
		t.Error("expected error with no files")
	}
}
