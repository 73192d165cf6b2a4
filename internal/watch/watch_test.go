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

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_RequiresRoots(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNoRoots) {
		t.Errorf("err = %v, want ErrNoRoots", err)
	}
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"invoice.pdf", true},
		{"invoice.PDF", true},
		{"invoice.pdf.part", false},
		{"notes.txt", false},
		{"invoice", false},
	}
	for _, tt := range tests {
		if got := isPDF(tt.path); got != tt.want {
			t.Errorf("isPDF(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestStart_InitialScanEmitsExistingPDFs(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "invoice.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(Config{Roots: []string{dir}, InitialScan: true, Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files, err := w.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-files:
		if got != pdfPath {
			t.Errorf("emitted %q, want %q", got, pdfPath)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial-scan emission")
	}
}

func TestStart_DebouncedWriteEmitsOnce(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Config{
		Roots:    []string{dir},
		Debounce: 100 * time.Millisecond,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files, err := w.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}

	pdfPath := filepath.Join(dir, "export.pdf")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(pdfPath, []byte("%PDF-1.4 chunk"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case got := <-files:
		if got != pdfPath {
			t.Errorf("emitted %q, want %q", got, pdfPath)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for settled file")
	}

	// The write burst must have collapsed into the single emission above.
	select {
	case extra := <-files:
		t.Errorf("unexpected second emission %q", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

// Cancelling mid-debounce must drain the armed timer before the output
// channel closes; a late timer firing into a closed channel would panic.
func TestStart_ShutdownWhileDebouncing(t *testing.T) {
	for i := 0; i < 20; i++ {
		dir := t.TempDir()

		w, err := New(Config{
			Roots:    []string{dir},
			Debounce: 30 * time.Millisecond,
			Logger:   quietLogger(),
		})
		if err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())

		files, err := w.Start(ctx)
		if err != nil {
			cancel()
			t.Fatal(err)
		}

		if err := os.WriteFile(filepath.Join(dir, "late.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
			cancel()
			t.Fatal(err)
		}

		// Cancel while the debounce timer is still armed.
		time.Sleep(15 * time.Millisecond)
		cancel()

		done := make(chan struct{})
		go func() {
			for range files {
			}
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not shut down")
		}
	}
}

func TestStart_NewSubdirectoryWatched(t *testing.T) {
	dir := t.TempDir()

	w, err := New(Config{
		Roots:    []string{dir},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files, err := w.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}

	sub := filepath.Join(dir, "november")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to pick up the new directory.
	time.Sleep(200 * time.Millisecond)

	pdfPath := filepath.Join(sub, "invoice.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-files:
		if got != pdfPath {
			t.Errorf("emitted %q, want %q", got, pdfPath)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a file in the new subdirectory")
	}
}

func TestProcessSettled_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	err := ProcessSettled(context.Background(), "x.pdf", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("file still growing")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessSettled: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestProcessSettled_GivesUp(t *testing.T) {
	wantErr := errors.New("truncated")
	attempts := 0
	err := ProcessSettled(context.Background(), "x.pdf", func() error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want the last attempt's error", err)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}
}
