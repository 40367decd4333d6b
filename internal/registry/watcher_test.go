package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/hookstorm/internal/settings"
)

func TestWatcherSignalsOnSettingsChange(t *testing.T) {
	ws := t.TempDir()
	if err := os.MkdirAll(filepath.Join(ws, settings.Dir), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(Config{Workspace: ws}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	body := `{"hooks": {"message": [{"path": "hooks/a.lua"}]}}`
	if err := os.WriteFile(settings.FilePath(ws), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Reload():
	case <-time.After(5 * time.Second):
		t.Fatal("no reload signal after settings write")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	ws := t.TempDir()
	if err := os.MkdirAll(filepath.Join(ws, settings.Dir), 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(Config{Workspace: ws}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	other := filepath.Join(ws, settings.Dir, "scratch.txt")
	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-w.Reload():
		t.Fatal("unexpected reload signal for unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}
