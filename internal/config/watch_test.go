package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/activhome/lightstack/internal/card"
)

type reload struct {
	d   *card.Dashboard
	err error
}

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.yaml")
	if err := os.WriteFile(path, []byte("items: [{entity: light.a}]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloads := make(chan reload, 8)
	w, err := Watch(path, func(d *card.Dashboard, err error) {
		reloads <- reload{d, err}
	}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	// Unrelated files in the same directory are ignored.
	_ = os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0644)

	if err := os.WriteFile(path, []byte("items: [{entity: light.a}, {entity: light.b}]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-reloads:
		if r.err != nil {
			t.Fatalf("reload error = %v", r.err)
		}
		if n := len(r.d.Views[0].Card.Items); n != 2 {
			t.Errorf("reloaded %d items, want 2", n)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after writing the card file")
	}
}

func TestWatchReportsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.yaml")
	_ = os.WriteFile(path, []byte("items: [{entity: light.a}]\n"), 0644)

	reloads := make(chan reload, 8)
	w, err := Watch(path, func(d *card.Dashboard, err error) {
		reloads <- reload{d, err}
	}, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer func() { _ = w.Close() }()

	_ = os.WriteFile(path, []byte("items: []\n"), 0644)

	select {
	case r := <-reloads:
		if r.err == nil || !card.IsConfigError(r.err) {
			t.Errorf("reload error = %v, want a config error", r.err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after writing an invalid card file")
	}
}

func TestWatchCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.yaml")
	w, err := Watch(path, nil)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if w.Path() != path {
		t.Errorf("Path() = %q, want %q", w.Path(), path)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestWatchCloseWaitsForRunningReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.yaml")
	_ = os.WriteFile(path, []byte("items: [{entity: light.a}]\n"), 0644)

	entered := make(chan struct{}, 1)
	var finished, late atomic.Bool
	var closed atomic.Bool
	w, err := Watch(path, func(d *card.Dashboard, err error) {
		if closed.Load() {
			late.Store(true)
		}
		select {
		case entered <- struct{}{}:
		default:
		}
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	}, WithDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	_ = os.WriteFile(path, []byte("items: [{entity: light.b}]\n"), 0644)

	select {
	case <-entered:
	case <-time.After(3 * time.Second):
		_ = w.Close()
		t.Fatal("no reload after writing the card file")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	closed.Store(true)
	if !finished.Load() {
		t.Error("Close() returned while a reload was still running")
	}

	// nothing is delivered after Close
	_ = os.WriteFile(path, []byte("items: [{entity: light.c}]\n"), 0644)
	time.Sleep(100 * time.Millisecond)
	if late.Load() {
		t.Error("callback ran after Close()")
	}
}
