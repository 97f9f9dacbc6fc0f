package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestPhotoStore_SaveAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "img")
	store, err := NewPhotoStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	if err := store.Save(ctx, "img-abcd-pic.png", strings.NewReader("png")); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "img-abcd-pic.png"))
	if err != nil || string(data) != "png" {
		t.Fatalf("expected stored bytes, got %q %v", data, err)
	}

	if err := store.Remove(ctx, "img-abcd-pic.png"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "img-abcd-pic.png")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected file removed, got %v", err)
	}

	if err := store.Remove(ctx, "img-abcd-pic.png"); err != nil {
		t.Fatalf("removing a missing photo must succeed, got %v", err)
	}
}

func TestPhotoStore_NeverOverwrites(t *testing.T) {
	store, _ := NewPhotoStore(t.TempDir())
	ctx := context.Background()

	if err := store.Save(ctx, "a.png", strings.NewReader("first")); err != nil {
		t.Fatalf("save: %v", err)
	}
	err := store.Save(ctx, "a.png", strings.NewReader("second"))
	if !errors.Is(err, fs.ErrExist) {
		t.Fatalf("expected fs.ErrExist, got %v", err)
	}

	data, _ := os.ReadFile(filepath.Join(store.Dir(), "a.png"))
	if string(data) != "first" {
		t.Fatalf("expected original content kept, got %q", data)
	}
}

func TestPhotoStore_PartialWriteIsRemoved(t *testing.T) {
	store, _ := NewPhotoStore(t.TempDir())

	if err := store.Save(context.Background(), "a.png", failingReader{}); err == nil {
		t.Fatalf("expected write error")
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), "a.png")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected partial file removed, got %v", err)
	}
}

func TestPhotoStore_RejectsTraversal(t *testing.T) {
	store, _ := NewPhotoStore(t.TempDir())

	for _, name := range []string{"", "..", "../x.png", "a/b.png", `a\b.png`} {
		if err := store.Save(context.Background(), name, strings.NewReader("x")); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("name %q: expected ErrInvalidName, got %v", name, err)
		}
	}
}
