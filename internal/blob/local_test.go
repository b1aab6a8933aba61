package blob

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLocalStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	content := "receipt bytes"
	var lastWritten int64
	err = s.Upload(ctx, "rec-1", strings.NewReader(content), int64(len(content)), func(written, total int64) {
		lastWritten = written
		if total != int64(len(content)) {
			t.Fatalf("expected total %d, got %d", len(content), total)
		}
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if lastWritten != int64(len(content)) {
		t.Fatalf("expected progress up to %d, got %d", len(content), lastWritten)
	}

	url, err := s.URL(ctx, "rec-1")
	if err != nil || url != "/api/blobs/rec-1" {
		t.Fatalf("url: %q %v", url, err)
	}

	keys, err := s.List(ctx, "rec-")
	if err != nil || len(keys) != 1 || keys[0] != "rec-1" {
		t.Fatalf("list: %v %v", keys, err)
	}

	if err := s.Delete(ctx, "rec-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "rec-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.URL(ctx, "rec-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing blob URL, got %v", err)
	}
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Upload(ctx, "../escape", strings.NewReader("x"), 1, nil); err == nil {
		t.Fatal("expected error for traversal key")
	}
}
