package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	payload := []byte("fake image data")
	if err := store.Upload(context.Background(), "abc_foto.jpg", bytes.NewReader(payload), int64(len(payload)), "image/jpeg"); err != nil {
		t.Fatalf("upload: %v", err)
	}

	rc, err := store.Download(context.Background(), "abc_foto.jpg")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}
}

func TestLocalStorageDownloadMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	if _, err := store.Download(context.Background(), "nope.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStorageDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	if err := store.Upload(context.Background(), "gone.jpg", bytes.NewReader([]byte("x")), 1, "image/jpeg"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if err := store.Delete(context.Background(), "gone.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Download(context.Background(), "gone.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing blob is a no-op, not an error.
	if err := store.Delete(context.Background(), "gone.jpg"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestLocalStorageRejectsPathKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}

	for _, key := range []string{"", "../escape.jpg", "a/b.jpg", "/abs.jpg"} {
		if err := store.Upload(context.Background(), key, bytes.NewReader(nil), 0, ""); err == nil {
			t.Errorf("upload accepted invalid key %q", key)
		}
		if _, err := store.Download(context.Background(), key); err == nil {
			t.Errorf("download accepted invalid key %q", key)
		}
	}
}

func TestLocalStoragePublicURL(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "/uploads/")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	if got := store.PublicURL("abc_foto.jpg"); got != "/uploads/abc_foto.jpg" {
		t.Fatalf("unexpected public url %q", got)
	}
}
