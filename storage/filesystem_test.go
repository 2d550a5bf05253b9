package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newFilesystemStore(t *testing.T) *FilesystemStore {
	t.Helper()
	store, err := NewFilesystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create filesystem store: %v", err)
	}
	return store
}

func TestFilesystemStoreRoundTrip(t *testing.T) {
	store := newFilesystemStore(t)

	if err := store.Store(newPaste("abc1234", false, nil)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	paste, err := store.Get("abc1234")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if paste == nil || paste.Content != "content for abc1234" {
		t.Fatalf("unexpected paste: %+v", paste)
	}
	if paste.ExpiresAt != nil {
		t.Errorf("expected nil ExpiresAt to survive the round trip, got %v", paste.ExpiresAt)
	}
}

func TestFilesystemStoreKeyCollision(t *testing.T) {
	store := newFilesystemStore(t)

	if err := store.Store(newPaste("abc1234", false, future(time.Hour))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := store.Store(newPaste("abc1234", false, nil)); !errors.Is(err, ErrKeyCollision) {
		t.Errorf("expected ErrKeyCollision, got %v", err)
	}

	// An expired occupant does not block the slot.
	if err := store.Store(newPaste("old4321", false, future(-time.Minute))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := store.Store(newPaste("old4321", false, nil)); err != nil {
		t.Errorf("Store over expired slot failed: %v", err)
	}
}

func TestFilesystemStoreBurnRemovesFile(t *testing.T) {
	store := newFilesystemStore(t)

	if err := store.Store(newPaste("abc1234", true, nil)); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	paste, err := store.GetAndBurn("abc1234")
	if err != nil || paste == nil {
		t.Fatalf("first view: (%v, %v)", paste, err)
	}

	if _, err := os.Stat(filepath.Join(store.basePath, "abc1234.json")); !os.IsNotExist(err) {
		t.Errorf("expected paste file removed after burn")
	}
	if paste, _ := store.GetAndBurn("abc1234"); paste != nil {
		t.Errorf("second view should observe absence, got %+v", paste)
	}
}

func TestFilesystemStoreExpiredReclaimed(t *testing.T) {
	store := newFilesystemStore(t)

	if err := store.Store(newPaste("abc1234", false, future(-time.Minute))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	paste, err := store.Get("abc1234")
	if paste != nil {
		t.Fatalf("expired paste must not be returned, got %+v", paste)
	}
	if !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
	if paste, err := store.Get("abc1234"); paste != nil || err != nil {
		t.Errorf("expected (nil, nil) after reclamation, got (%v, %v)", paste, err)
	}
}

func TestFilesystemStorePurgeExpired(t *testing.T) {
	store := newFilesystemStore(t)

	if err := store.Store(newPaste("live123", false, future(time.Hour))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := store.Store(newPaste("dead123", false, future(-time.Minute))); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	purged, err := store.PurgeExpired()
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("expected 1 purged, got %d", purged)
	}
	if paste, _ := store.Get("live123"); paste == nil {
		t.Errorf("live paste was purged")
	}
}
