package services

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/wrenbin/wrenbin/internal/keygen"
	"github.com/wrenbin/wrenbin/internal/policy"
	"github.com/wrenbin/wrenbin/models"
	"github.com/wrenbin/wrenbin/storage"
)

func newService() *PasteService {
	return NewPasteService(storage.NewMemoryStore(), keygen.New(7))
}

func TestCreateAssignsKeyAndDefaults(t *testing.T) {
	svc := newService()

	paste, err := svc.Create(CreateRequest{Content: "hello"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(paste.Key) != 7 {
		t.Errorf("expected 7-char key, got %q", paste.Key)
	}
	if paste.Syntax != "plaintext" {
		t.Errorf("expected syntax default plaintext, got %q", paste.Syntax)
	}
	if paste.ExpiresAt != nil {
		t.Errorf("expected no expiry by default, got %v", paste.ExpiresAt)
	}
	if paste.Size != 5 {
		t.Errorf("expected size 5, got %d", paste.Size)
	}
}

func TestCreateRetriesOnCollision(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewPasteService(store, keygen.New(7))

	// First generated key is already taken; the service must retry with
	// a fresh one instead of failing or overwriting.
	if err := store.Store(pasteWithKey("takenkey")); err != nil {
		t.Fatalf("seed Store failed: %v", err)
	}

	calls := 0
	svc.generate = func() (string, error) {
		calls++
		if calls == 1 {
			return "takenkey", nil
		}
		return fmt.Sprintf("fresh%03d", calls), nil
	}

	paste, err := svc.Create(CreateRequest{Content: "hello"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if paste.Key == "takenkey" {
		t.Errorf("service reused a colliding key")
	}
	if calls != 2 {
		t.Errorf("expected 2 generator calls, got %d", calls)
	}

	// The original occupant must be intact.
	existing, err := store.Get("takenkey")
	if err != nil || existing == nil {
		t.Fatalf("occupant lookup: (%v, %v)", existing, err)
	}
	if existing.Content != "occupant" {
		t.Errorf("occupant was overwritten: %q", existing.Content)
	}
}

func TestCreateExhaustsKeySpace(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewPasteService(store, keygen.New(7))
	if err := store.Store(pasteWithKey("onlykey")); err != nil {
		t.Fatalf("seed Store failed: %v", err)
	}
	svc.generate = func() (string, error) { return "onlykey", nil }

	_, err := svc.Create(CreateRequest{Content: "hello"})
	if !errors.Is(err, ErrKeySpaceExhausted) {
		t.Errorf("expected ErrKeySpaceExhausted, got %v", err)
	}
}

func TestCreateNonPositiveExpiryNeverExpires(t *testing.T) {
	svc := newService()

	for _, minutes := range []int{0, -5} {
		paste, err := svc.Create(CreateRequest{Content: "x", ExpireMinutes: minutes})
		if err != nil {
			t.Fatalf("Create(expire=%d) failed: %v", minutes, err)
		}
		if paste.ExpiresAt != nil {
			t.Errorf("ExpireMinutes=%d: expected never-expires, got %v", minutes, paste.ExpiresAt)
		}
		if got, err := svc.Read(paste.Key, policy.ModeView); err != nil || got == nil {
			t.Errorf("ExpireMinutes=%d: paste should be readable, got (%v, %v)", minutes, got, err)
		}
	}
}

func TestCreatePositiveExpirySetsDeadline(t *testing.T) {
	svc := newService()

	before := time.Now()
	paste, err := svc.Create(CreateRequest{Content: "x", ExpireMinutes: 10})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if paste.ExpiresAt == nil {
		t.Fatalf("expected ExpiresAt to be set")
	}
	want := before.Add(10 * time.Minute)
	if paste.ExpiresAt.Before(want.Add(-time.Minute)) || paste.ExpiresAt.After(want.Add(time.Minute)) {
		t.Errorf("ExpiresAt %v not near %v", paste.ExpiresAt, want)
	}
}

// The scenario from the service contract: a burn paste refuses raw
// access, serves the view exactly once, then is gone.
func TestBurnPasteLifecycle(t *testing.T) {
	svc := newService()

	paste, err := svc.Create(CreateRequest{Content: "hello", BurnAfterReading: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	key := paste.Key

	if _, err := svc.Read(key, policy.ModeRaw); !errors.Is(err, policy.ErrBurnContentForbidden) {
		t.Errorf("raw read of burn paste: expected ErrBurnContentForbidden, got %v", err)
	}
	if _, err := svc.Read(key, policy.ModeDownload); !errors.Is(err, policy.ErrBurnContentForbidden) {
		t.Errorf("download of burn paste: expected ErrBurnContentForbidden, got %v", err)
	}

	// Denied raw/download attempts must not have consumed the paste.
	got, err := svc.Read(key, policy.ModeView)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if got.Content != "hello" {
		t.Errorf("expected content hello, got %q", got.Content)
	}

	if _, err := svc.Read(key, policy.ModeView); !errors.Is(err, ErrNotFound) {
		t.Errorf("second view: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Read(key, policy.ModeRaw); !errors.Is(err, ErrNotFound) {
		t.Errorf("raw after burn: expected ErrNotFound, got %v", err)
	}
}

func TestReadExpiredThenAbsent(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewPasteService(store, keygen.New(7))

	expired := pasteWithKey("gone1234")
	past := time.Now().Add(-time.Minute)
	expired.ExpiresAt = &past
	if err := store.Store(expired); err != nil {
		t.Fatalf("seed Store failed: %v", err)
	}

	if _, err := svc.Read("gone1234", policy.ModeView); !errors.Is(err, ErrExpired) {
		t.Errorf("first read: expected ErrExpired, got %v", err)
	}
	if _, err := svc.Read("gone1234", policy.ModeView); !errors.Is(err, ErrNotFound) {
		t.Errorf("second read: expected ErrNotFound, got %v", err)
	}
}

func TestReadMissingKey(t *testing.T) {
	svc := newService()
	for _, mode := range []policy.AccessMode{policy.ModeView, policy.ModeRaw, policy.ModeDownload} {
		if _, err := svc.Read("missing1", mode); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s read of missing key: expected ErrNotFound, got %v", mode, err)
		}
	}
}

func TestConcurrentViewsOfBurnPaste(t *testing.T) {
	svc := newService()
	paste, err := svc.Create(CreateRequest{Content: "secret", BurnAfterReading: true})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const readers = 32
	var wg sync.WaitGroup
	var hits int64
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if p, err := svc.Read(paste.Key, policy.ModeView); err == nil && p != nil {
				atomic.AddInt64(&hits, 1)
			}
		}()
	}
	wg.Wait()

	if hits != 1 {
		t.Errorf("expected exactly 1 successful view, got %d", hits)
	}
}

func pasteWithKey(key string) *models.Paste {
	return &models.Paste{
		Key:       key,
		Content:   "occupant",
		Syntax:    "plaintext",
		CreatedAt: time.Now(),
		Size:      int64(len("occupant")),
	}
}
