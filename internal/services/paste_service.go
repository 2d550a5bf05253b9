package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/wrenbin/wrenbin/internal/keygen"
	"github.com/wrenbin/wrenbin/internal/metrics"
	"github.com/wrenbin/wrenbin/internal/policy"
	"github.com/wrenbin/wrenbin/models"
	"github.com/wrenbin/wrenbin/storage"
)

// maxKeyAttempts bounds the regenerate-and-retry loop on key collisions.
// Hitting the bound means the key space is effectively saturated for the
// configured alphabet and length, which is a deployment problem, not a
// per-request one.
const maxKeyAttempts = 16

// ErrNotFound is returned when a paste does not exist, was already
// consumed, or was expired and reclaimed before this access.
var ErrNotFound = errors.New("paste not found")

// ErrExpired is returned when the lookup itself observed the paste
// expiring. Re-exported so handlers depend on one package for the read
// taxonomy.
var ErrExpired = storage.ErrExpired

// ErrKeySpaceExhausted is returned when key generation keeps colliding.
var ErrKeySpaceExhausted = errors.New("could not generate a unique key")

// PasteService handles paste business logic on top of a storage backend.
type PasteService struct {
	store storage.PasteStore

	// generate is swappable in tests to force collisions.
	generate func() (string, error)
}

// NewPasteService creates a new paste service.
func NewPasteService(store storage.PasteStore, gen *keygen.Generator) *PasteService {
	return &PasteService{
		store:    store,
		generate: gen.Generate,
	}
}

// CreateRequest represents a request to create a paste.
type CreateRequest struct {
	Content          string
	Syntax           string
	BurnAfterReading bool
	// ExpireMinutes <= 0 means the paste never expires.
	ExpireMinutes int
}

// Create builds a paste from the request, assigns it a fresh key and
// inserts it, regenerating the key on collision.
func (s *PasteService) Create(req CreateRequest) (*models.Paste, error) {
	syntax := req.Syntax
	if syntax == "" {
		syntax = "plaintext"
	}

	var expiresAt *time.Time
	if req.ExpireMinutes > 0 {
		t := time.Now().Add(time.Duration(req.ExpireMinutes) * time.Minute)
		expiresAt = &t
	}

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate key: %w", err)
		}

		paste := &models.Paste{
			Key:              key,
			Content:          req.Content,
			Syntax:           syntax,
			BurnAfterReading: req.BurnAfterReading,
			ExpiresAt:        expiresAt,
			CreatedAt:        time.Now(),
			Size:             int64(len(req.Content)),
		}

		err = s.store.Store(paste)
		if err == nil {
			metrics.PastesCreated.Inc()
			return paste, nil
		}
		if errors.Is(err, storage.ErrKeyCollision) {
			metrics.KeyCollisions.Inc()
			continue
		}
		return nil, fmt.Errorf("failed to store paste: %w", err)
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrKeySpaceExhausted, maxKeyAttempts)
}

// Read retrieves a paste in the given access mode. View consumes
// burn-after-reading pastes; raw and download refuse them via the access
// policy and never touch the stored record.
func (s *PasteService) Read(key string, mode policy.AccessMode) (*models.Paste, error) {
	var paste *models.Paste
	var err error

	if mode == policy.ModeView {
		paste, err = s.store.GetAndBurn(key)
	} else {
		paste, err = s.store.Get(key)
	}
	if err != nil {
		if errors.Is(err, storage.ErrExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("failed to retrieve paste: %w", err)
	}
	if paste == nil {
		return nil, ErrNotFound
	}

	if err := policy.Allow(mode, paste); err != nil {
		return nil, err
	}

	metrics.PastesRead.WithLabelValues(mode.String()).Inc()
	if mode == policy.ModeView && paste.BurnAfterReading {
		metrics.PastesBurned.Inc()
	}
	return paste, nil
}

// PurgeExpired runs one reclamation pass over the store.
func (s *PasteService) PurgeExpired() (int, error) {
	purged, err := s.store.PurgeExpired()
	if err != nil {
		return purged, err
	}
	metrics.PastesPurged.Add(float64(purged))
	return purged, nil
}
