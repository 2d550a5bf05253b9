package storage

import (
	"errors"

	"github.com/wrenbin/wrenbin/models"
)

// ErrKeyCollision is returned by Store when the key is already held by a
// live (non-expired) paste. The caller regenerates the key and retries.
var ErrKeyCollision = errors.New("key already in use")

// ErrExpired is returned by a lookup that observed an expired paste and
// reclaimed it. Backends whose engine removes expired entries on its own
// (Redis TTL, Mongo/Dynamo TTL sweeps) may report plain absence instead;
// only absence itself is contractual.
var ErrExpired = errors.New("paste expired")

// PasteStore defines the interface for paste storage backends.
//
// Lookups signal absence with a (nil, nil) result, never an error: not
// found, already burned and natively expired are indistinguishable here.
// The service layer decides how each surfaces to clients.
type PasteStore interface {
	// Store inserts the paste under paste.Key. Returns ErrKeyCollision
	// when the key belongs to a live paste; a slot held only by an
	// expired paste is overwritten.
	Store(paste *models.Paste) error

	// Get is the non-destructive lookup used by the raw and download
	// paths. It never removes a live paste.
	Get(key string) (*models.Paste, error)

	// GetAndBurn is the view-path lookup. A live burn-after-reading
	// paste is removed and returned in one atomic step: under
	// concurrent calls for the same key exactly one caller receives
	// the paste and the rest observe absence.
	GetAndBurn(key string) (*models.Paste, error)

	// Delete removes a paste. Deleting an absent key is not an error.
	Delete(key string) error

	// PurgeExpired removes expired pastes and reports how many were
	// reclaimed. Memory hygiene only; every read path re-checks expiry
	// regardless.
	PurgeExpired() (int, error)

	// Close closes the storage backend.
	Close() error
}
