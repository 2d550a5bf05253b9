package storage

import (
	"hash/fnv"
	"sync"

	"github.com/wrenbin/wrenbin/models"
)

const shardCount = 32

// MemoryStore implements PasteStore with an in-process sharded map. Keys
// hash to one of shardCount shards, each guarded by its own RWMutex, so
// the check-expiry/check-burn/remove sequence runs under a single shard
// lock without serializing unrelated keys.
type MemoryStore struct {
	shards [shardCount]*memoryShard
}

type memoryShard struct {
	mu     sync.RWMutex
	pastes map[string]*models.Paste
}

// NewMemoryStore creates a new in-memory storage backend.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	for i := range s.shards {
		s.shards[i] = &memoryShard{pastes: make(map[string]*models.Paste)}
	}
	return s
}

func (s *MemoryStore) shardFor(key string) *memoryShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%shardCount]
}

// Store saves a paste, failing with ErrKeyCollision if the key is held
// by a live paste. An expired occupant is overwritten.
func (s *MemoryStore) Store(paste *models.Paste) error {
	sh := s.shardFor(paste.Key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if existing, ok := sh.pastes[paste.Key]; ok && !existing.IsExpired() {
		return ErrKeyCollision
	}
	sh.pastes[paste.Key] = paste
	return nil
}

// Get retrieves a paste without consuming it. An expired paste is
// reclaimed and reported as ErrExpired.
func (s *MemoryStore) Get(key string) (*models.Paste, error) {
	sh := s.shardFor(key)

	sh.mu.RLock()
	paste, ok := sh.pastes[key]
	if ok && !paste.IsExpired() {
		sh.mu.RUnlock()
		return paste, nil
	}
	sh.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	// Expired: re-check under the write lock before reclaiming, since
	// the slot may have been overwritten by a fresh paste meanwhile.
	sh.mu.Lock()
	defer sh.mu.Unlock()
	paste, ok = sh.pastes[key]
	if !ok {
		return nil, nil
	}
	if !paste.IsExpired() {
		return paste, nil
	}
	delete(sh.pastes, key)
	return nil, ErrExpired
}

// GetAndBurn retrieves a paste for the view path. A burn-after-reading
// paste transitions from present to consumed under the shard lock, so at
// most one concurrent caller ever receives it.
func (s *MemoryStore) GetAndBurn(key string) (*models.Paste, error) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	paste, ok := sh.pastes[key]
	if !ok {
		return nil, nil
	}
	if paste.IsExpired() {
		delete(sh.pastes, key)
		return nil, ErrExpired
	}
	if paste.BurnAfterReading {
		delete(sh.pastes, key)
	}
	return paste, nil
}

// Delete removes a paste.
func (s *MemoryStore) Delete(key string) error {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.pastes, key)
	return nil
}

// PurgeExpired removes all expired pastes, shard by shard.
func (s *MemoryStore) PurgeExpired() (int, error) {
	purged := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, paste := range sh.pastes {
			if paste.IsExpired() {
				delete(sh.pastes, key)
				purged++
			}
		}
		sh.mu.Unlock()
	}
	return purged, nil
}

// Close releases nothing; the memory store has no external resources.
func (s *MemoryStore) Close() error {
	return nil
}
