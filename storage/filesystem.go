package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wrenbin/wrenbin/models"
)

// FilesystemStore implements PasteStore with one JSON document per paste
// under a base directory. A store-wide RWMutex serializes mutations so the
// burn-and-remove sequence stays atomic; throughput matters less here than
// in the memory backend since every operation already pays for disk I/O.
type FilesystemStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFilesystemStore creates a new filesystem storage backend.
func NewFilesystemStore(basePath string) (*FilesystemStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &FilesystemStore{basePath: basePath}, nil
}

func (f *FilesystemStore) pastePath(key string) string {
	return filepath.Join(f.basePath, key+".json")
}

// read loads a paste document without taking locks; callers hold f.mu.
func (f *FilesystemStore) read(key string) (*models.Paste, error) {
	data, err := os.ReadFile(f.pastePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read paste: %w", err)
	}
	var paste models.Paste
	if err := json.Unmarshal(data, &paste); err != nil {
		return nil, fmt.Errorf("failed to unmarshal paste: %w", err)
	}
	return &paste, nil
}

// Store saves a paste, failing with ErrKeyCollision if the key file holds
// a live paste.
func (f *FilesystemStore) Store(paste *models.Paste) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, err := f.read(paste.Key)
	if err != nil {
		return err
	}
	if existing != nil && !existing.IsExpired() {
		return ErrKeyCollision
	}

	data, err := json.MarshalIndent(paste, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal paste: %w", err)
	}
	if err := os.WriteFile(f.pastePath(paste.Key), data, 0644); err != nil {
		return fmt.Errorf("failed to write paste: %w", err)
	}
	return nil
}

// Get retrieves a paste without consuming it.
func (f *FilesystemStore) Get(key string) (*models.Paste, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	paste, err := f.read(key)
	if err != nil || paste == nil {
		return nil, err
	}
	if paste.IsExpired() {
		_ = os.Remove(f.pastePath(key))
		return nil, ErrExpired
	}
	return paste, nil
}

// GetAndBurn retrieves a paste for the view path, removing it when it is
// flagged burn-after-reading. The whole sequence runs under the write
// lock.
func (f *FilesystemStore) GetAndBurn(key string) (*models.Paste, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	paste, err := f.read(key)
	if err != nil || paste == nil {
		return nil, err
	}
	if paste.IsExpired() {
		_ = os.Remove(f.pastePath(key))
		return nil, ErrExpired
	}
	if paste.BurnAfterReading {
		if err := os.Remove(f.pastePath(key)); err != nil {
			return nil, fmt.Errorf("failed to burn paste: %w", err)
		}
	}
	return paste, nil
}

// Delete removes a paste.
func (f *FilesystemStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.pastePath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PurgeExpired scans the base directory and removes expired pastes.
func (f *FilesystemStore) PurgeExpired() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read base directory: %w", err)
	}

	purged := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		key := strings.TrimSuffix(entry.Name(), ".json")
		paste, err := f.read(key)
		if err != nil || paste == nil {
			continue
		}
		if paste.IsExpired() {
			if err := os.Remove(f.pastePath(key)); err == nil {
				purged++
			}
		}
	}
	return purged, nil
}

// Close closes the storage backend.
func (f *FilesystemStore) Close() error {
	return nil
}
