// Package dedup marks files whose content hash was already seen for the
// same user and links them to the originating file. Deduplication never
// crosses user boundaries.
package dedup

import (
	"context"
	"fmt"
	"sync"

	"log/slog"

	"github.com/folioscan/folioscan/internal/types"
)

// FileRef identifies a previously stored file by hash
type FileRef struct {
	Path     string
	UploadID string
	Hash     string
}

// Store is the persistence collaborator: lookups return the earliest file
// recorded under (user, hash).
type Store interface {
	Lookup(ctx context.Context, userID int64, hash string) (FileRef, bool, error)
	Record(ctx context.Context, userID int64, ref FileRef) error
	Close() error
}

// Deduplicator applies duplicate marking for one user's upload
type Deduplicator struct {
	store    Store
	userID   int64
	uploadID string
}

// NewDeduplicator creates a deduplicator scoped to one user and upload
func NewDeduplicator(store Store, userID int64, uploadID string) *Deduplicator {
	return &Deduplicator{store: store, userID: userID, uploadID: uploadID}
}

// Apply walks results in their (path-sorted) order, so which file counts
// as the original within one upload is deterministic. Skipped files and
// files without a hash are left untouched.
func (d *Deduplicator) Apply(ctx context.Context, results []types.ScanResult) error {
	duplicates := 0
	for _, result := range results {
		info := result.Info()
		if info.Skipped || info.ContentHash == "" {
			continue
		}

		prior, found, err := d.store.Lookup(ctx, d.userID, info.ContentHash)
		if err != nil {
			return fmt.Errorf("dedup lookup failed: %w", err)
		}

		if found {
			info.IsDuplicate = true
			info.OriginalFile = prior.Path
			duplicates++
			continue
		}

		ref := FileRef{Path: info.FilePath, UploadID: d.uploadID, Hash: info.ContentHash}
		if err := d.store.Record(ctx, d.userID, ref); err != nil {
			return fmt.Errorf("dedup record failed: %w", err)
		}
	}

	if duplicates > 0 {
		slog.Debug("Marked duplicates", "count", duplicates, "user_id", d.userID)
	}
	return nil
}

// MemoryStore keeps hashes in process memory; used for tests and
// one-shot runs without a store path.
type MemoryStore struct {
	mu    sync.Mutex
	byKey map[string]FileRef // "userID\x00hash" -> earliest ref
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byKey: make(map[string]FileRef)}
}

func memKey(userID int64, hash string) string {
	return fmt.Sprintf("%d\x00%s", userID, hash)
}

// Lookup implements Store
func (s *MemoryStore) Lookup(_ context.Context, userID int64, hash string) (FileRef, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ref, found := s.byKey[memKey(userID, hash)]
	return ref, found, nil
}

// Record implements Store; the first record for a key wins
func (s *MemoryStore) Record(_ context.Context, userID int64, ref FileRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memKey(userID, ref.Hash)
	if _, exists := s.byKey[key]; !exists {
		s.byKey[key] = ref
	}
	return nil
}

// Close implements Store
func (s *MemoryStore) Close() error { return nil }
