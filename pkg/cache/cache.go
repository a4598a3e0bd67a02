// Package cache stores analysis snapshots keyed by project root, with
// optional disk persistence between runs.
package cache

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pyrisk/pyrisk/pkg/analysis"
)

// ErrNotFound is returned when no snapshot exists for a root.
var ErrNotFound = errors.New("no snapshot for root")

// Entry is one stored snapshot with its metadata.
type Entry struct {
	Root     string
	Snapshot *analysis.CodebaseAnalysis
	StoredAt time.Time
}

// Options configures the snapshot store.
type Options struct {
	// MaxEntries is the maximum number of roots to keep.
	// 0 means unlimited. When exceeded, the entry with the oldest
	// StoredAt is evicted.
	MaxEntries int

	// OnEvict is called when an entry is evicted.
	OnEvict func(root string, snapshot *analysis.CodebaseAnalysis)
}

// SnapshotStore keeps the latest analysis snapshot per project root.
// Each Put replaces the previous snapshot for the same root; snapshots
// are treated as immutable once stored.
type SnapshotStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	opts    Options
}

// New creates an empty snapshot store.
func New(opts Options) *SnapshotStore {
	return &SnapshotStore{
		entries: make(map[string]*Entry),
		opts:    opts,
	}
}

// Put stores a snapshot, replacing any previous snapshot for the same root.
// Roots are normalized to absolute paths so "./proj" and its absolute form
// hit the same entry.
func (s *SnapshotStore) Put(root string, snapshot *analysis.CodebaseAnalysis) error {
	key, err := normalizeRoot(root)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &Entry{
		Root:     key,
		Snapshot: snapshot,
		StoredAt: time.Now(),
	}
	s.evictIfNeeded()
	return nil
}

// Get retrieves the latest snapshot for a root.
func (s *SnapshotStore) Get(root string) (*analysis.CodebaseAnalysis, error) {
	key, err := normalizeRoot(root)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return entry.Snapshot, nil
}

// Delete removes the snapshot for a root, if any.
func (s *SnapshotStore) Delete(root string) {
	key, err := normalizeRoot(root)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return
	}
	delete(s.entries, key)
	if s.opts.OnEvict != nil {
		s.opts.OnEvict(key, entry.Snapshot)
	}
}

// Clear removes all snapshots.
func (s *SnapshotStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
}

// Len returns the number of stored roots.
func (s *SnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Roots returns the stored root paths in unspecified order.
func (s *SnapshotStore) Roots() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roots := make([]string, 0, len(s.entries))
	for root := range s.entries {
		roots = append(roots, root)
	}
	return roots
}

// evictIfNeeded drops oldest-stored entries until the count limit holds.
// Caller must hold the write lock.
func (s *SnapshotStore) evictIfNeeded() {
	if s.opts.MaxEntries <= 0 {
		return
	}
	for len(s.entries) > s.opts.MaxEntries {
		var oldest *Entry
		for _, entry := range s.entries {
			if oldest == nil || entry.StoredAt.Before(oldest.StoredAt) {
				oldest = entry
			}
		}
		if oldest == nil {
			return
		}
		delete(s.entries, oldest.Root)
		if s.opts.OnEvict != nil {
			s.opts.OnEvict(oldest.Root, oldest.Snapshot)
		}
	}
}

// Save persists all entries to a writer using msgpack.
func (s *SnapshotStore) Save(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry)
	}

	enc := msgpack.NewEncoder(w)
	return enc.Encode(entries)
}

// Load restores entries from a reader, replacing the current contents.
func (s *SnapshotStore) Load(r io.Reader) error {
	var entries []*Entry
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode snapshot store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry, len(entries))
	for _, entry := range entries {
		s.entries[entry.Root] = entry
	}
	s.evictIfNeeded()
	return nil
}

// PersistToFile saves the store to a file, creating parent directories.
func PersistToFile(s *SnapshotStore, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer f.Close()

	return s.Save(f)
}

// LoadFromFile loads the store from a file. A missing file is not an error.
func LoadFromFile(s *SnapshotStore, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer f.Close()

	return s.Load(f)
}

func normalizeRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving root path: %w", err)
	}
	return filepath.Clean(abs), nil
}
