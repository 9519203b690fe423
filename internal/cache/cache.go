// Package cache implements the persistent response cache: a size/time-bounded
// key-value store keyed by a request fingerprint. The index (lightweight
// metadata) lives apart from entry payloads so eviction decisions never load
// full response bodies. Layout on disk:
//
//	<dir>/index.json   entry metadata
//	<dir>/<key>.json   one payload per entry
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"hybridd/pkg/types"
)

const (
	indexFile    = "index.json"
	previewRunes = 80
)

// Entry is a cached generation with its bookkeeping metadata.
type Entry struct {
	Key          string
	Prompt       string
	Model        string
	Response     string
	Usage        types.Usage
	Params       types.GenParams
	CreatedAt    time.Time
	LastAccessed time.Time
	HitCount     int64
	SizeBytes    int64
}

// indexEntry is the metadata persisted in index.json. It deliberately
// excludes the response payload.
type indexEntry struct {
	Key           string    `json:"key"`
	Model         string    `json:"model"`
	PromptPreview string    `json:"prompt_preview"`
	CreatedAt     time.Time `json:"created_at"`
	LastAccessed  time.Time `json:"last_accessed"`
	HitCount      int64     `json:"hit_count"`
	SizeBytes     int64     `json:"size_bytes"`
}

// payload is the per-entry file format.
type payload struct {
	Key       string          `json:"key"`
	Prompt    string          `json:"prompt"`
	Model     string          `json:"model"`
	Response  string          `json:"response"`
	Usage     types.Usage     `json:"usage,omitempty"`
	Params    types.GenParams `json:"params"`
	Timestamp time.Time       `json:"timestamp"`
}

// Store is the on-disk response cache. A single mutex guards index mutation;
// payload I/O happens outside the lock. Expired entries are purged
// opportunistically on Get and Put, there is no background sweep.
type Store struct {
	dir      string
	maxBytes int64
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu         sync.Mutex
	index      map[string]*indexEntry
	totalBytes int64

	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64
}

// Open loads (or creates) a cache directory. Index entries whose payload file
// has gone missing are dropped; an unreadable index starts the cache empty
// rather than failing startup.
func Open(dir string, maxBytes int64, ttl time.Duration, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	s := &Store{
		dir:      dir,
		maxBytes: maxBytes,
		ttl:      ttl,
		log:      log.With().Str("component", "cache").Logger(),
		now:      time.Now,
		index:    make(map[string]*indexEntry),
	}
	s.loadIndex()
	s.publishGauges()
	return s, nil
}

// Get looks up a fingerprint. On a hit it bumps last-accessed and hit-count
// and returns the payload. Expired entries are purged and reported as misses.
// A corrupted payload is recovered as a miss: logged, removed from the index,
// never surfaced to the caller.
func (s *Store) Get(key string) (Entry, bool) {
	now := s.now()
	s.mu.Lock()
	s.purgeExpiredLocked(now)
	ie, ok := s.index[key]
	if !ok {
		s.mu.Unlock()
		s.misses.Add(1)
		cacheMissesTotal.Inc()
		return Entry{}, false
	}
	meta := *ie
	s.mu.Unlock()

	pl, err := s.readPayload(key)
	if err != nil {
		s.log.Warn().Str("key", key).Err(err).Msg("corrupted cache entry, dropping")
		cacheCorruptionsTotal.Inc()
		s.mu.Lock()
		s.dropLocked(key)
		s.writeIndexLocked()
		s.mu.Unlock()
		s.misses.Add(1)
		cacheMissesTotal.Inc()
		return Entry{}, false
	}

	s.mu.Lock()
	if ie, ok = s.index[key]; ok {
		ie.LastAccessed = now
		ie.HitCount++
		meta = *ie
		s.writeIndexLocked()
	}
	s.mu.Unlock()

	s.hits.Add(1)
	cacheHitsTotal.Inc()
	return Entry{
		Key:          key,
		Prompt:       pl.Prompt,
		Model:        pl.Model,
		Response:     pl.Response,
		Usage:        pl.Usage,
		Params:       pl.Params,
		CreatedAt:    meta.CreatedAt,
		LastAccessed: meta.LastAccessed,
		HitCount:     meta.HitCount,
		SizeBytes:    meta.SizeBytes,
	}, true
}

// Put stores a generation and then enforces the size bound, evicting the
// least-recently-accessed entries until the total fits. Concurrent writers of
// the same key race benignly: both hold semantically identical responses and
// the last write wins.
func (s *Store) Put(e Entry) error {
	now := s.now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.LastAccessed.IsZero() {
		e.LastAccessed = e.CreatedAt
	}
	pl := payload{
		Key:       e.Key,
		Prompt:    e.Prompt,
		Model:     e.Model,
		Response:  e.Response,
		Usage:     e.Usage,
		Params:    e.Params,
		Timestamp: e.CreatedAt,
	}
	b, err := json.Marshal(pl)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	size := int64(len(b))
	if err := writeFileAtomic(s.payloadPath(e.Key), b); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}

	s.mu.Lock()
	s.purgeExpiredLocked(now)
	if old, ok := s.index[e.Key]; ok {
		s.totalBytes -= old.SizeBytes
	}
	s.index[e.Key] = &indexEntry{
		Key:           e.Key,
		Model:         e.Model,
		PromptPreview: preview(e.Prompt),
		CreatedAt:     e.CreatedAt,
		LastAccessed:  e.LastAccessed,
		HitCount:      e.HitCount,
		SizeBytes:     size,
	}
	s.totalBytes += size
	s.evictLocked()
	s.writeIndexLocked()
	s.mu.Unlock()
	return nil
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.index)
}

// SizeBytes returns the total payload size currently accounted for.
func (s *Store) SizeBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalBytes
}

// Stats returns a snapshot of cache counters for /status.
func (s *Store) Stats() types.CacheStats {
	s.mu.Lock()
	entries := len(s.index)
	total := s.totalBytes
	s.mu.Unlock()
	return types.CacheStats{
		Entries:     entries,
		SizeBytes:   total,
		MaxBytes:    s.maxBytes,
		Hits:        s.hits.Load(),
		Misses:      s.misses.Load(),
		Evictions:   s.evictions.Load(),
		Expirations: s.expirations.Load(),
	}
}

// evictLocked removes entries while the total exceeds the bound. Victim order:
// oldest last-accessed first; ties broken by oldest created-at, then by key so
// eviction under pressure stays deterministic.
func (s *Store) evictLocked() {
	for s.maxBytes > 0 && s.totalBytes > s.maxBytes && len(s.index) > 0 {
		var victim *indexEntry
		for _, ie := range s.index {
			if victim == nil || lessLRU(ie, victim) {
				victim = ie
			}
		}
		s.log.Info().
			Str("key", victim.Key).
			Int64("size_bytes", victim.SizeBytes).
			Time("last_accessed", victim.LastAccessed).
			Msg("evicting cache entry")
		s.dropLocked(victim.Key)
		s.evictions.Add(1)
		cacheEvictionsTotal.Inc()
	}
}

func lessLRU(a, b *indexEntry) bool {
	if !a.LastAccessed.Equal(b.LastAccessed) {
		return a.LastAccessed.Before(b.LastAccessed)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.Key < b.Key
}

// purgeExpiredLocked removes entries older than the TTL.
func (s *Store) purgeExpiredLocked(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for key, ie := range s.index {
		if now.Sub(ie.CreatedAt) > s.ttl {
			s.dropLocked(key)
			s.expirations.Add(1)
			cacheExpirationsTotal.Inc()
			s.log.Debug().Str("key", key).Time("created_at", ie.CreatedAt).Msg("purged expired cache entry")
		}
	}
}

// dropLocked removes an entry from index, accounting and disk.
func (s *Store) dropLocked(key string) {
	ie, ok := s.index[key]
	if !ok {
		return
	}
	delete(s.index, key)
	s.totalBytes -= ie.SizeBytes
	if err := os.Remove(s.payloadPath(key)); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Str("key", key).Err(err).Msg("remove cache payload")
	}
	s.publishGaugesLocked()
}

func (s *Store) payloadPath(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) readPayload(key string) (payload, error) {
	var pl payload
	b, err := os.ReadFile(s.payloadPath(key))
	if err != nil {
		return pl, err
	}
	if err := json.Unmarshal(b, &pl); err != nil {
		return pl, err
	}
	if pl.Response == "" && pl.Prompt == "" {
		return pl, fmt.Errorf("empty cache payload")
	}
	return pl, nil
}

// loadIndex reads index.json, dropping entries whose payload file is gone and
// recomputing the running total.
func (s *Store) loadIndex() {
	b, err := os.ReadFile(filepath.Join(s.dir, indexFile))
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Msg("unreadable cache index, starting empty")
		}
		return
	}
	var entries []indexEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		s.log.Warn().Err(err).Msg("corrupted cache index, starting empty")
		return
	}
	for i := range entries {
		ie := entries[i]
		if _, err := os.Stat(s.payloadPath(ie.Key)); err != nil {
			s.log.Warn().Str("key", ie.Key).Msg("index entry without payload, dropping")
			continue
		}
		s.index[ie.Key] = &ie
		s.totalBytes += ie.SizeBytes
	}
}

// writeIndexLocked persists the index. Best effort: a failed write is logged
// and retried on the next mutation.
func (s *Store) writeIndexLocked() {
	entries := make([]indexEntry, 0, len(s.index))
	for _, ie := range s.index {
		entries = append(entries, *ie)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		s.log.Warn().Err(err).Msg("marshal cache index")
		return
	}
	if err := writeFileAtomic(filepath.Join(s.dir, indexFile), b); err != nil {
		s.log.Warn().Err(err).Msg("write cache index")
	}
	s.publishGaugesLocked()
}

func (s *Store) publishGauges() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishGaugesLocked()
}

func (s *Store) publishGaugesLocked() {
	cacheSizeBytes.Set(float64(s.totalBytes))
	cacheEntries.Set(float64(len(s.index)))
}

func preview(prompt string) string {
	r := []rune(NormalizePrompt(prompt))
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return string(r)
}

// writeFileAtomic writes via a temp file and rename so readers never observe
// a partial payload.
func writeFileAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}
