// Package cache memoizes interestingness verdicts by candidate content
// fingerprint, so textually identical candidates are tested at most once
// per run.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/gnolang/treduce/internal/tester"
)

// Cache stores verdicts keyed by content fingerprint. Implementations must
// support concurrent lookups and idempotent inserts: verdicts are
// deterministic per content, so a duplicate Put for the same key is a
// no-op, never a conflict.
type Cache interface {
	Get(fingerprint string) (tester.Verdict, bool)
	Put(fingerprint string, v tester.Verdict)
}

// Fingerprint derives the cache key from a candidate's unparsed content.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Memory is an in-process Cache.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]tester.Verdict
}

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]tester.Verdict)}
}

// Get implements Cache.
func (m *Memory) Get(fingerprint string) (tester.Verdict, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[fingerprint]
	return v, ok
}

// Put implements Cache. The first verdict recorded for a key wins; later
// inserts for the same key are ignored.
func (m *Memory) Put(fingerprint string, v tester.Verdict) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[fingerprint]; ok {
		return
	}
	m.entries[fingerprint] = v
}

// Len returns the number of cached verdicts.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
