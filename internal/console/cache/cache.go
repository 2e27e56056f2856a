// Package cache holds short-lived upstream API responses so repeated reads of
// the same resource for the same identity do not spend rate-limited calls.
package cache

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/specter/pkg/cryptox"
)

const DefaultTTL = 5 * time.Minute

// Key identifies a cached response: who asked (Scope, usually the UPN), what
// was asked (Operation) and with which parameters.
type Key struct {
	Scope     string
	Operation string
	Params    any
}

// String renders scope|operation|fingerprint. The fingerprint is a hash of
// the JSON encoding of Params, empty when there are none.
func (k Key) String() string {
	fp := ""
	if k.Params != nil {
		if b, err := json.Marshal(k.Params); err == nil && string(b) != "null" {
			fp = cryptox.Fingerprint(b)
		}
	}
	return k.Scope + "|" + k.Operation + "|" + fp
}

// Cache is a TTL cache for opaque payloads. Writers racing on one key are
// resolved last-write-wins.
type Cache interface {
	Get(key Key) ([]byte, bool)
	Set(key Key, value []byte, ttl time.Duration)
	Delete(key Key)
	// DeleteScope drops every entry for scope; "" drops everything.
	DeleteScope(scope string)
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache. Expired entries are removed when read or by
// Purge.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time

	hits, misses uint64
}

func NewMemory(defaultTTL time.Duration) *Memory {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &Memory{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (m *Memory) Get(key Key) ([]byte, bool) {
	k := key.String()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[k]
	if !ok {
		m.misses++
		return nil, false
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, k)
		m.misses++
		return nil, false
	}
	m.hits++
	return e.value, true
}

// Set stores value for ttl, or the default TTL when ttl <= 0.
func (m *Memory) Set(key Key, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	k := key.String()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[k] = entry{value: value, expiresAt: m.now().Add(ttl)}
}

func (m *Memory) Delete(key Key) {
	k := key.String()

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, k)
}

func (m *Memory) DeleteScope(scope string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if scope == "" {
		clear(m.entries)
		return
	}
	prefix := scope + "|"
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
}

// Purge removes expired entries and returns how many were dropped.
func (m *Memory) Purge() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

func (m *Memory) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{Entries: len(m.entries), Hits: m.hits, Misses: m.misses}
}
