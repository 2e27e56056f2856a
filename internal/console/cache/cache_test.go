package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestMemory() (*Memory, *clock) {
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory(time.Minute)
	m.now = c.now
	return m, c
}

func TestKeyString(t *testing.T) {
	t.Parallel()

	bare := Key{Scope: "alice@contoso.com", Operation: "graph.me"}
	require.Equal(t, "alice@contoso.com|graph.me|", bare.String())

	a := Key{Scope: "alice@contoso.com", Operation: "graph.users", Params: map[string]any{"top": 10, "filter": "x"}}
	b := Key{Scope: "alice@contoso.com", Operation: "graph.users", Params: map[string]any{"filter": "x", "top": 10}}
	c := Key{Scope: "alice@contoso.com", Operation: "graph.users", Params: map[string]any{"top": 11}}
	require.Equal(t, a.String(), b.String(), "map key order does not matter")
	require.NotEqual(t, a.String(), c.String())
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()

	m, c := newTestMemory()
	key := Key{Scope: "alice", Operation: "op"}

	_, ok := m.Get(key)
	require.False(t, ok)

	m.Set(key, []byte("v1"), 0)
	got, ok := m.Get(key)
	require.True(t, ok)
	require.Equal(t, "v1", string(got))

	c.advance(59 * time.Second)
	_, ok = m.Get(key)
	require.True(t, ok)

	c.advance(time.Second)
	_, ok = m.Get(key)
	require.False(t, ok, "expired at the boundary")
	require.Equal(t, 0, m.Stats().Entries, "lazy expiry removes the entry")

	m.Set(key, []byte("short"), 10*time.Second)
	c.advance(11 * time.Second)
	require.Equal(t, 1, m.Purge())
	require.Equal(t, 0, m.Purge())

	st := m.Stats()
	require.EqualValues(t, 2, st.Hits)
	require.EqualValues(t, 2, st.Misses)
}

func TestMemoryInvalidation(t *testing.T) {
	t.Parallel()

	m, _ := newTestMemory()
	a1 := Key{Scope: "alice", Operation: "one"}
	a2 := Key{Scope: "alice", Operation: "two"}
	ab := Key{Scope: "alice-bob", Operation: "one"}
	b := Key{Scope: "bob", Operation: "one"}
	for _, k := range []Key{a1, a2, ab, b} {
		m.Set(k, []byte(k.Operation), 0)
	}

	m.Delete(a1)
	_, ok := m.Get(a1)
	require.False(t, ok)

	m.DeleteScope("alice")
	_, ok = m.Get(a2)
	require.False(t, ok)
	_, ok = m.Get(ab)
	require.True(t, ok, "prefix match stops at the separator")

	m.DeleteScope("")
	require.Equal(t, 0, m.Stats().Entries)
}

func TestMemoryConcurrentWriters(t *testing.T) {
	t.Parallel()

	m := NewMemory(0)
	key := Key{Scope: "alice", Operation: "op"}

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Set(key, []byte{byte(i)}, time.Minute)
			_, _ = m.Get(key)
		}()
	}
	wg.Wait()

	got, ok := m.Get(key)
	require.True(t, ok)
	require.Len(t, got, 1)
}
