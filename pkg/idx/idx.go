// Package idx generates the lexicographically sortable identifiers used for
// tokens, operators and request correlation.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero is the empty ID. Only useful as a placeholder.
const Zero ID = ""

// ErrInvalid reports a malformed identifier.
var ErrInvalid = errors.New("idx: invalid id")

var (
	mu      sync.Mutex
	once    sync.Once
	entropy *ulid.MonotonicEntropy
)

func source() *ulid.MonotonicEntropy {
	once.Do(func() {
		entropy = ulid.Monotonic(rand.Reader, 0)
	})
	return entropy
}

// New returns a ULID stamped with the current UTC time. IDs generated in the
// same millisecond still sort in creation order.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns a ULID stamped with t.
func NewAt(t time.Time) ID {
	src := source()

	mu.Lock()
	defer mu.Unlock()

	return ID(ulid.MustNew(ulid.Timestamp(t), src).String())
}

// Parse validates s as a ULID.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}
	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}
	return ID(s), nil
}

// MustParse is Parse for hard-coded IDs in tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) IsZero() bool   { return id == Zero }
func (id ID) String() string { return string(id) }

// Time returns the embedded timestamp, or the zero time for invalid IDs.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}

// Compare orders a and b lexically, which for ULIDs is creation order.
func Compare(a, b ID) int {
	return strings.Compare(a.String(), b.String())
}

// Prefixed joins a short type prefix, an ID and an opaque suffix into a
// single credential string such as "sk_01J..._secret".
func Prefixed(prefix string, id ID, suffix string) string {
	return prefix + "_" + id.String() + "_" + suffix
}

// SplitPrefixed reverses Prefixed. The suffix may itself contain
// underscores.
func SplitPrefixed(prefix, s string) (ID, string, error) {
	rest, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return Zero, "", ErrInvalid
	}
	raw, suffix, ok := strings.Cut(rest, "_")
	if !ok || suffix == "" {
		return Zero, "", ErrInvalid
	}
	id, err := Parse(raw)
	if err != nil {
		return Zero, "", err
	}
	return id, suffix, nil
}
