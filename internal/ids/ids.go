// Package ids generates document identifiers. IDs are ULIDs, so they sort
// by creation time and embed the creation timestamp.
package ids

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     io.Reader
	entropyOnce sync.Once
	generator   = defaultGenerator
)

func defaultEntropy() io.Reader {
	entropyOnce.Do(func() {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		entropy = &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rng, 0),
		}
	})
	return entropy
}

// New returns a fresh document id.
func New() string {
	return generator()
}

// Valid reports whether id parses as a ULID.
func Valid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// CreatedAt extracts the creation time embedded in a document id.
// Returns the zero time when id is not a ULID.
func CreatedAt(id string) time.Time {
	u, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(u.Time())).UTC()
}

func defaultGenerator() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), defaultEntropy()).String()
}

// Mock replaces the generator with one that always returns value. Tests only.
func Mock(value string) {
	generator = func() string { return value }
}

// Reset restores the default generator after Mock.
func Reset() {
	generator = defaultGenerator
}
