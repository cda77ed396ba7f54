// Package uid generates identifiers for markers and match records.
//
// Generators are injected where identifiers are needed so that scans stay
// deterministic under test.
package uid

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique identifiers.
type Generator interface {
	Next() string
}

// Counter yields "<prefix>1", "<prefix>2", ... It is safe for concurrent use.
type Counter struct {
	prefix string
	n      atomic.Uint64
}

// NewCounter creates a counter generator with the given prefix.
func NewCounter(prefix string) *Counter {
	return &Counter{prefix: prefix}
}

// Next returns the next identifier.
func (c *Counter) Next() string {
	return c.prefix + strconv.FormatUint(c.n.Add(1), 10)
}

// UUID yields random version 4 UUIDs.
type UUID struct{}

// Next returns a new random UUID string.
func (UUID) Next() string {
	return uuid.NewString()
}

// New returns the generator named by kind: "counter" or "uuid".
// Unknown kinds fall back to UUID.
func New(kind string) Generator {
	if kind == "counter" {
		return NewCounter("")
	}
	return UUID{}
}
