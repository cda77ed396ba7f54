package find

import (
	"errors"
	"fmt"
)

// Sentinel errors for match scanning.
var (
	// ErrEmptyQuery is returned when a matcher is built from an empty query.
	ErrEmptyQuery = errors.New("empty query")

	// ErrNilMatcher is returned when scanning without a matcher.
	ErrNilMatcher = errors.New("nil matcher")

	// ErrRecordExists is returned when adding a record whose ID is taken.
	ErrRecordExists = errors.New("record already exists")

	// ErrRecordNotFound is returned for records that are not in the index.
	ErrRecordNotFound = errors.New("record not found")

	// ErrIndexOutOfRange is returned when inserting past the end of the index.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrHitOutOfRange is returned when a matcher reports offsets outside
	// the flattened text.
	ErrHitOutOfRange = errors.New("hit outside element text")

	// ErrSessionDestroyed is returned by a session after Destroy.
	ErrSessionDestroyed = errors.New("session destroyed")
)

// MatcherFault reports a matcher that failed or panicked while scanning
// one element. Scanning continues with the next element.
type MatcherFault struct {
	// Element is the name of the element being scanned.
	Element string

	// Path is the element's offset path from its root.
	Path []int

	// Err is the matcher error. For panics it wraps the recovered value.
	Err error

	// Panicked is set when the matcher panicked.
	Panicked bool
}

func (f *MatcherFault) Error() string {
	if f.Panicked {
		return fmt.Sprintf("matcher panicked on %s %v: %v", f.Element, f.Path, f.Err)
	}
	return fmt.Sprintf("matcher failed on %s %v: %v", f.Element, f.Path, f.Err)
}

func (f *MatcherFault) Unwrap() error {
	return f.Err
}
