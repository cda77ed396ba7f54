package find

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/event/topic"
	"github.com/dshills/docsurface/internal/model"
)

// Results event topics.
const (
	TopicAdd    topic.Topic = "results.add"
	TopicRemove topic.Topic = "results.remove"
)

// Record is one match.
type Record struct {
	// ID is the record identifier. The marker carries the same name.
	ID string

	// Label describes the match, usually the matched text.
	Label string

	// Marker tracks the matched range across edits.
	Marker *model.Marker
}

// Start returns the current start of the match.
func (r *Record) Start() model.Position { return r.Marker.Start() }

// Range returns the current range of the match.
func (r *Record) Range() model.Range { return r.Marker.Range() }

// Change is the payload of TopicAdd and TopicRemove.
type Change struct {
	Record *Record
	Index  int
}

// Results is the ordered index of match records. It is safe for concurrent
// readers; events are fired after the lock is released.
type Results struct {
	mu      sync.RWMutex
	records []*Record
	byID    map[string]*Record
	emitter *event.Emitter
}

// NewResults creates an empty index.
func NewResults() *Results {
	return &Results{
		byID:    make(map[string]*Record),
		emitter: event.NewEmitter("results"),
	}
}

// Emitter returns the emitter TopicAdd and TopicRemove are fired on.
func (r *Results) Emitter() *event.Emitter { return r.emitter }

// Add inserts rec at index.
func (r *Results) Add(rec *Record, index int) error {
	r.mu.Lock()
	if _, ok := r.byID[rec.ID]; ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordExists, rec.ID)
	}
	if index < 0 || index > len(r.records) {
		n := len(r.records)
		r.mu.Unlock()
		return fmt.Errorf("%w: %d not in 0..%d", ErrIndexOutOfRange, index, n)
	}
	r.records = slices.Insert(r.records, index, rec)
	r.byID[rec.ID] = rec
	r.mu.Unlock()

	return event.Emit(context.Background(), r.emitter, TopicAdd, Change{Record: rec, Index: index})
}

// Get returns the record at index, or nil.
func (r *Results) Get(index int) *Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if index < 0 || index >= len(r.records) {
		return nil
	}
	return r.records[index]
}

// GetByID returns the record with the given ID, or nil.
func (r *Results) GetByID(id string) *Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// GetIndex returns the index of rec, or -1.
func (r *Results) GetIndex(rec *Record) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Index(r.records, rec)
}

// Len returns the number of records.
func (r *Results) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// All returns a snapshot of the records in order.
func (r *Results) All() []*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.records)
}

// InsertIndex returns the index a record for m would be added at.
func (r *Results) InsertIndex(m *model.Marker) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return FindInsertIndex(r.records, m)
}

// Remove deletes rec from the index.
func (r *Results) Remove(rec *Record) error {
	r.mu.Lock()
	idx := slices.Index(r.records, rec)
	if idx < 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRecordNotFound, rec.ID)
	}
	r.records = slices.Delete(r.records, idx, idx+1)
	delete(r.byID, rec.ID)
	r.mu.Unlock()

	return event.Emit(context.Background(), r.emitter, TopicRemove, Change{Record: rec, Index: idx})
}

// Clear removes every record, firing TopicRemove from the back, and
// returns the removed records in their former order.
func (r *Results) Clear() ([]*Record, error) {
	r.mu.Lock()
	removed := r.records
	r.records = nil
	r.byID = make(map[string]*Record)
	r.mu.Unlock()

	var errs []error
	for i := len(removed) - 1; i >= 0; i-- {
		if err := event.Emit(context.Background(), r.emitter, TopicRemove, Change{Record: removed[i], Index: i}); err != nil {
			errs = append(errs, err)
		}
	}
	return removed, errors.Join(errs...)
}

// FindInsertIndex returns the index before the first record whose start is
// not before the start of m, or len(records) when there is none. Equal
// starts insert before the existing record.
func FindInsertIndex(records []*Record, m *model.Marker) int {
	return indexAtOrAfter(records, m.Start())
}

func indexAtOrAfter(records []*Record, start model.Position) int {
	for i, rec := range records {
		if !rec.Start().IsBefore(start) {
			return i
		}
	}
	return len(records)
}
