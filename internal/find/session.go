package find

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/dshills/docsurface/internal/event"
	"github.com/dshills/docsurface/internal/logging"
	"github.com/dshills/docsurface/internal/model"
	"github.com/dshills/docsurface/internal/view"
)

// Session is a find and replace feature over one document. While a
// matcher is active, edited elements are rescanned after every data
// change so the results follow the text.
type Session struct {
	doc      *model.Document
	scanner  *Scanner
	results  *Results
	listener *event.Listener
	logger   *slog.Logger

	matcher   Matcher
	current   *Record
	destroyed bool
}

// NewSession creates a session scanning with s. A nil results index gets
// a fresh one.
func NewSession(s *Scanner, results *Results) (*Session, error) {
	if results == nil {
		results = NewResults()
	}
	sess := &Session{
		doc:      s.Document(),
		scanner:  s,
		results:  results,
		listener: event.NewListener(),
		logger:   logging.OrDefault(s.logger),
	}
	if _, err := sess.listener.ListenToFunc(sess.doc.Emitter(), model.TopicChangeData, sess.onDataChange); err != nil {
		return nil, err
	}
	return sess, nil
}

// Results returns the session's index.
func (s *Session) Results() *Results { return s.results }

// Active reports whether a matcher is set.
func (s *Session) Active() bool { return s.matcher != nil }

// Highlighted returns the highlighted record, or nil.
func (s *Session) Highlighted() *Record { return s.current }

// Find clears the previous results and scans every root with m. The first
// result is highlighted. Matcher faults are returned joined; the records
// found elsewhere are kept.
func (s *Session) Find(m Matcher) (*Results, error) {
	if s.destroyed {
		return nil, ErrSessionDestroyed
	}
	if m == nil {
		return nil, ErrNilMatcher
	}
	if err := s.Clear(); err != nil {
		return nil, err
	}
	s.matcher = m

	var errs []error
	for _, root := range s.doc.Roots() {
		if err := s.scanner.ScanRange(model.RangeIn(root), m, s.results); err != nil {
			errs = append(errs, err)
		}
	}
	s.current = s.results.Get(0)
	s.logger.Debug("find", "results", s.results.Len(), "faults", len(errs))
	return s.results, errors.Join(errs...)
}

// Clear drops the matcher, every record and its marker.
func (s *Session) Clear() error {
	if s.destroyed {
		return ErrSessionDestroyed
	}
	s.matcher = nil
	s.current = nil
	return s.removeRecords(s.results.All())
}

// Next highlights the record after the current one, wrapping around.
func (s *Session) Next() *Record {
	n := s.results.Len()
	if n == 0 {
		s.current = nil
		return nil
	}
	i := s.results.GetIndex(s.current)
	s.current = s.results.Get((i + 1) % n)
	return s.current
}

// Previous highlights the record before the current one, wrapping around.
func (s *Session) Previous() *Record {
	n := s.results.Len()
	if n == 0 {
		s.current = nil
		return nil
	}
	i := max(s.results.GetIndex(s.current), 0)
	s.current = s.results.Get((i - 1 + n) % n)
	return s.current
}

// Replace replaces the text of rec.
func (s *Session) Replace(rec *Record, text string) error {
	if s.destroyed {
		return ErrSessionDestroyed
	}
	if s.results.GetIndex(rec) < 0 {
		return ErrRecordNotFound
	}
	return s.doc.Change(func(w *model.Writer) error {
		_, err := s.replace(w, rec, text)
		return err
	})
}

// ReplaceAll replaces every record in one change and returns how many
// were replaced. Records collapsed by an earlier replacement are skipped.
func (s *Session) ReplaceAll(text string) (int, error) {
	if s.destroyed {
		return 0, ErrSessionDestroyed
	}
	recs := s.results.All()
	count := 0
	err := s.doc.Change(func(w *model.Writer) error {
		for i := len(recs) - 1; i >= 0; i-- {
			ok, err := s.replace(w, recs[i], text)
			if err != nil {
				return err
			}
			if ok {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (s *Session) replace(w *model.Writer, rec *Record, text string) (bool, error) {
	if rec.Marker.IsRemoved() {
		return false, nil
	}
	r := rec.Range()
	if r.IsCollapsed() {
		return false, nil
	}
	if err := w.Remove(r); err != nil {
		return false, err
	}
	if err := w.InsertText(text, r.Start); err != nil {
		return false, err
	}
	return true, nil
}

// Highlights returns the ranges of the live records for painting.
func (s *Session) Highlights() []view.Highlight {
	recs := s.results.All()
	out := make([]view.Highlight, 0, len(recs))
	for _, rec := range recs {
		if rec.Marker.IsRemoved() {
			continue
		}
		out = append(out, view.Highlight{Range: rec.Range(), Current: rec == s.current})
	}
	return out
}

// Destroy clears the session and stops following document changes.
func (s *Session) Destroy() error {
	if s.destroyed {
		return nil
	}
	err := s.Clear()
	s.listener.StopListening()
	s.destroyed = true
	return err
}

func (s *Session) onDataChange(_ context.Context, ev any) error {
	if s.destroyed || s.matcher == nil {
		return nil
	}
	change, ok := event.Payload[model.DataChange](ev)
	if !ok {
		return nil
	}
	return s.refresh(change.ChangedElements)
}

// refresh drops collapsed records and rescans the text elements under
// changed. The highlight stays on its record, or moves to the first record
// at or after where it was.
func (s *Session) refresh(changed []*model.Element) error {
	var anchor *model.Position
	if s.current != nil {
		p := s.current.Start()
		anchor = &p
	}

	targets := s.textElements(changed)
	var stale []*Record
	for _, rec := range s.results.All() {
		if rec.Marker.IsRemoved() || rec.Range().IsCollapsed() || slices.Contains(targets, rec.Start().Parent()) {
			stale = append(stale, rec)
		}
	}

	var errs []error
	if err := s.removeRecords(stale); err != nil {
		errs = append(errs, err)
	}
	for _, el := range targets {
		if err := s.scanner.ScanElement(el, s.matcher, s.results); err != nil {
			errs = append(errs, err)
		}
	}

	if s.current != nil && s.results.GetIndex(s.current) >= 0 {
		return errors.Join(errs...)
	}
	s.current = nil
	if anchor != nil && s.results.Len() > 0 {
		i := indexAtOrAfter(s.results.All(), *anchor)
		s.current = s.results.Get(i % s.results.Len())
	}
	if len(errs) > 0 {
		s.logger.Warn("rescan failed", "errors", len(errs))
	}
	return errors.Join(errs...)
}

// textElements returns the attached text-bearing elements at or under
// changed, without duplicates.
func (s *Session) textElements(changed []*model.Element) []*model.Element {
	schema := s.doc.Schema()
	var out []*model.Element
	add := func(el *model.Element) {
		if !slices.Contains(out, el) {
			out = append(out, el)
		}
	}
	for _, el := range changed {
		if !el.Root().IsRoot() {
			continue
		}
		if schema.CheckChild(el, model.TextChild) {
			add(el)
			continue
		}
		for v := range model.RangeIn(el).All() {
			if v.Type == model.ElementStart && schema.CheckChild(v.Element(), model.TextChild) {
				add(v.Element())
			}
		}
	}
	return out
}

// removeRecords removes records and their markers in one change.
func (s *Session) removeRecords(recs []*Record) error {
	if len(recs) == 0 {
		return nil
	}
	var errs []error
	err := s.doc.Change(func(w *model.Writer) error {
		for _, rec := range recs {
			if !rec.Marker.IsRemoved() {
				if err := w.RemoveMarker(rec.ID); err != nil {
					errs = append(errs, err)
				}
			}
			if err := s.results.Remove(rec); err != nil {
				errs = append(errs, err)
			}
			if rec == s.current {
				s.current = nil
			}
		}
		return nil
	})
	return errors.Join(append(errs, err)...)
}
