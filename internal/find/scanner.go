package find

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/dshills/docsurface/internal/logging"
	"github.com/dshills/docsurface/internal/model"
	"github.com/dshills/docsurface/internal/uid"
)

// DefaultPrefix is the marker name prefix for find results.
const DefaultPrefix = "findResult"

// Scanner turns matcher hits into markers and records.
type Scanner struct {
	doc    *model.Document
	ids    uid.Generator
	prefix string
	logger *slog.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithPrefix sets the marker name prefix.
func WithPrefix(prefix string) ScannerOption {
	return func(s *Scanner) {
		s.prefix = prefix
	}
}

// WithScannerLogger sets the scanner logger.
func WithScannerLogger(l *slog.Logger) ScannerOption {
	return func(s *Scanner) {
		s.logger = l
	}
}

// NewScanner creates a scanner. A nil generator means random UUIDs.
func NewScanner(doc *model.Document, ids uid.Generator, opts ...ScannerOption) *Scanner {
	if ids == nil {
		ids = uid.UUID{}
	}
	s := &Scanner{doc: doc, ids: ids, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrDefault(s.logger)
	return s
}

// Document returns the scanned document.
func (s *Scanner) Document() *model.Document { return s.doc }

// Prefix returns the marker name prefix.
func (s *Scanner) Prefix() string { return s.prefix }

// ScanRange runs matcher on every element in r that may contain text and
// adds a record to results for each hit. A failing element is reported as
// a *MatcherFault in the joined error; records from other elements are
// kept.
func (s *Scanner) ScanRange(r model.Range, matcher Matcher, results *Results) error {
	if matcher == nil {
		return ErrNilMatcher
	}
	schema := s.doc.Schema()

	// Collect first: handlers of the change events may touch the tree.
	var elements []*model.Element
	for v := range r.All() {
		if v.Type != model.ElementStart {
			continue
		}
		if el := v.Element(); schema.CheckChild(el, model.TextChild) {
			elements = append(elements, el)
		}
	}

	var errs []error
	for _, el := range elements {
		if err := s.ScanElement(el, matcher, results); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ScanElement runs matcher on the flattened content of el.
func (s *Scanner) ScanElement(el *model.Element, matcher Matcher, results *Results) error {
	if matcher == nil {
		return ErrNilMatcher
	}
	text := ElementText(s.doc.Schema(), el)
	hits, err := s.match(el, matcher, text)
	if err != nil {
		s.logger.Warn("matcher fault", "element", el.Name(), "path", el.Path(), "error", err)
		return err
	}

	n := utf8.RuneCountInString(text)
	for _, h := range hits {
		if h.Start < 0 || h.End < h.Start || h.End > n {
			err := fmt.Errorf("%w: [%d, %d) in %d runes", ErrHitOutOfRange, h.Start, h.End, n)
			return &MatcherFault{Element: el.Name(), Path: el.Path(), Err: err}
		}
		if h.Start == h.End {
			continue
		}
		if h.Label == "" {
			h.Label = string([]rune(text)[h.Start:h.End])
		}
		if err := s.addHit(el, h, results); err != nil {
			return err
		}
	}
	return nil
}

// match calls matcher, turning a panic or error into a *MatcherFault.
func (s *Scanner) match(el *model.Element, matcher Matcher, text string) (hits []Hit, err error) {
	defer func() {
		if r := recover(); r != nil {
			hits = nil
			err = &MatcherFault{Element: el.Name(), Path: el.Path(), Err: fmt.Errorf("%v", r), Panicked: true}
		}
	}()
	hits, err = matcher(MatchInput{Item: el, Text: text})
	if err != nil {
		return nil, &MatcherFault{Element: el.Name(), Path: el.Path(), Err: err}
	}
	return hits, nil
}

// addHit creates the marker and the record for one hit in a single change.
func (s *Scanner) addHit(el *model.Element, h Hit, results *Results) error {
	return s.doc.Change(func(w *model.Writer) error {
		start, err := w.CreatePositionAt(el, h.Start)
		if err != nil {
			return err
		}
		end, err := w.CreatePositionAt(el, h.End)
		if err != nil {
			return err
		}

		id := s.prefix + ":" + s.ids.Next()
		m, err := w.AddMarker(id, model.MarkerOptions{
			Range:          w.CreateRange(start, end),
			UsingOperation: false,
			AffectsData:    false,
		})
		if err != nil {
			return err
		}

		rec := &Record{ID: id, Label: h.Label, Marker: m}
		err = results.Add(rec, results.InsertIndex(m))
		if errors.Is(err, ErrRecordExists) || errors.Is(err, ErrIndexOutOfRange) {
			// The record was not added; drop its marker too.
			return errors.Join(err, w.RemoveMarker(id))
		}
		return err
	})
}
