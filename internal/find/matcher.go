package find

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/dshills/docsurface/internal/model"
)

// DefaultMatchTimeout bounds a single regular expression evaluation.
const DefaultMatchTimeout = 5 * time.Second

// MatchInput is what a Matcher sees for one text-bearing element.
type MatchInput struct {
	// Item is the element being scanned.
	Item *model.Element

	// Text is the flattened content of Item.
	Text string
}

// Hit is one match inside MatchInput.Text. Start and End are rune offsets,
// End exclusive.
type Hit struct {
	Start int
	End   int
	Label string
}

// Matcher finds hits in one element. Returning an error or panicking aborts
// the scan of that element only.
type Matcher func(MatchInput) ([]Hit, error)

// Options controls how literal queries match.
type Options struct {
	// MatchCase makes matching case sensitive.
	MatchCase bool

	// WholeWords only accepts matches not touching a letter, digit or
	// underscore on either side.
	WholeWords bool
}

const wordChar = `[\p{L}\p{N}_]`

// compileQuery builds the expression for a literal query.
func compileQuery(query string, opts Options) (*regexp2.Regexp, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	pattern := regexp2.Escape(query)
	if opts.WholeWords {
		pattern = `(?<!` + wordChar + `)` + pattern + `(?!` + wordChar + `)`
	}
	return compilePattern(pattern, opts.MatchCase)
}

func compilePattern(pattern string, matchCase bool) (*regexp2.Regexp, error) {
	flags := regexp2.None
	if !matchCase {
		flags |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(pattern, flags)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}
	re.MatchTimeout = DefaultMatchTimeout
	return re, nil
}

// TextMatcher matches a literal query.
func TextMatcher(query string, opts Options) (Matcher, error) {
	re, err := compileQuery(query, opts)
	if err != nil {
		return nil, err
	}
	return func(in MatchInput) ([]Hit, error) {
		return regexpHits(re, in.Text, "")
	}, nil
}

// PatternMatcher matches a regular expression in .NET syntax, which
// includes lookarounds and backreferences.
func PatternMatcher(pattern string, opts Options) (Matcher, error) {
	if pattern == "" {
		return nil, ErrEmptyQuery
	}
	re, err := compilePattern(pattern, opts.MatchCase)
	if err != nil {
		return nil, err
	}
	return func(in MatchInput) ([]Hit, error) {
		return regexpHits(re, in.Text, "")
	}, nil
}

// regexpHits collects the non-empty matches of re in text. An empty label
// means the matched text.
func regexpHits(re *regexp2.Regexp, text, label string) ([]Hit, error) {
	var hits []Hit
	m, err := re.FindStringMatch(text)
	for ; m != nil && err == nil; m, err = re.FindNextMatch(m) {
		if m.Length == 0 {
			continue
		}
		l := label
		if l == "" {
			l = m.String()
		}
		hits = append(hits, Hit{Start: m.Index, End: m.Index + m.Length, Label: l})
	}
	if err != nil {
		return nil, err
	}
	return hits, nil
}

// TermsMatcher matches any of several literal terms. Terms absent from an
// element are skipped by a keyword prefilter before any expression runs.
// Hits are ordered by start offset, longer hits first on ties.
func TermsMatcher(terms []string, opts Options) (Matcher, error) {
	var entries []prefilterEntry
	for _, term := range terms {
		if term == "" {
			continue
		}
		re, err := compileQuery(term, opts)
		if err != nil {
			return nil, err
		}
		entries = append(entries, prefilterEntry{keywords: []string{term}, re: re})
	}
	if len(entries) == 0 {
		return nil, ErrEmptyQuery
	}
	pf := newPrefilter(entries, !opts.MatchCase)

	return func(in MatchInput) ([]Hit, error) {
		var hits []Hit
		for _, e := range pf.filter(in.Text) {
			found, err := regexpHits(e.re, in.Text, "")
			if err != nil {
				return nil, err
			}
			hits = append(hits, found...)
		}
		sortHits(hits)
		return hits, nil
	}, nil
}

func sortHits(hits []Hit) {
	slices.SortStableFunc(hits, func(a, b Hit) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(b.End, a.End)
	})
}
