package find

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/dlclark/regexp2"
)

// prefilterEntry is an expression guarded by keywords. Entries without
// keywords always run.
type prefilterEntry struct {
	keywords []string
	re       *regexp2.Regexp
	label    string
}

// prefilter selects the entries whose keywords occur in a text using a
// single Aho-Corasick pass.
type prefilter struct {
	matcher   *ahocorasick.Matcher
	foldCase  bool
	keywords  []string
	byKeyword map[string][]int
	always    []int
	entries   []prefilterEntry
}

func newPrefilter(entries []prefilterEntry, foldCase bool) *prefilter {
	pf := &prefilter{
		foldCase:  foldCase,
		byKeyword: make(map[string][]int),
		entries:   entries,
	}
	for i, e := range entries {
		if len(e.keywords) == 0 {
			pf.always = append(pf.always, i)
			continue
		}
		for _, kw := range e.keywords {
			if foldCase {
				kw = strings.ToLower(kw)
			}
			if _, ok := pf.byKeyword[kw]; !ok {
				pf.keywords = append(pf.keywords, kw)
			}
			pf.byKeyword[kw] = append(pf.byKeyword[kw], i)
		}
	}
	if len(pf.keywords) > 0 {
		pf.matcher = ahocorasick.NewStringMatcher(pf.keywords)
	}
	return pf
}

// filter returns the candidate entries for text in declaration order.
func (pf *prefilter) filter(text string) []prefilterEntry {
	selected := make([]bool, len(pf.entries))
	for _, i := range pf.always {
		selected[i] = true
	}
	if pf.matcher != nil {
		if pf.foldCase {
			text = strings.ToLower(text)
		}
		for _, hit := range pf.matcher.Match([]byte(text)) {
			for _, i := range pf.byKeyword[pf.keywords[hit]] {
				selected[i] = true
			}
		}
	}

	var out []prefilterEntry
	for i, ok := range selected {
		if ok {
			out = append(out, pf.entries[i])
		}
	}
	return out
}
