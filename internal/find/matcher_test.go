package find

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func runMatcher(t *testing.T, m Matcher, text string) []Hit {
	t.Helper()
	got, err := m(MatchInput{Text: text})
	if err != nil {
		t.Fatalf("matcher failed: %v", err)
	}
	return got
}

func TestTextMatcher(t *testing.T) {
	tests := []struct {
		name  string
		query string
		opts  Options
		text  string
		want  []Hit
	}{
		{
			name:  "ignore case",
			query: "cat",
			text:  "Cat cat CAT",
			want:  []Hit{{0, 3, "Cat"}, {4, 7, "cat"}, {8, 11, "CAT"}},
		},
		{
			name:  "match case",
			query: "cat",
			opts:  Options{MatchCase: true},
			text:  "Cat cat CAT",
			want:  []Hit{{4, 7, "cat"}},
		},
		{
			name:  "whole words",
			query: "cat",
			opts:  Options{WholeWords: true},
			text:  "cat concat cats cat_ (cat)",
			want:  []Hit{{0, 3, "cat"}, {22, 25, "cat"}},
		},
		{
			name:  "whole words unicode",
			query: "été",
			opts:  Options{WholeWords: true},
			text:  "été étés été",
			want:  []Hit{{0, 3, "été"}, {9, 12, "été"}},
		},
		{
			name:  "metacharacters are literal",
			query: "a.b",
			text:  "axb a.b",
			want:  []Hit{{4, 7, "a.b"}},
		},
		{
			name:  "rune offsets",
			query: "x",
			text:  "ééx\nx",
			want:  []Hit{{2, 3, "x"}, {4, 5, "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := TextMatcher(tt.query, tt.opts)
			if err != nil {
				t.Fatalf("TextMatcher() failed: %v", err)
			}
			got := runMatcher(t, m, tt.text)
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("hits = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := TextMatcher("", Options{}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("TextMatcher(\"\") error = %v, want ErrEmptyQuery", err)
	}
}

func TestPatternMatcher(t *testing.T) {
	m, err := PatternMatcher(`(?<=\$)\d+`, Options{})
	if err != nil {
		t.Fatalf("PatternMatcher() failed: %v", err)
	}
	got := runMatcher(t, m, "cost $12 or 7")
	want := []Hit{{6, 8, "12"}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("hits = %v, want %v", got, want)
	}

	if _, err := PatternMatcher(`(`, Options{}); err == nil {
		t.Error("PatternMatcher(\"(\") should fail")
	}
}

func TestTermsMatcher(t *testing.T) {
	m, err := TermsMatcher([]string{"cat", "dog", "", "category"}, Options{})
	if err != nil {
		t.Fatalf("TermsMatcher() failed: %v", err)
	}

	got := runMatcher(t, m, "Dog and CATEGORY")
	want := []Hit{{0, 3, "Dog"}, {8, 16, "CATEGORY"}, {8, 11, "CAT"}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("hits = %v, want %v", got, want)
	}

	if got := runMatcher(t, m, "nothing here"); len(got) != 0 {
		t.Errorf("hits = %v, want none", got)
	}

	if _, err := TermsMatcher([]string{""}, Options{}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("TermsMatcher(empty) error = %v, want ErrEmptyQuery", err)
	}
}

const testRules = `
rules:
  - id: todo
    name: Todo note
    pattern: '\bTODO\b'
    keywords: [todo]
    match_case: true
  - id: number
    pattern: '\d+'
`

func TestRulesMatcher(t *testing.T) {
	rules, err := LoadRules([]byte(testRules))
	if err != nil {
		t.Fatalf("LoadRules() failed: %v", err)
	}
	if len(rules) != 2 || rules[0].Keywords[0] != "todo" || !rules[0].MatchCase {
		t.Fatalf("rules = %+v", rules)
	}

	m, err := RulesMatcher(rules)
	if err != nil {
		t.Fatalf("RulesMatcher() failed: %v", err)
	}
	got := runMatcher(t, m, "TODO fix 42 todo")
	want := []Hit{{0, 4, "Todo note"}, {9, 11, "number"}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("hits = %v, want %v", got, want)
	}
}

func TestLoadRules_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid yaml", "rules: ["},
		{"no rules", "rules: []"},
		{"missing id", "rules:\n  - pattern: x\n"},
		{"missing pattern", "rules:\n  - id: a\n"},
		{"duplicate id", "rules:\n  - id: a\n    pattern: x\n  - id: a\n    pattern: y\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadRules([]byte(tt.data)); err == nil {
				t.Error("LoadRules() should fail")
			}
		})
	}
}

func TestLoadRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(testRules), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err := LoadRulesFile(path)
	if err != nil {
		t.Fatalf("LoadRulesFile() failed: %v", err)
	}
	if len(rules) != 2 {
		t.Errorf("len(rules) = %d, want 2", len(rules))
	}

	if _, err := LoadRulesFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadRulesFile(missing) should fail")
	}
}
