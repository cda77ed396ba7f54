package find

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is a named pattern loaded from a rules file. A rule only runs on
// elements containing one of its keywords; rules without keywords always
// run.
type Rule struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Pattern   string   `yaml:"pattern"`
	Keywords  []string `yaml:"keywords"`
	MatchCase bool     `yaml:"match_case"`
}

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules parses a YAML rules document:
//
//	rules:
//	  - id: todo
//	    name: Todo note
//	    pattern: '\bTODO\b'
//	    keywords: [todo]
func LoadRules(data []byte) ([]Rule, error) {
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("no rules found in YAML")
	}
	seen := make(map[string]bool, len(f.Rules))
	for i, r := range f.Rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule %d: missing id", i)
		}
		if r.Pattern == "" {
			return nil, fmt.Errorf("rule %s: missing pattern", r.ID)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("rule %s: duplicate id", r.ID)
		}
		seen[r.ID] = true
	}
	return f.Rules, nil
}

// LoadRulesFile reads and parses a rules file.
func LoadRulesFile(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return LoadRules(data)
}

// RulesMatcher runs every applicable rule on each element. Hits are
// labeled with the rule name, or its ID when unnamed. Keywords are matched
// case-insensitively.
func RulesMatcher(rules []Rule) (Matcher, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyQuery
	}
	entries := make([]prefilterEntry, 0, len(rules))
	for _, r := range rules {
		re, err := compilePattern(r.Pattern, r.MatchCase)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", r.ID, err)
		}
		label := r.Name
		if label == "" {
			label = r.ID
		}
		entries = append(entries, prefilterEntry{keywords: r.Keywords, re: re, label: label})
	}
	pf := newPrefilter(entries, true)

	return func(in MatchInput) ([]Hit, error) {
		var hits []Hit
		for _, e := range pf.filter(in.Text) {
			found, err := regexpHits(e.re, in.Text, e.label)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", e.label, err)
			}
			hits = append(hits, found...)
		}
		sortHits(hits)
		return hits, nil
	}, nil
}
