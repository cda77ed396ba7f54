package trace

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dshills/docsurface/internal/event/topic"
)

// Entry is one parsed trace line.
type Entry struct {
	Seq     uint64
	Topic   string
	Source  string
	Time    time.Time
	Payload gjson.Result
}

// Read parses a trace. Blank lines are skipped; invalid JSON is an error
// naming the line.
func Read(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if line == "" {
			continue
		}
		if !gjson.Valid(line) {
			return entries, fmt.Errorf("trace line %d: invalid JSON", n)
		}
		res := gjson.GetMany(line, "seq", "topic", "source", "time", "payload")
		e := Entry{
			Seq:     res[0].Uint(),
			Topic:   res[1].String(),
			Source:  res[2].String(),
			Payload: res[4],
		}
		if ts := res[3].String(); ts != "" {
			t, err := time.Parse(time.RFC3339Nano, ts)
			if err != nil {
				return entries, fmt.Errorf("trace line %d: %w", n, err)
			}
			e.Time = t
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}

// Filter returns the entries whose topic matches pattern.
func Filter(entries []Entry, pattern string) []Entry {
	var out []Entry
	for _, e := range entries {
		if topic.Topic(e.Topic).Matches(topic.Topic(pattern)) {
			out = append(out, e)
		}
	}
	return out
}
