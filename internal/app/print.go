package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PrintMatches writes one line per find result:
//
//	root:block:start-end<TAB>label
//
// block is the dotted path of the element holding the match and start and
// end are offsets inside it. It returns the number of lines written.
func (app *Application) PrintMatches(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for _, rec := range app.session.Results().All() {
		if rec.Marker.IsRemoved() {
			continue
		}
		r := rec.Range()
		path := r.Start.Path()
		block := make([]string, 0, len(path)-1)
		for _, off := range path[:len(path)-1] {
			block = append(block, strconv.Itoa(off))
		}
		if _, err := fmt.Fprintf(bw, "%s:%s:%d-%d\t%s\n",
			r.Start.Root().RootName(), strings.Join(block, "."), r.Start.Offset(), r.End.Offset(), rec.Label); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}
