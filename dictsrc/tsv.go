package dictsrc

import (
	"fmt"
	"io"
	"strings"

	"github.com/tkng/akaza/binarydict"
	"github.com/tkng/akaza/dictkey"
)

// ReadTSV parses lines of a reading, a tab and its candidates joined by '/'.
// Blank lines and lines starting with '#' are ignored.
func ReadTSV(r io.Reader) ([]binarydict.Entry, error) {
	var entries []binarydict.Entry
	err := eachLine(r, func(n int, line string) error {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			return nil
		}

		reading, candidates, ok := strings.Cut(line, "\t")
		if !ok || reading == "" {
			return fmt.Errorf("%w: line %d: %q", ErrSyntax, n, line)
		}

		entries = append(entries, binarydict.Entry{
			Reading:    reading,
			Candidates: dictkey.Split(candidates),
		})
		return nil
	})
	return entries, err
}
