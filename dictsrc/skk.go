package dictsrc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tkng/akaza/binarydict"
	"github.com/tkng/akaza/dictkey"
)

// ReadSKK parses an SKK-JISYO dictionary:
//
//	;; comment
//	かんじ /漢字/幹事;annotation/(concat "a\057b")/
//
// Annotations and okurigana blocks ("[る/送/]") are dropped. Candidates
// that cannot be stored, such as "a/b" above, are skipped.
func ReadSKK(r io.Reader) ([]binarydict.Entry, error) {
	var entries []binarydict.Entry
	err := eachLine(r, func(n int, line string) error {
		if line == "" || strings.HasPrefix(line, ";") {
			return nil
		}

		reading, rest, ok := strings.Cut(line, " ")
		rest = strings.TrimLeft(rest, " ")
		if !ok || reading == "" || !strings.HasPrefix(rest, "/") {
			return fmt.Errorf("%w: line %d: %q", ErrSyntax, n, line)
		}

		var candidates []string
		inBlock := false
		for _, field := range strings.Split(rest, "/") {
			switch {
			case strings.HasPrefix(field, "["):
				inBlock = true
				continue
			case field == "]":
				inBlock = false
				continue
			case inBlock:
				continue
			}

			candidate, _, _ := strings.Cut(field, ";")
			candidate, ok := unconcat(candidate)
			if !ok || !storable(candidate) {
				continue
			}
			candidates = append(candidates, candidate)
		}

		if len(candidates) > 0 {
			entries = append(entries, binarydict.Entry{Reading: reading, Candidates: candidates})
		}
		return nil
	})
	return entries, err
}

func storable(candidate string) bool {
	return candidate != "" &&
		strings.IndexByte(candidate, dictkey.Delimiter) < 0 &&
		strings.IndexByte(candidate, dictkey.Separator) < 0
}

// unconcat decodes a candidate written as an emacs lisp (concat "...")
// form with octal escapes. Other candidates are returned unchanged.
func unconcat(s string) (string, bool) {
	if !strings.HasPrefix(s, "(concat ") || !strings.HasSuffix(s, ")") {
		return s, true
	}

	body := strings.TrimSpace(s[len("(concat ") : len(s)-1])
	var b strings.Builder
	for body != "" {
		if body[0] != '"' {
			return "", false
		}
		end := 1
		for end < len(body) && body[end] != '"' {
			if body[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(body) {
			return "", false
		}

		part, err := strconv.Unquote(body[:end+1])
		if err != nil {
			return "", false
		}
		b.WriteString(part)
		body = strings.TrimSpace(body[end+1:])
	}
	return b.String(), true
}
