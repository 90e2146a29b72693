package dictkey

import (
	"strings"
)

// Join concatenates candidates with Delimiter, without a trailing delimiter.
func Join(candidates []string) string {
	return strings.Join(candidates, delimiter)
}

// Split splits a delimited candidate list, dropping empty fields.
func Split(s string) []string {
	var candidates []string
	for _, field := range strings.Split(s, delimiter) {
		if field != "" {
			candidates = append(candidates, field)
		}
	}
	return candidates
}
