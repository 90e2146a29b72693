// Package dictkey packs a reading and its candidate list into the single
// composite key stored in the dictionary trie, and unpacks it again.
//
// A composite key is the reading, the Separator byte, then the candidates
// joined by Delimiter:
//
//	とくひろ 0xFF 徳宏/徳大/徳寛/督弘
//
// Looking a reading up is a prefix search for the reading followed by the
// Separator, so a reading never matches keys of longer readings.
package dictkey

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Separator ends the reading. 0xFF never occurs in UTF-8 text.
	Separator byte = 0xff
	// Delimiter separates candidates.
	Delimiter byte = '/'

	separator = "\xff"
	delimiter = "/"
)

// ErrInvalidInput reports a reading holding the Separator, or a candidate
// that is empty or holds the Separator or the Delimiter.
var ErrInvalidInput = errors.New("dictkey: invalid input")

// Encode returns the composite key for reading and candidates.
func Encode(reading string, candidates []string) (string, error) {
	if err := checkReading(reading); err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates for reading %q", ErrInvalidInput, reading)
	}

	size := len(reading) + len(candidates)
	for _, candidate := range candidates {
		if err := checkCandidate(candidate); err != nil {
			return "", fmt.Errorf("%w (reading %q)", err, reading)
		}
		size += len(candidate)
	}

	var b strings.Builder
	b.Grow(size)
	b.WriteString(reading)
	b.WriteByte(Separator)
	for i, candidate := range candidates {
		if i > 0 {
			b.WriteByte(Delimiter)
		}
		b.WriteString(candidate)
	}
	return b.String(), nil
}

// QueryPrefix returns the search prefix matching the key of reading.
func QueryPrefix(reading string) (string, error) {
	if err := checkReading(reading); err != nil {
		return "", err
	}
	return reading + separator, nil
}

// DecodeSuffix returns the candidates of a key found by searching for a
// prefix of prefixLen bytes. The prefix is the one built by QueryPrefix, so
// it already covers the Separator.
func DecodeSuffix(key string, prefixLen int) []string {
	if prefixLen < 0 || prefixLen > len(key) {
		return nil
	}
	return Split(key[prefixLen:])
}

// Decode splits a composite key at its Separator.
func Decode(key string) (reading string, candidates []string, ok bool) {
	i := strings.IndexByte(key, Separator)
	if i < 0 {
		return "", nil, false
	}
	return key[:i], Split(key[i+1:]), true
}

func checkReading(reading string) error {
	if strings.IndexByte(reading, Separator) >= 0 {
		return fmt.Errorf("%w: reading %q contains separator byte 0x%02x", ErrInvalidInput, reading, Separator)
	}
	return nil
}

func checkCandidate(candidate string) error {
	switch {
	case candidate == "":
		return fmt.Errorf("%w: empty candidate", ErrInvalidInput)
	case strings.IndexByte(candidate, Separator) >= 0:
		return fmt.Errorf("%w: candidate %q contains separator byte 0x%02x", ErrInvalidInput, candidate, Separator)
	case strings.IndexByte(candidate, Delimiter) >= 0:
		return fmt.Errorf("%w: candidate %q contains delimiter %q", ErrInvalidInput, candidate, Delimiter)
	}
	return nil
}
