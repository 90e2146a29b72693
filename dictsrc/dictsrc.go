// Package dictsrc reads the text dictionaries a binary dictionary is built
// from: SKK-JISYO files and tab separated reading/candidates lists, in UTF-8
// or EUC-JP.
package dictsrc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/tkng/akaza/binarydict"
)

const (
	EncodingUTF8  = "utf-8"
	EncodingEUCJP = "euc-jp"

	TypeSKK = "skk"
	TypeTSV = "tsv"
)

var (
	ErrUnsupported = errors.New("dictsrc: unsupported dictionary format")
	ErrSyntax      = errors.New("dictsrc: syntax error")
)

const maxLineLength = 1 << 20

// CheckFormat reports whether encoding and dictType are supported. Empty
// values select UTF-8 and SKK.
func CheckFormat(encoding, dictType string) error {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8, "utf8", EncodingEUCJP:
	default:
		return fmt.Errorf("%w: encoding %q", ErrUnsupported, encoding)
	}
	switch strings.ToLower(dictType) {
	case "", TypeSKK, TypeTSV:
	default:
		return fmt.Errorf("%w: dictionary type %q", ErrUnsupported, dictType)
	}
	return nil
}

// Open reads the dictionary at path.
func Open(path, encoding, dictType string) ([]binarydict.Entry, error) {
	if err := CheckFormat(encoding, dictType); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.ToLower(encoding) == EncodingEUCJP {
		r = transform.NewReader(f, japanese.EUCJP.NewDecoder())
	}

	var entries []binarydict.Entry
	if strings.ToLower(dictType) == TypeTSV {
		entries, err = ReadTSV(r)
	} else {
		entries, err = ReadSKK(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// eachLine calls fn with every line of r and its 1-based number.
func eachLine(r io.Reader, fn func(n int, line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	n := 0
	for scanner.Scan() {
		n++
		if err := fn(n, strings.TrimRight(scanner.Text(), "\r")); err != nil {
			return err
		}
	}
	return scanner.Err()
}
