package dictsrc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"

	"github.com/tkng/akaza/binarydict"
)

const skkSource = `;; -*- mode: fundamental; coding: euc-jp -*-
;; okuri-ari entries.
おくr /送;send/贈/[る/送/]/
;; okuri-nasi entries.
かんじ /漢字/幹事;secretary/感じ/
ここ  /此処/(concat "a\057b")/(concat "x\073" "y")/
えすけーけー /SKK/
`

func TestReadSKK(t *testing.T) {
	entries, err := ReadSKK(strings.NewReader(skkSource))
	require.NoError(t, err)
	require.Equal(t, []binarydict.Entry{
		{Reading: "おくr", Candidates: []string{"送", "贈"}},
		{Reading: "かんじ", Candidates: []string{"漢字", "幹事", "感じ"}},
		{Reading: "ここ", Candidates: []string{"此処", "x;y"}},
		{Reading: "えすけーけー", Candidates: []string{"SKK"}},
	}, entries)
}

func TestReadSKKSyntaxError(t *testing.T) {
	_, err := ReadSKK(strings.NewReader(";; ok\nかんじ 漢字\n"))
	require.ErrorIs(t, err, ErrSyntax)
	require.ErrorContains(t, err, "line 2")
}

func TestUnconcat(t *testing.T) {
	cases := map[string]string{
		"漢字":                      "漢字",
		`(concat "a\057b")`:         "a/b",
		`(concat "C\057C++")`:       "C/C++",
		`(concat "x" "y" "\042z")`: `xy"z`,
	}
	for in, want := range cases {
		got, ok := unconcat(in)
		require.True(t, ok, in)
		require.Equal(t, want, got)
	}

	for _, in := range []string{`(concat "unterminated)`, `(concat abc)`} {
		_, ok := unconcat(in)
		require.False(t, ok, in)
	}
}

func TestReadTSV(t *testing.T) {
	entries, err := ReadTSV(strings.NewReader("# comment\nとくひろ\t徳宏/徳大/徳寛/督弘\n\nかみ\t紙//神/\n"))
	require.NoError(t, err)
	require.Equal(t, []binarydict.Entry{
		{Reading: "とくひろ", Candidates: []string{"徳宏", "徳大", "徳寛", "督弘"}},
		{Reading: "かみ", Candidates: []string{"紙", "神"}},
	}, entries)

	_, err = ReadTSV(strings.NewReader("no tab here\n"))
	require.ErrorIs(t, err, ErrSyntax)
}

func TestOpenEUCJP(t *testing.T) {
	encoded, err := japanese.EUCJP.NewEncoder().String("かんじ /漢字/幹事/\n")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "SKK-JISYO.test")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	entries, err := Open(path, EncodingEUCJP, TypeSKK)
	require.NoError(t, err)
	require.Equal(t, []binarydict.Entry{
		{Reading: "かんじ", Candidates: []string{"漢字", "幹事"}},
	}, entries)
}

func TestOpenTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.tsv")
	require.NoError(t, os.WriteFile(path, []byte("あ\t亜/阿\n"), 0o644))

	entries, err := Open(path, "", TypeTSV)
	require.NoError(t, err)
	require.Equal(t, []binarydict.Entry{{Reading: "あ", Candidates: []string{"亜", "阿"}}}, entries)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"), "", "")
	require.ErrorIs(t, err, os.ErrNotExist)

	require.ErrorIs(t, CheckFormat("shift_jis", TypeSKK), ErrUnsupported)
	require.ErrorIs(t, CheckFormat(EncodingUTF8, "mecab"), ErrUnsupported)
	require.NoError(t, CheckFormat("EUC-JP", "SKK"))
}
