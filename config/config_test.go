package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tkng/akaza/dictsrc"
)

const sample = `---
dicts:
  - path: /usr/share/skk/SKK-JISYO.okinawa
    encoding: euc-jp
    dict_type: skk
  - path: extra.tsv
    dict_type: tsv
output: out/system_dict.trie
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "akaza.yml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	config, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, &Config{
		Dicts: []DictConfig{
			{
				Path:     "/usr/share/skk/SKK-JISYO.okinawa",
				Encoding: "euc-jp",
				DictType: "skk",
			},
			{
				Path:     filepath.Join(dir, "extra.tsv"),
				Encoding: dictsrc.EncodingUTF8,
				DictType: "tsv",
			},
		},
		Output: filepath.Join(dir, "out", "system_dict.trie"),
	}, config)
}

func TestParseInvalid(t *testing.T) {
	cases := map[string]string{
		"no dicts":         "output: x\n",
		"unknown field":    "dicts:\n  - path: a\n    colour: red\n",
		"missing path":     "dicts:\n  - encoding: euc-jp\n",
		"unknown encoding": "dicts:\n  - path: a\n    encoding: shift_jis\n",
		"unknown type":     "dicts:\n  - path: a\n    dict_type: mecab\n",
	}
	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(source))
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
