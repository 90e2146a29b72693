// Package config loads the dictionary build configuration:
//
//	dicts:
//	  - path: /usr/share/skk/SKK-JISYO.okinawa
//	    encoding: euc-jp
//	    dict_type: skk
//	output: system_dict.trie
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tkng/akaza/dictsrc"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

// Config lists the source dictionaries and the output trie.
type Config struct {
	Dicts  []DictConfig `yaml:"dicts"`
	Output string       `yaml:"output"`
}

// DictConfig is one source dictionary. Encoding defaults to utf-8 and
// DictType to skk.
type DictConfig struct {
	Path     string `yaml:"path"`
	Encoding string `yaml:"encoding"`
	DictType string `yaml:"dict_type"`
}

// Load reads the configuration file at path. Relative paths inside it are
// resolved against the directory of the file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	config, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range config.Dicts {
		config.Dicts[i].Path = resolve(dir, config.Dicts[i].Path)
	}
	if config.Output != "" {
		config.Output = resolve(dir, config.Output)
	}
	return config, nil
}

// Parse decodes and validates a configuration, filling in defaults.
func Parse(r io.Reader) (*Config, error) {
	var config Config
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration and fills in the default encoding and
// dictionary type.
func (c *Config) Validate() error {
	if len(c.Dicts) == 0 {
		return fmt.Errorf("%w: no dicts", ErrInvalid)
	}

	for i := range c.Dicts {
		dict := &c.Dicts[i]
		if dict.Path == "" {
			return fmt.Errorf("%w: dicts[%d] has no path", ErrInvalid, i)
		}
		if dict.Encoding == "" {
			dict.Encoding = dictsrc.EncodingUTF8
		}
		if dict.DictType == "" {
			dict.DictType = dictsrc.TypeSKK
		}
		if err := dictsrc.CheckFormat(dict.Encoding, dict.DictType); err != nil {
			return fmt.Errorf("%w: dicts[%d]: %w", ErrInvalid, i, err)
		}
	}
	return nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
