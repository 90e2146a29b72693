// Package binarydict is the reading to candidates dictionary of the input
// method. Entries are flattened into composite keys (see package dictkey) and
// stored in an immutable DAWG, which is saved to and memory mapped from a
// single binary file.
//
// A Dictionary is Unbuilt until Build or Load succeeds. Build and Load
// replace the whole trie and must not run concurrently with lookups; wrap the
// Dictionary in a sync.RWMutex when lookups and reloads share it. Lookups
// alone may run concurrently.
package binarydict

import (
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/tkng/akaza/dawg"
	"github.com/tkng/akaza/dictkey"
)

// Dictionary maps readings to candidate lists. The zero value is not usable;
// create one with New.
type Dictionary struct {
	trie   dawg.Finder
	logger Logger
}

// Option configures a Dictionary.
type Option func(*Dictionary)

// WithLogger sets the logger. The default logs info and above to stderr.
func WithLogger(logger Logger) Option {
	return func(d *Dictionary) {
		d.logger = logger
	}
}

// New returns an Unbuilt dictionary.
func New(opts ...Option) *Dictionary {
	d := &Dictionary{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = NewDefaultLogger(slog.LevelInfo)
	}
	return d
}

// Build replaces the dictionary with entries. Entries sharing a reading are
// merged first, see MergeEntries. On error the dictionary is unchanged.
func (d *Dictionary) Build(entries []Entry) error {
	start := time.Now()

	merged := MergeEntries(entries)
	keys := make([]string, 0, len(merged))
	for _, entry := range merged {
		key, err := dictkey.Encode(entry.Reading, entry.Candidates)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}

	trie, err := dawg.Build(keys)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuild, err)
	}

	d.replace(trie)
	BuildDuration.Observe(time.Since(start).Seconds())
	d.logger.Debug("built dictionary",
		"entries", len(entries), "keys", trie.NumAdded(),
		"nodes", trie.NumNodes(), "edges", trie.NumEdges())
	return nil
}

// Save writes the dictionary to path.
func (d *Dictionary) Save(path string) error {
	if d.trie == nil {
		return ErrNotReady
	}

	if _, err := d.trie.Save(path); err != nil {
		return fmt.Errorf("%w: saving %s: %w", ErrIO, path, err)
	}

	d.logger.Info("saved dictionary", "path", path, "keys", d.trie.NumAdded())
	return nil
}

// Load replaces the dictionary with the one saved at path. On error the
// dictionary is unchanged.
func (d *Dictionary) Load(path string) error {
	trie, err := dawg.Load(path)
	if err != nil {
		return fmt.Errorf("%w: loading %s: %w", ErrIO, path, err)
	}

	d.replace(trie)
	d.logger.Debug("loaded dictionary", "path", path, "keys", trie.NumAdded())
	return nil
}

// FindCandidates returns the candidates stored for reading, most preferred
// first. An unknown reading yields no candidates and no error.
func (d *Dictionary) FindCandidates(reading string) ([]string, error) {
	if d.trie == nil {
		return nil, ErrNotReady
	}

	query, err := dictkey.QueryPrefix(reading)
	if err != nil {
		return nil, err
	}

	// Build stores one key per reading, so the first match is the only one.
	for match := range d.trie.PredictiveSearch(query) {
		Lookups.WithLabelValues("hit").Inc()
		return dictkey.DecodeSuffix(match.Key, len(query)), nil
	}

	Lookups.WithLabelValues("miss").Inc()
	return nil, nil
}

// KeyCount returns the number of stored composite keys.
func (d *Dictionary) KeyCount() int {
	if d.trie == nil {
		return 0
	}
	return d.trie.NumAdded()
}

// Entries yields every stored reading with its candidates, in byte order of
// the composite keys.
func (d *Dictionary) Entries() iter.Seq2[string, []string] {
	return func(yield func(string, []string) bool) {
		if d.trie == nil {
			return
		}
		for match := range d.trie.PredictiveSearch("") {
			reading, candidates, ok := dictkey.Decode(match.Key)
			if !ok {
				d.logger.Warn("skipping key without separator", "key", match.Key)
				continue
			}
			if !yield(reading, candidates) {
				return
			}
		}
	}
}

// Close releases the trie. The dictionary is Unbuilt afterwards.
func (d *Dictionary) Close() error {
	if d.trie == nil {
		return nil
	}
	err := d.trie.Close()
	d.trie = nil
	return err
}

func (d *Dictionary) replace(trie dawg.Finder) {
	old := d.trie
	d.trie = trie
	Keys.Set(float64(trie.NumAdded()))

	if old != nil {
		if err := old.Close(); err != nil {
			d.logger.Warn("closing previous dictionary", "err", err)
		}
	}
}
