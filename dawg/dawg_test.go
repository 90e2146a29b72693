package dawg_test

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tkng/akaza/dawg"
)

func createDawg(t *testing.T, keys []string) dawg.Finder {
	t.Helper()
	b := dawg.New()
	for _, key := range keys {
		require.NoError(t, b.Add(key))
	}

	finder, err := b.Finish()
	require.NoError(t, err)
	return finder
}

func testDawg(t *testing.T, d dawg.Finder, keys []string) {
	t.Helper()
	added := d.NumAdded()
	if added != len(keys) {
		t.Errorf("NumAdded() returned %d, expected %d", added, len(keys))
	}

	for i, key := range keys {
		index := d.IndexOf(key)

		if index != i {
			t.Errorf("Index of %q should be %v, not %v", key, i, index)
		}
	}

	var all []string
	for result := range d.PredictiveSearch("") {
		all = append(all, result.Key)
	}
	require.Equal(t, len(keys), len(all))
	if len(keys) > 0 {
		require.Equal(t, keys, all)
	}
}

func runTest(t *testing.T, keys []string) dawg.Finder {
	t.Helper()
	finder := createDawg(t, keys)
	testDawg(t, finder, keys)

	// Now try the disk version
	path := filepath.Join(t.TempDir(), "test.dawg")
	_, err := finder.Save(path)
	require.NoError(t, err)

	saved, err := dawg.Load(path)
	require.NoError(t, err)
	t.Cleanup(func() { saved.Close() })

	require.Equal(t, finder.NumNodes(), saved.NumNodes())
	require.Equal(t, finder.NumEdges(), saved.NumEdges())
	testDawg(t, saved, keys)

	return finder
}

func TestEmpty(t *testing.T) {
	d := runTest(t, nil)
	require.Equal(t, -1, d.IndexOf(""))
	require.Empty(t, d.FindAllPrefixesOf("abc"))
}

func TestZeroLengthKey(t *testing.T) {
	runTest(t, []string{
		"",
	})
}

func TestSingleEntry(t *testing.T) {
	runTest(t, []string{
		"a",
	})
}

func TestHelloJello(t *testing.T) {
	d := runTest(t, []string{
		"hello",
		"jello",
	})
	require.Equal(t, -1, d.IndexOf("hell"))
	require.Equal(t, -1, d.IndexOf("jellos"))
}

func TestBinaryKeys(t *testing.T) {
	runTest(t, []string{
		"\x00",
		"\x00\x00",
		"a\xff",
		"a\xff\x00b",
		"a\xffb/c",
		"\xff",
		"\xff\xff\xff",
	})
}

func TestSharedSuffixes(t *testing.T) {
	d := runTest(t, []string{
		"cities",
		"city",
		"pities",
		"pity",
	})
	// cit and pit share their tails
	require.Less(t, d.NumNodes(), 12)
}

func TestAddOrder(t *testing.T) {
	b := dawg.New()
	require.True(t, b.CanAdd("b"))
	require.NoError(t, b.Add("b"))
	require.False(t, b.CanAdd("a"))
	require.False(t, b.CanAdd("b"))
	require.ErrorIs(t, b.Add("a"), dawg.ErrOrder)
	require.ErrorIs(t, b.Add("b"), dawg.ErrOrder)

	first, err := b.Finish()
	require.NoError(t, err)
	second, err := b.Finish()
	require.NoError(t, err)
	require.Same(t, first, second)

	require.False(t, b.CanAdd("c"))
	require.ErrorIs(t, b.Add("c"), dawg.ErrFinished)
}

func TestBuildUnsorted(t *testing.T) {
	d, err := dawg.Build([]string{"cats", "blip", "cat", "catnip", "cat", "blip"})
	require.NoError(t, err)
	testDawg(t, d, []string{"blip", "cat", "catnip", "cats"})
}

func testPrefixes(t *testing.T, keys []string, key string, shouldbe []dawg.FindResult) {
	finder := createDawg(t, keys)

	results := finder.FindAllPrefixesOf(key)

	if len(results) != len(shouldbe) {
		t.Errorf("Got %v but should be %v", results, shouldbe)
	}

	for i, result := range results {
		if result != shouldbe[i] {
			t.Errorf("Got %v but should be %v", results, shouldbe)
			break
		}
	}
}

func TestPrefixes(t *testing.T) {
	keys := []string{
		"",
		"blip",
		"cat",
		"catnip",
		"cats",
	}

	testPrefixes(t, keys, "catsup", []dawg.FindResult{
		{Key: "", Index: 0},
		{Key: "cat", Index: 2},
		{Key: "cats", Index: 4},
	})
}

func TestPredictiveSearch(t *testing.T) {
	d := createDawg(t, []string{
		"blip",
		"cat",
		"catnip",
		"cats",
		"dog",
	})

	collect := func(prefix string) []dawg.FindResult {
		return slices.Collect(d.PredictiveSearch(prefix))
	}

	require.Equal(t, []dawg.FindResult{
		{Key: "cat", Index: 1},
		{Key: "catnip", Index: 2},
		{Key: "cats", Index: 3},
	}, collect("ca"))
	require.Equal(t, []dawg.FindResult{{Key: "catnip", Index: 2}}, collect("catn"))
	require.Empty(t, collect("cab"))
	require.Empty(t, collect("dogs"))

	// the sequence is restartable and stops early on demand
	seq := d.PredictiveSearch("c")
	for range 2 {
		var first dawg.FindResult
		for result := range seq {
			first = result
			break
		}
		require.Equal(t, dawg.FindResult{Key: "cat", Index: 1}, first)
	}
}

func TestEnumerateSkip(t *testing.T) {
	d := createDawg(t, []string{"aa", "ab", "ba", "bb"})

	var finals []string
	d.Enumerate(func(index int, key []byte, final bool) dawg.EnumerationResult {
		if string(key) == "a" {
			return dawg.Skip
		}
		if final {
			finals = append(finals, string(key))
		}
		return dawg.Continue
	})
	require.Equal(t, []string{"ba", "bb"}, finals)
}

func TestReadAtOffset(t *testing.T) {
	keys := []string{"alpha", "beta", "gamma"}
	d := createDawg(t, keys)

	var buffer bytes.Buffer
	buffer.WriteString("some leading bytes")
	n, err := d.Write(&buffer)
	require.NoError(t, err)
	require.Equal(t, int64(buffer.Len()-18), n)

	read, err := dawg.Read(bytes.NewReader(buffer.Bytes()), 18)
	require.NoError(t, err)
	testDawg(t, read, keys)
}

func TestLoadCorrupt(t *testing.T) {
	d := createDawg(t, []string{"とくひろ\xff徳宏/徳大", "とくこ\xff徳子"})
	var buffer bytes.Buffer
	_, err := d.Write(&buffer)
	require.NoError(t, err)
	good := buffer.Bytes()

	dir := t.TempDir()
	cases := map[string][]byte{
		"empty":     {},
		"short":     good[:3],
		"truncated": good[:len(good)-4],
		"flipped": func() []byte {
			b := slices.Clone(good)
			b[len(b)/2] ^= 0x10
			return b
		}(),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, data, 0o644))
			_, err := dawg.Load(path)
			require.ErrorIs(t, err, dawg.ErrCorrupt)
		})
	}

	_, err = dawg.Load(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestTooLarge(t *testing.T) {
	defer func(max uint64) { dawg.MaxSize = max }(dawg.MaxSize)
	dawg.MaxSize = 8

	_, err := dawg.Build([]string{"a", "b"})
	require.ErrorIs(t, err, dawg.ErrTooLarge)

	b := dawg.New()
	require.NoError(t, b.Add("a"))
	_, err = b.Finish()
	require.ErrorIs(t, err, dawg.ErrTooLarge)
}

func TestDumpFile(t *testing.T) {
	d := createDawg(t, []string{"a", "ab"})
	var encoded, dump bytes.Buffer
	_, err := d.Write(&encoded)
	require.NoError(t, err)

	require.NoError(t, dawg.DumpFile(bytes.NewReader(encoded.Bytes()), &dump))
	require.Contains(t, dump.String(), "Keys=2 Nodes=3 Edges=2")
}

func readDictWords(t *testing.T) []string {
	dict := "/usr/share/dict/words"
	file, err := os.Open(dict)
	if err != nil {
		t.Skipf("Skipping full dictionary test; can't open %s", dict)
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	slices.Sort(words)
	return slices.Compact(words)
}

func TestFullDict(t *testing.T) {
	words := readDictWords(t)
	d := runTest(t, words)
	t.Logf("DAWG has %v words, %v nodes, %v edges",
		d.NumAdded(), d.NumNodes(), d.NumEdges())
}

func ExampleNew() {
	builder := dawg.New()

	builder.Add("blip")   // index 0
	builder.Add("cat")    // index 1
	builder.Add("catnip") // index 2
	builder.Add("cats")   // index 3

	finder, _ := builder.Finish()

	for _, result := range finder.FindAllPrefixesOf("catsup") {
		fmt.Printf("Found prefix %s, index %d\n", result.Key, result.Index)
	}

	// Output:
	// Found prefix cat, index 1
	// Found prefix cats, index 3
}

func ExampleFinder_PredictiveSearch() {
	finder, _ := dawg.Build([]string{"cats", "cat", "dog", "catnip"})

	for result := range finder.PredictiveSearch("cat") {
		fmt.Println(result.Key, result.Index)
	}

	// Output:
	// cat 0
	// catnip 1
	// cats 2
}
