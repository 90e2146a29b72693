package dawg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"strconv"
)

var (
	ErrOrder    = errors.New("dawg: keys not in strictly increasing order")
	ErrFinished = errors.New("dawg: builder already finished")
	ErrTooLarge = errors.New("dawg: structure exceeds file format limits")
	ErrCorrupt  = errors.New("dawg: corrupt file")

	errVarint = errors.New("dawg: varint overflow")
)

// FindResult is the result of a lookup in the Dawg. It
// contains both the key found, and its index in sorted order.
type FindResult struct {
	Key   string
	Index int
}

// EnumFn is called for every node visited by Enumerate. The key slice is
// reused between calls; copy it to keep it.
type EnumFn = func(index int, key []byte, final bool) EnumerationResult

// EnumerationResult is returned by the enumeration function to indicate whether
// enumeration should continue below this depth or to stop altogether
type EnumerationResult = int

const (
	// Continue enumerating all keys with this prefix
	Continue EnumerationResult = iota

	// Skip will skip all keys with this prefix
	Skip

	// Stop will immediately stop enumerating keys
	Stop
)

// Finder is the interface for querying a finished Dawg, whether it was
// just built or loaded from disk.
type Finder interface {
	PredictiveSearch(prefix string) iter.Seq[FindResult]
	FindAllPrefixesOf(input string) []FindResult
	IndexOf(key string) int
	Enumerate(fn EnumFn)
	NumAdded() int
	NumEdges() int
	NumNodes() int
	Write(w io.Writer) (int64, error)
	Save(filename string) (int64, error)
	Close() error
}

// Builder is the interface for creating a new Dawg
type Builder interface {
	CanAdd(key string) bool
	Add(key string) error
	Finish() (Finder, error)
}

const rootNode = 0

type edge struct {
	ch   byte
	node int
}

type node struct {
	final bool
	count int // keys reachable from this node, itself included
	edges []edge
}

func (n *node) isFallthrough(id int) bool {
	return len(n.edges) == 1 && n.edges[0].node == id+1
}

type uncheckedNode struct {
	parent int
	ch     byte
	child  int
}

type builder struct {
	lastKey        string
	numAdded       int
	finished       bool
	finder         Finder
	nodes          []node
	uncheckedNodes []uncheckedNode
	minimizedNodes map[string]int
}

// New creates a builder. Keys must be added in strictly increasing byte order.
func New() Builder {
	return &builder{
		nodes:          []node{{}},
		minimizedNodes: make(map[string]int),
	}
}

// Build sorts and deduplicates keys, then builds a Dawg from them.
func Build(keys []string) (Finder, error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	b := New()
	for _, key := range sorted {
		if err := b.Add(key); err != nil {
			return nil, err
		}
	}
	return b.Finish()
}

// CanAdd will return true if the key can be added to the Dawg.
func (b *builder) CanAdd(key string) bool {
	return !b.finished && (b.numAdded == 0 || key > b.lastKey)
}

func (b *builder) Add(key string) error {
	if b.finished {
		return ErrFinished
	}
	if b.numAdded > 0 && key <= b.lastKey {
		return fmt.Errorf("%w: %q after %q", ErrOrder, key, b.lastKey)
	}

	// find common prefix between key and previous key
	commonPrefix := 0
	for commonPrefix < min(len(key), len(b.lastKey)) && key[commonPrefix] == b.lastKey[commonPrefix] {
		commonPrefix++
	}

	// Check the uncheckedNodes for redundant nodes, proceeding from last
	// one down to the common prefix size. Then truncate the list at that
	// point.
	b.minimize(commonPrefix)

	// add the suffix, starting from the correct node mid-way through the
	// graph
	parent := rootNode
	if n := len(b.uncheckedNodes); n > 0 {
		parent = b.uncheckedNodes[n-1].child
	}

	for i := commonPrefix; i < len(key); i++ {
		child := len(b.nodes)
		b.nodes = append(b.nodes, node{})
		b.nodes[parent].edges = append(b.nodes[parent].edges, edge{ch: key[i], node: child})
		b.uncheckedNodes = append(b.uncheckedNodes, uncheckedNode{parent, key[i], child})
		parent = child
	}

	b.nodes[parent].final = true
	b.lastKey = key
	b.numAdded++
	return nil
}

// Finish minimizes the remaining nodes, encodes the graph and returns a
// Finder over the encoded form. Calling Finish again returns the same Finder.
func (b *builder) Finish() (Finder, error) {
	if b.finder != nil {
		return b.finder, nil
	}
	if b.finished {
		return nil, ErrFinished
	}
	b.finished = true

	b.minimize(0)
	nodes := b.renumber()

	// no longer needed
	b.nodes = nil
	b.uncheckedNodes = nil
	b.minimizedNodes = nil

	var buffer bytes.Buffer
	if _, err := write(&buffer, nodes, b.numAdded); err != nil {
		return nil, err
	}

	finder, err := read(bytes.NewReader(buffer.Bytes()), 0, false)
	if err != nil {
		return nil, err
	}
	b.finder = finder
	return finder, nil
}

func (b *builder) minimize(downTo int) {
	// proceed from the leaf up to a certain point
	for i := len(b.uncheckedNodes) - 1; i >= downTo; i-- {
		u := b.uncheckedNodes[i]
		name := b.nameOf(u.child)
		if existing, ok := b.minimizedNodes[name]; ok {
			// the child is always the most recent edge of its parent
			edges := b.nodes[u.parent].edges
			edges[len(edges)-1].node = existing
			b.nodes[u.child] = node{}
		} else {
			b.minimizedNodes[name] = u.child
		}
	}

	b.uncheckedNodes = b.uncheckedNodes[:downTo]
}

func (b *builder) nameOf(id int) string {
	// node name is [!]_ch:id... for each child
	n := &b.nodes[id]
	buff := bytes.Buffer{}
	if n.final {
		buff.WriteByte('!')
	}
	for _, e := range n.edges {
		buff.WriteByte('_')
		buff.WriteByte(e.ch)
		buff.WriteByte(':')
		buff.WriteString(strconv.Itoa(e.node))
	}
	return buff.String()
}

// renumber lays the reachable nodes out in depth-first pre-order, so that a
// node whose first child has not been seen before falls through to it, and
// fills in the reachable key counts.
func (b *builder) renumber() []node {
	remap := map[int]int{}
	var order []int
	var visit func(id int)
	visit = func(id int) {
		if _, ok := remap[id]; ok {
			return
		}
		remap[id] = len(order)
		order = append(order, id)
		for _, e := range b.nodes[id].edges {
			visit(e.node)
		}
	}
	visit(rootNode)

	nodes := make([]node, len(order))
	for id, old := range order {
		n := node{
			final: b.nodes[old].final,
			edges: make([]edge, len(b.nodes[old].edges)),
		}
		for i, e := range b.nodes[old].edges {
			n.edges[i] = edge{ch: e.ch, node: remap[e.node]}
		}
		nodes[id] = n
	}

	var count func(id int) int
	count = func(id int) int {
		n := &nodes[id]
		if n.count > 0 {
			return n.count
		}
		total := 0
		if n.final {
			total++
		}
		for _, e := range n.edges {
			total += count(e.node)
		}
		n.count = total
		return total
	}
	count(rootNode)

	return nodes
}
