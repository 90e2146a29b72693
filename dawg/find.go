package dawg

import (
	"iter"
)

// follow walks key from the root. It returns the address of the node reached
// and the number of keys sorted before it.
func (d *dawg) follow(r *bitSeeker, key string) (int64, int, bool) {
	address := d.firstNodeOffset
	index := 0
	for i := 0; i < len(key); i++ {
		e, ok := d.getEdge(r, address, key[i])
		if !ok {
			return 0, 0, false
		}
		address = e.node
		index += e.count
	}
	return address, index, true
}

// PredictiveSearch returns all keys beginning with prefix, in byte order.
// The sequence reads the dawg lazily; ranging over it again starts over.
func (d *dawg) PredictiveSearch(prefix string) iter.Seq[FindResult] {
	return func(yield func(FindResult) bool) {
		r := newBitSeeker(d.r)
		address, index, ok := d.follow(r, prefix)
		if !ok {
			return
		}

		key := []byte(prefix)
		d.enumerate(r, index, address, key, func(index int, key []byte, final bool) EnumerationResult {
			if final && !yield(FindResult{Key: string(key), Index: index}) {
				return Stop
			}
			return Continue
		})
	}
}

// FindAllPrefixesOf returns all items in the dawg that are a prefix of the input string.
func (d *dawg) FindAllPrefixesOf(input string) []FindResult {
	var results []FindResult
	r := newBitSeeker(d.r)
	address := d.firstNodeOffset
	skipped := 0

	for pos := 0; ; pos++ {
		// if the node is final, add a result
		if d.isFinal(r, address) {
			results = append(results, FindResult{
				Key:   input[:pos],
				Index: skipped,
			})
		}

		if pos == len(input) {
			break
		}

		// check if there is an outgoing edge for the byte
		e, ok := d.getEdge(r, address, input[pos])
		if !ok {
			break
		}

		address = e.node
		skipped += e.count
	}

	return results
}

// IndexOf returns the index, which is the rank of the key in sorted order.
// If the key was never added, it returns -1
func (d *dawg) IndexOf(key string) int {
	r := newBitSeeker(d.r)
	address, index, ok := d.follow(r, key)
	if !ok || !d.isFinal(r, address) {
		return -1
	}
	return index
}

// Enumerate will call the given method, passing it every possible prefix of keys in the index.
// Return Continue to continue enumeration, Skip to skip this branch, or Stop to stop enumeration.
func (d *dawg) Enumerate(fn EnumFn) {
	d.enumerate(newBitSeeker(d.r), 0, d.firstNodeOffset, nil, fn)
}

func (d *dawg) enumerate(r *bitSeeker, index int, address int64, key []byte, fn EnumFn) EnumerationResult {
	node := d.getNode(r, address)

	result := fn(index, key, node.final)
	if result != Continue {
		return result
	}

	l := len(key)
	key = append(key, 0)

	for _, e := range node.edges {
		key[l] = e.ch
		if d.enumerate(r, index+e.count, e.node, key, fn) == Stop {
			return Stop
		}
	}

	return Continue
}

// NumAdded returns the number of keys added
func (d *dawg) NumAdded() int {
	return d.numAdded
}

// NumNodes returns the number of nodes in the dawg.
func (d *dawg) NumNodes() int {
	return d.numNodes
}

// NumEdges returns the number of edges in the dawg.
func (d *dawg) NumEdges() int {
	return d.numEdges
}
