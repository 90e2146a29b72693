package dawg

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash"
	"golang.org/x/exp/mmap"
)

/* FILE FORMAT
- 4 bytes: size of the payload in bytes (this header included, checksum excluded)
- 1 byte: cbits
- 1 byte: abits
- 7code - number of keys
- 7code - number of nodes
- 7code - number of edges
- let wbits be the number of bits to represent the total number of keys.
- for each node, root first:
	- 1 bit: is node final?
	- 1 bit: fallthrough?

	- if fallthrough
		cbits: byte label. The target node follows immediately.
	else:
		1 bit: single edge?
		- if !single edge:
			7code: number of edges
			log(wbits): nskip (number of bits in skip field)
		- for each edge, sorted by label:
			cbits: byte label
			if this is not the first edge:
				nskip: count of keys skipped by taking this edge
			abits: location in bits of the node to jump to from start of file.
- zero bits up to the next byte boundary
- 8 bytes: big endian xxhash64 of the payload

We define 7code to be an unsigned that can be read the following way:

result = 0
for {
	data = next 8 bits
	result = result << 7 | data & 0x7f
	if data & 0x80 == 0 break
}

*/

const (
	headerLength   = 4
	checksumLength = 8
	maxLabels      = 256
)

// MaxSize bounds the encoded size in bytes, checksum excluded. Finish fails
// with ErrTooLarge above it. It cannot usefully exceed the 32-bit size field.
var MaxSize uint64 = math.MaxUint32

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (n *node) skipBits() uint64 {
	return uint64(bits.Len(uint(n.count)))
}

func (n *node) bitLength(id int, cbits, nskiplen, abits uint64) uint64 {
	// final, fallthrough
	length := uint64(2)
	if n.isFallthrough(id) {
		return length + cbits
	}

	// single edge?
	length++

	numEdges := uint64(len(n.edges))
	nskipbits := n.skipBits()
	if numEdges != 1 {
		length += unsignedLength(numEdges)*8 + nskiplen
	}

	// the first edge has no skip field
	if numEdges > 0 {
		length += numEdges*(cbits+nskipbits+abits) - nskipbits
	}
	return length
}

// write encodes nodes, laid out by renumber, followed by the checksum.
// Returns the number of bytes written.
func write(wIn io.Writer, nodes []node, numAdded int) (int64, error) {
	numEdges := 0
	var maxChar byte
	for _, n := range nodes {
		numEdges += len(n.edges)
		for _, e := range n.edges {
			if e.ch > maxChar {
				maxChar = e.ch
			}
		}
	}

	cbits := uint64(bits.Len8(maxChar))
	wbits := uint64(bits.Len(uint(numAdded)))
	nskiplen := uint64(bits.Len(uint(wbits)))

	// widen abits until every node address fits into it
	addresses := make([]uint64, len(nodes))
	abits := uint64(1)
	var pos uint64
	for {
		pos = headerLength*8 + 8 + 8
		pos += unsignedLength(uint64(numAdded)) * 8
		pos += unsignedLength(uint64(len(nodes))) * 8
		pos += unsignedLength(uint64(numEdges)) * 8

		for i := range nodes {
			addresses[i] = pos
			pos += nodes[i].bitLength(i, cbits, nskiplen, abits)
		}

		if uint64(bits.Len64(pos)) <= abits {
			break
		}
		abits = uint64(bits.Len64(pos))
	}

	size := (pos + 7) / 8
	if size > MaxSize || size > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d bytes for %d keys", ErrTooLarge, size, numAdded)
	}

	hash := xxhash.New()
	w := newBitWriter(io.MultiWriter(wIn, hash))

	w.WriteBits(size, headerLength*8)
	w.WriteBits(cbits, 8)
	w.WriteBits(abits, 8)

	writeUnsigned(w, uint64(numAdded))
	writeUnsigned(w, uint64(len(nodes)))
	writeUnsigned(w, uint64(numEdges))

	for i := range nodes {
		n := &nodes[i]
		w.WriteBits(boolBit(n.final), 1)

		if n.isFallthrough(i) {
			w.WriteBits(1, 1)
			w.WriteBits(uint64(n.edges[0].ch), int(cbits))
			continue
		}

		w.WriteBits(0, 1)
		nskipbits := n.skipBits()
		if len(n.edges) == 1 {
			w.WriteBits(1, 1)
		} else {
			w.WriteBits(0, 1)
			writeUnsigned(w, uint64(len(n.edges)))
			w.WriteBits(nskipbits, int(nskiplen))
		}

		skip := boolBit(n.final)
		for index, e := range n.edges {
			w.WriteBits(uint64(e.ch), int(cbits))
			if index > 0 {
				w.WriteBits(skip, int(nskipbits))
			}
			w.WriteBits(addresses[e.node], int(abits))
			skip += uint64(nodes[e.node].count)
		}
	}

	if err := w.Flush(); err != nil {
		return 0, err
	}

	var sum [checksumLength]byte
	binary.BigEndian.PutUint64(sum[:], hash.Sum64())
	if _, err := wIn.Write(sum[:]); err != nil {
		return 0, err
	}

	return int64(size) + checksumLength, nil
}

type dawg struct {
	r      io.ReaderAt
	closer io.Closer
	size   int64 // payload size in bytes

	numAdded        int
	numNodes        int
	numEdges        int
	cbits           int64 // bits to represent a label
	abits           int64 // bits to represent node address
	nskiplen        int64 // bits to represent the width of a skip field
	firstNodeOffset int64 // first node offset in bits
}

// Load memory maps a saved dawg, verifies it and returns a Finder that reads
// it in place. Close the Finder to unmap the file.
func Load(filename string) (Finder, error) {
	f, err := mmap.Open(filename)
	if err != nil {
		return nil, err
	}

	d, err := read(f, 0, true)
	if err != nil {
		f.Close()
		return nil, err
	}
	d.closer = f
	return d, nil
}

// Read verifies the dawg stored at offset and returns a Finder that accesses
// it in-place using the given io.ReaderAt
func Read(f io.ReaderAt, offset int64) (Finder, error) {
	d, err := read(f, offset, true)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func read(f io.ReaderAt, offset int64, verify bool) (*dawg, error) {
	var header [headerLength]byte
	if _, err := f.ReadAt(header[:], offset); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrCorrupt, err)
	}
	size := int64(binary.BigEndian.Uint32(header[:]))
	if size < headerLength+2 {
		return nil, fmt.Errorf("%w: payload size %d", ErrCorrupt, size)
	}

	section := io.NewSectionReader(f, offset, size+checksumLength)
	if verify {
		if err := verifyChecksum(section, size); err != nil {
			return nil, err
		}
	}

	r := newBitSeeker(section)
	r.Seek(headerLength * 8)
	cbits := int64(r.ReadBits(8))
	abits := int64(r.ReadBits(8))
	numAdded := readUnsigned(r)
	numNodes := readUnsigned(r)
	numEdges := readUnsigned(r)
	if r.err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrCorrupt, r.err)
	}

	switch {
	case cbits > 8:
		return nil, fmt.Errorf("%w: %d bits per label", ErrCorrupt, cbits)
	case abits == 0 || abits > 40:
		return nil, fmt.Errorf("%w: %d bits per address", ErrCorrupt, abits)
	case numNodes == 0 || numNodes > uint64(size)*8, numEdges > uint64(size)*8, numAdded > uint64(size)*8:
		return nil, fmt.Errorf("%w: %d keys, %d nodes, %d edges in %d bytes",
			ErrCorrupt, numAdded, numNodes, numEdges, size)
	}

	d := &dawg{
		r:               section,
		size:            size,
		numAdded:        int(numAdded),
		numNodes:        int(numNodes),
		numEdges:        int(numEdges),
		cbits:           cbits,
		abits:           abits,
		nskiplen:        int64(bits.Len(uint(bits.Len(uint(numAdded))))),
		firstNodeOffset: r.Tell(),
	}

	if verify {
		if err := d.validate(); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func verifyChecksum(r io.ReaderAt, size int64) error {
	hash := xxhash.New()
	n, err := io.Copy(hash, io.NewSectionReader(r, 0, size))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if n != size {
		return fmt.Errorf("%w: truncated, %d of %d bytes", ErrCorrupt, n, size)
	}

	var sum [checksumLength]byte
	if _, err := r.ReadAt(sum[:], size); err != nil {
		return fmt.Errorf("%w: reading checksum: %v", ErrCorrupt, err)
	}
	if binary.BigEndian.Uint64(sum[:]) != hash.Sum64() {
		return fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}
	return nil
}

// validate walks every node once, checking that edges are sorted and point at
// node starts, that the graph is acyclic and that the skip counts and the key
// count agree with the structure. Queries rely on all of these.
func (d *dawg) validate() error {
	end := d.size * 8
	r := newBitSeeker(d.r)
	nodes := make(map[int64]nodeResult)

	at := d.firstNodeOffset
	numEdges := 0
	for i := 0; i < d.numNodes; i++ {
		n := d.getNode(r, at)
		if r.err != nil {
			return fmt.Errorf("%w: node %d at bit %d: %v", ErrCorrupt, i, at, r.err)
		}
		if r.Tell() > end {
			return fmt.Errorf("%w: node %d runs past the end of the payload", ErrCorrupt, i)
		}
		for j := 1; j < len(n.edges); j++ {
			if n.edges[j].ch <= n.edges[j-1].ch {
				return fmt.Errorf("%w: node %d has unsorted edges", ErrCorrupt, i)
			}
		}
		nodes[at] = n
		numEdges += len(n.edges)
		at = r.Tell()
	}
	if numEdges != d.numEdges {
		return fmt.Errorf("%w: found %d edges, header says %d", ErrCorrupt, numEdges, d.numEdges)
	}

	const visiting = -1
	counts := make(map[int64]int, len(nodes))
	var count func(address int64) (int, error)
	count = func(address int64) (int, error) {
		if c, ok := counts[address]; ok {
			if c == visiting {
				return 0, fmt.Errorf("%w: cycle through bit %d", ErrCorrupt, address)
			}
			return c, nil
		}
		n, ok := nodes[address]
		if !ok {
			return 0, fmt.Errorf("%w: edge to bit %d which is not a node", ErrCorrupt, address)
		}

		counts[address] = visiting
		total := int(boolBit(n.final))
		for i, e := range n.edges {
			if i > 0 && e.count != total {
				return 0, fmt.Errorf("%w: bad skip count at bit %d", ErrCorrupt, address)
			}
			c, err := count(e.node)
			if err != nil {
				return 0, err
			}
			total += c
		}
		counts[address] = total
		return total, nil
	}

	total, err := count(d.firstNodeOffset)
	if err != nil {
		return err
	}
	if total != d.numAdded {
		return fmt.Errorf("%w: found %d keys, header says %d", ErrCorrupt, total, d.numAdded)
	}
	return nil
}

// Write copies the encoded dawg, checksum included, to w. Returns the number
// of bytes written.
func (d *dawg) Write(w io.Writer) (int64, error) {
	return io.Copy(w, io.NewSectionReader(d.r, 0, d.size+checksumLength))
}

// Save writes the dawg to a temporary file next to filename and renames it
// into place. Returns the number of bytes written.
func (d *dawg) Save(filename string) (int64, error) {
	f, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return 0, err
	}

	w := bufio.NewWriter(f)
	n, err := d.Write(w)
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = f.Chmod(0o644)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(f.Name(), filename)
	}
	if err != nil {
		os.Remove(f.Name())
		return 0, err
	}
	return n, nil
}

// Close releases the memory map of a loaded dawg.
func (d *dawg) Close() error {
	if d.closer == nil {
		return nil
	}
	err := d.closer.Close()
	d.closer = nil
	return err
}

type nodeResult struct {
	final bool
	edges []edgeResult
}

type edgeResult struct {
	ch    byte
	count int
	node  int64
}

func (d *dawg) getNode(r *bitSeeker, address int64) nodeResult {
	var result nodeResult
	r.Seek(address)
	nodeFinal := int(r.ReadBits(1))
	result.final = nodeFinal == 1

	if r.ReadBits(1) == 1 {
		ch := byte(r.ReadBits(d.cbits))
		result.edges = append(result.edges, edgeResult{
			ch:    ch,
			count: nodeFinal,
			node:  r.Tell(),
		})
		return result
	}

	numEdges := uint64(1)
	nskip := int64(0)
	if r.ReadBits(1) != 1 {
		numEdges = readUnsigned(r)
		nskip = int64(r.ReadBits(d.nskiplen))
	}
	if numEdges > maxLabels || nskip > 63 {
		if r.err == nil {
			r.err = fmt.Errorf("%d edges with %d bit skip fields", numEdges, nskip)
		}
		return result
	}

	for i := uint64(0); i < numEdges && r.err == nil; i++ {
		ch := byte(r.ReadBits(d.cbits))
		count := nodeFinal
		if i > 0 {
			count = int(r.ReadBits(nskip))
		}
		address := int64(r.ReadBits(d.abits))
		result.edges = append(result.edges, edgeResult{
			ch:    ch,
			count: count,
			node:  address,
		})
	}
	return result
}

func (d *dawg) getEdge(r *bitSeeker, address int64, ch byte) (edgeResult, bool) {
	var found edgeResult
	var ok bool
	if d.numEdges == 0 {
		return found, false
	}

	r.Seek(address)
	nodeFinal := int(r.ReadBits(1))

	if r.ReadBits(1) == 1 {
		if byte(r.ReadBits(d.cbits)) != ch {
			return found, false
		}
		return edgeResult{ch: ch, count: nodeFinal, node: r.Tell()}, true
	}

	numEdges := 1
	nskip := int64(0)
	if r.ReadBits(1) != 1 {
		numEdges = int(readUnsigned(r))
		nskip = int64(r.ReadBits(d.nskiplen))
	}

	start := r.Tell()
	bsearch(numEdges, func(i int) int {
		at := start + int64(i)*(d.cbits+nskip+d.abits)
		if i > 0 {
			at -= nskip
		}

		r.Seek(at)
		label := byte(r.ReadBits(d.cbits))
		if label == ch {
			found.ch = ch
			found.count = nodeFinal
			if i > 0 {
				found.count = int(r.ReadBits(nskip))
			}
			found.node = int64(r.ReadBits(d.abits))
			ok = true
		}
		return int(label) - int(ch)
	})

	return found, ok
}

func (d *dawg) isFinal(r *bitSeeker, address int64) bool {
	r.Seek(address)
	return r.ReadBits(1) == 1
}

// DumpFile prints out the structure of an encoded dawg
func DumpFile(f io.ReaderAt, w io.Writer) error {
	d, err := read(f, 0, false)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Size=%d bytes\n", d.size)
	fmt.Fprintf(w, "cbits=%d abits=%d\n", d.cbits, d.abits)
	fmt.Fprintf(w, "Keys=%d Nodes=%d Edges=%d\n", d.numAdded, d.numNodes, d.numEdges)

	r := newBitSeeker(d.r)
	at := d.firstNodeOffset
	for i := 0; i < d.numNodes; i++ {
		n := d.getNode(r, at)
		if r.err != nil {
			return fmt.Errorf("%w: node %d: %v", ErrCorrupt, i, r.err)
		}
		fmt.Fprintf(w, "[%08x] Node final=%v has %d edges\n", at, n.final, len(n.edges))
		for _, e := range n.edges {
			fmt.Fprintf(w, "           %02x goto <%08x> skipping %d\n", e.ch, e.node, e.count)
		}
		at = r.Tell()
	}
	return nil
}

/** @param cmp returns target - i  or cmp(i, target)*/
func bsearch(count int, cmp func(i int) int) int {
	high := count
	low := -1
	var match, probe int
	for high-low > 1 {
		probe = (high + low) >> 1

		match = cmp(probe)

		if match == 0 {
			return probe
		} else if match < 0 {
			low = probe
		} else {
			high = probe
		}
	}

	return high
}
