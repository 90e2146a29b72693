package dawg

import (
	"io"
)

// bitWriter packs values MSB first. The first write error is kept and
// returned by Flush; writes after an error are dropped.
type bitWriter struct {
	io.Writer
	cache uint8
	used  int
	err   error
}

func newBitWriter(w io.Writer) *bitWriter {
	return &bitWriter{Writer: w}
}

func (w *bitWriter) WriteBits(data uint64, n int) {
	var mask uint8
	for n > 0 && w.err == nil {
		written := n
		if written+w.used > 8 {
			written = 8 - w.used
		}

		mask = uint8(uint16(1<<(written)) - 1)
		w.used += written
		w.cache = (w.cache << written) | byte(data>>(n-written))&mask

		if w.used == 8 {
			_, w.err = w.Write([]byte{w.cache})
			w.used = 0
		}

		n -= written
	}
}

// Flush pads the last partial byte with zero bits and writes it out.
func (w *bitWriter) Flush() error {
	if w.used > 0 && w.err == nil {
		_, w.err = w.Write([]byte{w.cache << (8 - w.used)})
		w.used = 0
	}
	return w.err
}

var maskTop = []byte{
	0xff,
	0x7f,
	0x3f,
	0x1f,
	0x0f,
	0x07,
	0x03,
	0x01,
	0x00,
}

// bitSeeker reads bits from a given offset in bits. A failed read sets err,
// after which every read returns zero.
type bitSeeker struct {
	io.ReaderAt
	p      int64
	buffer []byte
	err    error
}

func newBitSeeker(r io.ReaderAt) *bitSeeker {
	return &bitSeeker{ReaderAt: r, buffer: make([]byte, 1)}
}

func (r *bitSeeker) nextByte() byte {
	if r.err != nil {
		return 0
	}
	n, err := r.ReadAt(r.buffer, r.p>>3)
	if n < 1 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		r.err = err
		return 0
	}
	return r.buffer[0]
}

func (r *bitSeeker) ReadBits(n int64) uint64 {
	if n == 0 {
		return 0
	}

	if r.p&7+n <= 8 {
		ret := uint64((r.nextByte() & maskTop[r.p&7]) >> (8 - r.p&7 - n))
		r.p += n
		return ret
	}

	// bits lie incompletely in the current byte
	var result uint64
	result = uint64((r.nextByte() & maskTop[r.p&7]))

	l := 8 - r.p&7
	r.p += l
	n -= l

	for n >= 8 {
		result = (result << 8) | uint64(r.nextByte())
		r.p += 8
		n -= 8
	}

	if n > 0 {
		result = (result << n) | uint64(r.nextByte()>>(8-n))
		r.p += n
	}

	return result
}

func (r *bitSeeker) Seek(pos int64) {
	r.p = pos
}

func (r *bitSeeker) Tell() int64 {
	return r.p
}

// 7code: big endian groups of 7 bits, high bit set on all but the last byte.

func writeUnsigned(w *bitWriter, n uint64) {
	for i := unsignedLength(n) - 1; i > 0; i-- {
		w.WriteBits((n>>(7*i))&0x7f|0x80, 8)
	}
	w.WriteBits(n&0x7f, 8)
}

func readUnsigned(r *bitSeeker) uint64 {
	var result uint64
	for i := 0; r.err == nil; i++ {
		if i == 10 {
			r.err = errVarint
			return 0
		}
		d := r.ReadBits(8)
		result = (result << 7) | d&0x7f
		if d&0x80 == 0 {
			break
		}
	}
	return result
}

func unsignedLength(n uint64) uint64 {
	l := uint64(1)
	for n >= 0x80 {
		n >>= 7
		l++
	}
	return l
}
