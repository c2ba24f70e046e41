// Package buffer implements InputBuffer, the bounded growable byte window
// a Decoder hands to its codec.Session, generalizing the teacher's
// grow-then-shift idiom (seen skipping bytes in core/ReadJXLBoxes.go) and
// the hit/miss metrics style of util/buffer_pool.go into a dedicated
// buffering component.
package buffer

import (
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/alistair7/jxltk/jxlerr"
)

// defaultChunkBytes is the initial allocation for a stream source, grown
// geometrically up to Max as the codec asks for more.
const defaultChunkBytes = 128 * 1024

// InputBuffer presents a codec.Session with a contiguous byte window into
// the original source while minimising memory.
//
// Not safe for concurrent use.
type InputBuffer struct {
	data []byte // data[:length] is valid; len(data) is the current capacity

	max    uint64 // maximum capacity in bytes
	length int
	// offset is the absolute offset of data[0] within the source.
	offset uint64
	// decOffset is where the codec last consumed from; decOffset <= length.
	decOffset int

	source io.Reader
	seeker io.Seeker
	// startPos is the rewind anchor captured when the stream source was
	// bound.
	startPos int64

	wholeFileBuffered bool

	replenishes int64
	grows       int64
}

// NewFromMemory adopts a caller-owned byte range directly: the whole file
// is considered buffered immediately, matching open_memory's contract.
func NewFromMemory(data []byte) *InputBuffer {
	return &InputBuffer{
		data:              data,
		max:               uint64(len(data)),
		length:            len(data),
		wholeFileBuffered: true,
	}
}

// NewFromStream primes a buffer over a possibly non-seekable stream. If
// maxBytes is 0, it is treated as unbounded for sizing purposes (the
// buffer will still only grow on demand).
func NewFromStream(r io.Reader, maxBytes uint64) (*InputBuffer, error) {
	b := &InputBuffer{source: r, max: maxBytes}
	if s, ok := r.(io.Seeker); ok {
		b.seeker = s
		pos, err := s.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, jxlerr.Wrap(jxlerr.Io, err, "failed to determine stream position")
		}
		b.startPos = pos
	}
	if err := b.prime(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *InputBuffer) initialCap() int {
	chunk := uint64(defaultChunkBytes)
	if b.max > 0 && b.max < chunk {
		chunk = b.max
	}
	return int(chunk)
}

// prime performs the first read for a stream source.
func (b *InputBuffer) prime() error {
	cap := b.initialCap()
	b.data = make([]byte, cap)
	n, err := io.ReadFull(b.source, b.data)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		err = nil
		b.wholeFileBuffered = true
	}
	if err != nil {
		return jxlerr.Wrap(jxlerr.Io, err, "failed to read from input")
	}
	b.length = n
	if n < cap {
		b.wholeFileBuffered = true
	}
	log.Debugf("buffer: primed %d bytes (whole file buffered=%v)", n, b.wholeFileBuffered)
	return nil
}

// Window returns the current contiguous byte window, [0:Length).
func (b *InputBuffer) Window() []byte { return b.data[:b.length] }

// DecOffset is the offset within Window() the codec has consumed up to.
func (b *InputBuffer) DecOffset() int { return b.decOffset }

// SetDecOffset records how far the codec has consumed Window(), as
// reported by codec.Session.ReleaseInput (length - unconsumed).
func (b *InputBuffer) SetDecOffset(off int) { b.decOffset = off }

// WholeFileBuffered reports whether the entire source is now resident.
func (b *InputBuffer) WholeFileBuffered() bool { return b.wholeFileBuffered }

// Replenish grows or shifts the buffer and reads more bytes, implementing
// §4.1's Replenish algorithm. It returns the new Window() for convenience.
func (b *InputBuffer) Replenish() ([]byte, error) {
	unprocessed := b.length - b.decOffset
	if unprocessed == b.length && b.length > 0 {
		return nil, jxlerr.New(jxlerr.CorruptedStream, "codec stalled: consumed zero bytes of %d buffered", b.length)
	}
	b.replenishes++

	cap := len(b.data)
	if b.source == nil {
		// Memory source: there is nothing more to read. The caller
		// asking for more input than exists is itself a contract
		// violation upstream.
		return nil, jxlerr.New(jxlerr.CorruptedStream, "no more input available from memory source")
	}

	if uint64(cap) < b.max || b.max == 0 {
		newCap := cap * 2
		if newCap == 0 {
			newCap = defaultChunkBytes
		}
		if b.max > 0 && uint64(newCap) > b.max {
			newCap = int(b.max)
		}
		grown := make([]byte, newCap)
		// Keep the whole [0,length) prefix, not just the unconsumed
		// tail: offset and decOffset stay valid, so a later Rewind can
		// still tell the start of the file is resident.
		copy(grown, b.data[:b.length])
		b.data = grown
		b.grows++
	} else {
		copy(b.data, b.data[b.decOffset:b.length])
		b.offset += uint64(b.decOffset)
		b.length = unprocessed
		b.decOffset = 0
	}

	n, err := b.source.Read(b.data[b.length:])
	if n > 0 {
		b.length += n
	}
	if err == io.EOF {
		if b.offset == 0 && (n == 0 || (b.replenishes == 1 && unprocessed == 0)) {
			b.wholeFileBuffered = true
		}
	} else if err != nil {
		return nil, jxlerr.Wrap(jxlerr.Io, err, "failed to read from input")
	}

	return b.Window(), nil
}

// Rewind seeks the underlying source back to its start position, or does
// nothing if the start of the file is still resident in the buffer
// (offset == 0), matching §4.1's Rewind algorithm.
func (b *InputBuffer) Rewind() error {
	if b.offset == 0 {
		// Start of file already buffered; nothing to do.
		return nil
	}
	if b.seeker == nil {
		return jxlerr.New(jxlerr.NotSeekable, "input is not seekable - can't read image features out of sequence")
	}
	if _, err := b.seeker.Seek(b.startPos, io.SeekStart); err != nil {
		return jxlerr.Wrap(jxlerr.NotSeekable, err, "failed to seek input back to start")
	}
	b.offset = 0
	b.decOffset = 0
	b.length = 0
	return b.prime()
}

// Metrics returns the number of Replenish calls and buffer growths so
// far, a debug aid only - no invariant depends on these values.
func (b *InputBuffer) Metrics() (replenishes, grows int64) {
	return b.replenishes, b.grows
}
