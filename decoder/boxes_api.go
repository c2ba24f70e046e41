package decoder

import (
	"github.com/alistair7/jxltk/boxes"
	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/jxlerr"
)

// growStartSize and growCapSize bound the exponential-growth buffer used by
// the growable-destination overloads of BoxContent and ReconstructedJPEG.
const (
	growStartSize = 8 * 1024
	growCapSize   = 64 * 1024 * 1024
)

// BoxCount returns the number of top-level boxes in the container,
// scanning box headers (but not content) as needed. Returns 0 for a bare
// codestream.
func (d *Decoder) BoxCount() (int, error) {
	if d.state.Has(SeenAllBoxes) {
		return len(d.boxes), nil
	}
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	if !d.eventsSubbed.Has(codec.Box) {
		if err := d.rewind(d.eventsSubbed.Add(codec.Box)); err != nil {
			return 0, err
		}
	}
	if _, err := d.processUntil(0, stopAt{}, stopAt{kind: stopAllIndex}, stopAt{}); err != nil {
		return 0, err
	}
	return len(d.boxes), nil
}

// goToBox drives the decoder to the JXL_DEC_BOX event for index, rewinding
// if necessary. Unlike frames, boxes can't be skipped without decoding
// them, so reaching a box ahead of the cursor always replays from there.
func (d *Decoder) goToBox(index int) error {
	if d.state.Has(SeenAllBoxes) && index >= len(d.boxes) {
		return jxlerr.New(jxlerr.IndexOutOfRange, "box %d doesn't exist - container only has %d boxes", index, len(d.boxes))
	}
	if d.status == codec.Box && index == d.nextBoxIndex-1 {
		return nil
	}
	if index < d.nextBoxIndex || !d.eventsSubbed.Has(codec.Box) {
		if err := d.rewind(d.eventsSubbed.Add(codec.Box)); err != nil {
			return err
		}
	}
	ev, err := d.processUntil(0, stopAt{}, stopAt{kind: stopSpecific, index: index}, stopAt{})
	if err != nil {
		return err
	}
	if ev != codec.Box || d.nextBoxIndex-1 != index {
		if d.state.Has(SeenAllBoxes) && index >= len(d.boxes) {
			return jxlerr.New(jxlerr.IndexOutOfRange, "box %d doesn't exist - container only has %d boxes", index, len(d.boxes))
		}
		return jxlerr.New(jxlerr.CorruptedStream, "failed to find box %d", index)
	}
	return nil
}

// BoxInfo returns box index's type, declared size and compression flag.
func (d *Decoder) BoxInfo(index int) (boxes.Record, error) {
	if index >= len(d.boxes) {
		if err := d.checkOpen(); err != nil {
			return boxes.Record{}, err
		}
		if err := d.goToBox(index); err != nil {
			return boxes.Record{}, err
		}
	}
	if index < 0 || index >= len(d.boxes) {
		return boxes.Record{}, jxlerr.New(jxlerr.IndexOutOfRange, "box %d doesn't exist", index)
	}
	return d.boxes[index], nil
}

// BoxContent reads box index's content into buf, optionally transparently
// decompressing a "brob" box. It reports the number of bytes written and
// whether buf was large enough to hold the whole box.
func (d *Decoder) BoxContent(index int, buf []byte, decompress bool) (n int, fullyRead bool, err error) {
	if err := d.goToBox(index); err != nil {
		return 0, false, err
	}
	if err := d.session.SetDecompressBoxes(decompress); err != nil {
		return 0, false, jxlerr.Wrap(jxlerr.Io, err, "failed to set box decompression")
	}
	if err := d.session.SetBoxBuffer(buf); err != nil {
		return 0, false, jxlerr.Wrap(jxlerr.Io, err, "failed to set box buffer")
	}
	ev, err := d.processUntil(codec.NewEventSet(codec.Success, codec.Box, codec.BoxNeedMoreOutput), stopAt{}, stopAt{}, stopAt{})
	if err != nil {
		return 0, false, err
	}
	unwritten := d.session.ReleaseBoxBuffer()
	written := len(buf) - unwritten
	fullyRead = ev != codec.BoxNeedMoreOutput
	return written, fullyRead, nil
}

// BoxContentGrowing reads box index's whole content, growing dst
// exponentially (bounded by growCapSize) as needed, mirroring the
// double-buffer-and-retry growth strategy getBoxContent uses for its
// std::vector overload.
func (d *Decoder) BoxContentGrowing(index int, decompress bool) ([]byte, error) {
	size := growStartSize
	for {
		buf := make([]byte, size)
		n, fullyRead, err := d.BoxContent(index, buf, decompress)
		if err != nil {
			return nil, err
		}
		if fullyRead {
			return buf[:n], nil
		}
		if size >= growCapSize {
			return nil, jxlerr.New(jxlerr.BufferTooLarge, "box %d content exceeds %d bytes", index, growCapSize)
		}
		size *= 2
		if size > growCapSize {
			size = growCapSize
		}
	}
}
