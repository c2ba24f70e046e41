package decoder

import (
	"github.com/alistair7/jxltk/frame"
	"github.com/alistair7/jxltk/jxlerr"
)

// FrameIterator walks a Decoder's frames forward-only, lazily populating
// them as it advances, mirroring FrameIterator's non-owning back-pointer
// to its parent Decoder.
type FrameIterator struct {
	index  int
	parent *Decoder
}

// Frames returns an iterator positioned before the first frame.
func (d *Decoder) Frames() FrameIterator {
	return FrameIterator{index: -1, parent: d}
}

// Index returns the iterator's current frame index, or -1 before the
// first Next/Advance call.
func (it FrameIterator) Index() int { return it.index }

// Next advances to the next frame, returning false once the file is
// exhausted.
func (it *FrameIterator) Next() bool {
	ok, _ := it.Advance(1)
	return ok
}

// Advance moves forward by n frames (n must be non-negative), returning
// false once the file is exhausted. A negative n reports a Usage error,
// mirroring operator+='s UsageError on a negative count.
func (it *FrameIterator) Advance(n int) (bool, error) {
	if n < 0 {
		return false, jxlerr.New(jxlerr.Usage, "FrameIterator cannot move backward")
	}
	next := it.index + n
	if it.index == -1 {
		next = n - 1
	}
	if it.parent.state.Has(SeenAllFrames) && next >= len(it.parent.frames) {
		it.index = len(it.parent.frames)
		return false, nil
	}
	if _, err := it.parent.FrameInfo(next); err != nil {
		it.index = len(it.parent.frames)
		return false, nil
	}
	it.index = next
	return true, nil
}

// Frame returns the current frame's record. Valid only after Next or
// Advance has returned true.
func (it FrameIterator) Frame() (frame.Record, bool) {
	if it.index < 0 || it.index >= len(it.parent.frames) {
		return frame.Record{}, false
	}
	return it.parent.frames[it.index], true
}
