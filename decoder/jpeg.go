package decoder

import (
	"io"

	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/jxlerr"
)

// HasJPEGReconstruction reports whether the file carries the data needed
// to losslessly reconstruct its original JPEG bitstream.
func (d *Decoder) HasJPEGReconstruction() (bool, error) {
	if d.jpegCount > 0 {
		return true, nil
	}
	if err := d.checkOpen(); err != nil {
		return false, err
	}
	if !d.eventsSubbed.Has(codec.JpegReconstruction) {
		if err := d.rewind(d.eventsSubbed.Add(codec.JpegReconstruction)); err != nil {
			return false, err
		}
	}
	ev, err := d.processUntil(codec.NewEventSet(codec.JpegReconstruction, codec.Success), stopAt{}, stopAt{}, stopAt{})
	if err != nil {
		return false, err
	}
	return ev == codec.JpegReconstruction, nil
}

// goToJpeg ensures reconstruction data is available to read, rewinding and
// re-subscribing if a previous read already consumed it.
func (d *Decoder) goToJpeg() error {
	has, err := d.HasJPEGReconstruction()
	if err != nil {
		return err
	}
	if !has {
		return jxlerr.New(jxlerr.Usage, "file has no JPEG reconstruction data")
	}
	if d.status != codec.JpegReconstruction {
		if err := d.rewind(d.eventsSubbed.Add(codec.JpegReconstruction)); err != nil {
			return err
		}
		ev, err := d.processUntil(codec.NewEventSet(codec.JpegReconstruction), stopAt{}, stopAt{}, stopAt{})
		if err != nil {
			return err
		}
		if ev != codec.JpegReconstruction {
			return jxlerr.New(jxlerr.CorruptedStream, "lost JPEG reconstruction data after rewind")
		}
	}
	return nil
}

// ReconstructedJPEG reads the reconstructed JPEG bitstream into buf,
// reporting whether buf was large enough to hold it all.
func (d *Decoder) ReconstructedJPEG(buf []byte) (n int, truncated bool, err error) {
	if err := d.goToJpeg(); err != nil {
		return 0, false, err
	}
	if err := d.session.SetJpegBuffer(buf); err != nil {
		return 0, false, jxlerr.Wrap(jxlerr.Io, err, "failed to set JPEG buffer")
	}
	ev, err := d.processUntil(codec.NewEventSet(codec.Success, codec.JpegNeedMoreOutput), stopAt{}, stopAt{}, stopAt{})
	if err != nil {
		return 0, false, err
	}
	unwritten := d.session.ReleaseJpegBuffer()
	written := len(buf) - unwritten
	truncated = ev == codec.JpegNeedMoreOutput
	return written, truncated, nil
}

// WriteReconstructedJPEG streams the reconstructed JPEG bitstream to w,
// growing an internal buffer exponentially (bounded by growCapSize) the
// same way BoxContentGrowing does for box content.
func (d *Decoder) WriteReconstructedJPEG(w io.Writer) (int64, error) {
	size := growStartSize
	var total int64
	for {
		buf := make([]byte, size)
		n, truncated, err := d.ReconstructedJPEG(buf)
		if err != nil {
			return total, err
		}
		if !truncated {
			written, err := w.Write(buf[:n])
			total += int64(written)
			return total, err
		}
		if size >= growCapSize {
			return total, jxlerr.New(jxlerr.BufferTooLarge, "reconstructed JPEG exceeds %d bytes", growCapSize)
		}
		size *= 2
		if size > growCapSize {
			size = growCapSize
		}
	}
}
