package decoder

import (
	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/frame"
	"github.com/alistair7/jxltk/jxlerr"
)

// FrameCount returns the number of frames in the file, scanning frame
// headers (but not pixels) as needed. Two successive calls return the
// same value.
func (d *Decoder) FrameCount() (int, error) {
	if d.state.Has(SeenAllFrames) {
		return len(d.frames), nil
	}
	if d.state.Has(GotBasicInfo) && d.state.Has(IsCoalescing) && !d.basicInfo.HaveAnimation {
		return 1, nil
	}
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	if !d.eventsSubbed.Has(codec.Frame) {
		if err := d.rewind(d.eventsSubbed.Add(codec.Frame)); err != nil {
			return 0, err
		}
	}
	if d.nextFrameIndex < len(d.frames) {
		if err := d.session.SkipFrames(len(d.frames) - d.nextFrameIndex); err != nil {
			return 0, jxlerr.Wrap(jxlerr.Io, err, "failed to skip known frames")
		}
		d.nextFrameIndex = len(d.frames)
	}
	if _, err := d.processUntil(0, stopAt{kind: stopAllIndex}, stopAt{}, stopAt{}); err != nil {
		return 0, err
	}
	return len(d.frames), nil
}

// goToFrame drives the decoder to the JXL_DEC_FRAME event for index,
// rewinding and/or skipping frames as needed.
func (d *Decoder) goToFrame(index int) error {
	if d.state.Has(SeenAllFrames) && index >= len(d.frames) {
		return jxlerr.New(jxlerr.IndexOutOfRange, "frame %d doesn't exist - image only has %d frames", index, len(d.frames))
	}
	if d.status == codec.Frame && index == d.nextFrameIndex-1 {
		return nil
	}

	decodedTooFar := d.nextFrameIndex > index
	mustSubscribe := !d.eventsSubbed.Has(codec.Frame)
	if mustSubscribe || decodedTooFar {
		if err := d.rewind(d.eventsSubbed.Add(codec.Frame)); err != nil {
			return err
		}
	}

	skipTo := index
	if skipTo > len(d.frames) {
		skipTo = len(d.frames)
	}
	if d.nextFrameIndex != skipTo {
		if err := d.session.SkipFrames(skipTo - d.nextFrameIndex); err != nil {
			return jxlerr.Wrap(jxlerr.Io, err, "failed to skip frames")
		}
		d.nextFrameIndex = skipTo
	}

	ev, err := d.processUntil(0, stopAt{kind: stopSpecific, index: index}, stopAt{}, stopAt{})
	if err != nil {
		return err
	}
	if ev != codec.Frame || d.nextFrameIndex-1 != index {
		if d.state.Has(SeenAllFrames) && index >= len(d.frames) {
			return jxlerr.New(jxlerr.IndexOutOfRange, "frame %d doesn't exist - image only has %d frames", index, len(d.frames))
		}
		return jxlerr.New(jxlerr.CorruptedStream, "failed to find frame %d", index)
	}
	return nil
}

// FrameInfo returns the header, name and extra-channel blend info for
// frame index.
func (d *Decoder) FrameInfo(index int) (frame.Record, error) {
	if index >= len(d.frames) {
		if err := d.checkOpen(); err != nil {
			return frame.Record{}, err
		}
		if err := d.goToFrame(index); err != nil {
			return frame.Record{}, err
		}
	}
	if index < 0 || index >= len(d.frames) {
		return frame.Record{}, jxlerr.New(jxlerr.IndexOutOfRange, "frame %d doesn't exist", index)
	}
	return d.frames[index], nil
}

// FramePixels decodes frame index's pixels into buf (in the given
// format), and/or into each requested extra channel's buffer.
func (d *Decoder) FramePixels(index int, format codec.PixelFormat, buf []byte, extraChannels []codec.ExtraChannelRequest) error {
	if buf == nil && len(extraChannels) == 0 {
		return nil
	}
	if d.state.Has(SeenAllFrames) && index >= len(d.frames) {
		return jxlerr.New(jxlerr.IndexOutOfRange, "frame %d doesn't exist - image only has %d frames", index, len(d.frames))
	}
	if !d.eventsSubbed.Has(codec.FullImage) {
		if err := d.rewind(d.eventsSubbed.Add(codec.FullImage)); err != nil {
			return err
		}
	}
	if err := d.goToFrame(index); err != nil {
		return err
	}
	layer := d.frames[index].Header.Layer

	if len(extraChannels) > 0 {
		if err := d.ensureExtraChannelInfo(); err != nil {
			return err
		}
		for _, req := range extraChannels {
			if req.ChannelIndex >= uint32(len(d.extra)) {
				return jxlerr.New(jxlerr.IndexOutOfRange, "extra channel %d doesn't exist - image only has %d", req.ChannelIndex, len(d.extra))
			}
			required, err := FrameBufferSize(layer.Xsize(), layer.Ysize(), singleChannel(req.Format))
			if err != nil {
				return err
			}
			if len(req.Buf) < required {
				return jxlerr.New(jxlerr.BufferTooSmall, "extra channel %d buffer of %d bytes too small, need %d", req.ChannelIndex, len(req.Buf), required)
			}
		}
		for _, req := range extraChannels {
			if err := d.session.SetExtraChannelBuffer(singleChannel(req.Format), req.ChannelIndex, req.Buf); err != nil {
				return jxlerr.Wrap(jxlerr.Io, err, "failed to set extra-channel output buffer")
			}
		}
	}

	d.state.Set(DecodedSomePixels)

	var dummy []byte
	if buf != nil {
		required, err := FrameBufferSize(layer.Xsize(), layer.Ysize(), format)
		if err != nil {
			return err
		}
		if len(buf) < required {
			return jxlerr.New(jxlerr.BufferTooSmall, "frame buffer of %d bytes too small, need %d", len(buf), required)
		}
		if err := d.session.SetImageOutBuffer(format, buf); err != nil {
			return jxlerr.Wrap(jxlerr.Io, err, "failed to set image output buffer")
		}
	} else {
		// The backing library emits nothing until a main image output
		// buffer is set, even when only extras were requested.
		dummyFormat := codec.PixelFormat{NumChannels: d.basicInfo.NumColorChannels, DataType: codec.U8}
		size, err := FrameBufferSize(layer.Xsize(), layer.Ysize(), dummyFormat)
		if err != nil {
			return err
		}
		dummy = make([]byte, size)
		if err := d.session.SetImageOutBuffer(dummyFormat, dummy); err != nil {
			return jxlerr.Wrap(jxlerr.Io, err, "failed to set dummy output buffer")
		}
	}

	ev, err := d.processUntil(codec.NewEventSet(codec.FullImage), stopAt{}, stopAt{}, stopAt{})
	if err != nil {
		return err
	}
	if ev != codec.FullImage || d.nextFrameIndex-1 != index {
		return jxlerr.New(jxlerr.CorruptedStream, "failed to read pixels for frame %d", index)
	}
	return nil
}

func singleChannel(f codec.PixelFormat) codec.PixelFormat {
	return codec.PixelFormat{NumChannels: 1, DataType: f.DataType, Endianness: f.Endianness, Align: f.Align}
}
