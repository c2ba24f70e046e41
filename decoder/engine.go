package decoder

import (
	"github.com/alistair7/jxltk/boxes"
	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/frame"
	"github.com/alistair7/jxltk/jxlerr"
	"github.com/alistair7/jxltk/options"
)

type stopKind int

const (
	stopNone stopKind = iota
	stopSpecific
	stopAllIndex
)

type stopAt struct {
	kind  stopKind
	index int
}

// rewind implements §4.3's rewind protocol: tell the session to rewind,
// re-subscribe to resubscribeTo, reset every next*Index counter and
// status, and either replay the buffered start of the file or seek the
// source back to its saved anchor.
//
// Preserved across rewinds: cached frames/boxes, ICC/encoded profiles,
// extra-channel info, and all SeenAll*/Got* bits.
func (d *Decoder) rewind(resubscribeTo codec.EventSet) error {
	d.session.Rewind()
	if err := d.session.Subscribe(resubscribeTo); err != nil {
		return jxlerr.Wrap(jxlerr.Io, err, "failed to resubscribe events after rewind")
	}
	d.eventsSubbed = resubscribeTo
	d.nextFrameIndex = 0
	d.nextBoxIndex = 0
	d.nextJpegIndex = 0
	d.status = codec.Error

	if err := d.buf.Rewind(); err != nil {
		return err
	}
	if err := d.session.SetInput(d.buf.Window()); err != nil {
		return jxlerr.Wrap(jxlerr.Io, err, "failed to set input after rewind")
	}
	if d.state.Has(WholeFileBuffered) {
		d.session.CloseInput()
	}
	return nil
}

// processUntil runs the codec event loop until one of the stop conditions
// is satisfied, implementing §4.3's central algorithm. It returns the
// latest event reported by the session.
func (d *Decoder) processUntil(untilEvents codec.EventSet, stopFrame, stopBox, stopJpeg stopAt) (codec.Event, error) {
	for {
		ev, err := d.session.Process()
		if err != nil {
			// Best-effort internal rewind, leaving most state intact,
			// then surface CorruptedStream.
			_ = d.rewind(d.eventsSubbed)
			return 0, jxlerr.Wrap(jxlerr.CorruptedStream, err, "codec session reported an error")
		}
		d.status = ev

		switch ev {
		case codec.Error:
			_ = d.rewind(d.eventsSubbed)
			return 0, jxlerr.New(jxlerr.CorruptedStream, "codec session reported JXL_DEC_ERROR")

		case codec.NeedMoreInput:
			if err := d.handleNeedMoreInput(); err != nil {
				return 0, err
			}
			continue

		case codec.BasicInfo:
			info, err := d.session.GetBasicInfo()
			if err != nil {
				return 0, jxlerr.Wrap(jxlerr.Io, err, "failed to read basic info")
			}
			d.basicInfo = info
			d.eventsSubbed = d.eventsSubbed.Remove(codec.BasicInfo)
			d.state.Set(GotBasicInfo)

		case codec.Frame:
			if err := d.handleFrame(); err != nil {
				return 0, err
			}

		case codec.Box:
			if err := d.handleBox(); err != nil {
				return 0, err
			}

		case codec.Color:
			if err := d.handleColor(); err != nil {
				return 0, err
			}

		case codec.NeedImageOutBuffer:
			if err := d.session.SkipCurrentFrame(); err != nil {
				return 0, jxlerr.Wrap(jxlerr.Io, err, "failed to skip unwanted frame")
			}
			continue

		case codec.JpegReconstruction:
			d.jpegCount++
			d.nextJpegIndex++

		case codec.Success:
			if d.eventsSubbed.Has(codec.Frame) {
				d.state.Set(SeenAllFrames)
			}
			if d.eventsSubbed.Has(codec.Box) {
				d.state.Set(SeenAllBoxes)
			}
			if d.eventsSubbed.Has(codec.JpegReconstruction) {
				d.state.Set(SeenAllJpeg)
			}
			return ev, nil
		}

		if untilEvents.Has(ev) {
			return ev, nil
		}
		if stopFrame.kind == stopSpecific && ev == codec.Frame && d.nextFrameIndex-1 == stopFrame.index {
			return ev, nil
		}
		if stopFrame.kind == stopAllIndex && d.state.Has(SeenAllFrames) {
			return ev, nil
		}
		if stopBox.kind == stopSpecific && ev == codec.Box && d.nextBoxIndex-1 == stopBox.index {
			return ev, nil
		}
		if stopBox.kind == stopAllIndex && d.state.Has(SeenAllBoxes) {
			return ev, nil
		}
		if stopJpeg.kind == stopSpecific && ev == codec.JpegReconstruction && d.nextJpegIndex-1 == stopJpeg.index {
			return ev, nil
		}
	}
}

func (d *Decoder) handleNeedMoreInput() error {
	unconsumed := d.session.ReleaseInput()
	d.buf.SetDecOffset(len(d.buf.Window()) - unconsumed)
	w, err := d.buf.Replenish()
	if err != nil {
		return err
	}
	if err := d.session.SetInput(w); err != nil {
		return jxlerr.Wrap(jxlerr.Io, err, "failed to hand replenished input to the codec")
	}
	if d.buf.WholeFileBuffered() {
		d.session.CloseInput()
		d.state.Set(WholeFileBuffered)
	}
	return nil
}

func (d *Decoder) handleFrame() error {
	if d.nextFrameIndex < len(d.frames) {
		d.nextFrameIndex++
		return nil
	}
	header, err := d.session.GetFrameHeader()
	if err != nil {
		return jxlerr.Wrap(jxlerr.Io, err, "failed to read frame header")
	}
	rec := frame.Record{Header: header}

	if d.flags.Has(options.NoCoalesce) {
		// BasicInfo always precedes Frame, so NumExtraChannels is
		// populated here regardless of whether ensureExtraChannelInfo
		// has lazily filled d.extra yet.
		rec.ExtraBlending = make([]frame.BlendingInfo, d.basicInfo.NumExtraChannels)
		for i := range rec.ExtraBlending {
			bi, err := d.session.GetExtraChannelBlendInfo(uint32(i))
			if err != nil {
				return jxlerr.Wrap(jxlerr.Io, err, "failed to read extra-channel blend info")
			}
			rec.ExtraBlending[i] = bi
		}
	}

	if header.NameLength > 0 {
		name, hasName, err := d.session.GetFrameName()
		if err != nil {
			return jxlerr.Wrap(jxlerr.Io, err, "failed to read frame name")
		}
		rec.Name = name
		rec.HasName = hasName
	}

	d.frames = append(d.frames, rec)
	d.nextFrameIndex++

	if d.state.Has(IsCoalescing) && header.IsLast {
		d.state.Set(SeenAllFrames)
	}
	return nil
}

func (d *Decoder) handleBox() error {
	if d.nextBoxIndex < len(d.boxes) {
		d.nextBoxIndex++
		return nil
	}
	rawType, err := d.session.GetBoxType(true)
	if err != nil {
		return jxlerr.Wrap(jxlerr.Io, err, "failed to read box type")
	}
	rec := boxes.Record{Type: rawType}
	if string(rawType[:]) == "brob" {
		rec.Compressed = true
		innerType, err := d.session.GetBoxType(false)
		if err != nil {
			return jxlerr.Wrap(jxlerr.Io, err, "failed to read inner box type")
		}
		rec.Type = innerType
	}
	size, unbounded, err := d.session.GetBoxSize(false)
	if err != nil {
		return jxlerr.Wrap(jxlerr.Io, err, "failed to read box size")
	}
	rec.Size = size
	rec.Unbounded = unbounded
	d.boxes = append(d.boxes, rec)
	d.nextBoxIndex++
	return nil
}

func (d *Decoder) handleColor() error {
	d.eventsSubbed = d.eventsSubbed.Remove(codec.Color)
	d.state.Set(GotColor)
	for _, target := range [...]codec.ColorTarget{codec.Original, codec.Data} {
		enc, ok, err := d.session.GetEncodedColorProfile(target)
		p := &d.origProfile
		gotFlag := GotOrigColorEnc
		if target == codec.Data {
			p = &d.dataProfile
			gotFlag = GotDataColorEnc
		}
		if err == nil && ok {
			p.Enc = &enc
			p.HasEnc = true
			d.state.Set(gotFlag)
		}
		iccBytes, err := d.session.GetICCProfile(target)
		if err == nil {
			p.ICC = iccBytes
		}
	}
	return nil
}
