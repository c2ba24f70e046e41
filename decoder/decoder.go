// Package decoder implements the Decoder facade: a high-level lazy
// streaming JXL decoder that hides a push/pull event loop (codec.Session)
// behind a random-access object model, generalizing the thin
// public-wrapper-over-internal-engine shape of core/jxl_decoder.go /
// core/jxl_codestream_decoder.go.
package decoder

import (
	"io"

	log "github.com/sirupsen/logrus"

	"github.com/alistair7/jxltk/boxes"
	"github.com/alistair7/jxltk/buffer"
	"github.com/alistair7/jxltk/bundle"
	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/color"
	"github.com/alistair7/jxltk/frame"
	"github.com/alistair7/jxltk/jxlerr"
	"github.com/alistair7/jxltk/options"
)

var (
	jxlCodestreamMagic = [2]byte{0xFF, 0x0A}
	jxlContainerMagic  = [12]byte{0x00, 0x00, 0x00, 0x0C, 'J', 'X', 'L', ' ', 0x0D, 0x0A, 0x87, 0x0A}
	pngMagic           = [8]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
)

// Decoder is a lazy, random-access JXL reader over a streaming
// codec.Session. It is not safe for concurrent use by multiple goroutines;
// an instance must be used by one goroutine at a time.
type Decoder struct {
	session codec.Session

	buf *buffer.InputBuffer

	state       State
	eventsSubbed codec.EventSet
	status      codec.Event

	basicInfo bundle.BasicInfo

	origProfile color.Profile
	dataProfile color.Profile

	frames         []frame.Record
	nextFrameIndex int

	boxes        []boxes.Record
	nextBoxIndex int

	jpegCount     int
	nextJpegIndex int

	extra []bundle.ExtraChannelInfo

	flags options.Flag
	hints options.Hint
}

// New creates a Decoder driving the given codec.Session. The session is
// not opened until one of the Open* methods is called.
func New(session codec.Session) *Decoder {
	return &Decoder{session: session}
}

// OpenFile opens the seekable source f, using a stream source read in chunks
// up to opts.BufferBytes().
func (d *Decoder) OpenFile(f io.ReadSeeker, opts options.OpenOptions) error {
	d.closeInternal(true)
	buf, err := buffer.NewFromStream(f, opts.BufferBytes())
	if err != nil {
		return err
	}
	return d.open(buf, opts)
}

// OpenStream opens a possibly non-seekable source, borrowed (not owned)
// for the lifetime of this Decoder.
func (d *Decoder) OpenStream(r io.Reader, opts options.OpenOptions) error {
	d.closeInternal(true)
	buf, err := buffer.NewFromStream(r, opts.BufferBytes())
	if err != nil {
		return err
	}
	return d.open(buf, opts)
}

// OpenMemory opens a caller-owned byte range. The whole file is
// considered buffered immediately.
func (d *Decoder) OpenMemory(data []byte, opts options.OpenOptions) error {
	d.closeInternal(true)
	return d.open(buffer.NewFromMemory(data), opts)
}

func (d *Decoder) open(buf *buffer.InputBuffer, opts options.OpenOptions) error {
	d.session.Reset()
	d.buf = buf
	d.flags = opts.Flags
	d.hints = opts.Hints

	if !opts.Flags.Has(options.NoCoalesce) {
		d.state.Set(IsCoalescing)
	} else if err := d.session.SetCoalescing(false); err != nil {
		return jxlerr.Wrap(jxlerr.Io, err, "failed to disable coalescing")
	}
	if opts.Flags.Has(options.KeepOrientation) {
		if err := d.session.SetKeepOrientation(true); err != nil {
			return jxlerr.Wrap(jxlerr.Io, err, "failed to set keep-orientation")
		}
	}
	if opts.Flags.Has(options.UnpremultiplyAlpha) {
		if err := d.session.SetUnpremultiplyAlpha(true); err != nil {
			return jxlerr.Wrap(jxlerr.Io, err, "failed to set unpremultiply-alpha")
		}
	}

	if err := d.checkSignature(); err != nil {
		return err
	}

	if err := d.session.SetInput(d.buf.Window()); err != nil {
		return jxlerr.Wrap(jxlerr.Io, err, "failed to set initial input")
	}
	if d.buf.WholeFileBuffered() {
		d.session.CloseInput()
		d.state.Set(WholeFileBuffered)
	}
	d.state.Set(IsOpen)

	events := codec.NewEventSet(codec.BasicInfo, codec.Frame)
	if opts.Hints.Has(options.WantBoxes) {
		events = events.Add(codec.Box)
	}
	if !opts.Hints.Has(options.NoPixels) {
		events = events.Add(codec.FullImage)
	}
	if opts.Hints.Has(options.WantJpeg) {
		events = events.Add(codec.JpegReconstruction).Add(codec.FullImage)
	}
	if !opts.Hints.Has(options.NoColorProfile) {
		events = events.Add(codec.Color)
	}
	if err := d.session.Subscribe(events); err != nil {
		return jxlerr.Wrap(jxlerr.Io, err, "failed to subscribe to decoder events")
	}
	d.eventsSubbed = events
	return nil
}

// checkSignature validates the first bytes of the buffered window against
// the known JXL signatures, per §6.
func (d *Decoder) checkSignature() error {
	w := d.buf.Window()
	switch {
	case len(w) >= 2 && w[0] == jxlCodestreamMagic[0] && w[1] == jxlCodestreamMagic[1]:
		d.state.Set(SeenAllBoxes)
		return nil
	case len(w) >= len(jxlContainerMagic) && matches(w, jxlContainerMagic[:]):
		return nil
	case len(w) >= len(pngMagic) && matches(w, pngMagic[:]):
		return jxlerr.New(jxlerr.NotJxl, "this is a PNG - convert to JXL first")
	default:
		return jxlerr.New(jxlerr.NotJxl, "input is not a JXL file")
	}
}

func matches(w, magic []byte) bool {
	for i, m := range magic {
		if w[i] != m {
			return false
		}
	}
	return true
}

// Close idempotently releases this Decoder's resources.
func (d *Decoder) Close() {
	d.closeInternal(false)
}

func (d *Decoder) closeInternal(reopening bool) {
	d.state = 0
	d.eventsSubbed = 0
	d.status = codec.Error
	d.boxes = nil
	d.nextBoxIndex = 0
	d.frames = nil
	d.nextFrameIndex = 0
	d.jpegCount = 0
	d.nextJpegIndex = 0
	d.extra = nil
	if d.session != nil {
		d.session.Reset()
	}
	if !reopening {
		d.origProfile = color.Profile{}
		d.dataProfile = color.Profile{}
		d.buf = nil
	}
}

func (d *Decoder) checkOpen() error {
	if !d.state.Has(IsOpen) {
		return jxlerr.New(jxlerr.Usage, "no file open")
	}
	return nil
}

// IsFullyBuffered reports whether the entire source is resident in memory.
func (d *Decoder) IsFullyBuffered() bool { return d.state.Has(WholeFileBuffered) }

// ensureBasicInfo drives the session until BasicInfo has been observed.
func (d *Decoder) ensureBasicInfo() error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if d.state.Has(GotBasicInfo) {
		return nil
	}
	ev, err := d.processUntil(codec.NewEventSet(codec.BasicInfo), stopAt{}, stopAt{}, stopAt{})
	if err != nil {
		return err
	}
	if ev != codec.BasicInfo {
		return jxlerr.New(jxlerr.CorruptedStream, "unexpected status %v; expected BasicInfo", ev)
	}
	return nil
}

// BasicInfo returns the file's static metadata, decoding just enough to
// observe it.
func (d *Decoder) BasicInfo() (bundle.BasicInfo, error) {
	if err := d.ensureBasicInfo(); err != nil {
		return bundle.BasicInfo{}, err
	}
	return d.basicInfo, nil
}

func (d *Decoder) Xsize() (uint32, error) {
	info, err := d.BasicInfo()
	return info.Xsize, err
}

func (d *Decoder) Ysize() (uint32, error) {
	info, err := d.BasicInfo()
	return info.Ysize, err
}

// ExtraChannelInfo returns every extra channel's static metadata, in
// declared order.
func (d *Decoder) ExtraChannelInfo() ([]bundle.ExtraChannelInfo, error) {
	if err := d.ensureExtraChannelInfo(); err != nil {
		return nil, err
	}
	return d.extra, nil
}

func (d *Decoder) ensureExtraChannelInfo() error {
	if err := d.ensureBasicInfo(); err != nil {
		return err
	}
	if uint32(len(d.extra)) >= d.basicInfo.NumExtraChannels {
		return nil
	}
	d.extra = make([]bundle.ExtraChannelInfo, d.basicInfo.NumExtraChannels)
	for i := uint32(0); i < d.basicInfo.NumExtraChannels; i++ {
		info, err := d.session.GetExtraChannelInfo(i)
		if err != nil {
			return jxlerr.Wrap(jxlerr.Io, err, "failed to get info for extra channel %d", i)
		}
		if info.HasName {
			name, err := d.session.GetExtraChannelName(i)
			if err != nil {
				return jxlerr.Wrap(jxlerr.Io, err, "failed to get name for extra channel %d", i)
			}
			info.Name = name
		}
		d.extra[i] = info
	}
	return nil
}

// ensureColor drives the session until both targets' color profiles have
// been observed, if goThereNow requires reaching that event precisely
// rather than accepting that we've already gone past it.
func (d *Decoder) ensureColor(goThereNow bool) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if d.status == codec.Color {
		return nil
	}
	pastColor := d.state.Has(GotColor)
	if !goThereNow && pastColor {
		return nil
	}
	if (goThereNow && pastColor) || !d.eventsSubbed.Has(codec.Color) {
		if err := d.rewind(d.eventsSubbed.Add(codec.Color)); err != nil {
			return err
		}
	}
	ev, err := d.processUntil(codec.NewEventSet(codec.Color), stopAt{}, stopAt{}, stopAt{})
	if err != nil || ev != codec.Color {
		d.state.Clear(GotOrigColorEnc)
		d.state.Clear(GotDataColorEnc)
		if err != nil {
			return err
		}
		return jxlerr.New(jxlerr.CorruptedStream, "no color encoding returned from decoder")
	}
	d.state.Set(GotColor)
	return nil
}

// ICCProfile returns the raw ICC bytes for target, possibly empty.
func (d *Decoder) ICCProfile(target codec.ColorTarget) ([]byte, error) {
	if err := d.ensureColor(false); err != nil {
		return nil, err
	}
	if target == codec.Data {
		return d.dataProfile.ICC, nil
	}
	return d.origProfile.ICC, nil
}

// EncodedColorProfile returns the encoded color profile for target, if
// the file has one.
func (d *Decoder) EncodedColorProfile(target codec.ColorTarget) (color.EncodedProfile, bool, error) {
	if err := d.ensureColor(false); err != nil {
		return color.EncodedProfile{}, false, err
	}
	p := d.origProfile
	if target == codec.Data {
		p = d.dataProfile
	}
	if !p.HasEnc {
		return color.EncodedProfile{}, false, nil
	}
	return *p.Enc, true, nil
}

// SetPreferredOutputProfile overrides the profile pixels are emitted in.
// It refuses with Usage if pixels have already been decoded, or if an ICC
// profile is requested without a CMS configured.
func (d *Decoder) SetPreferredOutputProfile(enc *color.EncodedProfile, icc []byte) (bool, error) {
	if d.state.Has(DecodedSomePixels) {
		return false, jxlerr.New(jxlerr.Usage, "can't set a color profile after decoding has started")
	}
	if icc != nil && !d.state.Has(HaveCms) {
		return false, jxlerr.New(jxlerr.Usage, "can't request an ICC profile without a CMS")
	}
	if enc == nil && icc == nil {
		return false, jxlerr.New(jxlerr.Usage, "no color profile provided")
	}

	result := true
	d.state.Clear(GotDataColorEnc)
	d.dataProfile.ICC = nil
	if err := d.ensureColor(true); err != nil {
		return false, err
	}
	if err := d.session.SetOutputColorProfile(enc, icc); err != nil {
		result = false
	}

	// Per the design note: requesting an encoded profile on a non-XYB
	// file "fails silently" in the backing library. We surface that as a
	// false return, not an error.
	if dp, ok, err := d.session.GetEncodedColorProfile(codec.Data); err == nil && ok {
		d.dataProfile.Enc = &dp
		d.dataProfile.HasEnc = true
		d.state.Set(GotDataColorEnc)
	} else if enc != nil {
		result = false
	}

	iccSize, err := d.session.GetICCProfileSize(codec.Data)
	if err != nil {
		return false, jxlerr.Wrap(jxlerr.Io, err, "failed to check output ICC size")
	}
	if iccSize > 0 {
		iccBytes, err := d.session.GetICCProfile(codec.Data)
		if err != nil {
			return false, jxlerr.New(jxlerr.CorruptedStream, "unexpected failure while checking output ICC")
		}
		d.dataProfile.ICC = iccBytes
	}
	if icc != nil && len(d.dataProfile.ICC) == 0 {
		result = false
	}
	if !d.state.Has(GotDataColorEnc) && len(d.dataProfile.ICC) == 0 {
		return false, jxlerr.New(jxlerr.CorruptedStream, "unexpected failure while checking output encoded color profile")
	}
	return result, nil
}

// CodestreamLevel returns the declared codestream level (5 or 10), or -1
// if the file is a bare codestream or no jxll box is found.
func (d *Decoder) CodestreamLevel() (int, error) {
	if err := d.ensureBasicInfo(); err != nil {
		return 0, err
	}
	if !d.basicInfo.HaveContainer {
		return -1, nil
	}
	if level, ok := d.session.GetCodestreamLevel(); ok {
		return level, nil
	}
	if !d.eventsSubbed.Has(codec.Box) {
		if err := d.rewind(d.eventsSubbed.Add(codec.Box)); err != nil {
			return 0, err
		}
	}
	// jxll can't occur before box index 2: the first two boxes are
	// always the signature and ftyp-equivalent boxes.
	for boxIndex := 2; ; boxIndex++ {
		if boxIndex >= len(d.boxes) {
			if d.state.Has(SeenAllBoxes) {
				return -1, nil
			}
			ev, err := d.processUntil(codec.NewEventSet(codec.Success), stopAt{}, stopAt{kind: stopSpecific, index: boxIndex}, stopAt{})
			if err != nil {
				return 0, err
			}
			if ev != codec.Box {
				return -1, nil
			}
		}
		rec := d.boxes[boxIndex]
		if rec.TypeString() == "jxll" {
			buf := make([]byte, 1)
			n, _, err := d.BoxContent(boxIndex, buf, false)
			if err != nil || n != 1 {
				return -1, nil
			}
			return int(buf[0]), nil
		}
	}
}

func (d *Decoder) logDebugf(format string, args ...any) {
	log.Debugf(format, args...)
}
