// Package fake provides a scriptable, in-memory codec.Session test double,
// grounded on testcommon/fake.go and testcommon/bitreaderRecorder.go's
// hand-rolled-fake style rather than a mocking framework.
package fake

import (
	"github.com/alistair7/jxltk/bundle"
	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/color"
	"github.com/alistair7/jxltk/frame"
)

// Step is one scripted event a Session will report from Process, along
// with whatever data that event makes available.
type Step struct {
	Event codec.Event
	Err   error

	BasicInfo bundle.BasicInfo

	FrameHeader frame.Header
	FrameName   string
	HasName     bool

	BoxType   [4]byte
	BoxRaw    bool
	BoxSize   uint64
	Unbounded bool

	OrigProfile color.Profile
	DataProfile color.Profile

	ExtraChannels []bundle.ExtraChannelInfo

	// ImageBytes, BoxBytes and JpegBytes are copied into the buffer the
	// decoder most recently registered via SetImageOutBuffer /
	// SetBoxBuffer / SetJpegBuffer when this step's Event is FullImage,
	// Box/BoxNeedMoreOutput, or JpegReconstruction/JpegNeedMoreOutput
	// respectively.
	ImageBytes []byte
	BoxBytes   []byte
	JpegBytes  []byte
}

// Session is a fully scripted codec.Session: Steps is consumed in order by
// Process, and Rewind resets the cursor to 0 (as a real session would
// start surfacing the same events again after a rewind, driven by the
// fake's script rather than by re-reading any bytes).
type Session struct {
	Steps []Step

	cursor int
	subbed codec.EventSet

	imageBuf []byte
	boxBuf   []byte
	jpegBuf  []byte

	boxWritten  int
	jpegWritten int

	codestreamLevel    int
	haveCodestreamLevel bool

	FrameCount int
	BoxCount   int
}

func New(steps []Step) *Session {
	return &Session{Steps: steps}
}

func (s *Session) Subscribe(events codec.EventSet) error { s.subbed = events; return nil }
func (s *Session) SetInput(b []byte) error                { return nil }
func (s *Session) CloseInput()                            {}
func (s *Session) ReleaseInput() int                       { return 0 }

func (s *Session) Process() (codec.Event, error) {
	if s.cursor >= len(s.Steps) {
		return codec.Success, nil
	}
	step := s.Steps[s.cursor]
	s.cursor++
	if step.Err != nil {
		return codec.Error, step.Err
	}
	switch step.Event {
	case codec.FullImage:
		if s.imageBuf != nil && step.ImageBytes != nil {
			copy(s.imageBuf, step.ImageBytes)
		}
	case codec.Box, codec.BoxNeedMoreOutput:
		if s.boxBuf != nil && step.BoxBytes != nil {
			s.boxWritten += copy(s.boxBuf[s.boxWritten:], step.BoxBytes)
		}
	case codec.JpegReconstruction, codec.JpegNeedMoreOutput:
		if s.jpegBuf != nil && step.JpegBytes != nil {
			s.jpegWritten += copy(s.jpegBuf[s.jpegWritten:], step.JpegBytes)
		}
	}
	return step.Event, nil
}

func (s *Session) current() Step {
	if s.cursor == 0 || s.cursor > len(s.Steps) {
		return Step{}
	}
	return s.Steps[s.cursor-1]
}

func (s *Session) GetBasicInfo() (bundle.BasicInfo, error) { return s.current().BasicInfo, nil }

func (s *Session) GetFrameHeader() (frame.Header, error) { return s.current().FrameHeader, nil }
func (s *Session) GetFrameName() (string, bool, error) {
	c := s.current()
	return c.FrameName, c.HasName, nil
}

func (s *Session) GetBoxType(raw bool) ([4]byte, error) { return s.current().BoxType, nil }
func (s *Session) GetBoxSize(raw bool) (uint64, bool, error) {
	c := s.current()
	return c.BoxSize, c.Unbounded, nil
}

func (s *Session) GetICCProfileSize(target codec.ColorTarget) (int, error) {
	c := s.current()
	if target == codec.Data {
		return len(c.DataProfile.ICC), nil
	}
	return len(c.OrigProfile.ICC), nil
}

func (s *Session) GetICCProfile(target codec.ColorTarget) ([]byte, error) {
	c := s.current()
	if target == codec.Data {
		return c.DataProfile.ICC, nil
	}
	return c.OrigProfile.ICC, nil
}

func (s *Session) GetEncodedColorProfile(target codec.ColorTarget) (color.EncodedProfile, bool, error) {
	c := s.current()
	p := c.OrigProfile
	if target == codec.Data {
		p = c.DataProfile
	}
	if !p.HasEnc {
		return color.EncodedProfile{}, false, nil
	}
	return *p.Enc, true, nil
}

func (s *Session) SetOutputColorProfile(enc *color.EncodedProfile, icc []byte) error { return nil }

func (s *Session) GetExtraChannelInfo(i uint32) (bundle.ExtraChannelInfo, error) {
	c := s.current()
	if int(i) >= len(c.ExtraChannels) {
		return bundle.ExtraChannelInfo{}, nil
	}
	return c.ExtraChannels[i], nil
}

func (s *Session) GetExtraChannelName(i uint32) (string, error) {
	ec, _ := s.GetExtraChannelInfo(i)
	return ec.Name, nil
}

func (s *Session) GetExtraChannelBlendInfo(i uint32) (frame.BlendingInfo, error) {
	return s.current().FrameHeader.Blending, nil
}

func (s *Session) GetCodestreamLevel() (int, bool) { return s.codestreamLevel, s.haveCodestreamLevel }

// SetCodestreamLevel lets a test fixture pre-seed the level the real
// session would surface via the jxll box, short-circuiting the box scan.
func (s *Session) SetCodestreamLevel(level int) {
	s.codestreamLevel = level
	s.haveCodestreamLevel = true
}

func (s *Session) SetImageOutBuffer(format codec.PixelFormat, buf []byte) error {
	s.imageBuf = buf
	return nil
}
func (s *Session) SetExtraChannelBuffer(format codec.PixelFormat, i uint32, buf []byte) error {
	return nil
}
func (s *Session) SetBoxBuffer(buf []byte) error { s.boxBuf = buf; s.boxWritten = 0; return nil }
func (s *Session) ReleaseBoxBuffer() int {
	n := len(s.boxBuf) - s.boxWritten
	s.boxBuf = nil
	s.boxWritten = 0
	return n
}
func (s *Session) SetJpegBuffer(buf []byte) error { s.jpegBuf = buf; s.jpegWritten = 0; return nil }
func (s *Session) ReleaseJpegBuffer() int {
	n := len(s.jpegBuf) - s.jpegWritten
	s.jpegBuf = nil
	s.jpegWritten = 0
	return n
}
func (s *Session) SetDecompressBoxes(decompress bool) error { return nil }

func (s *Session) Rewind()                           { s.cursor = 0 }
func (s *Session) SkipFrames(n int) error             { return nil }
func (s *Session) SkipCurrentFrame() error            { return nil }
func (s *Session) SetParallelRunner(r codec.ParallelRunner) error { return nil }
func (s *Session) SetCoalescing(enabled bool) error          { return nil }
func (s *Session) SetKeepOrientation(enabled bool) error     { return nil }
func (s *Session) SetUnpremultiplyAlpha(enabled bool) error  { return nil }
func (s *Session) Reset()                                    { s.cursor = 0; s.subbed = 0 }
