// Package codec defines the CodecSession adapter interface: a thin, pure
// translation of the underlying event-driven JXL decoding library (modeled
// on the JxlDecoderSubscribeEvents / JxlDecoderProcessInput event loop seen
// in other_examples/kovidgoyal-kitty__jxl.go's cgo binding to libjxl).
//
// jxltk ships no concrete Session: implementing the JXL codec itself is out
// of scope. Callers supply their own Session (typically a cgo binding to
// libjxl, or an equivalent pure-Go decoder) and the decoder package drives
// it.
package codec

import (
	"github.com/alistair7/jxltk/bundle"
	"github.com/alistair7/jxltk/color"
	"github.com/alistair7/jxltk/frame"
)

// Event is the result of one Process call, mirroring the JXL_DEC_* status
// codes returned from JxlDecoderProcessInput.
type Event int

const (
	Success Event = iota
	NeedMoreInput
	NeedImageOutBuffer
	NeedJpegOutBuffer
	BoxNeedMoreOutput
	JpegNeedMoreOutput
	BasicInfo
	Frame
	Color
	Box
	JpegReconstruction
	FullImage
	Error
)

func (e Event) String() string {
	names := [...]string{
		"Success", "NeedMoreInput", "NeedImageOutBuffer", "NeedJpegOutBuffer",
		"BoxNeedMoreOutput", "JpegNeedMoreOutput", "BasicInfo", "Frame",
		"Color", "Box", "JpegReconstruction", "FullImage", "Error",
	}
	if int(e) >= 0 && int(e) < len(names) {
		return names[e]
	}
	return "Event(?)"
}

// EventSet is a bitset of Event values, used for subscription.
type EventSet uint32

func NewEventSet(events ...Event) EventSet {
	var s EventSet
	for _, e := range events {
		s = s.Add(e)
	}
	return s
}

func (s EventSet) Add(e Event) EventSet    { return s | (1 << EventSet(e)) }
func (s EventSet) Remove(e Event) EventSet { return s &^ (1 << EventSet(e)) }
func (s EventSet) Has(e Event) bool        { return s&(1<<EventSet(e)) != 0 }

// DataType is the sample representation of a PixelFormat.
type DataType int

const (
	U8 DataType = iota
	U16
	F16
	F32
)

// Endianness selects byte order for multi-byte samples.
type Endianness int

const (
	NativeEndian Endianness = iota
	BigEndian
	LittleEndian
)

// PixelFormat describes how pixel samples are laid out in a caller buffer.
type PixelFormat struct {
	NumChannels uint32
	DataType    DataType
	Endianness  Endianness
	// Align is the row byte alignment; 0 or 1 means unaligned.
	Align uint32
}

// ColorTarget selects which of a file's two color profiles (as stored, or
// as decoded/converted) a query is about.
type ColorTarget int

const (
	Original ColorTarget = iota
	Data
)

// ExtraChannelRequest asks the session to decode one extra channel
// directly into buf, in the given format.
type ExtraChannelRequest struct {
	ChannelIndex uint32
	Format       PixelFormat
	Buf          []byte
}

// Session is the pure adapter contract the Decoder facade drives. A
// concrete implementation typically wraps a native JXL decoding library.
type Session interface {
	// Subscribe declares which events the session will surface from
	// subsequent Process calls, replacing any previous subscription.
	Subscribe(events EventSet) error

	// SetInput hands the session a contiguous window of not-yet-consumed
	// bytes.
	SetInput(b []byte) error
	// CloseInput tells the session no further input bytes will arrive.
	CloseInput()
	// ReleaseInput returns the number of bytes the session has not yet
	// consumed from the most recent SetInput window.
	ReleaseInput() int

	// Process runs the session until it has something to report.
	Process() (Event, error)

	// GetBasicInfo returns the file's BasicInfo. Valid after a BasicInfo
	// event.
	GetBasicInfo() (bundle.BasicInfo, error)

	// GetFrameHeader returns the header of the most recently surfaced
	// frame. Valid after a Frame event.
	GetFrameHeader() (frame.Header, error)
	// GetFrameName returns the name of the most recently surfaced frame,
	// if it has one.
	GetFrameName() (string, bool, error)

	// GetBoxType returns the 4-byte type of the most recently surfaced
	// box. raw selects the outer (possibly "brob") type instead of the
	// decompressed inner type.
	GetBoxType(raw bool) ([4]byte, error)
	// GetBoxSize returns the most recently surfaced box's size. raw
	// selects the size before decompression.
	GetBoxSize(raw bool) (size uint64, unbounded bool, err error)

	// GetICCProfile returns the ICC bytes for target, and their size.
	GetICCProfileSize(target ColorTarget) (int, error)
	GetICCProfile(target ColorTarget) ([]byte, error)
	// GetEncodedColorProfile returns the encoded (non-ICC) color profile
	// for target, if the session has one.
	GetEncodedColorProfile(target ColorTarget) (color.EncodedProfile, bool, error)
	// SetOutputColorProfile overrides the profile pixels are emitted in.
	SetOutputColorProfile(enc *color.EncodedProfile, icc []byte) error

	// GetExtraChannelInfo returns the static metadata for extra channel
	// index i.
	GetExtraChannelInfo(i uint32) (bundle.ExtraChannelInfo, error)
	GetExtraChannelName(i uint32) (string, error)
	// GetExtraChannelBlendInfo returns the per-extra-channel blend info
	// of the most recently surfaced frame, present only when coalescing
	// is disabled.
	GetExtraChannelBlendInfo(i uint32) (frame.BlendingInfo, error)

	// GetCodestreamLevel returns the declared level of the codestream,
	// if known without scanning boxes.
	GetCodestreamLevel() (int, bool)

	// SetImageOutBuffer registers buf to receive the next frame's main
	// image pixels.
	SetImageOutBuffer(format PixelFormat, buf []byte) error
	// SetExtraChannelBuffer registers buf to receive extra channel i's
	// pixels for the next frame.
	SetExtraChannelBuffer(format PixelFormat, i uint32, buf []byte) error
	// SetBoxBuffer registers buf to receive the current box's content.
	SetBoxBuffer(buf []byte) error
	// ReleaseBoxBuffer releases the box buffer and returns the number of
	// bytes that were not written.
	ReleaseBoxBuffer() int
	// SetJpegBuffer registers buf to receive JPEG reconstruction bytes.
	SetJpegBuffer(buf []byte) error
	// ReleaseJpegBuffer releases the JPEG buffer and returns the number
	// of bytes that were not written.
	ReleaseJpegBuffer() int
	// SetDecompressBoxes toggles whether "brob" boxes are transparently
	// decompressed.
	SetDecompressBoxes(decompress bool) error

	// Rewind resets the session to the start of the stream, preserving
	// the current subscription (the caller re-subscribes afterward).
	Rewind()
	// SkipFrames instructs the session to skip n upcoming frames without
	// decoding their pixels.
	SkipFrames(n int) error
	// SkipCurrentFrame skips the frame currently being decoded, used when
	// the caller didn't want its pixels.
	SkipCurrentFrame() error

	// SetParallelRunner installs a worker pool used for pixel decoding.
	SetParallelRunner(r ParallelRunner) error
	// SetCoalescing toggles whether layers are flattened into
	// canvas-sized frames.
	SetCoalescing(enabled bool) error
	// SetKeepOrientation toggles whether the stored orientation transform
	// is applied automatically.
	SetKeepOrientation(enabled bool) error
	// SetUnpremultiplyAlpha toggles straight-alpha conversion on decode.
	SetUnpremultiplyAlpha(enabled bool) error

	// Reset returns the session to its just-constructed state, ready to
	// be reused for a new open call.
	Reset()
}

// ParallelRunner is the pass-through hook for a caller-supplied or
// default worker pool, named after JxlThreadParallelRunner. jxltk does not
// implement a runner; this is the interface a real Session accepts.
type ParallelRunner interface {
	Run(numTasks int, task func(threadIndex, taskIndex int)) error
}
