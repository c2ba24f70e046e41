package compose

import (
	"io"

	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/color"
	"github.com/alistair7/jxltk/frame"
)

// Composer combines N input frames and M metadata boxes into one output
// JXL, per spec.md §4.6. jxltk ships no implementation: a caller supplies
// one (typically wrapping a native JXL encoding library) the same way it
// supplies a codec.Session to drive a Decoder.
type Composer interface {
	// Merge writes the single-JXL result of combining every frame and box
	// named in cfg to dst. numThreads is 0 to let the implementation pick
	// a default; forceDataType, if non-nil, overrides the per-pixel data
	// type chosen by the bit-depth-maximizing invariant.
	Merge(cfg Config, dst io.Writer, numThreads int, forceDataType *codec.DataType) error
}

// Encoder is the encode-side mirror of codec.Session: the pure adapter
// contract a Composer implementation drives to actually produce bytes.
// Named and shaped after codec.Session, generalized to emission instead
// of consumption.
type Encoder interface {
	// SetBasicInfo declares the output's static metadata. Must be called
	// before any frame is added.
	SetBasicInfo(info OutputInfo) error
	// SetColorEncoding declares the output's color profile.
	SetColorEncoding(enc *color.EncodedProfile, icc []byte) error

	// AddFrame appends one frame's pixels and header to the output
	// stream.
	AddFrame(header frame.Header, format codec.PixelFormat, pixels []byte) error
	// AddBox appends one metadata box, compressing it first if compress
	// is true.
	AddBox(boxType [4]byte, content []byte, compress bool) error

	// SetCodestreamLevel requests a specific container "jxll" level (5 or
	// 10); the encoder validates it can satisfy the request.
	SetCodestreamLevel(level int) error
	// SetParallelRunner installs a worker pool used for pixel encoding.
	SetParallelRunner(r codec.ParallelRunner) error

	// Finalize flushes any buffered output and reports final errors.
	Finalize() error
}

// OutputInfo is the subset of bundle.BasicInfo a Composer computes for
// its output, before any Encoder call is made.
type OutputInfo struct {
	Xsize, Ysize                   uint32
	IntrinsicXsize, IntrinsicYsize  uint32
	NumColorChannels                uint32
	HasAlpha                         bool
	BitsPerSample, ExponentBits     uint32
	AlphaBits, AlphaExponentBits    uint32
	HaveAnimation                    bool
	TicksNumerator, TicksDenominator uint32
	Loops                            uint32
	UsesOriginalProfile              bool
}
