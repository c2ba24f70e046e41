// Package bundle holds the plain data records describing a JXL file's
// static metadata, generalizing bundle/ImageHeader.go's and
// bundle/ExtraChannelInfo.go's bitstream-parsed structs into the
// codec-neutral records the Decoder facade exposes. Nothing in this
// package parses a bitstream; that belongs to a codec.Session
// implementation.
package bundle

// BitDepthHeader describes the sample precision of a channel.
type BitDepthHeader struct {
	BitsPerSample         uint32
	ExponentBitsPerSample uint32
}

// Float reports whether this bit depth describes a floating-point sample.
func (b BitDepthHeader) Float() bool { return b.ExponentBitsPerSample > 0 }

// AnimationHeader describes an animated file's timing.
type AnimationHeader struct {
	TicksNumerator   uint32
	TicksDenominator uint32
	NumLoops         uint32
}

// BasicInfo is populated exactly once, on first observation, and never
// changes for the lifetime of an open Decoder.
type BasicInfo struct {
	Xsize uint32
	Ysize uint32

	// IntrinsicXsize/Ysize are the preferred display size, when it
	// differs from Xsize/Ysize.
	IntrinsicXsize uint32
	IntrinsicYsize uint32

	NumColorChannels uint32
	NumExtraChannels uint32

	BitDepth BitDepthHeader

	AlphaBits         uint32
	AlphaExponentBits uint32
	AlphaPremultiplied bool

	HaveContainer bool
	HaveAnimation bool
	Animation     AnimationHeader

	// UsesOriginalProfile is true for lossless/near-lossless encodes that
	// skip the XYB color transform.
	UsesOriginalProfile bool
}

// HasAlpha reports whether the file declares an alpha channel.
func (b BasicInfo) HasAlpha() bool { return b.AlphaBits > 0 }
