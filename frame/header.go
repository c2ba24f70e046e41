// Package frame holds the per-frame data records the Decoder facade
// exposes, generalizing frame/FrameHeader.go and frame/BlendingInfo.go's
// bitstream-parsed structs into codec-neutral records. Nothing in this
// package parses a bitstream.
package frame

import "github.com/alistair7/jxltk/util"

// BlendMode mirrors the BLEND_* constants of frame/FrameHeader.go.
type BlendMode uint32

const (
	BlendReplace BlendMode = 0
	BlendAdd     BlendMode = 1
	BlendBlend   BlendMode = 2
	BlendMulAdd  BlendMode = 3
	BlendMult    BlendMode = 4
)

// BlendingInfo mirrors frame/BlendingInfo.go, generalized from a
// bitstream-parsed struct to a plain record.
type BlendingInfo struct {
	Mode BlendMode
	// AlphaChannel selects which extra channel's alpha drives Blend/MulAdd
	// modes.
	AlphaChannel uint32
	Clamp        bool
	// Source is the reference slot (0-3) this frame blends against.
	Source uint32
}

// LayerInfo is a frame's geometry: its position and size within the
// canvas, and whether that position differs from the canvas origin.
type LayerInfo struct {
	Bounds   util.Rectangle
	HaveCrop bool
}

func (l LayerInfo) Xsize() uint32 { return uint32(l.Bounds.Size.Width) }
func (l LayerInfo) Ysize() uint32 { return uint32(l.Bounds.Size.Height) }
func (l LayerInfo) CropX0() int32 { return l.Bounds.Origin.X }
func (l LayerInfo) CropY0() int32 { return l.Bounds.Origin.Y }

// Header is a frame's header as surfaced by a Frame event.
type Header struct {
	Layer LayerInfo

	Blending BlendingInfo
	// SaveAsReference names a reference slot (0-3) this frame is saved
	// into for later reuse, or -1 if none.
	SaveAsReference int32

	DurationTicks uint32
	IsLast        bool

	NameLength uint32
}

// Record is a Header plus the decoder-observed extras: the frame's name
// (if any) and, when coalescing is disabled, the per-extra-channel blend
// info recorded at this frame.
type Record struct {
	Header Header

	Name    string
	HasName bool

	// ExtraBlending is populated only when the decoder's IsCoalescing
	// flag is false; it is nil otherwise.
	ExtraBlending []BlendingInfo
}
