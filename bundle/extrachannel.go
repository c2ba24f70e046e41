package bundle

// ExtraChannelType enumerates the kinds of channel beyond the main color
// channels, generalizing bundle/ExtraChannelInfo.go's EcType int32 field
// into a named enum.
type ExtraChannelType int32

const (
	ExtraChannelAlpha ExtraChannelType = iota
	ExtraChannelDepth
	ExtraChannelSpotColor
	ExtraChannelSelectionMask
	ExtraChannelBlack
	ExtraChannelCFA
	ExtraChannelThermal
	ExtraChannelOptional
	ExtraChannelUnknown
	ExtraChannelReserved
)

// ExtraChannelInfo is the static metadata for one extra channel, ordered
// the same way the file declares them.
type ExtraChannelInfo struct {
	Type     ExtraChannelType
	BitDepth BitDepthHeader

	// Name is the channel's UTF-8 name, when present.
	Name    string
	HasName bool

	AlphaPremultiplied bool

	// DimShift records that this channel is subsampled relative to the
	// main image, as 2^DimShift.
	DimShift int32

	// CFAChannel and SpotColor are only meaningful for the matching
	// ExtraChannelType.
	CFAChannel uint32
	SpotColor  [4]float32
}
