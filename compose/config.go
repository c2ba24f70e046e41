// Package compose defines the merge composer contract of spec.md §4.6: an
// interface-only orchestration layer that combines N input frames and M
// metadata boxes into one output JXL. jxltk ships no concrete encoder -
// only the Composer/Encoder interfaces and the pure invariant helpers a
// real implementation would apply before encoding begins, grounded on
// mergeconfig.h's config tree and merge.h's top-level entry point.
package compose

import "github.com/alistair7/jxltk/frame"

// BoxConfig describes one output box, or (inside Config.BoxDefaults)
// per-field overrides applied to every box. Optional fields are nil when
// unset, mirroring mergeconfig.h's std::optional fields.
type BoxConfig struct {
	Type     *string
	File     *string
	Compress *bool
}

// IsAllDefault reports whether every field is unset.
func (c BoxConfig) IsAllDefault() bool {
	return c.Type == nil && c.File == nil && c.Compress == nil
}

// Update copies every set field of overrides into a copy of c, leaving c's
// own value where overrides leaves a field unset.
func (c BoxConfig) Update(overrides BoxConfig) BoxConfig {
	if overrides.Type != nil {
		c.Type = overrides.Type
	}
	if overrides.File != nil {
		c.File = overrides.File
	}
	if overrides.Compress != nil {
		c.Compress = overrides.Compress
	}
	return c
}

// ColorSpecType selects how a ColorConfig names its profile.
type ColorSpecType uint8

const (
	ColorSpecNone ColorSpecType = iota
	ColorSpecFile
	ColorSpecEnum
)

// ColorConfig names the output color profile explicitly, overriding the
// "first non-empty input, else sRGB" default of spec.md §4.6.
type ColorConfig struct {
	Type ColorSpecType
	// Name is a file path when Type is ColorSpecFile.
	Name string
	// Encoded is used when Type is ColorSpecEnum.
	Encoded EncodedColorSpec
}

// EncodedColorSpec is the subset of a color.EncodedProfile a merge config
// can name directly (CICP-style), avoiding an import of the color package
// just for its full struct.
type EncodedColorSpec struct {
	ColorSpace       int32
	WhitePoint       int32
	Primaries        int32
	TransferFunction int32
}

// FrameConfig holds per-frame encoding overrides, or (inside
// Config.FrameDefaults) global overrides applied to every frame that
// doesn't set its own value.
type FrameConfig struct {
	BlendMode       *frame.BlendMode
	BlendSource     *uint32
	CopyBoxes       *bool
	Distance        *float64
	DurationMs      *uint32
	DurationTicks   *uint32
	Effort          *int32
	File            *string
	MaPrevChannels  *int32
	MaTreeLearnPct  *int32
	Name            *string
	OffsetX         *int32
	OffsetY         *int32
	Patches         *int32
	SaveAsReference *uint32
}

// Update copies every set field of overrides into a copy of f.
func (f FrameConfig) Update(overrides FrameConfig) FrameConfig {
	if overrides.BlendMode != nil {
		f.BlendMode = overrides.BlendMode
	}
	if overrides.BlendSource != nil {
		f.BlendSource = overrides.BlendSource
	}
	if overrides.CopyBoxes != nil {
		f.CopyBoxes = overrides.CopyBoxes
	}
	if overrides.Distance != nil {
		f.Distance = overrides.Distance
	}
	if overrides.DurationMs != nil {
		f.DurationMs = overrides.DurationMs
	}
	if overrides.DurationTicks != nil {
		f.DurationTicks = overrides.DurationTicks
	}
	if overrides.Effort != nil {
		f.Effort = overrides.Effort
	}
	if overrides.File != nil {
		f.File = overrides.File
	}
	if overrides.MaPrevChannels != nil {
		f.MaPrevChannels = overrides.MaPrevChannels
	}
	if overrides.MaTreeLearnPct != nil {
		f.MaTreeLearnPct = overrides.MaTreeLearnPct
	}
	if overrides.Name != nil {
		f.Name = overrides.Name
	}
	if overrides.OffsetX != nil {
		f.OffsetX = overrides.OffsetX
	}
	if overrides.OffsetY != nil {
		f.OffsetY = overrides.OffsetY
	}
	if overrides.Patches != nil {
		f.Patches = overrides.Patches
	}
	if overrides.SaveAsReference != nil {
		f.SaveAsReference = overrides.SaveAsReference
	}
	return f
}

// IsAllDefault reports whether every field is unset.
func (f FrameConfig) IsAllDefault() bool {
	return f.BlendMode == nil && f.BlendSource == nil && f.CopyBoxes == nil &&
		f.Distance == nil && f.DurationMs == nil && f.DurationTicks == nil &&
		f.Effort == nil && f.File == nil && f.MaPrevChannels == nil &&
		f.MaTreeLearnPct == nil && f.Name == nil && f.OffsetX == nil &&
		f.OffsetY == nil && f.Patches == nil && f.SaveAsReference == nil
}

// Normalize clears Effort, MaPrevChannels, MaTreeLearnPct and Patches when
// set to -1, the sentinel mergeconfig.h uses for "use the library default"
// that can't be passed through as-is. OffsetX and OffsetY are left as they
// are, since -1 is a valid offset.
func (f *FrameConfig) Normalize() {
	clearIfMinusOne(&f.Effort)
	clearIfMinusOne(&f.MaPrevChannels)
	clearIfMinusOne(&f.MaTreeLearnPct)
	clearIfMinusOne(&f.Patches)
}

func clearIfMinusOne(p **int32) {
	if *p != nil && **p == -1 {
		*p = nil
	}
}

// Config is the top-level merge configuration, normally parsed from JSON
// by an external collaborator (parsing itself is out of scope here per
// spec.md's non-goals).
type Config struct {
	Loops            *uint32
	TicksNumerator   *uint32
	TicksDenominator *uint32
	Orientation      *uint32
	Color            *ColorConfig
	DataType         *string
	IntrinsicXsize   *uint32
	IntrinsicYsize   *uint32
	Xsize            *uint32
	Ysize            *uint32
	BoxDefaults      BoxConfig
	FrameDefaults    FrameConfig
	CodestreamLevel  *int
	BrotliEffort     *int32

	Frames []FrameConfig
	Boxes  []BoxConfig
}

// Normalize applies FrameConfig.Normalize to every frame and the frame
// defaults.
func (c *Config) Normalize() {
	c.FrameDefaults.Normalize()
	for i := range c.Frames {
		c.Frames[i].Normalize()
	}
}
