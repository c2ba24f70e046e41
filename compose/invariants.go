package compose

import (
	"github.com/alistair7/jxltk/color"
	"github.com/alistair7/jxltk/jxlerr"
)

// LosslessDistanceThreshold is the maximum Butteraugli distance below
// which a frame is considered lossless for the purposes of setting the
// output's uses_original_profile flag.
const LosslessDistanceThreshold = 0.001

// FrameInput is the minimal per-frame shape the pure invariant helpers
// need: enough of FrameConfig plus the frame's own geometry to validate
// and reconcile a Config without touching any Pixmap or Decoder.
type FrameInput struct {
	Config FrameConfig
	Xsize  uint32
	Ysize  uint32
}

// ValidateFrames enforces the structural invariants spec.md §4.6 lists
// first: at least one frame, and xsize/ysize (and the intrinsic pair)
// either both present or both absent in cfg.
func ValidateFrames(cfg Config, frames []FrameInput) error {
	if len(frames) == 0 {
		return jxlerr.New(jxlerr.InvalidConfig, "merge config has no frames")
	}
	if (cfg.Xsize == nil) != (cfg.Ysize == nil) {
		return jxlerr.New(jxlerr.InvalidConfig, "xsize and ysize must both be set or both be absent")
	}
	if (cfg.IntrinsicXsize == nil) != (cfg.IntrinsicYsize == nil) {
		return jxlerr.New(jxlerr.InvalidConfig, "intrinsic xsize and ysize must both be set or both be absent")
	}
	if cfg.TicksDenominator != nil && *cfg.TicksDenominator == 0 {
		return jxlerr.New(jxlerr.InvalidConfig, "ticks denominator must not be zero")
	}
	return nil
}

// ExpandCanvas returns the output canvas size implied by frames when cfg
// doesn't name one explicitly: the maximum, over every frame, of its
// offset plus its own size, on each axis independently. A negative
// offset is not clamped, so it can pull the canvas below a frame's own
// unoffset size.
func ExpandCanvas(frames []FrameInput) (xsize, ysize uint32) {
	for _, f := range frames {
		x0, y0 := int32(0), int32(0)
		if f.Config.OffsetX != nil {
			x0 = *f.Config.OffsetX
		}
		if f.Config.OffsetY != nil {
			y0 = *f.Config.OffsetY
		}
		right := int64(x0) + int64(f.Xsize)
		bottom := int64(y0) + int64(f.Ysize)
		if right > int64(xsize) {
			xsize = uint32(right)
		}
		if bottom > int64(ysize) {
			ysize = uint32(bottom)
		}
	}
	return xsize, ysize
}

// ReconcileTicksPerSecond returns the output's ticks-per-second rate:
// cfg's explicit value when present; otherwise, if any frame supplied a
// duration in milliseconds, 1000/gcd(durations) reduced by their GCD;
// otherwise the default 100/1.
func ReconcileTicksPerSecond(cfg Config, frames []FrameInput) (numerator, denominator uint32) {
	if cfg.TicksNumerator != nil && cfg.TicksDenominator != nil {
		return *cfg.TicksNumerator, *cfg.TicksDenominator
	}
	var g uint32
	for _, f := range frames {
		if f.Config.DurationMs == nil || *f.Config.DurationMs == 0 {
			continue
		}
		g = gcd(g, *f.Config.DurationMs)
	}
	if g == 0 {
		return 100, 1
	}
	g2 := gcd(1000, g)
	return 1000 / g2, g / g2
}

func gcd(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// HasAnimatedFrame reports whether any frame declares a nonzero duration,
// which per spec.md §4.6 marks the output as animated.
func HasAnimatedFrame(frames []FrameInput) bool {
	for _, f := range frames {
		if f.Config.DurationMs != nil && *f.Config.DurationMs > 0 {
			return true
		}
		if f.Config.DurationTicks != nil && *f.Config.DurationTicks > 0 {
			return true
		}
	}
	return false
}

// UsesOriginalProfile reports whether any frame's configured distance is
// below LosslessDistanceThreshold, which per spec.md §4.6 forces the
// output to skip the XYB color transform.
func UsesOriginalProfile(frames []FrameInput) bool {
	for _, f := range frames {
		if f.Config.Distance != nil && *f.Config.Distance < LosslessDistanceThreshold {
			return true
		}
	}
	return false
}

// RelaxPatchesForReferenceSlot3 reports whether any frame saves itself as
// reference slot 3, which per spec.md §4.6 forces patch generation off
// for every frame. When it returns true, the caller should treat every
// frame's Patches override as unset regardless of what FrameConfig says.
func RelaxPatchesForReferenceSlot3(frames []FrameInput) bool {
	for _, f := range frames {
		if f.Config.SaveAsReference != nil && *f.Config.SaveAsReference == 3 {
			return true
		}
	}
	return false
}

// AlphaScan is the minimal per-frame shape ScanOpaqueAlpha needs: whether
// a frame declares alpha at all, and whether a caller has already
// determined (e.g. via pixmap.IsFullyOpaque) that its alpha channel is
// uniformly maximal.
type AlphaScan struct {
	HasAlpha   bool
	FullyOpaque bool
}

// ScanOpaqueAlpha reports, for each frame, whether its alpha channel can
// be dropped from the output: it must declare alpha, and every sample in
// it must already be known to be fully opaque.
func ScanOpaqueAlpha(scans []AlphaScan) []bool {
	drop := make([]bool, len(scans))
	for i, s := range scans {
		drop[i] = s.HasAlpha && s.FullyOpaque
	}
	return drop
}

// defaultSRGB and defaultGraySRGB are the fallback output profiles of
// spec.md §4.6's color-profile resolution rule.
var (
	defaultSRGB = color.EncodedProfile{
		ColorSpace:       color.ColorSpaceRGB,
		WhitePoint:       color.WhitePointD65,
		Primaries:        color.PrimariesSRGB,
		TransferFunction: color.TransferSRGB,
	}
	defaultGraySRGB = color.EncodedProfile{
		ColorSpace:       color.ColorSpaceGray,
		WhitePoint:       color.WhitePointD65,
		Primaries:        color.PrimariesSRGB,
		TransferFunction: color.TransferSRGB,
	}
)

// ResolveColorProfile picks the output color profile per spec.md §4.6:
// an explicit cfg.Color wins (signaled by explicit being non-nil - this
// helper doesn't itself load a file or parse a CICP enum, since that's a
// caller-side concern); else the first non-empty of inputs; else sRGB (or
// gray sRGB if allGray). warn reports that two inputs disagree and were
// not structurally equivalent; resolution still proceeds using the first.
func ResolveColorProfile(explicit *color.Profile, inputs []color.Profile, allGray bool) (profile color.Profile, warn bool) {
	if explicit != nil {
		return *explicit, false
	}
	var first *color.Profile
	for i := range inputs {
		in := inputs[i]
		if in.HasEnc || len(in.ICC) > 0 {
			if first == nil {
				first = &in
				continue
			}
			if !color.Equivalent(*first, in) {
				return *first, true
			}
		}
	}
	if first != nil {
		return *first, false
	}
	def := defaultSRGB
	if allGray {
		def = defaultGraySRGB
	}
	return color.Profile{Enc: &def, HasEnc: true}, false
}

// MaxBitDepth returns the per-field maximum over every frame's declared
// bit depth and exponent bits, per spec.md §4.6's "output is the per-field
// maximum over all inputs" rule.
func MaxBitDepth(bitsPerSample, exponentBits []uint32) (bits, exp uint32) {
	for _, b := range bitsPerSample {
		if b > bits {
			bits = b
		}
	}
	for _, e := range exponentBits {
		if e > exp {
			exp = e
		}
	}
	return bits, exp
}
