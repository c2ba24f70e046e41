package compose

import (
	"testing"

	"github.com/alistair7/jxltk/color"
)

func u32(v uint32) *uint32 { return &v }
func i32(v int32) *int32   { return &v }
func f64(v float64) *float64 { return &v }

func TestValidateFramesRequiresAtLeastOne(t *testing.T) {
	if err := ValidateFrames(Config{}, nil); err == nil {
		t.Fatal("expected an error for zero frames")
	}
}

func TestValidateFramesXsizeYsizeMustPair(t *testing.T) {
	cfg := Config{Xsize: u32(100)}
	frames := []FrameInput{{Xsize: 10, Ysize: 10}}
	if err := ValidateFrames(cfg, frames); err == nil {
		t.Fatal("expected an error when only xsize is set")
	}
	cfg.Ysize = u32(100)
	if err := ValidateFrames(cfg, frames); err != nil {
		t.Fatalf("expected no error once both are set: %v", err)
	}
}

func TestValidateFramesRejectsZeroTicksDenominator(t *testing.T) {
	cfg := Config{TicksDenominator: u32(0)}
	frames := []FrameInput{{Xsize: 1, Ysize: 1}}
	if err := ValidateFrames(cfg, frames); err == nil {
		t.Fatal("expected an error for a zero ticks denominator")
	}
}

func TestExpandCanvasUsesMaxOffsetPlusSize(t *testing.T) {
	frames := []FrameInput{
		{Xsize: 100, Ysize: 50},
		{Xsize: 20, Ysize: 20, Config: FrameConfig{OffsetX: i32(90), OffsetY: i32(40)}},
	}
	xsize, ysize := ExpandCanvas(frames)
	if xsize != 110 || ysize != 60 {
		t.Fatalf("got %dx%d, want 110x60", xsize, ysize)
	}
}

func TestExpandCanvasNegativeOffsetShrinksRight(t *testing.T) {
	frames := []FrameInput{
		{Xsize: 50, Ysize: 50, Config: FrameConfig{OffsetX: i32(-10), OffsetY: i32(-10)}},
	}
	xsize, ysize := ExpandCanvas(frames)
	if xsize != 40 || ysize != 40 {
		t.Fatalf("got %dx%d, want 40x40 (offset -10 + size 50, not clamped)", xsize, ysize)
	}
}

func TestExpandCanvasDeeplyNegativeOffsetDoesNotUnderflow(t *testing.T) {
	frames := []FrameInput{
		{Xsize: 10, Ysize: 10, Config: FrameConfig{OffsetX: i32(-100), OffsetY: i32(-100)}},
		{Xsize: 5, Ysize: 5},
	}
	xsize, ysize := ExpandCanvas(frames)
	if xsize != 5 || ysize != 5 {
		t.Fatalf("got %dx%d, want 5x5 (the negative-offset frame's own right edge is negative and contributes nothing)", xsize, ysize)
	}
}

func TestReconcileTicksPerSecondExplicitWins(t *testing.T) {
	cfg := Config{TicksNumerator: u32(30), TicksDenominator: u32(1)}
	num, den := ReconcileTicksPerSecond(cfg, nil)
	if num != 30 || den != 1 {
		t.Fatalf("got %d/%d, want 30/1", num, den)
	}
}

func TestReconcileTicksPerSecondFromDurations(t *testing.T) {
	frames := []FrameInput{
		{Config: FrameConfig{DurationMs: u32(100)}},
		{Config: FrameConfig{DurationMs: u32(50)}},
	}
	num, den := ReconcileTicksPerSecond(Config{}, frames)
	// gcd(100,50) = 50 -> 1000/50 = 20
	if num != 20 || den != 1 {
		t.Fatalf("got %d/%d, want 20/1", num, den)
	}
}

func TestReconcileTicksPerSecondReducesFraction(t *testing.T) {
	frames := []FrameInput{
		{Config: FrameConfig{DurationMs: u32(300)}},
	}
	num, den := ReconcileTicksPerSecond(Config{}, frames)
	// gcd(1000,300) = 100 -> 1000/100 = 10, 300/100 = 3; 10/3 ticks per
	// second, so one tick is exactly 300ms.
	if num != 10 || den != 3 {
		t.Fatalf("got %d/%d, want 10/3", num, den)
	}
}

func TestReconcileTicksPerSecondNonDivisorDenominator(t *testing.T) {
	frames := []FrameInput{
		{Config: FrameConfig{DurationMs: u32(33)}},
	}
	num, den := ReconcileTicksPerSecond(Config{}, frames)
	if num != 1000 || den != 33 {
		t.Fatalf("got %d/%d, want 1000/33", num, den)
	}
}

func TestReconcileTicksPerSecondDefault(t *testing.T) {
	num, den := ReconcileTicksPerSecond(Config{}, nil)
	if num != 100 || den != 1 {
		t.Fatalf("got %d/%d, want 100/1", num, den)
	}
}

func TestHasAnimatedFrame(t *testing.T) {
	if HasAnimatedFrame([]FrameInput{{}}) {
		t.Fatal("a frame with no duration is not animated")
	}
	if !HasAnimatedFrame([]FrameInput{{Config: FrameConfig{DurationMs: u32(1)}}}) {
		t.Fatal("a frame with a nonzero duration is animated")
	}
}

func TestUsesOriginalProfile(t *testing.T) {
	if UsesOriginalProfile([]FrameInput{{Config: FrameConfig{Distance: f64(1.0)}}}) {
		t.Fatal("a high distance should not trigger uses_original_profile")
	}
	if !UsesOriginalProfile([]FrameInput{{Config: FrameConfig{Distance: f64(0.0)}}}) {
		t.Fatal("a near-zero distance should trigger uses_original_profile")
	}
}

func TestRelaxPatchesForReferenceSlot3(t *testing.T) {
	frames := []FrameInput{{Config: FrameConfig{SaveAsReference: u32(1)}}}
	if RelaxPatchesForReferenceSlot3(frames) {
		t.Fatal("slot 1 should not relax patches")
	}
	frames = append(frames, FrameInput{Config: FrameConfig{SaveAsReference: u32(3)}})
	if !RelaxPatchesForReferenceSlot3(frames) {
		t.Fatal("slot 3 should relax patches for every frame")
	}
}

func TestScanOpaqueAlpha(t *testing.T) {
	scans := []AlphaScan{
		{HasAlpha: false, FullyOpaque: false},
		{HasAlpha: true, FullyOpaque: true},
		{HasAlpha: true, FullyOpaque: false},
	}
	got := ScanOpaqueAlpha(scans)
	want := []bool{false, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestResolveColorProfileExplicitWins(t *testing.T) {
	explicit := color.Profile{HasEnc: true, Enc: &color.EncodedProfile{ColorSpace: color.ColorSpaceGray}}
	got, warn := ResolveColorProfile(&explicit, []color.Profile{{HasEnc: true, Enc: &color.EncodedProfile{ColorSpace: color.ColorSpaceRGB}}}, false)
	if warn {
		t.Fatal("explicit profile should never warn")
	}
	if got.Enc.ColorSpace != color.ColorSpaceGray {
		t.Fatal("explicit profile should win over inputs")
	}
}

func TestResolveColorProfileFallsBackToSRGB(t *testing.T) {
	got, warn := ResolveColorProfile(nil, nil, false)
	if warn {
		t.Fatal("no inputs should never warn")
	}
	if got.Enc.ColorSpace != color.ColorSpaceRGB {
		t.Fatal("expected default sRGB fallback")
	}
}

func TestResolveColorProfileFallsBackToGraySRGB(t *testing.T) {
	got, _ := ResolveColorProfile(nil, nil, true)
	if got.Enc.ColorSpace != color.ColorSpaceGray {
		t.Fatal("expected default gray sRGB fallback when allGray")
	}
}

func TestResolveColorProfileWarnsOnDisagreement(t *testing.T) {
	a := color.Profile{HasEnc: true, Enc: &color.EncodedProfile{ColorSpace: color.ColorSpaceRGB, WhitePoint: color.WhitePointD65, Primaries: color.PrimariesSRGB, TransferFunction: color.TransferSRGB}}
	b := color.Profile{HasEnc: true, Enc: &color.EncodedProfile{ColorSpace: color.ColorSpaceGray, WhitePoint: color.WhitePointD65, Primaries: color.PrimariesSRGB, TransferFunction: color.TransferSRGB}}
	got, warn := ResolveColorProfile(nil, []color.Profile{a, b}, false)
	if !warn {
		t.Fatal("disagreeing inputs should warn")
	}
	if got.Enc.ColorSpace != color.ColorSpaceRGB {
		t.Fatal("resolution should keep the first input on disagreement")
	}
}

func TestMaxBitDepth(t *testing.T) {
	bits, exp := MaxBitDepth([]uint32{8, 16, 10}, []uint32{0, 5, 8})
	if bits != 16 || exp != 8 {
		t.Fatalf("got bits=%d exp=%d, want 16/8", bits, exp)
	}
}

func TestFrameConfigUpdateAndIsAllDefault(t *testing.T) {
	var f FrameConfig
	if !f.IsAllDefault() {
		t.Fatal("zero-value FrameConfig should be all-default")
	}
	f = f.Update(FrameConfig{Distance: f64(1.5)})
	if f.IsAllDefault() {
		t.Fatal("updated FrameConfig should no longer be all-default")
	}
	if *f.Distance != 1.5 {
		t.Fatalf("got %v, want 1.5", *f.Distance)
	}
}

func TestFrameConfigNormalizeClearsMinusOneSentinels(t *testing.T) {
	f := FrameConfig{Effort: i32(-1), Patches: i32(3)}
	f.Normalize()
	if f.Effort != nil {
		t.Fatal("Effort of -1 should be cleared to nil")
	}
	if f.Patches == nil || *f.Patches != 3 {
		t.Fatal("Patches should be left untouched")
	}
}
