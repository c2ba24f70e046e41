// Package color implements structural comparison of JXL color profiles,
// generalizing color/ColorEncodingBundle.go's constants and CIEXY/CustomXY
// shape into the standalone ColorProfile equivalence contract of §4.5.
//
// This package never converts between color profiles - pixels are
// reinterpreted, never color-managed, per the toolkit's non-goals.
package color

import "crypto/sha256"

// ColorSpace, WhitePointTag, PrimariesTag and TransferFunction mirror the
// enumerators color/ColorEncodingBundle.go reads from the bitstream, minus
// the bitstream-reading itself.
type ColorSpace int32

const (
	ColorSpaceUnknown ColorSpace = iota
	ColorSpaceRGB
	ColorSpaceGray
	ColorSpaceXYB
)

type WhitePointTag int32

const (
	WhitePointD65 WhitePointTag = 1
	WhitePointCustom WhitePointTag = 2
	WhitePointE WhitePointTag = 10
	WhitePointDCI WhitePointTag = 11
)

type PrimariesTag int32

const (
	PrimariesSRGB PrimariesTag = 1
	PrimariesCustom PrimariesTag = 2
	Primaries2100 PrimariesTag = 9
	PrimariesP3 PrimariesTag = 11
)

type TransferFunction int32

const (
	TransferUnknown TransferFunction = iota
	TransferLinear
	TransferSRGB
	TransferPQ
	TransferDCI
	TransferHLG
	TransferGamma
)

type RenderingIntent int32

// CIEXY is a chromaticity coordinate.
type CIEXY struct {
	X float64
	Y float64
}

// EncodedProfile is the structured description of a color space: space,
// primaries, white point and transfer function, as opposed to an ICC byte
// blob.
type EncodedProfile struct {
	ColorSpace ColorSpace

	WhitePoint       WhitePointTag
	CustomWhitePoint CIEXY // only meaningful when WhitePoint == WhitePointCustom

	Primaries       PrimariesTag
	CustomPrimaries [3]CIEXY // R, G, B; only meaningful when Primaries == PrimariesCustom

	TransferFunction TransferFunction
	Gamma            float64 // only meaningful when TransferFunction == TransferGamma

	RenderingIntent RenderingIntent
}

// Profile is a tagged union of an EncodedProfile and/or an ICC blob. Per
// the source's ColorProfile struct, both may be present simultaneously; the
// encoded form takes priority when both are present.
type Profile struct {
	Enc    *EncodedProfile
	ICC    []byte
	HasEnc bool
}

func (p Profile) empty() bool { return !p.HasEnc && len(p.ICC) == 0 }

var (
	xyD65 = CIEXY{0.3127, 0.3290}
	xyE   = CIEXY{1.0 / 3, 1.0 / 3}
	xyDCI = CIEXY{0.314, 0.351}

	srgbR = CIEXY{0.639998686, 0.330010138}
	srgbG = CIEXY{0.300003784, 0.600003357}
	srgbB = CIEXY{0.150002046, 0.059997204}
)

const xyTolerance = 1e-9
const gammaTolerance = 1e-6

func closeXY(a, b CIEXY, tol float64) bool {
	return absf(a.X-b.X) <= tol && absf(a.Y-b.Y) <= tol
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// whitePointXY returns the xy coordinate a WhitePointTag resolves to.
func whitePointXY(enc EncodedProfile) (CIEXY, bool) {
	switch enc.WhitePoint {
	case WhitePointD65:
		return xyD65, true
	case WhitePointE:
		return xyE, true
	case WhitePointDCI:
		return xyDCI, true
	case WhitePointCustom:
		return enc.CustomWhitePoint, true
	}
	return CIEXY{}, false
}

// primariesXY returns the xy coordinates of the R, G, B primaries a
// PrimariesTag resolves to. Only PrimariesSRGB and PrimariesCustom are
// resolvable without a CMS; other tags (P3, 2100) are left to a caller that
// needs full gamut math, which is out of scope here.
func primariesXY(enc EncodedProfile) (r, g, b CIEXY, ok bool) {
	switch enc.Primaries {
	case PrimariesSRGB:
		return srgbR, srgbG, srgbB, true
	case PrimariesCustom:
		return enc.CustomPrimaries[0], enc.CustomPrimaries[1], enc.CustomPrimaries[2], true
	}
	return CIEXY{}, CIEXY{}, CIEXY{}, false
}

// encodedEquivalent implements the rules of §4.5, rendering intent ignored.
func encodedEquivalent(a, b EncodedProfile) bool {
	if a.ColorSpace == ColorSpaceUnknown || b.ColorSpace == ColorSpaceUnknown {
		return false
	}
	if a.ColorSpace != b.ColorSpace {
		return false
	}

	if !transferEquivalent(a, b) {
		return false
	}

	if a.WhitePoint == b.WhitePoint && a.WhitePoint != WhitePointCustom {
		// same non-custom tag
	} else {
		awp, aok := whitePointXY(a)
		bwp, bok := whitePointXY(b)
		if !aok || !bok || !closeXY(awp, bwp, xyTolerance) {
			return false
		}
	}

	if a.Primaries == b.Primaries && a.Primaries != PrimariesCustom {
		// same non-custom tag
	} else {
		ar, ag, ab, aok := primariesXY(a)
		br, bg, bb, bok := primariesXY(b)
		if !aok || !bok {
			return false
		}
		if !closeXY(ar, br, xyTolerance) || !closeXY(ag, bg, xyTolerance) || !closeXY(ab, bb, xyTolerance) {
			return false
		}
	}

	return true
}

func transferEquivalent(a, b EncodedProfile) bool {
	linearish := func(e EncodedProfile) (bool, float64) {
		switch {
		case e.TransferFunction == TransferLinear:
			return true, 1.0
		case e.TransferFunction == TransferGamma:
			return true, e.Gamma
		}
		return false, 0
	}
	aLin, aGamma := linearish(a)
	bLin, bGamma := linearish(b)
	if aLin && bLin {
		return absf(aGamma-bGamma) <= gammaTolerance
	}
	return a.TransferFunction == b.TransferFunction
}

// iccRanges are the byte ranges §4.5 says must compare equal; everything
// else (flags, rendering intent, the MD5 "ID" bytes) is skipped.
var iccRanges = [][2]int{{0, 44}, {48, 64}, {68, 84}}

// iccEquivalent compares the "ID-relevant" bytes of two ICC blobs: the
// defined ranges plus the [100, size) tail, skipping flags, rendering
// intent and the MD5 ID field itself. The regions of each blob are fed, in
// order, into one sha256 digest, and the two digests are compared.
func iccEquivalent(a, b []byte) bool {
	if len(a) < 128 || len(b) < 128 {
		return false
	}
	h := sha256.New()
	for _, r := range iccRanges {
		if r[1] > len(a) || r[1] > len(b) {
			return false
		}
	}
	digest := func(data []byte) []byte {
		h.Reset()
		for _, r := range iccRanges {
			h.Write(data[r[0]:r[1]])
		}
		h.Write(data[100:])
		sum := h.Sum(nil)
		return sum
	}
	da, db := digest(a), digest(b)
	if len(da) != len(db) {
		return false
	}
	for i := range da {
		if da[i] != db[i] {
			return false
		}
	}
	return true
}

// Equivalent returns true iff left and right are structurally equivalent
// color profiles, ignoring rendering intent. It is reflexive and symmetric.
func Equivalent(left, right Profile) bool {
	if left.empty() || right.empty() {
		return left.empty() && right.empty()
	}
	if left.HasEnc && right.HasEnc {
		return encodedEquivalent(*left.Enc, *right.Enc)
	}
	// One or both sides lack an encoded profile (or carry ICC alongside
	// it): fall through to comparing ICC bytes, same as the source does
	// whenever it can't compare two encoded profiles directly.
	return iccEquivalent(left.ICC, right.ICC)
}
