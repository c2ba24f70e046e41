package decoder

import (
	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/jxlerr"
)

// SuggestPixelFormat picks a natural output representation for a channel
// with the given bit depth, mirroring jxlazy's exact selection: floating
// point for any exponent bits or more than 16 integer bits, 16-bit
// unsigned integer above 8 bits, 8-bit unsigned integer otherwise.
func SuggestPixelFormat(bitsPerSample, exponentBits, numChannels uint32) codec.PixelFormat {
	var dt codec.DataType
	switch {
	case exponentBits > 0 || bitsPerSample > 16:
		dt = codec.F32
	case bitsPerSample > 8:
		dt = codec.U16
	default:
		dt = codec.U8
	}
	return codec.PixelFormat{NumChannels: numChannels, DataType: dt, Endianness: codec.NativeEndian}
}

// SuggestPixelFormat derives a natural output format for this file's main
// image channels (color plus alpha, if present) from its BasicInfo.
func (d *Decoder) SuggestPixelFormat() (codec.PixelFormat, error) {
	info, err := d.BasicInfo()
	if err != nil {
		return codec.PixelFormat{}, err
	}
	bits := info.BitDepth.BitsPerSample
	exp := info.BitDepth.ExponentBitsPerSample
	numChannels := info.NumColorChannels
	if info.HasAlpha() {
		numChannels++
		if info.AlphaBits > bits {
			bits = info.AlphaBits
		}
		if info.AlphaExponentBits > exp {
			exp = info.AlphaExponentBits
		}
	}
	return SuggestPixelFormat(bits, exp, numChannels), nil
}

func bytesPerSample(dt codec.DataType) int {
	switch dt {
	case codec.U8:
		return 1
	case codec.U16, codec.F16:
		return 2
	case codec.F32:
		return 4
	default:
		return 0
	}
}

// RowStride returns the byte width of one row of xsize pixels in format,
// and the padding bytes (if any) format.Align demands beyond the packed
// row width - except the packed width is never padded on the final row,
// matching getRowStride's "don't pad last row" rule applied by callers.
func RowStride(xsize uint32, format codec.PixelFormat) (stride, rowPadding int) {
	packed := int(xsize) * int(format.NumChannels) * bytesPerSample(format.DataType)
	if format.Align <= 1 {
		return packed, 0
	}
	align := int(format.Align)
	padded := ((packed + align - 1) / align) * align
	return padded, padded - packed
}

// FrameBufferSize returns the number of bytes needed to hold one frame of
// xsize by ysize pixels in format, with the last row unpadded. Returns
// BufferTooLarge if the computation would overflow a native int.
func FrameBufferSize(xsize, ysize uint32, format codec.PixelFormat) (int, error) {
	if xsize == 0 || ysize == 0 {
		return 0, nil
	}
	stride, rowPadding := RowStride(xsize, format)
	if stride <= 0 {
		return 0, jxlerr.New(jxlerr.BufferTooLarge, "invalid pixel format")
	}
	rows := int(ysize)
	// stride*rows must not overflow; check via division rather than
	// computing the product first.
	const maxInt = int(^uint(0) >> 1)
	if rows != 0 && stride > maxInt/rows {
		return 0, jxlerr.New(jxlerr.BufferTooLarge, "frame buffer size overflows")
	}
	total := stride * rows
	return total - rowPadding, nil
}
