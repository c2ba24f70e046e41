package pixmap

import (
	"encoding/binary"
	"math"

	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/decoder"
)

func sampleBytes(dt codec.DataType) int {
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

func byteOrder(e codec.Endianness) binary.ByteOrder {
	if e == codec.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func maxSample(format codec.PixelFormat, buf []byte, off int) bool {
	bo := byteOrder(format.Endianness)
	switch format.DataType {
	case codec.U8:
		return buf[off] == 0xFF
	case codec.U16:
		return bo.Uint16(buf[off:]) == 0xFFFF
	case codec.F16:
		return math.Float32frombits(halfToFloatBits(bo.Uint16(buf[off:]))) >= 1.0
	case codec.F32:
		return math.Float32frombits(bo.Uint32(buf[off:])) >= 1.0
	}
	return false
}

func writeMaxSample(format codec.PixelFormat, buf []byte, off int) {
	bo := byteOrder(format.Endianness)
	switch format.DataType {
	case codec.U8:
		buf[off] = 0xFF
	case codec.U16:
		bo.PutUint16(buf[off:], 0xFFFF)
	case codec.F16:
		bo.PutUint16(buf[off:], 0x3C00) // 1.0 in IEEE754 half precision
	case codec.F32:
		bo.PutUint32(buf[off:], math.Float32bits(1.0))
	}
}

// halfToFloatBits widens an IEEE754 half-precision bit pattern to single
// precision, enough fidelity for the >= 1.0 comparison IsFullyOpaque needs.
func halfToFloatBits(h uint16) uint32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1F
	mant := uint32(h) & 0x3FF
	if exp == 0 {
		if mant == 0 {
			return sign
		}
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &^= 0x400
	} else if exp == 0x1F {
		return sign | 0xFF<<23 | mant<<13
	}
	exp = exp - 15 + 127
	return sign | exp<<23 | mant<<13
}

// alphaChannelOffset returns the interleaved channel index of the alpha
// sample, for 2- or 4-channel formats (gray+alpha, RGB+alpha).
func alphaChannelOffset(format codec.PixelFormat) (int, bool) {
	switch format.NumChannels {
	case 2, 4:
		return int(format.NumChannels) - 1, true
	}
	return 0, false
}

// IsFullyOpaque scans buf's alpha channel (xsize by ysize pixels in
// format) for any non-maximal sample. A 1- or 3-channel format has no
// alpha and is trivially opaque.
func IsFullyOpaque(buf []byte, xsize, ysize uint32, format codec.PixelFormat) bool {
	alphaIx, hasAlpha := alphaChannelOffset(format)
	if !hasAlpha {
		return true
	}
	n := sampleBytes(format.DataType)
	pixelStride := int(format.NumChannels) * n
	rowBytes, _ := decoder.RowStride(xsize, format)
	for y := 0; y < int(ysize); y++ {
		rowStart := y * rowBytes
		for x := 0; x < int(xsize); x++ {
			off := rowStart + x*pixelStride + alphaIx*n
			if !maxSample(format, buf, off) {
				return false
			}
		}
	}
	return true
}

// IsFullyOpaque reports whether this Pixmap's buffered (or lazily
// buffered) pixels are fully opaque.
func (p *Pixmap) IsFullyOpaque() (bool, error) {
	if err := p.EnsureBuffered(); err != nil {
		return false, err
	}
	return IsFullyOpaque(p.pixels, p.xsize, p.ysize, p.format), nil
}

// AddInterleavedAlpha ensures this Pixmap's format has an interleaved
// alpha channel, widening unbuffered pixels' intended channel count or
// splicing a fully-opaque trailing channel into already-buffered pixels.
// Returns true if an alpha channel was added; false if one already
// existed (left unchanged).
func (p *Pixmap) AddInterleavedAlpha() (bool, error) {
	if _, has := alphaChannelOffset(p.format); has {
		return false, nil
	}
	newFormat := p.format
	newFormat.NumChannels++
	if p.pixels == nil {
		p.format = newFormat
		return true, nil
	}

	n := sampleBytes(p.format.DataType)
	oldPixelStride := int(p.format.NumChannels) * n
	newPixelStride := int(newFormat.NumChannels) * n
	oldRowStride, _ := decoder.RowStride(p.xsize, p.format)
	newRowStride, _ := decoder.RowStride(p.xsize, newFormat)
	newSize, err := decoder.FrameBufferSize(p.xsize, p.ysize, newFormat)
	if err != nil {
		return false, err
	}
	newBuf := make([]byte, newSize)
	for y := 0; y < int(p.ysize); y++ {
		oldRow := p.pixels[y*oldRowStride:]
		newRow := newBuf[y*newRowStride:]
		for x := 0; x < int(p.xsize); x++ {
			copy(newRow[x*newPixelStride:], oldRow[x*oldPixelStride:x*oldPixelStride+oldPixelStride])
			writeMaxSample(newFormat, newRow, x*newPixelStride+oldPixelStride)
		}
	}
	p.pixels = newBuf
	p.format = newFormat
	return true, nil
}

// RemoveInterleavedAlpha removes this Pixmap's interleaved alpha channel,
// if it has one. If pixels aren't buffered yet, this only affects the
// format they will be decoded in.
func (p *Pixmap) RemoveInterleavedAlpha() error {
	alphaIx, has := alphaChannelOffset(p.format)
	if !has {
		return nil
	}
	newFormat := p.format
	newFormat.NumChannels--
	if p.pixels == nil {
		p.format = newFormat
		return nil
	}

	n := sampleBytes(p.format.DataType)
	oldPixelStride := int(p.format.NumChannels) * n
	newPixelStride := int(newFormat.NumChannels) * n
	oldRowStride, _ := decoder.RowStride(p.xsize, p.format)
	newRowStride, _ := decoder.RowStride(p.xsize, newFormat)
	newSize, err := decoder.FrameBufferSize(p.xsize, p.ysize, newFormat)
	if err != nil {
		return err
	}
	newBuf := make([]byte, newSize)
	for y := 0; y < int(p.ysize); y++ {
		oldRow := p.pixels[y*oldRowStride:]
		newRow := newBuf[y*newRowStride:]
		for x := 0; x < int(p.xsize); x++ {
			src := oldRow[x*oldPixelStride : x*oldPixelStride+oldPixelStride]
			dst := newRow[x*newPixelStride : x*newPixelStride+newPixelStride]
			copy(dst, src[:alphaIx*n])
			copy(dst[alphaIx*n:], src[(alphaIx+1)*n:])
		}
	}
	p.pixels = newBuf
	p.format = newFormat
	return nil
}
