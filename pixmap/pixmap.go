// Package pixmap implements Pixmap, the lazy pixel holder of spec.md
// §4.4: a buffer that may already hold pixels, or may know how to
// produce them on demand from a Decoder. Grounded on
// image/imagebuffer.go's dual-representation idea (generalized here from
// int/float buffers to the three pixel sources the source's pixmap.h
// names: memory, decoder and file path) and on core/png_writer.go's
// row-major byte-buffer conventions for how decoded pixels are laid out
// before being handed to an external encoder.
package pixmap

import (
	"os"

	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/decoder"
	"github.com/alistair7/jxltk/jxlerr"
	"github.com/alistair7/jxltk/options"
)

func openPath(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, jxlerr.Wrap(jxlerr.Io, err, "failed to open %q", path)
	}
	return f, nil
}

// DefaultPixelFormat mirrors kDefaultPixelFormat: 4 interleaved channels,
// 32-bit float, native endianness, unaligned rows.
var DefaultPixelFormat = codec.PixelFormat{
	NumChannels: 4,
	DataType:    codec.F32,
	Endianness:  codec.NativeEndian,
	Align:       0,
}

// SessionFactory constructs a fresh codec.Session, used by a path-backed
// Pixmap to open a Decoder lazily on first access. jxltk ships no
// concrete Session, so this is the caller's hook to supply one (typically
// a cgo binding to libjxl).
type SessionFactory func() codec.Session

// Pixmap is a rectangular array of pixels that may already be resident in
// memory, or may know how to produce itself from a Decoder - either one
// the caller handed over, or one this Pixmap opens lazily from a file
// path. Not safe for concurrent use.
type Pixmap struct {
	pixels []byte
	format codec.PixelFormat
	xsize  uint32
	ysize  uint32

	path       string
	newSession SessionFactory
	openOpts   options.OpenOptions
	file       *os.File

	dec            *decoder.Decoder
	decoderFrameIx int
}

// BlackPixel returns a 1x1 fully-buffered Pixmap, transparent if format
// has an alpha channel and opaque black otherwise.
func BlackPixel(format codec.PixelFormat) Pixmap {
	buf := make([]byte, bufferSize(1, 1, format))
	if format.NumChannels == 2 || format.NumChannels == 4 {
		// Leave alpha at zero: transparent black.
	}
	return Pixmap{pixels: buf, format: format, xsize: 1, ysize: 1}
}

// FromBuffer copies pixels into a new memory-backed Pixmap.
func FromBuffer(xsize, ysize uint32, format codec.PixelFormat, pixels []byte) Pixmap {
	p := Pixmap{}
	p.SetPixelsCopy(xsize, ysize, format, pixels)
	return p
}

// FromDecoder wraps an already-open Decoder, reading frame frameIdx in
// format. The Pixmap takes ownership of dec: ReleaseDecoder gives it back.
func FromDecoder(dec *decoder.Decoder, frameIdx int, format codec.PixelFormat) Pixmap {
	p := Pixmap{}
	p.SetPixelsDecoder(dec, frameIdx, format)
	return p
}

// FromPath configures a Pixmap to lazily open path on first access,
// using newSession to construct the codec.Session the opened Decoder
// drives.
func FromPath(path string, newSession SessionFactory, opts options.OpenOptions, frameIdx int, format codec.PixelFormat) Pixmap {
	p := Pixmap{}
	p.setPixelsFile(path, newSession, opts, frameIdx, format)
	return p
}

// Close resets this Pixmap to empty, as if newly constructed, closing any
// decoder it owns.
func (p *Pixmap) Close() {
	p.close()
}

func (p *Pixmap) close() {
	if p.dec != nil {
		p.dec.Close()
	}
	if p.file != nil {
		p.file.Close()
	}
	*p = Pixmap{}
}

// ReleaseDecoder relinquishes the decoder this Pixmap owns (if any) to
// the caller, keeping the already-buffered pixels (if there are any) and
// forgetting how to re-derive them. Returns nil if this Pixmap isn't
// backed by a Decoder.
func (p *Pixmap) ReleaseDecoder() *decoder.Decoder {
	d := p.dec
	p.dec = nil
	p.path = ""
	p.newSession = nil
	p.file = nil
	return d
}

// Decoder returns the Decoder backing this Pixmap, opening it first if it
// is a not-yet-opened path source. Returns false if this Pixmap has no
// Decoder (a plain memory buffer).
func (p *Pixmap) Decoder() (*decoder.Decoder, bool) {
	if err := p.ensureDecoder(); err != nil {
		return nil, false
	}
	return p.dec, p.dec != nil
}

func (p *Pixmap) ensureDecoder() error {
	if p.dec != nil || p.path == "" {
		return nil
	}
	f, err := openPath(p.path)
	if err != nil {
		return err
	}
	d := decoder.New(p.newSession())
	if err := d.OpenFile(f, p.openOpts); err != nil {
		f.Close()
		return err
	}
	p.file = f
	p.dec = d
	return nil
}

func (p *Pixmap) GetPixelFormat() codec.PixelFormat { return p.format }

// SetPixelFormat changes the format pixels will be decoded in. Only valid
// before pixels have been buffered.
func (p *Pixmap) SetPixelFormat(format codec.PixelFormat) error {
	if p.pixels != nil {
		return jxlerr.New(jxlerr.Usage, "can't change pixel format after pixels are buffered")
	}
	p.format = format
	return nil
}

func (p *Pixmap) Xsize() uint32 { return p.xsize }
func (p *Pixmap) Ysize() uint32 { return p.ysize }

// IsEmpty reports whether this object has no configured pixel source.
func (p *Pixmap) IsEmpty() bool {
	return p.pixels == nil && p.dec == nil && p.path == ""
}

// SetPixelsCopy replaces this Pixmap's contents with a copy of pixels,
// forgetting any previous source.
func (p *Pixmap) SetPixelsCopy(xsize, ysize uint32, format codec.PixelFormat, pixels []byte) {
	p.close()
	p.xsize, p.ysize, p.format = xsize, ysize, format
	p.pixels = append([]byte(nil), pixels...)
}

// SetPixelsMove adopts pixels directly without copying, forgetting any
// previous source.
func (p *Pixmap) SetPixelsMove(xsize, ysize uint32, format codec.PixelFormat, pixels []byte) {
	p.close()
	p.xsize, p.ysize, p.format = xsize, ysize, format
	p.pixels = pixels
}

// SetPixelsDecoder adopts dec as this Pixmap's source, forgetting any
// previous one. The Pixmap takes ownership of dec.
func (p *Pixmap) SetPixelsDecoder(dec *decoder.Decoder, frameIdx int, format codec.PixelFormat) {
	p.close()
	p.format = format
	p.dec = dec
	p.decoderFrameIx = frameIdx
}

func (p *Pixmap) setPixelsFile(path string, newSession SessionFactory, opts options.OpenOptions, frameIdx int, format codec.PixelFormat) {
	p.close()
	p.format = format
	p.path = path
	p.newSession = newSession
	p.openOpts = opts
	p.decoderFrameIx = frameIdx
}

// Data returns the buffered pixel bytes, in GetPixelFormat()'s layout.
// Buffers pixels first if they aren't resident yet.
func (p *Pixmap) Data() ([]byte, error) {
	if err := p.EnsureBuffered(); err != nil {
		return nil, err
	}
	return p.pixels, nil
}

// GetBufferSize returns the byte size of the buffer EnsureBuffered would
// produce for the current dimensions and format.
func (p *Pixmap) GetBufferSize() int {
	return bufferSize(p.xsize, p.ysize, p.format)
}

func bufferSize(xsize, ysize uint32, format codec.PixelFormat) int {
	n, err := decoder.FrameBufferSize(xsize, ysize, format)
	if err != nil {
		return 0
	}
	return n
}

// EnsureBuffered makes sure this Pixmap's pixels are resident in memory,
// decoding them from its Decoder (opening one from a file path first, if
// needed) if they aren't already.
func (p *Pixmap) EnsureBuffered() error {
	if p.pixels != nil {
		return nil
	}
	if err := p.ensureDecoder(); err != nil {
		return err
	}
	if p.dec == nil {
		return nil
	}
	// Query the real frame dimensions: a non-coalesced layer can differ
	// from the canvas size.
	rec, err := p.dec.FrameInfo(p.decoderFrameIx)
	if err != nil {
		return err
	}
	p.xsize = rec.Header.Layer.Xsize()
	p.ysize = rec.Header.Layer.Ysize()

	size, err := decoder.FrameBufferSize(p.xsize, p.ysize, p.format)
	if err != nil {
		return err
	}
	buf := make([]byte, size)
	if err := p.dec.FramePixels(p.decoderFrameIx, p.format, buf, nil); err != nil {
		return err
	}
	p.pixels = buf
	return nil
}

// Unbuffer drops buffered pixels, keeping only the dimensions/format
// metadata, if this Pixmap can re-derive them later from a Decoder. A
// Pixmap with no Decoder ignores this call: its pixels are its only copy.
func (p *Pixmap) Unbuffer() {
	if p.dec == nil && p.path == "" {
		return
	}
	p.pixels = nil
}

// ReleasePixels buffers (if needed) and returns this Pixmap's pixel
// buffer, transferring it to the caller. The Pixmap forgets it ever had
// pixels but keeps any Decoder/path source, so it can decode again if
// asked.
func (p *Pixmap) ReleasePixels() ([]byte, error) {
	if err := p.EnsureBuffered(); err != nil {
		return nil, err
	}
	buf := p.pixels
	p.pixels = nil
	return buf, nil
}
