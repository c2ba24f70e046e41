// Package options defines the bitsets the Decoder facade accepts when
// opening a source, generalizing options/jxl_options.go's JXLOptions to the
// flags/hints vocabulary of the facade.
package options

// Flag bits affect decoded values: changing a Flag changes what the
// caller observes.
type Flag uint32

const (
	// NoCoalesce decodes individual layers instead of flattened animation
	// frames.
	NoCoalesce Flag = 1 << 0
	// KeepOrientation emits pixels in their stored orientation, without
	// the library applying the EXIF-style transpose/rotate/flip.
	KeepOrientation Flag = 1 << 1
	// UnpremultiplyAlpha converts associated alpha to straight alpha on
	// decode.
	UnpremultiplyAlpha Flag = 1 << 2
)

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }

// Hint bits affect subscription and buffering strategy only; they never
// change a decoded value.
type Hint uint32

const (
	// WantBoxes subscribes to container box events.
	WantBoxes Hint = 1 << 0
	// NoPixels suppresses the full-image event subscription, for callers
	// that only need metadata.
	NoPixels Hint = 1 << 1
	// NoColorProfile suppresses the color-encoding event subscription.
	NoColorProfile Hint = 1 << 2
	// WantJpeg subscribes to JPEG-reconstruction (and full-image) events.
	WantJpeg Hint = 1 << 3
)

func (h Hint) Has(bit Hint) bool { return h&bit != 0 }

// DefaultBufferKiB is the input buffer cap used when the caller passes 0:
// 64 MiB, expressed in KiB.
const DefaultBufferKiB = 64 * 1024

// OpenOptions bundles the parameters common to every Decoder open* call.
type OpenOptions struct {
	Flags     Flag
	Hints     Hint
	BufferKiB uint64
}

// bufferKiB returns o.BufferKiB, or DefaultBufferKiB if it is zero.
func (o OpenOptions) bufferKiB() uint64 {
	if o.BufferKiB == 0 {
		return DefaultBufferKiB
	}
	return o.BufferKiB
}

// BufferBytes returns the configured buffer cap in bytes, applying the
// default when BufferKiB is zero.
func (o OpenOptions) BufferBytes() uint64 {
	return o.bufferKiB() * 1024
}
