// Package boxes holds the BoxRecord data type, generalizing
// core/ReadJXLBoxes.go's ContainerBoxHeader into the codec-neutral record
// the Decoder facade exposes for the ISO-BMFF-style container layer.
package boxes

// Record describes one container box as observed by the decoder.
//
// Type is always the decompressed inner type: if the outer wrapper type
// was "brob" (Brotli-compressed box), Type holds the type found inside
// the wrapper and Compressed is true.
type Record struct {
	Type [4]byte

	Compressed bool

	// Size is the exact payload byte count, or 0 when Unbounded is true.
	Size uint64

	// Unbounded is true iff the container indicated "size extends to
	// EOF" for this box.
	Unbounded bool
}

// TypeString returns Type as a string, for logging and comparisons against
// literal 4-byte tags such as "jxll".
func (r Record) TypeString() string {
	return string(r.Type[:])
}
