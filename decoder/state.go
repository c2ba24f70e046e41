package decoder

// State is the facade's bitset of flags, represented as named booleans
// behind a small integer, generalizing the "bitset of state flags" design
// note: readability over bit-packing performance, which is irrelevant at
// this granularity.
type State uint32

const (
	IsOpen State = 1 << iota
	IsCoalescing
	GotBasicInfo
	GotColor
	GotOrigColorEnc
	GotDataColorEnc
	SeenAllBoxes
	SeenAllFrames
	SeenAllJpeg
	DecodedSomePixels
	WholeFileBuffered
	HaveCms
)

func (s State) Has(bit State) bool { return s&bit != 0 }

func (s *State) Set(bit State)   { *s |= bit }
func (s *State) Clear(bit State) { *s &^= bit }
