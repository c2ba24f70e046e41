package decoder

import (
	"testing"

	"github.com/alistair7/jxltk/bundle"
	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/codec/fake"
	"github.com/alistair7/jxltk/frame"
	"github.com/alistair7/jxltk/jxlerr"
	"github.com/alistair7/jxltk/options"
)

// bareCodestream is a minimal byte slice that passes checkSignature as a
// bare codestream (not a container), per the jxlCodestreamMagic check.
var bareCodestream = []byte{0xFF, 0x0A, 0, 0, 0, 0, 0, 0}

// containerSignature is the minimal byte slice that passes checkSignature
// as a boxed container, per the jxlContainerMagic check, so that scripted
// Box steps are actually reachable instead of being short-circuited by the
// bare-codestream SeenAllBoxes shortcut.
var containerSignature = jxlContainerMagic[:]

func openFake(t *testing.T, steps []fake.Step, opts options.OpenOptions) (*Decoder, *fake.Session) {
	t.Helper()
	s := fake.New(steps)
	d := New(s)
	if err := d.OpenMemory(bareCodestream, opts); err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	return d, s
}

func openFakeContainer(t *testing.T, steps []fake.Step, opts options.OpenOptions) (*Decoder, *fake.Session) {
	t.Helper()
	s := fake.New(steps)
	d := New(s)
	if err := d.OpenMemory(containerSignature, opts); err != nil {
		t.Fatalf("OpenMemory failed: %v", err)
	}
	return d, s
}

func TestOpenMemoryRejectsNonJXL(t *testing.T) {
	s := fake.New(nil)
	d := New(s)
	if err := d.OpenMemory([]byte{0, 1, 2, 3, 4, 5, 6, 7}, options.OpenOptions{}); err == nil {
		t.Fatal("expected an error opening non-JXL data")
	}
}

func TestBasicInfo(t *testing.T) {
	want := bundle.BasicInfo{Xsize: 100, Ysize: 50, NumColorChannels: 3}
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: want},
		{Event: codec.Success},
	}, options.OpenOptions{})
	defer d.Close()

	got, err := d.BasicInfo()
	if err != nil {
		t.Fatalf("BasicInfo: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	xsize, err := d.Xsize()
	if err != nil || xsize != 100 {
		t.Fatalf("Xsize() = %d, %v; want 100, nil", xsize, err)
	}
}

func TestBasicInfoCachedAcrossCalls(t *testing.T) {
	// Only one BasicInfo step is scripted; a second call must not re-drive
	// Process (which would otherwise run past the script, get Success
	// without a BasicInfo event and fail).
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 10, Ysize: 10}},
	}, options.OpenOptions{})
	defer d.Close()

	if _, err := d.BasicInfo(); err != nil {
		t.Fatalf("first BasicInfo: %v", err)
	}
	if _, err := d.BasicInfo(); err != nil {
		t.Fatalf("second BasicInfo: %v", err)
	}
}

func TestFrameCountAndInfo(t *testing.T) {
	header := frame.Header{DurationTicks: 1}
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 4, Ysize: 4}},
		{Event: codec.Frame, FrameHeader: header},
		{Event: codec.Frame, FrameHeader: frame.Header{DurationTicks: 1, IsLast: true}},
		{Event: codec.Success},
	}, options.OpenOptions{})
	defer d.Close()

	n, err := d.FrameCount()
	if err != nil {
		t.Fatalf("FrameCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("FrameCount() = %d, want 2", n)
	}

	rec, err := d.FrameInfo(0)
	if err != nil {
		t.Fatalf("FrameInfo(0): %v", err)
	}
	if rec.Header.DurationTicks != 1 {
		t.Fatalf("unexpected frame record: %+v", rec)
	}

	if _, err := d.FrameInfo(2); err == nil || !jxlerr.Is(err, jxlerr.IndexOutOfRange) {
		t.Fatalf("expected IndexOutOfRange for an out-of-range frame index, got %v", err)
	}
}

func TestFrameInfoAtTrueCountIsIndexOutOfRangeOnFirstAccess(t *testing.T) {
	header := frame.Header{DurationTicks: 1}
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 4, Ysize: 4}},
		{Event: codec.Frame, FrameHeader: header},
		{Event: codec.Frame, FrameHeader: frame.Header{DurationTicks: 1, IsLast: true}},
		{Event: codec.Success},
	}, options.OpenOptions{})
	defer d.Close()

	// Request the frame at the true count without ever calling FrameCount
	// first: SeenAllFrames is unset going in, so goToFrame must run the
	// decoder to completion and only then recognize the index is out of
	// range, rather than reporting a spurious CorruptedStream.
	if _, err := d.FrameInfo(2); err == nil || !jxlerr.Is(err, jxlerr.IndexOutOfRange) {
		t.Fatalf("expected IndexOutOfRange for a frame index equal to the true count, got %v", err)
	}
}

func TestFrameInfoNoCoalesceRecordsExtraBlendingFromBasicInfo(t *testing.T) {
	// No FramePixels/ExtraChannelInfo call ever happens, so d.extra is
	// never lazily populated; the blend vector must still be sized from
	// BasicInfo's NumExtraChannels, not the empty d.extra slice.
	header := frame.Header{DurationTicks: 1, IsLast: true}
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 4, Ysize: 4, NumExtraChannels: 2}},
		{Event: codec.Frame, FrameHeader: header},
		{Event: codec.Success},
	}, options.OpenOptions{Flags: options.NoCoalesce})
	defer d.Close()

	rec, err := d.FrameInfo(0)
	if err != nil {
		t.Fatalf("FrameInfo(0): %v", err)
	}
	if len(rec.ExtraBlending) != 2 {
		t.Fatalf("got %d extra-blending entries, want 2 (from BasicInfo.NumExtraChannels)", len(rec.ExtraBlending))
	}
}

func TestCorruptedStreamOnSessionError(t *testing.T) {
	d, _ := openFake(t, []fake.Step{
		{Event: codec.Error, Err: assertError{}},
	}, options.OpenOptions{})
	defer d.Close()

	if _, err := d.BasicInfo(); err == nil {
		t.Fatal("expected an error when the session reports failure")
	}
}

type assertError struct{}

func (assertError) Error() string { return "fake session failure" }
