package decoder

import (
	"testing"

	"github.com/alistair7/jxltk/bundle"
	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/codec/fake"
	"github.com/alistair7/jxltk/options"
)

func openFakeBoxes(t *testing.T, steps []fake.Step) *Decoder {
	d, _ := openFakeContainer(t, steps, options.OpenOptions{Hints: options.WantBoxes})
	return d
}

func TestBoxCountAndInfo(t *testing.T) {
	content := []byte("hello box")
	d := openFakeBoxes(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 1, Ysize: 1}},
		{Event: codec.Box, BoxType: [4]byte{'a', 'b', 'c', 'd'}, BoxSize: 9},
		{Event: codec.Box, BoxType: [4]byte{'w', 'x', 'y', 'z'}, BoxSize: 4, BoxBytes: content},
		{Event: codec.Success},
	})
	defer d.Close()

	n, err := d.BoxCount()
	if err != nil {
		t.Fatalf("BoxCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("BoxCount() = %d, want 2", n)
	}

	info, err := d.BoxInfo(0)
	if err != nil {
		t.Fatalf("BoxInfo(0): %v", err)
	}
	if info.TypeString() != "abcd" {
		t.Fatalf("got type %q, want abcd", info.TypeString())
	}

	buf := make([]byte, len(content))
	written, fullyRead, err := d.BoxContent(0, buf, false)
	if err != nil {
		t.Fatalf("BoxContent: %v", err)
	}
	if !fullyRead {
		t.Fatal("expected the box to be reported fully read")
	}
	if written != len(content) {
		t.Fatalf("got %d bytes written, want %d", written, len(content))
	}
	if string(buf) != string(content) {
		t.Fatalf("got %q, want %q", buf, content)
	}
}

func TestBoxContentGrowingFitsOnFirstTry(t *testing.T) {
	content := []byte("small enough to fit in growStartSize")
	d := openFakeBoxes(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 1, Ysize: 1}},
		{Event: codec.Box, BoxType: [4]byte{'a', 'b', 'c', 'd'}, BoxSize: uint64(len(content))},
		{Event: codec.Box, BoxType: [4]byte{'n', 'e', 'x', 't'}, BoxBytes: content},
	})
	defer d.Close()

	got, err := d.BoxContentGrowing(0, false)
	if err != nil {
		t.Fatalf("BoxContentGrowing: %v", err)
	}
	if string(got) != string(content) {
		t.Fatalf("got %q, want %q", got, content)
	}
}

func TestBoxContentGrowingExceedsCap(t *testing.T) {
	// This box's content is never fully delivered: every attempt, after a
	// rewind, replays the same BoxNeedMoreOutput step, so growth must stop
	// once the destination buffer reaches growCapSize.
	d := openFakeBoxes(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 1, Ysize: 1}},
		{Event: codec.Box, BoxType: [4]byte{'a', 'b', 'c', 'd'}, BoxSize: 1 << 30},
		{Event: codec.BoxNeedMoreOutput},
	})
	defer d.Close()

	if _, err := d.BoxContentGrowing(0, false); err == nil {
		t.Fatal("expected BufferTooLarge once growth exceeds growCapSize")
	}
}

func TestBoxInfoOutOfRange(t *testing.T) {
	d := openFakeBoxes(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 1, Ysize: 1}},
		{Event: codec.Success},
	})
	defer d.Close()

	if _, err := d.BoxInfo(0); err == nil {
		t.Fatal("expected an error for a container with no boxes")
	}
}
