package decoder

import (
	"testing"

	"github.com/alistair7/jxltk/bundle"
	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/codec/fake"
	"github.com/alistair7/jxltk/frame"
	"github.com/alistair7/jxltk/options"
)

func TestFrameIteratorWalksForward(t *testing.T) {
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 4, Ysize: 4, HaveAnimation: true}},
		{Event: codec.Frame, FrameHeader: frame.Header{DurationTicks: 1}},
		{Event: codec.Frame, FrameHeader: frame.Header{DurationTicks: 2, IsLast: true}},
		{Event: codec.Success},
	}, options.OpenOptions{})
	defer d.Close()

	it := d.Frames()
	if it.Index() != -1 {
		t.Fatalf("fresh iterator Index() = %d, want -1", it.Index())
	}

	if !it.Next() {
		t.Fatal("expected a first frame")
	}
	if it.Index() != 0 {
		t.Fatalf("Index() = %d, want 0", it.Index())
	}
	rec, ok := it.Frame()
	if !ok || rec.Header.DurationTicks != 1 {
		t.Fatalf("Frame() = %+v, %v; want DurationTicks=1, true", rec, ok)
	}

	if !it.Next() {
		t.Fatal("expected a second frame")
	}
	if it.Index() != 1 {
		t.Fatalf("Index() = %d, want 1", it.Index())
	}

	if it.Next() {
		t.Fatal("expected Next to report exhaustion after the last frame")
	}
}

func TestFrameIteratorFrameBeforeNext(t *testing.T) {
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 1, Ysize: 1, HaveAnimation: true}},
		{Event: codec.Frame, FrameHeader: frame.Header{DurationTicks: 1, IsLast: true}},
		{Event: codec.Success},
	}, options.OpenOptions{})
	defer d.Close()

	it := d.Frames()
	if _, ok := it.Frame(); ok {
		t.Fatal("Frame() before Next/Advance should report ok=false")
	}
}

func TestFrameIteratorAdvanceRejectsNegative(t *testing.T) {
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 1, Ysize: 1, HaveAnimation: true}},
		{Event: codec.Frame, FrameHeader: frame.Header{DurationTicks: 1, IsLast: true}},
		{Event: codec.Success},
	}, options.OpenOptions{})
	defer d.Close()

	it := d.Frames()
	if _, err := it.Advance(-1); err == nil {
		t.Fatal("expected a Usage error for a negative Advance")
	}
}

func TestFrameIteratorAdvanceSkipsMultiple(t *testing.T) {
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 1, Ysize: 1, HaveAnimation: true}},
		{Event: codec.Frame, FrameHeader: frame.Header{DurationTicks: 1}},
		{Event: codec.Frame, FrameHeader: frame.Header{DurationTicks: 2}},
		{Event: codec.Frame, FrameHeader: frame.Header{DurationTicks: 3, IsLast: true}},
		{Event: codec.Success},
	}, options.OpenOptions{})
	defer d.Close()

	it := d.Frames()
	ok, err := it.Advance(2)
	if err != nil || !ok {
		t.Fatalf("Advance(2) = %v, %v; want true, nil", ok, err)
	}
	if it.Index() != 1 {
		t.Fatalf("Index() = %d, want 1", it.Index())
	}
	rec, ok := it.Frame()
	if !ok || rec.Header.DurationTicks != 2 {
		t.Fatalf("Frame() = %+v, %v; want DurationTicks=2, true", rec, ok)
	}
}
