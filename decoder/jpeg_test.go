package decoder

import (
	"bytes"
	"testing"

	"github.com/alistair7/jxltk/bundle"
	"github.com/alistair7/jxltk/codec"
	"github.com/alistair7/jxltk/codec/fake"
	"github.com/alistair7/jxltk/options"
)

func TestHasJPEGReconstructionFalse(t *testing.T) {
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 1, Ysize: 1}},
		{Event: codec.Success},
	}, options.OpenOptions{Hints: options.WantJpeg})
	defer d.Close()

	has, err := d.HasJPEGReconstruction()
	if err != nil {
		t.Fatalf("HasJPEGReconstruction: %v", err)
	}
	if has {
		t.Fatal("a file with no JPEG reconstruction data should report false")
	}
}

func TestReconstructedJPEG(t *testing.T) {
	jpeg := []byte("\xFF\xD8fake-jpeg-bytes\xFF\xD9")
	// The first JpegReconstruction step only announces presence; the
	// second delivers the bytes, mirroring how BoxContent's test fixtures
	// deliver a box's content on the step that reports the *next* box.
	d, _ := openFake(t, []fake.Step{
		{Event: codec.BasicInfo, BasicInfo: bundle.BasicInfo{Xsize: 1, Ysize: 1}},
		{Event: codec.JpegReconstruction},
		{Event: codec.JpegReconstruction, JpegBytes: jpeg},
	}, options.OpenOptions{Hints: options.WantJpeg})
	defer d.Close()

	has, err := d.HasJPEGReconstruction()
	if err != nil || !has {
		t.Fatalf("HasJPEGReconstruction() = %v, %v; want true, nil", has, err)
	}

	var out bytes.Buffer
	n, err := d.WriteReconstructedJPEG(&out)
	if err != nil {
		t.Fatalf("WriteReconstructedJPEG: %v", err)
	}
	if n != int64(len(jpeg)) {
		t.Fatalf("wrote %d bytes, want %d", n, len(jpeg))
	}
	if out.String() != string(jpeg) {
		t.Fatalf("got %q, want %q", out.String(), jpeg)
	}
}
