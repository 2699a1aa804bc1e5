package watermark

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"renderlab/internal/studio"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestStampDarkensBottomRightCorner(t *testing.T) {
	base := encodePNG(t, solidImage(100, 100, color.White))
	logo := encodePNG(t, solidImage(10, 10, color.Black))

	out, mime, err := Stamp(base, "image/png", logo, Options{
		Position: "bottom-right",
		Opacity:  1.0,
		Scale:    0.2,
	})
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if mime != "image/png" {
		t.Errorf("unexpected mime %q", mime)
	}

	decoded, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode stamped image: %v", err)
	}

	// The logo lands near the bottom-right corner; the top-left stays white.
	r, _, _, _ := decoded.At(90, 90).RGBA()
	if r > 0x1000 {
		t.Errorf("bottom-right pixel should be dark, got r=%#x", r)
	}
	r, _, _, _ = decoded.At(5, 5).RGBA()
	if r < 0xf000 {
		t.Errorf("top-left pixel should stay white, got r=%#x", r)
	}
}

func TestStampPreservesJPEGFormat(t *testing.T) {
	base := encodePNG(t, solidImage(50, 50, color.White))
	logo := encodePNG(t, solidImage(5, 5, color.Black))

	// Base bytes are PNG but declared JPEG output keeps the JPEG pipeline;
	// image.Decode sniffs the actual format, Stamp re-encodes per the MIME.
	out, mime, err := Stamp(base, "image/jpeg", logo, Options{})
	if err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("unexpected mime %q", mime)
	}
	if len(out) == 0 {
		t.Error("empty output")
	}
}

func TestStampRejectsGarbage(t *testing.T) {
	if _, _, err := Stamp([]byte("not an image"), "image/png", nil, Options{}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestStamperPassthroughWhenDisabled(t *testing.T) {
	s := &Stamper{Load: func(string) ([]byte, error) {
		t.Fatal("loader must not be called when watermarking is disabled")
		return nil, nil
	}}
	data := []byte("img")
	out, mime, err := s.Apply(data, "image/png", studio.WatermarkConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if string(out) != "img" || mime != "image/png" {
		t.Error("disabled watermark must pass data through untouched")
	}
}
