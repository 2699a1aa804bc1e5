// Package watermark stamps a logo overlay onto finished renders.
package watermark

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strings"
)

// Options positions and sizes the overlay relative to the base image.
type Options struct {
	Position string  // top-left, top-right, bottom-left, bottom-right, center
	Opacity  float64 // 0..1, applied on top of the logo's own alpha
	Scale    float64 // logo width as a fraction of the base width
}

const edgeMargin = 0.02

// Stamp draws the logo onto the base image and re-encodes it in the base
// image's format. JPEG bases stay JPEG, everything else becomes PNG.
func Stamp(base []byte, baseMIME string, logo []byte, opts Options) ([]byte, string, error) {
	baseImg, _, err := image.Decode(bytes.NewReader(base))
	if err != nil {
		return nil, "", fmt.Errorf("watermark: decode base image: %w", err)
	}
	logoImg, _, err := image.Decode(bytes.NewReader(logo))
	if err != nil {
		return nil, "", fmt.Errorf("watermark: decode logo: %w", err)
	}

	if opts.Scale <= 0 || opts.Scale > 1 {
		opts.Scale = 0.2
	}
	if opts.Opacity <= 0 || opts.Opacity > 1 {
		opts.Opacity = 0.8
	}

	bounds := baseImg.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, baseImg, bounds.Min, draw.Src)

	targetW := int(float64(bounds.Dx()) * opts.Scale)
	if targetW < 1 {
		targetW = 1
	}
	logoBounds := logoImg.Bounds()
	targetH := targetW * logoBounds.Dy() / maxInt(logoBounds.Dx(), 1)
	if targetH < 1 {
		targetH = 1
	}
	scaled := scaleNearest(logoImg, targetW, targetH)

	offsetX, offsetY := anchor(opts.Position, bounds.Dx(), bounds.Dy(), targetW, targetH)
	blend(canvas, scaled, offsetX, offsetY, opts.Opacity)

	var buf bytes.Buffer
	if strings.Contains(strings.ToLower(baseMIME), "jpeg") || strings.Contains(strings.ToLower(baseMIME), "jpg") {
		if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 90}); err != nil {
			return nil, "", fmt.Errorf("watermark: encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, "", fmt.Errorf("watermark: encode png: %w", err)
	}
	return buf.Bytes(), "image/png", nil
}

func anchor(position string, baseW, baseH, logoW, logoH int) (int, int) {
	marginX := int(float64(baseW) * edgeMargin)
	marginY := int(float64(baseH) * edgeMargin)
	switch position {
	case "top-left":
		return marginX, marginY
	case "top-right":
		return baseW - logoW - marginX, marginY
	case "bottom-left":
		return marginX, baseH - logoH - marginY
	case "center":
		return (baseW - logoW) / 2, (baseH - logoH) / 2
	default: // bottom-right
		return baseW - logoW - marginX, baseH - logoH - marginY
	}
}

// scaleNearest resizes src to w by h with nearest-neighbor sampling. Logos
// are small enough that filtering quality does not matter here.
func scaleNearest(src image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	srcBounds := src.Bounds()
	for y := 0; y < h; y++ {
		sy := srcBounds.Min.Y + y*srcBounds.Dy()/h
		for x := 0; x < w; x++ {
			sx := srcBounds.Min.X + x*srcBounds.Dx()/w
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

func blend(canvas *image.RGBA, logo *image.RGBA, offsetX, offsetY int, opacity float64) {
	bounds := canvas.Bounds()
	logoBounds := logo.Bounds()
	for y := 0; y < logoBounds.Dy(); y++ {
		cy := offsetY + y
		if cy < bounds.Min.Y || cy >= bounds.Max.Y {
			continue
		}
		for x := 0; x < logoBounds.Dx(); x++ {
			cx := offsetX + x
			if cx < bounds.Min.X || cx >= bounds.Max.X {
				continue
			}
			lr, lg, lb, la := logo.At(x, y).RGBA()
			if la == 0 {
				continue
			}
			alpha := float64(la) / 0xffff * opacity
			cr, cg, cb, _ := canvas.At(cx, cy).RGBA()
			// Logo channels are alpha-premultiplied; un-premultiply before
			// blending against the canvas.
			mix := func(c, l uint32) uint8 {
				straight := float64(l) * 0xffff / float64(la)
				return uint8((float64(c)*(1-alpha) + straight*alpha) / 0xffff * 0xff)
			}
			canvas.Set(cx, cy, colorRGBA{
				r: mix(cr, lr),
				g: mix(cg, lg),
				b: mix(cb, lb),
			})
		}
	}
}

type colorRGBA struct{ r, g, b uint8 }

func (c colorRGBA) RGBA() (uint32, uint32, uint32, uint32) {
	return uint32(c.r) * 0x101, uint32(c.g) * 0x101, uint32(c.b) * 0x101, 0xffff
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
