package report

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Layout of the unscaled canvas, in pixels. basicfont glyphs are 7px wide.
const (
	canvasWidth = 640
	margin      = 26
	lineHeight  = 20
	glyphWidth  = 7
	textColumns = (canvasWidth - 2*margin) / glyphWidth
)

var (
	colorBody    = color.RGBA{R: 0x1e, G: 0x29, B: 0x3b, A: 0xff}
	colorMuted   = color.RGBA{R: 0x64, G: 0x74, B: 0x8b, A: 0xff}
	colorHeading = color.RGBA{R: 0x0f, G: 0x76, B: 0x6e, A: 0xff}
	colorAlert   = color.RGBA{R: 0xb9, G: 0x1c, B: 0x1c, A: 0xff}
	colorRule    = color.RGBA{R: 0xcb, G: 0xd5, B: 0xe1, A: 0xff}
)

// rasterize draws lines onto a white canvas and scales it up.
func rasterize(lines []Line, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	height := 2*margin + len(lines)*lineHeight
	src := image.NewRGBA(image.Rect(0, 0, canvasWidth, height))
	xdraw.Draw(src, src.Bounds(), image.White, image.Point{}, xdraw.Src)

	face := basicfont.Face7x13
	for i, l := range lines {
		top := margin + i*lineHeight
		if l.Style == StyleRule {
			y := top + lineHeight/2
			xdraw.Draw(src, image.Rect(margin, y, canvasWidth-margin, y+1),
				image.NewUniform(colorRule), image.Point{}, xdraw.Src)
			continue
		}
		if l.Text == "" {
			continue
		}

		text := printable(l.Text)
		baseline := top + lineHeight - 6
		d := &font.Drawer{
			Dst:  src,
			Src:  image.NewUniform(styleColor(l.Style)),
			Face: face,
			Dot:  fixed.P(margin, baseline),
		}
		d.DrawString(text)

		// Titles and headings get a one pixel overdraw for weight.
		if l.Style == StyleTitle || l.Style == StyleHeading {
			d.Dot = fixed.P(margin+1, baseline)
			d.DrawString(text)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, canvasWidth*scale, height*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

func styleColor(s Style) color.Color {
	switch s {
	case StyleTitle, StyleHeading:
		return colorHeading
	case StyleMuted:
		return colorMuted
	case StyleAlert:
		return colorAlert
	default:
		return colorBody
	}
}

// printable maps text onto the glyphs basicfont can draw.
func printable(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '’' || r == '‘':
			return '\''
		case r == '“' || r == '”':
			return '"'
		case r >= 0x20 && r < 0x7f:
			return r
		default:
			return '?'
		}
	}, s)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
