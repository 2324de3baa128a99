package platform

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	sheetWidth   = 640
	sheetMargin  = 24
	sheetLine    = 18
	sheetRow     = 26
	sheetSwatch  = 18
	sheetColumns = (sheetWidth - 2*sheetMargin) / 7
)

var (
	sheetInk   = color.RGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	sheetMuted = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
)

// RenderSheet lays the print document out on a white page: a header with the
// title, scene and date, then one row per customised part with a colour swatch.
func RenderSheet(doc PrintDocument) *image.RGBA {
	height := 2*sheetMargin + 4*sheetLine + sheetRow*max(len(doc.Parts), 1)
	img := image.NewRGBA(image.Rect(0, 0, sheetWidth, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	y := sheetMargin + face.Ascent

	drawText(img, sheetMargin, y, sheetInk, doc.Title)
	y += sheetLine
	drawText(img, sheetMargin, y, sheetMuted, fmt.Sprintf("Model: %s", doc.Scene))
	y += sheetLine
	if doc.URL != "" {
		drawText(img, sheetMargin, y, sheetMuted, doc.URL)
	}
	y += sheetLine
	if !doc.Created.IsZero() {
		drawText(img, sheetMargin, y, sheetMuted, doc.Created.Format("2006-01-02 15:04"))
	}
	y += sheetLine

	if len(doc.Parts) == 0 {
		drawText(img, sheetMargin, y+sheetSwatch/2, sheetMuted, "No customised parts.")
		return img
	}
	for _, p := range doc.Parts {
		top := y
		swatch := image.Rect(sheetMargin, top, sheetMargin+sheetSwatch, top+sheetSwatch)
		if c, err := metadata.ParseColour(p.Colour); err == nil {
			draw.Draw(img, swatch, image.NewUniform(c), image.Point{}, draw.Src)
		}
		outline(img, swatch, sheetInk)
		drawText(img, sheetMargin+sheetSwatch+10, top+face.Ascent+2, sheetInk, fmt.Sprintf("%-32s %s", p.Name, p.Colour))
		y += sheetRow
	}
	return img
}

// WriteSheet renders the document and encodes it as PNG.
func WriteSheet(w io.Writer, doc PrintDocument) error {
	return png.Encode(w, RenderSheet(doc))
}

func drawText(dst draw.Image, x, y int, c color.Color, s string) {
	if len(s) > sheetColumns {
		s = s[:sheetColumns-3] + "..."
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func outline(img *image.RGBA, r image.Rectangle, c color.Color) {
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}
