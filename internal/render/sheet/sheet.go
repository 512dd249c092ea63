// Package sheet lays the eight views of a model out on one sprite sheet
// and writes it as PNG.
package sheet

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"transrender.dev/internal/palette"
	"transrender.dev/internal/render/projector"
	"transrender.dev/internal/render/sprite"
)

// Slot template in sheet units; every value is multiplied by 2*scale.
var (
	slotLeft   = [projector.Directions]int{0, 50, 100, 150, 200, 250, 300, 350}
	slotWidth  = [projector.Directions]int{24, 22, 32, 22, 24, 22, 32, 22}
	slotHeight = [projector.Directions]int{26, 22, 24, 22, 26, 22, 24, 22}
)

const sheetWidth, sheetHeight = 400, 40

var (
	white = func() palette.ShadeResult {
		r, g, b := palette.RGB(255)
		return palette.ShadeResult{Index: 255, R: r, G: g, B: b, TrueColor: true}
	}()
	blank = palette.ShadeResult{Index: palette.Transparent, A: 255, TrueColor: true}
)

// Layout places slots for one output scale.
type Layout struct {
	Scale float64
}

func (l Layout) units(v int) int { return int(float64(v) * 2 * l.Scale) }

// Size is the full sheet size in pixels.
func (l Layout) Size() (int, int) { return l.units(sheetWidth), l.units(sheetHeight) }

// Slot is the box reserved for direction dir.
func (l Layout) Slot(dir int) image.Rectangle {
	x := l.units(slotLeft[dir])
	return image.Rect(x, 0, x+l.units(slotWidth[dir]), l.units(slotHeight[dir]))
}

// Sheet is a composed sprite sheet.
type Sheet struct {
	Width, Height int
	Pix           []palette.ShadeResult
}

func (s *Sheet) At(x, y int) palette.ShadeResult { return s.Pix[y*s.Width+x] }

// Compose draws one sprite per direction into its slot. The sheet starts
// white, slots are cleared to transparent, and only drawn sprite pixels
// are copied. Pixels falling outside their slot are clipped.
func Compose(l Layout, sprites []*sprite.Sprite) (*Sheet, error) {
	if len(sprites) != projector.Directions {
		return nil, fmt.Errorf("sheet: need %d sprites, got %d", projector.Directions, len(sprites))
	}
	w, h := l.Size()
	s := &Sheet{Width: w, Height: h, Pix: make([]palette.ShadeResult, w*h)}
	for i := range s.Pix {
		s.Pix[i] = white
	}
	for dir, sp := range sprites {
		slot := l.Slot(dir).Intersect(image.Rect(0, 0, w, h))
		for y := slot.Min.Y; y < slot.Max.Y; y++ {
			for x := slot.Min.X; x < slot.Max.X; x++ {
				s.Pix[y*w+x] = blank
			}
		}
		if sp == nil {
			continue
		}
		for y := 0; y < sp.Height; y++ {
			for x := 0; x < sp.Width; x++ {
				c := sp.At(x, y)
				if c.Empty() {
					continue
				}
				pt := image.Pt(slot.Min.X+x, slot.Min.Y+y)
				if !pt.In(slot) {
					continue
				}
				s.Pix[pt.Y*w+pt.X] = c
			}
		}
	}
	return s, nil
}

// Paletted is the 8 bpp rendering of the sheet.
func (s *Sheet) Paletted() *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, s.Width, s.Height), palette.Colors())
	for i, c := range s.Pix {
		img.Pix[i] = c.Index
	}
	return img
}

// NRGBA is the true colour rendering of the sheet.
func (s *Sheet) NRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height))
	for i, c := range s.Pix {
		if !c.TrueColor {
			c = palette.Lookup(c.Index)
		}
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		p[0], p[1], p[2], p[3] = c.R, c.G, c.B, 255-c.A
	}
	return img
}

// Mask holds the mask value of every pixel, using the palette so sprite
// tools accept it.
func (s *Sheet) Mask() *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, s.Width, s.Height), palette.Colors())
	for i, c := range s.Pix {
		img.Pix[i] = c.M
	}
	return img
}

// Save writes base.png, and base.mask.png for 32 bpp output. It returns
// the files written.
func (s *Sheet) Save(base string, bpp int) ([]string, error) {
	switch bpp {
	case 8:
		path := base + ".png"
		return []string{path}, writePNG(path, s.Paletted())
	case 32:
		path, mask := base+".png", base+".mask.png"
		if err := writePNG(path, s.NRGBA()); err != nil {
			return nil, err
		}
		return []string{path, mask}, writePNG(mask, s.Mask())
	default:
		return nil, fmt.Errorf("sheet: unsupported bit depth %d", bpp)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
