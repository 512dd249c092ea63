// Package sprite downsamples a rendered view into final sprite pixels.
package sprite

import (
	"image"

	"transrender.dev/internal/palette"
	"transrender.dev/internal/render/raster"
)

// Sprite is one view at output resolution.
type Sprite struct {
	Direction     int
	Width, Height int
	Pix           []palette.ShadeResult
}

// Render draws one view with st and combines factor x factor blocks of
// render pixels into each sprite pixel.
func Render(st raster.Strategy, dir, factor int) (*Sprite, error) {
	g, err := st.Pixels(dir)
	if err != nil {
		return nil, err
	}
	return FromGrid(dir, g, factor), nil
}

func FromGrid(dir int, g *raster.Grid, factor int) *Sprite {
	if factor < 1 {
		factor = 1
	}
	w := (g.Width + factor - 1) / factor
	h := (g.Height + factor - 1) / factor
	s := &Sprite{Direction: dir, Width: w, Height: h, Pix: make([]palette.ShadeResult, w*h)}
	block := make([]palette.ShadeResult, 0, factor*factor)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			block = block[:0]
			for dy := 0; dy < factor; dy++ {
				for dx := 0; dx < factor; dx++ {
					block = append(block, g.At(x*factor+dx, y*factor+dy))
				}
			}
			s.Pix[y*w+x] = palette.Combine(block)
		}
	}
	return s
}

func (s *Sprite) At(x, y int) palette.ShadeResult {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return palette.ShadeResult{}
	}
	return s.Pix[y*s.Width+x]
}

// Bounds is the smallest rectangle holding every drawn pixel. It is empty
// for a fully transparent sprite.
func (s *Sprite) Bounds() image.Rectangle {
	var r image.Rectangle
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if s.Pix[y*s.Width+x].Empty() {
				continue
			}
			r = r.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return r
}

// Empty reports whether nothing was drawn.
func (s *Sprite) Empty() bool { return s.Bounds().Empty() }
