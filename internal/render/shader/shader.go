// Package shader resolves the colour of a voxel as seen from one view.
package shader

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"transrender.dev/internal/palette"
	"transrender.dev/internal/render/projector"
	"transrender.dev/internal/voxel"
)

const (
	// Gain is how many palette steps a fully lit or fully dark face moves.
	Gain = 4.0
	// ShadowFactor attenuates lighting under an overhang.
	ShadowFactor = 0.5
)

// Shader memoizes shading per (direction, x, y, z). It belongs to a single
// render job and is not safe for concurrent use.
type Shader struct {
	vox    *voxel.Processed
	cache  [projector.Directions][]palette.ShadeResult
	filled [projector.Directions][]bool
}

func New(vox *voxel.Processed) *Shader {
	return &Shader{vox: vox}
}

func (s *Shader) Width() int  { return s.vox.Raw.Width }
func (s *Shader) Depth() int  { return s.vox.Raw.Depth }
func (s *Shader) Height() int { return s.vox.Raw.Height }

// IsTransparent reports whether (x,y,z) is empty. Cells outside the model
// are empty.
func (s *Shader) IsTransparent(x, y, z int) bool {
	return s.vox.Raw.At(x, y, z) == palette.Transparent
}

// Shade returns the colour of (x,y,z) seen from direction dir.
func (s *Shader) Shade(dir, x, y, z int) palette.ShadeResult {
	g := s.vox.Raw
	if !g.InBounds(x, y, z) {
		return palette.ShadeResult{}
	}
	i := g.Index(x, y, z)
	if s.cache[dir] == nil {
		s.cache[dir] = make([]palette.ShadeResult, len(g.Data))
		s.filled[dir] = make([]bool, len(g.Data))
	}
	if s.filled[dir][i] {
		return s.cache[dir][i]
	}
	out := s.shade(dir, g.Data[i], s.vox.Cells[i])
	s.cache[dir][i] = out
	s.filled[dir][i] = true
	return out
}

func (s *Shader) shade(dir int, orig uint8, c voxel.Cell) palette.ShadeResult {
	if orig == palette.Transparent {
		return palette.ShadeResult{}
	}

	r, g, b := palette.RGB(orig)
	var m uint8
	if palette.IsMask(orig) {
		grey := palette.Greyscale(orig)
		r, g, b = grey, grey, grey
		m = palette.MaskValue(orig)
	}
	if palette.IsPriority(orig) {
		return palette.ShadeResult{Index: orig, R: r, G: g, B: b, M: m, TrueColor: true}
	}

	offset := Lighting(c, projector.Light(dir)) + 1
	if c.Shadowed {
		offset *= ShadowFactor
	}
	return palette.ShadeResult{
		Index:     palette.Dither(orig, float64(orig)+(offset-1)*Gain),
		R:         channel(r, offset),
		G:         channel(g, offset),
		B:         channel(b, offset),
		M:         m,
		TrueColor: true,
	}
}

// Lighting is the cosine between a cell's averaged normal and the light.
// Cells without a usable normal are treated as side on.
func Lighting(c voxel.Cell, light mgl64.Vec3) float64 {
	n := c.Averaged
	nl := n.Len() * light.Len()
	if nl < 1e-12 {
		return 0
	}
	return n.Dot(light) / nl
}

func channel(v uint8, f float64) uint8 {
	x := math.Round(float64(v) * f)
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return uint8(x)
}
