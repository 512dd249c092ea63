package projector

import "math"

// Supersample is the number of render samples per output pixel along
// each axis for models up to LargeModel cells wide.
const Supersample = 2

// LargeModel is the width above which models are drawn at half size.
const LargeModel = 64

// Geometry fixes the output scale and the supersampling of one render.
type Geometry struct {
	Scale float64
	// Factor is the number of render pixels merged into one output pixel
	// along each axis.
	Factor int
}

func NewGeometry(scale float64, width int) Geometry {
	f := Supersample
	if width > LargeModel {
		f *= 2
	}
	return Geometry{Scale: scale, Factor: f}
}

// RenderScale is the scale at which voxels are sampled.
func (g Geometry) RenderScale() float64 { return g.Scale * Supersample }

// Visit receives one traversal sample: its render pixel and the voxel it
// falls in.
type Visit func(px, py, x, y, z int)

// Traverse walks voxel space in steps of 1/scale, back to front, and calls
// fn for every sample that lands on the canvas. Later samples are never
// behind earlier ones on the same pixel.
func (p Projector) Traverse(scale float64, fn Visit) {
	cw, ch := p.Canvas(scale)
	nx := steps(p.Width, scale)
	ny := steps(p.Depth, scale)
	nz := steps(p.Height, scale)
	flipX, flipY := p.flips()

	for k := 0; k < nz; k++ {
		tz := float64(k) / scale
		z := cell(tz, p.Height)
		for j := 0; j < ny; j++ {
			jj := j
			if flipY {
				jj = ny - 1 - j
			}
			ty := float64(jj) / scale
			y := cell(ty, p.Depth)

			i0 := 0
			if flipX {
				i0 = nx - 1
			}
			sx0, sy0 := p.Precise(float64(i0)/scale, ty, tz, scale)
			sx1, sy1 := p.Precise(float64(i0+1)/scale, ty, tz, scale)
			dx, dy := sx1-sx0, sy1-sy0
			if flipX {
				dx, dy = -dx, -dy
			}

			for i := 0; i < nx; i++ {
				ii := i
				if flipX {
					ii = nx - 1 - i
				}
				px := pixel(sx0 + float64(i)*dx)
				py := pixel(sy0 + float64(i)*dy)
				if px < 0 || py < 0 || px >= cw || py >= ch {
					continue
				}
				fn(px, py, cell(float64(ii)/scale, p.Width), y, z)
			}
		}
	}
}

// pixel floors a screen coordinate, absorbing rounding noise from the
// incremental walk.
func pixel(v float64) int { return int(math.Floor(v + 1e-9)) }

func steps(n int, scale float64) int {
	s := int(math.Ceil(float64(n) * scale))
	if s < 1 {
		s = 1
	}
	return s
}

func cell(t float64, n int) int {
	c := int(math.Floor(t))
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}
