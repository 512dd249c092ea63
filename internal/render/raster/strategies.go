package raster

import (
	"math"

	"transrender.dev/internal/palette"
	"transrender.dev/internal/render/projector"
	"transrender.dev/internal/render/raylist"
)

// scanner paints samples back to front so nearer samples overwrite
// farther ones.
type scanner struct {
	src Source
	geo projector.Geometry
}

func (s *scanner) Pixels(dir int) (*Grid, error) {
	p, err := view(s.src, dir)
	if err != nil {
		return nil, err
	}
	scale := s.geo.RenderScale()
	out := NewGrid(p.Canvas(scale))

	last := [3]int{-1, -1, -1}
	var shade palette.ShadeResult
	empty := true
	p.Traverse(scale, func(px, py, x, y, z int) {
		if cur := [3]int{x, y, z}; cur != last {
			last = cur
			empty = s.src.IsTransparent(x, y, z)
			if !empty {
				shade = s.src.Shade(dir, x, y, z)
			}
		}
		if !empty {
			out.Set(px, py, shade)
		}
	})
	return out, nil
}

// rayStep is the distance a ray advances per probe, in voxels.
const rayStep = 0.25

// raycaster walks a ray from the viewer through every pixel centre and
// keeps the first filled voxel.
type raycaster struct {
	src Source
	geo projector.Geometry
}

func (r *raycaster) Pixels(dir int) (*Grid, error) {
	p, err := view(r.src, dir)
	if err != nil {
		return nil, err
	}
	scale := r.geo.RenderScale()
	out := NewGrid(p.Canvas(scale))
	w, d, h := float64(r.src.Width()), float64(r.src.Depth()), float64(r.src.Height())

	for py := 0; py < out.Height; py++ {
		for px := 0; px < out.Width; px++ {
			origin, toward := p.Unproject(float64(px)+0.5, float64(py)+0.5, 0, scale)
			lo, hi := 0.0, h
			lo, hi = clip(origin.X(), toward.X(), w, lo, hi)
			lo, hi = clip(origin.Y(), toward.Y(), d, lo, hi)
			if lo > hi {
				continue
			}
			dz := rayStep / toward.Len()
			for z := hi; z >= lo; z -= dz {
				q := origin.Add(toward.Mul(z))
				x, y, zz := int(math.Floor(q.X())), int(math.Floor(q.Y())), int(math.Floor(q.Z()))
				if x < 0 || y < 0 || zz < 0 || x >= int(w) || y >= int(d) || zz >= int(h) {
					continue
				}
				if r.src.IsTransparent(x, y, zz) {
					continue
				}
				out.Set(px, py, r.src.Shade(dir, x, y, zz))
				break
			}
		}
	}
	return out, nil
}

// clip narrows [lo,hi] to the z values where o + t*z stays in [0,n].
func clip(o, t, n, lo, hi float64) (float64, float64) {
	if math.Abs(t) < 1e-12 {
		if o < 0 || o > n {
			return 1, 0
		}
		return lo, hi
	}
	a, b := (0-o)/t, (n-o)/t
	if a > b {
		a, b = b, a
	}
	return math.Max(lo, a), math.Min(hi, b)
}

// listed reads visibility from a precomputed ray list.
type listed struct {
	src   Source
	geo   projector.Geometry
	cache *raylist.Cache
}

func (l *listed) Pixels(dir int) (*Grid, error) {
	rl, err := l.cache.Get(raylist.Key{
		Direction: dir,
		SizeX:     l.src.Width(),
		SizeY:     l.src.Depth(),
		SizeZ:     l.src.Height(),
		Scale:     l.geo.Scale,
	})
	if err != nil {
		return nil, err
	}
	out := NewGrid(rl.Width, rl.Height)
	for px := 0; px < rl.Width; px++ {
		for py := 0; py < rl.Height; py++ {
			for _, c := range rl.At(px, py) {
				x, y, z := int(c[0]), int(c[1]), int(c[2])
				if l.src.IsTransparent(x, y, z) {
					continue
				}
				out.Set(px, py, l.src.Shade(dir, x, y, z))
				break
			}
		}
	}
	return out, nil
}
