package voxel

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	normalRadius   = 3
	averageRadius  = 2
	averageMinimum = 0.5
)

// Down is the normal given to surface cells whose empty neighbourhood is
// perfectly symmetric, such as a lone voxel. Normals point into the solid,
// so this treats the cell as a top face.
var Down = mgl64.Vec3{0, 0, -1}

// Cell is the derived shading data for one grid position.
type Cell struct {
	Colour   uint8
	Surface  bool
	Shadowed bool
	// Normal is unit length on surface cells and zero elsewhere.
	Normal mgl64.Vec3
	// Averaged smooths Normal over nearby cells.
	Averaged mgl64.Vec3
}

// Processed pairs a raw grid with its derived cells. It is read only once
// built.
type Processed struct {
	Raw   *Grid
	Cells []Cell
}

func (p *Processed) Cell(x, y, z int) *Cell {
	return &p.Cells[p.Raw.Index(x, y, z)]
}

// Preprocess derives thinning, surface, normals and shadow flags from g.
func Preprocess(g *Grid) (*Processed, error) {
	if g == nil || g.Width <= 0 || g.Depth <= 0 || g.Height <= 0 {
		if g == nil {
			return nil, &DimensionError{}
		}
		return nil, &DimensionError{Width: g.Width, Depth: g.Depth, Height: g.Height}
	}
	thin := Thin(g)
	p := &Processed{Raw: g, Cells: make([]Cell, len(g.Data))}
	for i, c := range thin.Data {
		p.Cells[i].Colour = c
		p.Cells[i].Surface = c != 0
	}

	offsets := sphere(normalRadius)
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Depth; y++ {
			for z := 0; z < g.Height; z++ {
				c := p.Cell(x, y, z)
				if c.Surface {
					c.Normal = surfaceNormal(g, x, y, z, offsets)
				}
			}
		}
	}

	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Depth; y++ {
			for z := 0; z < g.Height; z++ {
				p.Cell(x, y, z).Averaged = averagedNormal(p, x, y, z)
			}
		}
	}

	markShadows(p)
	return p, nil
}

// Thin zeroes every cell whose six face neighbours are all filled. Cells
// on the grid boundary are always kept.
func Thin(g *Grid) *Grid {
	out := g.Clone()
	for x := 1; x < g.Width-1; x++ {
		for y := 1; y < g.Depth-1; y++ {
			for z := 1; z < g.Height-1; z++ {
				if g.At(x, y, z) == 0 {
					continue
				}
				if g.At(x-1, y, z) != 0 && g.At(x+1, y, z) != 0 &&
					g.At(x, y-1, z) != 0 && g.At(x, y+1, z) != 0 &&
					g.At(x, y, z-1) != 0 && g.At(x, y, z+1) != 0 {
					out.Set(x, y, z, 0)
				}
			}
		}
	}
	return out
}

type offset struct{ dx, dy, dz int }

func sphere(r int) []offset {
	var out []offset
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				d := dx*dx + dy*dy + dz*dz
				if d == 0 || d > r*r {
					continue
				}
				out = append(out, offset{dx, dy, dz})
			}
		}
	}
	return out
}

func surfaceNormal(g *Grid, x, y, z int, offsets []offset) mgl64.Vec3 {
	var sum mgl64.Vec3
	for _, o := range offsets {
		if g.At(x+o.dx, y+o.dy, z+o.dz) == 0 {
			sum = sum.Sub(mgl64.Vec3{float64(o.dx), float64(o.dy), float64(o.dz)})
		}
	}
	if sum.Len() < 1e-9 {
		return Down
	}
	return sum.Normalize()
}

func averagedNormal(p *Processed, x, y, z int) mgl64.Vec3 {
	g := p.Raw
	var sum mgl64.Vec3
	for dx := -averageRadius; dx <= averageRadius; dx++ {
		for dy := -averageRadius; dy <= averageRadius; dy++ {
			for dz := -averageRadius; dz <= averageRadius; dz++ {
				if !g.InBounds(x+dx, y+dy, z+dz) {
					continue
				}
				sum = sum.Add(p.Cell(x+dx, y+dy, z+dz).Normal)
			}
		}
	}
	if sum.Len() < averageMinimum {
		return p.Cell(x, y, z).Normal
	}
	return sum.Normalize()
}

// markShadows flags cells whose upper neighbour is empty while something
// solid still overhangs them further up the column.
func markShadows(p *Processed) {
	g := p.Raw
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Depth; y++ {
			overhang := false
			for z := g.Height - 1; z >= 0; z-- {
				above := g.At(x, y, z+1)
				p.Cell(x, y, z).Shadowed = above == 0 && overhang
				if above != 0 {
					overhang = true
				}
			}
		}
	}
}
