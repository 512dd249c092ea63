package voxel

import (
	"fmt"
	"math"
)

// MaxAxis bounds each grid axis so coordinates fit in a byte.
const MaxAxis = 256

// DimensionError reports a degenerate grid.
type DimensionError struct {
	Width, Depth, Height int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("voxel: bad grid dimensions %dx%dx%d", e.Width, e.Depth, e.Height)
}

// Grid is a dense palette indexed voxel volume. x runs along Width, y
// along Depth and z along Height, with z pointing up. 0 is empty.
type Grid struct {
	Width, Depth, Height int
	Data                 []uint8
}

func NewGrid(width, depth, height int) (*Grid, error) {
	if width <= 0 || depth <= 0 || height <= 0 {
		return nil, &DimensionError{Width: width, Depth: depth, Height: height}
	}
	return &Grid{
		Width:  width,
		Depth:  depth,
		Height: height,
		Data:   make([]uint8, width*depth*height),
	}, nil
}

// FromNested copies a [x][y][z] shaped array into a Grid.
func FromNested(src [][][]uint8) (*Grid, error) {
	w := len(src)
	d, h := 0, 0
	if w > 0 {
		d = len(src[0])
		if d > 0 {
			h = len(src[0][0])
		}
	}
	g, err := NewGrid(w, d, h)
	if err != nil {
		return nil, err
	}
	for x := range src {
		if len(src[x]) != d {
			return nil, fmt.Errorf("voxel: ragged grid at x=%d", x)
		}
		for y := range src[x] {
			if len(src[x][y]) != h {
				return nil, fmt.Errorf("voxel: ragged grid at x=%d y=%d", x, y)
			}
			copy(g.Data[g.Index(x, y, 0):], src[x][y])
		}
	}
	return g, nil
}

func (g *Grid) Index(x, y, z int) int { return (x*g.Depth+y)*g.Height + z }

func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && y >= 0 && z >= 0 && x < g.Width && y < g.Depth && z < g.Height
}

// At returns the colour at (x,y,z), or 0 outside the grid.
func (g *Grid) At(x, y, z int) uint8 {
	if !g.InBounds(x, y, z) {
		return 0
	}
	return g.Data[g.Index(x, y, z)]
}

func (g *Grid) Set(x, y, z int, c uint8) {
	g.Data[g.Index(x, y, z)] = c
}

func (g *Grid) Clone() *Grid {
	out := *g
	out.Data = append([]uint8(nil), g.Data...)
	return &out
}

// Filled counts non-empty cells.
func (g *Grid) Filled() int {
	n := 0
	for _, c := range g.Data {
		if c != 0 {
			n++
		}
	}
	return n
}

// Scale resamples g by per-axis factors using nearest neighbour lookup.
// Every output axis keeps at least one cell.
func Scale(g *Grid, fx, fy, fz float64) (*Grid, error) {
	if fx <= 0 || fy <= 0 || fz <= 0 {
		return nil, fmt.Errorf("voxel: scale factors must be positive, got %g,%g,%g", fx, fy, fz)
	}
	dim := func(n int, f float64) int {
		v := int(math.Round(float64(n) * f))
		if v < 1 {
			v = 1
		}
		return v
	}
	out, err := NewGrid(dim(g.Width, fx), dim(g.Depth, fy), dim(g.Height, fz))
	if err != nil {
		return nil, err
	}
	src := func(i int, f float64, n int) int {
		s := int(float64(i) / f)
		if s >= n {
			s = n - 1
		}
		return s
	}
	for x := 0; x < out.Width; x++ {
		sx := src(x, fx, g.Width)
		for y := 0; y < out.Depth; y++ {
			sy := src(y, fy, g.Depth)
			for z := 0; z < out.Height; z++ {
				out.Set(x, y, z, g.At(sx, sy, src(z, fz, g.Height)))
			}
		}
	}
	return out, nil
}
