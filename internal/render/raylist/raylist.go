// Package raylist precomputes, per view and model shape, which voxels every
// render pixel can see, nearest first.
package raylist

import (
	"fmt"
	"strconv"

	"transrender.dev/internal/render/projector"
	"transrender.dev/internal/voxel"
)

// Key identifies one ray list. Scale is the output scale; lists are built
// at the matching render scale.
type Key struct {
	Direction           int
	SizeX, SizeY, SizeZ int
	Scale               float64
}

func (k Key) String() string {
	return fmt.Sprintf("%d_%d_%d_%d_%s", k.SizeX, k.SizeY, k.SizeZ, k.Direction, strconv.FormatFloat(k.Scale, 'f', -1, 64))
}

// FileName is the cache file name for k.
func (k Key) FileName() string { return k.String() + ".voxcache" }

func (k Key) validate() error {
	if k.Direction < 0 || k.Direction >= projector.Directions {
		return fmt.Errorf("raylist: direction %d out of range", k.Direction)
	}
	if k.SizeX <= 0 || k.SizeY <= 0 || k.SizeZ <= 0 {
		return &voxel.DimensionError{Width: k.SizeX, Depth: k.SizeY, Height: k.SizeZ}
	}
	if k.SizeX > voxel.MaxAxis || k.SizeY > voxel.MaxAxis || k.SizeZ > voxel.MaxAxis {
		return fmt.Errorf("raylist: model %dx%dx%d exceeds %d cells per axis", k.SizeX, k.SizeY, k.SizeZ, voxel.MaxAxis)
	}
	if !(k.Scale > 0) {
		return fmt.Errorf("raylist: scale %v must be positive", k.Scale)
	}
	return nil
}

// Coord is a voxel position.
type Coord [3]uint8

// RayList holds, for every render pixel, the voxels it samples ordered
// front to back.
type RayList struct {
	Key           Key
	Width, Height int
	// rays is indexed x-major: rays[x*Height+y].
	rays [][]Coord
}

func (r *RayList) At(px, py int) []Coord {
	if px < 0 || py < 0 || px >= r.Width || py >= r.Height {
		return nil
	}
	return r.rays[px*r.Height+py]
}

// Entries is the total number of coordinates stored.
func (r *RayList) Entries() int {
	n := 0
	for _, ray := range r.rays {
		n += len(ray)
	}
	return n
}

// Equal reports whether two lists have the same header and rays.
func (r *RayList) Equal(o *RayList) bool {
	if r.Key != o.Key || r.Width != o.Width || r.Height != o.Height || len(r.rays) != len(o.rays) {
		return false
	}
	for i := range r.rays {
		if len(r.rays[i]) != len(o.rays[i]) {
			return false
		}
		for j := range r.rays[i] {
			if r.rays[i][j] != o.rays[i][j] {
				return false
			}
		}
	}
	return true
}

// Build walks the same back to front traversal the scanning renderer uses,
// records the voxels landing on each pixel and reverses them.
func Build(k Key) (*RayList, error) {
	if err := k.validate(); err != nil {
		return nil, err
	}
	p, err := projector.New(k.Direction, k.SizeX, k.SizeY, k.SizeZ)
	if err != nil {
		return nil, err
	}
	geo := projector.NewGeometry(k.Scale, k.SizeX)
	scale := geo.RenderScale()
	w, h := p.Canvas(scale)
	r := &RayList{Key: k, Width: w, Height: h, rays: make([][]Coord, w*h)}

	p.Traverse(scale, func(px, py, x, y, z int) {
		i := px*h + py
		c := Coord{uint8(x), uint8(y), uint8(z)}
		ray := r.rays[i]
		if n := len(ray); n > 0 && ray[n-1] == c {
			return
		}
		r.rays[i] = append(ray, c)
	})
	for _, ray := range r.rays {
		for a, b := 0, len(ray)-1; a < b; a, b = a+1, b-1 {
			ray[a], ray[b] = ray[b], ray[a]
		}
	}
	return r, nil
}
