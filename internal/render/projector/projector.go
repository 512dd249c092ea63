// Package projector maps voxel space onto the eight fixed dimetric views.
//
// Screen X grows to the right and screen Y grows downward. For a view,
//
//	X = ax*x + ay*y
//	Y = bx*x + by*y - z
//
// shifted so the model's bounding box starts at the origin and multiplied
// by the render scale. Higher z therefore lands higher on screen.
package projector

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Directions is the number of fixed views, 45 degrees apart.
const Directions = 8

type coeffs struct{ ax, ay, bx, by float64 }

var views = [Directions]coeffs{
	{0, 2.0 / 3, -1 / 2.25, 0},
	{0.5, 0.5, -0.25, 0.25},
	{1, 0, 0, 0.25},
	{0.5, -0.5, 0.25, 0.25},
	{0, -2.0 / 3, 1 / 2.25, 0},
	{-0.5, -0.5, 0.25, -0.25},
	{-1, 0, 0, -0.25},
	{-0.5, 0.5, -0.25, -0.25},
}

// lights are the directions light travels in for each view.
var lights = [Directions]mgl64.Vec3{
	{0, -1, -2},
	{-1, -1, -2},
	{-1, 0, -2},
	{-1, 1, -2},
	{0, 1, -2},
	{1, 1, -2},
	{1, 0, -2},
	{1, -1, -2},
}

// Light returns the lighting vector for direction dir.
func Light(dir int) mgl64.Vec3 { return lights[dir] }

// Projector is one view of a model of fixed size.
type Projector struct {
	Direction            int
	Width, Depth, Height int

	c          coeffs
	minX, minY float64
	maxX, maxY float64
}

func New(dir, width, depth, height int) (Projector, error) {
	if dir < 0 || dir >= Directions {
		return Projector{}, fmt.Errorf("projector: direction %d out of range", dir)
	}
	p := Projector{Direction: dir, Width: width, Depth: depth, Height: height, c: views[dir]}
	p.minX, p.minY = math.Inf(1), math.Inf(1)
	p.maxX, p.maxY = math.Inf(-1), math.Inf(-1)
	for _, x := range []float64{0, float64(width)} {
		for _, y := range []float64{0, float64(depth)} {
			for _, z := range []float64{0, float64(height)} {
				sx, sy := p.raw(x, y, z)
				p.minX, p.maxX = math.Min(p.minX, sx), math.Max(p.maxX, sx)
				p.minY, p.maxY = math.Min(p.minY, sy), math.Max(p.maxY, sy)
			}
		}
	}
	return p, nil
}

func (p Projector) raw(x, y, z float64) (float64, float64) {
	return p.c.ax*x + p.c.ay*y, p.c.bx*x + p.c.by*y - z
}

// Precise returns the sub-pixel screen position of (x,y,z) at scale.
func (p Projector) Precise(x, y, z, scale float64) (float64, float64) {
	sx, sy := p.raw(x, y, z)
	return scale * (sx - p.minX), scale * (sy - p.minY)
}

// Project returns the pixel containing (x,y,z) at scale.
func (p Projector) Project(x, y, z, scale float64) (int, int) {
	sx, sy := p.Precise(x, y, z, scale)
	return pixel(sx), pixel(sy)
}

// Canvas returns the pixel size needed to hold the whole model at scale.
func (p Projector) Canvas(scale float64) (int, int) {
	return int(math.Ceil(scale * (p.maxX - p.minX))), int(math.Ceil(scale * (p.maxY - p.minY)))
}

// Unproject returns the point at height z that lands exactly on screen
// position (sx, sy) at scale, and the direction along which the point
// moves towards the viewer per unit of z.
func (p Projector) Unproject(sx, sy, z, scale float64) (origin, toward mgl64.Vec3) {
	c := p.c
	det := c.ax*c.by - c.ay*c.bx
	X := sx/scale + p.minX
	Y := sy/scale + p.minY + z
	origin = mgl64.Vec3{(X*c.by - c.ay*Y) / det, (c.ax*Y - c.bx*X) / det, z}
	toward = mgl64.Vec3{-c.ay / det, c.ax / det, 1}
	return origin, toward
}

// Light returns this view's lighting vector.
func (p Projector) Light() mgl64.Vec3 { return lights[p.Direction] }

// flips reports whether x and y must be walked downwards to visit samples
// back to front.
func (p Projector) flips() (bool, bool) { return p.c.bx < 0, p.c.by < 0 }
