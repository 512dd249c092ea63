// Package raster turns a shaded model into a supersampled pixel grid for
// one view. Three interchangeable strategies are provided.
package raster

import (
	"fmt"
	"strings"

	"transrender.dev/internal/palette"
	"transrender.dev/internal/render/projector"
	"transrender.dev/internal/render/raylist"
)

// Grid is a render-resolution image. Empty pixels hold a zero ShadeResult.
type Grid struct {
	Width, Height int
	Pix           []palette.ShadeResult
}

func NewGrid(w, h int) *Grid {
	return &Grid{Width: w, Height: h, Pix: make([]palette.ShadeResult, w*h)}
}

func (g *Grid) At(x, y int) palette.ShadeResult {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return palette.ShadeResult{}
	}
	return g.Pix[y*g.Width+x]
}

func (g *Grid) Set(x, y int, v palette.ShadeResult) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return
	}
	g.Pix[y*g.Width+x] = v
}

// Source is the shaded model a strategy draws.
type Source interface {
	Width() int
	Depth() int
	Height() int
	IsTransparent(x, y, z int) bool
	Shade(dir, x, y, z int) palette.ShadeResult
}

// Strategy produces the supersampled pixels of one view.
type Strategy interface {
	Pixels(dir int) (*Grid, error)
}

// Kind names a strategy in configuration.
type Kind string

const (
	Scan    Kind = "scan"
	Raycast Kind = "raycast"
	RayList Kind = "raylist"
)

var Kinds = []Kind{Scan, Raycast, RayList}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", "default":
		return Scan, nil
	case Scan, Raycast, RayList:
		return k, nil
	default:
		return "", fmt.Errorf("raster: unknown renderer %q", s)
	}
}

// New builds the strategy named by kind. cache is only used by RayList and
// may be nil otherwise.
func New(kind Kind, src Source, geo projector.Geometry, cache *raylist.Cache) (Strategy, error) {
	switch kind {
	case Scan, "":
		return &scanner{src: src, geo: geo}, nil
	case Raycast:
		return &raycaster{src: src, geo: geo}, nil
	case RayList:
		if cache == nil {
			return nil, fmt.Errorf("raster: %s renderer needs a ray list cache", kind)
		}
		return &listed{src: src, geo: geo, cache: cache}, nil
	default:
		return nil, fmt.Errorf("raster: unknown renderer %q", kind)
	}
}

func view(src Source, dir int) (projector.Projector, error) {
	return projector.New(dir, src.Width(), src.Depth(), src.Height())
}
