package shader

import (
	"math/rand"
	"testing"

	"transrender.dev/internal/palette"
	"transrender.dev/internal/render/projector"
	"transrender.dev/internal/voxel"
)

func process(t *testing.T, g *voxel.Grid) *voxel.Processed {
	t.Helper()
	p, err := voxel.Preprocess(g)
	if err != nil {
		t.Fatalf("Preprocess: %v", err)
	}
	return p
}

func randomGrid(t *testing.T, seed int64) *voxel.Grid {
	t.Helper()
	g, err := voxel.NewGrid(6, 5, 7)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	r := rand.New(rand.NewSource(seed))
	for i := range g.Data {
		if r.Intn(3) > 0 {
			g.Data[i] = uint8(1 + r.Intn(255))
		}
	}
	return g
}

func TestShadeDeterministicAndCached(t *testing.T) {
	g := randomGrid(t, 3)
	a := New(process(t, g))
	b := New(process(t, g))
	for dir := 0; dir < projector.Directions; dir++ {
		for x := 0; x < g.Width; x++ {
			for y := 0; y < g.Depth; y++ {
				for z := 0; z < g.Height; z++ {
					first := a.Shade(dir, x, y, z)
					if again := a.Shade(dir, x, y, z); again != first {
						t.Fatalf("cached result changed at %d (%d,%d,%d)", dir, x, y, z)
					}
					if other := b.Shade(dir, x, y, z); other != first {
						t.Fatalf("fresh shader disagrees at %d (%d,%d,%d)", dir, x, y, z)
					}
				}
			}
		}
	}
}

func TestShadeStaysInRamp(t *testing.T) {
	for seed := int64(1); seed <= 4; seed++ {
		g := randomGrid(t, seed)
		s := New(process(t, g))
		for dir := 0; dir < projector.Directions; dir++ {
			for x := 0; x < g.Width; x++ {
				for y := 0; y < g.Depth; y++ {
					for z := 0; z < g.Height; z++ {
						orig := g.At(x, y, z)
						got := s.Shade(dir, x, y, z)
						if orig == 0 {
							if !got.Empty() || !s.IsTransparent(x, y, z) {
								t.Fatalf("empty cell shaded: %+v", got)
							}
							continue
						}
						if !palette.RampOf(orig).Contains(got.Index) {
							t.Fatalf("colour %d shaded to %d outside its ramp", orig, got.Index)
						}
					}
				}
			}
		}
	}
}

func TestPriorityUnshaded(t *testing.T) {
	g, _ := voxel.NewGrid(3, 3, 3)
	g.Set(1, 1, 1, 15)
	g.Set(1, 1, 2, 15)
	s := New(process(t, g))
	r, gg, b := palette.RGB(15)
	for dir := 0; dir < projector.Directions; dir++ {
		got := s.Shade(dir, 1, 1, 1)
		if got.Index != 15 || got.R != r || got.G != gg || got.B != b || got.A != 0 || got.M != 0 {
			t.Fatalf("dir %d: priority shaded: %+v", dir, got)
		}
	}
}

func TestMaskColoursCarryMask(t *testing.T) {
	g, _ := voxel.NewGrid(1, 1, 1)
	g.Set(0, 0, 0, 84)
	s := New(process(t, g))
	got := s.Shade(0, 0, 0, 0)
	if got.M != palette.MaskValue(84) {
		t.Fatalf("mask value %d want %d", got.M, palette.MaskValue(84))
	}
	if got.R != got.G || got.G != got.B {
		t.Fatalf("mask colour should be grey: %+v", got)
	}
}

func TestTopLitBrighterThanShadowed(t *testing.T) {
	// A slab with a roof two cells above part of it.
	g, _ := voxel.NewGrid(5, 5, 4)
	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			g.Set(x, y, 0, 140)
		}
	}
	g.Set(0, 0, 3, 140)
	s := New(process(t, g))
	lit := s.Shade(0, 4, 4, 0)
	dark := s.Shade(0, 0, 0, 0)
	if !s.vox.Cell(0, 0, 0).Shadowed {
		t.Fatalf("cell under roof should be shadowed")
	}
	if dark.Index > lit.Index {
		t.Fatalf("shadowed %d brighter than lit %d", dark.Index, lit.Index)
	}
	if lit.Index <= 140 {
		t.Fatalf("lit top face should brighten: %d", lit.Index)
	}
}
