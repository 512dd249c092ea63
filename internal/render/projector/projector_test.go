package projector

import (
	"math"
	"testing"
)

func TestProjectCorner(t *testing.T) {
	p, err := New(0, 2, 2, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x, y := p.Project(0, 0, 0, 1)
	if x != 0 || y != 2 {
		t.Fatalf("Project(0,0,0)=(%d,%d) want (0,2)", x, y)
	}
}

func TestBadDirection(t *testing.T) {
	if _, err := New(8, 1, 1, 1); err == nil {
		t.Fatalf("expected error for direction 8")
	}
	if _, err := New(-1, 1, 1, 1); err == nil {
		t.Fatalf("expected error for direction -1")
	}
}

func TestCanvasHoldsModel(t *testing.T) {
	for dir := 0; dir < Directions; dir++ {
		p, err := New(dir, 5, 3, 7)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		cw, ch := p.Canvas(2)
		for _, x := range []float64{0, 5} {
			for _, y := range []float64{0, 3} {
				for _, z := range []float64{0, 7} {
					sx, sy := p.Precise(x, y, z, 2)
					if sx < -1e-9 || sy < -1e-9 || sx > float64(cw)+1e-9 || sy > float64(ch)+1e-9 {
						t.Fatalf("dir %d: corner (%v,%v,%v) at (%v,%v) outside %dx%d", dir, x, y, z, sx, sy, cw, ch)
					}
				}
			}
		}
	}
}

func TestHigherIsHigherOnScreen(t *testing.T) {
	for dir := 0; dir < Directions; dir++ {
		p, _ := New(dir, 4, 4, 4)
		_, lo := p.Precise(1, 1, 0, 1)
		_, hi := p.Precise(1, 1, 3, 1)
		if hi >= lo {
			t.Fatalf("dir %d: z=3 at %v not above z=0 at %v", dir, hi, lo)
		}
	}
}

func TestUnprojectRoundTrip(t *testing.T) {
	for dir := 0; dir < Directions; dir++ {
		p, _ := New(dir, 6, 5, 4)
		origin, toward := p.Unproject(3.5, 7.25, 1.5, 2)
		for _, s := range []float64{0, 0.5, 2} {
			q := origin.Add(toward.Mul(s))
			sx, sy := p.Precise(q.X(), q.Y(), q.Z(), 2)
			if math.Abs(sx-3.5) > 1e-9 || math.Abs(sy-7.25) > 1e-9 {
				t.Fatalf("dir %d s=%v: (%v,%v) want (3.5,7.25)", dir, s, sx, sy)
			}
		}
	}
}

func TestTraverseVisitsEveryCell(t *testing.T) {
	for dir := 0; dir < Directions; dir++ {
		p, _ := New(dir, 3, 4, 2)
		seen := make(map[[3]int]bool)
		lastZ := -1
		cw, ch := p.Canvas(2)
		p.Traverse(2, func(px, py, x, y, z int) {
			if px < 0 || py < 0 || px >= cw || py >= ch {
				t.Fatalf("dir %d: sample (%d,%d) outside canvas", dir, px, py)
			}
			if z < lastZ {
				t.Fatalf("dir %d: z went down from %d to %d", dir, lastZ, z)
			}
			lastZ = z
			seen[[3]int{x, y, z}] = true
		})
		if len(seen) != 3*4*2 {
			t.Fatalf("dir %d: visited %d cells want 24", dir, len(seen))
		}
	}
}

func TestGeometryFactor(t *testing.T) {
	if g := NewGeometry(1, 64); g.Factor != 2 {
		t.Fatalf("factor for 64 wide: %d", g.Factor)
	}
	if g := NewGeometry(1, 65); g.Factor != 4 {
		t.Fatalf("factor for 65 wide: %d", g.Factor)
	}
	if g := NewGeometry(1.5, 8); g.RenderScale() != 3 {
		t.Fatalf("render scale: %v", g.RenderScale())
	}
}

func TestLightPointsDown(t *testing.T) {
	for dir := 0; dir < Directions; dir++ {
		if Light(dir).Z() >= 0 {
			t.Fatalf("dir %d: light %v", dir, Light(dir))
		}
	}
}
