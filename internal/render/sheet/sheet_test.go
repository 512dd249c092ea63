package sheet

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"transrender.dev/internal/palette"
	"transrender.dev/internal/render/sprite"
)

func sprites(drawDir int, c palette.ShadeResult) []*sprite.Sprite {
	out := make([]*sprite.Sprite, 8)
	for dir := range out {
		s := &sprite.Sprite{Direction: dir, Width: 4, Height: 3, Pix: make([]palette.ShadeResult, 12)}
		if dir == drawDir {
			s.Pix[1*4+2] = c
		}
		out[dir] = s
	}
	return out
}

func TestLayoutScales(t *testing.T) {
	l := Layout{Scale: 1}
	if w, h := l.Size(); w != 800 || h != 80 {
		t.Fatalf("size %dx%d", w, h)
	}
	if got := l.Slot(2); got != image.Rect(200, 0, 264, 48) {
		t.Fatalf("slot 2: %v", got)
	}
	if w, _ := (Layout{Scale: 0.5}).Size(); w != 400 {
		t.Fatalf("half scale width %d", w)
	}
}

func TestComposeBackgroundAndSlots(t *testing.T) {
	l := Layout{Scale: 1}
	px := palette.ShadeResult{Index: 140, R: 9, G: 8, B: 7, TrueColor: true}
	s, err := Compose(l, sprites(3, px))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := s.At(s.Width-1, s.Height-1); got.Index != 255 || got.A != 0 {
		t.Fatalf("background %+v", got)
	}
	slot := l.Slot(5)
	if got := s.At(slot.Min.X, slot.Min.Y); got.Index != 0 || got.A != 255 {
		t.Fatalf("slot fill %+v", got)
	}
	s3 := l.Slot(3)
	if got := s.At(s3.Min.X+2, s3.Min.Y+1); got != px {
		t.Fatalf("sprite pixel %+v", got)
	}
}

func TestComposeNeedsEightSprites(t *testing.T) {
	if _, err := Compose(Layout{Scale: 1}, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSave(t *testing.T) {
	l := Layout{Scale: 0.5}
	px := palette.ShadeResult{Index: 84, R: 100, G: 100, B: 100, M: 83, TrueColor: true}
	s, err := Compose(l, sprites(0, px))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	dir := t.TempDir()

	files, err := s.Save(dir+"/eight", 8)
	if err != nil || len(files) != 1 {
		t.Fatalf("Save 8: %v %v", files, err)
	}
	img := decode(t, files[0])
	pal, ok := img.(*image.Paletted)
	if !ok {
		t.Fatalf("8 bpp output decoded as %T", img)
	}
	if got := pal.ColorIndexAt(2, 1); got != 84 {
		t.Fatalf("8 bpp pixel index %d", got)
	}

	files, err = s.Save(dir+"/full", 32)
	if err != nil || len(files) != 2 {
		t.Fatalf("Save 32: %v %v", files, err)
	}
	full := decode(t, files[0])
	if got := color.NRGBAModel.Convert(full.At(2, 1)).(color.NRGBA); got != (color.NRGBA{100, 100, 100, 255}) {
		t.Fatalf("32 bpp pixel %+v", got)
	}
	if got := color.NRGBAModel.Convert(full.At(3, 2)).(color.NRGBA); got.A != 0 {
		t.Fatalf("slot should be clear: %+v", got)
	}
	mask, ok := decode(t, files[1]).(*image.Paletted)
	if !ok {
		t.Fatalf("mask not paletted")
	}
	if got := mask.ColorIndexAt(2, 1); got != 83 {
		t.Fatalf("mask value %d", got)
	}

	if _, err := s.Save(dir+"/bad", 16); err == nil {
		t.Fatalf("expected error for 16 bpp")
	}
}

func decode(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return img
}
