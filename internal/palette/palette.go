package palette

import (
	"image/color"
)

// Class describes how a palette index behaves when shaded and combined.
type Class uint8

const (
	Normal Class = iota
	// Mask colours are recoloured at display time and are encoded as a
	// greyscale ramp position plus a mask value.
	Mask
	// Priority colours render exactly and are never blended away.
	Priority
)

func (c Class) String() string {
	switch c {
	case Mask:
		return "mask"
	case Priority:
		return "priority"
	default:
		return "normal"
	}
}

// Transparent is the palette index that is never drawn.
const Transparent uint8 = 0

// MaskShadow is the mask value given to mask colours that reach the
// combiner without true colour data.
const MaskShadow uint8 = 200

var classes = func() [256]Class {
	var out [256]Class
	out[15] = Priority
	for i := 81; i <= 87; i++ {
		out[i] = Mask
	}
	for i := 199; i <= 205; i++ {
		out[i] = Mask
	}
	return out
}()

func ClassOf(i uint8) Class   { return classes[i] }
func IsMask(i uint8) bool     { return classes[i] == Mask }
func IsPriority(i uint8) bool { return classes[i] == Priority }

// RGB returns the palette entry for i.
func RGB(i uint8) (r, g, b uint8) {
	e := ttd[i]
	return e[0], e[1], e[2]
}

// Colors returns the palette as an image/color palette. Entries are
// opaque; index 0 keeps its conventional blue so sprite tools recognise it.
func Colors() color.Palette {
	p := make(color.Palette, len(ttd))
	for i, e := range ttd {
		p[i] = color.RGBA{R: e[0], G: e[1], B: e[2], A: 0xff}
	}
	return p
}
