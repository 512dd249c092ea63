package palette

import "math"

// rampStarts lists the first index of every hue ramp, dark to light.
// Ramp k covers [rampStarts[k], rampStarts[k+1]-1]; the last ramp is 255.
var rampStarts = [...]int{
	0, 1, 16, 24, 32, 40, 48, 54, 60, 64, 70, 80, 88, 96,
	104, 112, 122, 128, 136, 144, 154, 160, 162, 170,
	176, 178, 192, 198, 206, 210, 215, 227, 232, 239,
	240, 241, 242, 244, 245, 252, 253, 255,
}

var rampOf = func() [256]uint8 {
	var out [256]uint8
	k := 0
	for i := 0; i < 256; i++ {
		for k+1 < len(rampStarts) && i >= rampStarts[k+1] {
			k++
		}
		out[i] = uint8(k)
	}
	return out
}()

// Ramp is a contiguous run of palette indices forming one hue family.
type Ramp struct {
	Index    int
	Min, Max uint8
}

// RampCount is the number of ramps in the palette.
func RampCount() int { return len(rampStarts) }

// RampStarts returns a copy of the ramp start boundaries.
func RampStarts() []int {
	out := make([]int, len(rampStarts))
	copy(out, rampStarts[:])
	return out
}

// RampOf returns the ramp containing index i.
func RampOf(i uint8) Ramp {
	k := int(rampOf[i])
	hi := 255
	if k+1 < len(rampStarts) {
		hi = rampStarts[k+1] - 1
	}
	return Ramp{Index: k, Min: uint8(rampStarts[k]), Max: uint8(hi)}
}

func SameRamp(a, b uint8) bool { return rampOf[a] == rampOf[b] }

func (r Ramp) Contains(i uint8) bool { return i >= r.Min && i <= r.Max }

// Clamp limits v to the ramp bounds.
func (r Ramp) Clamp(v int) uint8 {
	if v < int(r.Min) {
		return r.Min
	}
	if v > int(r.Max) {
		return r.Max
	}
	return uint8(v)
}

// Position returns where i sits within the ramp, 0 at Min and 1 at Max.
// Single entry ramps report 0.
func (r Ramp) Position(i uint8) float64 {
	if r.Max == r.Min {
		return 0
	}
	return (float64(i) - float64(r.Min)) / float64(r.Max-r.Min)
}

// At maps a ramp position back to a palette index.
func (r Ramp) At(pos float64) uint8 {
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return uint8(float64(r.Min) + float64(r.Max-r.Min)*pos)
}

// Greyscale returns the grey level matching i's position in its ramp.
func Greyscale(i uint8) uint8 {
	return uint8(RampOf(i).Position(i) * 255)
}

// MaskValue returns i moved half way towards the midpoint of its ramp.
func MaskValue(i uint8) uint8 {
	r := RampOf(i)
	mid := (int(r.Min) + int(r.Max)) / 2
	return uint8(int(i) + (mid-int(i))/2)
}

// Dither quantizes a continuous palette value shaded from orig. Values
// within a quarter of a step of the next integer flip rounding direction,
// and the result never leaves orig's ramp.
func Dither(orig uint8, v float64) uint8 {
	if math.IsNaN(v) {
		return orig
	}
	e := math.Round(v) - v
	switch {
	case e > 0.25:
		v -= 0.5
	case e < -0.25:
		v += 0.5
	}
	v = math.Round(v)
	r := RampOf(orig)
	if v < float64(r.Min) {
		return r.Min
	}
	if v > float64(r.Max) {
		return r.Max
	}
	return uint8(v)
}
