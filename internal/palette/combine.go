package palette

// ShadeResult is one shaded sample. A is inverted alpha: 0 is opaque and
// 255 is fully clear. M is the mask value for recolourable pixels.
type ShadeResult struct {
	Index     uint8
	R, G, B   uint8
	A         uint8
	M         uint8
	TrueColor bool
}

// Empty reports whether the sample is transparent.
func (s ShadeResult) Empty() bool { return s.Index == Transparent }

// Lookup builds a true colour sample straight from the palette entry.
func Lookup(i uint8) ShadeResult {
	r, g, b := RGB(i)
	out := ShadeResult{Index: i, R: r, G: g, B: b, TrueColor: true}
	if IsMask(i) {
		out.M = MaskShadow
	}
	return out
}

// Combine merges the samples that land on one output pixel. Ramp purity
// wins over priority colours, which win over the majority colour family.
// Transparent samples take no part; if every sample is transparent so is
// the result.
func Combine(samples []ShadeResult) ShadeResult {
	live := make([]ShadeResult, 0, len(samples))
	for _, s := range samples {
		if s.Empty() {
			continue
		}
		if !s.TrueColor {
			idx, m := s.Index, s.M
			s = Lookup(idx)
			if m != 0 {
				s.M = m
			}
		}
		live = append(live, s)
	}
	if len(live) == 0 {
		return ShadeResult{}
	}

	pure := true
	for _, s := range live[1:] {
		if !SameRamp(s.Index, live[0].Index) {
			pure = false
			break
		}
	}
	if pure {
		out := average(live)
		sum := 0
		for _, s := range live {
			sum += int(s.Index)
		}
		out.Index = uint8(sum / len(live))
		return out
	}

	prio := -1
	for _, s := range live {
		if IsPriority(s.Index) && (prio < 0 || int(s.Index) < prio) {
			prio = int(s.Index)
		}
	}
	if prio >= 0 {
		out := Lookup(uint8(prio))
		out.M = 0
		return out
	}

	var counts [256]int
	pos := 0.0
	for _, s := range live {
		counts[s.Index]++
		pos += RampOf(s.Index).Position(s.Index)
	}
	target := 0
	for i := 1; i < 256; i++ {
		if counts[i] > counts[target] {
			target = i
		}
	}
	out := average(live)
	out.Index = RampOf(uint8(target)).At(pos / float64(len(live)))
	return out
}

// average blends channels and alpha and applies the mask majority rule.
// Index is left for the caller.
func average(live []ShadeResult) ShadeResult {
	var r, g, b, a int
	var masks [256]int
	masked := 0
	for _, s := range live {
		r += int(s.R)
		g += int(s.G)
		b += int(s.B)
		a += int(s.A)
		if s.M != 0 {
			masks[s.M]++
			masked++
		}
	}
	n := len(live)
	out := ShadeResult{
		R:         uint8(r / n),
		G:         uint8(g / n),
		B:         uint8(b / n),
		A:         uint8(a / n),
		TrueColor: true,
	}
	if masked*2 > n {
		mode := 1
		for m := 2; m < 256; m++ {
			if masks[m] > masks[mode] {
				mode = m
			}
		}
		out.M = uint8(mode)
	}
	return out
}
