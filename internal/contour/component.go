package contour

import "image"

// Component returns the 8-connected foreground component of m that node i
// borders. For an outer border that is the shape itself: its holes and
// anything nested in them are left out. m must be the mask f was traced
// from.
func (f Forest) Component(m *Mask, i int) *Mask {
	out := NewMask(m.Width, m.Height)
	if len(f[i].Points) == 0 {
		return out
	}

	seed := f[i].Points[0]
	out.Bits[seed.Y*m.Width+seed.X] = true
	stack := []image.Point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, d := range dirs {
			q := p.Add(d)
			if m.Get(q.X, q.Y) && !out.Get(q.X, q.Y) {
				out.Bits[q.Y*m.Width+q.X] = true
				stack = append(stack, q)
			}
		}
	}
	return out
}
