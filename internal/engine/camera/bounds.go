package camera

import "github.com/go-gl/mathgl/mgl32"

// Bounds is an axis-aligned box accumulated in world space.
type Bounds struct {
	Min, Max mgl32.Vec3
	valid    bool
}

// Empty reports whether nothing has been added.
func (b *Bounds) Empty() bool {
	return !b.valid
}

// AddPoint grows the box to contain p.
func (b *Bounds) AddPoint(p mgl32.Vec3) {
	if !b.valid {
		b.Min, b.Max, b.valid = p, p, true
		return
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// AddBox transforms all eight corners of a local box by model and grows
// the bounds to contain them.
func (b *Bounds) AddBox(lo, hi mgl32.Vec3, model mgl32.Mat4) {
	for i := 0; i < 8; i++ {
		corner := lo
		if i&1 != 0 {
			corner[0] = hi[0]
		}
		if i&2 != 0 {
			corner[1] = hi[1]
		}
		if i&4 != 0 {
			corner[2] = hi[2]
		}
		b.AddPoint(model.Mul4x1(corner.Vec4(1)).Vec3())
	}
}
