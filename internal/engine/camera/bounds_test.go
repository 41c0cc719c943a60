package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestBoundsAddBox(t *testing.T) {
	var b Bounds
	if !b.Empty() {
		t.Fatal("expected zero Bounds to be empty")
	}

	// Unit box rotated 90 degrees about Z then moved along X.
	model := mgl32.Translate3D(10, 0, 0).Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(90)))
	b.AddBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{2, 1, 1}, model)

	if b.Empty() {
		t.Fatal("expected non-empty bounds")
	}
	expectedMin := mgl32.Vec3{9, 0, 0}
	expectedMax := mgl32.Vec3{10, 2, 1}
	if b.Min.Sub(expectedMin).Len() > 1e-5 {
		t.Errorf("expected min %v, got %v", expectedMin, b.Min)
	}
	if b.Max.Sub(expectedMax).Len() > 1e-5 {
		t.Errorf("expected max %v, got %v", expectedMax, b.Max)
	}
}

func TestBoundsAddPoint(t *testing.T) {
	var b Bounds
	b.AddPoint(mgl32.Vec3{1, -1, 3})
	b.AddPoint(mgl32.Vec3{-2, 4, 0})

	if b.Min != (mgl32.Vec3{-2, -1, 0}) {
		t.Errorf("expected min (-2,-1,0), got %v", b.Min)
	}
	if b.Max != (mgl32.Vec3{1, 4, 3}) {
		t.Errorf("expected max (1,4,3), got %v", b.Max)
	}
}
