package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestOrbitCameraPosition(t *testing.T) {
	c := NewOrbitCamera()
	c.Pitch = 0
	c.Yaw = 0
	c.Distance = 10
	c.Center = mgl32.Vec3{1, 2, 3}

	pos := c.Position()
	want := mgl32.Vec3{1, 2, 13}
	if pos.Sub(want).Len() > 1e-5 {
		t.Errorf("expected %v, got %v", want, pos)
	}

	// The view matrix maps the camera position to the origin.
	eye := c.ViewMatrix().Mul4x1(pos.Vec4(1))
	if eye.Vec3().Len() > 1e-4 {
		t.Errorf("expected eye at origin, got %v", eye)
	}
}

func TestOrbitCameraClamps(t *testing.T) {
	tests := []struct {
		name  string
		apply func(c *OrbitCamera)
		check func(c *OrbitCamera) bool
	}{
		{"pitch max", func(c *OrbitCamera) { c.HandleDrag(0, 1e6) }, func(c *OrbitCamera) bool { return c.Pitch == c.MaxPitch }},
		{"pitch min", func(c *OrbitCamera) { c.HandleDrag(0, -1e6) }, func(c *OrbitCamera) bool { return c.Pitch == c.MinPitch }},
		{"zoom in", func(c *OrbitCamera) { c.HandleZoom(100) }, func(c *OrbitCamera) bool { return c.Distance == c.MinDistance }},
		{"zoom out", func(c *OrbitCamera) { c.HandleZoom(-1e6) }, func(c *OrbitCamera) bool { return c.Distance == c.MaxDistance }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera()
			tt.apply(c)
			if !tt.check(c) {
				t.Errorf("expected value clamped, got pitch %v distance %v", c.Pitch, c.Distance)
			}
		})
	}
}

func TestOrbitCameraMovement(t *testing.T) {
	c := NewOrbitCamera()
	c.Yaw = 0
	c.Distance = 100

	c.HandleMovement(1, 0, 0)
	if c.Center.Z() >= 0 {
		t.Errorf("expected forward to move center toward -Z, got %v", c.Center)
	}

	c.Center = mgl32.Vec3{}
	c.HandleMovement(0, 1, 0)
	if c.Center.X() <= 0 {
		t.Errorf("expected right to move center toward +X, got %v", c.Center)
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitToBounds(mgl32.Vec3{-2, -2, -2}, mgl32.Vec3{2, 4, 2})

	if c.Center.Sub(mgl32.Vec3{0, 1, 0}).Len() > 1e-5 {
		t.Errorf("expected center (0, 1, 0), got %v", c.Center)
	}
	if c.Distance <= 4 {
		t.Errorf("expected distance beyond the bounding radius, got %v", c.Distance)
	}
}

func TestProjectionMatrix(t *testing.T) {
	c := NewOrbitCamera()
	wide := c.ProjectionMatrix(1600, 800)
	square := c.ProjectionMatrix(800, 800)
	if wide.At(0, 0)*2 != square.At(0, 0) {
		t.Errorf("expected x scale to halve at 2:1 aspect, got %v and %v", wide.At(0, 0), square.At(0, 0))
	}
	if zero := c.ProjectionMatrix(800, 0); zero != square {
		t.Error("expected zero height to fall back to square aspect")
	}
}
