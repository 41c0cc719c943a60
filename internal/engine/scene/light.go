package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the number of lights every shader's lights array holds.
const MaxLights = 4

// ErrTooManyLights is returned when adding a light beyond MaxLights.
var ErrTooManyLights = errors.New("too many lights")

// Light is a point light with Phong terms, synchronized to every shader
// as lights[i].
type Light struct {
	Position mgl32.Vec3
	Ambient  mgl32.Vec3
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
}

// LightSet holds up to MaxLights lights in insertion order.
type LightSet struct {
	lights []Light
}

// Add appends l, failing once the set is full.
func (s *LightSet) Add(l Light) error {
	if len(s.lights) >= MaxLights {
		return fmt.Errorf("adding light %d: %w (max %d)", len(s.lights)+1, ErrTooManyLights, MaxLights)
	}
	s.lights = append(s.lights, l)
	return nil
}

// Lights returns the lights in insertion order.
func (s *LightSet) Lights() []Light {
	return s.lights
}

// Len returns the number of lights.
func (s *LightSet) Len() int {
	return len(s.lights)
}
