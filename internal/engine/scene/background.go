package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/moonscene/internal/engine/resource"
)

// SkyboxSampler is the sampler name a skybox binds its cube map to.
const SkyboxSampler = "skybox"

// BackgroundEffect is a full-screen canvas shaded procedurally from time,
// viewport resolution and frame index. It has no geometry of its own.
type BackgroundEffect struct {
	binding
	state FrameState
}

// NewBackgroundEffect creates an unbound background effect.
func NewBackgroundEffect() *BackgroundEffect {
	return &BackgroundEffect{}
}

func (b *BackgroundEffect) Kind() Kind { return KindBackground }

// State returns the inputs pushed on the last running tick.
func (b *BackgroundEffect) State() FrameState { return b.state }

func (b *BackgroundEffect) SetTime(seconds float32) { b.state.Time = seconds }

func (b *BackgroundEffect) SetResolution(width, height float32) {
	b.state.Width, b.state.Height = width, height
}

func (b *BackgroundEffect) SetFrame(frame int) { b.state.Frame = frame }

// Skybox is a cube-mapped backdrop. Only time is pushed to it.
type Skybox struct {
	binding
	time float32
}

// NewSkybox creates an unbound skybox.
func NewSkybox() *Skybox {
	return &Skybox{}
}

func (s *Skybox) Kind() Kind { return KindSkybox }

func (s *Skybox) Time() float32 { return s.time }

func (s *Skybox) SetTime(seconds float32) { s.time = seconds }

// CubeMap returns the texture bound to SkyboxSampler.
func (s *Skybox) CubeMap() (resource.Texture, bool) {
	for _, t := range s.textures {
		if t.Sampler == SkyboxSampler {
			return t.Texture, true
		}
	}
	return resource.Texture{}, false
}

// GradientBackground fills the screen with a vertical blend between two
// colours. It is never animated and uses a built-in shader when none is
// bound.
type GradientBackground struct {
	binding
	top    mgl32.Vec4
	bottom mgl32.Vec4
}

// NewGradientBackground creates a gradient from top to bottom.
func NewGradientBackground(top, bottom mgl32.Vec4) *GradientBackground {
	return &GradientBackground{top: top, bottom: bottom}
}

func (g *GradientBackground) Kind() Kind { return KindGradient }

// Colors returns the top and bottom colours.
func (g *GradientBackground) Colors() (top, bottom mgl32.Vec4) { return g.top, g.bottom }

// SetColors replaces both colours.
func (g *GradientBackground) SetColors(top, bottom mgl32.Vec4) error {
	if g.sealed {
		return sealedError("set gradient colors")
	}
	g.top, g.bottom = top, bottom
	return nil
}
