package scene

import (
	"fmt"

	"github.com/Faultbox/moonscene/internal/engine/resource"
)

// Kind identifies the concrete type of a scene object.
type Kind int

const (
	KindMesh Kind = iota
	KindBackground
	KindSkybox
	KindGradient
)

func (k Kind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindBackground:
		return "background"
	case KindSkybox:
		return "skybox"
	case KindGradient:
		return "gradient"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Object is anything the registry can hand to a backend.
type Object interface {
	Kind() Kind
	// Shader returns the bound program; ok is false until one is bound.
	Shader() (s resource.Shader, ok bool)
	// Textures returns sampler bindings in the order they were made.
	Textures() []TextureBinding
	// Sealed reports whether the object has been finalized.
	Sealed() bool
	// DataRefreshed reports whether GPU buffers must be rebuilt.
	DataRefreshed() bool
	// ClearDataRefreshed is called by a backend after it uploads buffers.
	ClearDataRefreshed()

	seal()
	markDataRefreshed()
}

// TimeReceiver objects are given the elapsed time every running tick.
type TimeReceiver interface {
	SetTime(seconds float32)
}

// ResolutionReceiver objects are given the viewport size every running tick.
type ResolutionReceiver interface {
	SetResolution(width, height float32)
}

// FrameReceiver objects are given the frame index every running tick.
type FrameReceiver interface {
	SetFrame(frame int)
}

// FrameState is the per-tick input consumed by an object's shader as
// iTime, iResolution and iFrame.
type FrameState struct {
	Time   float32
	Width  float32
	Height float32
	Frame  int
}

// ShaderSource looks up compiled programs by name.
type ShaderSource interface {
	Get(name string) (resource.Shader, error)
}

// TextureSource looks up uploaded textures by name.
type TextureSource interface {
	Get(name string) (resource.Texture, error)
}

// TextureBinding attaches a texture to a sampler uniform.
type TextureBinding struct {
	Sampler string
	Texture resource.Texture
}

// binding is the state every object kind shares: shader, textures and the
// finalization flags.
type binding struct {
	shader    resource.Shader
	hasShader bool
	textures  []TextureBinding
	sealed    bool
	refreshed bool
}

func (b *binding) Shader() (resource.Shader, bool) { return b.shader, b.hasShader }
func (b *binding) Textures() []TextureBinding      { return b.textures }
func (b *binding) Sealed() bool                    { return b.sealed }
func (b *binding) DataRefreshed() bool             { return b.refreshed }
func (b *binding) ClearDataRefreshed()             { b.refreshed = false }
func (b *binding) seal()                           { b.sealed = true }
func (b *binding) markDataRefreshed()              { b.refreshed = true }

// HasAlpha reports whether any bound texture has transparent pixels.
func (b *binding) HasAlpha() bool {
	for _, t := range b.textures {
		if t.Texture.HasAlpha {
			return true
		}
	}
	return false
}

func (b *binding) useShader(s resource.Shader) error {
	if b.sealed {
		return sealedError("bind shader")
	}
	b.shader = s
	b.hasShader = true
	return nil
}

// useTexture binds t to sampler, replacing an earlier binding of the same
// sampler so the declaration order of the rest is preserved.
func (b *binding) useTexture(sampler string, t resource.Texture) error {
	if b.sealed {
		return sealedError("bind texture")
	}
	for i := range b.textures {
		if b.textures[i].Sampler == sampler {
			b.textures[i].Texture = t
			return nil
		}
	}
	b.textures = append(b.textures, TextureBinding{Sampler: sampler, Texture: t})
	return nil
}

// BindShader looks name up in lib and binds the program.
func (b *binding) BindShader(lib ShaderSource, name string) error {
	if b.sealed {
		return sealedError("bind shader")
	}
	s, err := lib.Get(name)
	if err != nil {
		return err
	}
	return b.useShader(s)
}

// BindTexture looks name up in lib and binds it to sampler.
func (b *binding) BindTexture(lib TextureSource, sampler, name string) error {
	if b.sealed {
		return sealedError("bind texture")
	}
	t, err := lib.Get(name)
	if err != nil {
		return err
	}
	return b.useTexture(sampler, t)
}
