package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/moonscene/pkg/formats"
)

// PolygonMode selects how triangles are rasterized.
type PolygonMode int

const (
	PolygonFill PolygonMode = iota
	PolygonLine
	PolygonPoint
)

func (m PolygonMode) String() string {
	switch m {
	case PolygonLine:
		return "line"
	case PolygonPoint:
		return "point"
	default:
		return "fill"
	}
}

// ShadingMode tells the shader which inputs to combine.
type ShadingMode int

const (
	ShadingNone     ShadingMode = iota // flat colour
	ShadingLighting                    // material and lights only
	ShadingTexOnly                     // textures only
	ShadingTexAlpha                    // lit, textured, alpha blended when a texture has alpha
)

func (m ShadingMode) String() string {
	switch m {
	case ShadingLighting:
		return "lighting"
	case ShadingTexOnly:
		return "tex"
	case ShadingTexAlpha:
		return "tex_alpha"
	default:
		return "none"
	}
}

// Material holds Phong reflectivity coefficients.
type Material struct {
	Ka        mgl32.Vec3 // ambient
	Kd        mgl32.Vec3 // diffuse
	Ks        mgl32.Vec3 // specular
	Shininess float32
}

// DefaultMaterial is assigned to new mesh objects.
func DefaultMaterial() Material {
	return Material{
		Ka:        mgl32.Vec3{0.1, 0.1, 0.1},
		Kd:        mgl32.Vec3{0.7, 0.7, 0.7},
		Ks:        mgl32.Vec3{1, 1, 1},
		Shininess: 32,
	}
}

// AnimationFunc is called with the elapsed time on every running tick.
// It may move the object by writing to its model matrix.
type AnimationFunc func(m *MeshObject, seconds float32)

// MeshObject is a triangle mesh with material, transform and bindings.
type MeshObject struct {
	binding

	mesh     formats.TriangleMesh
	material Material
	model    mgl32.Mat4
	time     float32
	animate  AnimationFunc

	// Modes set explicitly survive finalization defaults.
	polygon    PolygonMode
	shading    ShadingMode
	polygonSet bool
	shadingSet bool
}

// NewMeshObject wraps mesh with the default material and an identity
// transform. The mesh is not copied.
func NewMeshObject(mesh formats.TriangleMesh) *MeshObject {
	return &MeshObject{
		mesh:     mesh,
		material: DefaultMaterial(),
		model:    mgl32.Ident4(),
	}
}

func (m *MeshObject) Kind() Kind { return KindMesh }

// Mesh returns the object's geometry. Callers must not modify it.
func (m *MeshObject) Mesh() *formats.TriangleMesh { return &m.mesh }

func (m *MeshObject) Material() Material       { return m.material }
func (m *MeshObject) ModelMatrix() mgl32.Mat4  { return m.model }
func (m *MeshObject) PolygonMode() PolygonMode { return m.polygon }
func (m *MeshObject) ShadingMode() ShadingMode { return m.shading }
func (m *MeshObject) Time() float32            { return m.time }

// SetTime records the tick's elapsed time and runs the animation hook.
func (m *MeshObject) SetTime(seconds float32) {
	m.time = seconds
	if m.animate != nil {
		m.animate(m, seconds)
	}
}

// SetKa sets the ambient coefficient. Values are not range checked.
func (m *MeshObject) SetKa(c mgl32.Vec3) error {
	if m.sealed {
		return sealedError("set ka")
	}
	m.material.Ka = c
	return nil
}

// SetKd sets the diffuse coefficient.
func (m *MeshObject) SetKd(c mgl32.Vec3) error {
	if m.sealed {
		return sealedError("set kd")
	}
	m.material.Kd = c
	return nil
}

// SetKs sets the specular coefficient.
func (m *MeshObject) SetKs(c mgl32.Vec3) error {
	if m.sealed {
		return sealedError("set ks")
	}
	m.material.Ks = c
	return nil
}

// SetShininess sets the specular exponent.
func (m *MeshObject) SetShininess(s float32) error {
	if m.sealed {
		return sealedError("set shininess")
	}
	m.material.Shininess = s
	return nil
}

// SetMaterial replaces all coefficients at once.
func (m *MeshObject) SetMaterial(mat Material) error {
	if m.sealed {
		return sealedError("set material")
	}
	m.material = mat
	return nil
}

// SetModelMatrix replaces the transform outright.
func (m *MeshObject) SetModelMatrix(model mgl32.Mat4) error {
	if m.sealed {
		return sealedError("set model matrix")
	}
	m.model = model
	return nil
}

// SetAnimation installs a hook run from SetTime.
func (m *MeshObject) SetAnimation(fn AnimationFunc) error {
	if m.sealed {
		return sealedError("set animation")
	}
	m.animate = fn
	return nil
}

// SetModelMatrixAnimated replaces the transform from an animation hook.
// Unlike SetModelMatrix it is allowed after finalization.
func (m *MeshObject) SetModelMatrixAnimated(model mgl32.Mat4) {
	m.model = model
}

// SetPolygonMode overrides the rasterization mode.
func (m *MeshObject) SetPolygonMode(mode PolygonMode) error {
	if m.sealed {
		return sealedError("set polygon mode")
	}
	m.polygon, m.polygonSet = mode, true
	return nil
}

// SetShadingMode overrides the shading mode.
func (m *MeshObject) SetShadingMode(mode ShadingMode) error {
	if m.sealed {
		return sealedError("set shading mode")
	}
	m.shading, m.shadingSet = mode, true
	return nil
}

func (m *MeshObject) applyDefaultModes() {
	if !m.polygonSet {
		m.polygon = PolygonFill
	}
	if !m.shadingSet {
		m.shading = ShadingTexAlpha
	}
}

// SetUVs assigns one texture coordinate per vertex.
func (m *MeshObject) SetUVs(uvs []mgl32.Vec2) error {
	if m.sealed {
		return sealedError("set uvs")
	}
	if len(uvs) != 0 && len(uvs) != len(m.mesh.Vertices) {
		return fmt.Errorf("set uvs: %w: %d uvs for %d vertices",
			formats.ErrUVCountMismatch, len(uvs), len(m.mesh.Vertices))
	}
	m.mesh.UVs = uvs
	return nil
}

// ReplaceGeometry swaps in new geometry and flags buffers for rebuild.
// It is the only way geometry changes after load and remains allowed after
// finalization.
func (m *MeshObject) ReplaceGeometry(mesh formats.TriangleMesh) error {
	if err := mesh.Validate(); err != nil {
		return &LoadError{Err: err}
	}
	m.mesh = mesh
	m.markDataRefreshed()
	return nil
}
