package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/moonscene/internal/engine/resource"
	"github.com/Faultbox/moonscene/internal/logger"
	"github.com/Faultbox/moonscene/pkg/formats"
)

// MeshLoader turns a file path into discrete triangle meshes.
type MeshLoader interface {
	LoadMeshes(path string) ([]formats.TriangleMesh, error)
}

// MeshLoaderFunc adapts a function to MeshLoader.
type MeshLoaderFunc func(path string) ([]formats.TriangleMesh, error)

func (f MeshLoaderFunc) LoadMeshes(path string) ([]formats.TriangleMesh, error) { return f(path) }

// TextureRef names a library texture to bind to a sampler.
type TextureRef struct {
	Sampler string
	Name    string
}

// ObjectDesc describes a complete mesh object. Either File or Vertices
// supplies the geometry.
type ObjectDesc struct {
	File      string
	Vertices  []mgl32.Vec3
	Triangles [][3]int
	UVs       []mgl32.Vec2

	Model    *mgl32.Mat4 // nil means identity
	Material *Material   // nil means DefaultMaterial
	Shader   string
	Textures []TextureRef
	Polygon  *PolygonMode
	Animate  AnimationFunc
}

// Factory builds objects and registers them with a registry.
type Factory struct {
	registry *Registry
	loader   MeshLoader
	shaders  ShaderSource
	textures TextureSource
	log      *zap.Logger
}

// NewFactory creates a factory. Any collaborator may be nil if the
// operations that need it are not used.
func NewFactory(registry *Registry, loader MeshLoader, shaders ShaderSource, textures TextureSource) *Factory {
	return &Factory{
		registry: registry,
		loader:   loader,
		shaders:  shaders,
		textures: textures,
		log:      logger.Named("factory"),
	}
}

// CreateFromFile loads path, wraps its first mesh and registers it.
func (f *Factory) CreateFromFile(path string) (*MeshObject, error) {
	mesh, err := f.loadFirst(path)
	if err != nil {
		return nil, err
	}
	obj := NewMeshObject(mesh)
	if _, err := f.registry.Register(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// CreateFromArrays builds a mesh object from caller geometry and registers
// it. The slices are copied.
func (f *Factory) CreateFromArrays(vertices []mgl32.Vec3, triangles [][3]int) (*MeshObject, error) {
	mesh, err := meshFromArrays(vertices, triangles, nil)
	if err != nil {
		return nil, err
	}
	obj := NewMeshObject(mesh)
	if _, err := f.registry.Register(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// Build resolves every binding in desc before touching the registry, so a
// missing shader or texture leaves the scene unchanged.
func (f *Factory) Build(desc ObjectDesc) (*MeshObject, error) {
	shader, err := f.lookupShader(desc.Shader)
	if err != nil {
		return nil, err
	}
	textures, err := f.lookupTextures(desc.Textures)
	if err != nil {
		return nil, err
	}

	var mesh formats.TriangleMesh
	if len(desc.Vertices) > 0 {
		mesh, err = meshFromArrays(desc.Vertices, desc.Triangles, desc.UVs)
	} else if desc.File != "" {
		mesh, err = f.loadFirst(desc.File)
	} else {
		err = &LoadError{Err: formats.ErrNoVertices}
	}
	if err != nil {
		return nil, err
	}

	obj := NewMeshObject(mesh)
	if desc.File != "" && len(desc.UVs) > 0 && len(desc.Vertices) == 0 {
		if err := obj.SetUVs(desc.UVs); err != nil {
			return nil, &LoadError{Path: desc.File, Err: err}
		}
	}
	if desc.Model != nil {
		obj.model = *desc.Model
	}
	if desc.Material != nil {
		obj.material = *desc.Material
	}
	if desc.Polygon != nil {
		obj.polygon, obj.polygonSet = *desc.Polygon, true
	}
	obj.animate = desc.Animate
	obj.shader, obj.hasShader = shader, true
	obj.textures = textures

	if _, err := f.registry.Register(obj); err != nil {
		return nil, err
	}
	return obj, nil
}

// CreateBackground registers a background effect bound to shader and the
// optional textures.
func (f *Factory) CreateBackground(shader string, textures []TextureRef) (*BackgroundEffect, error) {
	s, err := f.lookupShader(shader)
	if err != nil {
		return nil, err
	}
	bound, err := f.lookupTextures(textures)
	if err != nil {
		return nil, err
	}

	bg := NewBackgroundEffect()
	bg.shader, bg.hasShader = s, true
	bg.textures = bound
	if _, err := f.registry.Register(bg); err != nil {
		return nil, err
	}
	return bg, nil
}

// CreateSkybox registers a skybox bound to shader with cubeMap on
// SkyboxSampler. The texture must be a cube map.
func (f *Factory) CreateSkybox(shader, cubeMap string) (*Skybox, error) {
	s, err := f.lookupShader(shader)
	if err != nil {
		return nil, err
	}
	bound, err := f.lookupTextures([]TextureRef{{Sampler: SkyboxSampler, Name: cubeMap}})
	if err != nil {
		return nil, err
	}
	if bound[0].Texture.Target != resource.TargetCube {
		return nil, &ConfigurationError{
			Op:     "create skybox",
			Reason: fmt.Sprintf("texture %q is not a cube map", cubeMap),
		}
	}

	sky := NewSkybox()
	sky.shader, sky.hasShader = s, true
	sky.textures = bound
	if _, err := f.registry.Register(sky); err != nil {
		return nil, err
	}
	return sky, nil
}

// CreateGradient registers a two-colour backdrop.
func (f *Factory) CreateGradient(top, bottom mgl32.Vec4) (*GradientBackground, error) {
	g := NewGradientBackground(top, bottom)
	if _, err := f.registry.Register(g); err != nil {
		return nil, err
	}
	return g, nil
}

func (f *Factory) loadFirst(path string) (formats.TriangleMesh, error) {
	if f.loader == nil {
		return formats.TriangleMesh{}, &LoadError{Path: path, Err: errors.New("no mesh loader configured")}
	}
	meshes, err := f.loader.LoadMeshes(path)
	if err != nil {
		return formats.TriangleMesh{}, &LoadError{Path: path, Err: err}
	}
	if len(meshes) == 0 {
		return formats.TriangleMesh{}, &LoadError{Path: path, Err: ErrNoMeshes}
	}

	mesh := meshes[0]
	if err := mesh.Validate(); err != nil {
		return formats.TriangleMesh{}, &LoadError{Path: path, Err: err}
	}
	f.log.Info("mesh loaded",
		zap.String("path", path),
		zap.Int("vertices", mesh.VertexCount()),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("skipped_meshes", len(meshes)-1))
	return mesh, nil
}

func (f *Factory) lookupShader(name string) (resource.Shader, error) {
	if f.shaders == nil {
		return resource.Shader{}, &resource.NotFoundError{Kind: "shader", Name: name}
	}
	return f.shaders.Get(name)
}

// lookupTextures resolves refs with the same rules as BindTexture: a later
// ref to an already bound sampler replaces the earlier texture.
func (f *Factory) lookupTextures(refs []TextureRef) ([]TextureBinding, error) {
	var bound binding
	for _, ref := range refs {
		if f.textures == nil {
			return nil, &resource.NotFoundError{Kind: "texture", Name: ref.Name}
		}
		t, err := f.textures.Get(ref.Name)
		if err != nil {
			return nil, err
		}
		if err := bound.useTexture(ref.Sampler, t); err != nil {
			return nil, err
		}
	}
	return bound.textures, nil
}

func meshFromArrays(vertices []mgl32.Vec3, triangles [][3]int, uvs []mgl32.Vec2) (formats.TriangleMesh, error) {
	mesh := formats.TriangleMesh{
		Vertices: append([]mgl32.Vec3(nil), vertices...),
		Elements: append([][3]int(nil), triangles...),
		UVs:      append([]mgl32.Vec2(nil), uvs...),
	}
	if err := mesh.Validate(); err != nil {
		return formats.TriangleMesh{}, &LoadError{Err: err}
	}
	mesh.ComputeNormals()
	return mesh, nil
}

// Compose returns t * s * r, so a point is rotated, then scaled, then
// translated.
func Compose(t, s, r mgl32.Mat4) mgl32.Mat4 {
	return t.Mul4(s).Mul4(r)
}

// Transform builds Compose from a translation, per-axis scale and a
// rotation of angle radians about axis. A zero axis means no rotation.
func Transform(translate, scale, axis mgl32.Vec3, angle float32) mgl32.Mat4 {
	r := mgl32.Ident4()
	if axis.Len() > 0 && angle != 0 {
		r = mgl32.HomogRotate3D(angle, axis.Normalize())
	}
	return Compose(
		mgl32.Translate3D(translate[0], translate[1], translate[2]),
		mgl32.Scale3D(scale[0], scale[1], scale[2]),
		r,
	)
}
