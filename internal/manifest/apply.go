package manifest

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/moonscene/internal/engine/resource"
	"github.com/Faultbox/moonscene/internal/engine/scene"
	"github.com/Faultbox/moonscene/internal/logger"
)

// Builder turns a manifest into a finalized scene.
type Builder struct {
	Shaders  *resource.ShaderLibrary
	Textures *resource.TextureLibrary
	Registry *scene.Registry
	Loader   scene.MeshLoader
}

// Built is what Apply created.
type Built struct {
	Objects    []*scene.MeshObject
	ByName     map[string]*scene.MeshObject
	Gradient   *scene.GradientBackground
	Background *scene.BackgroundEffect
	Skybox     *scene.Skybox
}

// Apply populates and seals the libraries, then adds lights, backgrounds
// and objects to the registry and finalizes it. The registry is left
// paused.
func (b *Builder) Apply(m *Manifest) (*Built, error) {
	log := logger.Named("manifest")

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := b.loadLibraries(m); err != nil {
		return nil, err
	}

	for i, l := range m.Lights {
		if err := b.Registry.AddLight(lightFromDef(l)); err != nil {
			return nil, fmt.Errorf("lights[%d]: %w", i, err)
		}
	}

	factory := scene.NewFactory(b.Registry, b.Loader, b.Shaders, b.Textures)
	built := &Built{ByName: make(map[string]*scene.MeshObject)}
	if err := b.addBackgrounds(factory, m.Backgrounds, built); err != nil {
		return nil, err
	}

	for i, def := range m.Objects {
		obj, err := buildObject(factory, def)
		if err != nil {
			return nil, fmt.Errorf("objects[%d] %s: %w", i, def.Name, err)
		}
		built.Objects = append(built.Objects, obj)
		if def.Name != "" {
			built.ByName[def.Name] = obj
		}
	}

	if err := b.Registry.Finalize(); err != nil {
		return nil, err
	}

	log.Info("scene built",
		zap.String("name", m.Name),
		zap.Int("objects", len(built.Objects)),
		zap.Int("lights", len(m.Lights)),
		zap.Int("shaders", b.Shaders.Len()),
		zap.Int("textures", b.Textures.Len()),
	)
	return built, nil
}

func (b *Builder) loadLibraries(m *Manifest) error {
	for _, s := range m.Shaders {
		if err := b.Shaders.AddFromFiles(s.Vertex, s.Fragment, s.Name); err != nil {
			return fmt.Errorf("shader %s: %w", s.Name, err)
		}
	}
	for _, t := range m.Textures {
		if err := b.Textures.Add(t.File, t.Name); err != nil {
			return fmt.Errorf("texture %s: %w", t.Name, err)
		}
	}
	for _, c := range m.CubeMaps {
		if err := b.Textures.AddCubeMap(c.Faces, c.Name); err != nil {
			return fmt.Errorf("cube map %s: %w", c.Name, err)
		}
	}
	b.Shaders.Seal()
	b.Textures.Seal()
	return nil
}

func (b *Builder) addBackgrounds(f *scene.Factory, def BackgroundDef, built *Built) error {
	var err error
	if g := def.Gradient; g != nil {
		built.Gradient, err = f.CreateGradient(vec4(g.Top, mgl32.Vec4{}), vec4(g.Bottom, mgl32.Vec4{}))
		if err != nil {
			return fmt.Errorf("gradient: %w", err)
		}
	}
	if e := def.Effect; e != nil {
		built.Background, err = f.CreateBackground(e.Shader, textureRefs(e.Textures))
		if err != nil {
			return fmt.Errorf("background effect: %w", err)
		}
	}
	if s := def.Skybox; s != nil {
		built.Skybox, err = f.CreateSkybox(s.Shader, s.CubeMap)
		if err != nil {
			return fmt.Errorf("skybox: %w", err)
		}
	}
	return nil
}

func buildObject(f *scene.Factory, def ObjectDef) (*scene.MeshObject, error) {
	model := objectModel(def)
	desc := scene.ObjectDesc{
		File:     def.File,
		Model:    &model,
		Shader:   def.Shader,
		Textures: textureRefs(def.Textures),
	}
	for _, v := range def.Vertices {
		desc.Vertices = append(desc.Vertices, vec3(v, mgl32.Vec3{}))
	}
	for _, tri := range def.Triangles {
		desc.Triangles = append(desc.Triangles, [3]int{tri[0], tri[1], tri[2]})
	}
	for _, uv := range def.UVs {
		desc.UVs = append(desc.UVs, mgl32.Vec2{uv[0], uv[1]})
	}
	if def.Material != nil {
		mat := materialFromDef(def.Material)
		desc.Material = &mat
	}
	if def.Polygon != "" {
		mode, _ := parsePolygon(def.Polygon)
		desc.Polygon = &mode
	}
	if def.Spin != nil {
		desc.Animate = spin(model, vec3(def.Spin.Axis, mgl32.Vec3{0, 1, 0}), def.Spin.Speed)
	}

	obj, err := f.Build(desc)
	if err != nil {
		return nil, err
	}
	if def.Shading != "" {
		mode, _ := parseShading(def.Shading)
		if err := obj.SetShadingMode(mode); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// objectModel returns the explicit row-major matrix if given, otherwise
// the composed transform.
func objectModel(def ObjectDef) mgl32.Mat4 {
	if len(def.Matrix) == 16 {
		var m mgl32.Mat4
		copy(m[:], def.Matrix)
		// Values were read row by row into a column-major array.
		return m.Transpose()
	}
	t := def.Transform
	return scene.Transform(
		vec3(t.Translate, mgl32.Vec3{}),
		vec3(t.Scale, mgl32.Vec3{1, 1, 1}),
		vec3(t.Axis, mgl32.Vec3{}),
		mgl32.DegToRad(t.Degrees),
	)
}

func spin(base mgl32.Mat4, axis mgl32.Vec3, degreesPerSecond float32) scene.AnimationFunc {
	if axis.Len() == 0 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	axis = axis.Normalize()
	return func(m *scene.MeshObject, seconds float32) {
		angle := mgl32.DegToRad(degreesPerSecond * seconds)
		m.SetModelMatrixAnimated(base.Mul4(mgl32.HomogRotate3D(angle, axis)))
	}
}

func lightFromDef(l LightDef) scene.Light {
	return scene.Light{
		Position: vec3(l.Position, mgl32.Vec3{}),
		Ambient:  vec3(l.Ambient, mgl32.Vec3{0.1, 0.1, 0.1}),
		Diffuse:  vec3(l.Diffuse, mgl32.Vec3{1, 1, 1}),
		Specular: vec3(l.Specular, mgl32.Vec3{1, 1, 1}),
	}
}

func materialFromDef(def *MaterialDef) scene.Material {
	mat := scene.DefaultMaterial()
	mat.Ka = vec3(def.Ka, mat.Ka)
	mat.Kd = vec3(def.Kd, mat.Kd)
	mat.Ks = vec3(def.Ks, mat.Ks)
	if def.Shininess != nil {
		mat.Shininess = *def.Shininess
	}
	return mat
}

func textureRefs(defs []BindingDef) []scene.TextureRef {
	var refs []scene.TextureRef
	for _, d := range defs {
		refs = append(refs, scene.TextureRef{Sampler: d.Sampler, Name: d.Texture})
	}
	return refs
}

func parsePolygon(s string) (scene.PolygonMode, error) {
	switch s {
	case "", "fill":
		return scene.PolygonFill, nil
	case "line":
		return scene.PolygonLine, nil
	case "point":
		return scene.PolygonPoint, nil
	default:
		return 0, fmt.Errorf("unknown polygon mode %q", s)
	}
}

func parseShading(s string) (scene.ShadingMode, error) {
	switch s {
	case "", "tex_alpha":
		return scene.ShadingTexAlpha, nil
	case "none":
		return scene.ShadingNone, nil
	case "lighting":
		return scene.ShadingLighting, nil
	case "tex":
		return scene.ShadingTexOnly, nil
	default:
		return 0, fmt.Errorf("unknown shading mode %q", s)
	}
}

func vec3(v []float32, def mgl32.Vec3) mgl32.Vec3 {
	if len(v) != 3 {
		return def
	}
	return mgl32.Vec3{v[0], v[1], v[2]}
}

func vec4(v []float32, def mgl32.Vec4) mgl32.Vec4 {
	if len(v) != 4 {
		return def
	}
	return mgl32.Vec4{v[0], v[1], v[2], v[3]}
}
