package scene

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/moonscene/internal/engine/resource"
	"github.com/Faultbox/moonscene/pkg/formats"
)

func TestCreateFromFile(t *testing.T) {
	first := formats.TriangleMesh{Name: "moon", Vertices: quadVertices, Elements: quadElements}
	second := formats.TriangleMesh{Name: "boy", Vertices: quadVertices[:3], Elements: quadElements[:1]}
	f := newFixture(t, staticLoader(first, second))

	obj, err := f.factory.CreateFromFile("obj/boy_moon.obj")
	if err != nil {
		t.Fatalf("CreateFromFile failed: %v", err)
	}
	if obj.Mesh().Name != "moon" {
		t.Errorf("expected first mesh 'moon', got %q", obj.Mesh().Name)
	}
	if f.registry.Len() != 1 || f.backend.Len() != 1 {
		t.Errorf("expected 1 registered object, got registry %d backend %d", f.registry.Len(), f.backend.Len())
	}
	if obj.ModelMatrix() != mgl32.Ident4() {
		t.Errorf("expected identity transform, got %v", obj.ModelMatrix())
	}
	if obj.Material() != DefaultMaterial() {
		t.Errorf("expected default material, got %+v", obj.Material())
	}
}

func TestCreateFromFileErrors(t *testing.T) {
	tests := []struct {
		name   string
		loader MeshLoader
		want   error
	}{
		{
			name:   "zero meshes",
			loader: staticLoader(),
			want:   ErrNoMeshes,
		},
		{
			name: "missing file",
			loader: MeshLoaderFunc(func(path string) ([]formats.TriangleMesh, error) {
				return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
			}),
			want: os.ErrNotExist,
		},
		{
			name: "malformed mesh",
			loader: staticLoader(formats.TriangleMesh{
				Vertices: quadVertices,
				Elements: [][3]int{{0, 1, 9}},
			}),
			want: formats.ErrElementOutOfRange,
		},
		{
			name:   "no loader",
			loader: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.loader)

			obj, err := f.factory.CreateFromFile("obj/plane.obj")
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("expected LoadError, got %v", err)
			}
			if loadErr.Path != "obj/plane.obj" {
				t.Errorf("expected path obj/plane.obj, got %q", loadErr.Path)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if obj != nil {
				t.Error("expected nil object on error")
			}
			if f.registry.Len() != 0 || f.backend.Len() != 0 {
				t.Errorf("expected nothing registered, got registry %d backend %d", f.registry.Len(), f.backend.Len())
			}
		})
	}
}

func TestCreateFromArrays(t *testing.T) {
	f := newFixture(t, nil)

	vertices := append([]mgl32.Vec3(nil), quadVertices...)
	obj, err := f.factory.CreateFromArrays(vertices, quadElements)
	if err != nil {
		t.Fatalf("CreateFromArrays failed: %v", err)
	}

	vertices[0] = mgl32.Vec3{9, 9, 9}
	if obj.Mesh().Vertices[0] == vertices[0] {
		t.Error("expected caller slice to be copied")
	}
	if !obj.Mesh().HasNormals() {
		t.Error("expected normals to be computed")
	}
	if n := obj.Mesh().Normals[0]; !n.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("expected +Z normal, got %v", n)
	}

	if _, err := f.factory.CreateFromArrays(quadVertices, [][3]int{{0, 1, 4}}); !errors.Is(err, formats.ErrElementOutOfRange) {
		t.Errorf("expected ErrElementOutOfRange, got %v", err)
	}
	if _, err := f.factory.CreateFromArrays(nil, nil); !errors.Is(err, formats.ErrNoVertices) {
		t.Errorf("expected ErrNoVertices, got %v", err)
	}
	if f.registry.Len() != 1 {
		t.Errorf("expected 1 registered object, got %d", f.registry.Len())
	}
}

func TestBuildMissingBindingsLeaveRegistryUnchanged(t *testing.T) {
	tests := []struct {
		name string
		desc ObjectDesc
		kind string
	}{
		{
			name: "missing shader",
			desc: ObjectDesc{Vertices: quadVertices, Triangles: quadElements, Shader: "nonexistent"},
			kind: "shader",
		},
		{
			name: "missing texture",
			desc: ObjectDesc{
				Vertices:  quadVertices,
				Triangles: quadElements,
				Shader:    "basic",
				Textures:  []TextureRef{{Sampler: "tex_color", Name: "color"}, {Sampler: "tex_normal", Name: "nonexistent"}},
			},
			kind: "texture",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.quad(t)
			before := f.registry.Handles()

			obj, err := f.factory.Build(tt.desc)
			var nf *resource.NotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}
			if nf.Kind != tt.kind || nf.Name != "nonexistent" {
				t.Errorf("expected %s nonexistent, got %s %s", tt.kind, nf.Kind, nf.Name)
			}
			if obj != nil {
				t.Error("expected nil object")
			}

			after := f.registry.Handles()
			if len(after) != len(before) || f.backend.Len() != len(before) {
				t.Errorf("expected %d objects, got registry %d backend %d", len(before), len(after), f.backend.Len())
			}
		})
	}
}

func TestBuildConfiguresObject(t *testing.T) {
	f := newFixture(t, nil)

	model := scaleAndLift()
	mat := Material{Ka: mgl32.Vec3{1, 1, 1}, Kd: mgl32.Vec3{1, 1, 1}, Ks: mgl32.Vec3{0.9, 0.9, 0.9}, Shininess: 1000}
	uvs := []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	obj, err := f.factory.Build(ObjectDesc{
		Vertices:  quadVertices,
		Triangles: quadElements,
		UVs:       uvs,
		Model:     &model,
		Material:  &mat,
		Shader:    "basic",
		Textures:  []TextureRef{
			{Sampler: "tex_color", Name: "color"},
			{Sampler: "tex_detail", Name: "color"},
			{Sampler: "tex_color", Name: "window"},
		},
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if obj.ModelMatrix() != model {
		t.Errorf("expected model %v, got %v", model, obj.ModelMatrix())
	}
	if obj.Material() != mat {
		t.Errorf("expected material %+v, got %+v", mat, obj.Material())
	}
	if !obj.Mesh().HasUVs() {
		t.Error("expected uvs to be set")
	}
	s, ok := obj.Shader()
	if !ok || s.Name != "basic" {
		t.Errorf("expected shader basic, got %q (bound %v)", s.Name, ok)
	}
	tex := obj.Textures()
	if len(tex) != 2 {
		t.Fatalf("expected 2 bindings, got %d: %+v", len(tex), tex)
	}
	if tex[0].Sampler != "tex_color" || tex[0].Texture.Name != "window" {
		t.Errorf("expected tex_color rebound to window first, got %+v", tex[0])
	}
	if tex[1].Sampler != "tex_detail" || tex[1].Texture.Name != "color" {
		t.Errorf("expected tex_detail=color second, got %+v", tex[1])
	}
	if !obj.HasAlpha() {
		t.Error("expected translucent texture to enable alpha")
	}
}

func TestBuildRejectsBadUVs(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.factory.Build(ObjectDesc{
		Vertices:  quadVertices,
		Triangles: quadElements,
		UVs:       []mgl32.Vec2{{0, 0}},
		Shader:    "basic",
	})
	if !errors.Is(err, formats.ErrUVCountMismatch) {
		t.Errorf("expected ErrUVCountMismatch, got %v", err)
	}
	if f.registry.Len() != 0 {
		t.Errorf("expected nothing registered, got %d", f.registry.Len())
	}
}

func TestBuildWithoutGeometry(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.factory.Build(ObjectDesc{Shader: "basic"})
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Errorf("expected LoadError, got %v", err)
	}
}

func TestBackgroundSlots(t *testing.T) {
	f := newFixture(t, nil)

	if _, err := f.factory.CreateGradient(mgl32.Vec4{0.1, 0.1, 0.1, 1}, mgl32.Vec4{0.3, 0.1, 0.1, 1}); err != nil {
		t.Fatalf("CreateGradient failed: %v", err)
	}
	if _, err := f.factory.CreateBackground("stars", []TextureRef{{Sampler: "tex_buzz", Name: "color"}}); err != nil {
		t.Fatalf("CreateBackground failed: %v", err)
	}
	if _, err := f.factory.CreateSkybox("skybox", "cube_map"); err != nil {
		t.Fatalf("CreateSkybox failed: %v", err)
	}

	var cfgErr *ConfigurationError
	if _, err := f.factory.CreateBackground("stars", nil); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError for second background, got %v", err)
	}
	if _, err := f.factory.CreateSkybox("skybox", "cube_map"); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError for second skybox, got %v", err)
	}
	if _, err := f.factory.CreateGradient(mgl32.Vec4{}, mgl32.Vec4{}); err != nil {
		t.Errorf("expected gradients to be unlimited, got %v", err)
	}

	if f.registry.Len() != 4 {
		t.Errorf("expected 4 objects, got %d", f.registry.Len())
	}
	if _, ok := f.registry.Background(); !ok {
		t.Error("expected background slot to be filled")
	}
	if _, ok := f.registry.Skybox(); !ok {
		t.Error("expected skybox slot to be filled")
	}

	// Gradients need no shader.
	if err := f.registry.Finalize(); err != nil {
		t.Errorf("Finalize failed: %v", err)
	}
}

func TestCreateSkyboxRequiresCubeMap(t *testing.T) {
	f := newFixture(t, nil)

	var cfgErr *ConfigurationError
	if _, err := f.factory.CreateSkybox("skybox", "color"); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigurationError for 2D texture, got %v", err)
	}
	if _, err := f.factory.CreateSkybox("skybox", "nonexistent"); !resource.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	if _, err := f.factory.CreateSkybox("nonexistent", "cube_map"); !resource.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	sky, err := f.factory.CreateSkybox("skybox", "cube_map")
	if err != nil {
		t.Fatalf("CreateSkybox failed: %v", err)
	}
	cube, ok := sky.CubeMap()
	if !ok || cube.Target != resource.TargetCube {
		t.Errorf("expected cube map bound to %s, got %+v", SkyboxSampler, cube)
	}
}

func TestNilLibraries(t *testing.T) {
	registry := NewRegistry(NewHeadlessBackend(1, 1), &ManualClock{})
	factory := NewFactory(registry, nil, nil, nil)

	if _, err := factory.CreateBackground("stars", nil); !resource.IsNotFound(err) {
		t.Errorf("expected NotFoundError without shader library, got %v", err)
	}
	if registry.Len() != 0 {
		t.Errorf("expected nothing registered, got %d", registry.Len())
	}
}

func TestCompose(t *testing.T) {
	tr := mgl32.Translate3D(1, 0, 0)
	s := mgl32.Scale3D(2, 2, 2)
	r := mgl32.HomogRotate3DZ(mgl32.DegToRad(90))

	m := Compose(tr, s, r)
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()

	// Rotate (0,1,0), scale (0,2,0), translate (1,2,0).
	if p.Sub(mgl32.Vec3{1, 2, 0}).Len() > 1e-5 {
		t.Errorf("expected (1, 2, 0), got %v", p)
	}

	same := Transform(mgl32.Vec3{1, 0, 0}, mgl32.Vec3{2, 2, 2}, mgl32.Vec3{0, 0, 1}, mgl32.DegToRad(90))
	if !matricesClose(same, m) {
		t.Errorf("expected Transform to match Compose, got %v", same)
	}

	noRot := Transform(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, mgl32.Vec3{}, 1)
	if !matricesClose(noRot, mgl32.Ident4()) {
		t.Errorf("expected identity for zero axis, got %v", noRot)
	}
}

// scaleAndLift scales by 0.01 and lifts by 1.3, flipping Z.
func scaleAndLift() mgl32.Mat4 {
	return Compose(
		mgl32.Translate3D(0, 1.3, 0),
		mgl32.Scale3D(0.01, 0.01, 0.01),
		mgl32.Scale3D(1, 1, -1),
	)
}

func matricesClose(a, b mgl32.Mat4) bool {
	for i := range a {
		if d := a[i] - b[i]; d > 1e-5 || d < -1e-5 {
			return false
		}
	}
	return true
}
