// Package manifest reads YAML scene descriptions and builds them into a
// scene registry.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest describes a complete scene.
type Manifest struct {
	Name        string        `yaml:"name"`
	Shaders     []ShaderDef   `yaml:"shaders"`
	Textures    []TextureDef  `yaml:"textures"`
	CubeMaps    []CubeMapDef  `yaml:"cubemaps"`
	Lights      []LightDef    `yaml:"lights"`
	Backgrounds BackgroundDef `yaml:"backgrounds"`
	Objects     []ObjectDef   `yaml:"objects"`
}

// ShaderDef names a vertex/fragment source pair.
type ShaderDef struct {
	Name     string `yaml:"name"`
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

// TextureDef names a 2D image file.
type TextureDef struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

// CubeMapDef names six face images in +X, -X, +Y, -Y, +Z, -Z order.
type CubeMapDef struct {
	Name  string   `yaml:"name"`
	Faces []string `yaml:"faces"`
}

// LightDef is a point light.
type LightDef struct {
	Position []float32 `yaml:"position"`
	Ambient  []float32 `yaml:"ambient"`
	Diffuse  []float32 `yaml:"diffuse"`
	Specular []float32 `yaml:"specular"`
}

// BackgroundDef holds the optional backdrops.
type BackgroundDef struct {
	Gradient *GradientDef `yaml:"gradient"`
	Effect   *EffectDef   `yaml:"effect"`
	Skybox   *SkyboxDef   `yaml:"skybox"`
}

// GradientDef is a two-colour vertical gradient.
type GradientDef struct {
	Top    []float32 `yaml:"top"`
	Bottom []float32 `yaml:"bottom"`
}

// EffectDef is a procedurally shaded full-screen background.
type EffectDef struct {
	Shader   string       `yaml:"shader"`
	Textures []BindingDef `yaml:"textures"`
}

// SkyboxDef binds a cube map to a skybox shader.
type SkyboxDef struct {
	Shader  string `yaml:"shader"`
	CubeMap string `yaml:"cubemap"`
}

// BindingDef attaches a library texture to a sampler.
type BindingDef struct {
	Sampler string `yaml:"sampler"`
	Texture string `yaml:"texture"`
}

// ObjectDef describes one mesh object. Geometry comes from File or from
// inline Vertices and Triangles.
type ObjectDef struct {
	Name      string       `yaml:"name"`
	File      string       `yaml:"file"`
	Vertices  [][]float32  `yaml:"vertices"`
	Triangles [][]int      `yaml:"triangles"`
	UVs       [][]float32  `yaml:"uvs"`
	Transform TransformDef `yaml:"transform"`
	Matrix    []float32    `yaml:"matrix"` // 16 values, row-major
	Material  *MaterialDef `yaml:"material"`
	Shader    string       `yaml:"shader"`
	Textures  []BindingDef `yaml:"textures"`
	Polygon   string       `yaml:"polygon"`
	Shading   string       `yaml:"shading"`
	Spin      *SpinDef     `yaml:"spin"`
}

// TransformDef is applied as translate * scale * rotate.
type TransformDef struct {
	Translate []float32 `yaml:"translate"`
	Scale     []float32 `yaml:"scale"`
	Axis      []float32 `yaml:"axis"`
	Degrees   float32   `yaml:"degrees"`
}

// MaterialDef overrides the default Phong coefficients. Omitted fields
// keep their defaults.
type MaterialDef struct {
	Ka        []float32 `yaml:"ka"`
	Kd        []float32 `yaml:"kd"`
	Ks        []float32 `yaml:"ks"`
	Shininess *float32  `yaml:"shininess"`
}

// SpinDef rotates an object about Axis at Speed degrees per second on top
// of its static transform.
type SpinDef struct {
	Axis  []float32 `yaml:"axis"`
	Speed float32   `yaml:"speed"`
}

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid manifest")

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates manifest YAML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structure: required fields, vector lengths and unique
// names. References to libraries are checked when the scene is built.
func (m *Manifest) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	names := make(map[string]bool)
	for i, s := range m.Shaders {
		if s.Name == "" || s.Vertex == "" || s.Fragment == "" {
			add("shaders[%d]: name, vertex and fragment are required", i)
		}
		if names["shader:"+s.Name] {
			add("shaders[%d]: duplicate name %q", i, s.Name)
		}
		names["shader:"+s.Name] = true
	}
	for i, t := range m.Textures {
		if t.Name == "" || t.File == "" {
			add("textures[%d]: name and file are required", i)
		}
		if names["texture:"+t.Name] {
			add("textures[%d]: duplicate name %q", i, t.Name)
		}
		names["texture:"+t.Name] = true
	}
	for i, c := range m.CubeMaps {
		if c.Name == "" {
			add("cubemaps[%d]: name is required", i)
		}
		if len(c.Faces) != 6 {
			add("cubemaps[%d]: expected 6 faces, got %d", i, len(c.Faces))
		}
		if names["texture:"+c.Name] {
			add("cubemaps[%d]: duplicate texture name %q", i, c.Name)
		}
		names["texture:"+c.Name] = true
	}

	for i, l := range m.Lights {
		checkVec(add, fmt.Sprintf("lights[%d].position", i), l.Position, 3, true)
		checkVec(add, fmt.Sprintf("lights[%d].ambient", i), l.Ambient, 3, false)
		checkVec(add, fmt.Sprintf("lights[%d].diffuse", i), l.Diffuse, 3, false)
		checkVec(add, fmt.Sprintf("lights[%d].specular", i), l.Specular, 3, false)
	}

	bg := m.Backgrounds
	if bg.Gradient != nil {
		checkVec(add, "backgrounds.gradient.top", bg.Gradient.Top, 4, true)
		checkVec(add, "backgrounds.gradient.bottom", bg.Gradient.Bottom, 4, true)
	}
	if bg.Effect != nil && bg.Effect.Shader == "" {
		add("backgrounds.effect: shader is required")
	}
	if bg.Skybox != nil && (bg.Skybox.Shader == "" || bg.Skybox.CubeMap == "") {
		add("backgrounds.skybox: shader and cubemap are required")
	}

	for i, o := range m.Objects {
		m.validateObject(add, i, o)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (m *Manifest) validateObject(add func(string, ...any), i int, o ObjectDef) {
	label := fmt.Sprintf("objects[%d]", i)
	if o.Name != "" {
		label = fmt.Sprintf("objects[%d] (%s)", i, o.Name)
	}

	switch {
	case o.File == "" && len(o.Vertices) == 0:
		add("%s: file or vertices is required", label)
	case o.File != "" && len(o.Vertices) > 0:
		add("%s: file and vertices are mutually exclusive", label)
	}
	if len(o.Vertices) > 0 && len(o.Triangles) == 0 {
		add("%s: vertices given without triangles", label)
	}
	for j, v := range o.Vertices {
		checkVec(add, fmt.Sprintf("%s.vertices[%d]", label, j), v, 3, true)
	}
	for j, tri := range o.Triangles {
		if len(tri) != 3 {
			add("%s.triangles[%d]: expected 3 indices, got %d", label, j, len(tri))
		}
	}
	for j, uv := range o.UVs {
		checkVec(add, fmt.Sprintf("%s.uvs[%d]", label, j), uv, 2, true)
	}
	if o.Shader == "" {
		add("%s: shader is required", label)
	}

	checkVec(add, label+".transform.translate", o.Transform.Translate, 3, false)
	checkVec(add, label+".transform.scale", o.Transform.Scale, 3, false)
	checkVec(add, label+".transform.axis", o.Transform.Axis, 3, false)
	if len(o.Matrix) > 0 {
		if len(o.Matrix) != 16 {
			add("%s.matrix: expected 16 values, got %d", label, len(o.Matrix))
		}
		if !o.Transform.isZero() {
			add("%s: matrix and transform are mutually exclusive", label)
		}
	}
	if o.Material != nil {
		checkVec(add, label+".material.ka", o.Material.Ka, 3, false)
		checkVec(add, label+".material.kd", o.Material.Kd, 3, false)
		checkVec(add, label+".material.ks", o.Material.Ks, 3, false)
	}
	if _, err := parsePolygon(o.Polygon); err != nil {
		add("%s: %v", label, err)
	}
	if _, err := parseShading(o.Shading); err != nil {
		add("%s: %v", label, err)
	}
	if o.Spin != nil {
		checkVec(add, label+".spin.axis", o.Spin.Axis, 3, true)
	}
}

func (t TransformDef) isZero() bool {
	return len(t.Translate) == 0 && len(t.Scale) == 0 && len(t.Axis) == 0 && t.Degrees == 0
}

func checkVec(add func(string, ...any), field string, v []float32, n int, required bool) {
	if len(v) == 0 {
		if required {
			add("%s: required", field)
		}
		return
	}
	if len(v) != n {
		add("%s: expected %d values, got %d", field, n, len(v))
	}
}
