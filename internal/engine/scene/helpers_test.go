package scene

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/moonscene/internal/engine/resource"
	"github.com/Faultbox/moonscene/pkg/formats"
)

const (
	testVert = "void main() { gl_Position = vec4(0.0); }"
	testFrag = "out vec4 frag; void main() { frag = vec4(1.0); }"
)

var (
	quadVertices = []mgl32.Vec3{{0.5, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	quadElements = [][3]int{{0, 1, 2}, {0, 2, 3}}
)

func pngBytes(t *testing.T, size int, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: alpha})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

// testLibraries returns sealed libraries with shaders basic, stars and
// skybox, textures color (opaque) and window (translucent), and the cube
// map cube_map.
func testLibraries(t *testing.T) (*resource.ShaderLibrary, *resource.TextureLibrary) {
	t.Helper()

	shaders := resource.NewShaderLibrary(&resource.HeadlessCompiler{}, nil)
	for _, name := range []string{"basic", "stars", "skybox"} {
		if err := shaders.Add(testVert, testFrag, name); err != nil {
			t.Fatalf("adding shader %s: %v", name, err)
		}
	}
	shaders.Seal()

	files := map[string][]byte{
		"color.png":  pngBytes(t, 2, 255),
		"window.png": pngBytes(t, 2, 120),
	}
	faces := []string{"posx.png", "negx.png", "posy.png", "negy.png", "posz.png", "negz.png"}
	for _, f := range faces {
		files[f] = pngBytes(t, 4, 255)
	}
	read := func(path string) ([]byte, error) {
		if data, ok := files[path]; ok {
			return data, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}

	textures := resource.NewTextureLibrary(&resource.HeadlessUploader{}, read)
	if err := textures.Add("color.png", "color"); err != nil {
		t.Fatalf("adding texture: %v", err)
	}
	if err := textures.Add("window.png", "window"); err != nil {
		t.Fatalf("adding texture: %v", err)
	}
	if err := textures.AddCubeMap(faces, "cube_map"); err != nil {
		t.Fatalf("adding cube map: %v", err)
	}
	textures.Seal()

	return shaders, textures
}

// recordingBackend logs Resolve and Draw calls in order.
type recordingBackend struct {
	*HeadlessBackend
	events    []string
	refreshed []bool // DataRefreshed observed at each Initialize
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{HeadlessBackend: NewHeadlessBackend(640, 480)}
}

func (b *recordingBackend) Resolve(h Handle) (Object, bool) {
	b.events = append(b.events, fmt.Sprintf("resolve %d", h.index))
	return b.HeadlessBackend.Resolve(h)
}

func (b *recordingBackend) Initialize(h Handle) error {
	if obj, ok := b.HeadlessBackend.Resolve(h); ok {
		b.refreshed = append(b.refreshed, obj.DataRefreshed())
	}
	return b.HeadlessBackend.Initialize(h)
}

func (b *recordingBackend) Draw() error {
	b.events = append(b.events, "draw")
	return b.HeadlessBackend.Draw()
}

// steppingClock advances one millisecond every time it is read, so a tick
// that sampled it twice would hand out two different times.
type steppingClock struct {
	now time.Duration
}

func (c *steppingClock) Now() time.Duration {
	c.now += time.Millisecond
	return c.now
}

type sceneFixture struct {
	backend  *HeadlessBackend
	clock    *ManualClock
	registry *Registry
	factory  *Factory
	shaders  *resource.ShaderLibrary
	textures *resource.TextureLibrary
}

func newFixture(t *testing.T, loader MeshLoader) *sceneFixture {
	t.Helper()
	shaders, textures := testLibraries(t)
	backend := NewHeadlessBackend(800, 600)
	clock := &ManualClock{}
	registry := NewRegistry(backend, clock)
	return &sceneFixture{
		backend:  backend,
		clock:    clock,
		registry: registry,
		factory:  NewFactory(registry, loader, shaders, textures),
		shaders:  shaders,
		textures: textures,
	}
}

func (f *sceneFixture) quad(t *testing.T) *MeshObject {
	t.Helper()
	obj, err := f.factory.CreateFromArrays(quadVertices, quadElements)
	if err != nil {
		t.Fatalf("CreateFromArrays failed: %v", err)
	}
	if err := obj.BindShader(f.shaders, "basic"); err != nil {
		t.Fatalf("BindShader failed: %v", err)
	}
	return obj
}

func (f *sceneFixture) run(t *testing.T) {
	t.Helper()
	if err := f.registry.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if err := f.registry.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
}

func (f *sceneFixture) tick(t *testing.T) {
	t.Helper()
	if err := f.registry.Tick(); err != nil {
		t.Fatalf("Tick failed: %v", err)
	}
}

func staticLoader(meshes ...formats.TriangleMesh) MeshLoader {
	return MeshLoaderFunc(func(string) ([]formats.TriangleMesh, error) {
		return meshes, nil
	})
}
