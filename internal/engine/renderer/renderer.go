// Package renderer provides the OpenGL scene backend.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/moonscene/internal/engine/renderer/shaders"
	"github.com/Faultbox/moonscene/internal/engine/scene"
	"github.com/Faultbox/moonscene/internal/engine/shader"
	"github.com/Faultbox/moonscene/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor mgl32.Vec4
}

// Renderer owns scene objects and draws them with OpenGL. It implements
// scene.Backend.
type Renderer struct {
	config Config

	arena   *scene.Arena
	lights  scene.LightSet
	meshes  map[scene.Handle]*meshBuffers
	program map[uint32]*shader.Program

	quad     *screenQuad
	cube     *skyboxCube
	gradient *shader.Program

	view       mgl32.Mat4
	projection mgl32.Mat4
	eye        mgl32.Vec3

	log *zap.Logger
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{
		config:     cfg,
		arena:      scene.NewArena(),
		meshes:     make(map[scene.Handle]*meshBuffers),
		program:    make(map[uint32]*shader.Program),
		view:       mgl32.Ident4(),
		projection: mgl32.Ident4(),
		log:        logger.Named("renderer"),
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	return r, nil
}

// Close releases every GPU object owned by the renderer.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for h, b := range r.meshes {
		b.delete()
		delete(r.meshes, h)
	}
	if r.quad != nil {
		r.quad.delete()
		r.quad = nil
	}
	if r.cube != nil {
		r.cube.delete()
		r.cube = nil
	}
	if r.gradient != nil {
		r.gradient.Delete()
		r.gradient = nil
	}
	r.arena.Clear()
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// SetCamera sets the view and projection used for meshes and the skybox.
func (r *Renderer) SetCamera(view, projection mgl32.Mat4, eye mgl32.Vec3) {
	r.view = view
	r.projection = projection
	r.eye = eye
}

// Add takes ownership of obj.
func (r *Renderer) Add(obj scene.Object) scene.Handle {
	return r.arena.Add(obj)
}

// Resolve returns the object behind h.
func (r *Renderer) Resolve(h scene.Handle) (scene.Object, bool) {
	return r.arena.Get(h)
}

// Remove drops an object and its buffers, leaving h stale.
func (r *Renderer) Remove(h scene.Handle) bool {
	if b, ok := r.meshes[h]; ok {
		b.delete()
		delete(r.meshes, h)
	}
	return r.arena.Remove(h)
}

// Initialize uploads the geometry an object needs.
func (r *Renderer) Initialize(h scene.Handle) error {
	obj, ok := r.arena.Get(h)
	if !ok {
		return fmt.Errorf("initialize: stale handle")
	}

	switch o := obj.(type) {
	case *scene.MeshObject:
		if err := r.uploadMesh(h, o); err != nil {
			return fmt.Errorf("initialize %s: %w", o.Kind(), err)
		}
	case *scene.BackgroundEffect:
		r.ensureQuad()
	case *scene.GradientBackground:
		r.ensureQuad()
		if _, bound := o.Shader(); !bound && r.gradient == nil {
			id, err := shader.CompileProgram(shaders.GradientVertexShader, shaders.GradientFragmentShader)
			if err != nil {
				return fmt.Errorf("compiling gradient shader: %w", err)
			}
			r.gradient = shader.NewProgram(id)
		}
	case *scene.Skybox:
		if _, ok := o.CubeMap(); !ok {
			return fmt.Errorf("initialize skybox: no cube map bound to %q", scene.SkyboxSampler)
		}
		r.ensureCube()
	default:
		return fmt.Errorf("initialize: unsupported object kind %s", obj.Kind())
	}

	obj.ClearDataRefreshed()
	r.log.Debug("object initialized", zap.String("kind", obj.Kind().String()))
	return nil
}

func (r *Renderer) uploadMesh(h scene.Handle, m *scene.MeshObject) error {
	if old, ok := r.meshes[h]; ok {
		old.delete()
		delete(r.meshes, h)
	}
	b, err := newMeshBuffers(m.Mesh())
	if err != nil {
		return err
	}
	r.meshes[h] = b
	return nil
}

func (r *Renderer) ensureQuad() {
	if r.quad == nil {
		r.quad = newScreenQuad()
	}
}

func (r *Renderer) ensureCube() {
	if r.cube == nil {
		r.cube = newSkyboxCube()
	}
}

// AddLight registers a light synchronized to every shader.
func (r *Renderer) AddLight(l scene.Light) error {
	return r.lights.Add(l)
}

// Viewport returns the drawable size in pixels.
func (r *Renderer) Viewport() (int, int) {
	return r.config.Width, r.config.Height
}

// ReadPixels returns the back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// Len returns the number of live objects.
func (r *Renderer) Len() int {
	return r.arena.Len()
}

// programFor wraps a library program id, caching uniform locations across
// frames.
func (r *Renderer) programFor(id uint32) *shader.Program {
	p, ok := r.program[id]
	if !ok {
		p = shader.NewProgram(id)
		r.program[id] = p
	}
	return p
}
