// Package viewer runs an interactive window around a scene manifest.
package viewer

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/moonscene/internal/assets"
	"github.com/Faultbox/moonscene/internal/config"
	"github.com/Faultbox/moonscene/internal/engine/camera"
	"github.com/Faultbox/moonscene/internal/engine/debug"
	"github.com/Faultbox/moonscene/internal/engine/input"
	"github.com/Faultbox/moonscene/internal/engine/renderer"
	"github.com/Faultbox/moonscene/internal/engine/resource"
	"github.com/Faultbox/moonscene/internal/engine/scene"
	"github.com/Faultbox/moonscene/internal/engine/shader"
	"github.com/Faultbox/moonscene/internal/engine/window"
	"github.com/Faultbox/moonscene/internal/logger"
	"github.com/Faultbox/moonscene/internal/manifest"
)

// Viewer owns the window, the GL backend and the scene registry.
type Viewer struct {
	cfg     *config.Config
	running bool
	frozen  bool

	window   *window.Window
	renderer *renderer.Renderer
	uploader *renderer.TextureUploader
	input    *input.Input
	camera   *camera.OrbitCamera
	assets   *assets.Manager
	registry *scene.Registry
	shots    *debug.ScreenshotCapture
	capture  bool

	log *zap.Logger
}

// New opens the window and builds the scene described by
// cfg.Scene.Manifest.
func New(cfg *config.Config) (*Viewer, error) {
	v := &Viewer{
		cfg:   cfg,
		input: input.New(),
		shots: debug.NewScreenshotCapture(cfg.Scene.Screenshots, "moonscene"),
		log:   logger.Named("viewer"),
	}

	v.log.Info("initializing viewer",
		zap.String("title", cfg.Window.Title),
		zap.String("manifest", cfg.Scene.Manifest),
	)

	m, err := manifest.Load(cfg.Scene.Manifest)
	if err != nil {
		return nil, fmt.Errorf("loading scene: %w", err)
	}

	v.assets = assets.NewManager()
	for _, root := range cfg.Scene.AssetRoots {
		if err := v.assets.AddRoot(root); err != nil {
			return nil, err
		}
	}

	// Create window (this also creates OpenGL context)
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Create renderer (AFTER window, since OpenGL context must exist)
	w, h := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{
		Width:      w,
		Height:     h,
		ClearColor: mgl32.Vec4{0, 0, 0, 1},
	})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.uploader = renderer.NewTextureUploader()

	v.registry = scene.NewRegistry(v.renderer, scene.NewSystemClock())
	builder := &manifest.Builder{
		Shaders:  resource.NewShaderLibrary(shader.Compiler{}, v.assets.Load),
		Textures: resource.NewTextureLibrary(v.uploader, v.assets.Load),
		Registry: v.registry,
		Loader:   v.assets,
	}
	built, err := builder.Apply(m)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("building scene: %w", err)
	}

	v.camera = newCamera(cfg.Camera, built)

	if !cfg.Scene.StartPaused {
		if err := v.registry.Start(); err != nil {
			v.Close()
			return nil, err
		}
	}

	v.log.Info("viewer initialized successfully", zap.Int("objects", v.registry.Len()))
	return v, nil
}

func newCamera(cfg config.CameraConfig, built *manifest.Built) *camera.OrbitCamera {
	c := camera.NewOrbitCamera()
	c.Pitch = cfg.Pitch
	c.Yaw = cfg.Yaw
	if cfg.FOV > 0 {
		c.FOV = cfg.FOV
	}
	if cfg.Near > 0 {
		c.Near = cfg.Near
	}
	if cfg.Far > 0 {
		c.Far = cfg.Far
	}

	if cfg.Distance > 0 {
		c.Center = mgl32.Vec3(cfg.Target)
		c.Distance = cfg.Distance
		return c
	}

	// No explicit framing: look at everything.
	var bounds camera.Bounds
	for _, obj := range built.Objects {
		lo, hi := obj.Mesh().Bounds()
		bounds.AddBox(lo, hi, obj.ModelMatrix())
	}
	if !bounds.Empty() {
		c.FitToBounds(bounds.Min, bounds.Max)
	}
	return c
}

// Run drives the registry once per display refresh until the window closes.
func (v *Viewer) Run() error {
	v.running = true

	frameCount := 0
	fpsTimer := time.Now()

	v.log.Info("starting render loop")

	for v.running {
		if v.input.Update() {
			v.running = false
			break
		}
		v.handleEvents()

		w, h := v.renderer.Viewport()
		v.renderer.SetCamera(v.camera.ViewMatrix(), v.camera.ProjectionMatrix(w, h), v.camera.Position())

		// A frozen scene is still drawn but gets no new time sample.
		var err error
		if v.frozen || v.registry.State() != scene.Running {
			err = v.renderer.Draw()
		} else {
			err = v.registry.Tick()
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", v.registry.Frame(), err)
		}
		if v.capture {
			v.capture = false
			v.saveScreenshot()
		}

		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			v.window.SetTitle(fmt.Sprintf("%s - %d fps - t=%.1fs", v.cfg.Window.Title, frameCount, v.registry.LastTime()))
			v.log.Debug("fps", zap.Int("count", frameCount), zap.Int("frame", v.registry.Frame()))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (v *Viewer) handleEvents() {
	for _, event := range v.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := v.window.DrawableSize()
			v.renderer.Resize(w, h)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				v.running = false
			case sdl.SCANCODE_P:
				v.togglePlay()
			case sdl.SCANCODE_F12:
				v.capture = true
			}
		}
	}

	if dx, dy := v.input.DragDelta(); dx != 0 || dy != 0 {
		v.camera.HandleDrag(dx, dy)
	}
	if d := v.input.WheelDelta(); d != 0 {
		v.camera.HandleZoom(d)
	}

	forward, right := float32(0), float32(0)
	if v.input.IsKeyHeld(sdl.SCANCODE_W) {
		forward++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_S) {
		forward--
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_D) {
		right++
	}
	if v.input.IsKeyHeld(sdl.SCANCODE_A) {
		right--
	}
	if forward != 0 || right != 0 {
		v.camera.HandleMovement(forward, right, 0)
	}
}

// togglePlay starts a scene that was opened paused, and afterwards
// freezes or resumes ticking.
func (v *Viewer) togglePlay() {
	if v.registry.State() != scene.Running {
		if err := v.registry.Start(); err != nil {
			v.log.Warn("cannot start scene", zap.Error(err))
		}
		return
	}
	v.frozen = !v.frozen
	v.log.Info("playback toggled", zap.Bool("frozen", v.frozen))
}

func (v *Viewer) saveScreenshot() {
	pixels, w, h := v.renderer.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, w, h, v.registry.Frame())
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases GPU resources, then the window.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")

	if v.renderer != nil {
		v.renderer.Close()
		v.renderer = nil
	}
	if v.uploader != nil {
		v.uploader.Close()
		v.uploader = nil
	}
	if v.window != nil {
		v.window.Close()
		v.window = nil
	}
	if v.assets != nil {
		v.assets.Close()
	}
}
