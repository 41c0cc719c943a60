// Package scene composes renderable objects into a scene and drives their
// per-frame state from a single clock.
//
// Objects are owned by a Backend; the Registry keeps only handles to them.
// Construction happens while the registry is Paused. After Finalize and
// Start every Tick samples the clock once, pushes that sample into every
// animated object, then asks the backend to draw.
package scene

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/moonscene/internal/logger"
)

// State is the registry's update state.
type State int

const (
	Paused State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "paused"
}

// Registry tracks the scene's objects and pushes clock state into them.
type Registry struct {
	backend Backend
	clock   Clock
	start   time.Duration

	// Handles in registration order, and the subset updated with time.
	order    []Handle
	animated []Handle

	background    Handle
	hasBackground bool
	skybox        Handle
	hasSkybox     bool

	frame     int
	lastTime  float32
	state     State
	finalized bool

	log *zap.Logger
}

// NewRegistry creates a paused registry. The start timestamp is sampled
// from clock immediately; a nil clock uses the system monotonic clock.
func NewRegistry(backend Backend, clock Clock) *Registry {
	if clock == nil {
		clock = NewSystemClock()
	}
	return &Registry{
		backend: backend,
		clock:   clock,
		start:   clock.Now(),
		log:     logger.Named("scene"),
	}
}

// Backend returns the backend objects are registered with.
func (r *Registry) Backend() Backend { return r.backend }

// Register hands obj to the backend and records its handle. At most one
// BackgroundEffect and one Skybox may be registered; gradients and meshes
// are unlimited. Nothing is registered when an error is returned.
func (r *Registry) Register(obj Object) (Handle, error) {
	if r.finalized {
		return Handle{}, &ConfigurationError{Op: "register " + obj.Kind().String(), Reason: "scene is finalized"}
	}
	switch obj.Kind() {
	case KindBackground:
		if r.hasBackground {
			return Handle{}, &ConfigurationError{Op: "register background", Reason: "a background effect is already registered"}
		}
	case KindSkybox:
		if r.hasSkybox {
			return Handle{}, &ConfigurationError{Op: "register skybox", Reason: "a skybox is already registered"}
		}
	}

	h := r.backend.Add(obj)
	r.order = append(r.order, h)

	switch obj.Kind() {
	case KindBackground:
		r.background, r.hasBackground = h, true
	case KindSkybox:
		r.skybox, r.hasSkybox = h, true
	case KindMesh:
		if _, ok := obj.(TimeReceiver); ok {
			r.animated = append(r.animated, h)
		}
	}

	r.log.Debug("object registered", zap.Stringer("kind", obj.Kind()), zap.Int("index", len(r.order)-1))
	return h, nil
}

// AddLight registers a light with the backend.
func (r *Registry) AddLight(l Light) error {
	if r.finalized {
		return &ConfigurationError{Op: "add light", Reason: "scene is finalized"}
	}
	return r.backend.AddLight(l)
}

// Finalize runs once after construction. Every registered object, in
// registration order, gets the default polygon and shading modes (meshes
// without an explicit override), is marked data refreshed, is initialized
// by the backend and is sealed against further configuration.
func (r *Registry) Finalize() error {
	if r.finalized {
		return &ConfigurationError{Op: "finalize", Reason: "already finalized"}
	}

	for i, h := range r.order {
		obj, ok := r.backend.Resolve(h)
		if !ok || obj.Kind() == KindGradient {
			continue
		}
		if _, bound := obj.Shader(); !bound {
			return &ConfigurationError{
				Op:     "finalize",
				Reason: fmt.Sprintf("%s object %d has no shader bound", obj.Kind(), i),
			}
		}
	}

	for i, h := range r.order {
		obj, ok := r.backend.Resolve(h)
		if !ok {
			continue
		}
		if m, isMesh := obj.(*MeshObject); isMesh {
			m.applyDefaultModes()
		}
		obj.markDataRefreshed()
		if err := r.backend.Initialize(h); err != nil {
			return fmt.Errorf("initializing %s object %d: %w", obj.Kind(), i, err)
		}
		obj.seal()
	}

	r.finalized = true
	r.log.Info("scene finalized",
		zap.Int("objects", len(r.order)),
		zap.Int("animated", len(r.animated)),
		zap.Bool("background", r.hasBackground),
		zap.Bool("skybox", r.hasSkybox))
	return nil
}

// Start moves the registry from Paused to Running. It may be called once,
// after Finalize.
func (r *Registry) Start() error {
	if !r.finalized {
		return &ConfigurationError{Op: "start", Reason: "scene is not finalized"}
	}
	if r.state == Running {
		return &ConfigurationError{Op: "start", Reason: "already running"}
	}
	r.state = Running
	r.log.Info("scene running")
	return nil
}

// Tick performs one frame. While Running it samples the clock once and
// pushes the elapsed seconds into every animated object, then the
// background's time, resolution and frame index, advances the frame
// counter, pushes time into the skybox and finally draws. While Paused it
// only draws. Handles whose objects the backend discarded are skipped.
func (r *Registry) Tick() error {
	if r.state != Running {
		return r.backend.Draw()
	}

	elapsed := Seconds(r.clock.Now() - r.start)
	r.lastTime = elapsed

	for _, h := range r.animated {
		obj, ok := r.backend.Resolve(h)
		if !ok {
			continue
		}
		if tr, ok := obj.(TimeReceiver); ok {
			tr.SetTime(elapsed)
		}
	}

	if r.hasBackground {
		if obj, ok := r.backend.Resolve(r.background); ok {
			r.pushBackground(obj, elapsed)
		}
	}
	r.frame++

	if r.hasSkybox {
		if obj, ok := r.backend.Resolve(r.skybox); ok {
			if tr, ok := obj.(TimeReceiver); ok {
				tr.SetTime(elapsed)
			}
		}
	}

	return r.backend.Draw()
}

func (r *Registry) pushBackground(obj Object, elapsed float32) {
	if tr, ok := obj.(TimeReceiver); ok {
		tr.SetTime(elapsed)
	}
	if rr, ok := obj.(ResolutionReceiver); ok {
		w, h := r.backend.Viewport()
		rr.SetResolution(float32(w), float32(h))
	}
	if fr, ok := obj.(FrameReceiver); ok {
		fr.SetFrame(r.frame)
	}
}

// State returns Paused or Running.
func (r *Registry) State() State { return r.state }

// Finalized reports whether Finalize succeeded.
func (r *Registry) Finalized() bool { return r.finalized }

// Frame returns the index the next running tick will push. It counts every
// running tick, with or without a background effect.
func (r *Registry) Frame() int { return r.frame }

// LastTime returns the elapsed seconds pushed on the last running tick.
func (r *Registry) LastTime() float32 { return r.lastTime }

// Len returns the number of registered objects.
func (r *Registry) Len() int { return len(r.order) }

// Handles returns every registered handle in registration order.
func (r *Registry) Handles() []Handle {
	return append([]Handle(nil), r.order...)
}

// Background returns the background effect handle, if any.
func (r *Registry) Background() (Handle, bool) { return r.background, r.hasBackground }

// Skybox returns the skybox handle, if any.
func (r *Registry) Skybox() (Handle, bool) { return r.skybox, r.hasSkybox }
