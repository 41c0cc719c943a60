package scene

import "fmt"

// Backend owns scene objects and draws them. The registry only ever holds
// handles into it.
type Backend interface {
	// Add takes ownership of obj.
	Add(obj Object) Handle
	// Resolve returns the object behind h, or false if it no longer exists.
	Resolve(h Handle) (Object, bool)
	// Initialize prepares GPU state for the object behind h.
	Initialize(h Handle) error
	// AddLight registers a light shared by every shader.
	AddLight(l Light) error
	// Viewport returns the current drawable size in pixels.
	Viewport() (width, height int)
	// Draw submits every live object in insertion order.
	Draw() error
}

// HeadlessBackend keeps objects in an arena and counts draws without a GPU.
type HeadlessBackend struct {
	arena       *Arena
	lights      LightSet
	width       int
	height      int
	initialized []Handle
	draws       int
}

// NewHeadlessBackend creates a backend reporting the given viewport.
func NewHeadlessBackend(width, height int) *HeadlessBackend {
	return &HeadlessBackend{arena: NewArena(), width: width, height: height}
}

func (b *HeadlessBackend) Add(obj Object) Handle { return b.arena.Add(obj) }

func (b *HeadlessBackend) Resolve(h Handle) (Object, bool) { return b.arena.Get(h) }

// Initialize clears the refresh flag the way a GPU backend does after
// uploading buffers.
func (b *HeadlessBackend) Initialize(h Handle) error {
	obj, ok := b.arena.Get(h)
	if !ok {
		return fmt.Errorf("initialize: stale handle %d", h.index)
	}
	obj.ClearDataRefreshed()
	b.initialized = append(b.initialized, h)
	return nil
}

func (b *HeadlessBackend) AddLight(l Light) error { return b.lights.Add(l) }

func (b *HeadlessBackend) Viewport() (int, int) { return b.width, b.height }

// SetViewport changes the size reported to background effects.
func (b *HeadlessBackend) SetViewport(width, height int) {
	b.width, b.height = width, height
}

func (b *HeadlessBackend) Draw() error {
	b.draws++
	return nil
}

// Remove discards an object, leaving its handles stale.
func (b *HeadlessBackend) Remove(h Handle) bool { return b.arena.Remove(h) }

// Teardown discards every object.
func (b *HeadlessBackend) Teardown() { b.arena.Clear() }

// Draws returns how many times Draw was called.
func (b *HeadlessBackend) Draws() int { return b.draws }

// Initialized returns handles in the order they were initialized.
func (b *HeadlessBackend) Initialized() []Handle { return b.initialized }

// Lights returns registered lights.
func (b *HeadlessBackend) Lights() []Light { return b.lights.Lights() }

// Len returns the number of live objects.
func (b *HeadlessBackend) Len() int { return b.arena.Len() }
