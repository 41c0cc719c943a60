package scene

// Handle is a weak reference to an object stored in an Arena.
// The zero Handle never resolves.
type Handle struct {
	index int
	epoch uint32
}

// IsZero reports whether h was never issued by an arena.
func (h Handle) IsZero() bool {
	return h.epoch == 0
}

// Arena owns scene objects on behalf of a backend. Slots are append-only;
// removing an object empties its slot, and Clear starts a new epoch so every
// previously issued Handle stops resolving.
type Arena struct {
	slots []Object
	epoch uint32
	live  int
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{epoch: 1}
}

// Add stores obj and returns a handle to it.
func (a *Arena) Add(obj Object) Handle {
	a.slots = append(a.slots, obj)
	a.live++
	return Handle{index: len(a.slots) - 1, epoch: a.epoch}
}

// Get resolves h. It returns false if the object was removed or the arena
// was cleared after h was issued.
func (a *Arena) Get(h Handle) (Object, bool) {
	if h.epoch != a.epoch || h.index < 0 || h.index >= len(a.slots) {
		return nil, false
	}
	obj := a.slots[h.index]
	return obj, obj != nil
}

// Remove drops the object behind h. It returns false if h was already stale.
func (a *Arena) Remove(h Handle) bool {
	if _, ok := a.Get(h); !ok {
		return false
	}
	a.slots[h.index] = nil
	a.live--
	return true
}

// Clear drops every object and invalidates all outstanding handles.
func (a *Arena) Clear() {
	a.slots = nil
	a.live = 0
	a.epoch++
}

// Len returns the number of live objects.
func (a *Arena) Len() int {
	return a.live
}

// Each calls fn for every live object in insertion order.
func (a *Arena) Each(fn func(Handle, Object)) {
	for i, obj := range a.slots {
		if obj != nil {
			fn(Handle{index: i, epoch: a.epoch}, obj)
		}
	}
}
