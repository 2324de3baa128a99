package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// PointerEvent carries a pointer ray in world space. When the viewer already
// resolved the mesh under the pointer, MeshID is set and the ray may be zero.
type PointerEvent struct {
	Button    Button
	Origin    [3]float32
	Direction [3]float32
	MeshID    string
}

// HasRay reports whether the event carries a usable direction.
func (pe *PointerEvent) HasRay() bool {
	return pe.Direction != [3]float32{}
}

// PartEvent identifies a mesh part and the name of its material.
type PartEvent struct {
	MeshID       string
	MaterialName string
}

// ColourEvent carries a hex colour from the picker or a palette swatch.
type ColourEvent struct {
	Value  string
	Swatch bool
}

// Pointer state structure
type PointerState struct {
	Inside    bool
	Origin    [3]float32
	Direction [3]float32
	Buttons   [BUTTON_MAX_BUTTONS]bool
}

// Input turns raw host pointer activity into queued events. It is safe to call
// from host goroutines.
type Input struct {
	mutex    sync.Mutex
	events   *EventSystem
	current  PointerState
	previous PointerState
}

func NewInput(events *EventSystem) *Input {
	return &Input{events: events}
}

func (in *Input) ProcessPointerDown(pe *PointerEvent) error {
	in.mutex.Lock()
	in.previous = in.current
	in.current.Inside = true
	in.current.Origin = pe.Origin
	in.current.Direction = pe.Direction
	if pe.Button < BUTTON_MAX_BUTTONS {
		in.current.Buttons[pe.Button] = true
	}
	in.mutex.Unlock()

	return in.events.Post(EventContext{
		Type:   EVENT_CODE_POINTER_DOWN,
		Sender: in,
		Data:   pe,
	})
}

func (in *Input) ProcessPointerUp(button Button) {
	in.mutex.Lock()
	defer in.mutex.Unlock()
	if button < BUTTON_MAX_BUTTONS {
		in.current.Buttons[button] = false
	}
}

func (in *Input) ProcessPointerMove(pe *PointerEvent) error {
	in.mutex.Lock()
	// Only process if actually different
	if in.current.Inside && in.current.Origin == pe.Origin && in.current.Direction == pe.Direction && pe.MeshID == "" {
		in.mutex.Unlock()
		return nil
	}
	in.previous = in.current
	in.current.Inside = true
	in.current.Origin = pe.Origin
	in.current.Direction = pe.Direction
	in.mutex.Unlock()

	return in.events.Post(EventContext{
		Type:   EVENT_CODE_POINTER_MOVED,
		Sender: in,
		Data:   pe,
	})
}

func (in *Input) ProcessPointerOut() error {
	in.mutex.Lock()
	in.previous = in.current
	in.current.Inside = false
	in.mutex.Unlock()

	return in.events.Post(EventContext{
		Type:   EVENT_CODE_POINTER_OUT,
		Sender: in,
	})
}

func (in *Input) IsButtonDown(button Button) bool {
	in.mutex.Lock()
	defer in.mutex.Unlock()
	if button >= BUTTON_MAX_BUTTONS {
		return false
	}
	return in.current.Buttons[button]
}

func (in *Input) Pointer() (PointerState, PointerState) {
	in.mutex.Lock()
	defer in.mutex.Unlock()
	return in.current, in.previous
}
