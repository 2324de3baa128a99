package core

import (
	"context"
	"sync"
)

// System internal event codes. Application should use codes beyond 255.
type EventCode int

const (
	// Shuts the application down on the next iteration of the event loop.
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01

	// Pointer pressed over the viewport.
	/* Context usage:
	 * data := context.Data.(*PointerEvent)
	 */
	EVENT_CODE_POINTER_DOWN EventCode = 0x02

	// Pointer moved over the viewport.
	/* Context usage:
	 * data := context.Data.(*PointerEvent)
	 */
	EVENT_CODE_POINTER_MOVED EventCode = 0x03

	// Pointer left the viewport (or the mesh it was over).
	EVENT_CODE_POINTER_OUT EventCode = 0x04

	// A mesh was picked by a pointer-down.
	/* Context usage:
	 * data := context.Data.(*PartEvent)
	 */
	EVENT_CODE_PART_SELECTED EventCode = 0x05

	// The pointer entered a mesh.
	/* Context usage:
	 * data := context.Data.(*PartEvent)
	 */
	EVENT_CODE_PART_HOVERED EventCode = 0x06

	// The pointer left the hovered mesh.
	EVENT_CODE_PART_UNHOVERED EventCode = 0x07

	// Pending colour changed from the picker or a palette swatch.
	/* Context usage:
	 * data := context.Data.(*ColourEvent)
	 */
	EVENT_CODE_COLOUR_CHANGED EventCode = 0x08

	// Commit the pending colour for the selected part.
	EVENT_CODE_APPLY_CHANGES EventCode = 0x09

	EVENT_CODE_PRINT EventCode = 0x0A
	EVENT_CODE_SHARE EventCode = 0x0B
	EVENT_CODE_RESET EventCode = 0x0C

	// A model finished loading on a job worker.
	/* Context usage:
	 * data := context.Data.(*systems.SceneLoadedEvent)
	 */
	EVENT_CODE_SCENE_LOADED EventCode = 0x0D

	// The palette file changed on disk and was reloaded.
	/* Context usage:
	 * data := context.Data.(*assets.PaletteEvent)
	 */
	EVENT_CODE_PALETTE_RELOADED EventCode = 0x0E

	MAX_EVENT_CODE EventCode = 0xFF
)

// This should be more than enough codes...
const MAX_MESSAGE_CODES = 16384

type EventContext struct {
	Type   EventCode
	Sender interface{}
	Data   interface{}
}

// Should return true if handled. A handled event is not delivered to the
// listeners registered after this one.
type FnOnEvent func(context EventContext) bool

type registeredEvent struct {
	id       uint64
	callback FnOnEvent
}

// EventSystem dispatches events either synchronously (Fire) or through a
// queue drained by a single goroutine (Post + ProcessEvents).
type EventSystem struct {
	mutex      sync.RWMutex
	registered map[EventCode][]*registeredEvent
	nextID     uint64

	queue  chan EventContext
	done   chan struct{}
	closed sync.Once
}

func NewEventSystem(queueSize int) *EventSystem {
	if queueSize < 1 {
		queueSize = 1
	}
	return &EventSystem{
		registered: make(map[EventCode][]*registeredEvent),
		queue:      make(chan EventContext, queueSize),
		done:       make(chan struct{}),
	}
}

/**
 * Register to listen for when events are sent with the provided code.
 * @param code The event code to listen for.
 * @param onEvent The callback invoked when the event code is fired.
 * @returns A registration id used to unregister; 0 if the code is out of range.
 */
func (es *EventSystem) Register(code EventCode, onEvent FnOnEvent) uint64 {
	if code < 0 || code >= MAX_MESSAGE_CODES || onEvent == nil {
		return 0
	}
	es.mutex.Lock()
	defer es.mutex.Unlock()

	es.nextID++
	es.registered[code] = append(es.registered[code], &registeredEvent{
		id:       es.nextID,
		callback: onEvent,
	})
	return es.nextID
}

/**
 * Unregister a listener previously returned by Register.
 * @returns true if the registration was found and removed.
 */
func (es *EventSystem) Unregister(code EventCode, id uint64) bool {
	es.mutex.Lock()
	defer es.mutex.Unlock()

	events := es.registered[code]
	for i, e := range events {
		if e.id == id {
			es.registered[code] = append(events[:i:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code, in registration order. If an
 * event handler returns true, the event is considered handled and is not
 * passed on to any more listeners.
 * @returns true if handled, otherwise false.
 */
func (es *EventSystem) Fire(context EventContext) bool {
	es.mutex.RLock()
	events := make([]*registeredEvent, len(es.registered[context.Type]))
	copy(events, es.registered[context.Type])
	es.mutex.RUnlock()

	for _, e := range events {
		if e.callback(context) {
			return true
		}
	}
	return false
}

// Post queues an event for the goroutine running ProcessEvents. It blocks when
// the queue is full and fails once the system has been shut down.
func (es *EventSystem) Post(context EventContext) error {
	select {
	case <-es.done:
		return ErrEventSystemClosed
	default:
	}
	select {
	case es.queue <- context:
		return nil
	case <-es.done:
		return ErrEventSystemClosed
	}
}

// ProcessEvents fires queued events until ctx is cancelled or Shutdown is
// called. Every state transition of the application runs on this goroutine.
func (es *EventSystem) ProcessEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-es.done:
			return
		case e := <-es.queue:
			es.Fire(e)
		}
	}
}

// Pending reports the number of queued events.
func (es *EventSystem) Pending() int {
	return len(es.queue)
}

func (es *EventSystem) Shutdown() error {
	es.closed.Do(func() {
		close(es.done)
	})
	es.mutex.Lock()
	es.registered = make(map[EventCode][]*registeredEvent)
	es.mutex.Unlock()
	return nil
}
