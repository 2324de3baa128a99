package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFireStopsAtFirstHandler(t *testing.T) {
	es := NewEventSystem(4)
	defer es.Shutdown()

	var calls []string
	es.Register(EVENT_CODE_POINTER_DOWN, func(EventContext) bool {
		calls = append(calls, "first")
		return true
	})
	es.Register(EVENT_CODE_POINTER_DOWN, func(EventContext) bool {
		calls = append(calls, "second")
		return false
	})

	handled := es.Fire(EventContext{Type: EVENT_CODE_POINTER_DOWN})

	assert.True(t, handled)
	assert.Equal(t, []string{"first"}, calls)
}

func TestEventFireDeliversInRegistrationOrder(t *testing.T) {
	es := NewEventSystem(4)
	defer es.Shutdown()

	var calls []int
	for i := 0; i < 3; i++ {
		i := i
		es.Register(EVENT_CODE_RESET, func(EventContext) bool {
			calls = append(calls, i)
			return false
		})
	}

	assert.False(t, es.Fire(EventContext{Type: EVENT_CODE_RESET}))
	assert.Equal(t, []int{0, 1, 2}, calls)
}

func TestEventUnregister(t *testing.T) {
	es := NewEventSystem(4)
	defer es.Shutdown()

	count := 0
	id := es.Register(EVENT_CODE_PRINT, func(EventContext) bool {
		count++
		return false
	})
	require.NotZero(t, id)

	es.Fire(EventContext{Type: EVENT_CODE_PRINT})
	assert.True(t, es.Unregister(EVENT_CODE_PRINT, id))
	assert.False(t, es.Unregister(EVENT_CODE_PRINT, id))
	es.Fire(EventContext{Type: EVENT_CODE_PRINT})

	assert.Equal(t, 1, count)
}

func TestEventRegisterRejectsOutOfRangeCode(t *testing.T) {
	es := NewEventSystem(1)
	defer es.Shutdown()

	assert.Zero(t, es.Register(MAX_MESSAGE_CODES, func(EventContext) bool { return false }))
	assert.Zero(t, es.Register(EVENT_CODE_PRINT, nil))
}

func TestEventPostIsProcessedInOrder(t *testing.T) {
	es := NewEventSystem(8)
	defer es.Shutdown()

	got := make(chan string, 2)
	es.Register(EVENT_CODE_COLOUR_CHANGED, func(ctx EventContext) bool {
		got <- ctx.Data.(*ColourEvent).Value
		return true
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go es.ProcessEvents(ctx)

	require.NoError(t, es.Post(EventContext{Type: EVENT_CODE_COLOUR_CHANGED, Data: &ColourEvent{Value: "#000001"}}))
	require.NoError(t, es.Post(EventContext{Type: EVENT_CODE_COLOUR_CHANGED, Data: &ColourEvent{Value: "#000002"}}))

	for _, want := range []string{"#000001", "#000002"} {
		select {
		case v := <-got:
			assert.Equal(t, want, v)
		case <-time.After(time.Second):
			t.Fatal("event was not processed")
		}
	}
}

func TestEventPostAfterShutdown(t *testing.T) {
	es := NewEventSystem(1)
	require.NoError(t, es.Shutdown())
	assert.ErrorIs(t, es.Post(EventContext{Type: EVENT_CODE_PRINT}), ErrEventSystemClosed)
}

func TestInputPostsPointerEvents(t *testing.T) {
	es := NewEventSystem(8)
	defer es.Shutdown()
	in := NewInput(es)

	down := &PointerEvent{Button: BUTTON_LEFT, Direction: [3]float32{0, 0, -1}}
	require.NoError(t, in.ProcessPointerDown(down))
	assert.True(t, in.IsButtonDown(BUTTON_LEFT))
	in.ProcessPointerUp(BUTTON_LEFT)
	assert.False(t, in.IsButtonDown(BUTTON_LEFT))

	move := &PointerEvent{Direction: [3]float32{0, 1, -1}}
	require.NoError(t, in.ProcessPointerMove(move))
	// Same ray again is dropped.
	require.NoError(t, in.ProcessPointerMove(&PointerEvent{Direction: [3]float32{0, 1, -1}}))
	require.NoError(t, in.ProcessPointerOut())

	assert.Equal(t, 3, es.Pending())
	current, _ := in.Pointer()
	assert.False(t, current.Inside)
}

func TestIdentifierNew(t *testing.T) {
	a, b := IdentifierNew(), IdentifierNew()
	assert.NotEqual(t, a, b)
	assert.True(t, IdentifierIsValid(a))
	assert.False(t, IdentifierIsValid("m1"))
}

func TestMetricsRecordPass(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.RecordPass(PassIncremental, 2*time.Millisecond, 1)
	}
	m.RecordPass(PassFull, time.Millisecond, 10)

	full, incremental := m.Passes()
	assert.Equal(t, uint64(1), full)
	assert.Equal(t, uint64(AVG_COUNT), incremental)
	assert.Equal(t, uint64(AVG_COUNT)+10, m.MeshesTouched())
	assert.InDelta(t, 2.0, m.PassTime(), 1e-9)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLogLevel("warn"))
	assert.Equal(t, InfoLevel, ParseLogLevel("nonsense"))
}
