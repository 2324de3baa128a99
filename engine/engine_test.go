package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/platform"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
	"github.com/spaghettifunk/configurator/engine/systems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModel(t *testing.T) string {
	t.Helper()

	var buf bytes.Buffer
	for _, v := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, v))
	}
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0]}],
  "nodes": [{"name": "Door", "mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]}],
  "bufferViews": [{"buffer": 0, "byteLength": 36}],
  "buffers": [{"byteLength": 36, "uri": %q}]
}`, uri)

	path := filepath.Join(t.TempDir(), "door.gltf")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func newHeadlessGame(t *testing.T, source string) *Game {
	t.Helper()
	config := DefaultApplicationConfig()
	config.LogLevel = "error"
	config.Model.Source = source
	config.Host.Kind = HostKindHeadless
	config.Host.PrintDir = t.TempDir()
	return &Game{ApplicationConfig: config, Output: &bytes.Buffer{}}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	g := newHeadlessGame(t, "")
	_, err := New(g)
	assert.Error(t, err)
}

func TestNewFillsGame(t *testing.T) {
	g := newHeadlessGame(t, "model.glb")
	e, err := New(g)
	require.NoError(t, err)
	defer e.Shutdown()

	assert.NotNil(t, g.SystemManager)
	assert.NotNil(t, g.Events)
	assert.NotNil(t, g.Input)
	assert.NotNil(t, g.Context)
	assert.IsType(t, &platform.HeadlessHost{}, g.Host)
	assert.Equal(t, EngineStageUninitialized, e.Stage())
}

func TestEngineRunLoadsSceneAndQuits(t *testing.T) {
	g := newHeadlessGame(t, writeModel(t))

	var calls []string
	loaded := make(chan *metadata.Scene, 1)
	g.FnBoot = func() error { calls = append(calls, "boot"); return nil }
	g.FnInitialize = func() error { calls = append(calls, "initialize"); return nil }
	g.FnOnSceneLoaded = func(scene *metadata.Scene) error {
		loaded <- scene
		return nil
	}
	g.FnShutdown = func() error { calls = append(calls, "shutdown"); return nil }

	e, err := New(g)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	assert.Equal(t, EngineStageInitialized, e.Stage())

	done := make(chan error, 1)
	go func() { done <- e.Run() }()

	select {
	case scene := <-loaded:
		assert.Equal(t, "door", scene.Name)
		assert.Same(t, scene, g.SystemManager.SceneBinder.Scene())
		for _, m := range scene.Meshes() {
			assert.True(t, m.Material.IsStandard())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scene was not loaded")
	}

	require.NoError(t, g.Events.Post(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT}))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("engine did not stop")
	}

	require.NoError(t, e.Shutdown())
	require.NoError(t, e.Shutdown())
	assert.Equal(t, []string{"boot", "initialize", "shutdown"}, calls)
	assert.ErrorIs(t, g.Events.Post(core.EventContext{Type: core.EVENT_CODE_PRINT}), core.ErrEventSystemClosed)
}

func TestEngineRunRequiresInitialize(t *testing.T) {
	e, err := New(newHeadlessGame(t, "model.glb"))
	require.NoError(t, err)
	defer e.Shutdown()

	assert.Error(t, e.Run())
}

func TestEngineSceneLoadFailureKeepsPreviousScene(t *testing.T) {
	g := newHeadlessGame(t, filepath.Join(t.TempDir(), "missing.glb"))
	g.FnOnSceneLoaded = func(scene *metadata.Scene) error {
		t.Error("no scene expected")
		return nil
	}
	e, err := New(g)
	require.NoError(t, err)
	defer e.Shutdown()
	require.NoError(t, e.Initialize())

	handled := g.Events.Fire(core.EventContext{
		Type: core.EVENT_CODE_SCENE_LOADED,
		Data: &systems.SceneLoadedEvent{Source: g.ApplicationConfig.Model.Source, Err: errors.New("not found")},
	})
	assert.False(t, handled)
	assert.Nil(t, g.SystemManager.SceneBinder.Scene())

	handled = g.Events.Fire(core.EventContext{Type: core.EVENT_CODE_SCENE_LOADED})
	assert.True(t, handled, "a malformed payload stops propagation")
}

func TestEngineFailedResetLeavesSceneUntouched(t *testing.T) {
	source := writeModel(t)
	g := newHeadlessGame(t, source)
	e, err := New(g)
	require.NoError(t, err)
	defer e.Shutdown()
	require.NoError(t, e.Initialize())

	reached := false
	g.Events.Register(core.EVENT_CODE_RESET, func(core.EventContext) bool {
		reached = true
		return false
	})

	scene, err := g.SystemManager.MeshLoaderSystem.LoadNow(context.Background(), source)
	require.NoError(t, err)
	require.False(t, g.Events.Fire(core.EventContext{
		Type: core.EVENT_CODE_SCENE_LOADED,
		Data: &systems.SceneLoadedEvent{Source: source, Scene: scene},
	}))
	door := scene.Meshes()[0]

	sm := g.SystemManager
	sm.SceneBinder.SetOverrides(metadata.OverrideMap{door.UniqueID: {Colour: "#00ff00"}})
	g.Events.Fire(core.EventContext{Type: core.EVENT_CODE_POINTER_MOVED, Data: &core.PointerEvent{MeshID: door.UniqueID}})
	require.Equal(t, door.UniqueID, sm.SceneBinder.Hovered())

	// Point the engine at a model that was never loaded and is gone.
	e.config.Model.Source = filepath.Join(t.TempDir(), "missing.glb")
	assert.True(t, g.Events.Fire(core.EventContext{Type: core.EVENT_CODE_RESET}))

	assert.False(t, reached, "a failed reset stops propagation")
	assert.Same(t, scene, sm.SceneBinder.Scene())
	assert.Equal(t, metadata.OverrideMap{door.UniqueID: {Colour: "#00ff00"}}, sm.SceneBinder.Overrides())
	assert.Equal(t, "#00ff00", metadata.ColourHex(door.Material.Colour))
	assert.Equal(t, door.UniqueID, sm.SceneBinder.Hovered())
	assert.Equal(t, float32(0.5), door.Material.EmissiveIntensity)
}
