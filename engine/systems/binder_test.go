package systems

import (
	"testing"

	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func colourOf(t *testing.T, sb *SceneBinder, id string) string {
	t.Helper()
	m, ok := sb.Mesh(id)
	require.True(t, ok, "mesh %s", id)
	return metadata.ColourHex(m.Material.Colour)
}

func emissiveOf(t *testing.T, sb *SceneBinder, id string) (string, float32) {
	t.Helper()
	m, ok := sb.Mesh(id)
	require.True(t, ok, "mesh %s", id)
	return metadata.ColourHex(m.Material.Emissive), m.Material.EmissiveIntensity
}

func TestBinderNormalizesMaterials(t *testing.T) {
	sb := newTestBinder()
	scene := newTestScene()
	original := scene.FindMesh("m2").Material
	original.Roughness = 0.9

	sb.Bind(scene)

	m1, _ := sb.Mesh("m1")
	assert.Equal(t, metadata.MaterialTypeStandard, m1.Material.Type)
	assert.Equal(t, "Body", m1.Material.Name)
	assert.Equal(t, float32(0.5), m1.Material.Roughness)
	assert.Equal(t, float32(0.5), m1.Material.Metalness)
	assert.Equal(t, "#336699", colourOf(t, sb, "m1"))

	m2, _ := sb.Mesh("m2")
	assert.Same(t, original, m2.Material, "standard materials are kept")
	assert.Equal(t, float32(0.9), m2.Material.Roughness)

	// A second pass converts nothing.
	sb.ApplyAll()
	assert.Equal(t, uint64(1), sb.materialSystem.Converted())
}

func TestBinderKeepsColourWithoutOverride(t *testing.T) {
	sb := newTestBinder()
	sb.Bind(newTestScene())
	sb.SetOverrides(metadata.OverrideMap{"m1": {Colour: "#00ff00"}})
	sb.SetHovered("m2")

	assert.Equal(t, "#cccccc", colourOf(t, sb, "m2"))
}

func TestBinderAppliesOverrideRegardlessOfHover(t *testing.T) {
	sb := newTestBinder()
	sb.Bind(newTestScene())

	m1, _ := sb.Mesh("m1")
	generation := m1.Material.Generation

	sb.SetOverrides(metadata.OverrideMap{"m1": {Colour: "#00ff00"}})
	assert.Equal(t, "#00ff00", colourOf(t, sb, "m1"))
	assert.True(t, m1.Material.NeedsUpdate)
	assert.Greater(t, m1.Material.Generation, generation)

	sb.SetHovered("m1")
	assert.Equal(t, "#00ff00", colourOf(t, sb, "m1"))
	_, intensity := emissiveOf(t, sb, "m1")
	assert.Equal(t, float32(0.5), intensity)
}

func TestBinderHighlightsOnlyHoveredMesh(t *testing.T) {
	sb := newTestBinder()
	sb.Bind(newTestScene())

	for _, hovered := range []string{"m1", "m2", "", "unknown"} {
		sb.SetHovered(hovered)
		for _, id := range []string{"m1", "m2"} {
			emissive, intensity := emissiveOf(t, sb, id)
			if id == hovered {
				assert.Equal(t, "#aaaaaa", emissive)
				assert.Equal(t, float32(0.5), intensity)
			} else {
				assert.Equal(t, "#000000", emissive, "hovered=%q id=%s", hovered, id)
				assert.Zero(t, intensity, "hovered=%q id=%s", hovered, id)
			}
		}
	}
}

func TestBinderClearsAuthoredEmissive(t *testing.T) {
	scene := newTestScene()
	mat := scene.FindMesh("m2").Material
	mat.Emissive = metadata.MustParseColour("#ff0000")
	mat.EmissiveIntensity = 1

	sb := newTestBinder()
	sb.Bind(scene)

	emissive, intensity := emissiveOf(t, sb, "m2")
	assert.Equal(t, "#000000", emissive)
	assert.Zero(t, intensity)
}

func TestBinderIncrementalMatchesFullPass(t *testing.T) {
	overrides := metadata.OverrideMap{"m1": {Colour: "#123456"}, "m2": {Colour: "#abcdef"}, "gone": {Colour: "#ffffff"}}

	incremental := newTestBinder()
	incremental.Bind(newTestScene())
	incremental.SetOverrides(metadata.OverrideMap{"m1": {Colour: "#ffffff"}})
	incremental.SetOverrides(overrides)
	incremental.SetHovered("m1")
	incremental.SetHovered("m2")

	full := newTestBinder()
	full.overrides = overrides.Clone()
	full.hovered = "m2"
	full.Bind(newTestScene())

	strip := func(states []metadata.MeshState) []metadata.MeshState {
		for i := range states {
			states[i].Generation = 0
		}
		return states
	}
	assert.Equal(t, strip(full.Snapshot()), strip(incremental.Snapshot()))

	fullPasses, incrementalPasses := incremental.Metrics().Passes()
	assert.Equal(t, uint64(1), fullPasses)
	assert.Equal(t, uint64(4), incrementalPasses)
}

func TestBinderSetOverridesTouchesOnlyChangedMeshes(t *testing.T) {
	sb := newTestBinder()
	sb.Bind(newTestScene())

	assert.Equal(t, 1, sb.SetOverrides(metadata.OverrideMap{"m1": {Colour: "#00ff00"}}))
	assert.Equal(t, 0, sb.SetOverrides(metadata.OverrideMap{"m1": {Colour: "#00ff00"}}))
	assert.Equal(t, 1, sb.SetOverrides(metadata.OverrideMap{"m1": {Colour: "#00ff00"}, "m2": {Colour: "#0000ff"}}))
	assert.Equal(t, "#0000ff", colourOf(t, sb, "m2"))
}

func TestBinderOverridesSurviveRebind(t *testing.T) {
	sb := newTestBinder()
	sb.SetOverrides(metadata.OverrideMap{"m2": {Colour: "#010203"}})
	sb.Bind(newTestScene())

	assert.Equal(t, "#010203", colourOf(t, sb, "m2"))
}

func TestBinderIgnoresMalformedOverride(t *testing.T) {
	sb := newTestBinder()
	sb.Bind(newTestScene())
	sb.SetOverrides(metadata.OverrideMap{"m2": {Colour: "tomato"}})

	assert.Equal(t, "#cccccc", colourOf(t, sb, "m2"))
}

func TestBinderWithoutScene(t *testing.T) {
	sb := newTestBinder()
	assert.Zero(t, sb.SetOverrides(metadata.OverrideMap{"m1": {Colour: "#00ff00"}}))
	sb.SetHovered("m1")
	sb.ApplyAll()
	assert.Empty(t, sb.Snapshot())
	assert.Equal(t, "m1", sb.Hovered())
}

func TestSceneBounds(t *testing.T) {
	e := SceneBounds(newTestScene())
	size := e.Size()
	assert.InDelta(t, 6.0, size.X, 1e-5)
	assert.InDelta(t, 1.0, size.Y, 1e-5)
	assert.InDelta(t, 0.0, size.Z, 1e-5)

	assert.True(t, SceneBounds(&metadata.Scene{Root: metadata.NewNode("r", "r", nil)}).IsEmpty())
}

func TestMaterialSystemNormalizesMissingMaterial(t *testing.T) {
	ms, err := NewMaterialSystem(MaterialSystemConfig{Roughness: 0.3, Metalness: 0.7})
	require.NoError(t, err)

	m, converted := ms.Normalize(nil)
	assert.True(t, converted)
	assert.Equal(t, metadata.DefaultMaterialName, m.Name)
	assert.True(t, m.IsStandard())
	assert.Equal(t, metadata.ColourWhite, m.Colour)
	assert.Equal(t, float32(0.3), m.Roughness)
	assert.Equal(t, float32(0.7), m.Metalness)
	assert.Equal(t, uint32(1), m.Generation)
	assert.Equal(t, uint64(1), ms.Converted())

	assert.NotSame(t, m, ms.GetDefault())
}
