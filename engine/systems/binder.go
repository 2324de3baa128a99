package systems

import (
	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

/** @brief The configuration for the scene binder. */
type SceneBinderConfig struct {
	/** @brief Emissive colour of the hovered mesh. */
	HighlightColour metadata.Colour
	/** @brief Emissive intensity of the hovered mesh. */
	HighlightIntensity float32
}

/**
 * @brief Keeps the materials of a bound scene consistent with the override map
 * and the hovered mesh. Binding a scene runs a full traversal; later override and
 * hover changes only touch the meshes whose state changed, found through an
 * index keyed by mesh id.
 *
 * Not safe for concurrent use; it is driven from the event loop.
 */
type SceneBinder struct {
	config         SceneBinderConfig
	materialSystem *MaterialSystem
	metrics        *core.Metrics
	clock          *core.Clock

	scene     *metadata.Scene
	index     map[string]*metadata.Mesh
	overrides metadata.OverrideMap
	hovered   string
}

func NewSceneBinder(config SceneBinderConfig, ms *MaterialSystem, metrics *core.Metrics) *SceneBinder {
	if metrics == nil {
		metrics = core.NewMetrics()
	}
	return &SceneBinder{
		config:         config,
		materialSystem: ms,
		metrics:        metrics,
		clock:          core.NewClock(),
		index:          make(map[string]*metadata.Mesh),
		overrides:      make(metadata.OverrideMap),
	}
}

// Scene returns the bound scene, or nil.
func (sb *SceneBinder) Scene() *metadata.Scene {
	return sb.scene
}

// Hovered returns the hovered mesh id, "" when nothing is hovered.
func (sb *SceneBinder) Hovered() string {
	return sb.hovered
}

// Mesh returns the bound mesh with the given id.
func (sb *SceneBinder) Mesh(id string) (*metadata.Mesh, bool) {
	m, ok := sb.index[id]
	return m, ok
}

/**
 * @brief Binds a new scene: rebuilds the mesh index, runs a full pass with the
 * current overrides and hover, and logs the scene bounds.
 *
 * @param scene The scene to bind. Nil unbinds.
 */
func (sb *SceneBinder) Bind(scene *metadata.Scene) {
	sb.scene = scene
	sb.index = make(map[string]*metadata.Mesh)
	if scene == nil {
		return
	}
	scene.TraverseMeshes(func(m *metadata.Mesh) {
		if _, exists := sb.index[m.UniqueID]; exists {
			core.LogWarn("Duplicate mesh id '%s' in scene '%s'.", m.UniqueID, scene.Name)
		}
		sb.index[m.UniqueID] = m
	})
	core.LogDebug("Bound scene '%s' with %d meshes.", scene.Name, len(sb.index))

	sb.ApplyAll()
	LogSceneBounds(scene)
}

// ApplyAll runs the normalize and apply procedure on every mesh of the scene.
func (sb *SceneBinder) ApplyAll() {
	if sb.scene == nil {
		return
	}
	sb.clock.Start()
	count := 0
	sb.scene.TraverseMeshes(func(m *metadata.Mesh) {
		sb.applyMesh(m)
		count++
	})
	sb.clock.Update()
	sb.clock.Stop()
	sb.metrics.RecordPass(core.PassFull, sb.clock.Elapsed(), count)
}

/**
 * @brief Replaces the override map. Only meshes whose override record differs
 * from the previously applied map are refreshed. Overrides for ids not in the
 * scene are kept and apply once a scene containing them is bound.
 *
 * @param overrides The complete override map. It is copied.
 * @return The number of meshes refreshed.
 */
func (sb *SceneBinder) SetOverrides(overrides metadata.OverrideMap) int {
	previous := sb.overrides
	sb.overrides = overrides.Clone()
	if sb.scene == nil {
		return 0
	}

	sb.clock.Start()
	count := 0
	for id, o := range sb.overrides {
		if old, ok := previous[id]; ok && old == o {
			continue
		}
		if m, ok := sb.index[id]; ok {
			sb.applyMesh(m)
			count++
		}
	}
	sb.clock.Update()
	sb.clock.Stop()
	sb.metrics.RecordPass(core.PassIncremental, sb.clock.Elapsed(), count)
	return count
}

/**
 * @brief Moves the highlight to the mesh with the given id. Only the previously
 * and the newly hovered meshes are refreshed.
 *
 * @param id The hovered mesh id; "" clears the highlight.
 */
func (sb *SceneBinder) SetHovered(id string) {
	previous := sb.hovered
	sb.hovered = id
	if sb.scene == nil || previous == id {
		return
	}

	sb.clock.Start()
	count := 0
	for _, mid := range []string{previous, id} {
		if m, ok := sb.index[mid]; ok {
			sb.applyMesh(m)
			count++
		}
	}
	sb.clock.Update()
	sb.clock.Stop()
	sb.metrics.RecordPass(core.PassIncremental, sb.clock.Elapsed(), count)
}

// Overrides returns a copy of the applied override map.
func (sb *SceneBinder) Overrides() metadata.OverrideMap {
	return sb.overrides.Clone()
}

// Snapshot returns the material state of every mesh in traversal order.
func (sb *SceneBinder) Snapshot() []metadata.MeshState {
	var out []metadata.MeshState
	if sb.scene == nil {
		return out
	}
	sb.scene.TraverseMeshes(func(m *metadata.Mesh) {
		s := metadata.MeshState{
			ID:           m.UniqueID,
			Key:          m.Key,
			Name:         m.Name,
			MaterialName: m.MaterialName(),
		}
		if mat := m.Material; mat != nil {
			s.Colour = metadata.ColourHex(mat.Colour)
			s.Emissive = metadata.ColourHex(mat.Emissive)
			s.EmissiveIntensity = mat.EmissiveIntensity
			s.Roughness = mat.Roughness
			s.Metalness = mat.Metalness
			s.Generation = mat.Generation
		}
		out = append(out, s)
	})
	return out
}

func (sb *SceneBinder) applyMesh(m *metadata.Mesh) {
	// 1. normalize
	if normalized, converted := sb.materialSystem.Normalize(m.Material); converted {
		m.Material = normalized
	}
	mat := m.Material

	// 2. override
	if o, ok := sb.overrides[m.UniqueID]; ok {
		c, err := metadata.ParseColour(o.Colour)
		if err != nil {
			core.LogError("Ignoring override for mesh '%s': %s", m.UniqueID, err.Error())
		} else {
			mat.Colour = c
			mat.MarkUpdated()
		}
	}

	// 3. highlight
	emissive, intensity := metadata.ColourBlack, float32(0)
	if sb.hovered != "" && m.UniqueID == sb.hovered {
		emissive, intensity = sb.config.HighlightColour, sb.config.HighlightIntensity
	}
	if mat.Emissive != emissive || mat.EmissiveIntensity != intensity {
		mat.Emissive = emissive
		mat.EmissiveIntensity = intensity
		mat.MarkUpdated()
	}
}

// Metrics returns the pass metrics of the binder.
func (sb *SceneBinder) Metrics() *core.Metrics {
	return sb.metrics
}

func (sb *SceneBinder) Shutdown() error {
	sb.Bind(nil)
	return nil
}
