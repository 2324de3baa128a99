package systems

import (
	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/math"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

// SceneBounds returns the world-space axis-aligned extents of every mesh in
// the scene. A scene without geometry yields empty extents.
func SceneBounds(scene *metadata.Scene) math.Extents3D {
	out := math.NewExtents3DEmpty()
	scene.TraverseMeshes(func(m *metadata.Mesh) {
		out = out.Union(m.WorldExtents())
	})
	return out
}

// LogSceneBounds writes the bounding box dimensions of the scene. Purely a
// diagnostic.
func LogSceneBounds(scene *metadata.Scene) math.Extents3D {
	e := SceneBounds(scene)
	size := e.Size()
	core.LogInfo("Scene '%s' bounds: width=%.3f height=%.3f depth=%.3f", scene.Name, size.X, size.Y, size.Z)
	return e
}
