package metadata

import (
	"github.com/spaghettifunk/configurator/engine/math"
)

/**
 * @brief A pickable part of the model: one drawable primitive with its own
 * material instance.
 */
type Mesh struct {
	/** @brief Stable identifier, shared with the owning node. */
	UniqueID string
	/** @brief Display name of the part. */
	Name string
	/** @brief Locator of the primitive in the source model, e.g. "n3p0". */
	Key string
	/** @brief The material currently assigned to the part. */
	Material *Material
	/** @brief Local-space geometry; may be nil when the source had none. */
	Geometry *Geometry
	/** @brief The scene node carrying this mesh. */
	Node *Node
}

// MaterialName returns the name of the assigned material, or "" without one.
func (m *Mesh) MaterialName() string {
	if m.Material == nil {
		return ""
	}
	return m.Material.Name
}

// WorldMatrix returns the world transform of the owning node.
func (m *Mesh) WorldMatrix() math.Mat4 {
	if m.Node == nil {
		return math.NewMat4Identity()
	}
	return m.Node.Transform.GetWorld()
}

// WorldExtents returns the axis-aligned extents of the mesh in world space.
func (m *Mesh) WorldExtents() math.Extents3D {
	if m.Geometry == nil {
		return math.NewExtents3DEmpty()
	}
	return m.Geometry.Extents.Transform(m.WorldMatrix())
}

// MeshState is the published material state of one mesh.
type MeshState struct {
	ID                string  `json:"id"`
	Key               string  `json:"key"`
	Name              string  `json:"name"`
	MaterialName      string  `json:"material"`
	Colour            string  `json:"colour"`
	Emissive          string  `json:"emissive"`
	EmissiveIntensity float32 `json:"emissiveIntensity"`
	Roughness         float32 `json:"roughness"`
	Metalness         float32 `json:"metalness"`
	Generation        uint32  `json:"generation"`
}
