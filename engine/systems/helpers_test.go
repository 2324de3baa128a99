package systems

import (
	"github.com/spaghettifunk/configurator/engine/math"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

// newTestScene builds a scene with two unit quads facing +z: "m1" at the origin
// with a Phong material and "m2" translated to x=5 with a standard material.
func newTestScene() *metadata.Scene {
	root := metadata.NewNode("root", "root", nil)

	quad := func(id, material string, mt metadata.MaterialType, colour string, position math.Vec3) *metadata.Node {
		n := metadata.NewNode(id, id, math.TransformFromPosition(position))
		n.Mesh = &metadata.Mesh{
			UniqueID: id,
			Name:     id,
			Key:      "key_" + id,
			Material: metadata.NewMaterial(material, mt, metadata.MustParseColour(colour)),
			Geometry: metadata.NewGeometry(id, []math.Vec3{
				math.NewVec3(-0.5, -0.5, 0),
				math.NewVec3(0.5, -0.5, 0),
				math.NewVec3(0.5, 0.5, 0),
				math.NewVec3(-0.5, 0.5, 0),
			}, []uint32{0, 1, 2, 0, 2, 3}),
			Node: n,
		}
		return n
	}

	root.AddChild(quad("m1", "Body", metadata.MaterialTypePhong, "#336699", math.NewVec3(0, 0, 0)))
	root.AddChild(quad("m2", "Trim", metadata.MaterialTypeStandard, "#cccccc", math.NewVec3(5, 0, 0)))

	return &metadata.Scene{Name: "test", Root: root}
}

func newTestBinder() *SceneBinder {
	ms, _ := NewMaterialSystem(MaterialSystemConfig{Roughness: 0.5, Metalness: 0.5})
	return NewSceneBinder(SceneBinderConfig{
		HighlightColour:    metadata.MustParseColour("#aaaaaa"),
		HighlightIntensity: 0.5,
	}, ms, nil)
}
