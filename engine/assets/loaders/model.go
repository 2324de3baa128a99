package loaders

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/ext/unlit"
	"github.com/qmuntal/gltf/modeler"
	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/math"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

// Node graphs deeper than this are treated as malformed.
const maxNodeDepth = 256

// ModelLoader reads glTF and GLB models from a local path or an http(s) URL
// and turns them into a scene graph with one mesh node per primitive.
type ModelLoader struct {
	BinaryLoader
}

func (ml *ModelLoader) Load(ctx context.Context, source string, params interface{}) (*metadata.Resource, error) {
	data, err := ml.Read(ctx, source)
	if err != nil {
		return nil, err
	}
	name := ModelName(source)
	scene, err := ml.Decode(name, data)
	if err != nil {
		return nil, err
	}
	scene.Source = source
	return &metadata.Resource{
		Type:     metadata.ResourceTypeModel,
		Name:     name,
		FullPath: source,
		DataSize: uint64(len(data)),
		RawData:  data,
		Data:     scene,
	}, nil
}

func (ml *ModelLoader) Unload(*metadata.Resource) error {
	return nil
}

// ModelName derives a scene name from a path or URL.
func ModelName(source string) string {
	base := source
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	base = path.Base(base)
	return strings.TrimSuffix(base, path.Ext(base))
}

/**
 * @brief Decodes glTF JSON or GLB bytes into a scene. Every node and every mesh
 * part gets a fresh identifier, so decoding the same bytes twice yields two
 * independent scenes.
 *
 * @param name The scene name.
 * @param data The model bytes.
 * @return The scene or an error for malformed documents.
 */
func (ml *ModelLoader) Decode(name string, data []byte) (*metadata.Scene, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding model '%s': %w", name, err)
	}

	b := &sceneBuilder{doc: doc}
	root := metadata.NewNode(core.IdentifierNew(), name, nil)
	roots, err := b.rootNodes()
	if err != nil {
		return nil, fmt.Errorf("model '%s': %w", name, err)
	}
	for _, idx := range roots {
		child, err := b.node(idx, 0)
		if err != nil {
			return nil, fmt.Errorf("model '%s': %w", name, err)
		}
		root.AddChild(child)
	}

	scene := &metadata.Scene{Name: name, Root: root}
	core.LogDebug("Decoded model '%s': %d nodes, %d mesh parts.", name, len(doc.Nodes), b.parts)
	return scene, nil
}

type sceneBuilder struct {
	doc   *gltf.Document
	parts int
}

// rootNodes returns the nodes of the default scene, or every parentless node
// when the document declares no scene.
func (b *sceneBuilder) rootNodes() ([]int, error) {
	doc := b.doc
	if len(doc.Scenes) > 0 {
		si := 0
		if doc.Scene != nil {
			si = int(*doc.Scene)
		}
		if si < 0 || si >= len(doc.Scenes) {
			return nil, fmt.Errorf("default scene %d out of range", si)
		}
		out := make([]int, 0, len(doc.Scenes[si].Nodes))
		for _, n := range doc.Scenes[si].Nodes {
			out = append(out, int(n))
		}
		return out, nil
	}

	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[int(c)] = true
		}
	}
	var out []int
	for i := range doc.Nodes {
		if !isChild[i] {
			out = append(out, i)
		}
	}
	return out, nil
}

func (b *sceneBuilder) node(idx, depth int) (*metadata.Node, error) {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node %d out of range", idx)
	}
	if depth > maxNodeDepth {
		return nil, fmt.Errorf("node hierarchy deeper than %d", maxNodeDepth)
	}
	gn := b.doc.Nodes[idx]
	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", idx)
	}
	n := metadata.NewNode(core.IdentifierNew(), name, nodeTransform(gn))

	if gn.Mesh != nil {
		mi := int(*gn.Mesh)
		if mi < 0 || mi >= len(b.doc.Meshes) {
			return nil, fmt.Errorf("node %d: mesh %d out of range", idx, mi)
		}
		gm := b.doc.Meshes[mi]
		meshName := gm.Name
		if meshName == "" {
			meshName = name
		}
		if len(gm.Primitives) == 1 {
			mesh, err := b.mesh(n, meshName, idx, 0, gm.Primitives[0])
			if err != nil {
				return nil, err
			}
			n.Mesh = mesh
		} else {
			for p, prim := range gm.Primitives {
				partName := fmt.Sprintf("%s_%d", meshName, p)
				child := metadata.NewNode(core.IdentifierNew(), partName, nil)
				mesh, err := b.mesh(child, partName, idx, p, prim)
				if err != nil {
					return nil, err
				}
				child.Mesh = mesh
				n.AddChild(child)
			}
		}
	}

	for _, c := range gn.Children {
		child, err := b.node(int(c), depth+1)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func nodeTransform(gn *gltf.Node) *math.Transform {
	// Column-major storage of a column-vector matrix is the row-major
	// storage of the same transform for row vectors.
	var out math.Mat4
	for i, v := range gn.MatrixOrDefault() {
		out.Data[i] = float32(v)
	}
	if !out.IsIdentity() {
		return math.TransformFromMatrix(out)
	}
	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	return math.TransformFromPositionRotationScale(
		math.NewVec3(float32(t[0]), float32(t[1]), float32(t[2])),
		math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		math.NewVec3(float32(s[0]), float32(s[1]), float32(s[2])),
	)
}

func (b *sceneBuilder) mesh(owner *metadata.Node, name string, nodeIdx, primIdx int, prim *gltf.Primitive) (*metadata.Mesh, error) {
	geometry, err := b.geometry(name, prim)
	if err != nil {
		return nil, fmt.Errorf("mesh '%s': %w", name, err)
	}
	b.parts++
	return &metadata.Mesh{
		UniqueID: owner.ID,
		Name:     name,
		Key:      fmt.Sprintf("n%dp%d", nodeIdx, primIdx),
		Material: b.material(prim),
		Geometry: geometry,
		Node:     owner,
	}, nil
}

func (b *sceneBuilder) geometry(name string, prim *gltf.Primitive) (*metadata.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	if int(posIdx) < 0 || int(posIdx) >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("position accessor %d out of range", posIdx)
	}
	raw, err := modeler.ReadPosition(b.doc, b.doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, err
	}
	positions := make([]math.Vec3, len(raw))
	for i, p := range raw {
		positions[i] = math.NewVec3(p[0], p[1], p[2])
	}

	var indices []uint32
	if prim.Indices != nil {
		ii := int(*prim.Indices)
		if ii < 0 || ii >= len(b.doc.Accessors) {
			return nil, fmt.Errorf("index accessor %d out of range", ii)
		}
		indices, err = modeler.ReadIndices(b.doc, b.doc.Accessors[ii], nil)
		if err != nil {
			return nil, err
		}
	}

	g := metadata.NewGeometry(name, positions, indices)
	if prim.Mode != gltf.PrimitiveTriangles {
		// Only triangle lists take part in the narrow phase; other modes are
		// picked on their bounds.
		g.Positions = nil
		g.Indices = nil
	}
	return g, nil
}

// material builds a fresh material for the primitive so that overriding one
// part never recolours another part sharing the same glTF material.
func (b *sceneBuilder) material(prim *gltf.Primitive) *metadata.Material {
	if prim.Material == nil || int(*prim.Material) >= len(b.doc.Materials) {
		return metadata.NewMaterial(metadata.DefaultMaterialName, metadata.MaterialTypeStandard, metadata.ColourWhite)
	}
	idx := int(*prim.Material)
	gm := b.doc.Materials[idx]

	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("material_%d", idx)
	}
	mt := metadata.MaterialTypeStandard
	if _, ok := gm.Extensions[unlit.ExtensionName]; ok {
		mt = metadata.MaterialTypeBasic
	}
	m := metadata.NewMaterial(name, mt, metadata.ColourWhite)
	m.Roughness = 1
	m.Metalness = 1

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		f := pbr.BaseColorFactorOrDefault()
		m.Colour = metadata.ColourFromFactors(float64(f[0]), float64(f[1]), float64(f[2]))
		m.Opacity = math.Clamp(float32(f[3]), 0, 1)
		m.Roughness = math.Clamp(float32(pbr.RoughnessFactorOrDefault()), 0, 1)
		m.Metalness = math.Clamp(float32(pbr.MetallicFactorOrDefault()), 0, 1)
		if pbr.BaseColorTexture != nil {
			m.DiffuseMapName = b.textureName(int(pbr.BaseColorTexture.Index))
		}
	}
	e := gm.EmissiveFactor
	m.Emissive = metadata.ColourFromFactors(float64(e[0]), float64(e[1]), float64(e[2]))
	m.Transparent = gm.AlphaMode == gltf.AlphaBlend
	return m
}

func (b *sceneBuilder) textureName(idx int) string {
	if idx < 0 || idx >= len(b.doc.Textures) {
		return ""
	}
	tex := b.doc.Textures[idx]
	if tex.Source != nil && int(*tex.Source) < len(b.doc.Images) {
		img := b.doc.Images[*tex.Source]
		if img.Name != "" {
			return img.Name
		}
		if img.URI != "" && !strings.HasPrefix(img.URI, "data:") {
			return img.URI
		}
	}
	return fmt.Sprintf("texture_%d", idx)
}
