package systems

import (
	"sort"

	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/math"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

// SceneSource gives the pick system the scene it casts against.
type SceneSource interface {
	Scene() *metadata.Scene
	Mesh(id string) (*metadata.Mesh, bool)
}

// Hit is a ray intersection with a mesh.
type Hit struct {
	Mesh     *metadata.Mesh
	Distance float32
	Point    math.Vec3
}

/**
 * @brief Resolves pointer events to mesh parts. Pointer-down becomes a part
 * selection and is not passed to later listeners; pointer movement becomes
 * hover transitions.
 */
type PickSystem struct {
	events   *core.EventSystem
	source   SceneSource
	hovered  string
	handlers map[core.EventCode]uint64
}

func NewPickSystem(events *core.EventSystem, source SceneSource) *PickSystem {
	ps := &PickSystem{
		events:   events,
		source:   source,
		handlers: make(map[core.EventCode]uint64),
	}
	ps.handlers[core.EVENT_CODE_POINTER_DOWN] = events.Register(core.EVENT_CODE_POINTER_DOWN, ps.onPointerDown)
	ps.handlers[core.EVENT_CODE_POINTER_MOVED] = events.Register(core.EVENT_CODE_POINTER_MOVED, ps.onPointerMoved)
	ps.handlers[core.EVENT_CODE_POINTER_OUT] = events.Register(core.EVENT_CODE_POINTER_OUT, ps.onPointerOut)
	return ps
}

/**
 * @brief Casts the ray against every mesh of the scene.
 *
 * @param ray A ray in world space.
 * @return The hits ordered by distance, nearest first.
 */
func (ps *PickSystem) Pick(ray math.Ray) []Hit {
	scene := ps.source.Scene()
	if scene == nil {
		return nil
	}
	var hits []Hit
	scene.TraverseMeshes(func(m *metadata.Mesh) {
		if d, ok := intersectMesh(ray, m); ok {
			hits = append(hits, Hit{Mesh: m, Distance: d, Point: ray.At(d)})
		}
	})
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// Nearest returns the closest hit along the ray.
func (ps *PickSystem) Nearest(ray math.Ray) (Hit, bool) {
	hits := ps.Pick(ray)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

func intersectMesh(ray math.Ray, m *metadata.Mesh) (float32, bool) {
	// Broad phase
	box := m.WorldExtents()
	boxDist, ok := box.IntersectRay(ray)
	if !ok {
		return 0, false
	}
	g := m.Geometry
	if g.TriangleCount() == 0 {
		return boxDist, true
	}

	// Narrow phase
	world := m.WorldMatrix()
	best := math.K_INFINITY
	found := false
	for i := 0; i < g.TriangleCount(); i++ {
		a, b, c, ok := g.Triangle(i)
		if !ok {
			continue
		}
		d, hit := ray.IntersectTriangle(a.Transform(world), b.Transform(world), c.Transform(world))
		if hit && d < best {
			best = d
			found = true
		}
	}
	return best, found
}

func (ps *PickSystem) resolve(pe *core.PointerEvent) *metadata.Mesh {
	if pe == nil {
		return nil
	}
	if pe.MeshID != "" {
		m, ok := ps.source.Mesh(pe.MeshID)
		if !ok {
			core.LogWarn("Pointer event for unknown mesh '%s'.", pe.MeshID)
			return nil
		}
		return m
	}
	if !pe.HasRay() {
		return nil
	}
	ray := math.NewRay(math.NewVec3FromArray(pe.Origin), math.NewVec3FromArray(pe.Direction))
	hit, ok := ps.Nearest(ray)
	if !ok {
		return nil
	}
	return hit.Mesh
}

func (ps *PickSystem) onPointerDown(context core.EventContext) bool {
	pe, _ := context.Data.(*core.PointerEvent)
	m := ps.resolve(pe)
	if m == nil {
		return false
	}
	ps.events.Fire(core.EventContext{
		Type:   core.EVENT_CODE_PART_SELECTED,
		Sender: ps,
		Data: &core.PartEvent{
			MeshID:       m.UniqueID,
			MaterialName: m.MaterialName(),
		},
	})
	// Selection is exclusive: nothing behind or around the mesh sees the press.
	return true
}

func (ps *PickSystem) onPointerMoved(context core.EventContext) bool {
	pe, _ := context.Data.(*core.PointerEvent)
	id := ""
	var m *metadata.Mesh
	if m = ps.resolve(pe); m != nil {
		id = m.UniqueID
	}
	if id == ps.hovered {
		return false
	}
	if ps.hovered != "" {
		ps.events.Fire(core.EventContext{
			Type:   core.EVENT_CODE_PART_UNHOVERED,
			Sender: ps,
			Data:   &core.PartEvent{MeshID: ps.hovered},
		})
	}
	ps.hovered = id
	if m != nil {
		ps.events.Fire(core.EventContext{
			Type:   core.EVENT_CODE_PART_HOVERED,
			Sender: ps,
			Data: &core.PartEvent{
				MeshID:       m.UniqueID,
				MaterialName: m.MaterialName(),
			},
		})
	}
	return false
}

func (ps *PickSystem) onPointerOut(context core.EventContext) bool {
	previous := ps.hovered
	ps.hovered = ""
	ps.events.Fire(core.EventContext{
		Type:   core.EVENT_CODE_PART_UNHOVERED,
		Sender: ps,
		Data:   &core.PartEvent{MeshID: previous},
	})
	return false
}

// Reset forgets the hovered mesh, e.g. after the scene was replaced.
func (ps *PickSystem) Reset() {
	ps.hovered = ""
}

func (ps *PickSystem) Shutdown() error {
	for code, id := range ps.handlers {
		ps.events.Unregister(code, id)
	}
	ps.handlers = make(map[core.EventCode]uint64)
	return nil
}
