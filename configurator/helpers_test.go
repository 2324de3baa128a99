package configurator

import (
	"context"
	"errors"

	"github.com/spaghettifunk/configurator/engine/math"
	"github.com/spaghettifunk/configurator/engine/platform"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
	"github.com/spaghettifunk/configurator/engine/systems"
)

type fakeHost struct {
	prints   []platform.PrintDocument
	shares   []platform.SharePayload
	resets   int
	shareErr error
}

func (h *fakeHost) Startup(ctx context.Context) error { return nil }
func (h *fakeHost) Shutdown() error                   { return nil }

func (h *fakeHost) Print(ctx context.Context, doc platform.PrintDocument) error {
	h.prints = append(h.prints, doc)
	return nil
}

func (h *fakeHost) Share(ctx context.Context, payload platform.SharePayload) (platform.ShareOutcome, error) {
	h.shares = append(h.shares, payload)
	if h.shareErr != nil {
		return platform.ShareCompleted, h.shareErr
	}
	return platform.ShareCompleted, nil
}

func (h *fakeHost) Reset(ctx context.Context) error {
	h.resets++
	return nil
}

var errShareRejected = errors.New("AbortError: share canceled")

// newTestScene builds two quads: "m1" (Body, #336699) and "m2" (Trim, #cccccc).
func newTestScene() *metadata.Scene {
	root := metadata.NewNode("root", "root", nil)
	for i, part := range []struct{ id, material, colour string }{
		{"m1", "Body", "#336699"},
		{"m2", "Trim", "#cccccc"},
	} {
		n := metadata.NewNode(part.id, part.id, math.TransformFromPosition(math.NewVec3(float32(i)*5, 0, 0)))
		n.Mesh = &metadata.Mesh{
			UniqueID: part.id,
			Name:     part.id,
			Key:      "n" + part.id,
			Material: metadata.NewMaterial(part.material, metadata.MaterialTypePhong, metadata.MustParseColour(part.colour)),
			Geometry: metadata.NewGeometry(part.id, []math.Vec3{
				math.NewVec3(-0.5, -0.5, 0),
				math.NewVec3(0.5, -0.5, 0),
				math.NewVec3(0.5, 0.5, 0),
			}, nil),
			Node: n,
		}
		root.AddChild(n)
	}
	return &metadata.Scene{Name: "test", Root: root}
}

func newTestBinder(scene *metadata.Scene) *systems.SceneBinder {
	ms, _ := systems.NewMaterialSystem(systems.MaterialSystemConfig{Roughness: 0.5, Metalness: 0.5})
	sb := systems.NewSceneBinder(systems.SceneBinderConfig{
		HighlightColour:    metadata.MustParseColour("#aaaaaa"),
		HighlightIntensity: 0.5,
	}, ms, nil)
	sb.Bind(scene)
	return sb
}

func newTestPanel(host *fakeHost, parts systems.SceneSource) *Panel {
	p, err := NewPanel(PanelConfig{
		Share: platform.SharePayload{Title: "Interactive Page", Text: "Check out this amazing page!"},
	}, host, parts)
	if err != nil {
		panic(err)
	}
	p.SetPalette(DefaultPalette())
	return p
}
