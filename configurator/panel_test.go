package configurator

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPanelSelectReplacesSelectionAndSeedsPending(t *testing.T) {
	p := newTestPanel(&fakeHost{}, nil)

	p.Select("a", "Body")
	require.NoError(t, p.SetColour("#123456"))
	require.True(t, p.ApplyChanges())

	p.Select("b", "Trim")
	assert.Equal(t, &metadata.PartSelection{ID: "b", Name: "Trim"}, p.Selected())
	assert.Equal(t, DefaultColour, p.Pending())

	p.Select("a", "Body")
	assert.Equal(t, &metadata.PartSelection{ID: "a", Name: "Body"}, p.Selected())
	assert.Equal(t, "#123456", p.Pending())
}

func TestPanelApplyWithoutSelectionIsNoop(t *testing.T) {
	p := newTestPanel(&fakeHost{}, nil)

	require.NoError(t, p.SetColour("#00ff00"))
	assert.False(t, p.ApplyChanges())
	assert.Empty(t, p.Overrides())
}

func TestPanelApplyIsIdempotent(t *testing.T) {
	p := newTestPanel(&fakeHost{}, nil)
	p.Select("m1", "Body")
	require.NoError(t, p.SetColour("#00FF00"))

	assert.True(t, p.ApplyChanges())
	first := p.Overrides()
	assert.False(t, p.ApplyChanges())
	assert.Equal(t, first, p.Overrides())
	assert.Equal(t, metadata.OverrideMap{"m1": {Colour: "#00ff00"}}, first)
}

func TestPanelApplyReplacesPreviousRecord(t *testing.T) {
	p := newTestPanel(&fakeHost{}, nil)
	p.Select("m1", "Body")
	require.NoError(t, p.SetColour("#00ff00"))
	p.ApplyChanges()
	require.NoError(t, p.SetColour("#0000ff"))
	p.ApplyChanges()

	assert.Equal(t, metadata.OverrideMap{"m1": {Colour: "#0000ff"}}, p.Overrides())
}

func TestPanelRejectsMalformedColour(t *testing.T) {
	p := newTestPanel(&fakeHost{}, nil)
	require.NoError(t, p.SetColour("#abc"))

	for _, v := range []string{"", "red", "#12345", "00ff00", "#gg0000"} {
		err := p.SetColour(v)
		assert.ErrorIs(t, err, core.ErrInvalidColour, v)
	}
	assert.Equal(t, "#aabbcc", p.Pending())
}

func TestPanelSelectSwatch(t *testing.T) {
	p := newTestPanel(&fakeHost{}, nil)

	require.NoError(t, p.SelectSwatch("#800000"))
	assert.Equal(t, "#800000", p.Pending())

	assert.ErrorIs(t, p.SelectSwatch("#010203"), core.ErrUnknownSwatch)
	assert.Equal(t, "#800000", p.Pending())

	p.SetPalette(nil)
	assert.ErrorIs(t, p.SelectSwatch("#800000"), core.ErrUnknownSwatch)
}

func TestPanelOverridesAreCopies(t *testing.T) {
	p := newTestPanel(&fakeHost{}, nil)
	p.Select("m1", "Body")
	p.ApplyChanges()

	om := p.Overrides()
	om["m2"] = metadata.Override{Colour: "#000000"}
	assert.Len(t, p.Overrides(), 1)
}

func TestPanelPrintListsOverriddenParts(t *testing.T) {
	host := &fakeHost{}
	scene := newTestScene()
	p := newTestPanel(host, newTestBinder(scene))

	p.Select("m2", "Trim")
	p.ApplyChanges()
	p.Select("m1", "Body")
	require.NoError(t, p.SetColour("#00ff00"))
	p.ApplyChanges()

	require.NoError(t, p.Print(context.Background()))
	require.Len(t, host.prints, 1)
	doc := host.prints[0]
	assert.Equal(t, "Interactive Page", doc.Title)
	assert.Equal(t, "test", doc.Scene)
	require.Len(t, doc.Parts, 2)
	assert.Equal(t, "Body", doc.Parts[0].Name)
	assert.Equal(t, "#00ff00", doc.Parts[0].Colour)
	assert.Equal(t, "Trim", doc.Parts[1].Name)
	assert.Equal(t, DefaultColour, doc.Parts[1].Colour)
}

func TestPanelPrintWithoutScene(t *testing.T) {
	host := &fakeHost{}
	p := newTestPanel(host, nil)

	assert.ErrorIs(t, p.Print(context.Background()), core.ErrNoScene)
	assert.Empty(t, host.prints)
}

func TestPanelShareFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	core.LogSetOutput(&logs)
	defer core.LogSetOutput(os.Stderr)

	host := &fakeHost{shareErr: errShareRejected}
	p := newTestPanel(host, nil)

	p.Share(context.Background())

	require.Len(t, host.shares, 1)
	assert.Equal(t, "Check out this amazing page!", host.shares[0].Text)
	assert.Empty(t, host.shares[0].URL, "the viewer fills in its own page")
	assert.Contains(t, logs.String(), "Error sharing")
	assert.Contains(t, logs.String(), errShareRejected.Error())
}

func TestPanelReset(t *testing.T) {
	host := &fakeHost{}
	p := newTestPanel(host, nil)
	p.Select("m1", "Body")
	require.NoError(t, p.SetColour("#00ff00"))
	p.ApplyChanges()

	require.NoError(t, p.Reset(context.Background()))

	assert.Nil(t, p.Selected())
	assert.Empty(t, p.Overrides())
	assert.Equal(t, DefaultColour, p.Pending())
	assert.Equal(t, 1, host.resets)
}

func TestNewPanelRejectsBadDefault(t *testing.T) {
	_, err := NewPanel(PanelConfig{DefaultColour: "tomato"}, &fakeHost{}, nil)
	assert.ErrorIs(t, err, core.ErrInvalidColour)

	_, err = NewPanel(PanelConfig{}, nil, nil)
	assert.Error(t, err)
}

// Select m1, set green, apply, then hover m2 and leave again.
func TestPanelAndBinderEndToEnd(t *testing.T) {
	scene := newTestScene()
	binder := newTestBinder(scene)
	p := newTestPanel(&fakeHost{}, binder)

	m1, _ := binder.Mesh("m1")
	m2, _ := binder.Mesh("m2")
	m2Colour := m2.Material.Colour

	p.Select("m1", m1.MaterialName())
	require.NoError(t, p.SetColour("#00ff00"))
	require.True(t, p.ApplyChanges())
	assert.Equal(t, metadata.OverrideMap{"m1": {Colour: "#00ff00"}}, p.Overrides())

	binder.SetOverrides(p.Overrides())
	m1, _ = binder.Mesh("m1")
	m2, _ = binder.Mesh("m2")
	assert.Equal(t, "#00ff00", metadata.ColourHex(m1.Material.Colour))
	assert.Equal(t, m2Colour, m2.Material.Colour)

	binder.SetHovered("m2")
	assert.Equal(t, float32(0.5), m2.Material.EmissiveIntensity)
	assert.Equal(t, "#aaaaaa", metadata.ColourHex(m2.Material.Emissive))
	assert.Zero(t, m1.Material.EmissiveIntensity)

	binder.SetHovered("")
	assert.Zero(t, m1.Material.EmissiveIntensity)
	assert.Zero(t, m2.Material.EmissiveIntensity)
	assert.Equal(t, metadata.ColourBlack, m2.Material.Emissive)
}
