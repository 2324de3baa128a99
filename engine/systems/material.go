package systems

import (
	"fmt"

	"github.com/spaghettifunk/configurator/engine/core"
	"github.com/spaghettifunk/configurator/engine/renderer/metadata"
)

/** @brief The configuration for the material system. */
type MaterialSystemConfig struct {
	/** @brief Roughness given to every material converted to the standard type. */
	Roughness float32
	/** @brief Metalness given to every material converted to the standard type. */
	Metalness float32
}

// MaterialSystem converts arbitrary model materials to the standard lit type.
type MaterialSystem struct {
	Config MaterialSystemConfig
	// Number of conversions performed since creation.
	converted uint64
}

func NewMaterialSystem(config MaterialSystemConfig) (*MaterialSystem, error) {
	if config.Roughness < 0 || config.Roughness > 1 {
		err := fmt.Errorf("func NewMaterialSystem - roughness %.2f is outside [0, 1]", config.Roughness)
		core.LogError(err.Error())
		return nil, err
	}
	if config.Metalness < 0 || config.Metalness > 1 {
		err := fmt.Errorf("func NewMaterialSystem - metalness %.2f is outside [0, 1]", config.Metalness)
		core.LogError(err.Error())
		return nil, err
	}
	return &MaterialSystem{Config: config}, nil
}

/**
 * @brief Returns a standard material for the given one. A material that is already
 * standard is returned as is. Otherwise a new standard material is built carrying
 * over only the name and the base colour; every other property is dropped.
 *
 * @param m The current material. Nil yields a white default material.
 * @return The normalized material and whether a conversion took place.
 */
func (ms *MaterialSystem) Normalize(m *metadata.Material) (*metadata.Material, bool) {
	if m.IsStandard() {
		return m, false
	}
	out := ms.GetDefault()
	if m != nil {
		out.Name = m.Name
		out.Colour = m.Colour
	}
	out.MarkUpdated()
	ms.converted++
	return out, true
}

// GetDefault returns a fresh standard material for meshes without one.
func (ms *MaterialSystem) GetDefault() *metadata.Material {
	m := metadata.NewMaterial(metadata.DefaultMaterialName, metadata.MaterialTypeStandard, metadata.ColourWhite)
	m.Roughness = ms.Config.Roughness
	m.Metalness = ms.Config.Metalness
	return m
}

// Converted returns the number of materials converted so far.
func (ms *MaterialSystem) Converted() uint64 {
	return ms.converted
}

func (ms *MaterialSystem) Shutdown() error {
	return nil
}
