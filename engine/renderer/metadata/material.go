package metadata

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/** @brief The shading model of a material. */
type MaterialType uint8

const (
	/** @brief Unlit, flat colour. */
	MaterialTypeBasic MaterialType = iota
	/** @brief Legacy Blinn-Phong shading. */
	MaterialTypePhong
	/** @brief The physically based, lit material every mesh is normalized to. */
	MaterialTypeStandard
)

func (mt MaterialType) String() string {
	switch mt {
	case MaterialTypeBasic:
		return "basic"
	case MaterialTypePhong:
		return "phong"
	case MaterialTypeStandard:
		return "standard"
	default:
		return "unknown"
	}
}

/**
 * @brief A material, which represents various properties
 * of a surface in the world such as colour, roughness,
 * emission and more.
 */
type Material struct {
	/** @brief The material name, as authored in the model file. */
	Name string
	/** @brief The shading model. */
	Type MaterialType
	/** @brief The base (diffuse) colour. */
	Colour Colour
	/** @brief Surface roughness in [0, 1]; only meaningful for standard materials. */
	Roughness float32
	/** @brief Metalness in [0, 1]; only meaningful for standard materials. */
	Metalness float32
	/** @brief The self-illumination colour. */
	Emissive Colour
	/** @brief Multiplier applied to Emissive. */
	EmissiveIntensity float32
	/** @brief Opacity in [0, 1]. */
	Opacity float32
	/** @brief Whether the material is alpha blended. */
	Transparent bool
	/** @brief The diffuse map name, if the model supplied one. */
	DiffuseMapName string
	/** @brief Set when a change must be picked up by the renderer. */
	NeedsUpdate bool
	/** @brief The material generation. Incremented every time the material is flagged for update. */
	Generation uint32
}

// NewMaterial returns an opaque, non-emissive material of the given type.
func NewMaterial(name string, materialType MaterialType, colour Colour) *Material {
	return &Material{
		Name:     name,
		Type:     materialType,
		Colour:   colour,
		Emissive: ColourBlack,
		Opacity:  1,
	}
}

// IsStandard reports whether m already uses the standard lit type.
func (m *Material) IsStandard() bool {
	return m != nil && m.Type == MaterialTypeStandard
}

// MarkUpdated flags m for the renderer and bumps its generation.
func (m *Material) MarkUpdated() {
	m.NeedsUpdate = true
	m.Generation++
}

// Clone returns an independent copy of m.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
