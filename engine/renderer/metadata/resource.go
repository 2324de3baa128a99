package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Not a resource the asset manager knows about. */
	ResourceTypeNone ResourceType = iota
	/** @brief A glTF/GLB model; Data holds a *Scene. */
	ResourceTypeModel
	/** @brief A TOML palette; Data holds a *Palette. */
	ResourceTypePalette
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeModel:
		return "model"
	case ResourceTypePalette:
		return "palette"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The resource type. */
	Type ResourceType
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path or URL of the resource. */
	FullPath string
	/** @brief The size of the raw resource data in bytes. */
	DataSize uint64
	/** @brief The bytes the resource was decoded from, kept for reloads. */
	RawData []byte
	/** @brief The decoded resource data. */
	Data interface{}
}
