package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	ResourceTypeNone ResourceType = iota
	/** @brief JSON list of per-frame 4x4 transformation matrices. */
	ResourceTypeTransformations
	/** @brief CBOR background point cloud artifact. */
	ResourceTypeBackground
	/** @brief Still image (png, jpeg) used in place of a video stream. */
	ResourceTypeImage
	/** @brief Packed depth video, only ever discovered by the inbox watcher. */
	ResourceTypeDepthVideo
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeTransformations:
		return "transformations"
	case ResourceTypeBackground:
		return "background"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeDepthVideo:
		return "depth video"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The number of elements in Data (matrices, points, pixels). */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
