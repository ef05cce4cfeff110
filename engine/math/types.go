package math

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

/**
 * @brief a 4x4 matrix, typically used to represent object transformations.
 * Stored so that points are transformed as row vectors (p' = p * M), i.e. the
 * translation lives in elements 12, 13 and 14.
 */
type Mat4 struct {
	/** @brief The matrix elements */
	Data [16]float32
}
