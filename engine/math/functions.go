package math

import (
	m "math"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float64 = 3.14159265358979323846
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float64 = K_PI / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	K_RAD2DEG_MULTIPLIER float64 = 180.0 / K_PI
)

func ksqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func kabs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

// ------------------------------------------
// Vector 3
// ------------------------------------------

/**
 * @brief Creates and returns a new 3-element vector using the supplied values.
 *
 * @param x The x value.
 * @param y The y value.
 * @param z The z value.
 * @return A new 3-element vector.
 */
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

/**
 * @brief Creates and returns a 3-component vector with all components set to 0.0f.
 */
func NewVec3Zero() Vec3 {
	return Vec3{}
}

/**
 * @brief Creates and returns a 3-component vector with all components set to 1.0f.
 */
func NewVec3One() Vec3 {
	return Vec3{1.0, 1.0, 1.0}
}

/**
 * @brief Adds other to v and returns a copy of the result.
 */
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

/**
 * @brief Subtracts other from v and returns a copy of the result.
 */
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

/**
 * @brief Returns the squared length of the provided vector.
 */
func (v Vec3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

/**
 * @brief Returns the length of the provided vector.
 */
func (v Vec3) Length() float32 {
	return ksqrt(v.LengthSquared())
}

/**
 * @brief Compares all elements of v and other and ensures the difference
 * is less than tolerance.
 */
func (v Vec3) Compare(other Vec3, tolerance float32) bool {
	return kabs(v.X-other.X) <= tolerance &&
		kabs(v.Y-other.Y) <= tolerance &&
		kabs(v.Z-other.Z) <= tolerance
}

/**
 * @brief Transform v by m. NOTE: It is assumed by this function that the
 * vector v is a point, not a direction, and is calculated as if a w component
 * with a value of 1.0f is there.
 *
 * @param v The vector to transform.
 * @param m The matrix to transform by.
 * @return A transformed copy of v.
 */
func (v Vec3) Transform(m Mat4) Vec3 {
	out := Vec3{}
	out.X = v.X*m.Data[0+0] + v.Y*m.Data[4+0] + v.Z*m.Data[8+0] + 1.0*m.Data[12+0]
	out.Y = v.X*m.Data[0+1] + v.Y*m.Data[4+1] + v.Z*m.Data[8+1] + 1.0*m.Data[12+1]
	out.Z = v.X*m.Data[0+2] + v.Y*m.Data[4+2] + v.Z*m.Data[8+2] + 1.0*m.Data[12+2]
	return out
}

// ------------------------------------------
// Matrix 4
// ------------------------------------------

/**
 * @brief Creates and returns an identity matrix:
 *
 * {
 *   {1, 0, 0, 0},
 *   {0, 1, 0, 0},
 *   {0, 0, 1, 0},
 *   {0, 0, 0, 1}
 * }
 *
 * @return A new identity matrix
 */
func NewMat4Identity() Mat4 {
	out_matrix := Mat4{}
	out_matrix.Data[0] = 1.0
	out_matrix.Data[5] = 1.0
	out_matrix.Data[10] = 1.0
	out_matrix.Data[15] = 1.0
	return out_matrix
}

/**
 * @brief Builds a matrix from row-major rows written in the column-vector
 * convention (p' = M * p, translation in the last column), which is how
 * transformation files store them.
 */
func NewMat4FromRows(rows [4][4]float64) Mat4 {
	out_matrix := Mat4{}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out_matrix.Data[c*4+r] = float32(rows[r][c])
		}
	}
	return out_matrix
}

/**
 * @brief Returns the matrix as row-major rows in the column-vector convention.
 * Inverse of NewMat4FromRows.
 */
func (mt Mat4) Rows() [4][4]float64 {
	var rows [4][4]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			rows[r][c] = float64(mt.Data[c*4+r])
		}
	}
	return rows
}

/**
 * @brief Returns the result of multiplying matrix_0 and matrix_1.
 *
 * @param matrix_0 The first matrix to be multiplied.
 * @param matrix_1 The second matrix to be multiplied.
 * @return The result of the matrix multiplication.
 */
func (mt Mat4) Mul(other Mat4) Mat4 {
	out_matrix := NewMat4Identity()

	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			sum := float32(0)
			for i := 0; i < 4; i++ {
				sum += mt.Data[row*4+i] * other.Data[i*4+col]
			}
			out_matrix.Data[row*4+col] = sum
		}
	}

	return out_matrix
}

/**
 * @brief Compares every element against other within tolerance.
 */
func (mt Mat4) Compare(other Mat4, tolerance float32) bool {
	for i := range mt.Data {
		if kabs(mt.Data[i]-other.Data[i]) > tolerance {
			return false
		}
	}
	return true
}

/**
 * @brief Creates and returns an inverse of the provided matrix. The cofactors
 * are accumulated in float64; ok is false when the matrix is singular.
 *
 * @param matrix The matrix to be inverted.
 * @return A inverted copy of the provided matrix.
 */
func (mt Mat4) Inverse() (Mat4, bool) {
	var m [16]float64
	for i, v := range mt.Data {
		m[i] = float64(v)
	}

	t0 := m[10] * m[15]
	t1 := m[14] * m[11]
	t2 := m[6] * m[15]
	t3 := m[14] * m[7]
	t4 := m[6] * m[11]
	t5 := m[10] * m[7]
	t6 := m[2] * m[15]
	t7 := m[14] * m[3]
	t8 := m[2] * m[11]
	t9 := m[10] * m[3]
	t10 := m[2] * m[7]
	t11 := m[6] * m[3]
	t12 := m[8] * m[13]
	t13 := m[12] * m[9]
	t14 := m[4] * m[13]
	t15 := m[12] * m[5]
	t16 := m[4] * m[9]
	t17 := m[8] * m[5]
	t18 := m[0] * m[13]
	t19 := m[12] * m[1]
	t20 := m[0] * m[9]
	t21 := m[8] * m[1]
	t22 := m[0] * m[5]
	t23 := m[4] * m[1]

	var o [16]float64

	o[0] = (t0*m[5] + t3*m[9] + t4*m[13]) - (t1*m[5] + t2*m[9] + t5*m[13])
	o[1] = (t1*m[1] + t6*m[9] + t9*m[13]) - (t0*m[1] + t7*m[9] + t8*m[13])
	o[2] = (t2*m[1] + t7*m[5] + t10*m[13]) - (t3*m[1] + t6*m[5] + t11*m[13])
	o[3] = (t5*m[1] + t8*m[5] + t11*m[9]) - (t4*m[1] + t9*m[5] + t10*m[9])

	det := m[0]*o[0] + m[4]*o[1] + m[8]*o[2] + m[12]*o[3]
	if det == 0 {
		return Mat4{}, false
	}
	d := 1.0 / det

	o[0] = d * o[0]
	o[1] = d * o[1]
	o[2] = d * o[2]
	o[3] = d * o[3]
	o[4] = d * ((t1*m[4] + t2*m[8] + t5*m[12]) - (t0*m[4] + t3*m[8] + t4*m[12]))
	o[5] = d * ((t0*m[0] + t7*m[8] + t8*m[12]) - (t1*m[0] + t6*m[8] + t9*m[12]))
	o[6] = d * ((t3*m[0] + t6*m[4] + t11*m[12]) - (t2*m[0] + t7*m[4] + t10*m[12]))
	o[7] = d * ((t4*m[0] + t9*m[4] + t10*m[8]) - (t5*m[0] + t8*m[4] + t11*m[8]))
	o[8] = d * ((t12*m[7] + t15*m[11] + t16*m[15]) - (t13*m[7] + t14*m[11] + t17*m[15]))
	o[9] = d * ((t13*m[3] + t18*m[11] + t21*m[15]) - (t12*m[3] + t19*m[11] + t20*m[15]))
	o[10] = d * ((t14*m[3] + t19*m[7] + t22*m[15]) - (t15*m[3] + t18*m[7] + t23*m[15]))
	o[11] = d * ((t17*m[3] + t20*m[7] + t23*m[11]) - (t16*m[3] + t21*m[7] + t22*m[11]))
	o[12] = d * ((t14*m[10] + t17*m[14] + t13*m[6]) - (t16*m[14] + t12*m[6] + t15*m[10]))
	o[13] = d * ((t20*m[14] + t12*m[2] + t19*m[10]) - (t18*m[10] + t21*m[14] + t13*m[2]))
	o[14] = d * ((t18*m[6] + t23*m[14] + t15*m[2]) - (t22*m[14] + t14*m[2] + t19*m[6]))
	o[15] = d * ((t22*m[10] + t16*m[2] + t21*m[6]) - (t20*m[6] + t23*m[10] + t17*m[2]))

	out_matrix := Mat4{}
	for i, v := range o {
		out_matrix.Data[i] = float32(v)
	}
	return out_matrix, true
}

/**
 * @brief Creates and returns a translation matrix from the given position.
 *
 * @param position The position to be used to create the matrix.
 * @return A newly created translation matrix.
 */
func NewMat4Translation(position Vec3) Mat4 {
	out_matrix := NewMat4Identity()
	out_matrix.Data[12] = position.X
	out_matrix.Data[13] = position.Y
	out_matrix.Data[14] = position.Z
	return out_matrix
}

/**
 * @brief Returns a scale matrix using the provided scale.
 *
 * @param scale The 3-component scale.
 * @return A scale matrix.
 */
func NewMat4Scale(scale Vec3) Mat4 {
	out_matrix := NewMat4Identity()
	out_matrix.Data[0] = scale.X
	out_matrix.Data[5] = scale.Y
	out_matrix.Data[10] = scale.Z
	return out_matrix
}

/**
 * @brief Creates a rotation matrix around the y axis.
 *
 * @param angle_radians The y angle in radians.
 * @return A rotation matrix.
 */
func NewMat4EulerY(angle_radians float64) Mat4 {
	out_matrix := NewMat4Identity()
	c := float32(m.Cos(angle_radians))
	s := float32(m.Sin(angle_radians))

	out_matrix.Data[0] = c
	out_matrix.Data[2] = -s
	out_matrix.Data[8] = s
	out_matrix.Data[10] = c
	return out_matrix
}

/**
 * @brief Converts provided degrees to radians.
 *
 * @param degrees The degrees to be converted.
 * @return The amount in radians.
 */
func DegToRad(degrees float64) float64 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

/**
 * @brief Converts provided radians to degrees.
 *
 * @param radians The radians to be converted.
 * @return The amount in degrees.
 */
func RadToDeg(radians float64) float64 {
	return radians * K_RAD2DEG_MULTIPLIER
}
