package core

import (
	"errors"
)

var (
	ErrMissingInput          = errors.New("required input is missing")
	ErrInvalidFOV            = errors.New("field of view must be within (0, 180) degrees")
	ErrDimensionMismatch     = errors.New("frame dimensions do not match")
	ErrCloudLengthMismatch   = errors.New("point and colour arrays differ in length")
	ErrTransformationMissing = errors.New("no transformation for frame")
	ErrSingularMatrix        = errors.New("matrix is not invertible")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrUnknownFormat         = errors.New("unknown output format")
)
