package assets

import (
	"fmt"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

// NoLockFrame disables re-basing of the transformation stream.
const NoLockFrame = -1

// Transformations is the per-frame list of matrices that take a frame's mesh
// into the shared reference frame.
type Transformations struct {
	matrices []math.Mat4
}

// NewTransformations re-bases the matrices on lockFrame so that it becomes the
// identity: T'_i = T_i * inverse(T_lock). A negative lockFrame keeps them as is.
func NewTransformations(matrices []math.Mat4, lockFrame int) (*Transformations, error) {
	out := &Transformations{matrices: make([]math.Mat4, len(matrices))}
	copy(out.matrices, matrices)
	if lockFrame < 0 {
		return out, nil
	}
	if lockFrame >= len(matrices) {
		return nil, fmt.Errorf("lock frame %d, only %d transformations: %w", lockFrame, len(matrices), core.ErrInvalidConfig)
	}

	lockInv, ok := matrices[lockFrame].Inverse()
	if !ok {
		return nil, fmt.Errorf("lock frame %d: %w", lockFrame, core.ErrSingularMatrix)
	}
	// row-vector storage, so the column-vector product T_i * L^-1 is L^-1 * T_i here
	for i, t := range matrices {
		out.matrices[i] = lockInv.Mul(t)
	}
	return out, nil
}

func (am *AssetManager) LoadTransformations(path string, lockFrame int) (*Transformations, error) {
	res, err := am.LoadAsset(path, metadata.ResourceTypeTransformations, nil)
	if err != nil {
		return nil, err
	}
	t, err := NewTransformations(res.Data.([]math.Mat4), lockFrame)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return t, nil
}

// At returns the matrix of the 0-indexed frame.
func (t *Transformations) At(frame int) (math.Mat4, error) {
	if frame < 0 || frame >= len(t.matrices) {
		return math.Mat4{}, fmt.Errorf("frame %d of %d: %w", frame, len(t.matrices), core.ErrTransformationMissing)
	}
	return t.matrices[frame], nil
}

func (t *Transformations) Len() int {
	return len(t.matrices)
}
