package loaders

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

type TransformationLoader struct{}

// Load reads a JSON list of row-major 4x4 matrices (translation in the last column).
func (tl *TransformationLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transformation file %s: %w", path, core.ErrMissingInput)
	}
	mats, err := DecodeTransformations(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(mats)),
		Data:     mats,
	}, nil
}

func (tl *TransformationLoader) Unload(*metadata.Resource) error {
	return nil
}

func DecodeTransformations(data []byte) ([]math.Mat4, error) {
	var raw [][][]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding transformations: %w", err)
	}
	mats := make([]math.Mat4, len(raw))
	for i, m := range raw {
		var rows [4][4]float64
		if len(m) != 4 {
			return nil, fmt.Errorf("transformation %d has %d rows, want 4: %w", i, len(m), core.ErrInvalidConfig)
		}
		for r, row := range m {
			if len(row) != 4 {
				return nil, fmt.Errorf("transformation %d row %d has %d columns, want 4: %w", i, r, len(row), core.ErrInvalidConfig)
			}
			copy(rows[r][:], row)
		}
		mats[i] = math.NewMat4FromRows(rows)
	}
	return mats, nil
}
