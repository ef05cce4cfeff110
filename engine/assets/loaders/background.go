package loaders

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/math"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

type BackgroundLoader struct{}

// Load reads a background artifact: a CBOR array of exactly two elements,
// the N points and the N colours, each an array of [x, y, z] float64 triples.
func (bl *BackgroundLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("background file %s: %w", path, core.ErrMissingInput)
	}
	cloud, err := DecodeBackground(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(cloud.Len()),
		Data:     cloud,
	}, nil
}

func (bl *BackgroundLoader) Unload(*metadata.Resource) error {
	return nil
}

func EncodeBackground(cloud *metadata.PointCloud) ([]byte, error) {
	if len(cloud.Points) != len(cloud.Colors) {
		return nil, fmt.Errorf("%d points, %d colours: %w", len(cloud.Points), len(cloud.Colors), core.ErrCloudLengthMismatch)
	}
	return cbor.Marshal([]interface{}{toTriples(cloud.Points), toTriples(cloud.Colors)})
}

func DecodeBackground(data []byte) (*metadata.PointCloud, error) {
	var parts []cbor.RawMessage
	if err := cbor.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("decoding background: %w", err)
	}
	if len(parts) != 2 {
		return nil, fmt.Errorf("background has %d elements, want 2: %w", len(parts), core.ErrInvalidConfig)
	}

	points, err := decodeTriples(parts[0])
	if err != nil {
		return nil, fmt.Errorf("background points: %w", err)
	}
	colors, err := decodeTriples(parts[1])
	if err != nil {
		return nil, fmt.Errorf("background colours: %w", err)
	}
	if len(points) != len(colors) {
		return nil, fmt.Errorf("%d points, %d colours: %w", len(points), len(colors), core.ErrCloudLengthMismatch)
	}
	return metadata.NewPointCloud(points, colors), nil
}

func toTriples(vs []math.Vec3) [][3]float64 {
	out := make([][3]float64, len(vs))
	for i, v := range vs {
		out[i] = [3]float64{float64(v.X), float64(v.Y), float64(v.Z)}
	}
	return out
}

func decodeTriples(raw cbor.RawMessage) ([]math.Vec3, error) {
	var rows [][]float64
	if err := cbor.Unmarshal(raw, &rows); err != nil {
		return nil, err
	}
	out := make([]math.Vec3, len(rows))
	for i, r := range rows {
		if len(r) != 3 {
			return nil, fmt.Errorf("entry %d has %d components, want 3: %w", i, len(r), core.ErrInvalidConfig)
		}
		out[i] = math.NewVec3(float32(r[0]), float32(r[1]), float32(r[2]))
	}
	return out, nil
}
