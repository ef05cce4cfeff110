package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

type ImageLoader struct{}

// Load decodes a still image into an RGB frame.
func (il *ImageLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", path, core.ErrMissingInput)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	f := frame.FromImage(img)
	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(f.Width * f.Height),
		Data:     f,
	}, nil
}

func (il *ImageLoader) Unload(*metadata.Resource) error {
	return nil
}
