package assets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/rerender/engine/assets/loaders"
	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

func (am *AssetManager) LoadBackground(path string) (*metadata.PointCloud, error) {
	res, err := am.LoadAsset(path, metadata.ResourceTypeBackground, nil)
	if err != nil {
		return nil, err
	}
	return res.Data.(*metadata.PointCloud), nil
}

// SaveBackground writes the cloud next to path through a temporary file so a
// reader never sees a partial artifact.
func (am *AssetManager) SaveBackground(path string, cloud *metadata.PointCloud) error {
	data, err := loaders.EncodeBackground(cloud)
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".background-*")
	if err != nil {
		return fmt.Errorf("saving background: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("saving background: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("saving background: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("saving background: %w", err)
	}
	core.LogInfo("saved %d background points to %s", cloud.Len(), path)
	return nil
}
