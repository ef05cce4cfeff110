package assets

import (
	"github.com/spaghettifunk/rerender/engine/frame"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

func (am *AssetManager) LoadImage(path string) (*frame.RGB, error) {
	res, err := am.LoadAsset(path, metadata.ResourceTypeImage, nil)
	if err != nil {
		return nil, err
	}
	return res.Data.(*frame.RGB), nil
}
