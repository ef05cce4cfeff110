package assets

import (
	"fmt"
	"sync"
	"time"

	"github.com/spaghettifunk/rerender/engine/assets/loaders"
	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager loads the side inputs of a render (transformations, background
// clouds, still images) through one loader per resource type.
type AssetManager struct {
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex
}

func NewAssetManager() *AssetManager {
	am := &AssetManager{
		assets:  make(map[string]AssetInfo),
		loaders: make(map[metadata.ResourceType]Loader),
	}
	am.registerLoader(metadata.ResourceTypeTransformations, &loaders.TransformationLoader{})
	am.registerLoader(metadata.ResourceTypeBackground, &loaders.BackgroundLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	return am
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// Load an asset using the appropriate loader
func (am *AssetManager) LoadAsset(path string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	loader, ok := am.loaders[resourceType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type: %s", resourceType)
	}

	res, err := loader.Load(path, resourceType, params)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am.mutex.Lock()
	am.assets[path] = AssetInfo{Path: path, Type: resourceType, LastLoaded: time.Now()}
	am.mutex.Unlock()

	core.LogDebug("loaded %s '%s' (%d elements)", resourceType, path, res.DataSize)
	return res, nil
}

// Loaded returns what was loaded from path, if anything.
func (am *AssetManager) Loaded(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[path]
	return info, ok
}
