package renderer

import (
	"github.com/spaghettifunk/rerender/engine/renderer/components"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

// RendererBackend draws instances from a camera into colour and depth buffers.
// Calls block until the frame is complete; a backend may parallelise internally.
type RendererBackend interface {
	Initialize() error
	Shutdown() error
	Render(instances []metadata.Instance, camera *components.Camera, opts metadata.RenderOptions) (*metadata.RenderedView, error)
}
