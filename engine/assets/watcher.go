package assets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/renderer/metadata"
)

// DefaultSettle is how long a file must stay untouched before it is handed out.
const DefaultSettle = 2 * time.Second

// Inbox watches a directory for new depth videos. A file is reported once,
// after no write touched it for the settle period.
type Inbox struct {
	dir    string
	settle time.Duration

	fsnotify *fsnotify.Watcher
	mutex    sync.Mutex
	pending  map[string]time.Time
	seen     map[string]bool
	isClosed bool
}

func NewInbox(dir string, settle time.Duration) (*Inbox, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Inbox{
		dir:      dir,
		settle:   settle,
		fsnotify: fsWatch,
		pending:  make(map[string]time.Time),
		seen:     make(map[string]bool),
	}, nil
}

// Start begins watching. Depth videos already in the directory are reported
// too. The returned channel is closed when ctx is done.
func (in *Inbox) Start(ctx context.Context) (<-chan string, error) {
	if in.isClosed {
		return nil, errors.New("inbox already closed")
	}
	if err := in.fsnotify.Add(in.dir); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(in.dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			in.handleFileEvent(filepath.Join(in.dir, e.Name()))
		}
	}

	out := make(chan string)
	go in.loop(ctx, out)
	return out, nil
}

func (in *Inbox) loop(ctx context.Context, out chan<- string) {
	ticker := time.NewTicker(in.settle / 4)
	defer ticker.Stop()
	defer close(out)
	defer in.close()

	for {
		select {
		case e, ok := <-in.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				in.handleFileEvent(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				in.mutex.Lock()
				delete(in.pending, e.Name)
				in.mutex.Unlock()
			}

		case err, ok := <-in.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case now := <-ticker.C:
			for _, path := range in.settled(now) {
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

func (in *Inbox) close() {
	in.mutex.Lock()
	defer in.mutex.Unlock()
	if !in.isClosed {
		in.isClosed = true
		in.fsnotify.Close()
	}
}

// Handle the creation or modification of a file
func (in *Inbox) handleFileEvent(path string) {
	if DetermineAssetType(path) != metadata.ResourceTypeDepthVideo {
		return
	}
	in.mutex.Lock()
	defer in.mutex.Unlock()
	if in.seen[path] {
		return
	}
	in.pending[path] = time.Now()
}

func (in *Inbox) settled(now time.Time) []string {
	in.mutex.Lock()
	defer in.mutex.Unlock()
	var ready []string
	for path, touched := range in.pending {
		if now.Sub(touched) >= in.settle {
			ready = append(ready, path)
			delete(in.pending, path)
			in.seen[path] = true
		}
	}
	return ready
}

var outputMarkers = []string{"_Touchly0", "_Touchly1", "_stereo", "_infillmask", "_background"}

var videoExtensions = map[string]bool{
	".mkv": true, ".mp4": true, ".avi": true, ".mov": true, ".webm": true,
}

func DetermineAssetType(path string) metadata.ResourceType {
	base := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(base))
	switch {
	case ext == ".json":
		return metadata.ResourceTypeTransformations
	case ext == ".cbor":
		return metadata.ResourceTypeBackground
	case ext == ".png" || ext == ".jpg" || ext == ".jpeg":
		return metadata.ResourceTypeImage
	case videoExtensions[ext] && strings.Contains(base, "_depth"):
		for _, marker := range outputMarkers {
			if strings.Contains(base, marker) {
				return metadata.ResourceTypeNone
			}
		}
		return metadata.ResourceTypeDepthVideo
	default:
		return metadata.ResourceTypeNone
	}
}
