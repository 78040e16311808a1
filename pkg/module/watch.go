package module

import (
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates cached modules when their backing source file
// changes on disk, so a long-running debug session picks up edits on the
// next load instead of serving stale instrumented text.
type Watcher struct {
	cache   *Cache
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching dir for changes to *.wren files and returns a
// Watcher whose Close stops it. A nil Cache argument is invalid.
func Watch(cache *Cache, dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		dir = "."
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{cache: cache, watcher: fw, done: make(chan struct{})}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, Extension) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.cache.invalidateByPath(event.Name)
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

// invalidateByPath drops the cache entry whose source file is path, if any
// is loaded under that name.
func (c *Cache) invalidateByPath(path string) {
	name := strings.TrimSuffix(path, Extension)
	if idx := strings.LastIndexAny(name, `/\`); idx != -1 {
		name = name[idx+1:]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.modules, name)
}
