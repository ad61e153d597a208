package registry

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
	"github.com/YuminosukeSato/linscore/pkg/log"
)

// watchedOps are the file operations that make a cached model stale.
const watchedOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watch invalidates file-backed models whenever their file is written,
// replaced or removed. Parent directories are watched rather than the files
// themselves so that atomic replacements are seen. Watch returns once the
// watches are installed; they stay active until ctx is done or Close is
// called.
func (r *Registry) Watch(ctx context.Context) error {
	files := r.watchedFiles()
	if len(files) == 0 {
		return nil
	}

	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	if r.watcher != nil {
		return lserrors.New("registry: already watching")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return lserrors.Wrap(err, "create watcher")
	}
	dirs := make(map[string]struct{})
	for path := range files {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return lserrors.Wrapf(err, "watch %s", dir)
		}
	}
	r.watcher = w
	r.logger.Info("watching model files", "watch.files", len(files), "watch.dirs", len(dirs))

	go r.processEvents(ctx, w, files)
	return nil
}

// watchedFiles maps the absolute path of every file-backed model to its name.
func (r *Registry) watchedFiles() map[string]string {
	files := make(map[string]string)
	for _, name := range r.models.ModelNames() {
		m := r.models.Models[name]
		if m.File == "" {
			continue
		}
		abs, err := filepath.Abs(m.File)
		if err != nil {
			continue
		}
		files[abs] = name
	}
	return files
}

func (r *Registry) processEvents(ctx context.Context, w *fsnotify.Watcher, files map[string]string) {
	defer r.stopWatcher(w)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			r.handleEvent(event, files)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			r.logger.Warn("watch error", log.ErrorKey, err)
		}
	}
}

func (r *Registry) handleEvent(event fsnotify.Event, files map[string]string) {
	if event.Op&watchedOps == 0 {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	name, ok := files[abs]
	if !ok {
		return
	}
	r.logger.Debug("model file changed", log.CacheKey, name, log.SourceKey, abs, "watch.op", event.Op.String())
	r.Invalidate(name)
}

// Close stops watching. It is safe to call more than once.
func (r *Registry) Close() error {
	r.watchMu.Lock()
	w := r.watcher
	r.watchMu.Unlock()
	if w == nil {
		return nil
	}
	return r.stopWatcher(w)
}

func (r *Registry) stopWatcher(w *fsnotify.Watcher) error {
	r.watchMu.Lock()
	defer r.watchMu.Unlock()
	if r.watcher != w {
		return nil
	}
	r.watcher = nil
	return w.Close()
}
