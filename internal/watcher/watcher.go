// Package watcher logs new renders and analyses as the ingestion pipeline
// writes them. Optional and observational; nothing reads its state.
package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher follows Create events in the configured subdirectories.
type Watcher struct {
	root string
	dirs []string
	log  zerolog.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// New creates a Watcher over the given subdirectories of root.
func New(root string, dirs []string, log zerolog.Logger) *Watcher {
	return &Watcher{
		root: root,
		dirs: dirs,
		log:  log,
		done: make(chan struct{}),
	}
}

// Start registers the directories that exist and begins logging arrivals.
// Directories not yet created by the ingester are skipped; they get picked up
// on the next process start.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw

	watched := 0
	for _, dir := range w.dirs {
		path := filepath.Join(w.root, dir)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := fsw.Add(path); err != nil {
			w.log.Warn().Err(err).Str("dir", dir).Msg("cannot watch directory")
			continue
		}
		watched++
	}
	w.log.Info().Int("directories", watched).Msg("arrival watcher started")

	go w.loop()
	return nil
}

// Stop ends the watch loop and releases the inotify handle.
func (w *Watcher) Stop() {
	close(w.done)
	if w.fsw != nil {
		_ = w.fsw.Close()
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) {
				continue
			}
			switch strings.ToLower(filepath.Ext(event.Name)) {
			case ".png", ".geojson":
				rel, err := filepath.Rel(w.root, event.Name)
				if err != nil {
					rel = event.Name
				}
				w.log.Info().Str("file", rel).Msg("new data arrived")
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")

		case <-w.done:
			return
		}
	}
}
