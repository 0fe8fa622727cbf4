package nodemat

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Poster accepts events for the frame loop; *App is one.
type Poster interface {
	Post(Event)
}

// WatchPresets re-reads the variant file whenever it changes and posts its
// preset table to p. Parse errors are logged and the old table stays in
// effect. It blocks until ctx is done.
func WatchPresets(ctx context.Context, file string, p Poster, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "nodemat: watcher")
	}
	defer w.Close()

	file = filepath.Clean(file)
	// editors often replace the file, so watch its directory
	if err := w.Add(filepath.Dir(file)); err != nil {
		return errors.Wrapf(err, "nodemat: watch %s", file)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != file || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			v, err := LoadVariant(file)
			if err != nil {
				log.Warn("ignoring invalid variant change", "file", file, "err", err)
				continue
			}
			table, err := v.PresetTable()
			if err != nil {
				log.Warn("ignoring invalid presets", "file", file, "err", err)
				continue
			}
			log.Info("presets reloaded", "file", file, "presets", table.Len())
			p.Post(PresetsEvent{Presets: table})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "file", file, "err", err)
		}
	}
}
