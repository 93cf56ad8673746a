package config

import (
	"context"
	"log/slog"

	"github.com/contre95/monkeypress/src/infra/watcher"
)

// Watch reloads the configuration whenever the file at path changes. An
// invalid file is logged and the running configuration is kept. The
// returned function stops watching.
func Watch(ctx context.Context, path string, m *Manager) (func(), error) {
	events := make(chan watcher.FileEvent, 1)
	w, err := watcher.NewWatcher(events, watcher.DefaultDebounce)
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx, path); err != nil {
		w.Stop()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev := <-events:
				m.reload(ev)
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		close(done)
		w.Stop()
	}, nil
}

func (m *Manager) reload(ev watcher.FileEvent) {
	if ev.EventType == watcher.FileRemoved {
		slog.Warn("Config file removed, keeping current configuration", "path", ev.Path)
		return
	}
	cfg, err := readFile(ev.Path)
	if err != nil {
		slog.Error("Config reload failed, keeping current configuration", "path", ev.Path, "error", err)
		return
	}
	m.Update(cfg)
	slog.Info("Configuration reloaded", "path", ev.Path)
}
