package statusbar

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mchmarny/ibar/pkg/config"
	"github.com/mchmarny/ibar/pkg/server"
)

// Register adds every configured item in order.
func (m *Manager) Register(items []config.Item) {
	for _, it := range items {
		m.AddItem(it.Title, Command{Name: it.Command, Args: it.Args}, it.Dir)
	}
}

// Apply moves the menu from the old item list to the updated one.
func (m *Manager) Apply(old, updated []config.Item) {
	removed, added := config.Diff(old, updated)
	for _, title := range removed {
		m.RemoveItem(title)
	}
	m.Register(added)

	slog.Info("item file applied", "removed", len(removed), "added", len(added))
}

// unappliedChanges lists the settings a reload changed that only take effect
// on restart.
func unappliedChanges(old, updated *config.File) []string {
	var changed []string
	if old.CapacityOrDefault() != updated.CapacityOrDefault() {
		changed = append(changed, "capacity")
	}
	if old.Title != updated.Title {
		changed = append(changed, "title")
	}
	if old.MoreTitle != updated.MoreTitle {
		changed = append(changed, "more_title")
	}
	return changed
}

// Run serves the control API and, when w is not nil, applies item file
// reloads on top of current. It blocks until ctx is canceled or a component fails.
func (m *Manager) Run(ctx context.Context, w *config.Watcher, current *config.File, opt ...server.Option) error {
	if current == nil {
		current = &config.File{}
	}

	opt = append(opt, m.Handlers()...)
	srv := server.New(opt...)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Serve(gCtx)
	})

	if w != nil {
		g.Go(func() error {
			return w.Run(gCtx)
		})

		g.Go(func() error {
			for {
				select {
				case <-gCtx.Done():
					return nil
				case f := <-w.Changes():
					if changed := unappliedChanges(current, f); len(changed) > 0 {
						slog.Warn("item file settings changed, restart to apply", "fields", changed)
					}
					m.Apply(current.Items, f.Items)
					current = f
				}
			}
		})
	}

	return g.Wait()
}
