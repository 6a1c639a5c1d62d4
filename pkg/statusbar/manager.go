// Package statusbar owns the bounded menu for the lifetime of the app and
// keeps every renderer in sync with it.
package statusbar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mchmarny/ibar/pkg/menu"
	"github.com/mchmarny/ibar/pkg/metric"
)

// DefaultTitle is shown in the status bar when no title is configured.
const DefaultTitle = "Menu"

var (
	// ErrItemNotFound is returned when no row exists at the requested path.
	ErrItemNotFound = errors.New("item not found")

	// ErrUnsupportedAction is returned when a row's action cannot be dispatched.
	ErrUnsupportedAction = errors.New("unsupported action")
)

// Renderer reflects the menu somewhere. Render is called with a full snapshot
// after every mutation, while the manager lock is held, so implementations
// must not call back into the Manager synchronously.
type Renderer interface {
	Render(m *menu.Menu)
}

// RendererFunc adapts a func to Renderer.
type RendererFunc func(m *menu.Menu)

// Render calls f(m).
func (f RendererFunc) Render(m *menu.Menu) { f(m) }

// Invoker is an action that knows how to run itself against a target.
type Invoker interface {
	Invoke(ctx context.Context, target any) error
}

// Manager serializes access to a menu.Bounded and re-renders after each change.
type Manager struct {
	mu        sync.Mutex
	menu      *menu.Bounded
	title     string
	version   string
	moreTitle string
	renderers []Renderer

	registry    *prometheus.Registry
	mutations   *metric.Counter
	entries     *metric.Gauge
	invocations *metric.Counter
}

// Option configures a Manager.
type Option func(*Manager)

// WithTitle sets the status bar title.
func WithTitle(title string) Option {
	return func(m *Manager) { m.title = title }
}

// WithVersion sets the version reported with the menu.
func WithVersion(version string) Option {
	return func(m *Manager) { m.version = version }
}

// WithMoreTitle sets the title of the overflow group row.
func WithMoreTitle(title string) Option {
	return func(m *Manager) { m.moreTitle = title }
}

// WithRenderer registers a renderer at construction.
func WithRenderer(r Renderer) Option {
	return func(m *Manager) { m.renderers = append(m.renderers, r) }
}

// NewManager creates a manager around an empty menu of the given capacity.
func NewManager(capacity int, opts ...Option) (*Manager, error) {
	b, err := menu.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("creating menu: %w", err)
	}

	reg := prometheus.NewRegistry()
	m := &Manager{
		menu:      b,
		title:     DefaultTitle,
		moreTitle: menu.DefaultMoreTitle,
		registry:  reg,
		mutations: metric.NewCounterWithRegistry(reg, "menu_mutations_total",
			"Number of menu mutations by operation.", "op"),
		entries: metric.NewGaugeWithRegistry(reg, "menu_entries",
			"Number of menu entries by group.", "group"),
		invocations: metric.NewCounterWithRegistry(reg, "menu_invocations_total",
			"Number of menu action invocations by result.", "result"),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderLocked()

	return m, nil
}

// Gatherer exposes the manager metrics.
func (m *Manager) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Capacity returns the number of rows shown before overflow.
func (m *Manager) Capacity() int {
	return m.menu.Capacity()
}

// AddRenderer registers r and renders the current menu to it right away.
func (m *Manager) AddRenderer(r Renderer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.renderers = append(m.renderers, r)
	r.Render(m.snapshotLocked())
}

// AddItem appends an entry. Duplicate titles are kept.
func (m *Manager) AddItem(title string, action, target any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.menu.Add(title, action, target)
	m.mutations.Increment("add")
	slog.Debug("menu item added", "title", title, "entries", m.menu.Len())

	m.renderLocked()
}

// RemoveItem removes every entry titled title and returns how many went away.
func (m *Manager) RemoveItem(title string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.menu.RemoveByTitle(title)
	m.mutations.Increment("remove")
	slog.Debug("menu item removed", "title", title, "removed", n, "entries", m.menu.Len())

	m.renderLocked()

	return n
}

// Layout returns the primary and overflow groups.
func (m *Manager) Layout() (primary, overflow []menu.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.menu.Layout()
}

// Snapshot returns the projected menu.
func (m *Manager) Snapshot() *menu.Menu {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.snapshotLocked()
}

// Invoke dispatches the action of the row at path. The manager lock is not
// held while the action runs, so actions may mutate the menu.
func (m *Manager) Invoke(ctx context.Context, path string) error {
	item, ok := menu.Find(m.Snapshot().Items, path)
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, path)
	}
	if item.IsGroup() {
		return fmt.Errorf("%w: %s is the overflow group", ErrUnsupportedAction, path)
	}

	slog.Info("invoking menu item", "title", item.Title, "path", path)

	err := dispatch(ctx, item.Entry.Action, item.Entry.Target)
	if err != nil {
		m.invocations.Increment("error")
		return fmt.Errorf("invoking %q: %w", item.Title, err)
	}

	m.invocations.Increment("ok")
	return nil
}

func dispatch(ctx context.Context, action, target any) error {
	switch a := action.(type) {
	case Invoker:
		return a.Invoke(ctx, target)
	case func(context.Context, any) error:
		return a(ctx, target)
	case func(any):
		a(target)
		return nil
	case func():
		a()
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedAction, action)
	}
}

func (m *Manager) snapshotLocked() *menu.Menu {
	primary, overflow := m.menu.Layout()
	return &menu.Menu{
		Title:    m.title,
		Version:  m.version,
		Capacity: m.menu.Capacity(),
		Items:    menu.Project(primary, overflow, m.moreTitle),
	}
}

func (m *Manager) renderLocked() {
	snap := m.snapshotLocked()

	primary := min(m.menu.Len(), m.menu.Capacity())
	m.entries.Set(float64(primary), "primary")
	m.entries.Set(float64(m.menu.Len()-primary), "overflow")

	for _, r := range m.renderers {
		r.Render(snap)
	}
}
