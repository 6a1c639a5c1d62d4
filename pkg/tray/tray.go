// Package tray renders the menu into the native status bar.
package tray

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/mchmarny/ibar/pkg/menu"
)

// Tray is a menu renderer backed by systray. Native menu items cannot be
// removed, so the tray allocates slots up front and hides the unused ones:
// one per primary row, a group row, and overflow slots grown on demand.
type Tray struct {
	capacity int
	invoke   func(path string)
	quit     func()

	mu       sync.Mutex
	ready    bool
	pending  *menu.Menu
	primary  []*systray.MenuItem
	more     *systray.MenuItem
	overflow []*systray.MenuItem
}

// New creates a tray with capacity primary slots. invoke is called with the
// row path when a row is clicked, quit when the user picks Quit.
func New(capacity int, invoke func(path string), quit func()) *Tray {
	return &Tray{
		capacity: capacity,
		invoke:   invoke,
		quit:     quit,
	}
}

// Run blocks on the native event loop and must be called from the main
// goroutine. onStart runs once the tray is ready, onExit after it closes.
func (t *Tray) Run(onStart, onExit func()) {
	systray.Run(func() {
		t.setup()
		if onStart != nil {
			onStart()
		}
	}, func() {
		if onExit != nil {
			onExit()
		}
	})
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) setup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	systray.SetTitle(statusbarTitle(t.pending))

	for i := 0; i < t.capacity; i++ {
		item := systray.AddMenuItem("", "")
		item.Hide()
		t.primary = append(t.primary, item)
		go t.listen(item, fmt.Sprintf("/%d", i))
	}

	t.more = systray.AddMenuItem(menu.DefaultMoreTitle, "")
	t.more.Hide()

	systray.AddSeparator()
	quit := systray.AddMenuItem("Quit", "Quit the app")
	go func() {
		<-quit.ClickedCh
		if t.quit != nil {
			t.quit()
		}
	}()

	t.ready = true
	if t.pending != nil {
		t.renderLocked(t.pending)
	}
}

// Render implements the statusbar renderer. Calls before the tray is ready
// are kept and replayed once it is.
func (t *Tray) Render(m *menu.Menu) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending = m
	if !t.ready {
		return
	}
	t.renderLocked(m)
}

func (t *Tray) renderLocked(m *menu.Menu) {
	systray.SetTitle(statusbarTitle(m))
	systray.SetTooltip(fmt.Sprintf("%s: %d items", statusbarTitle(m), countEntries(m.Items)))

	var group *menu.Item
	shown := 0
	for i := range m.Items {
		if m.Items[i].IsGroup() {
			group = &m.Items[i]
			continue
		}
		if shown >= len(t.primary) {
			slog.Warn("more primary rows than tray slots", "capacity", t.capacity)
			break
		}
		t.primary[shown].SetTitle(m.Items[i].Title)
		t.primary[shown].Show()
		shown++
	}
	for i := shown; i < len(t.primary); i++ {
		t.primary[i].Hide()
	}

	if group == nil {
		t.more.Hide()
		for _, item := range t.overflow {
			item.Hide()
		}
		return
	}

	t.more.SetTitle(group.Title)
	t.more.Show()

	// group rows are addressed under the group path, which sits after the primary rows
	for len(t.overflow) < len(group.Items) {
		item := t.more.AddSubMenuItem("", "")
		go t.listen(item, fmt.Sprintf("%s/%d", group.Path, len(t.overflow)))
		t.overflow = append(t.overflow, item)
	}
	for i, item := range t.overflow {
		if i < len(group.Items) {
			item.SetTitle(group.Items[i].Title)
			item.Show()
		} else {
			item.Hide()
		}
	}
}

func (t *Tray) listen(item *systray.MenuItem, path string) {
	for range item.ClickedCh {
		if t.invoke != nil {
			t.invoke(path)
		}
	}
}

func statusbarTitle(m *menu.Menu) string {
	if m == nil || m.Title == "" {
		return "Menu"
	}
	return m.Title
}

func countEntries(items []menu.Item) int {
	n := 0
	for _, it := range items {
		if it.IsGroup() {
			n += len(it.Items)
			continue
		}
		n++
	}
	return n
}
