package menu

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultMoreTitle is the title of the row grouping overflow entries.
const DefaultMoreTitle = "More..."

// Item represents a rendered row in the menu, which may contain sub-items.
type Item struct {
	// Path is the position of the row, e.g. "/2" or "/5/0" for the first overflow row.
	Path string `json:"path"`

	// Title is the title of the menu item.
	Title string `json:"title"`

	// Entry is the menu entry behind this row. Nil for the overflow group row.
	// This field is not serialized to JSON.
	Entry *Entry `json:"-"`

	// Items are the sub-items of this menu item.
	Items []Item `json:"items,omitempty"`
}

// IsGroup reports whether the item is the overflow group row.
func (i Item) IsGroup() bool {
	return i.Entry == nil
}

// Project turns a layout into rows: one per primary entry and, only when
// overflow is non-empty, a trailing group row titled moreTitle holding the
// overflow entries in order.
func Project(primary, overflow []Entry, moreTitle string) []Item {
	if moreTitle == "" {
		moreTitle = DefaultMoreTitle
	}

	size := len(primary)
	if len(overflow) > 0 {
		size++
	}

	items := make([]Item, 0, size)
	for i := range primary {
		items = append(items, entryItem(fmt.Sprintf("/%d", i), &primary[i]))
	}

	if len(overflow) == 0 {
		return items
	}

	groupPath := fmt.Sprintf("/%d", len(primary))
	group := Item{
		Path:  groupPath,
		Title: moreTitle,
		Items: make([]Item, 0, len(overflow)),
	}
	for i := range overflow {
		group.Items = append(group.Items, entryItem(fmt.Sprintf("%s/%d", groupPath, i), &overflow[i]))
	}

	return append(items, group)
}

func entryItem(path string, e *Entry) Item {
	return Item{Path: path, Title: e.Title, Entry: e}
}

// Find walks the rows and returns the item at path.
func Find(items []Item, path string) (Item, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		return Item{}, false
	}

	level := items
	var found Item
	for _, p := range parts {
		i, err := strconv.Atoi(p)
		if err != nil || i < 0 || i >= len(level) {
			return Item{}, false
		}
		found = level[i]
		level = found.Items
	}

	return found, true
}
