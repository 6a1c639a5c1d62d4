// Package config loads the menu item file and watches it for changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/mchmarny/ibar/pkg/menu"
)

// DefaultFileName is the item file looked up when no path is given.
const DefaultFileName = "items.yaml"

// File is the on-disk menu definition.
type File struct {
	// Title shown in the status bar.
	Title string `yaml:"title,omitempty"`

	// Capacity is the number of items shown before overflow. Nil means default.
	Capacity *int `yaml:"capacity,omitempty"`

	// MoreTitle labels the overflow group.
	MoreTitle string `yaml:"more_title,omitempty"`

	// Items in display order.
	Items []Item `yaml:"items"`
}

// Item is a single menu entry that runs a command when selected.
type Item struct {
	Title   string   `yaml:"title"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
	Dir     string   `yaml:"dir,omitempty"`
}

// Equal reports whether two items are identical.
func (i Item) Equal(o Item) bool {
	return i.Title == o.Title &&
		i.Command == o.Command &&
		i.Dir == o.Dir &&
		slices.Equal(i.Args, o.Args)
}

// CapacityOrDefault returns the configured capacity or menu.DefaultCapacity.
func (f *File) CapacityOrDefault() int {
	if f.Capacity == nil {
		return menu.DefaultCapacity
	}
	return *f.Capacity
}

// Validate checks capacity and that every item has a title and a command.
func (f *File) Validate() error {
	if c := f.CapacityOrDefault(); c <= 0 {
		return fmt.Errorf("%w: %d, must be greater than zero", menu.ErrInvalidCapacity, c)
	}
	for i, it := range f.Items {
		if it.Title == "" {
			return fmt.Errorf("item %d: title is required", i)
		}
		if it.Command == "" {
			return fmt.Errorf("item %d (%s): command is required", i, it.Title)
		}
	}
	return nil
}

// Load reads and validates the item file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &f, nil
}

// LoadOrDefault loads path, or returns an empty File if it does not exist.
func LoadOrDefault(path string) (*File, error) {
	f, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &File{}, nil
	}
	return f, err
}

// Diff computes the changes that turn old into updated. Every title whose
// items changed is removed, then the updated items for those titles and for
// new titles are added back in file order.
func Diff(old, updated []Item) (removed []string, added []Item) {
	before := groupByTitle(old)
	after := groupByTitle(updated)

	changed := make(map[string]bool)
	seen := make(map[string]bool)
	for _, it := range old {
		if seen[it.Title] {
			continue
		}
		seen[it.Title] = true
		if !slices.EqualFunc(before[it.Title], after[it.Title], Item.Equal) {
			changed[it.Title] = true
			removed = append(removed, it.Title)
		}
	}

	for _, it := range updated {
		if _, existed := before[it.Title]; !existed || changed[it.Title] {
			added = append(added, it)
		}
	}

	return removed, added
}

func groupByTitle(items []Item) map[string][]Item {
	g := make(map[string][]Item, len(items))
	for _, it := range items {
		g[it.Title] = append(g[it.Title], it)
	}
	return g
}
