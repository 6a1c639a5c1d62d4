package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mchmarny/ibar/pkg/menu"
)

func writeFile(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad(t *testing.T) {
	p := writeFile(t, t.TempDir(), `
title: Tools
capacity: 2
more_title: Others
items:
  - title: Terminal
    command: open
    args: ["-a", "Terminal"]
  - title: Notes
    command: open
    args: ["-a", "Notes"]
    dir: /tmp
`)

	f, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "Tools", f.Title)
	require.Equal(t, 2, f.CapacityOrDefault())
	require.Equal(t, "Others", f.MoreTitle)
	require.Len(t, f.Items, 2)
	require.Equal(t, []string{"-a", "Notes"}, f.Items[1].Args)
	require.Equal(t, "/tmp", f.Items[1].Dir)
}

func TestLoadDefaultsCapacity(t *testing.T) {
	f, err := Load(writeFile(t, t.TempDir(), "items: []\n"))
	require.NoError(t, err)
	require.Equal(t, menu.DefaultCapacity, f.CapacityOrDefault())
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "capacity: 0\n"))
	require.ErrorIs(t, err, menu.ErrInvalidCapacity)

	_, err = Load(writeFile(t, dir, "items:\n  - title: x\n"))
	require.ErrorContains(t, err, "command is required")

	_, err = Load(writeFile(t, dir, "items: [\n"))
	require.ErrorContains(t, err, "failed to parse YAML")
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	f, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Empty(t, f.Items)
	require.Equal(t, menu.DefaultCapacity, f.CapacityOrDefault())
}

func TestDiff(t *testing.T) {
	a := Item{Title: "A", Command: "a"}
	b := Item{Title: "B", Command: "b"}
	b2 := Item{Title: "B", Command: "b", Args: []string{"-v"}}
	c := Item{Title: "C", Command: "c"}

	removed, added := Diff([]Item{a, b}, []Item{a, b})
	require.Empty(t, removed)
	require.Empty(t, added)

	removed, added = Diff([]Item{a, b}, []Item{a, b2, c})
	require.Equal(t, []string{"B"}, removed)
	require.Equal(t, []Item{b2, c}, added)

	removed, added = Diff([]Item{a, b, b}, []Item{b})
	require.Equal(t, []string{"A", "B"}, removed)
	require.Equal(t, []Item{b}, added)

	removed, added = Diff(nil, []Item{a})
	require.Empty(t, removed)
	require.Equal(t, []Item{a}, added)
}
