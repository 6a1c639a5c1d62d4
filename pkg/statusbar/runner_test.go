package statusbar

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mchmarny/ibar/pkg/config"
	"github.com/mchmarny/ibar/pkg/server"
)

func TestApply(t *testing.T) {
	m := newManager(t, 5)
	old := []config.Item{
		{Title: "A", Command: "a"},
		{Title: "B", Command: "b"},
		{Title: "C", Command: "c"},
	}
	m.Register(old)
	m.AddItem("manual", nil, nil)

	updated := []config.Item{
		{Title: "A", Command: "a"},
		{Title: "C", Command: "c2"},
		{Title: "D", Command: "d"},
	}
	m.Apply(old, updated)

	require.Equal(t, []string{"A", "manual", "C", "D"}, rowTitles(m.Snapshot().Items))
	primary, _ := m.Layout()
	require.Equal(t, Command{Name: "c2"}, primary[2].Action)
}

func TestRunServesAndAppliesReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("items: []\n"), 0o644))

	m := newManager(t, 2)
	w := config.NewWatcher(path, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- m.Run(ctx, w, nil, server.WithPort(0)) }()

	time.Sleep(150 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - title: A\n    command: a\n"), 0o644))

	require.Eventually(t, func() bool {
		items := m.Snapshot().Items
		return len(items) == 1 && items[0].Title == "A"
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestRunFailsWhenPortTaken(t *testing.T) {
	first := server.New(server.WithPort(0), server.WithSimpleHealth())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = first.Serve(ctx) }()
	require.Eventually(t, first.IsRunning, 2*time.Second, 10*time.Millisecond)

	_, p, err := net.SplitHostPort(first.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(p)
	require.NoError(t, err)

	m := newManager(t, 1)
	require.Error(t, m.Run(context.Background(), nil, nil, server.WithPort(port)))
}

func TestUnappliedChanges(t *testing.T) {
	two, five := 2, 5
	old := &config.File{Title: "Tools", MoreTitle: "More...", Items: []config.Item{{Title: "A", Command: "a"}}}

	require.Empty(t, unappliedChanges(old, &config.File{Title: "Tools", MoreTitle: "More...", Capacity: &five}))
	require.Equal(t, []string{"capacity", "title", "more_title"},
		unappliedChanges(old, &config.File{Title: "Apps", MoreTitle: "Other", Capacity: &two}))
}

func TestRunKeepsServingWhenItemDirMissing(t *testing.T) {
	m := newManager(t, 1)
	w := config.NewWatcher(filepath.Join(t.TempDir(), "missing", config.DefaultFileName), 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, w, nil, server.WithPort(0)) }()

	select {
	case err := <-done:
		t.Fatalf("run stopped early: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}
