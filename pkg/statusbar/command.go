package statusbar

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Command is an action that runs a local program. The target, when it is a
// non-empty string, is used as the working directory.
type Command struct {
	Name string
	Args []string
}

// Invoke runs the command and waits for it to exit.
func (c Command) Invoke(ctx context.Context, target any) error {
	if c.Name == "" {
		return fmt.Errorf("%w: empty command", ErrUnsupportedAction)
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if dir, ok := target.(string); ok && dir != "" {
		cmd.Dir = dir
	}

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("running %s: %w: %s", c, err, strings.TrimSpace(string(out)))
	}

	slog.Debug("command completed", "command", c.String(), "output_bytes", len(out))
	return nil
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}
