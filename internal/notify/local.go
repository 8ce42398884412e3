package notify

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// BellSink is the audible alert: it rings the terminal bell and prints the
// alert on one line.
type BellSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBellSink(w io.Writer) *BellSink {
	return &BellSink{w: w}
}

func (s *BellSink) Name() string {
	return "sound"
}

func (s *BellSink) Send(_ context.Context, alert Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "\a%s | %s\n", alert.Title(), alert.Route())
	return err
}

// CommandSink raises an OS notification by running an external command such
// as notify-send or terminal-notifier with the title and body appended.
type CommandSink struct {
	name string
	args []string
}

func NewCommandSink(command []string) *CommandSink {
	if len(command) == 0 {
		return nil
	}
	return &CommandSink{name: command[0], args: command[1:]}
}

func (s *CommandSink) Name() string {
	return "os-notification"
}

func (s *CommandSink) Send(ctx context.Context, alert Alert) error {
	args := append(append([]string(nil), s.args...), "🚀 High ROI Opportunity!", alert.Title())
	out, err := exec.CommandContext(ctx, s.name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("os-notification: %s: %w: %s", s.name, err, out)
	}
	return nil
}
