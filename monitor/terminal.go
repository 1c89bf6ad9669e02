package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// stdio joins stdin and stdout into the ReadWriter term.Terminal expects.
type stdio struct {
	io.Reader
	io.Writer
}

// RunInteractive runs the monitor on the process's standard streams. When
// stdin is a terminal it is put in raw mode and read through a
// line-editing terminal with history; otherwise commands are read line by
// line.
func RunInteractive(ctx context.Context, newMonitor func(out io.Writer) *Monitor) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return newMonitor(os.Stdout).Run(ctx, os.Stdin)
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	t := term.NewTerminal(stdio{Reader: os.Stdin, Writer: os.Stdout}, Prompt)
	if width, height, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(width, height)
	}

	m := newMonitor(t)
	for {
		line, err := t.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := m.Execute(ctx, line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
}
