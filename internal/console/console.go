// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package console reads keyboard commands from the terminal and forwards them to the
// tracker.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/wneessen/iss-tracker/internal/logger"
)

const escape = "\x1b"

const (
	keyInterrupt = 0x03
	keyEOT       = 0x04
	keyBackspace = 0x08
	keyEscape    = 0x1b
	keyDelete    = 0x7f
)

// ErrUnknownCommand is returned for input that is not a known command.
var ErrUnknownCommand = errors.New("unknown command")

// Controller is what console commands act on.
type Controller interface {
	ChangeMap(name string) error
	CycleMap()
	ChangeInterval(interval time.Duration) error
	Quit()
}

type Console struct {
	log  *logger.Logger
	ctrl Controller
}

func New(log *logger.Logger, ctrl Controller) (*Console, error) {
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if ctrl == nil {
		return nil, errors.New("controller is required")
	}
	return &Console{log: log, ctrl: ctrl}, nil
}

// Run reads commands until the input ends, a quit command is read or ctx is canceled.
// If input is a terminal it is switched to raw mode for the duration of Run, so a single
// Escape key press quits without waiting for Enter.
func (c *Console) Run(ctx context.Context, input io.Reader) error {
	if f, ok := input.(interface{ Fd() uintptr }); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("failed to switch terminal to raw mode: %w", err)
		}
		defer func() {
			if err := term.Restore(fd, state); err != nil {
				c.log.Error("failed to restore terminal state", logger.Err(err))
			}
		}()
	}

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(input)
		scanner.Split(scanCommands)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					if err != nil {
						return fmt.Errorf("failed to read console input: %w", err)
					}
				default:
				}
				return nil
			}
			quit, err := c.Execute(line)
			if err != nil {
				c.log.Warn("console command failed", logger.Err(err), slog.String("command", line))
			}
			if quit {
				return nil
			}
		}
	}
}

// Execute runs a single command line. It reports whether the command requested to quit.
func (c *Console) Execute(line string) (bool, error) {
	if strings.Contains(line, escape) {
		c.ctrl.Quit()
		return true, nil
	}
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "q", "quit", "exit":
		c.ctrl.Quit()
		return true, nil
	case "m", "map":
		if arg == "" {
			c.ctrl.CycleMap()
			return false, nil
		}
		return false, c.ctrl.ChangeMap(arg)
	case "i", "interval":
		seconds, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf("invalid interval %q: %w", arg, err)
		}
		return false, c.ctrl.ChangeInterval(time.Duration(seconds) * time.Second)
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

// scanCommands is a bufio.SplitFunc for raw and cooked terminal input. Commands end with
// CR or LF. Escape, Ctrl-C and Ctrl-D are returned as an escape token as soon as they are
// read and discard the pending command.
func scanCommands(data []byte, atEOF bool) (int, []byte, error) {
	for i, b := range data {
		switch b {
		case '\r', '\n':
			return i + 1, erase(data[:i]), nil
		case keyEscape, keyInterrupt, keyEOT:
			return i + 1, []byte(escape), nil
		}
	}
	if atEOF && len(data) > 0 {
		return len(data), erase(data), nil
	}
	return 0, nil, nil
}

// erase applies backspace and delete keys to a command line.
func erase(line []byte) []byte {
	out := make([]byte, 0, len(line))
	for _, b := range line {
		if b == keyBackspace || b == keyDelete {
			_, size := utf8.DecodeLastRune(out)
			out = out[:len(out)-size]
			continue
		}
		out = append(out, b)
	}
	return out
}
