// Package terminal is a line-oriented front end for the chat widget.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ergochat/readline"
	"golang.org/x/term"

	"github.com/interlux/shopchat/pkg/formatter"
	"github.com/interlux/shopchat/pkg/logger"
	"github.com/interlux/shopchat/pkg/orders"
	"github.com/interlux/shopchat/pkg/transport"
	"github.com/interlux/shopchat/pkg/widget"
)

const helpText = `Commands:
  /orders   reload and show your orders
  /whoami   show the user id issued by the shop
  /help     show this help
  /quit     leave the chat`

type Options struct {
	Prompt      string
	HistoryFile string
}

// ConsoleView prints bot replies and orders. User input is not echoed back
// since the terminal already shows it.
type ConsoleView struct {
	out  io.Writer
	echo bool
	mu   sync.Mutex
}

func NewConsoleView(out io.Writer) *ConsoleView {
	return &ConsoleView{out: out}
}

func (v *ConsoleView) Append(m widget.Message) {
	if m.Pending {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if m.Role == transport.RoleUser {
		if v.echo {
			fmt.Fprintf(v.out, "> %s\n", m.Content)
		}
		return
	}
	fmt.Fprintf(v.out, "%s\n\n", formatter.FormatText(m.Content))
}

func (v *ConsoleView) Remove(int) {}

func (v *ConsoleView) ShowOrders(list []transport.Order) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, "Your orders:")
	if err := orders.WriteTable(v.out, list); err != nil {
		logger.WarnCF("terminal", "Could not print orders", map[string]interface{}{"error": err.Error()})
	}
	fmt.Fprintln(v.out)
}

func (v *ConsoleView) setEcho(on bool) {
	v.mu.Lock()
	v.echo = on
	v.mu.Unlock()
}

type lineReader interface {
	ReadLine() (string, error)
	Close() error
}

type scanReader struct {
	scanner *bufio.Scanner
}

func (s *scanReader) ReadLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

func (s *scanReader) Close() error { return nil }

// IsInteractive reports whether in is a terminal.
func IsInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newLineReader(in io.Reader, opts Options) (lineReader, bool, error) {
	if !IsInteractive(in) {
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 64*1024), 1<<20)
		return &scanReader{scanner: sc}, false, nil
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          opts.Prompt,
		HistoryFile:     opts.HistoryFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "/quit",
	})
	if err != nil {
		return nil, false, fmt.Errorf("init readline: %w", err)
	}
	return rl, true, nil
}

// Run reads lines from in until EOF, /quit or ctx is done, sending each one
// through ctrl.
func Run(ctx context.Context, ctrl *widget.Controller, view *ConsoleView, in io.Reader, out io.Writer, opts Options) error {
	reader, interactive, err := newLineReader(in, opts)
	if err != nil {
		return err
	}
	defer reader.Close()

	if view != nil {
		view.setEcho(!interactive)
	}
	if interactive {
		fmt.Fprintln(out, "Type a message, or /help for commands.")
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := reader.ReadLine()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, ctrl, out, line); quit {
				return nil
			}
			continue
		}

		if err := ctrl.Send(ctx, line); err != nil {
			logger.DebugCF("terminal", "Send failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

func runCommand(ctx context.Context, ctrl *widget.Controller, out io.Writer, line string) bool {
	switch strings.Fields(line)[0] {
	case "/quit", "/exit":
		return true
	case "/whoami":
		if id := ctrl.UserID(); id != "" {
			fmt.Fprintf(out, "user id: %s\n", id)
		} else {
			fmt.Fprintln(out, "no user id yet; send a message first")
		}
	case "/orders":
		if !ctrl.RefreshOrders(ctx) {
			fmt.Fprintln(out, "no orders to show")
		}
	case "/help":
		fmt.Fprintln(out, helpText)
	default:
		fmt.Fprintf(out, "unknown command %s (try /help)\n", line)
	}
	return false
}
