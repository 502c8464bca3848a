// Package sh provides the interactive chat shell.
package sh

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/vlc.go/pkg/framework"
	"github.com/robotalks/vlc.go/pkg/link"
)

// Shell provides ishell backed interactive shell.
// A line which is not a command is sent as a message.
type Shell struct {
	Interactive bool

	Shell   *ishell.Shell
	Session *Session

	ctx context.Context
}

const shellKey = "$shell"

var (
	evalOnly bool

	commands = []*ishell.Cmd{
		&SendCmd,
		&AutoCmd,
		&PendingCmd,
		&WhoCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// New creates a new shell.
func New(session *Session) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
		Session:     session,
		ctx:         context.Background(),
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(session.Prompt())
	s.Shell.NotFound(func(c *ishell.Context) {
		s.send(c, c.RawArgs)
	})
	s.Shell.Interrupt(func(c *ishell.Context, count int, input string) {
		if count >= 2 {
			c.Stop()
			return
		}
		c.Println("Input Ctrl-C once more to exit")
	})
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MessageDelivered implements chat.DeliveryHandler.
func (s *Shell) MessageDelivered(from, to *link.Endpoint, text string) {
	s.Shell.Printf("[%s] %s: %s\n", to.Addr, from.Addr, text)
}

func (s *Shell) send(c *ishell.Context, words []string) {
	if len(words) == 0 {
		return
	}
	if err := s.Session.Send(s.ctx, strings.Join(words, " ")); err != nil {
		c.Err(err)
	}
	c.SetPrompt(s.Session.Prompt())
}

// Run implements Runnable. Args are processed as a single command
// when present.
func (s *Shell) Run(ctx context.Context) error {
	s.ctx = ctx
	args := flag.Args()
	return fx.RunWithContextCloser(ctx, s, func() error {
		if len(args) > 0 {
			return s.Shell.Process(args...)
		}
		if !s.Interactive {
			return fmt.Errorf("command expected")
		}
		s.Shell.Run()
		return nil
	})
}

// Close implements io.Closer.
func (s *Shell) Close() error {
	s.Shell.Close()
	return nil
}

var (
	// SendCmd sends a message in the current direction.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT",
		Func: func(c *ishell.Context) {
			ShellFrom(c).send(c, c.Args)
		},
	}

	// AutoCmd exchanges greetings.
	AutoCmd = ishell.Cmd{
		Name: "auto",
		Help: "[ROUNDS]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			rounds := 1
			if len(c.Args) > 0 {
				n, err := strconv.Atoi(c.Args[0])
				if err != nil || n <= 0 {
					c.Err(fmt.Errorf("invalid rounds: %q", c.Args[0]))
					return
				}
				rounds = n
			}
			if err := s.Session.Auto(s.ctx, rounds); err != nil {
				c.Err(err)
			}
			c.SetPrompt(s.Session.Prompt())
		},
	}

	// PendingCmd shows the messages kept for resending.
	PendingCmd = ishell.Cmd{
		Name: "pending",
		Func: func(c *ishell.Context) {
			for _, line := range ShellFrom(c).Session.Pending() {
				c.Println(line)
			}
		},
	}

	// WhoCmd shows the direction of the next message.
	WhoCmd = ishell.Cmd{
		Name: "who",
		Func: func(c *ishell.Context) {
			from, to := ShellFrom(c).Session.Direction()
			c.Printf("%s -> %s\n", from.Addr, to.Addr)
		},
	}
)
