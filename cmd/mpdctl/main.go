// Command mpdctl is an interactive shell over the client, handy for
// exercising a server by hand.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/genricoloni/mpdbar/internal/client"
	"github.com/genricoloni/mpdbar/internal/config"
	"github.com/genricoloni/mpdbar/internal/discovery"
	"github.com/genricoloni/mpdbar/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	names := commandNames()
	sort.Strings(names)
	items := make([]readline.PrefixCompleterInterface, len(names))
	for i, name := range names {
		items[i] = readline.PcItem(name)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "mpd> ",
		AutoComplete: readline.NewPrefixCompleter(items...),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	cfg := config.NewAppConfig(logger)
	c := client.NewClient(logger, cfg)
	sh := &shell{client: c, browser: discovery.NewBrowser(logger), out: rl.Stdout()}

	events, unsubscribe := c.Subscribe()
	defer unsubscribe()
	go printEvents(rl.Stdout(), c, events)

	if err := c.Connect(ctx); err != nil {
		fmt.Fprintf(rl.Stdout(), "connect: %v\n", err)
	}
	defer func() { _ = c.Disconnect(context.Background()) }()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			// io.EOF on ctrl-d
			return nil
		}
		if err := sh.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(rl.Stdout(), "error: %v\n", err)
		}
	}
}

// newLogger writes warnings and above to stderr so log lines do not bury
// the prompt
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func printEvents(w io.Writer, c *client.Client, events <-chan domain.Event) {
	for e := range events {
		switch e {
		case domain.EventConnected:
			fmt.Fprintf(w, "* connected to %s\n", c.Address())
		case domain.EventDisconnected:
			if err := c.LastDisconnectError(); err != nil {
				fmt.Fprintf(w, "* disconnected: %v\n", err)
			} else {
				fmt.Fprintln(w, "* disconnected")
			}
		case domain.EventTrackChanged:
			fmt.Fprintf(w, "* now: %s\n", formatTrack(c.CurrentTrack()))
		case domain.EventOptionsRefreshed:
			o := c.Options()
			fmt.Fprintf(w, "* modes: %s\n", strings.Join(modes(o), " "))
		}
	}
}

func modes(o domain.Options) []string {
	var out []string
	for _, m := range []struct {
		name string
		on   bool
	}{{"consume", o.Consume}, {"random", o.Random}, {"repeat", o.Repeat}, {"single", o.Single}} {
		if m.on {
			out = append(out, m.name)
		}
	}
	if len(out) == 0 {
		out = append(out, "none")
	}
	return out
}
