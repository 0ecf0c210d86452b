package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/no-svoboda/data"
	"github.com/jwebster45206/no-svoboda/internal/config"
	"github.com/jwebster45206/no-svoboda/internal/engine"
	"github.com/jwebster45206/no-svoboda/internal/intro"
	"github.com/jwebster45206/no-svoboda/internal/logger"
	"github.com/jwebster45206/no-svoboda/internal/menu"
	"github.com/jwebster45206/no-svoboda/internal/narrator"
	"github.com/jwebster45206/no-svoboda/internal/terminal"
	"github.com/jwebster45206/no-svoboda/pkg/actor"
	"github.com/jwebster45206/no-svoboda/pkg/state"
	"github.com/jwebster45206/no-svoboda/pkg/story"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return exitError
	}
	log := logger.Setup(cfg)

	s, err := story.Load(data.FS(), cfg.Story)
	if err != nil {
		logger.WithError(log, err).Error("Failed to load story", "story", cfg.Story)
		fmt.Fprintf(os.Stderr, "Failed to load story: %v\n", err)
		return exitError
	}

	kb, err := terminal.NewKeyboard(os.Stdin)
	if err != nil {
		if errors.Is(err, terminal.ErrNotTerminal) {
			fmt.Fprintln(os.Stderr, "No Svoboda needs an interactive terminal. Run it directly from a terminal, without piping input.")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to open the keyboard: %v\n", err)
		}
		return exitError
	}
	defer kb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			// A read may be blocked in raw mode; put the terminal back first.
			kb.Close()
			fmt.Fprintln(os.Stderr)
			os.Exit(exitInterrupted)
		case <-done:
		}
	}()

	cast, err := actor.NewCast(s.Characters)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build characters: %v\n", err)
		return exitError
	}

	width := cfg.Width
	if width == 0 {
		width = terminal.Width(os.Stdout, terminal.DefaultWidth)
	}
	n := narrator.New(os.Stdout, narrator.Options{Speed: cfg.TextSpeed, Width: width})
	n.SetCast(cast)

	var chooser engine.Chooser
	switch cfg.Menu {
	case config.MenuTea:
		chooser = menu.NewTeaSelector(os.Stdin, os.Stdout)
	default:
		chooser = menu.NewSelector(kb, os.Stdout, log)
	}

	ns := state.New()
	log = logger.WithSession(log, ns.ID.String())
	log.Info("Session started", "story", s.Name, "menu", cfg.Menu, "text_speed", cfg.TextSpeed, "width", width)

	if err := n.Clear(); err != nil {
		return fail(log, err)
	}
	picks, err := intro.New(os.Stdin, os.Stdout, n, s.Title).Run(ctx, cast)
	if err != nil {
		return fail(log, err)
	}
	log.Info("Characters chosen", "picks", picks)

	e := engine.New(s, cast, chooser, n, engine.Options{
		State:  ns,
		Rand:   newRand(cfg.Seed),
		Logger: log,
	})
	if err := e.Run(ctx); err != nil {
		return fail(log, err)
	}
	return exitOK
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed))
}

func fail(log *slog.Logger, err error) int {
	switch {
	case errors.Is(err, terminal.ErrInterrupted), errors.Is(err, context.Canceled):
		log.Info("Session interrupted")
		fmt.Fprintln(os.Stderr)
		return exitInterrupted
	case errors.Is(err, intro.ErrNoInput):
		fmt.Fprintln(os.Stderr, "\nInput closed before the game could start.")
		return exitError
	}
	logger.WithError(log, err).Error("Session failed")
	fmt.Fprintf(os.Stderr, "\nError: %v\n", err)
	return exitError
}
