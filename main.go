package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/Johan-su/terminal-minesweeper/cmd"
	g "github.com/Johan-su/terminal-minesweeper/pkg"
)

func newLogger(level string, dbg bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if dbg {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
	return log
}

// play runs the terminal UI on s. Logs go to the in-memory buffer while the
// UI is up and back to stderr afterwards.
func play(s cmd.Session, logs g.Logger, log *logrus.Logger, dbg bool, opts ...tea.ProgramOption) error {
	log.SetOutput(logs)
	defer log.SetOutput(os.Stderr)

	p := tea.NewProgram(cmd.NewPlayModel(s, logs, log, dbg), opts...)
	m, err := p.Run()
	if err != nil {
		return fmt.Errorf("ui failed: %w", err)
	}
	if pm, ok := m.(cmd.PlayModel); ok && pm.Err() != nil {
		return fmt.Errorf("session ended: %w", pm.Err())
	}
	return nil
}

func main() {
	mode := flag.String("mode", "play", "play|server|client")
	addr := flag.String("addr", ":8080", "server listen address")
	url := flag.String("url", "ws://127.0.0.1:8080/", "server url for client mode")
	dbg := flag.Bool("debug", false, "show debug widgets and logs")
	levelStr := flag.String("log-level", "info", "debug|info|warn|error")
	flag.Parse()

	log := newLogger(*levelStr, *dbg)

	switch *mode {
	case "server":
		log.SetOutput(os.Stderr)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := cmd.NewServer(*addr, log).Run(ctx); err != nil {
			log.WithError(err).Fatal("server error")
		}

	case "client":
		logs := g.NewLogger(200)
		c := cmd.NewClient(*url, log)
		if err := c.Connect(context.Background()); err != nil {
			log.WithError(err).Fatal("can't start client")
		}
		err := play(c, logs, log, *dbg)
		_ = c.Close()
		if err != nil {
			log.WithError(err).Fatal("client stopped")
		}

	default:
		logs := g.NewLogger(200)
		game, err := g.NewDefault(g.WithLogger(log))
		if err != nil {
			log.WithError(err).Fatal("can't create game")
		}
		if err := play(game, logs, log, *dbg); err != nil {
			log.WithError(err).Fatal("game stopped")
		}
	}
}
