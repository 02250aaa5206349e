package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/sirupsen/logrus"

	g "github.com/Johan-su/terminal-minesweeper/pkg"
)

// Srv hosts one independent game per websocket connection.
type Srv struct {
	addr       string
	newSession func(log logrus.FieldLogger) (*g.Game, error)
	log        logrus.FieldLogger

	mu       sync.Mutex
	sessions map[string]*g.Game
}

func NewServer(addr string, log logrus.FieldLogger) *Srv {
	return &Srv{
		addr: addr,
		newSession: func(log logrus.FieldLogger) (*g.Game, error) {
			return g.NewDefault(g.WithLogger(log))
		},
		log:      log,
		sessions: make(map[string]*g.Game),
	}
}

// Online is the number of connected sessions.
func (s *Srv) Online() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Srv) connectClient(addr string) (*g.Game, error) {
	game, err := s.newSession(s.log.WithField("client", addr))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[addr] = game
	return game, nil
}

func (s *Srv) disconnectClient(addr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, addr)
}

// Handler upgrades every request to a websocket and serves a fresh session
// on it.
func (s *Srv) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			s.log.WithError(err).Warn("can't upgrade connection")
			return
		}

		addr := conn.RemoteAddr().String()
		s.log.WithField("client", addr).Info("client connected")

		go func() {
			defer func() { _ = conn.Close() }()
			if err := s.serve(conn, addr); err != nil {
				s.log.WithError(err).WithField("client", addr).Info("client disconnected")
			} else {
				s.log.WithField("client", addr).Info("client quit")
			}
		}()
	})
}

func (s *Srv) serve(conn net.Conn, addr string) error {
	game, err := s.connectClient(addr)
	if err != nil {
		return err
	}
	defer s.disconnectClient(addr)

	for {
		msg, op, err := wsutil.ReadClientData(conn)
		if err != nil {
			return fmt.Errorf("can't receive data: %w", err)
		}

		reply := g.Reply{Result: g.Result{Accepted: true}}
		switch op {
		case ws.OpText:
			// hello, answered with the current frame
		case ws.OpBinary:
			e, err := g.NewEventFromBytes(msg)
			if err != nil {
				return err
			}
			reply.Result, err = game.Apply(e.Command)
			if err != nil {
				reply.Err = err.Error()
			}
			s.log.WithFields(logrus.Fields{
				"client":   addr,
				"command":  e.Command.String(),
				"accepted": reply.Result.Accepted,
				"effect":   reply.Result.Effect.String(),
			}).Debug("command applied")
		default:
			continue
		}

		reply.Snapshot = game.Snapshot()
		bs, err := reply.Bytes()
		if err != nil {
			return err
		}
		if err := wsutil.WriteServerMessage(conn, ws.OpBinary, bs); err != nil {
			return fmt.Errorf("can't send data: %w", err)
		}
		if reply.Result.Effect == g.EffectQuit {
			return nil
		}
	}
}

// Run serves until ctx is done.
func (s *Srv) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.WithField("addr", s.addr).Info("server started, waiting for players")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
