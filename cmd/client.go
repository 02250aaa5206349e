package cmd

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/sirupsen/logrus"

	g "github.com/Johan-su/terminal-minesweeper/pkg"
)

// Client plays a session hosted by Srv. It satisfies Session, so the same
// terminal UI drives local and remote games.
type Client struct {
	serverAddr string
	conn       net.Conn
	snap       g.Snapshot

	log logrus.FieldLogger
}

func NewClient(serverAddr string, log logrus.FieldLogger) *Client {
	return &Client{
		serverAddr: serverAddr,
		log:        log,
	}
}

// Connect dials the server and fetches the first frame.
func (c *Client) Connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	conn, br, _, err := ws.DefaultDialer.Dial(ctx, c.serverAddr)
	if err != nil {
		return fmt.Errorf("can't connect to the server: %w", err)
	}
	if br != nil {
		// the server only speaks after hello, nothing is buffered yet
		ws.PutReader(br)
	}
	c.conn = conn
	c.log.WithField("server", c.serverAddr).Info("connected")

	if err := wsutil.WriteClientMessage(c.conn, ws.OpText, nil); err != nil {
		return fmt.Errorf("can't send hello: %w", err)
	}
	_, err = c.receive()
	return err
}

func (c *Client) receive() (*g.Reply, error) {
	msg, _, err := wsutil.ReadServerData(c.conn)
	if err != nil {
		return nil, fmt.Errorf("can't receive data: %w", err)
	}
	r, err := g.NewReplyFromBytes(msg)
	if err != nil {
		return nil, err
	}
	c.snap = r.Snapshot
	return r, nil
}

func (c *Client) Apply(cmd g.Command) (g.Result, error) {
	if c.conn == nil {
		return g.Result{}, fmt.Errorf("not connected to %s", c.serverAddr)
	}
	bs, err := g.NewEvent(cmd).Bytes()
	if err != nil {
		return g.Result{}, err
	}
	if err := wsutil.WriteClientMessage(c.conn, ws.OpBinary, bs); err != nil {
		return g.Result{}, fmt.Errorf("can't send: %w", err)
	}

	r, err := c.receive()
	if err != nil {
		return g.Result{}, err
	}
	if r.Result.Effect == g.EffectInvalid {
		detail := strings.TrimPrefix(r.Err, g.ErrInvalidCommand.Error()+": ")
		return r.Result, fmt.Errorf("%w: %s", g.ErrInvalidCommand, detail)
	}
	if r.Result.Effect == g.EffectQuit {
		_ = c.Close()
	}
	return r.Result, nil
}

func (c *Client) Snapshot() g.Snapshot {
	return c.snap
}

func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
