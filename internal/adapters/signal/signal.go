// Package signal adapts the websocket transport to the orchestrator:
// upgrade, framing, pumps and per-connection flood control live here.
// The engine only ever sees the core.Conn capability.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"spyfall/internal/app"
	"spyfall/internal/config"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Orch      *app.Orchestrator
	limiter   *MessageRateLimiter
	readLimit int64
}

func NewController(orch *app.Orchestrator, cfg *config.Config) *Controller {
	return &Controller{
		Orch:      orch,
		limiter:   NewMessageRateLimiter(cfg.MessageRateLimit, cfg.MessageRateWindow),
		readLimit: cfg.ReadLimit,
	}
}

// wsConn wraps one gorilla connection behind a buffered send channel so
// the engine's fan-out never blocks on a slow reader.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the request and starts the pump pair. One connection
// per player, held open for the session's lifetime.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	sid := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("sid", sid).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.readLimit)

	conn := &wsConn{
		conn: ws,
		send: make(chan []byte, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}
