package signal

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump feeds inbound frames to the orchestrator. When the read side
// dies for any reason, the connection is purged from every room.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, sid string, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", sid).Msg("readPump closing")
		ctl.Orch.OnDisconnect(c)
		ctl.limiter.Forget(sid)
		c.Close()
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "signal").Str("sid", sid).Msg("readPump read error")
				return
			}
			if !ctl.limiter.Allow(sid) {
				log.Warn().Str("module", "signal").Str("sid", sid).Msg("rate limit exceeded, frame dropped")
				continue
			}
			ctl.Orch.HandleMessage(c, data)
		}
	}
}
