package bridge

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/thetafeed/theta-go/metrics"
)

// conn is one bridge client. A dedicated writer goroutine owns the socket
// write side; the reader only services pongs and close frames.
type conn struct {
	id      string
	ws      *websocket.Conn
	cfg     *Config
	log     zerolog.Logger
	metrics *metrics.WSCollector

	sendCh   chan []byte
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newConn(id string, ws *websocket.Conn, s *Server) *conn {
	return &conn{
		id:      id,
		ws:      ws,
		cfg:     s.cfg,
		log:     s.log.With().Str("client", id).Logger(),
		metrics: s.metrics,
		sendCh:  make(chan []byte, s.cfg.SendBuffer),
		stopCh:  make(chan struct{}),
	}
}

// send queues one marshaled event. It reports false when the client's
// queue is full; the server disconnects such clients.
func (c *conn) send(msg []byte) bool {
	select {
	case <-c.stopCh:
		return true
	default:
	}
	select {
	case c.sendCh <- msg:
		return true
	default:
		return false
	}
}

// stop asks the writer to shut the connection down. Safe to call from any
// goroutine, more than once.
func (c *conn) stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

// writeLoop owns the socket: queued events, periodic pings, and the close
// handshake. onExit runs exactly once, after the socket is closed.
func (c *conn) writeLoop(onExit func(*conn)) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
		onExit(c)
	}()

	for {
		select {
		case <-c.stopCh:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.sendCh:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				if c.metrics != nil {
					c.metrics.RecordError()
				}
				c.log.Debug().Err(err).Msg("bridge client write failed")
				return
			}
			if c.metrics != nil {
				c.metrics.RecordMessageSent(len(msg))
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop consumes the client's inbound frames. The bridge is
// publish-only, so client data frames are discarded; the loop exists to
// run the pong handler and notice disconnects.
func (c *conn) readLoop() {
	defer c.stop()

	c.ws.SetReadLimit(512)
	c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}
