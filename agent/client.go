package agent

import (
	"bytes"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// Clients only send control frames.
	maxMessageSize = 512
	// maxFrameSize caps a batched frame at half the client's read limit.
	maxFrameSize = 32 * 1024
)

var newline = []byte{'\n'}

// client is one websocket subscriber.
type client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	remote string
}

// readPump discards client messages and keeps the read deadline alive on
// pongs. It unregisters the client when the connection fails.
func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed", "remote", c.remote, "error", err)
			}
			return
		}
	}
}

// writePump sends queued snapshots, batching whatever is already queued into
// newline-separated frames of at most maxFrameSize, and pings on pingPeriod.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			for _, frame := range batchFrames(msg, c.send, maxFrameSize) {
				if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// batchFrames joins first and the messages already queued on queue into
// newline-separated frames no longer than limit. A message that alone
// exceeds limit gets a frame of its own.
func batchFrames(first []byte, queue <-chan []byte, limit int) [][]byte {
	var frames [][]byte
	var frame bytes.Buffer
	frame.Write(first)
	for n := len(queue); n > 0; n-- {
		next, ok := <-queue
		if !ok {
			break
		}
		if frame.Len()+len(newline)+len(next) > limit {
			frames = append(frames, bytes.Clone(frame.Bytes()))
			frame.Reset()
			frame.Write(next)
			continue
		}
		frame.Write(newline)
		frame.Write(next)
	}
	return append(frames, frame.Bytes())
}
