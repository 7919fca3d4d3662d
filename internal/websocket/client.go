package websocket

import (
	"time"

	"github.com/gofiber/websocket/v2"

	"interview-practice-be/pkg/interview"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	tickPeriod     = time.Second
)

// Conn is the part of a websocket connection the pumps use.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	Hub       *Hub
	Conn      Conn
	SessionID string

	// Send is buffered outbound frames. Only the hub closes it.
	Send chan []byte

	// Snapshot reads the session for elapsed-time ticks; nil disables ticks.
	Snapshot func() (interview.State, bool)
	Now      func() time.Time

	// registered is closed by the hub once the client receives deliveries.
	registered chan struct{}
}

// readPump only drains control frames; views act through HTTP.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("Client", "Unexpected close", map[string]interface{}{"session_id": c.SessionID, "error": err.Error()})
			}
			return
		}
	}
}

// writePump owns all writes. The elapsed ticker lives here so it stops when
// the socket goes away.
func (c *Client) writePump() {
	ping := time.NewTicker(pingPeriod)
	tick := time.NewTicker(tickPeriod)
	defer func() {
		ping.Stop()
		tick.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-tick.C:
			frame, ok := c.tickFrame()
			if !ok {
				continue
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ping.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// tickFrame reports elapsed time only while the interview is running.
func (c *Client) tickFrame() ([]byte, bool) {
	if c.Snapshot == nil {
		return nil, false
	}
	state, ok := c.Snapshot()
	if !ok || state.Stage != interview.StageInterviewing {
		return nil, false
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	elapsed := state.Elapsed(now())
	return encode(Message{Type: TypeTick, Elapsed: &elapsed, Display: interview.FormatElapsed(elapsed)}), true
}
