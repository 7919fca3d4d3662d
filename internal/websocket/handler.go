package websocket

import (
	"interview-practice-be/pkg/interview"
)

// SessionSource reads the live session behind a socket.
type SessionSource interface {
	Snapshot(sessionID string) (interview.State, bool)
	// View calls fn with the current state while no change can be committed.
	View(sessionID string, fn func(interview.State)) bool
}

// ServeWs registers conn for sessionID, sends the current state and blocks
// until the socket closes.
func ServeWs(hub *Hub, conn Conn, sessionID string, src SessionSource) {
	client := &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		Snapshot: func() (interview.State, bool) {
			return src.Snapshot(sessionID)
		},
		registered: make(chan struct{}),
	}
	client.Hub.register <- client
	<-client.registered

	// Changes are delivered under the same lock, so every frame queued after
	// this one is newer.
	src.View(sessionID, func(state interview.State) {
		select {
		case client.Send <- encode(Message{Type: TypeState, Data: state}):
		default:
		}
	})

	go client.writePump()
	client.readPump()
}
