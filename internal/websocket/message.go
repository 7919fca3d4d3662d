package websocket

import (
	"encoding/json"
)

const (
	TypeState  = "state"
	TypeSpeech = "speech"
	TypeTick   = "tick"
)

// Message is the frame pushed to a session's views.
type Message struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Elapsed *int        `json:"elapsed,omitempty"`
	Display string      `json:"display,omitempty"`
}

func encode(msg Message) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		data, _ = json.Marshal(Message{Type: msg.Type})
	}
	return data
}
