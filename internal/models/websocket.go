package models

// ClientMessage is what the chat front end sends over the WebSocket.
// Type is "utterance" for typed text or "listen" to trigger one microphone
// capture on the server.
type ClientMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// ServerMessage is a single transcript line pushed to the chat front end
type ServerMessage struct {
	Type      string `json:"type"` // connected, transcript, busy, error, exit
	Speaker   string `json:"speaker,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}
