package proto

import "encoding/json"

// ProtocolVersion for the websocket envelope format.
const ProtocolVersion = 1

// Envelope type tags.
const (
	InboundTypeHello   = "hello"
	InboundTypeCommand = "command"

	OutboundTypeEvent  = "event"
	OutboundTypeResult = "result"
	OutboundTypeError  = "error"
)

// Inbound is the envelope for frames coming from the client. Command
// names use the xmpp.muc.* vocabulary; ID, when present, requests a
// correlated result envelope once the command's callback resolves.
type Inbound struct {
	Type    string          `json:"type"`
	Command string          `json:"command,omitempty"`
	ID      string          `json:"id,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// HelloData introduces the client and carries its auth token.
type HelloData struct {
	Token    string `json:"token,omitempty"`
	Protocol int    `json:"protocol,omitempty"`
}

// Outbound is the envelope for frames sent to the client. Events carry
// the event name and payload; results echo the inbound ID and carry
// either an error or a result value.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error any    `json:"error,omitempty"`
}

// Error describes a transport-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// Transport error codes.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeUnauthorized   = "unauthorized"
	ErrCodeUnknownCommand = "unknown_command"
)
