package muc

import "github.com/avolkov/mucbridge/internal/stanza"

// ClientError reports a local precondition violation. It is detected
// before any network activity and never produces an outgoing stanza.
type ClientError struct {
	Type        string `json:"type"`
	Condition   string `json:"condition"`
	Description string `json:"description"`
	Request     any    `json:"request"`
}

func (e *ClientError) Error() string {
	return e.Description
}

func clientError(description string, request any) *ClientError {
	return &ClientError{
		Type:        "modify",
		Condition:   "client-error",
		Description: description,
		Request:     request,
	}
}

// StanzaError is a peer-reported failure lifted from an inbound error
// stanza's error child.
type StanzaError struct {
	Type      string `json:"type"`
	Condition string `json:"condition"`
}

func (e *StanzaError) Error() string {
	return e.Type + "/" + e.Condition
}

func parseStanzaError(el *stanza.Error) *StanzaError {
	if el == nil {
		return &StanzaError{}
	}
	return &StanzaError{
		Type:      el.Type,
		Condition: el.Condition().Local,
	}
}
