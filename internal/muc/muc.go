// Package muc turns client intents into Multi-User Chat protocol stanzas
// and classifies inbound room traffic into semantic events.
//
// Each connected client owns one Bridge bound to one XMPP session. The
// Bridge validates requests, builds and sends stanzas, tracks which
// correlation ids are its own to answer, and keeps the set of rooms the
// session has joined.
package muc

import (
	"github.com/rs/zerolog"

	"github.com/avolkov/mucbridge/internal/session"
)

// Emitter delivers unsolicited semantic events to the client transport.
type Emitter interface {
	Emit(event string, payload any)
}

// Callback delivers the outcome of a correlated request: a protocol or
// client error, or a success result. Invoked exactly once.
type Callback func(err error, result any)

// Bridge is the command dispatcher: one per client session, no shared
// state across sessions.
type Bridge struct {
	session session.Sender
	emitter Emitter
	rooms   roomSet
	log     *zerolog.Logger
}

// New builds a Bridge bound to the given session and client transport.
func New(sess session.Sender, emitter Emitter, logger *zerolog.Logger) *Bridge {
	return &Bridge{
		session: sess,
		emitter: emitter,
		rooms:   make(roomSet),
		log:     logger,
	}
}

// emitClientError reports a precondition failure on the dedicated
// client-error channel without sending anything.
func (b *Bridge) emitClientError(description string, request any) {
	b.emitter.Emit(EventClientError, clientError(description, request))
}

func (b *Bridge) send(st any) {
	if err := b.session.Send(st); err != nil {
		b.log.Warn().Err(err).Msg("send stanza")
	}
}
