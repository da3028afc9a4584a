package ws

import (
	"github.com/avolkov/mucbridge/internal/proto"
)

// client is one connected websocket peer. Its outbound channel is drained
// by the write loop; Emit satisfies muc.Emitter.
type client struct {
	id   string
	user string
	nick string
	out  chan proto.Outbound
}

func newClient(id, user, nick string) *client {
	return &client{
		id:   id,
		user: user,
		nick: nick,
		out:  make(chan proto.Outbound, 32),
	}
}

// Emit queues a semantic event for the client. A peer that stops reading
// loses events rather than wedging the session read loop.
func (c *client) Emit(event string, payload any) {
	select {
	case c.out <- proto.Outbound{Type: proto.OutboundTypeEvent, Event: event, Data: payload}:
	default:
	}
}

// result queues the resolution of a correlated command.
func (c *client) result(id string, err error, result any) {
	env := proto.Outbound{Type: proto.OutboundTypeResult, ID: id}
	if err != nil {
		env.Error = err
	} else {
		env.Data = result
	}
	select {
	case c.out <- env:
	default:
	}
}

// transportError queues a transport-level error frame.
func (c *client) transportError(perr *proto.Error) {
	select {
	case c.out <- proto.Outbound{Type: proto.OutboundTypeError, Error: perr}:
	default:
	}
}
