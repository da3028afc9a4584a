package muc

import (
	"github.com/avolkov/mucbridge/internal/form"
	"github.com/avolkov/mucbridge/internal/stanza"
	"github.com/avolkov/mucbridge/internal/utils"
	"github.com/avolkov/mucbridge/internal/xhtml"
)

// JoinRequest enters a room under a nickname.
type JoinRequest struct {
	Room string `json:"room,omitempty"`
	Nick string `json:"nick,omitempty"`
}

// LeaveRequest exits a previously joined room.
type LeaveRequest struct {
	Room   string `json:"room,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// MessageRequest sends a message to a room, or privately to one occupant
// when To is set.
type MessageRequest struct {
	Room    string `json:"room,omitempty"`
	Content string `json:"content,omitempty"`
	To      string `json:"to,omitempty"`
	Format  string `json:"format,omitempty"`
}

// AffiliationRequest changes an occupant's long-lived room rank.
type AffiliationRequest struct {
	Room        string `json:"room,omitempty"`
	JID         string `json:"jid,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// ConfigGetRequest fetches the room configuration form.
type ConfigGetRequest struct {
	Room string `json:"room,omitempty"`
}

// ConfigSetRequest submits room configuration. Form carries either a
// []form.Field or whatever malformed value the transport received, so
// validation can report it back verbatim.
type ConfigSetRequest struct {
	Room string `json:"room,omitempty"`
	Form any    `json:"form,omitempty"`
}

// FormatXHTML marks message content as XHTML-IM markup.
const FormatXHTML = "xhtml"

// Join sends a join presence to room/nick and optimistically records the
// membership. Fire and forget: failures come back as presence errors.
func (b *Bridge) Join(req JoinRequest) {
	if req.Room == "" {
		b.emitClientError("Missing 'room' key", req)
		return
	}
	if req.Nick == "" {
		b.emitClientError("Missing 'nick' key", req)
		return
	}
	p := &stanza.Presence{
		Attrs: stanza.Attrs{To: req.Room + "/" + req.Nick},
		MUC:   &stanza.MUCJoin{},
	}
	b.rooms.add(req.Room)
	b.send(p)
}

// Leave sends an unavailable presence to the room and optimistically
// removes the membership. Whether a failed leave should restore the
// membership is deliberately not handled; the room is gone once the
// stanza is sent.
func (b *Bridge) Leave(req LeaveRequest) {
	if req.Room == "" {
		b.emitClientError("Missing 'room' key", req)
		return
	}
	if !b.rooms.contains(req.Room) {
		b.emitClientError("Not registered with this room", req)
		return
	}
	p := &stanza.Presence{
		Attrs:  stanza.Attrs{To: req.Room, Type: stanza.TypeUnavailable},
		Status: req.Reason,
	}
	b.rooms.remove(req.Room)
	b.send(p)
}

// Message sends a groupchat message to the room, or a chat-type message
// to room/to for private addressing. XHTML content is embedded alongside
// a stripped plain-text fallback body.
func (b *Bridge) Message(req MessageRequest) {
	if req.Room == "" {
		b.emitClientError("Missing 'room' key", req)
		return
	}
	if !b.rooms.contains(req.Room) {
		b.emitClientError("Not registered with this room", req)
		return
	}
	attrs := stanza.Attrs{To: req.Room, Type: stanza.TypeGroupchat}
	if req.To != "" {
		attrs.To = req.Room + "/" + req.To
		attrs.Type = stanza.TypeChat
	}
	if req.Content == "" {
		// The partially built stanza attributes are what the caller's
		// request had become by this point; report those.
		b.emitClientError("Message content not provided", attrs)
		return
	}

	msg := &stanza.Message{Attrs: attrs}
	if req.Format == FormatXHTML {
		msg.Body = xhtml.ToPlain(req.Content)
		msg.XHTML = &stanza.XHTMLIM{Body: stanza.XHTMLBody{Content: req.Content}}
	} else {
		msg.Body = req.Content
	}
	b.send(msg)
}

// SetAffiliation changes an occupant's affiliation. The callback resolves
// with (nil, true) on success or a *StanzaError on peer rejection.
func (b *Bridge) SetAffiliation(req AffiliationRequest, cb Callback) {
	if cb == nil {
		b.emitClientError("Missing callback", struct{}{})
		return
	}
	if req.Room == "" {
		cb(clientError("Missing 'room' key", req), nil)
		return
	}
	if req.JID == "" {
		cb(clientError("Missing 'jid' key", req), nil)
		return
	}
	if req.Affiliation == "" {
		cb(clientError("Missing 'affiliation' key", req), nil)
		return
	}

	iq := &stanza.IQ{
		Attrs: stanza.Attrs{
			ID:   utils.NewID(),
			To:   req.Room,
			Type: stanza.IQSet,
		},
		AdminQuery: &stanza.AdminQuery{
			Items: []stanza.Item{{
				Affiliation: req.Affiliation,
				JID:         req.JID,
				Reason:      req.Reason,
			}},
		},
	}
	b.trackBareResult(iq.ID, cb)
	b.send(iq)
}

// GetConfig fetches the room configuration form, resolving the callback
// with a flattened form.Data.
func (b *Bridge) GetConfig(req ConfigGetRequest, cb Callback) {
	if cb == nil {
		b.emitClientError("Missing callback", struct{}{})
		return
	}
	if req.Room == "" {
		cb(clientError("Missing 'room' key", req), nil)
		return
	}

	iq := &stanza.IQ{
		Attrs: stanza.Attrs{
			ID:   utils.NewID(),
			To:   req.Room,
			Type: stanza.IQGet,
		},
		OwnerQuery: &stanza.OwnerQuery{},
	}
	b.session.TrackID(iq.ID, func(reply *stanza.IQ) {
		if reply.Type == stanza.TypeError {
			cb(parseStanzaError(reply.Error), nil)
			return
		}
		if reply.OwnerQuery == nil || reply.OwnerQuery.Form == nil {
			cb(nil, form.Data{Fields: []form.Field{}})
			return
		}
		cb(nil, form.Parse(reply.OwnerQuery.Form))
	})
	b.send(iq)
}

// SetConfig submits a room configuration form. An empty field list is a
// valid submission.
func (b *Bridge) SetConfig(req ConfigSetRequest, cb Callback) {
	if cb == nil {
		b.emitClientError("Missing callback", struct{}{})
		return
	}
	if req.Room == "" {
		cb(clientError("Missing 'room' key", req), nil)
		return
	}
	var fields []form.Field
	switch f := req.Form.(type) {
	case nil:
		cb(clientError("Missing 'form' key", req), nil)
		return
	case []form.Field:
		fields = f
	default:
		cb(clientError("Badly formatted data form", req), nil)
		return
	}

	iq := &stanza.IQ{
		Attrs: stanza.Attrs{
			ID:   utils.NewID(),
			To:   req.Room,
			Type: stanza.IQSet,
		},
		OwnerQuery: &stanza.OwnerQuery{
			Form: form.Submit(stanza.NSConfig, fields),
		},
	}
	b.trackBareResult(iq.ID, cb)
	b.send(iq)
}

// trackBareResult registers a correlation callback for requests whose
// success payload is boolean true.
func (b *Bridge) trackBareResult(id string, cb Callback) {
	b.session.TrackID(id, func(reply *stanza.IQ) {
		if reply.Type == stanza.TypeError {
			cb(parseStanzaError(reply.Error), nil)
			return
		}
		cb(nil, true)
	})
}
