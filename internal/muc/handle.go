package muc

import "github.com/avolkov/mucbridge/internal/stanza"

// Handles reports whether the stanza comes from a room this session
// occupies. Room traffic arrives from room/nick, so the bare sender is
// matched against the tracked rooms.
func (b *Bridge) Handles(st any) bool {
	from := senderOf(st)
	return from != "" && b.rooms.contains(stanza.Bare(from))
}

func senderOf(st any) string {
	switch v := st.(type) {
	case *stanza.Message:
		return v.From
	case *stanza.Presence:
		return v.From
	case *stanza.IQ:
		return v.From
	}
	return ""
}

// Handle classifies an inbound stanza and emits the matching semantic
// event. It reports whether the stanza was consumed; iq stanzas are never
// consumed here since replies resolve through the correlator upstream.
func (b *Bridge) Handle(st any) bool {
	switch v := st.(type) {
	case *stanza.Message:
		return b.handleMessage(v)
	case *stanza.Presence:
		return b.handlePresence(v)
	}
	return false
}

func (b *Bridge) handleMessage(m *stanza.Message) bool {
	room := stanza.Bare(m.From)

	if m.Type == stanza.TypeError {
		b.emitter.Emit(EventError, &RoomError{
			Kind:    "message",
			Room:    room,
			Content: m.Body,
			Err:     parseStanzaError(m.Error),
		})
		return true
	}

	if m.User != nil && len(m.User.Status) > 0 {
		codes := make([]int, 0, len(m.User.Status))
		for _, s := range m.User.Status {
			codes = append(codes, s.Code)
		}
		b.emitter.Emit(EventRoomConfig, &ConfigChange{Room: room, Status: codes})
		return true
	}

	msg := &RoomMessage{
		Room:    room,
		Nick:    stanza.Resource(m.From),
		Format:  "plain",
		Private: m.Type == stanza.TypeChat,
		State:   m.ChatState(),
	}
	if m.XHTML != nil {
		msg.Content = m.XHTML.Body.Content
		msg.Format = FormatXHTML
	} else {
		msg.Content = m.Body
	}
	if m.Delay != nil {
		msg.Delay = m.Delay.Stamp
	}
	if msg.Content == "" && msg.State == "" {
		return false
	}
	b.emitter.Emit(EventMessage, msg)
	return true
}

func (b *Bridge) handlePresence(p *stanza.Presence) bool {
	update := &RosterUpdate{
		Room: stanza.Bare(p.From),
		Nick: stanza.Resource(p.From),
	}
	if p.Type == stanza.TypeError {
		update.Error = parseStanzaError(p.Error)
	} else if p.User != nil && len(p.User.Items) > 0 {
		update.Affiliation = p.User.Items[0].Affiliation
		update.Role = p.User.Items[0].Role
	}
	b.emitter.Emit(EventRoster, update)
	return true
}
