package stanza

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/avolkov/mucbridge/internal/form"
)

// XMPP namespaces used by the bridge.
const (
	NSMUC    = "http://jabber.org/protocol/muc"
	NSUser   = NSMUC + "#user"
	NSAdmin  = NSMUC + "#admin"
	NSOwner  = NSMUC + "#owner"
	NSConfig = NSMUC + "#roomconfig"

	NSXHTMLIM    = "http://jabber.org/protocol/xhtml-im"
	NSXHTML      = "http://www.w3.org/1999/xhtml"
	NSDelay      = "urn:xmpp:delay"
	NSChatStates = "http://jabber.org/protocol/chatstates"
	NSStanzas    = "urn:ietf:params:xml:ns:xmpp-stanzas"
)

// Stanza type attribute values.
const (
	TypeError       = "error"
	TypeGroupchat   = "groupchat"
	TypeChat        = "chat"
	TypeUnavailable = "unavailable"
	IQGet           = "get"
	IQSet           = "set"
	IQResult        = "result"
)

// Attrs holds the attributes shared by all three stanza kinds.
type Attrs struct {
	ID   string `xml:"id,attr,omitempty" json:"id,omitempty"`
	Type string `xml:"type,attr,omitempty" json:"type,omitempty"`
	From string `xml:"from,attr,omitempty" json:"from,omitempty"`
	To   string `xml:"to,attr,omitempty" json:"to,omitempty"`
}

// Error is the error child carried by stanzas of type "error".
// The defined condition is an empty namespaced element, so element names
// are captured rather than content. The optional human-readable <text/>
// annotation is matched separately so it never shadows the condition.
type Error struct {
	XMLName    xml.Name   `xml:"error"`
	Code       string     `xml:"code,attr,omitempty"`
	Type       string     `xml:"type,attr,omitempty"`
	Text       string     `xml:"urn:ietf:params:xml:ns:xmpp-stanzas text,omitempty"`
	Conditions []xml.Name `xml:",any"`
}

// Condition returns the first defined error condition, or the zero name
// when the error child carries none.
func (e *Error) Condition() xml.Name {
	for _, c := range e.Conditions {
		if c.Local != "text" {
			return c
		}
	}
	return xml.Name{}
}

// Message is a <message/> stanza.
type Message struct {
	XMLName xml.Name `xml:"message"`
	Attrs
	Body  string   `xml:"body,omitempty"`
	XHTML *XHTMLIM `xml:"http://jabber.org/protocol/xhtml-im html"`
	Delay *Delay   `xml:"urn:xmpp:delay delay"`
	User  *MUCUser `xml:"http://jabber.org/protocol/muc#user x"`
	Error *Error   `xml:"error"`

	Active    *ChatState `xml:"http://jabber.org/protocol/chatstates active"`
	Composing *ChatState `xml:"http://jabber.org/protocol/chatstates composing"`
	Paused    *ChatState `xml:"http://jabber.org/protocol/chatstates paused"`
	Inactive  *ChatState `xml:"http://jabber.org/protocol/chatstates inactive"`
	Gone      *ChatState `xml:"http://jabber.org/protocol/chatstates gone"`
}

// ChatState reports the first chat state notification present, or "".
func (m *Message) ChatState() string {
	switch {
	case m.Active != nil:
		return "active"
	case m.Composing != nil:
		return "composing"
	case m.Paused != nil:
		return "paused"
	case m.Inactive != nil:
		return "inactive"
	case m.Gone != nil:
		return "gone"
	}
	return ""
}

// ChatState is an empty chat state notification element (XEP-0085).
type ChatState struct{}

// XHTMLIM is the XHTML-IM wrapper element (XEP-0071). The body content is
// kept as raw markup; the bridge treats XHTML as an opaque payload.
type XHTMLIM struct {
	XMLName xml.Name  `xml:"http://jabber.org/protocol/xhtml-im html"`
	Body    XHTMLBody `xml:"http://www.w3.org/1999/xhtml body"`
}

// XHTMLBody holds the inner markup of an XHTML-IM body.
type XHTMLBody struct {
	Content string `xml:",innerxml"`
}

// Delay is a delayed-delivery marker (XEP-0203).
type Delay struct {
	XMLName xml.Name `xml:"urn:xmpp:delay delay"`
	From    string   `xml:"from,attr,omitempty"`
	Stamp   string   `xml:"stamp,attr"`
}

// Presence is a <presence/> stanza.
type Presence struct {
	XMLName xml.Name `xml:"presence"`
	Attrs
	Status string   `xml:"status,omitempty"`
	MUC    *MUCJoin `xml:"http://jabber.org/protocol/muc x"`
	User   *MUCUser `xml:"http://jabber.org/protocol/muc#user x"`
	Error  *Error   `xml:"error"`
}

// MUCJoin is the bare muc namespace marker sent when entering a room.
type MUCJoin struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/muc x"`
}

// MUCUser is the muc#user extension carried by room presence and by room
// status notification messages.
type MUCUser struct {
	XMLName xml.Name     `xml:"http://jabber.org/protocol/muc#user x"`
	Items   []Item       `xml:"item"`
	Status  []StatusCode `xml:"status"`
}

// Item describes an occupant or an affiliation change target.
type Item struct {
	Affiliation string `xml:"affiliation,attr,omitempty"`
	Role        string `xml:"role,attr,omitempty"`
	JID         string `xml:"jid,attr,omitempty"`
	Nick        string `xml:"nick,attr,omitempty"`
	Reason      string `xml:"reason,omitempty"`
}

// StatusCode is a numeric MUC status code.
type StatusCode struct {
	Code int `xml:"code,attr"`
}

// IQ is an <iq/> stanza.
type IQ struct {
	XMLName xml.Name `xml:"iq"`
	Attrs
	AdminQuery *AdminQuery `xml:"http://jabber.org/protocol/muc#admin query"`
	OwnerQuery *OwnerQuery `xml:"http://jabber.org/protocol/muc#owner query"`
	Error      *Error      `xml:"error"`
}

// AdminQuery is the muc#admin query child used for affiliation changes.
type AdminQuery struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/muc#admin query"`
	Items   []Item   `xml:"item"`
}

// OwnerQuery is the muc#owner query child used for room configuration.
type OwnerQuery struct {
	XMLName xml.Name `xml:"http://jabber.org/protocol/muc#owner query"`
	Form    *form.X  `xml:"jabber:x:data x"`
}

// Parse decodes a single stanza and returns *Message, *Presence or *IQ.
func Parse(data []byte) (any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode stanza: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "message":
			st := &Message{}
			return st, dec.DecodeElement(st, &start)
		case "presence":
			st := &Presence{}
			return st, dec.DecodeElement(st, &start)
		case "iq":
			st := &IQ{}
			return st, dec.DecodeElement(st, &start)
		default:
			return nil, fmt.Errorf("unknown stanza %q", start.Name.Local)
		}
	}
}

// Bare strips the resource part of a JID.
func Bare(jid string) string {
	if i := strings.IndexByte(jid, '/'); i >= 0 {
		return jid[:i]
	}
	return jid
}

// Resource returns the resource part of a JID, or "".
func Resource(jid string) string {
	if i := strings.IndexByte(jid, '/'); i >= 0 {
		return jid[i+1:]
	}
	return ""
}
