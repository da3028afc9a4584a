// Package session provides the XMPP stream collaborator consumed by the
// bridge core: a send primitive, reply correlation, and an inbound read
// loop that offers unsolicited stanzas to registered handlers.
package session

import (
	"context"
	"encoding/xml"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/avolkov/mucbridge/internal/stanza"
)

// Sender is the surface the bridge core needs from a session.
type Sender interface {
	// Send marshals and transmits a single stanza.
	Send(st any) error
	// TrackID registers a reply callback for a correlation id.
	TrackID(id string, fn ReplyFunc)
}

// Handler claims and processes unsolicited inbound stanzas.
type Handler interface {
	// Handles reports whether the stanza concerns this handler.
	Handles(st any) bool
	// Handle processes the stanza, reporting whether it was consumed.
	Handle(st any) bool
}

// Session is a minimal jabber:client stream over TCP. It does not
// negotiate SASL or TLS; authentication is outside the bridge's scope.
type Session struct {
	conn     net.Conn
	domain   string
	tracker  *Tracker
	log      *zerolog.Logger
	writeMu  sync.Mutex
	handlers []Handler
}

// Dial connects to an XMPP server and opens the client stream.
func Dial(ctx context.Context, addr, domain string, logger *zerolog.Logger) (*Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial xmpp: %w", err)
	}

	s := &Session{
		conn:    conn,
		domain:  domain,
		tracker: NewTracker(),
		log:     logger,
	}
	if err := s.openStream(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) openStream() error {
	header := fmt.Sprintf(
		`<?xml version='1.0'?><stream:stream to='%s' xmlns='jabber:client' xmlns:stream='http://etherx.jabber.org/streams' version='1.0'>`,
		s.domain,
	)
	if _, err := s.conn.Write([]byte(header)); err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	return nil
}

// Register adds an inbound stanza handler. Not safe to call once Run has
// started.
func (s *Session) Register(h Handler) {
	s.handlers = append(s.handlers, h)
}

// Send marshals the stanza and writes it to the stream.
func (s *Session) Send(st any) error {
	data, err := xml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal stanza: %w", err)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.conn.Write(data); err != nil {
		return fmt.Errorf("write stanza: %w", err)
	}
	return nil
}

// TrackID registers a reply callback for a correlation id.
func (s *Session) TrackID(id string, fn ReplyFunc) {
	s.tracker.TrackID(id, fn)
}

// Run reads stanzas until the context is cancelled or the stream ends.
// IQ replies are matched against the tracker first; everything else is
// offered to handlers in registration order. Stanzas nobody claims are
// dropped silently.
func (s *Session) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	dec := xml.NewDecoder(s.conn)
	for {
		tok, err := dec.Token()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read stream: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local == "stream" {
			// Stream root; its children are the stanzas.
			continue
		}
		st, err := decodeStanza(dec, start)
		if err != nil {
			s.log.Warn().Err(err).Str("element", start.Name.Local).Msg("skipping undecodable element")
			continue
		}
		if st != nil {
			s.dispatch(st)
		}
	}
}

func decodeStanza(dec *xml.Decoder, start xml.StartElement) (any, error) {
	switch start.Name.Local {
	case "message":
		st := &stanza.Message{}
		return st, dec.DecodeElement(st, &start)
	case "presence":
		st := &stanza.Presence{}
		return st, dec.DecodeElement(st, &start)
	case "iq":
		st := &stanza.IQ{}
		return st, dec.DecodeElement(st, &start)
	default:
		// Stream features, errors and other non-stanza elements.
		return nil, dec.Skip()
	}
}

func (s *Session) dispatch(st any) {
	if iq, ok := st.(*stanza.IQ); ok && s.tracker.Resolve(iq) {
		return
	}
	for _, h := range s.handlers {
		if h.Handles(st) && h.Handle(st) {
			return
		}
	}
	s.log.Debug().Msg("unhandled inbound stanza")
}

// Close terminates the stream and the underlying connection.
func (s *Session) Close() error {
	s.writeMu.Lock()
	_, _ = s.conn.Write([]byte(`</stream:stream>`))
	s.writeMu.Unlock()
	return s.conn.Close()
}
