package muc

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/mucbridge/internal/session"
	"github.com/avolkov/mucbridge/internal/stanza"
)

// fakeSession captures outgoing stanzas and tracked correlation ids so
// tests can replay replies.
type fakeSession struct {
	sent    []any
	tracked map[string]session.ReplyFunc
	lastID  string
}

func newFakeSession() *fakeSession {
	return &fakeSession{tracked: make(map[string]session.ReplyFunc)}
}

func (f *fakeSession) Send(st any) error {
	f.sent = append(f.sent, st)
	return nil
}

func (f *fakeSession) TrackID(id string, fn session.ReplyFunc) {
	f.tracked[id] = fn
	f.lastID = id
}

// reply parses the given iq stanza and resolves the most recently tracked
// callback with it.
func (f *fakeSession) reply(t *testing.T, raw string) {
	t.Helper()
	require.NotEmpty(t, f.lastID, "no tracked request to reply to")
	st, err := stanza.Parse([]byte(raw))
	require.NoError(t, err)
	iq, ok := st.(*stanza.IQ)
	require.True(t, ok, "reply fixture must be an iq")
	f.tracked[f.lastID](iq)
}

func (f *fakeSession) lastSent(t *testing.T) any {
	t.Helper()
	require.NotEmpty(t, f.sent, "expected an outgoing stanza")
	return f.sent[len(f.sent)-1]
}

type emitted struct {
	event   string
	payload any
}

type fakeEmitter struct {
	events []emitted
}

func (f *fakeEmitter) Emit(event string, payload any) {
	f.events = append(f.events, emitted{event: event, payload: payload})
}

func (f *fakeEmitter) last(t *testing.T) emitted {
	t.Helper()
	require.NotEmpty(t, f.events, "expected an emitted event")
	return f.events[len(f.events)-1]
}

// lastClientError asserts the newest event is a client error and returns
// it.
func (f *fakeEmitter) lastClientError(t *testing.T) *ClientError {
	t.Helper()
	ev := f.last(t)
	require.Equal(t, EventClientError, ev.event)
	cerr, ok := ev.payload.(*ClientError)
	require.True(t, ok, "payload must be a *ClientError")
	require.Equal(t, "modify", cerr.Type)
	require.Equal(t, "client-error", cerr.Condition)
	return cerr
}

// cbCapture records a single callback resolution.
type cbCapture struct {
	called bool
	err    error
	result any
}

func (c *cbCapture) fn(err error, result any) {
	c.called = true
	c.err = err
	c.result = result
}

func newTestBridge(t *testing.T) (*Bridge, *fakeSession, *fakeEmitter) {
	t.Helper()
	fs := newFakeSession()
	fe := &fakeEmitter{}
	logger := zerolog.Nop()
	return New(fs, fe, &logger), fs, fe
}

// parseStanza is a fixture helper for inbound classification tests.
func parseStanza(t *testing.T, raw string) any {
	t.Helper()
	st, err := stanza.Parse([]byte(raw))
	require.NoError(t, err)
	return st
}
