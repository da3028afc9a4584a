package muc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/mucbridge/internal/stanza"
)

func TestJoinMissingRoom(t *testing.T) {
	b, fs, fe := newTestBridge(t)

	b.Join(JoinRequest{})

	assert.Empty(t, fs.sent, "no stanza may be sent on validation failure")
	cerr := fe.lastClientError(t)
	assert.Equal(t, "Missing 'room' key", cerr.Description)
	assert.Equal(t, JoinRequest{}, cerr.Request)
}

func TestJoinMissingNick(t *testing.T) {
	b, fs, fe := newTestBridge(t)
	req := JoinRequest{Room: "fire@coven.witches.lit"}

	b.Join(req)

	assert.Empty(t, fs.sent)
	cerr := fe.lastClientError(t)
	assert.Equal(t, "Missing 'nick' key", cerr.Description)
	assert.Equal(t, req, cerr.Request)
}

func TestJoinSendsPresence(t *testing.T) {
	b, fs, _ := newTestBridge(t)
	req := JoinRequest{Room: "fire@coven.witches.lit", Nick: "caldron"}

	b.Join(req)

	p, ok := fs.lastSent(t).(*stanza.Presence)
	require.True(t, ok, "join must send a presence stanza")
	assert.Equal(t, "fire@coven.witches.lit/caldron", p.To)
	assert.NotNil(t, p.MUC, "join presence must carry the muc marker")
	assert.True(t, b.rooms.contains(req.Room), "join must record membership")
}

func TestLeaveMissingRoom(t *testing.T) {
	b, fs, fe := newTestBridge(t)

	b.Leave(LeaveRequest{})

	assert.Empty(t, fs.sent)
	cerr := fe.lastClientError(t)
	assert.Equal(t, "Missing 'room' key", cerr.Description)
}

func TestLeaveNotRegistered(t *testing.T) {
	b, fs, fe := newTestBridge(t)
	req := LeaveRequest{Room: "fire@coven.witches.lit"}

	b.Leave(req)

	assert.Empty(t, fs.sent)
	cerr := fe.lastClientError(t)
	assert.Equal(t, "Not registered with this room", cerr.Description)
	assert.Equal(t, req, cerr.Request)
}

func TestLeaveSendsUnavailablePresence(t *testing.T) {
	b, fs, _ := newTestBridge(t)
	b.rooms.add("fire@coven.witches.lit")

	b.Leave(LeaveRequest{Room: "fire@coven.witches.lit"})

	p, ok := fs.lastSent(t).(*stanza.Presence)
	require.True(t, ok)
	assert.Equal(t, stanza.TypeUnavailable, p.Type)
	assert.Equal(t, "fire@coven.witches.lit", p.To)
}

func TestLeaveWithReason(t *testing.T) {
	b, fs, _ := newTestBridge(t)
	b.rooms.add("fire@coven.witches.lit")

	b.Leave(LeaveRequest{Room: "fire@coven.witches.lit", Reason: "End of act 1"})

	p := fs.lastSent(t).(*stanza.Presence)
	assert.Equal(t, "End of act 1", p.Status)
}

func TestLeaveRemovesMembership(t *testing.T) {
	b, _, _ := newTestBridge(t)
	b.rooms.add("fire@coven.witches.lit")

	b.Leave(LeaveRequest{Room: "fire@coven.witches.lit"})

	assert.False(t, b.rooms.contains("fire@coven.witches.lit"))

	// A second leave now fails the membership gate.
	b.Leave(LeaveRequest{Room: "fire@coven.witches.lit"})
	require.Len(t, b.session.(*fakeSession).sent, 1)
}

func TestMessageMissingRoom(t *testing.T) {
	b, fs, fe := newTestBridge(t)

	b.Message(MessageRequest{})

	assert.Empty(t, fs.sent)
	assert.Equal(t, "Missing 'room' key", fe.lastClientError(t).Description)
}

func TestMessageNotRegistered(t *testing.T) {
	b, fs, fe := newTestBridge(t)
	req := MessageRequest{Room: "fire@coven.witches.lit"}

	b.Message(req)

	assert.Empty(t, fs.sent)
	cerr := fe.lastClientError(t)
	assert.Equal(t, "Not registered with this room", cerr.Description)
	assert.Equal(t, req, cerr.Request)
}

func TestMessageMissingContent(t *testing.T) {
	b, fs, fe := newTestBridge(t)
	b.rooms.add("fire@witches.coven.lit")

	b.Message(MessageRequest{Room: "fire@witches.coven.lit"})

	assert.Empty(t, fs.sent)
	cerr := fe.lastClientError(t)
	assert.Equal(t, "Message content not provided", cerr.Description)
	// The request reported is what the input had become: the stanza
	// attributes built so far.
	assert.Equal(t, stanza.Attrs{To: "fire@witches.coven.lit", Type: stanza.TypeGroupchat}, cerr.Request)
}

func TestMessageGroupchat(t *testing.T) {
	b, fs, _ := newTestBridge(t)
	b.rooms.add("fire@coven.witches.lit")

	b.Message(MessageRequest{Room: "fire@coven.witches.lit", Content: "some content"})

	m, ok := fs.lastSent(t).(*stanza.Message)
	require.True(t, ok)
	assert.Equal(t, "fire@coven.witches.lit", m.To)
	assert.Equal(t, stanza.TypeGroupchat, m.Type)
	assert.Equal(t, "some content", m.Body)
	assert.Nil(t, m.XHTML)
}

func TestMessageDirect(t *testing.T) {
	b, fs, _ := newTestBridge(t)
	b.rooms.add("fire@coven.witches.lit")

	b.Message(MessageRequest{
		Room:    "fire@coven.witches.lit",
		Content: "some direct content",
		To:      "caldron",
	})

	m := fs.lastSent(t).(*stanza.Message)
	assert.Equal(t, "fire@coven.witches.lit/caldron", m.To)
	assert.Equal(t, stanza.TypeChat, m.Type)
}

func TestMessageXHTML(t *testing.T) {
	b, fs, _ := newTestBridge(t)
	b.rooms.add("fire@coven.witches.lit")

	b.Message(MessageRequest{
		Room:    "fire@coven.witches.lit",
		Content: "<p>some <strong>XHTML</strong> content</p>",
		Format:  FormatXHTML,
	})

	m := fs.lastSent(t).(*stanza.Message)
	assert.Equal(t, "some XHTML content", m.Body)
	require.NotNil(t, m.XHTML)
	assert.Equal(t, "<p>some <strong>XHTML</strong> content</p>", m.XHTML.Body.Content)
}
