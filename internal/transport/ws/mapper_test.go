package ws

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/mucbridge/internal/form"
	"github.com/avolkov/mucbridge/internal/muc"
	"github.com/avolkov/mucbridge/internal/proto"
	"github.com/avolkov/mucbridge/internal/session"
	"github.com/avolkov/mucbridge/internal/stanza"
)

type fakeSender struct {
	sent    []any
	tracked map[string]session.ReplyFunc
	lastID  string
}

func newFakeSender() *fakeSender {
	return &fakeSender{tracked: make(map[string]session.ReplyFunc)}
}

func (f *fakeSender) Send(st any) error {
	f.sent = append(f.sent, st)
	return nil
}

func (f *fakeSender) TrackID(id string, fn session.ReplyFunc) {
	f.tracked[id] = fn
	f.lastID = id
}

type discardEmitter struct{}

func (discardEmitter) Emit(string, any) {}

type resolution struct {
	id     string
	err    error
	result any
}

func newTestMapper(t *testing.T) (*muc.Bridge, *fakeSender, *[]resolution, func(string, error, any)) {
	t.Helper()
	fs := newFakeSender()
	logger := zerolog.Nop()
	b := muc.New(fs, discardEmitter{}, &logger)
	var resolved []resolution
	resolve := func(id string, err error, result any) {
		resolved = append(resolved, resolution{id: id, err: err, result: result})
	}
	return b, fs, &resolved, resolve
}

func command(cmd, id, data string) proto.Inbound {
	in := proto.Inbound{Type: proto.InboundTypeCommand, Command: cmd, ID: id}
	if data != "" {
		in.Data = json.RawMessage(data)
	}
	return in
}

func TestDispatchUnknownCommand(t *testing.T) {
	b, _, _, resolve := newTestMapper(t)

	perr := dispatch(b, command("xmpp.muc.destroy", "", "{}"), "", resolve)

	require.NotNil(t, perr)
	assert.Equal(t, proto.ErrCodeUnknownCommand, perr.Code)
}

func TestDispatchMalformedData(t *testing.T) {
	b, fs, _, resolve := newTestMapper(t)

	perr := dispatch(b, command(muc.CmdJoin, "", `{"room": 42}`), "", resolve)

	require.NotNil(t, perr)
	assert.Equal(t, proto.ErrCodeBadRequest, perr.Code)
	assert.Empty(t, fs.sent)
}

func TestDispatchJoinSendsPresence(t *testing.T) {
	b, fs, _, resolve := newTestMapper(t)

	perr := dispatch(b, command(muc.CmdJoin, "", `{"room":"fire@coven.lit","nick":"witch"}`), "", resolve)

	require.Nil(t, perr)
	require.Len(t, fs.sent, 1)
	p, ok := fs.sent[0].(*stanza.Presence)
	require.True(t, ok)
	assert.Equal(t, "fire@coven.lit/witch", p.To)
}

func TestDispatchJoinDefaultsToAccountNick(t *testing.T) {
	b, fs, _, resolve := newTestMapper(t)

	perr := dispatch(b, command(muc.CmdJoin, "", `{"room":"fire@coven.lit"}`), "cauldron", resolve)

	require.Nil(t, perr)
	require.Len(t, fs.sent, 1)
	p := fs.sent[0].(*stanza.Presence)
	assert.Equal(t, "fire@coven.lit/cauldron", p.To)
}

func TestDispatchJoinExplicitNickWins(t *testing.T) {
	b, fs, _, resolve := newTestMapper(t)

	perr := dispatch(b, command(muc.CmdJoin, "", `{"room":"fire@coven.lit","nick":"witch"}`), "cauldron", resolve)

	require.Nil(t, perr)
	p := fs.sent[0].(*stanza.Presence)
	assert.Equal(t, "fire@coven.lit/witch", p.To)
}

func TestDispatchAffiliationResolvesByID(t *testing.T) {
	b, fs, resolved, resolve := newTestMapper(t)

	perr := dispatch(b, command(muc.CmdAffiliation, "req-1",
		`{"room":"fire@coven.lit","jid":"bottom@midsummer.lit","affiliation":"outcast"}`), "", resolve)

	require.Nil(t, perr)
	require.NotEmpty(t, fs.lastID)
	fs.tracked[fs.lastID](&stanza.IQ{Attrs: stanza.Attrs{ID: fs.lastID, Type: stanza.IQResult}})

	require.Len(t, *resolved, 1)
	r := (*resolved)[0]
	assert.Equal(t, "req-1", r.id)
	assert.NoError(t, r.err)
	assert.Equal(t, true, r.result)
}

func TestDispatchAffiliationWithoutIDHasNoCallback(t *testing.T) {
	b, fs, resolved, resolve := newTestMapper(t)

	// precondition failure with no id: nothing tracked, nothing resolved
	perr := dispatch(b, command(muc.CmdAffiliation, "", `{}`), "", resolve)

	require.Nil(t, perr)
	assert.Empty(t, fs.sent)
	assert.Empty(t, *resolved)
}

func TestDispatchConfigSetKeepsValidForm(t *testing.T) {
	b, fs, _, resolve := newTestMapper(t)

	perr := dispatch(b, command(muc.CmdConfigSet, "req-2",
		`{"room":"fire@coven.lit","form":[{"var":"muc#roomconfig_roomdesc","value":"A dark cave"}]}`), "", resolve)

	require.Nil(t, perr)
	require.Len(t, fs.sent, 1)
	iq := fs.sent[0].(*stanza.IQ)
	require.NotNil(t, iq.OwnerQuery)
	require.NotNil(t, iq.OwnerQuery.Form)
	require.Len(t, iq.OwnerQuery.Form.Fields, 2)
	assert.Equal(t, "muc#roomconfig_roomdesc", iq.OwnerQuery.Form.Fields[1].Var)
}

func TestDispatchConfigSetRejectsMalformedForm(t *testing.T) {
	b, fs, resolved, resolve := newTestMapper(t)

	perr := dispatch(b, command(muc.CmdConfigSet, "req-3",
		`{"room":"fire@coven.lit","form":true}`), "", resolve)

	require.Nil(t, perr)
	assert.Empty(t, fs.sent)
	require.Len(t, *resolved, 1)
	cerr, ok := (*resolved)[0].err.(*muc.ClientError)
	require.True(t, ok)
	assert.Equal(t, "Badly formatted data form", cerr.Description)
}

func TestDispatchConfigSetMissingFormKey(t *testing.T) {
	b, _, resolved, resolve := newTestMapper(t)

	perr := dispatch(b, command(muc.CmdConfigSet, "req-4", `{"room":"fire@coven.lit"}`), "", resolve)

	require.Nil(t, perr)
	require.Len(t, *resolved, 1)
	cerr, ok := (*resolved)[0].err.(*muc.ClientError)
	require.True(t, ok)
	assert.Equal(t, "Missing 'form' key", cerr.Description)
}

func TestConfigSetRequestParsing(t *testing.T) {
	req, perr := configSetRequest([]byte(`{"room":"r","form":null}`))
	require.Nil(t, perr)
	assert.Nil(t, req.Form)

	req, perr = configSetRequest([]byte(`{"room":"r","form":[]}`))
	require.Nil(t, perr)
	fields, ok := req.Form.([]form.Field)
	require.True(t, ok)
	assert.Empty(t, fields)

	req, perr = configSetRequest([]byte(`{"room":"r","form":{"bad":"shape"}}`))
	require.Nil(t, perr)
	assert.Equal(t, json.RawMessage(`{"bad":"shape"}`), req.Form)
}
