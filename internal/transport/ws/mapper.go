package ws

import (
	"encoding/json"

	"github.com/avolkov/mucbridge/internal/form"
	"github.com/avolkov/mucbridge/internal/muc"
	"github.com/avolkov/mucbridge/internal/proto"
)

// dispatch maps one inbound command envelope onto the bridge. Commands
// carrying an id get their callback resolved through resolve; commands
// without one run fire-and-forget, with precondition failures surfacing
// on the client-error event instead. A join without a nick falls back to
// defaultNick, the nickname registered with the account.
func dispatch(b *muc.Bridge, in proto.Inbound, defaultNick string, resolve func(id string, err error, result any)) *proto.Error {
	data := in.Data
	if len(data) == 0 {
		data = []byte("{}")
	}

	var cb muc.Callback
	if in.ID != "" {
		id := in.ID
		cb = func(err error, result any) {
			resolve(id, err, result)
		}
	}

	switch in.Command {
	case muc.CmdJoin:
		var req muc.JoinRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return badRequest(err)
		}
		if req.Nick == "" {
			req.Nick = defaultNick
		}
		b.Join(req)
	case muc.CmdLeave:
		var req muc.LeaveRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return badRequest(err)
		}
		b.Leave(req)
	case muc.CmdMessage:
		var req muc.MessageRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return badRequest(err)
		}
		b.Message(req)
	case muc.CmdAffiliation:
		var req muc.AffiliationRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return badRequest(err)
		}
		b.SetAffiliation(req, cb)
	case muc.CmdConfigGet:
		var req muc.ConfigGetRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return badRequest(err)
		}
		b.GetConfig(req, cb)
	case muc.CmdConfigSet:
		req, perr := configSetRequest(data)
		if perr != nil {
			return perr
		}
		b.SetConfig(req, cb)
	default:
		return &proto.Error{Code: proto.ErrCodeUnknownCommand, Msg: "unknown command " + in.Command}
	}
	return nil
}

// configSetRequest keeps a malformed form value intact so the bridge can
// classify it ("Badly formatted data form") and echo it back verbatim.
func configSetRequest(data []byte) (muc.ConfigSetRequest, *proto.Error) {
	var raw struct {
		Room string          `json:"room"`
		Form json.RawMessage `json:"form"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return muc.ConfigSetRequest{}, badRequest(err)
	}

	req := muc.ConfigSetRequest{Room: raw.Room}
	if len(raw.Form) == 0 || string(raw.Form) == "null" {
		return req, nil
	}

	var fields []form.Field
	if err := json.Unmarshal(raw.Form, &fields); err != nil {
		req.Form = raw.Form
		return req, nil
	}
	req.Form = fields
	return req, nil
}

func badRequest(err error) *proto.Error {
	return &proto.Error{Code: proto.ErrCodeBadRequest, Msg: err.Error()}
}
