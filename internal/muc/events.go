package muc

// Wire names for events emitted to the client transport. The vocabulary is
// shared verbatim across the client/server boundary.
const (
	EventMessage     = "xmpp.muc.message"
	EventError       = "xmpp.muc.error"
	EventRoster      = "xmpp.muc.roster"
	EventRoomConfig  = "xmpp.muc.room.config"
	EventClientError = "xmpp.error.client"
)

// Wire names for commands accepted from the client transport.
const (
	CmdJoin        = "xmpp.muc.join"
	CmdLeave       = "xmpp.muc.leave"
	CmdMessage     = "xmpp.muc.message"
	CmdAffiliation = "xmpp.muc.affiliation"
	CmdConfigGet   = "xmpp.muc.room.config.get"
	CmdConfigSet   = "xmpp.muc.room.config.set"
)

// RoomMessage is emitted for each chat message received in a joined room.
type RoomMessage struct {
	Room    string `json:"room"`
	Nick    string `json:"nick"`
	Content string `json:"content,omitempty"`
	Format  string `json:"format"`
	Private bool   `json:"private"`
	Delay   string `json:"delay,omitempty"`
	State   string `json:"state,omitempty"`
}

// RoomError is emitted when a room reports an error outside any pending
// request.
type RoomError struct {
	Kind    string       `json:"type"`
	Room    string       `json:"room"`
	Content string       `json:"content,omitempty"`
	Err     *StanzaError `json:"error"`
}

// RosterUpdate is emitted for each presence received from a joined room.
type RosterUpdate struct {
	Room        string       `json:"room"`
	Nick        string       `json:"nick"`
	Affiliation string       `json:"affiliation,omitempty"`
	Role        string       `json:"role,omitempty"`
	Error       *StanzaError `json:"error,omitempty"`
}

// ConfigChange is emitted when a room broadcasts configuration status
// codes.
type ConfigChange struct {
	Room   string `json:"room"`
	Status []int  `json:"status"`
}
