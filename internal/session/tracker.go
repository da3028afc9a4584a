package session

import (
	"sync"

	"github.com/avolkov/mucbridge/internal/stanza"
)

// ReplyFunc receives the iq stanza that answered a tracked request.
type ReplyFunc func(reply *stanza.IQ)

// Tracker correlates outgoing iq stanzas with their eventual replies.
// Each tracked id is resolved at most once; an id whose reply never
// arrives stays pending for the life of the session. No timeout is owned
// here, connection-level liveness belongs to the session.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]ReplyFunc
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{pending: make(map[string]ReplyFunc)}
}

// TrackID registers a callback for the given correlation id.
func (t *Tracker) TrackID(id string, fn ReplyFunc) {
	t.mu.Lock()
	t.pending[id] = fn
	t.mu.Unlock()
}

// Resolve consumes the entry matching the reply's id and invokes its
// callback. Replies with an unknown id are reported as unhandled, never
// treated as an error.
func (t *Tracker) Resolve(reply *stanza.IQ) bool {
	if reply.ID == "" {
		return false
	}
	t.mu.Lock()
	fn, ok := t.pending[reply.ID]
	if ok {
		delete(t.pending, reply.ID)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	fn(reply)
	return true
}

// Pending reports how many requests still await a reply.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
