package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avolkov/mucbridge/internal/stanza"
)

func TestTrackerResolvesOnce(t *testing.T) {
	tr := NewTracker()
	calls := 0
	tr.TrackID("abc123", func(reply *stanza.IQ) {
		calls++
		assert.Equal(t, stanza.IQResult, reply.Type)
	})
	assert.Equal(t, 1, tr.Pending())

	reply := &stanza.IQ{Attrs: stanza.Attrs{ID: "abc123", Type: stanza.IQResult}}
	assert.True(t, tr.Resolve(reply))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, tr.Pending())

	// a duplicate reply must not fire the callback again
	assert.False(t, tr.Resolve(reply))
	assert.Equal(t, 1, calls)
}

func TestTrackerIgnoresUnknownID(t *testing.T) {
	tr := NewTracker()
	tr.TrackID("abc123", func(*stanza.IQ) {
		t.Fatal("callback must not fire for a different id")
	})

	resolved := tr.Resolve(&stanza.IQ{Attrs: stanza.Attrs{ID: "other"}})

	assert.False(t, resolved)
	assert.Equal(t, 1, tr.Pending())
}

func TestTrackerIgnoresEmptyID(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.Resolve(&stanza.IQ{}))
}
