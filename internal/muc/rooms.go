package muc

// roomSet is the set of rooms the session currently occupies. It gates
// leave and in-room operations and is mutated optimistically: a room is
// added when the join presence is sent and removed when the leave
// presence is sent, not when the server confirms either.
type roomSet map[string]struct{}

func (r roomSet) add(room string) {
	r[room] = struct{}{}
}

func (r roomSet) remove(room string) {
	delete(r, room)
}

func (r roomSet) contains(room string) bool {
	_, ok := r[room]
	return ok
}
