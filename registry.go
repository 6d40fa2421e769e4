package main

import "strings"

// Registry maps live connections to player identities. Player records are
// keyed by lowercased display name and survive disconnects, so rejoining
// under the same name from a new connection restores the prior score.
type Registry struct {
	byName map[string]*Player
	byConn map[string]*Player
	joined []*Player // join order, for stable snapshot listing
}

func newRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Player),
		byConn: make(map[string]*Player),
	}
}

// JoinAsPlayer binds connID to the player record for name, creating the
// record on first join. On a rejoin the record's ID is rebound to the new
// connection and the stale connection mapping is dropped.
func (r *Registry) JoinAsPlayer(connID, name string) (p *Player, rejoined bool) {
	key := strings.ToLower(name)

	if p, ok := r.byName[key]; ok {
		delete(r.byConn, p.ID)
		p.ID = connID
		r.byConn[connID] = p
		return p, true
	}

	p = &Player{
		ID:   connID,
		Name: name,
	}
	r.byName[key] = p
	r.byConn[connID] = p
	r.joined = append(r.joined, p)

	return p, false
}

func (r *Registry) Resolve(connID string) *Player {
	return r.byConn[connID]
}

// Disconnect removes the connection mapping only. The name-keyed record is
// kept for the lifetime of the process so the player can reconnect.
func (r *Registry) Disconnect(connID string) {
	delete(r.byConn, connID)
}

// Players returns a copy of every known record in join order.
func (r *Registry) Players() []Player {
	out := make([]Player, 0, len(r.joined))
	for _, p := range r.joined {
		out = append(out, *p)
	}
	return out
}

func (r *Registry) ResetScores() {
	for _, p := range r.joined {
		p.Score = 0
	}
}
