package websocket

import (
	"sort"
	"sync"
)

// Registry is the in-memory source of truth for who is online. All
// mutations and reads are serialized under one mutex, so a snapshot
// never observes a half-applied registration.
type Registry struct {
	mu          sync.RWMutex
	clients     map[*Client]bool
	userClients map[uint]map[*Client]bool
}

func NewRegistry() *Registry {
	return &Registry{
		clients:     make(map[*Client]bool),
		userClients: make(map[uint]map[*Client]bool),
	}
}

// Register binds the client's identity to the registry. Idempotent per
// client; a user may hold several simultaneous connections.
func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.clients[c] {
		return
	}
	r.clients[c] = true

	if r.userClients[c.userID] == nil {
		r.userClients[c.userID] = make(map[*Client]bool)
	}
	r.userClients[c.userID][c] = true
}

// Unregister removes the client. Returns false if it was already absent,
// so cleanup paths stay idempotent.
func (r *Registry) Unregister(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.clients[c] {
		return false
	}
	delete(r.clients, c)

	if conns := r.userClients[c.userID]; conns != nil {
		delete(conns, c)
		if len(conns) == 0 {
			delete(r.userClients, c.userID)
		}
	}
	return true
}

// Snapshot returns the distinct (userId, username) pairs currently
// registered, sorted by user id for stable output.
func (r *Registry) Snapshot() []UserRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	online := make([]UserRef, 0, len(r.userClients))
	for userID, conns := range r.userClients {
		for c := range conns {
			online = append(online, UserRef{UserID: userID, Username: c.username})
			break
		}
	}
	sort.Slice(online, func(i, j int) bool { return online[i].UserID < online[j].UserID })
	return online
}

// ConnectionsFor returns the live connections bound to a user.
func (r *Registry) ConnectionsFor(userID uint) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.userClients[userID]
	out := make([]*Client, 0, len(conns))
	for c := range conns {
		out = append(out, c)
	}
	return out
}

// All returns a copy of every registered client, for broadcasts.
func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
