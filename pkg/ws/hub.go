package ws

import (
	"sync"

	"github.com/bytedance/sonic"

	"github.com/gatherly/gatherly/pkg/log"
)

// DefaultHub is the in-memory Hub implementation. It is created at process
// start, injected where publishing is needed, and torn down with the process;
// nothing here is persisted.
type DefaultHub struct {
	// conns holds all registered connections
	conns map[string]Conn

	// channels maps household id -> set of connection ids joined to it
	channels map[string]map[string]struct{}

	// joined maps connection id -> set of household ids, for disconnect cleanup
	joined map[string]map[string]struct{}

	mu sync.RWMutex
}

// NewHub creates a new connection registry.
func NewHub() *DefaultHub {
	return &DefaultHub{
		conns:    make(map[string]Conn),
		channels: make(map[string]map[string]struct{}),
		joined:   make(map[string]map[string]struct{}),
	}
}

// Register adds a new connection.
func (h *DefaultHub) Register(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.ID()] = conn
}

// Unregister removes a connection, implicitly leaving every joined channel.
func (h *DefaultHub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := conn.ID()
	if _, ok := h.conns[id]; !ok {
		return
	}
	delete(h.conns, id)

	for householdId := range h.joined[id] {
		delete(h.channels[householdId], id)
		if len(h.channels[householdId]) == 0 {
			delete(h.channels, householdId)
		}
	}
	delete(h.joined, id)

	_ = conn.Close()
}

// Join adds a connection to a household's channel.
func (h *DefaultHub) Join(householdId, connId string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[connId]; !ok {
		return
	}
	if h.channels[householdId] == nil {
		h.channels[householdId] = make(map[string]struct{})
	}
	h.channels[householdId][connId] = struct{}{}

	if h.joined[connId] == nil {
		h.joined[connId] = make(map[string]struct{})
	}
	h.joined[connId][householdId] = struct{}{}
}

// Leave removes a connection from a household's channel.
func (h *DefaultHub) Leave(householdId, connId string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.channels[householdId], connId)
	if len(h.channels[householdId]) == 0 {
		delete(h.channels, householdId)
	}
	delete(h.joined[connId], householdId)
}

// Publish delivers an event to every connection joined to the household's
// channel. Frames are enqueued in publish order; each connection writes from
// its own buffer, so a slow client never blocks the publisher or its peers.
func (h *DefaultHub) Publish(householdId, event string, detail any) {
	data, err := sonic.Marshal(Event{Event: event, Detail: detail})
	if err != nil {
		log.Errorf("marshal ws event %s failed: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for connId := range h.channels[householdId] {
		if conn, ok := h.conns[connId]; ok {
			conn.Send(data)
		}
	}
}

// Count returns the number of registered connections.
func (h *DefaultHub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// JoinedCount returns the number of connections joined to a household's channel.
func (h *DefaultHub) JoinedCount(householdId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[householdId])
}
