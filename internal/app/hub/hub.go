package hub

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"pingchat/internal/app/user"
	"pingchat/internal/pkg/logx"
)

// Hub owns the live connections. It maps handles to clients, admits and
// displaces sessions, and implements the Sender capability the Router fans
// out through.
type Hub struct {
	registry *Registry
	rooms    *RoomIndex
	router   *Router

	mu      sync.RWMutex
	clients map[string]*Client

	logger zerolog.Logger
}

// NewHub builds a hub with an empty registry and room index, wired as its own
// router's delivery capability.
func NewHub() *Hub {
	h := &Hub{
		registry: NewRegistry(),
		rooms:    NewRoomIndex(),
		clients:  make(map[string]*Client),
		logger:   logx.Logger().With().Str("component", "hub").Logger(),
	}

	h.router = NewRouter(h.registry, h.rooms, h)

	return h
}

// Send encodes the event and queues it for the connection behind the handle.
// An unknown handle or a full queue drops the event.
func (h *Hub) Send(handle string, event Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event.Type).Msg("Failed to encode event")
		return
	}

	h.mu.RLock()
	client, ok := h.clients[handle]
	h.mu.RUnlock()

	if !ok {
		return
	}

	client.enqueue(encoded)
}

// Admit registers the client's connection. If the same identity already has a
// live connection, the newer one wins: the old connection is torn down with a
// session-replaced close frame and no offline announcement, and the new one
// takes its place. The new client then gets a welcome notice and everyone else
// sees the user come online.
func (h *Hub) Admit(client *Client) {
	ident := client.Identity()

	displacedHandle := h.registry.Admit(client.Handle(), ident)

	h.mu.Lock()
	displacedClient := h.clients[displacedHandle]
	h.clients[client.Handle()] = client
	h.mu.Unlock()

	if displacedClient != nil {
		displacedClient.Kick("Session replaced by a newer connection")
		h.teardown(displacedHandle, false)
	}

	h.logger.Info().
		Str("handle", client.Handle()).
		Str("user_id", ident.ID).
		Bool("displaced", displacedHandle != "").
		Msg("Connection admitted")

	h.Send(client.Handle(), systemNotice(fmt.Sprintf("You are connected as %s!", ident.DisplayName)))

	h.announcePresence(client.Handle(), EventUserOnline, ident)
}

// Disconnect runs the full teardown for a closed connection. Safe to call for
// a handle that was already displaced or never admitted.
func (h *Hub) Disconnect(handle string) {
	_, registered := h.registry.Identity(handle)

	h.teardown(handle, registered)
}

// teardown removes the connection from the hub, the registry, and every room.
// The clients-map removal is the exactly-once gate: a handle already removed
// (displacement racing the read pump's own disconnect) makes this a no-op.
// announceOffline is false for displaced sessions, whose identity is still
// online on the replacement connection.
func (h *Hub) teardown(handle string, announceOffline bool) {
	h.mu.Lock()
	client, ok := h.clients[handle]
	if ok {
		delete(h.clients, handle)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	ident := client.Identity()
	client.stop()

	h.registry.Evict(handle)

	left := h.rooms.LeaveAll(handle)
	for _, room := range left {
		notice := systemNotice(fmt.Sprintf("%s left %s", ident.DisplayName, room))
		for _, member := range h.rooms.Members(room) {
			h.Send(member, notice)
		}
	}

	if announceOffline {
		h.announcePresence(handle, EventUserOffline, ident)
	}

	h.logger.Info().
		Str("handle", handle).
		Str("user_id", ident.ID).
		Strs("rooms_left", left).
		Bool("announced_offline", announceOffline).
		Msg("Connection torn down")
}

// announcePresence sends a UserOnline or UserOffline event to every admitted
// connection except the subject's own.
func (h *Hub) announcePresence(subjectHandle, eventType string, ident user.Identity) {
	event := Event{
		Type:    eventType,
		Payload: UserEventPayload{ID: ident.ID, Name: ident.DisplayName},
	}

	for _, handle := range h.registry.Handles() {
		if handle != subjectHandle {
			h.Send(handle, event)
		}
	}
}

// Router exposes the message-passing verbs bound to this hub.
func (h *Hub) Router() *Router {
	return h.router
}

// Online reports whether the identity currently has a live connection.
func (h *Hub) Online(userID string) bool {
	_, ok := h.registry.Handle(userID)
	return ok
}

// ConnectionCount returns the number of admitted connections.
func (h *Hub) ConnectionCount() int {
	return h.registry.Len()
}

// Shutdown closes every live connection. Used during graceful server stop.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.stop()
	}

	h.logger.Info().Int("connections", len(clients)).Msg("Hub shut down")
}
