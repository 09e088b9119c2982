package hub

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"pingchat/internal/pkg/logx"
)

// Sender delivers an event to the connection behind a handle. Delivery is
// best effort: a failed or dropped delivery to one target never affects
// delivery to others.
type Sender interface {
	Send(handle string, event Event)
}

// Router implements the message-passing verbs by composing the connection
// registry and the room membership index. State is always mutated before any
// delivery fans out, so a slow recipient never holds up registry or
// membership consistency.
type Router struct {
	registry *Registry
	rooms    *RoomIndex
	sender   Sender
	logger   zerolog.Logger

	// now supplies message timestamps, replaceable in tests.
	now func() time.Time
}

// NewRouter constructs a Router over the given registry, membership index,
// and delivery capability.
func NewRouter(registry *Registry, rooms *RoomIndex, sender Sender) *Router {
	return &Router{
		registry: registry,
		rooms:    rooms,
		sender:   sender,
		logger:   logx.Logger().With().Str("component", "router").Logger(),
		now:      time.Now,
	}
}

// displayName resolves the visible name for a handle. A handle present in
// room membership but absent from the registry is an invariant breach; the
// raw handle stands in as the name so delivery to everyone else continues.
func (rt *Router) displayName(handle string) string {
	if ident, ok := rt.registry.Identity(handle); ok {
		return ident.DisplayName
	}

	rt.logger.Error().Str("handle", handle).Msg("Handle has room membership but no registry entry")
	return handle
}

// DirectMessage delivers a message to the identity's live connection. When
// the recipient is offline the sender alone gets a system notice; that is a
// designed outcome, not a fault.
func (rt *Router) DirectMessage(senderHandle, recipientID, body string) {
	recipientHandle, online := rt.registry.Handle(recipientID)
	if !online {
		rt.sender.Send(senderHandle, systemNotice("User is not online."))
		return
	}

	senderIdent, _ := rt.registry.Identity(senderHandle)
	timestamp := rt.now().UTC()

	rt.sender.Send(recipientHandle, Event{
		Type: EventReceiveDirectMessage,
		Payload: ReceiveDirectMessagePayload{
			SenderID:   senderIdent.ID,
			SenderName: senderIdent.DisplayName,
			Body:       body,
			Timestamp:  timestamp,
		},
	})

	rt.sender.Send(senderHandle, Event{
		Type: EventDirectMessageSent,
		Payload: DirectMessageSentPayload{
			RecipientID: recipientID,
			Body:        body,
			Timestamp:   timestamp,
		},
	})
}

// Broadcast delivers the message to every currently admitted connection,
// including the sender, with no filtering.
func (rt *Router) Broadcast(senderName, body string) {
	event := Event{
		Type:    EventReceiveMessage,
		Payload: ReceiveMessagePayload{Sender: senderName, Body: body},
	}

	for _, handle := range rt.registry.Handles() {
		rt.sender.Send(handle, event)
	}
}

// JoinRoom adds the handle to the room and notifies the post-join member set,
// the joining connection included.
func (rt *Router) JoinRoom(handle, room string) {
	rt.rooms.Join(room, handle)

	notice := systemNotice(fmt.Sprintf("%s joined %s", rt.displayName(handle), room))
	for _, member := range rt.rooms.Members(room) {
		rt.sender.Send(member, notice)
	}
}

// LeaveRoom removes the handle from the room and notifies the remaining
// members. The pre-removal membership snapshot is the notification target set
// so a concurrent join or leave cannot drop the notice.
func (rt *Router) LeaveRoom(handle, room string) {
	members := rt.rooms.Members(room)

	if !rt.rooms.Leave(room, handle) {
		return
	}

	notice := systemNotice(fmt.Sprintf("%s left %s", rt.displayName(handle), room))
	for _, member := range members {
		if member != handle {
			rt.sender.Send(member, notice)
		}
	}
}

// SendToCurrentRoom delivers the message to every member of the sender's
// current room (the one joined most recently), the sender included. A sender
// in no room gets a system notice instead.
func (rt *Router) SendToCurrentRoom(handle, body string) {
	room, ok := rt.rooms.CurrentRoom(handle)
	if !ok {
		rt.sender.Send(handle, systemNotice("You are not in any room."))
		return
	}

	event := Event{
		Type:    EventReceiveMessage,
		Payload: ReceiveMessagePayload{Sender: rt.displayName(handle), Body: body},
	}

	for _, member := range rt.rooms.Members(room) {
		rt.sender.Send(member, event)
	}
}

// ShareAttachments delivers uploaded attachments to every member of the
// sender's current room, the sender included.
func (rt *Router) ShareAttachments(handle, description string, attachments []Attachment) {
	room, ok := rt.rooms.CurrentRoom(handle)
	if !ok {
		rt.sender.Send(handle, systemNotice("You are not in any room."))
		return
	}

	senderIdent, _ := rt.registry.Identity(handle)

	event := Event{
		Type: EventReceiveAttachments,
		Payload: ReceiveAttachmentsPayload{
			SenderID:    senderIdent.ID,
			SenderName:  rt.displayName(handle),
			Description: description,
			Attachments: attachments,
			Timestamp:   rt.now().UTC(),
		},
	}

	for _, member := range rt.rooms.Members(room) {
		rt.sender.Send(member, event)
	}
}
