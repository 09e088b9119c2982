package hub

import (
	"encoding/json"
	"time"
)

// SystemSender is the display name used for server-originated notices.
const SystemSender = "System"

// Outbound event names. These names and their payload field order are the
// wire contract with clients.
const (
	EventReceiveMessage       = "ReceiveMessage"
	EventReceiveDirectMessage = "ReceiveDirectMessage"
	EventDirectMessageSent    = "DirectMessageSent"
	EventUserOnline           = "UserOnline"
	EventUserOffline          = "UserOffline"
	EventReceiveAttachments   = "ReceiveAttachments"
)

// Inbound verb names accepted from clients.
const (
	VerbSendMessage           = "SendMessage"
	VerbSendDirectMessage     = "SendDirectMessage"
	VerbJoinRoom              = "JoinRoom"
	VerbLeaveRoom             = "LeaveRoom"
	VerbSendMessageToRoom     = "SendMessageToRoom"
	VerbSendAttachmentsToRoom = "SendAttachmentsToRoom"
)

// Event is the outbound message envelope.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Inbound is the envelope of a client-sent verb.
type Inbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ReceiveMessagePayload carries a broadcast, room, or system message.
type ReceiveMessagePayload struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
}

// ReceiveDirectMessagePayload is delivered to the recipient of a direct message.
type ReceiveDirectMessagePayload struct {
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Body       string    `json:"body"`
	Timestamp  time.Time `json:"timestamp"`
}

// DirectMessageSentPayload is the confirmation echoed to a direct message sender.
type DirectMessageSentPayload struct {
	RecipientID string    `json:"recipientId"`
	Body        string    `json:"body"`
	Timestamp   time.Time `json:"timestamp"`
}

// UserEventPayload announces a user coming online or going offline.
type UserEventPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReceiveAttachmentsPayload delivers shared attachments to a room.
type ReceiveAttachmentsPayload struct {
	SenderID    string       `json:"senderId"`
	SenderName  string       `json:"senderName"`
	Description string       `json:"description,omitempty"`
	Attachments []Attachment `json:"attachments"`
	Timestamp   time.Time    `json:"timestamp"`
}

// Inbound verb payloads.
type (
	SendMessagePayload struct {
		Sender string `json:"sender"`
		Body   string `json:"body"`
	}

	SendDirectMessagePayload struct {
		RecipientID string `json:"recipientId"`
		Body        string `json:"body"`
	}

	RoomPayload struct {
		Room string `json:"room"`
	}

	RoomMessagePayload struct {
		Body string `json:"body"`
	}

	SendAttachmentsPayload struct {
		Description string       `json:"description,omitempty"`
		Attachments []Attachment `json:"attachments"`
	}
)

// systemNotice builds a ReceiveMessage event sent on behalf of the server.
func systemNotice(body string) Event {
	return Event{
		Type:    EventReceiveMessage,
		Payload: ReceiveMessagePayload{Sender: SystemSender, Body: body},
	}
}
