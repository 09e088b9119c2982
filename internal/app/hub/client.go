package hub

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pingchat/internal/app/user"
	"pingchat/internal/pkg/errs"
	"pingchat/internal/pkg/logx"
	"pingchat/internal/pkg/randx"
)

const (
	// timeout for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time to wait for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency of server Ping messages.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a client message.
	maxMessageSize = 8192

	// capacity of the per-client outbound queue.
	sendQueueSize = 256

	// CloseCodeSessionReplaced is a custom WebSocket close code (4000-4999
	// range) signaling that a newer connection for the same identity took
	// over this session.
	CloseCodeSessionReplaced = 4001
)

// Client represents one live WebSocket connection and its authenticated
// identity. The hub addresses it by its opaque connection handle.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	handle   string
	identity user.Identity

	// send queues encoded events waiting to be written to the connection.
	send chan []byte

	// done signals the write pump to close the connection and exit. closeCode
	// and closeText are set before done closes and are written as the close
	// frame by the write pump, which owns all writes to the connection.
	done      chan struct{}
	stopOnce  sync.Once
	closeCode int
	closeText string

	logger zerolog.Logger
}

// NewClient wraps an upgraded WebSocket connection for the given identity and
// assigns it a fresh connection handle.
func NewClient(h *Hub, conn *websocket.Conn, ident user.Identity) *Client {
	handle := randx.ConnectionHandle()

	clientLogger := logx.Logger().With().
		Str("handle", handle).
		Str("user_id", ident.ID).
		Logger()

	return &Client{
		hub:      h,
		conn:     conn,
		handle:   handle,
		identity: ident,
		send:     make(chan []byte, sendQueueSize),
		done:     make(chan struct{}),
		logger:   clientLogger,
	}
}

// Handle returns the opaque connection handle.
func (c *Client) Handle() string {
	return c.handle
}

// Identity returns the authenticated identity behind this connection.
func (c *Client) Identity() user.Identity {
	return c.identity
}

// ReadPump reads verbs from the connection until it closes, then runs the
// disconnect cleanup. Per-connection verbs execute sequentially here, which
// preserves each client's own event ordering.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c.handle)

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close after read pump exit")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Unexpected connection close")
			}
			break
		}

		c.processInbound(messageBytes)
	}
}

// processInbound parses a raw client message and dispatches the verb.
func (c *Client) processInbound(messageBytes []byte) {
	var inbound Inbound
	if err := json.Unmarshal(messageBytes, &inbound); err != nil {
		c.logger.Warn().Err(err).Msg("Client sent invalid JSON")
		return
	}

	switch inbound.Type {
	case VerbSendMessage:
		c.handleSendMessage(inbound.Payload)

	case VerbSendDirectMessage:
		c.handleSendDirectMessage(inbound.Payload)

	case VerbJoinRoom:
		c.handleJoinRoom(inbound.Payload)

	case VerbLeaveRoom:
		c.handleLeaveRoom(inbound.Payload)

	case VerbSendMessageToRoom:
		c.handleSendMessageToRoom(inbound.Payload)

	case VerbSendAttachmentsToRoom:
		c.handleSendAttachments(inbound.Payload)

	default:
		c.logger.Warn().Str("verb", inbound.Type).Msg("Client sent unsupported verb")
	}
}

func (c *Client) handleSendMessage(payloadBytes json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid SendMessage payload")
		return
	}

	if len(payload.Body) > MaxContentBytes {
		c.hub.Send(c.handle, systemNotice(errs.NewError(errs.ErrMessageContentTooLong).Message))
		return
	}

	sender := payload.Sender
	if sender == "" {
		sender = c.identity.DisplayName
	}

	c.hub.router.Broadcast(sender, payload.Body)
}

func (c *Client) handleSendDirectMessage(payloadBytes json.RawMessage) {
	var payload SendDirectMessagePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid SendDirectMessage payload")
		return
	}

	if len(payload.Body) > MaxContentBytes {
		c.hub.Send(c.handle, systemNotice(errs.NewError(errs.ErrMessageContentTooLong).Message))
		return
	}

	c.hub.router.DirectMessage(c.handle, payload.RecipientID, payload.Body)
}

func (c *Client) handleJoinRoom(payloadBytes json.RawMessage) {
	var payload RoomPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid JoinRoom payload")
		return
	}

	room := strings.TrimSpace(payload.Room)
	if room == "" {
		return
	}

	c.hub.router.JoinRoom(c.handle, room)
}

func (c *Client) handleLeaveRoom(payloadBytes json.RawMessage) {
	var payload RoomPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid LeaveRoom payload")
		return
	}

	room := strings.TrimSpace(payload.Room)
	if room == "" {
		return
	}

	c.hub.router.LeaveRoom(c.handle, room)
}

func (c *Client) handleSendMessageToRoom(payloadBytes json.RawMessage) {
	var payload RoomMessagePayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid SendMessageToRoom payload")
		return
	}

	if len(payload.Body) > MaxContentBytes {
		c.hub.Send(c.handle, systemNotice(errs.NewError(errs.ErrMessageContentTooLong).Message))
		return
	}

	c.hub.router.SendToCurrentRoom(c.handle, payload.Body)
}

func (c *Client) handleSendAttachments(payloadBytes json.RawMessage) {
	var payload SendAttachmentsPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid SendAttachmentsToRoom payload")
		return
	}

	if count := len(payload.Attachments); count == 0 || count > MaxAttachmentsCount {
		c.hub.Send(c.handle, systemNotice(errs.NewError(errs.ErrAttachmentCountInvalid, MaxAttachmentsCount).Message))
		return
	}

	if len(payload.Description) > MaxContentBytes {
		c.hub.Send(c.handle, systemNotice(errs.NewError(errs.ErrMessageContentTooLong).Message))
		return
	}

	for _, a := range payload.Attachments {
		if !strings.HasPrefix(a.Key, AttachmentKeyPrefix) {
			c.hub.Send(c.handle, systemNotice(errs.NewError(errs.ErrAttachmentKeyInvalid).Message))
			return
		}

		if err := ValidateFileType(a.Name, a.MimeType); err != nil {
			c.hub.Send(c.handle, systemNotice(err.Message))
			return
		}
	}

	c.hub.router.ShareAttachments(c.handle, payload.Description, payload.Attachments)
}

// WritePump writes queued events to the connection and keeps the heartbeat
// alive. It exits, closing the connection, when the done channel is closed or
// a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Connection close after write pump exit")
		}
	}()

	for {
		select {
		case message := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline")
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error().Err(err).Msg("Error writing message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Error().Err(err).Msg("Error writing ping")
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(c.closeCode, c.closeText)); err != nil {
				c.logger.Debug().Err(err).Msg("Error writing close message")
			}
			return
		}
	}
}

// enqueue places an encoded event on the outbound queue without blocking.
// A full queue drops the event (delivery is best effort).
func (c *Client) enqueue(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- message:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, dropping event")
		return false
	}
}

// shutdown records the close frame to send and signals the write pump. Safe
// to call more than once; the first caller's close frame wins.
func (c *Client) shutdown(closeCode int, closeText string) {
	c.stopOnce.Do(func() {
		c.closeCode = closeCode
		c.closeText = closeText
		close(c.done)
	})
}

// stop shuts the connection down with a normal closure frame.
func (c *Client) stop() {
	c.shutdown(websocket.CloseNormalClosure, "")
}

// Kick closes the connection with a close frame indicating that the session
// was replaced by a newer connection for the same identity.
func (c *Client) Kick(reason string) {
	c.logger.Warn().
		Int("close_code", CloseCodeSessionReplaced).
		Str("reason", reason).
		Msg("Kicking connection: session replaced")

	c.shutdown(CloseCodeSessionReplaced, reason)
}
