package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pingchat/internal/app/user"
)

// newHubTestServer upgrades every request and runs the client lifecycle the
// way the WebSocket handler does, taking the identity from query parameters.
func newHubTestServer(h *Hub) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		ident := user.Identity{
			ID:          r.URL.Query().Get("id"),
			DisplayName: r.URL.Query().Get("name"),
			Role:        user.DefaultRole,
		}

		client := NewClient(h, conn, ident)
		go client.WritePump()
		h.Admit(client)
		client.ReadPump()
	}))
}

func dialHub(t *testing.T, srv *httptest.Server, id, name string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?id=" + id + "&name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

type wireEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// readUntil reads frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, eventType string) wireEvent {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))

	for {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", eventType)

		var event wireEvent
		require.NoError(t, json.Unmarshal(raw, &event))

		if event.Type == eventType {
			return event
		}
	}
}

func sendVerb(t *testing.T, conn *websocket.Conn, verb string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	frame, err := json.Marshal(Inbound{Type: verb, Payload: raw})
	require.NoError(t, err)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, frame))
}

func TestHubWelcomeAndPresence(t *testing.T) {
	h := NewHub()
	srv := newHubTestServer(h)
	defer srv.Close()

	alice := dialHub(t, srv, "u-alice", "alice")

	welcome := readUntil(t, alice, EventReceiveMessage)
	var notice ReceiveMessagePayload
	require.NoError(t, json.Unmarshal(welcome.Payload, &notice))
	assert.Equal(t, SystemSender, notice.Sender)
	assert.Equal(t, "You are connected as alice!", notice.Body)

	// A second user coming online is announced to alice, not to themselves.
	bob := dialHub(t, srv, "u-bob", "bob")

	online := readUntil(t, alice, EventUserOnline)
	var presence UserEventPayload
	require.NoError(t, json.Unmarshal(online.Payload, &presence))
	assert.Equal(t, "u-bob", presence.ID)
	assert.Equal(t, "bob", presence.Name)

	readUntil(t, bob, EventReceiveMessage)
}

func TestHubBroadcastOverWire(t *testing.T) {
	h := NewHub()
	srv := newHubTestServer(h)
	defer srv.Close()

	alice := dialHub(t, srv, "u-alice", "alice")
	bob := dialHub(t, srv, "u-bob", "bob")
	readUntil(t, alice, EventReceiveMessage)
	readUntil(t, bob, EventReceiveMessage)

	sendVerb(t, alice, VerbSendMessage, SendMessagePayload{Sender: "alice", Body: "hello everyone"})

	for _, conn := range []*websocket.Conn{alice, bob} {
		for {
			event := readUntil(t, conn, EventReceiveMessage)
			var payload ReceiveMessagePayload
			require.NoError(t, json.Unmarshal(event.Payload, &payload))
			if payload.Sender == SystemSender {
				continue
			}
			assert.Equal(t, "alice", payload.Sender)
			assert.Equal(t, "hello everyone", payload.Body)
			break
		}
	}
}

func TestHubSessionReplacement(t *testing.T) {
	h := NewHub()
	srv := newHubTestServer(h)
	defer srv.Close()

	first := dialHub(t, srv, "u-alice", "alice")
	readUntil(t, first, EventReceiveMessage)

	second := dialHub(t, srv, "u-alice", "alice")
	readUntil(t, second, EventReceiveMessage)

	// The first connection gets the session-replaced close code.
	require.NoError(t, first.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, _, err := first.ReadMessage()
		if err == nil {
			continue
		}

		closeErr, ok := err.(*websocket.CloseError)
		require.True(t, ok, "expected a close error, got %v", err)
		assert.Equal(t, CloseCodeSessionReplaced, closeErr.Code)
		break
	}

	// The identity stays online through the replacement.
	assert.True(t, h.Online("u-alice"))
	assert.Equal(t, 1, h.ConnectionCount())
}

func TestHubDisconnectTeardown(t *testing.T) {
	h := NewHub()
	srv := newHubTestServer(h)
	defer srv.Close()

	alice := dialHub(t, srv, "u-alice", "alice")
	bob := dialHub(t, srv, "u-bob", "bob")
	readUntil(t, alice, EventReceiveMessage)
	readUntil(t, bob, EventReceiveMessage)

	sendVerb(t, bob, VerbJoinRoom, RoomPayload{Room: "lounge"})
	sendVerb(t, alice, VerbJoinRoom, RoomPayload{Room: "lounge"})

	// Wait until both joins landed before dropping alice.
	for {
		event := readUntil(t, bob, EventReceiveMessage)
		var payload ReceiveMessagePayload
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		if payload.Body == "alice joined lounge" {
			break
		}
	}

	require.NoError(t, alice.Close())

	// Bob sees the leave notice and then the offline announcement.
	for {
		event := readUntil(t, bob, EventReceiveMessage)
		var payload ReceiveMessagePayload
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		if payload.Body == "alice left lounge" {
			break
		}
	}

	offline := readUntil(t, bob, EventUserOffline)
	var presence UserEventPayload
	require.NoError(t, json.Unmarshal(offline.Payload, &presence))
	assert.Equal(t, "u-alice", presence.ID)

	// Registry and rooms forgot the connection.
	require.Eventually(t, func() bool {
		return !h.Online("u-alice") && h.ConnectionCount() == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.Len(t, h.rooms.Members("lounge"), 1, "only bob should remain in the room")
}

func TestHubDirectMessageOverWire(t *testing.T) {
	h := NewHub()
	srv := newHubTestServer(h)
	defer srv.Close()

	alice := dialHub(t, srv, "u-alice", "alice")
	bob := dialHub(t, srv, "u-bob", "bob")
	readUntil(t, alice, EventReceiveMessage)
	readUntil(t, bob, EventReceiveMessage)

	sendVerb(t, alice, VerbSendDirectMessage, SendDirectMessagePayload{RecipientID: "u-bob", Body: "psst"})

	received := readUntil(t, bob, EventReceiveDirectMessage)
	var dm ReceiveDirectMessagePayload
	require.NoError(t, json.Unmarshal(received.Payload, &dm))
	assert.Equal(t, "u-alice", dm.SenderID)
	assert.Equal(t, "alice", dm.SenderName)
	assert.Equal(t, "psst", dm.Body)

	echo := readUntil(t, alice, EventDirectMessageSent)
	var sent DirectMessageSentPayload
	require.NoError(t, json.Unmarshal(echo.Payload, &sent))
	assert.Equal(t, "u-bob", sent.RecipientID)
	assert.Equal(t, "psst", sent.Body)
}
