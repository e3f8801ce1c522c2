package ws

import (
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"github.com/SergioBarbosa7/socket-chat/domain"
	"github.com/SergioBarbosa7/socket-chat/group"
	"github.com/SergioBarbosa7/socket-chat/services"
	"github.com/SergioBarbosa7/socket-chat/session"
	"github.com/SergioBarbosa7/socket-chat/storage"
)

const readWait = 2 * time.Second

// newTestServer spins up the full websocket stack over a real router.
func newTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	directory := session.NewUserDirectory()
	sessions := session.NewManager(directory, log)
	service := services.NewChatService(sessions, group.NewRegistry(log), storage.NewOfflineQueue(log), nil, nil, log)
	server := NewServer("", 1<<20, service, log)

	ts := httptest.NewServer(server.mux())
	return ts, ts.Close
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func login(t *testing.T, ts *httptest.Server, username string) *websocket.Conn {
	t.Helper()
	conn := dial(t, ts)
	require.NoError(t, conn.WriteJSON(domain.NewMessage(domain.TypeLogin, username, domain.ServerUser, "")))
	reply := readFrame(t, conn)
	require.Equal(t, domain.TypeLoginSuccess, reply.Type)
	return conn
}

// waitForOffline polls the users listing until username shows up offline.
func waitForOffline(t *testing.T, conn *websocket.Conn, username string) {
	t.Helper()
	for i := 0; i < 50; i++ {
		require.NoError(t, conn.WriteJSON(domain.NewMessage(domain.TypeRequestUsersList, "", "", "")))
		reply := readFrame(t, conn)
		require.Equal(t, domain.TypeUsersList, reply.Type)
		if strings.Contains(reply.Content, username+" (offline)") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("user %s never went offline", username)
}

func readFrame(t *testing.T, conn *websocket.Conn) domain.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readWait)))
	var message domain.Message
	require.NoError(t, conn.ReadJSON(&message))
	return message
}

func TestClientHandler_LoginFirstProtocol(t *testing.T) {
	req := require.New(t)
	ts, cleanup := newTestServer(t)
	defer cleanup()

	conn := dial(t, ts)
	defer conn.Close()

	// A first frame that is not LOGIN is refused and the connection dies
	req.NoError(conn.WriteJSON(domain.NewMessage(domain.TypePrivateMessage, "alice", "bob", "hi")))

	reply := readFrame(t, conn)
	req.Equal(domain.TypeLoginFailed, reply.Type)
}

func TestClientHandler_DuplicateLogin(t *testing.T) {
	req := require.New(t)
	ts, cleanup := newTestServer(t)
	defer cleanup()

	first := login(t, ts, "alice")
	defer first.Close()

	second := dial(t, ts)
	defer second.Close()
	req.NoError(second.WriteJSON(domain.NewMessage(domain.TypeLogin, "alice", domain.ServerUser, "")))

	reply := readFrame(t, second)
	req.Equal(domain.TypeLoginFailed, reply.Type)
	req.Contains(reply.Content, "already connected")
}

func TestClientHandler_PrivateMessageRouting(t *testing.T) {
	req := require.New(t)
	ts, cleanup := newTestServer(t)
	defer cleanup()

	alice := login(t, ts, "alice")
	defer alice.Close()
	bob := login(t, ts, "bob")
	defer bob.Close()

	// The sender field is stamped by the server, whatever the client claims
	spoofed := domain.NewMessage(domain.TypePrivateMessage, "mallory", "bob", "hello bob")
	req.NoError(alice.WriteJSON(spoofed))

	received := readFrame(t, bob)
	req.Equal(domain.TypePrivateMessage, received.Type)
	req.Equal("alice", received.From)
	req.Equal("hello bob", received.Content)
}

func TestClientHandler_GroupLifecycle(t *testing.T) {
	req := require.New(t)
	ts, cleanup := newTestServer(t)
	defer cleanup()

	alice := login(t, ts, "alice")
	defer alice.Close()
	bob := login(t, ts, "bob")
	defer bob.Close()

	req.NoError(alice.WriteJSON(domain.NewMessage(domain.TypeCreateGroup, "alice", "", "team")))
	req.Equal(domain.TypeGroupCreated, readFrame(t, alice).Type)

	req.NoError(bob.WriteJSON(domain.NewMessage(domain.TypeJoinGroup, "bob", "", "team")))
	req.Equal(domain.TypeGroupJoined, readFrame(t, bob).Type)

	// A group message reaches bob tagged with sender@group
	req.NoError(alice.WriteJSON(domain.NewMessage(domain.TypeGroupMessage, "alice", "team", "standup time")))
	received := readFrame(t, bob)
	req.Equal(domain.TypeGroupMessage, received.Type)
	req.Equal("alice@team", received.From)
	req.Equal("standup time", received.Content)
}

func TestClientHandler_UnknownRecipientReply(t *testing.T) {
	req := require.New(t)
	ts, cleanup := newTestServer(t)
	defer cleanup()

	alice := login(t, ts, "alice")
	defer alice.Close()

	req.NoError(alice.WriteJSON(domain.NewMessage(domain.TypePrivateMessage, "alice", "ghost", "anyone there")))

	reply := readFrame(t, alice)
	req.Equal(domain.TypeErrorMessage, reply.Type)
	req.Contains(reply.Content, "unknown recipient")
}

func TestClientHandler_FileTransfer(t *testing.T) {
	req := require.New(t)
	ts, cleanup := newTestServer(t)
	defer cleanup()

	alice := login(t, ts, "alice")
	defer alice.Close()
	bob := login(t, ts, "bob")
	defer bob.Close()

	file := domain.NewFileMessage(domain.TypeFileMessage, "alice", "bob", "notes.txt", []byte("meeting notes"))
	req.NoError(alice.WriteJSON(file))

	ack := readFrame(t, alice)
	req.Equal(domain.TypeFileReceived, ack.Type)

	received := readFrame(t, bob)
	req.Equal(domain.TypeFileMessage, received.Type)
	req.Equal("notes.txt", received.FileName)
	req.Equal([]byte("meeting notes"), received.FileData)
}

func TestClientHandler_OfflineQueueFlushOnReconnect(t *testing.T) {
	req := require.New(t)
	ts, cleanup := newTestServer(t)
	defer cleanup()

	alice := login(t, ts, "alice")
	defer alice.Close()

	// bob logs in once, then leaves
	bob := login(t, ts, "bob")
	req.NoError(bob.WriteJSON(domain.NewMessage(domain.TypeDisconnect, "bob", "", "")))
	bob.Close()

	// Wait until the server has actually torn bob's session down
	waitForOffline(t, alice, "bob")

	// alice keeps talking to the absent bob, both messages land in the queue
	req.NoError(alice.WriteJSON(domain.NewMessage(domain.TypePrivateMessage, "alice", "bob", "M1")))
	req.NoError(alice.WriteJSON(domain.NewMessage(domain.TypePrivateMessage, "alice", "bob", "M2")))

	// bob comes back; the backlog is flushed before the login ack, in order
	bob = dial(t, ts)
	defer bob.Close()
	req.NoError(bob.WriteJSON(domain.NewMessage(domain.TypeLogin, "bob", domain.ServerUser, "")))

	req.Equal("M1", readFrame(t, bob).Content)
	req.Equal("M2", readFrame(t, bob).Content)
	req.Equal(domain.TypeLoginSuccess, readFrame(t, bob).Type)
}
