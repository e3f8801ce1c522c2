package ws

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/SergioBarbosa7/socket-chat/domain"
	"github.com/SergioBarbosa7/socket-chat/services"
)

const sendBufferSize = 256

// clientHandler is the per-connection worker. It owns the websocket, reads
// frames on the calling goroutine, writes through a buffered pump goroutine
// and doubles as the contract.Connection capability handed to the session
// registry. After invalidate() every Send fails; the capability never
// outlives the session entry.
type clientHandler struct {
	conn     *websocket.Conn
	service  services.IChatService
	log      *slog.Logger
	username string

	mu     sync.Mutex
	out    chan domain.Message
	closed bool
}

func newClientHandler(conn *websocket.Conn, service services.IChatService, log *slog.Logger) *clientHandler {
	return &clientHandler{
		conn:    conn,
		service: service,
		log:     log,
		out:     make(chan domain.Message, sendBufferSize),
	}
}

// Send implements contract.Connection. Fire-and-forget: the frame is queued
// for the write pump, a dead capability or a full buffer surface as errors
// to the router, never as blocking.
func (h *clientHandler) Send(message domain.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("connection closed for %q", h.username)
	}
	select {
	case h.out <- message:
		return nil
	default:
		return fmt.Errorf("send buffer full for %q", h.username)
	}
}

// run drives the connection until the client leaves or the stream breaks.
// Cleanup is deferred so the session is unregistered on every exit path,
// panics included.
func (h *clientHandler) run() {
	defer h.cleanup()

	go h.writePump()

	if !h.authenticate() {
		return
	}
	h.log.Info("Client authenticated", "user", h.username, "remote", h.conn.RemoteAddr())
	h.readLoop()
}

// authenticate enforces the LOGIN-first protocol: the very first frame must
// be a LOGIN carrying the username, anything else closes the connection.
func (h *clientHandler) authenticate() bool {
	var message domain.Message
	if err := h.conn.ReadJSON(&message); err != nil {
		h.log.Warn("Client dropped before login", "remote", h.conn.RemoteAddr(), "error", err)
		return false
	}

	if message.Type != domain.TypeLogin {
		h.reply(domain.TypeLoginFailed, "invalid message type, first message type should be LOGIN")
		return false
	}

	username := message.From
	if err := h.service.Login(username, h); err != nil {
		h.reply(domain.TypeLoginFailed, err.Error())
		return false
	}
	h.username = username
	h.reply(domain.TypeLoginSuccess, "login succeeded")
	return true
}

func (h *clientHandler) readLoop() {
	for {
		var message domain.Message
		if err := h.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Warn("Client stream broke", "user", h.username, "error", err)
			} else {
				h.log.Info("Client disconnected", "user", h.username)
			}
			return
		}
		// The session owner is authoritative for the sender field, clients
		// cannot spoof provenance.
		message.From = h.username

		if !h.dispatch(message) {
			return
		}
	}
}

// dispatch maps one inbound frame to one router call and converts errors
// into reply frames for this connection only. Returns false when the client
// asked to disconnect.
func (h *clientHandler) dispatch(message domain.Message) bool {
	switch message.Type {
	case domain.TypePrivateMessage:
		if err := h.service.SendPrivate(message); err != nil {
			h.reply(domain.TypeErrorMessage, err.Error())
		}

	case domain.TypeGroupMessage:
		if err := h.service.SendGroup(message); err != nil {
			h.reply(domain.TypeErrorMessage, err.Error())
		}

	case domain.TypeFileMessage, domain.TypeFileGroup:
		if err := h.service.SendFile(message); err != nil {
			h.reply(domain.TypeErrorMessage, err.Error())
		} else {
			h.reply(domain.TypeFileReceived, fmt.Sprintf("file %s delivered to %s", message.FileName, message.To))
		}

	case domain.TypeCreateGroup:
		if err := h.service.CreateGroup(h.username, message.Content); err != nil {
			h.reply(domain.TypeGroupCreateFailed, err.Error())
		} else {
			h.reply(domain.TypeGroupCreated, fmt.Sprintf("group %s created", message.Content))
		}

	case domain.TypeJoinGroup:
		if err := h.service.JoinGroup(h.username, message.Content); err != nil {
			h.reply(domain.TypeGroupJoinFailed, err.Error())
		} else {
			h.reply(domain.TypeGroupJoined, fmt.Sprintf("user %s joined group %s", h.username, message.Content))
		}

	case domain.TypeLeaveGroup:
		if err := h.service.LeaveGroup(h.username, message.Content); err != nil {
			h.reply(domain.TypeGroupLeaveFailed, err.Error())
		} else {
			h.reply(domain.TypeGroupLeft, fmt.Sprintf("user %s left group %s", h.username, message.Content))
		}

	case domain.TypeRequestUsersList:
		h.reply(domain.TypeUsersList, renderUsers(h.service.ListUsers()))

	case domain.TypeRequestGroupsList:
		h.reply(domain.TypeGroupsList, renderGroups(h.service.ListGroups()))

	case domain.TypeHeartbeat:
		// Client-side heartbeats carry no liveness policy here.

	case domain.TypeDisconnect:
		return false

	default:
		h.log.Warn("Unhandled message type", "user", h.username, "type", message.Type)
	}
	return true
}

func (h *clientHandler) writePump() {
	for message := range h.out {
		if err := h.conn.WriteJSON(message); err != nil {
			h.log.Warn("Write failed, dropping connection", "user", h.username, "error", err)
			_ = h.conn.Close()
			return
		}
	}
}

// reply pushes a server-originated frame to this client only.
func (h *clientHandler) reply(t domain.MessageType, content string) {
	message := domain.NewMessage(t, domain.ServerUser, h.username, content)
	if err := h.Send(message); err != nil {
		h.log.Warn("Reply dropped", "user", h.username, "type", t, "error", err)
	}
}

// cleanup runs on every exit path: the session entry goes away first, then
// the capability dies, then the socket closes.
func (h *clientHandler) cleanup() {
	if h.username != "" {
		h.service.Disconnect(h.username)
	}

	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.out)
	}
	h.mu.Unlock()

	_ = h.conn.Close()
}

func renderUsers(users []domain.User) string {
	var b strings.Builder
	b.WriteString("Available users:\n")
	for _, user := range users {
		b.WriteString(user.String())
		b.WriteString("\n")
	}
	return b.String()
}

func renderGroups(groups []*domain.Group) string {
	if len(groups) == 0 {
		return "No groups available"
	}
	var b strings.Builder
	b.WriteString("Available groups:\n")
	for _, group := range groups {
		b.WriteString(group.String())
		b.WriteString("\n")
	}
	return b.String()
}
