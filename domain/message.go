// Package domain contains core concepts of the chat system.
// This file defines Message values and their type taxonomy.
// Messages are immutable once constructed; routing works on copies.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	// Authentication
	TypeLogin        MessageType = "LOGIN"
	TypeLoginSuccess MessageType = "LOGIN_SUCCESS"
	TypeLoginFailed  MessageType = "LOGIN_FAILED"
	TypeDisconnect   MessageType = "DISCONNECT"

	// Text messages
	TypePrivateMessage MessageType = "PRIVATE_MESSAGE"
	TypeGroupMessage   MessageType = "GROUP_MESSAGE"

	// Group management
	TypeCreateGroup       MessageType = "CREATE_GROUP"
	TypeGroupCreated      MessageType = "GROUP_CREATED"
	TypeGroupCreateFailed MessageType = "GROUP_CREATE_FAILED"
	TypeJoinGroup         MessageType = "JOIN_GROUP"
	TypeGroupJoined       MessageType = "GROUP_JOINED"
	TypeGroupJoinFailed   MessageType = "GROUP_JOIN_FAILED"
	TypeLeaveGroup        MessageType = "LEAVE_GROUP"
	TypeGroupLeft         MessageType = "GROUP_LEFT"
	TypeGroupLeaveFailed  MessageType = "GROUP_LEAVE_FAILED"

	// Files
	TypeFileMessage  MessageType = "FILE_MESSAGE"
	TypeFileGroup    MessageType = "FILE_GROUP"
	TypeFileReceived MessageType = "FILE_RECEIVED"

	// Server information
	TypeUsersList         MessageType = "USERS_LIST"
	TypeGroupsList        MessageType = "GROUPS_LIST"
	TypeRequestUsersList  MessageType = "REQUEST_USERS_LIST"
	TypeRequestGroupsList MessageType = "REQUEST_GROUPS_LIST"

	// System
	TypeServerMessage MessageType = "SERVER_MESSAGE"
	TypeErrorMessage  MessageType = "ERROR_MESSAGE"
	TypeHeartbeat     MessageType = "HEARTBEAT"
)

// ServerUser is the sender name used for every system-generated reply.
const ServerUser = "SERVER"

// Message represents a single chat frame exchanged with clients.
// FileData is base64-encoded on the wire by encoding/json.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	Type      MessageType `json:"type"`
	From      string      `json:"from"`
	To        string      `json:"to"`
	Content   string      `json:"content"`
	FileName  string      `json:"fileName,omitempty"`
	FileData  []byte      `json:"fileData,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewMessage(t MessageType, from, to, content string) Message {
	return Message{
		ID:        uuid.New(),
		Type:      t,
		From:      from,
		To:        to,
		Content:   content,
		Timestamp: time.Now(),
	}
}

func NewFileMessage(t MessageType, from, to, fileName string, data []byte) Message {
	m := NewMessage(t, from, to, "")
	m.FileName = fileName
	m.FileData = data
	return m
}

// WithFrom returns a copy of the message with a rewritten sender.
// Group fan-out uses it to stamp the "sender@group" provenance tag on a
// per-recipient copy instead of mutating the shared original.
func (m Message) WithFrom(from string) Message {
	m.From = from
	return m
}

// WithContent returns a copy carrying replacement text, the original
// message stays untouched.
func (m Message) WithContent(content string) Message {
	m.Content = content
	return m
}

func (m Message) HasAttachment() bool {
	return len(m.FileData) > 0
}
