// Package services implements the delivery router: for every inbound
// message it decides who may see it, whether it is pushed now or queued,
// and keeps session, group and queue state consistent under concurrent
// access from the connection workers.
package services

import (
	goerrors "errors"
	"fmt"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/SergioBarbosa7/socket-chat/contract"
	"github.com/SergioBarbosa7/socket-chat/domain"
	"github.com/SergioBarbosa7/socket-chat/errors"
	"github.com/SergioBarbosa7/socket-chat/moderation"
	"github.com/SergioBarbosa7/socket-chat/repositories"
)

type IChatService interface {
	Login(username string, conn contract.Connection) error
	Disconnect(username string)
	SendPrivate(message domain.Message) error
	SendGroup(message domain.Message) error
	SendFile(message domain.Message) error
	CreateGroup(creator, name string) error
	JoinGroup(username, name string) error
	LeaveGroup(username, name string) error
	ListUsers() []domain.User
	ListGroups() []*domain.Group
}

// ChatService orchestrates the session manager, group registry and offline
// queue. Every call is a one-shot decision tree executed synchronously on
// the calling connection worker; all returned errors are recoverable and
// mapped to reply frames by the transport.
type ChatService struct {
	sessions  contract.ISessionManager
	groups    contract.IGroupRegistry
	offline   contract.IOfflineQueue
	history   repositories.IHistoryRepository
	moderator *moderation.Moderator
	validate  *validator.Validate
	log       *slog.Logger
}

// NewChatService wires the router. history and moderator are optional, nil
// disables the delivery audit log and the censor pass respectively.
func NewChatService(
	sessions contract.ISessionManager,
	groups contract.IGroupRegistry,
	offline contract.IOfflineQueue,
	history repositories.IHistoryRepository,
	moderator *moderation.Moderator,
	log *slog.Logger,
) *ChatService {
	return &ChatService{
		sessions:  sessions,
		groups:    groups,
		offline:   offline,
		history:   history,
		moderator: moderator,
		validate:  validator.New(),
		log:       log,
	}
}

// Login registers the connection as the user's single live session and then
// flushes whatever queued up while the user was away.
func (s *ChatService) Login(username string, conn contract.Connection) error {
	if err := s.validate.Struct(domain.LoginCommand{Username: username}); err != nil {
		return err
	}
	if err := s.sessions.Register(username, conn); err != nil {
		return err
	}
	s.flushOffline(username)
	return nil
}

// Disconnect tears the session down. Safe to call on every exit path, a
// second call for the same username is a no-op.
func (s *ChatService) Disconnect(username string) {
	s.sessions.Unregister(username)
}

// SendPrivate routes a one-to-one message: push if the recipient is online,
// queue if known but offline, fail if the name was never seen.
func (s *ChatService) SendPrivate(message domain.Message) error {
	return s.deliverToUser(message.To, s.moderate(message))
}

// SendGroup authorizes the sender against the group, stamps the
// "sender@group" provenance tag on a copy and fans the copy out to every
// member except the sender. Each recipient gets its own value copy, the
// original is never touched.
func (s *ChatService) SendGroup(message domain.Message) error {
	group, err := s.groups.FindWithMember(message.To, message.From)
	if err != nil {
		return err
	}

	tagged := s.moderate(message).WithFrom(fmt.Sprintf("%s@%s", message.From, group.Name))

	var failures []error
	for _, member := range group.Members() {
		if member == message.From {
			continue
		}
		if err := s.deliverToUser(member, tagged); err != nil {
			s.log.Warn("Group fan-out delivery failed", "group", group.Name, "member", member, "error", err)
			failures = append(failures, fmt.Errorf("%s: %w", member, err))
		}
	}
	return goerrors.Join(failures...)
}

// SendFile validates the attachment and then routes it exactly like a text
// message: FILE_GROUP fans out through the group path, anything else goes
// through the private path.
func (s *ChatService) SendFile(message domain.Message) error {
	cmd := domain.SendFileCommand{
		From:     message.From,
		To:       message.To,
		FileName: message.FileName,
		Data:     message.FileData,
	}
	if err := s.validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %s", errors.ErrInvalidFilePayload, err)
	}

	detected := mimetype.Detect(message.FileData)
	s.log.Info("Routing file attachment",
		"from", message.From, "to", message.To,
		"file", message.FileName, "mime", detected.String(), "size", len(message.FileData))

	if message.Type == domain.TypeFileGroup {
		return s.SendGroup(message)
	}
	return s.deliverToUser(message.To, message)
}

func (s *ChatService) CreateGroup(creator, name string) error {
	if err := s.validate.Struct(domain.CreateGroupCommand{Creator: creator, Name: name}); err != nil {
		return err
	}
	return s.groups.Create(name, creator)
}

// JoinGroup adds a registered user to a group. Membership never requires
// being online, only being known to the directory.
func (s *ChatService) JoinGroup(username, name string) error {
	if err := s.validate.Struct(domain.MembershipCommand{Username: username, Group: name}); err != nil {
		return err
	}
	if _, err := s.sessions.IsOnline(username); err != nil {
		return err
	}
	return s.groups.Join(name, username)
}

func (s *ChatService) LeaveGroup(username, name string) error {
	if err := s.validate.Struct(domain.MembershipCommand{Username: username, Group: name}); err != nil {
		return err
	}
	return s.groups.Leave(name, username)
}

func (s *ChatService) ListUsers() []domain.User {
	return s.sessions.Users()
}

func (s *ChatService) ListGroups() []*domain.Group {
	return s.groups.List()
}

// deliverToUser is the shared per-recipient decision tree of the private and
// group paths.
func (s *ChatService) deliverToUser(recipient string, message domain.Message) error {
	online, err := s.sessions.IsOnline(recipient)
	if err != nil {
		return fmt.Errorf("%w: %s", errors.ErrUnknownRecipient, recipient)
	}

	if !online {
		s.offline.Enqueue(recipient, message)
		return nil
	}

	conn, ok := s.sessions.GetConnection(recipient)
	if !ok {
		// Lost the race with a disconnect between the online check and the
		// connection lookup.
		return fmt.Errorf("%w: %s", errors.ErrDeliveryFailed, recipient)
	}
	if err := conn.Send(message); err != nil {
		return fmt.Errorf("%w: %s: %s", errors.ErrDeliveryFailed, recipient, err)
	}

	s.recordDelivery(message, recipient)
	return nil
}

// flushOffline drains the queue right after a successful register and pushes
// the backlog in arrival order. If the connection vanishes mid-flush the
// remaining drained messages are dropped and logged, never re-queued.
func (s *ChatService) flushOffline(username string) {
	messages := s.offline.DrainAll(username)
	if len(messages) == 0 {
		return
	}
	s.log.Info("Delivering offline backlog", "user", username, "count", len(messages))

	for i, message := range messages {
		conn, ok := s.sessions.GetConnection(username)
		if !ok {
			s.log.Warn("Connection lost mid-flush, dropping remaining backlog",
				"user", username, "dropped", len(messages)-i)
			return
		}
		if err := conn.Send(message); err != nil {
			s.log.Warn("Offline flush send failed, dropping remaining backlog",
				"user", username, "dropped", len(messages)-i, "error", err)
			return
		}
		s.recordDelivery(message, username)
	}
}

// moderate returns a copy with censored text content. File payloads and
// empty contents pass through untouched.
func (s *ChatService) moderate(message domain.Message) domain.Message {
	if s.moderator == nil || message.Content == "" {
		return message
	}
	return message.WithContent(s.moderator.Censor(message.Content))
}

// recordDelivery appends to the audit log, best effort.
func (s *ChatService) recordDelivery(message domain.Message, recipient string) {
	if s.history == nil {
		return
	}
	if err := s.history.StoreDelivery(repositories.FromMessage(message, recipient)); err != nil {
		s.log.Error("Failed to store delivery record", "recipient", recipient, "error", err)
	}
}
