// Package group manages ad-hoc channels and their membership invariants.
package group

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"github.com/SergioBarbosa7/socket-chat/domain"
	"github.com/SergioBarbosa7/socket-chat/errors"
)

// Registry maps a group name to its live state. Create, join and leave are
// atomic per registry: the membership mutation and the empty-check-and-delete
// happen under one lock, so an empty group is never externally visible.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]*domain.Group
	log    *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		groups: make(map[string]*domain.Group),
		log:    log,
	}
}

// Create registers a fresh group whose only member is the creator. A name
// freed by emptying-and-deletion may be reused, the new group is unrelated
// to the prior one.
func (r *Registry) Create(name, creator string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.groups[name]; ok {
		return fmt.Errorf("%w: %s", errors.ErrGroupAlreadyExists, name)
	}
	r.groups[name] = domain.NewGroup(name, creator)

	r.log.Info("Group created", "group", name, "creator", creator)
	return nil
}

func (r *Registry) Join(name, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[name]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrGroupNotFound, name)
	}
	if err := group.AddMember(username); err != nil {
		return fmt.Errorf("%w: %s", err, username)
	}

	r.log.Info("Member joined group", "group", name, "user", username)
	return nil
}

// Leave removes a member. Emptying the member set deletes the group in the
// same critical section.
func (r *Registry) Leave(name, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	group, ok := r.groups[name]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrGroupNotFound, name)
	}
	if err := group.RemoveMember(username); err != nil {
		return fmt.Errorf("%w: %s", err, username)
	}
	if group.IsEmpty() {
		delete(r.groups, name)
		r.log.Info("Group emptied and removed", "group", name)
	}
	return nil
}

// FindWithMember authorizes a group send: the group must exist and username
// must be in its member set. The returned group is a detached copy safe to
// iterate outside the registry lock.
func (r *Registry) FindWithMember(name, username string) (*domain.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.groups[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrGroupNotFound, name)
	}
	if !group.HasMember(username) {
		return nil, fmt.Errorf("%w: %s", errors.ErrNotMember, username)
	}
	return group.Clone(), nil
}

// List returns detached copies of every live group, order unspecified.
func (r *Registry) List() []*domain.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.MapToSlice(r.groups, func(_ string, group *domain.Group) *domain.Group {
		return group.Clone()
	})
}
