package domain

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/SergioBarbosa7/socket-chat/errors"
)

// Group is an ad-hoc channel owned by the group registry. The member set is
// not internally synchronized, callers serialize access per group name.
type Group struct {
	Name      string
	Creator   string
	CreatedAt time.Time
	members   map[string]struct{}
}

// NewGroup creates a group whose initial member set is the creator alone.
func NewGroup(name, creator string) *Group {
	return &Group{
		Name:      name,
		Creator:   creator,
		CreatedAt: time.Now(),
		members:   map[string]struct{}{creator: {}},
	}
}

func (g *Group) AddMember(username string) error {
	if _, ok := g.members[username]; ok {
		return errors.ErrAlreadyMember
	}
	g.members[username] = struct{}{}
	return nil
}

func (g *Group) RemoveMember(username string) error {
	if _, ok := g.members[username]; !ok {
		return errors.ErrNotMember
	}
	delete(g.members, username)
	return nil
}

func (g *Group) HasMember(username string) bool {
	_, ok := g.members[username]
	return ok
}

func (g *Group) IsEmpty() bool {
	return len(g.members) == 0
}

func (g *Group) Size() int {
	return len(g.members)
}

// Members returns an unordered snapshot of the member set.
func (g *Group) Members() []string {
	return lo.Keys(g.members)
}

// Clone returns a detached copy safe to read outside the registry lock.
func (g *Group) Clone() *Group {
	clone := &Group{
		Name:      g.Name,
		Creator:   g.Creator,
		CreatedAt: g.CreatedAt,
		members:   make(map[string]struct{}, len(g.members)),
	}
	for member := range g.members {
		clone.members[member] = struct{}{}
	}
	return clone
}

func (g *Group) String() string {
	return fmt.Sprintf("Group '%s' (%d members) - created by %s", g.Name, len(g.members), g.Creator)
}
