package group

import (
	"context"
	"sync"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	groups  map[int]Group
	members map[int][]Member // groupId -> members in joining order
	nextId  int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		groups:  make(map[int]Group),
		members: make(map[int][]Member),
		nextId:  1,
	}
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = make(map[int]Group)
	r.members = make(map[int][]Member)
	r.nextId = 1
}

func (r *RepositoryStub) CreateGroup(ctx context.Context, group Group) (Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	group.Id = r.nextId
	r.nextId++
	r.groups[group.Id] = group
	return group, nil
}

func (r *RepositoryStub) GetGroupByUid(ctx context.Context, uid string) (Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.groups {
		if g.Uid == uid {
			return g, nil
		}
	}
	return Group{}, ErrGroupNotFound
}

func (r *RepositoryStub) AddMember(ctx context.Context, groupId int, userId int, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members[groupId] {
		if m.UserId == userId {
			r.members[groupId][i].Role = role
			return nil
		}
	}
	r.members[groupId] = append(r.members[groupId], Member{UserId: userId, Role: role})
	return nil
}

// SetMembers replaces a group's member list, preserving the given order.
func (r *RepositoryStub) SetMembers(groupId int, members []Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[groupId] = append([]Member(nil), members...)
}

func (r *RepositoryStub) ListMembers(ctx context.Context, groupId int) ([]Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Member(nil), r.members[groupId]...), nil
}

func (r *RepositoryStub) IsMember(ctx context.Context, groupId int, userId int) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members[groupId] {
		if m.UserId == userId {
			return true, nil
		}
	}
	return false, nil
}
