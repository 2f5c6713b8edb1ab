package group

import (
	"context"
	"errors"

	"github.com/callboard-app/callboard/pkg/user"
	"github.com/google/uuid"
)

var ErrNotAMember = errors.New("user is not a member of the group")

type Service interface {
	CreateGroup(ctx context.Context, name string) (Group, error)
	GetGroup(ctx context.Context, groupUid string) (Group, error)
	AddMember(ctx context.Context, groupUid string, userId int, role string) error
	ListMembers(ctx context.Context, groupUid string) ([]Member, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

// CreateGroup creates the group and enrolls the creator as its first member.
func (s *ServiceImpl) CreateGroup(ctx context.Context, name string) (Group, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Group{}, err
	}
	created, err := s.repo.CreateGroup(ctx, Group{Uid: uuid.NewString(), Name: name})
	if err != nil {
		return Group{}, err
	}
	if err := s.repo.AddMember(ctx, created.Id, userId, "admin"); err != nil {
		return Group{}, err
	}
	return created, nil
}

func (s *ServiceImpl) GetGroup(ctx context.Context, groupUid string) (Group, error) {
	return s.repo.GetGroupByUid(ctx, groupUid)
}

func (s *ServiceImpl) AddMember(ctx context.Context, groupUid string, userId int, role string) error {
	g, err := s.requireMembership(ctx, groupUid)
	if err != nil {
		return err
	}
	return s.repo.AddMember(ctx, g.Id, userId, role)
}

func (s *ServiceImpl) ListMembers(ctx context.Context, groupUid string) ([]Member, error) {
	g, err := s.requireMembership(ctx, groupUid)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, g.Id)
}

func (s *ServiceImpl) requireMembership(ctx context.Context, groupUid string) (Group, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Group{}, err
	}
	g, err := s.repo.GetGroupByUid(ctx, groupUid)
	if err != nil {
		return Group{}, err
	}
	isMember, err := s.repo.IsMember(ctx, g.Id, userId)
	if err != nil {
		return Group{}, err
	}
	if !isMember {
		return Group{}, ErrNotAMember
	}
	return g, nil
}
