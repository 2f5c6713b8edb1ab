package notification

import (
	"context"
	"errors"

	"github.com/callboard-app/callboard/pkg/group"
	"github.com/callboard-app/callboard/pkg/user"
)

var ErrNotAMember = errors.New("user is not a member of the group")

type Service interface {
	GetPreferences(ctx context.Context, groupUid string) (Preferences, error)
	UpdatePreferences(ctx context.Context, groupUid string, prefs Preferences) (Preferences, error)
}

type ServiceImpl struct {
	repo      Repository
	groupRepo group.Repository
}

func NewService(repo Repository, groupRepo group.Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo, groupRepo: groupRepo}
}

func (s *ServiceImpl) GetPreferences(ctx context.Context, groupUid string) (Preferences, error) {
	userId, g, err := s.resolve(ctx, groupUid)
	if err != nil {
		return Preferences{}, err
	}
	return s.repo.GetPreferences(ctx, userId, g.Id)
}

func (s *ServiceImpl) UpdatePreferences(ctx context.Context, groupUid string, prefs Preferences) (Preferences, error) {
	userId, g, err := s.resolve(ctx, groupUid)
	if err != nil {
		return Preferences{}, err
	}
	if err := s.repo.SavePreferences(ctx, userId, g.Id, prefs); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

func (s *ServiceImpl) resolve(ctx context.Context, groupUid string) (int, group.Group, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, group.Group{}, err
	}
	g, err := s.groupRepo.GetGroupByUid(ctx, groupUid)
	if err != nil {
		return 0, group.Group{}, err
	}
	isMember, err := s.groupRepo.IsMember(ctx, g.Id, userId)
	if err != nil {
		return 0, group.Group{}, err
	}
	if !isMember {
		return 0, group.Group{}, ErrNotAMember
	}
	return userId, g, nil
}
