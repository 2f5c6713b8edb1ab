package group

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrGroupNotFound = errors.New("group not found")

type Repository interface {
	CreateGroup(ctx context.Context, group Group) (Group, error)
	GetGroupByUid(ctx context.Context, uid string) (Group, error)
	AddMember(ctx context.Context, groupId int, userId int, role string) error
	// ListMembers returns the group's members in joining order. Aggregation
	// and notification audiences both iterate this order.
	ListMembers(ctx context.Context, groupId int) ([]Member, error)
	IsMember(ctx context.Context, groupId int, userId int) (bool, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) CreateGroup(ctx context.Context, group Group) (Group, error) {
	query := `INSERT INTO groups (uid, name) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRow(ctx, query, group.Uid, group.Name).Scan(&group.Id); err != nil {
		log.Errorf("failed to create group: %v", err)
		return Group{}, err
	}
	return group, nil
}

func (r *RepositoryImpl) GetGroupByUid(ctx context.Context, uid string) (Group, error) {
	query := `SELECT id, uid, name FROM groups WHERE uid = $1`
	var group Group
	err := r.db.QueryRow(ctx, query, uid).Scan(&group.Id, &group.Uid, &group.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrGroupNotFound
	} else if err != nil {
		log.Errorf("failed to get group: %v", err)
		return Group{}, err
	}
	return group, nil
}

func (r *RepositoryImpl) AddMember(ctx context.Context, groupId int, userId int, role string) error {
	query := `INSERT INTO group_member (group_id, user_id, role) VALUES ($1, $2, $3)
				ON CONFLICT (group_id, user_id) DO UPDATE SET role = EXCLUDED.role`
	if _, err := r.db.Exec(ctx, query, groupId, userId, role); err != nil {
		log.Errorf("failed to add group member: %v", err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) ListMembers(ctx context.Context, groupId int) ([]Member, error) {
	query := `SELECT m.user_id, u.display_name, u.email, u.timezone, m.role
				FROM group_member m
				JOIN users u ON u.id = m.user_id
				WHERE m.group_id = $1
				ORDER BY m.joined_at, m.user_id`
	rows, err := r.db.Query(ctx, query, groupId)
	if err != nil {
		log.Errorf("failed to list group members: %v", err)
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserId, &m.DisplayName, &m.Email, &m.Timezone, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *RepositoryImpl) IsMember(ctx context.Context, groupId int, userId int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM group_member WHERE group_id = $1 AND user_id = $2)`
	var isMember bool
	if err := r.db.QueryRow(ctx, query, groupId, userId).Scan(&isMember); err != nil {
		log.Errorf("failed to check group membership: %v", err)
		return false, err
	}
	return isMember, nil
}
