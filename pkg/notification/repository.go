package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// GetPreferences returns the stored preferences for the user in the
	// group, or the defaults when nothing has been saved yet.
	GetPreferences(ctx context.Context, userId int, groupId int) (Preferences, error)
	SavePreferences(ctx context.Context, userId int, groupId int, prefs Preferences) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetPreferences(ctx context.Context, userId int, groupId int) (Preferences, error) {
	var doc []byte
	err := r.db.QueryRow(ctx,
		"SELECT preferences FROM notification_preferences WHERE user_id = $1 AND group_id = $2",
		userId, groupId,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultPreferences(), nil
	}
	if err != nil {
		log.Errorf("Error fetching notification preferences: %v", err)
		return Preferences{}, fmt.Errorf("fetching notification preferences: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal(doc, &prefs); err != nil {
		log.Errorf("Error decoding notification preferences: %v", err)
		return Preferences{}, fmt.Errorf("decoding notification preferences: %w", err)
	}
	return prefs, nil
}

func (r *RepositoryImpl) SavePreferences(ctx context.Context, userId int, groupId int, prefs Preferences) error {
	doc, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding notification preferences: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO notification_preferences (user_id, group_id, preferences)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, group_id) DO UPDATE SET preferences = EXCLUDED.preferences`,
		userId, groupId, doc,
	)
	if err != nil {
		log.Errorf("Error saving notification preferences: %v", err)
		return fmt.Errorf("saving notification preferences: %w", err)
	}
	return nil
}
