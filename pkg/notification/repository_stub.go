package notification

import (
	"context"
	"sync"
)

type prefsKey struct {
	userId  int
	groupId int
}

type RepositoryStub struct {
	mu    sync.RWMutex
	prefs map[prefsKey]Preferences
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{prefs: make(map[prefsKey]Preferences)}
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs = make(map[prefsKey]Preferences)
}

func (r *RepositoryStub) GetPreferences(ctx context.Context, userId int, groupId int) (Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.prefs[prefsKey{userId, groupId}]; ok {
		return p, nil
	}
	return DefaultPreferences(), nil
}

func (r *RepositoryStub) SavePreferences(ctx context.Context, userId int, groupId int, prefs Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs[prefsKey{userId, groupId}] = prefs
	return nil
}
