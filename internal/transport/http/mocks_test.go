package http

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"venturevet/internal/auth"
)

// memAuthStorage is an in-memory auth.Storage honoring the interface's
// uniqueness and sentinel-error contracts, so handler tests exercise the
// real service stack.
type memAuthStorage struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*auth.User
	byEmail map[string]uuid.UUID
	hashes  map[uuid.UUID][]byte
	links   map[string]uuid.UUID
}

func newMemAuthStorage() *memAuthStorage {
	return &memAuthStorage{
		users:   make(map[uuid.UUID]*auth.User),
		byEmail: make(map[string]uuid.UUID),
		hashes:  make(map[uuid.UUID][]byte),
		links:   make(map[string]uuid.UUID),
	}
}

func (s *memAuthStorage) CreateUser(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return auth.ErrEmailAlreadyExists
	}
	u := *user
	s.users[u.ID] = &u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *memAuthStorage) GetUserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *memAuthStorage) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

func (s *memAuthStorage) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		delete(s.byEmail, user.Email)
		delete(s.users, id)
		delete(s.hashes, id)
	}
	return nil
}

func (s *memAuthStorage) StorePasswordHash(_ context.Context, userID uuid.UUID, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[userID] = hash
	return nil
}

func (s *memAuthStorage) GetPasswordHash(_ context.Context, userID uuid.UUID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return nil, auth.ErrUserNotFound
	}
	hash, ok := s.hashes[userID]
	if !ok || len(hash) == 0 {
		return nil, auth.ErrNoPassword
	}
	return hash, nil
}

func (s *memAuthStorage) StoreOAuthLink(_ context.Context, link *auth.OAuthLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := link.Provider + "|" + link.ProviderUserID
	if _, exists := s.links[key]; exists {
		return auth.ErrLinkExists
	}
	s.links[key] = link.UserID
	return nil
}

func (s *memAuthStorage) GetUserByOAuth(_ context.Context, provider, providerUserID string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.links[provider+"|"+providerUserID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

var _ auth.Storage = (*memAuthStorage)(nil)

// memStateStore is an in-memory single-use auth.StateStore.
type memStateStore struct {
	mu     sync.Mutex
	states map[string]struct{}
}

func newMemStateStore() *memStateStore {
	return &memStateStore{states: make(map[string]struct{})}
}

func (s *memStateStore) StoreState(_ context.Context, state string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = struct{}{}
	return nil
}

func (s *memStateStore) ConsumeState(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[state]; !ok {
		return auth.ErrStateNotFound
	}
	delete(s.states, state)
	return nil
}

var _ auth.StateStore = (*memStateStore)(nil)

// stubAdapter is a canned auth.ProviderAdapter for callback tests.
type stubAdapter struct {
	provider string
	profile  auth.ProviderProfile
	err      error
}

func (a *stubAdapter) ProviderID() string { return a.provider }

func (a *stubAdapter) AuthURL(state string) string {
	return "https://provider.example/auth?state=" + state
}

func (a *stubAdapter) ResolveProfile(_ context.Context, _ string) (auth.ProviderProfile, error) {
	if a.err != nil {
		return auth.ProviderProfile{}, a.err
	}
	return a.profile, nil
}

var _ auth.ProviderAdapter = (*stubAdapter)(nil)
