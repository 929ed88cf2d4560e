package users

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and local runs.
// It is not intended for production use.
type MemoryStore struct {
	mu    sync.Mutex
	byID  map[string]User
	roles map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]User),
		roles: make(map[string][]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.byID {
		if existing.Username == u.Username {
			return ErrUsernameTaken
		}
		if u.Email != "" && existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	s.byID[u.ID] = u
	return nil
}

func (s *MemoryStore) ByID(ctx context.Context, id string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) ByUsername(ctx context.Context, username string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *MemoryStore) ByEmail(ctx context.Context, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (s *MemoryStore) List(ctx context.Context) ([]User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *MemoryStore) Update(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[u.ID]; !ok {
		return ErrNotFound
	}
	s.byID[u.ID] = u
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	delete(s.roles, id)
	return nil
}

func (s *MemoryStore) Roles(ctx context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[userID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]string, len(s.roles[userID]))
	copy(out, s.roles[userID])
	return out, nil
}

func (s *MemoryStore) AddRole(ctx context.Context, userID, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[userID]; !ok {
		return ErrNotFound
	}
	for _, r := range s.roles[userID] {
		if r == role {
			return nil
		}
	}
	s.roles[userID] = append(s.roles[userID], role)
	return nil
}

func (s *MemoryStore) SetPasswordHash(ctx context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = hash
	s.byID[userID] = u
	return nil
}

func (s *MemoryStore) ConfirmEmail(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return ErrNotFound
	}
	u.EmailConfirmed = true
	s.byID[userID] = u
	return nil
}

// MemoryTokenStore is an in-memory TokenStore for tests and local runs.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]string)}
}

// Mint replaces any outstanding token for the user.
func (s *MemoryTokenStore) Mint(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[userID] = token
	return token, nil
}

func (s *MemoryTokenStore) Consume(ctx context.Context, userID, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || s.tokens[userID] != token {
		return false, nil
	}
	delete(s.tokens, userID)
	return true, nil
}
