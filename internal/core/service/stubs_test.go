package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/membership-site/internal/core/domain"
	"github.com/99minutos/membership-site/internal/infrastructure/hashing"
)

var errBackend = errors.New("backend down")

func quietLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func testHasher() *hashing.BcryptHasher {
	return hashing.NewBcryptHasher(bcrypt.MinCost)
}

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	saves   int
	findErr error
	saveErr error
	hashErr error
	// afterFind runs once FindByEmail has copied the record, outside the lock.
	afterFind func()
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	if r.findErr != nil {
		r.mu.Unlock()
		return nil, r.findErr
	}
	u, ok := r.users[key(email)]
	found := cloneUser(u)
	hook := r.afterFind
	r.mu.Unlock()

	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if hook != nil {
		hook()
	}
	return found, nil
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(user.Email)
	if _, exists := r.users[k]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	copy.Email = k
	copy.ID = fmt.Sprintf("u%d", len(r.users)+1)
	r.users[k] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) Save(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	copy := cloneUser(user)
	copy.Email = key(user.Email)
	r.users[copy.Email] = copy
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, email string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[key(email)]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, email, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hashErr != nil {
		return r.hashErr
	}
	u, ok := r.users[key(email)]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) get(email string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[key(email)])
}

type stubSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]domain.SessionClaim
	next      int
	createErr error
	readErr   error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.SessionClaim)}
}

func (s *stubSessionStore) Create(_ context.Context, claim domain.SessionClaim) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	s.next++
	id := fmt.Sprintf("sid-%d", s.next)
	s.sessions[id] = claim
	return id, nil
}

func (s *stubSessionStore) Read(_ context.Context, id string) (*domain.SessionClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	claim, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &claim, nil
}

func (s *stubSessionStore) Destroy(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *stubSessionStore) has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}
