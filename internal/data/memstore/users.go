package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"event-booking/internal/data/entity"
	"event-booking/internal/data/repository"

	"github.com/google/uuid"
)

type userRepo struct {
	s *Store
}

func cloneUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *userRepo) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return cloneUser(r.s.users[id]), nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *userRepo) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s not found", user.ID)
	}
	updated := cloneUser(user)
	updated.Email = current.Email
	updated.CreatedAt = current.CreatedAt
	r.s.users[user.ID] = updated
	return nil
}

type sessionRepo struct {
	s *Store
}

func cloneSession(s *entity.Session) *entity.Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.RevokedAt != nil {
		t := *s.RevokedAt
		c.RevokedAt = &t
	}
	return &c
}

func (r *sessionRepo) Create(ctx context.Context, session *entity.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (r *sessionRepo) FindValidSession(ctx context.Context, id uuid.UUID, now time.Time) (*entity.Session, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.sessions[id]
	if !ok || !s.Valid(now) {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (r *sessionRepo) Revoke(ctx context.Context, id uuid.UUID, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	s, ok := r.s.sessions[id]
	if !ok || s.RevokedAt != nil {
		return fmt.Errorf("session not found or already revoked")
	}
	t := now
	s.RevokedAt = &t
	return nil
}

func (r *sessionRepo) CleanExpiredSessions(ctx context.Context, before time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, s := range r.s.sessions {
		if s.ExpiresAt.Before(before) {
			delete(r.s.sessions, id)
		}
	}
	return nil
}
