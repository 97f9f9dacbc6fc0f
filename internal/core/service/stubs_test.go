package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skatepark/skater-profiles/internal/core/domain"
	"github.com/skatepark/skater-profiles/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository with copy-on-begin transactions
// ---------------------------------------------------------------------------

type stubSkaterRepo struct {
	mu      sync.Mutex
	skaters map[int64]*domain.Skater
	admins  map[int64]bool
	nextID  int64

	commitErr error // if set, WithinTx fails at commit time
	insertErr error // if set, Insert returns this error
}

func newStubSkaterRepo() *stubSkaterRepo {
	return &stubSkaterRepo{
		skaters: make(map[int64]*domain.Skater),
		admins:  make(map[int64]bool),
	}
}

func cloneSkater(s *domain.Skater) *domain.Skater {
	if s == nil {
		return nil
	}
	clone := *s
	return &clone
}

func (r *stubSkaterRepo) WithinTx(_ context.Context, fn func(tx ports.SkaterTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &stubTx{repo: r, skaters: make(map[int64]*domain.Skater, len(r.skaters)), nextID: r.nextID}
	for id, s := range r.skaters {
		tx.skaters[id] = cloneSkater(s)
	}

	if err := fn(tx); err != nil {
		return err
	}
	if r.commitErr != nil {
		return r.commitErr
	}
	r.skaters = tx.skaters
	r.nextID = tx.nextID
	return nil
}

func (r *stubSkaterRepo) withAdmin(s *domain.Skater) *domain.Skater {
	clone := cloneSkater(s)
	clone.Admin = r.admins[s.ID]
	return clone
}

func (r *stubSkaterRepo) FindByID(_ context.Context, id int64) (*domain.Skater, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.skaters[id]
	if !ok {
		return nil, domain.ErrSkaterNotFound
	}
	return r.withAdmin(s), nil
}

func (r *stubSkaterRepo) FindByEmail(_ context.Context, email string) (*domain.Skater, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.skaters {
		if s.Email == email {
			return r.withAdmin(s), nil
		}
	}
	return nil, domain.ErrSkaterNotFound
}

func (r *stubSkaterRepo) List(_ context.Context) ([]*domain.Skater, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Skater, 0, len(r.skaters))
	for _, s := range r.skaters {
		out = append(out, cloneSkater(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubSkaterRepo) Update(_ context.Context, s *domain.Skater) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.skaters[s.ID]; !ok {
		return domain.ErrSkaterNotFound
	}
	for id, other := range r.skaters {
		if id != s.ID && other.Email == s.Email {
			return domain.ErrDuplicateEmail
		}
	}
	r.skaters[s.ID] = cloneSkater(s)
	return nil
}

func (r *stubSkaterRepo) IsActiveAdmin(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.admins[id], nil
}

func (r *stubSkaterRepo) get(id int64) (*domain.Skater, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.skaters[id]
	return cloneSkater(s), ok
}

type stubTx struct {
	repo    *stubSkaterRepo
	skaters map[int64]*domain.Skater
	nextID  int64
}

func (t *stubTx) Insert(_ context.Context, s *domain.Skater) (int64, error) {
	if t.repo.insertErr != nil {
		return 0, t.repo.insertErr
	}
	for _, other := range t.skaters {
		if other.Email == s.Email {
			return 0, domain.ErrDuplicateEmail
		}
	}
	t.nextID++
	clone := cloneSkater(s)
	clone.ID = t.nextID
	t.skaters[clone.ID] = clone
	return clone.ID, nil
}

func (t *stubTx) FindForUpdate(_ context.Context, id int64) (*domain.Skater, error) {
	s, ok := t.skaters[id]
	if !ok {
		return nil, domain.ErrSkaterNotFound
	}
	return cloneSkater(s), nil
}

func (t *stubTx) SetPhoto(_ context.Context, id int64, photo string) error {
	s, ok := t.skaters[id]
	if !ok {
		return domain.ErrSkaterNotFound
	}
	s.Photo = photo
	return nil
}

func (t *stubTx) Delete(_ context.Context, id int64) error {
	if _, ok := t.skaters[id]; !ok {
		return domain.ErrSkaterNotFound
	}
	delete(t.skaters, id)
	return nil
}

func (t *stubTx) SetActive(_ context.Context, id int64, active bool) error {
	s, ok := t.skaters[id]
	if !ok {
		return domain.ErrSkaterNotFound
	}
	s.Active = active
	return nil
}

// ---------------------------------------------------------------------------
// Photo store, revocations and audit stubs
// ---------------------------------------------------------------------------

type stubPhotoStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	saveErr   error
	removeErr error
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{files: make(map[string][]byte)}
}

func (p *stubPhotoStore) Save(_ context.Context, name string, r io.Reader) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saveErr != nil {
		return p.saveErr
	}
	if _, exists := p.files[name]; exists {
		return fmt.Errorf("save %s: %w", name, fs.ErrExist)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	p.files[name] = data
	return nil
}

func (p *stubPhotoStore) Remove(_ context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.removeErr != nil {
		return p.removeErr
	}
	delete(p.files, name)
	return nil
}

func (p *stubPhotoStore) has(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.files[name]
	return ok
}

func (p *stubPhotoStore) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.files)
}

type stubRevocations struct {
	mu      sync.Mutex
	revoked map[int64]time.Duration
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[int64]time.Duration)}
}

func (r *stubRevocations) Revoke(_ context.Context, id int64, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[id] = ttl
	return nil
}

func (r *stubRevocations) IsRevoked(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[id]
	return ok, nil
}

type stubAudit struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (a *stubAudit) Publish(e domain.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *stubAudit) kinds() []domain.AuditKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuditKind, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Kind)
	}
	return out
}

func (a *stubAudit) has(kind domain.AuditKind) bool {
	for _, k := range a.kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func registerInput(email string) ports.RegisterInput {
	return ports.RegisterInput{
		Email:           email,
		Name:            "Ann",
		Password:        "x",
		YearsExperience: 3,
		Specialty:       "vert",
		ImageName:       "pic.png",
		Image:           bytes.NewReader([]byte("png-bytes")),
	}
}

var errBoom = errors.New("boom")

func sequentialPrefixes(prefixes ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		p := prefixes[i%len(prefixes)]
		i++
		return p
	}
}

func hasPrefix(s, prefix string) bool { return strings.HasPrefix(s, prefix) }
