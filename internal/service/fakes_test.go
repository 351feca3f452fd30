package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dtroode/signalements-server/internal/model"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// memLocks mirrors the single-statement upsert of the relational store.
type memLocks struct {
	mu   sync.Mutex
	rows map[string]model.AccountLock
}

func newMemLocks() *memLocks {
	return &memLocks{rows: map[string]model.AccountLock{}}
}

func (m *memLocks) Get(_ context.Context, identity string) (model.AccountLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.rows[identity]
	if !ok {
		return model.AccountLock{}, model.ErrNotFound
	}
	return lock, nil
}

func (m *memLocks) RegisterFailure(_ context.Context, identity string, maxAttempts int, lockUntil time.Time) (model.AccountLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock := m.rows[identity]
	lock.Identity = identity
	lock.FailedAttempts++
	if lock.FailedAttempts >= maxAttempts {
		until := lockUntil
		lock.Locked = true
		lock.LockedUntil = &until
	}
	m.rows[identity] = lock
	return lock, nil
}

func (m *memLocks) Delete(_ context.Context, identity string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, identity)
	return nil
}

func (m *memLocks) ListLocked(_ context.Context, now time.Time) ([]model.AccountLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.AccountLock
	for _, lock := range m.rows {
		if lock.ActiveAt(now) {
			out = append(out, lock)
		}
	}
	return out, nil
}

type memAttempts struct {
	mu   sync.Mutex
	rows []model.LoginAttempt
}

func (m *memAttempts) Append(_ context.Context, a model.LoginAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, a)
	return nil
}

func (m *memAttempts) outcomes(identity string) []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []bool
	for _, a := range m.rows {
		if a.Identity == identity {
			out = append(out, a.Success)
		}
	}
	return out
}

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.User
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{rows: map[int64]model.User{}}
	for _, u := range users {
		if u.ID > m.nextID {
			m.nextID = u.ID
		}
		m.rows[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) Create(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	if len(u.Roles) == 0 {
		u.Roles = []string{model.RoleUser}
	}
	m.rows[u.ID] = u
	return u, nil
}

func (m *memUsers) Update(_ context.Context, u model.User) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[u.ID]; !ok {
		return model.User{}, model.ErrNotFound
	}
	m.rows[u.ID] = u
	return u, nil
}

func (m *memUsers) SetFirebaseUID(_ context.Context, id int64, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return model.ErrNotFound
	}
	u.FirebaseUID = &uid
	m.rows[id] = u
	return nil
}

type memTypes struct {
	mu      sync.Mutex
	rows    map[int64]model.SignalementType
	resyncs int
}

func newMemTypes(types ...model.SignalementType) *memTypes {
	m := &memTypes{rows: map[int64]model.SignalementType{}}
	for _, t := range types {
		m.rows[t.ID] = t
	}
	return m
}

func (m *memTypes) GetByID(_ context.Context, id int64) (model.SignalementType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok {
		return model.SignalementType{}, model.ErrNotFound
	}
	return t, nil
}

func (m *memTypes) UpsertByID(_ context.Context, t model.SignalementType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.ID] = t
	return nil
}

func (m *memTypes) ResyncSequence(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resyncs++
	return nil
}

type memSignalements struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Signalement
	saves  int
}

func newMemSignalements() *memSignalements {
	return &memSignalements{rows: map[int64]model.Signalement{}}
}

func (m *memSignalements) GetByFirebaseID(_ context.Context, fid string) (model.Signalement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.rows {
		if s.FirebaseID != nil && *s.FirebaseID == fid {
			return s, nil
		}
	}
	return model.Signalement{}, model.ErrNotFound
}

func (m *memSignalements) Save(_ context.Context, s model.Signalement) (model.Signalement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if s.ID == 0 {
		m.nextID++
		s.ID = m.nextID
	}
	m.rows[s.ID] = s
	return s, nil
}

func (m *memSignalements) all() []model.Signalement {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Signalement, 0, len(m.rows))
	for _, s := range m.rows {
		out = append(out, s)
	}
	return out
}

type memProblemes struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]model.Probleme
}

func newMemProblemes() *memProblemes {
	return &memProblemes{rows: map[int64]model.Probleme{}}
}

func (m *memProblemes) GetByFirebaseID(_ context.Context, fid string) (model.Probleme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if p.FirebaseID != nil && *p.FirebaseID == fid {
			return p, nil
		}
	}
	return model.Probleme{}, model.ErrNotFound
}

func (m *memProblemes) Save(_ context.Context, p model.Probleme) (model.Probleme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == 0 {
		m.nextID++
		p.ID = m.nextID
	}
	m.rows[p.ID] = p
	return p, nil
}

// memDocs serves fixed collections; types are filtered on isActive.
type memDocs struct {
	mu          sync.Mutex
	collections map[string][]model.Document
	fetchErr    map[string]error
	sets        map[string]map[string]any
}

func newMemDocs() *memDocs {
	return &memDocs{
		collections: map[string][]model.Document{},
		fetchErr:    map[string]error{},
		sets:        map[string]map[string]any{},
	}
}

func (m *memDocs) GetAll(ctx context.Context, collection string) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fetchErr[collection]; err != nil {
		return nil, err
	}
	return append([]model.Document(nil), m.collections[collection]...), nil
}

func (m *memDocs) Get(_ context.Context, collection, id string) (model.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.collections[collection] {
		if d.ID == id {
			return d, nil
		}
	}
	return model.Document{}, model.ErrNotFound
}

func (m *memDocs) WhereEqual(ctx context.Context, collection, field string, value any) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fetchErr[collection]; err != nil {
		return nil, err
	}
	var out []model.Document
	for _, d := range m.collections[collection] {
		if d.Data[field] == value {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocs) Set(_ context.Context, collection, id string, data map[string]any, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets[collection+"/"+id] = data
	return nil
}

func (m *memDocs) Update(_ context.Context, _, _ string, _ map[string]any) error {
	return nil
}

func (m *memDocs) Delete(_ context.Context, _, _ string) error {
	return nil
}

type memPending struct {
	mu   sync.Mutex
	rows []model.PendingSync
}

func (m *memPending) Enqueue(_ context.Context, e model.PendingSync) (model.PendingSync, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, e)
	return e, nil
}

func (m *memPending) CountPending(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

// staticProbe reports a switchable connectivity state.
type staticProbe struct {
	mu     sync.Mutex
	online bool
}

func (p *staticProbe) IsOnline(_ context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func (p *staticProbe) set(online bool) {
	p.mu.Lock()
	p.online = online
	p.mu.Unlock()
}
