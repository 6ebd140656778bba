package remote

import (
	"context"
	"sort"
	"sync"

	"github.com/xelth-com/huissierpro/internal/models"
)

// Memory is an in-process Store. SetDown simulates an unreachable backend.
type Memory struct {
	mu       sync.RWMutex
	acts     map[string]map[string]models.Act // [studyID][actID]
	owners   map[string]string                // actID -> studyID, ids are global like the table key
	profiles map[string]models.Profile
	down     bool
	upserts  int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		acts:     make(map[string]map[string]models.Act),
		owners:   make(map[string]string),
		profiles: make(map[string]models.Profile),
	}
}

// SetDown toggles simulated unavailability.
func (m *Memory) SetDown(down bool) {
	m.mu.Lock()
	m.down = down
	m.mu.Unlock()
}

// Upserts returns the number of successful act upserts.
func (m *Memory) Upserts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.upserts
}

func (m *Memory) ListActs(ctx context.Context, studyID string) ([]models.Act, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return nil, err
	}

	out := make([]models.Act, 0, len(m.acts[studyID]))
	for _, a := range m.acts[studyID] {
		out = append(out, a.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *Memory) GetAct(ctx context.Context, studyID, id string) (models.Act, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return models.Act{}, err
	}
	a, ok := m.acts[studyID][id]
	if !ok {
		return models.Act{}, ErrNotFound
	}
	return a.Clone(), nil
}

func (m *Memory) UpsertAct(ctx context.Context, studyID string, act models.Act) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	if owner, ok := m.owners[act.ID]; ok && owner != studyID {
		return ErrForeignAct
	}
	if m.acts[studyID] == nil {
		m.acts[studyID] = make(map[string]models.Act)
	}
	m.acts[studyID][act.ID] = act.Clone()
	m.owners[act.ID] = studyID
	m.upserts++
	return nil
}

func (m *Memory) DeleteAct(ctx context.Context, studyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	if _, ok := m.acts[studyID][id]; ok {
		delete(m.acts[studyID], id)
		delete(m.owners, id)
	}
	return nil
}

func (m *Memory) GetProfile(ctx context.Context, studyID string) (models.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.check(ctx); err != nil {
		return models.Profile{}, err
	}
	p, ok := m.profiles[studyID]
	if !ok {
		return models.Profile{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) UpsertProfile(ctx context.Context, studyID string, profile models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(ctx); err != nil {
		return err
	}
	m.profiles[studyID] = profile
	return nil
}

// check must be called with m.mu held.
func (m *Memory) check(ctx context.Context) error {
	if m.down {
		return ErrRemoteUnavailable
	}
	if err := ctx.Err(); err != nil {
		return unavailable("context", err)
	}
	return nil
}
