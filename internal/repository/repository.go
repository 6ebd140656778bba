// Package repository persists acts and profiles local-first: every write lands
// in the local cache before the remote store is tried, and reads fall back to
// the local cache whenever the remote store cannot answer.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/cache"
	"github.com/xelth-com/huissierpro/internal/fees"
	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/remote"
	appsync "github.com/xelth-com/huissierpro/internal/sync"
)

// DefaultRemoteTimeout bounds every remote call.
const DefaultRemoteTimeout = 5 * time.Second

var (
	// ErrCorruptLocalState is returned when the local cache cannot be parsed.
	ErrCorruptLocalState = errors.New("corrupt local state")
	// ErrNotFound is returned when neither copy holds the requested item.
	ErrNotFound = errors.New("not found")
)

// Repository is the dual-target store for a study's acts and profile.
type Repository struct {
	local    cache.Store
	remote   remote.Store
	resolver *appsync.Resolver
	logger   *zap.Logger
	notifier Notifier
	timeout  time.Duration
	now      func() time.Time

	mu sync.Mutex     // serializes read-modify-write cycles on the local cache
	wg sync.WaitGroup // in-flight remote writes
}

// Option configures a Repository.
type Option func(*Repository)

// WithTimeout overrides DefaultRemoteTimeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Repository) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithNotifier publishes sync events to n.
func WithNotifier(n Notifier) Option {
	return func(r *Repository) { r.notifier = n }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// New creates a repository over a local cache and a remote store.
func New(local cache.Store, rs remote.Store, logger *zap.Logger, opts ...Option) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rs == nil {
		rs = remote.Offline{}
	}
	r := &Repository{
		local:    local,
		remote:   rs,
		resolver: appsync.NewResolver(),
		logger:   logger,
		notifier: nopNotifier{},
		timeout:  DefaultRemoteTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Wait blocks until every background remote write has finished.
func (r *Repository) Wait() {
	r.wg.Wait()
}

// List returns the study's acts, newest first. The remote copy is preferred;
// any remote failure degrades to the local cache and is only logged.
func (r *Repository) List(ctx context.Context, studyID string) ([]models.Act, error) {
	rctx, cancel := context.WithTimeout(ctx, r.timeout)
	remoteActs, remoteErr := r.remote.ListActs(rctx, studyID)
	cancel()
	if remoteErr == nil {
		remoteErr = checkRemoteActs(remoteActs)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remoteErr != nil {
		r.logger.Warn("remote list failed, using local cache",
			zap.String("study_id", studyID),
			zap.Error(remoteErr))
		acts, err := r.readActs(studyID)
		if err != nil {
			return nil, err
		}
		appsync.SortByDateDesc(acts)
		return acts, nil
	}

	localActs, err := r.readActs(studyID)
	if err != nil {
		r.logger.Error("local cache unreadable, serving remote copy only",
			zap.String("study_id", studyID),
			zap.Error(err))
		return remoteActs, nil
	}
	pending, err := r.readPending(studyID)
	if err != nil {
		r.logger.Error("pending markers unreadable, serving remote copy only",
			zap.String("study_id", studyID),
			zap.Error(err))
		return remoteActs, nil
	}
	deleted, err := r.readDeleted(studyID)
	if err != nil {
		r.logger.Error("deletion markers unreadable, serving remote copy only",
			zap.String("study_id", studyID),
			zap.Error(err))
		return remoteActs, nil
	}
	remoteActs = withoutIDs(remoteActs, deleted)

	merged, resolutions := r.resolver.Merge(localActs, remoteActs, pendingSet(pending))
	for _, res := range resolutions {
		r.logger.Debug("merged local edit",
			zap.String("study_id", studyID),
			zap.String("act_id", res.Act.ID),
			zap.String("winner", string(res.WinnerSource)),
			zap.String("reason", res.Reason))
	}

	if err := r.writeActs(studyID, merged); err != nil {
		r.logger.Warn("failed to refresh local cache", zap.String("study_id", studyID), zap.Error(err))
	}
	return merged, nil
}

// Get returns one act by id.
func (r *Repository) Get(ctx context.Context, studyID, id string) (models.Act, error) {
	acts, err := r.List(ctx, studyID)
	if err != nil {
		return models.Act{}, err
	}
	for _, a := range acts {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Act{}, fmt.Errorf("act %s: %w", id, ErrNotFound)
}

// Save writes act to the local cache and returns once it is durable there.
// The remote upsert continues in the background; its failure is logged and
// the act stays marked pending until a later Sync confirms it.
func (r *Repository) Save(ctx context.Context, studyID string, act models.Act) error {
	if act.UpdatedAt.IsZero() {
		act.Touch(r.now())
	}
	if err := checkAct(&act); err != nil {
		return err
	}

	if err := r.saveLocal(studyID, act); err != nil {
		return err
	}
	r.notifier.Notify(Event{Type: EventSaved, StudyID: studyID, ActID: act.ID, At: r.now().UTC()})

	r.pushAsync(ctx, studyID, act)
	return nil
}

func (r *Repository) saveLocal(studyID string, act models.Act) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acts, err := r.readActs(studyID)
	if err != nil {
		return err
	}

	replaced := false
	for i := range acts {
		if acts[i].ID == act.ID {
			acts[i] = act.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		acts = append(acts, act.Clone())
	}
	if err := r.writeActs(studyID, acts); err != nil {
		return fmt.Errorf("save act %s locally: %w", act.ID, err)
	}

	pending, err := r.readPending(studyID)
	if err != nil {
		return err
	}
	pending[act.ID] = act.UpdatedAt
	if err := r.writePending(studyID, pending); err != nil {
		return err
	}

	// Saving an id that was replaced by an import brings it back.
	deleted, err := r.readDeleted(studyID)
	if err != nil {
		return err
	}
	if _, ok := deleted[act.ID]; ok {
		delete(deleted, act.ID)
		return r.writeDeleted(studyID, deleted)
	}
	return nil
}

func (r *Repository) pushAsync(ctx context.Context, studyID string, act models.Act) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		// Detached from the caller: the caller may return before this finishes.
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := r.remote.UpsertAct(rctx, studyID, act); err != nil {
			r.logger.Warn("remote upsert failed, act kept pending",
				zap.String("study_id", studyID),
				zap.String("act_id", act.ID),
				zap.Error(err))
			r.notifier.Notify(Event{Type: EventSyncFailed, StudyID: studyID, ActID: act.ID, Error: err.Error(), At: r.now().UTC()})
			return
		}
		if err := r.clearPending(studyID, act.ID, act.UpdatedAt); err != nil {
			r.logger.Warn("failed to clear pending marker",
				zap.String("study_id", studyID),
				zap.String("act_id", act.ID),
				zap.Error(err))
		}
		r.notifier.Notify(Event{Type: EventSynced, StudyID: studyID, ActID: act.ID, At: r.now().UTC()})
	}()
}

// Pending returns the ids of acts whose latest version the remote store has
// not confirmed.
func (r *Repository) Pending(studyID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, err := r.readPending(studyID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	return ids, nil
}

// clearPending drops the marker only if it still refers to the pushed version,
// so a newer local edit made meanwhile stays pending.
func (r *Repository) clearPending(studyID, id string, version time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending, err := r.readPending(studyID)
	if err != nil {
		return err
	}
	if at, ok := pending[id]; !ok || !at.Equal(version) {
		return nil
	}
	delete(pending, id)
	return r.writePending(studyID, pending)
}

// --- local cache encoding ---

func (r *Repository) readActs(studyID string) ([]models.Act, error) {
	data, err := r.local.Get(studyID, cache.ActsKey(studyID))
	if errors.Is(err, cache.ErrKeyNotFound) {
		return []models.Act{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read local acts: %w", err)
	}

	var acts []models.Act
	if err := json.Unmarshal(data, &acts); err != nil {
		return nil, fmt.Errorf("%w: acts for study %s: %v", ErrCorruptLocalState, studyID, err)
	}
	for i := range acts {
		if err := checkAct(&acts[i]); err != nil {
			return nil, fmt.Errorf("%w: act #%d for study %s: %v", ErrCorruptLocalState, i, studyID, err)
		}
	}
	if acts == nil {
		acts = []models.Act{}
	}
	return acts, nil
}

func (r *Repository) writeActs(studyID string, acts []models.Act) error {
	if acts == nil {
		acts = []models.Act{}
	}
	data, err := json.Marshal(acts)
	if err != nil {
		return err
	}
	return r.local.Set(studyID, cache.ActsKey(studyID), data)
}

func (r *Repository) readPending(studyID string) (map[string]time.Time, error) {
	return r.readMarkers(studyID, cache.PendingKey(studyID), "pending markers")
}

func (r *Repository) writePending(studyID string, pending map[string]time.Time) error {
	return r.writeMarkers(studyID, cache.PendingKey(studyID), pending)
}

// readDeleted returns the tombstones of acts removed locally, keyed by id.
func (r *Repository) readDeleted(studyID string) (map[string]time.Time, error) {
	return r.readMarkers(studyID, cache.DeletedKey(studyID), "deletion markers")
}

func (r *Repository) writeDeleted(studyID string, deleted map[string]time.Time) error {
	return r.writeMarkers(studyID, cache.DeletedKey(studyID), deleted)
}

func (r *Repository) readMarkers(studyID, key, what string) (map[string]time.Time, error) {
	data, err := r.local.Get(studyID, key)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return map[string]time.Time{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", what, err)
	}
	markers := map[string]time.Time{}
	if err := json.Unmarshal(data, &markers); err != nil {
		return nil, fmt.Errorf("%w: %s for study %s: %v", ErrCorruptLocalState, what, studyID, err)
	}
	return markers, nil
}

func (r *Repository) writeMarkers(studyID, key string, markers map[string]time.Time) error {
	data, err := json.Marshal(markers)
	if err != nil {
		return err
	}
	return r.local.Set(studyID, key, data)
}

// checkAct validates the record schema and its fee breakdown.
func checkAct(a *models.Act) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return fees.Check(*a.Fees)
}

// checkRemoteActs rejects a remote listing holding a malformed record; the
// caller then falls back to the local cache as for any remote failure.
func checkRemoteActs(acts []models.Act) error {
	for i := range acts {
		if err := checkAct(&acts[i]); err != nil {
			return fmt.Errorf("%w: act %s: %v", remote.ErrRemoteUnavailable, acts[i].ID, err)
		}
	}
	return nil
}

func withoutIDs(acts []models.Act, ids map[string]time.Time) []models.Act {
	if len(ids) == 0 {
		return acts
	}
	out := make([]models.Act, 0, len(acts))
	for _, a := range acts {
		if _, gone := ids[a.ID]; !gone {
			out = append(out, a)
		}
	}
	return out
}

func pendingSet(pending map[string]time.Time) map[string]bool {
	set := make(map[string]bool, len(pending))
	for id := range pending {
		set[id] = true
	}
	return set
}
