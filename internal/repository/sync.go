package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/remote"
	appsync "github.com/xelth-com/huissierpro/internal/sync"
)

// SyncReport summarizes one reconciliation pass.
type SyncReport struct {
	Pushed  []string `json:"pushed"`  // local copy won and was written remotely
	Pulled  []string `json:"pulled"`  // remote copy won and replaced the local one
	Failed  []string `json:"failed"`  // remote store could not be reached for these
	Deleted []string `json:"deleted"` // tombstoned acts removed from the remote store
	Pending int      `json:"pending"` // markers left after the pass
}

// Sync pushes every pending act to the remote store, resolving conflicts
// with the remote copy by last-write-wins. Acts that cannot be pushed stay
// pending; remote failures are reported, not returned.
func (r *Repository) Sync(ctx context.Context, studyID string) (SyncReport, error) {
	var report SyncReport

	acts, markers, deleted, err := r.syncSnapshot(studyID)
	if err != nil {
		return report, err
	}
	acts = filterPending(acts, pendingSet(markers))

	for id := range deleted {
		rctx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.remote.DeleteAct(rctx, studyID, id)
		cancel()
		if err != nil {
			r.logger.Warn("remote delete failed",
				zap.String("study_id", studyID),
				zap.String("act_id", id),
				zap.Error(err))
			report.Failed = append(report.Failed, id)
			continue
		}
		if err := r.clearDeleted(studyID, id); err != nil {
			return report, err
		}
		report.Deleted = append(report.Deleted, id)
	}

	for _, local := range acts {
		winner, source, err := r.reconcileOne(ctx, studyID, local)
		if err != nil {
			r.logger.Warn("sync failed for act",
				zap.String("study_id", studyID),
				zap.String("act_id", local.ID),
				zap.Error(err))
			report.Failed = append(report.Failed, local.ID)
			continue
		}

		if source == appsync.SourceRemote {
			if err := r.replaceLocal(studyID, winner); err != nil {
				return report, err
			}
			report.Pulled = append(report.Pulled, local.ID)
		} else {
			report.Pushed = append(report.Pushed, local.ID)
		}
		if err := r.clearPending(studyID, local.ID, local.UpdatedAt); err != nil {
			return report, err
		}
	}

	left, err := r.Pending(studyID)
	if err != nil {
		return report, err
	}
	report.Pending = len(left)

	r.notifier.Notify(Event{Type: EventSyncPass, StudyID: studyID, Pending: report.Pending, At: r.now().UTC()})
	r.logger.Info("sync pass complete",
		zap.String("study_id", studyID),
		zap.Int("pushed", len(report.Pushed)),
		zap.Int("pulled", len(report.Pulled)),
		zap.Int("failed", len(report.Failed)))
	return report, nil
}

// syncSnapshot reads the local state for a pass and drops pending markers
// whose act is no longer in the local list.
func (r *Repository) syncSnapshot(studyID string) ([]models.Act, map[string]time.Time, map[string]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acts, err := r.readActs(studyID)
	if err != nil {
		return nil, nil, nil, err
	}
	markers, err := r.readPending(studyID)
	if err != nil {
		return nil, nil, nil, err
	}
	deleted, err := r.readDeleted(studyID)
	if err != nil {
		return nil, nil, nil, err
	}

	present := make(map[string]bool, len(acts))
	for _, a := range acts {
		present[a.ID] = true
	}
	orphans := 0
	for id := range markers {
		if !present[id] {
			delete(markers, id)
			orphans++
		}
	}
	if orphans > 0 {
		if err := r.writePending(studyID, markers); err != nil {
			return nil, nil, nil, err
		}
		r.logger.Info("dropped orphan pending markers", zap.String("study_id", studyID), zap.Int("count", orphans))
	}
	return acts, markers, deleted, nil
}

func (r *Repository) reconcileOne(ctx context.Context, studyID string, local models.Act) (models.Act, appsync.Source, error) {
	rctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	current, err := r.remote.GetAct(rctx, studyID, local.ID)
	if errors.Is(err, remote.ErrNotFound) {
		if err := r.remote.UpsertAct(rctx, studyID, local); err != nil {
			return models.Act{}, "", err
		}
		return local, appsync.SourceLocal, nil
	}
	if err != nil {
		return models.Act{}, "", err
	}
	if err := checkAct(&current); err != nil {
		return models.Act{}, "", fmt.Errorf("%w: act %s: %v", remote.ErrRemoteUnavailable, current.ID, err)
	}

	res := r.resolver.Resolve(
		appsync.Version{Act: local, Source: appsync.SourceLocal, Pending: true},
		appsync.Version{Act: current, Source: appsync.SourceRemote},
	)
	r.logger.Debug("resolved sync conflict",
		zap.String("act_id", local.ID),
		zap.String("strategy", string(res.Strategy)),
		zap.String("reason", res.Reason))

	if res.WinnerSource == appsync.SourceLocal || res.StatusKept {
		if err := r.remote.UpsertAct(rctx, studyID, res.Act); err != nil {
			return models.Act{}, "", err
		}
	}
	if res.WinnerSource == appsync.SourceLocal && !res.StatusKept {
		return res.Act, appsync.SourceLocal, nil
	}
	return res.Act, appsync.SourceRemote, nil
}

func (r *Repository) replaceLocal(studyID string, act models.Act) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acts, err := r.readActs(studyID)
	if err != nil {
		return err
	}
	for i := range acts {
		if acts[i].ID == act.ID {
			acts[i] = act.Clone()
			return r.writeActs(studyID, acts)
		}
	}
	return fmt.Errorf("act %s vanished from local cache: %w", act.ID, ErrNotFound)
}

func filterPending(acts []models.Act, pending map[string]bool) []models.Act {
	out := make([]models.Act, 0, len(pending))
	for _, a := range acts {
		if pending[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
