package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/models"
)

// BackupVersion is written into every export.
const BackupVersion = "1.0"

var (
	// ErrImportNotConfirmed is returned when an import lacks explicit user confirmation.
	ErrImportNotConfirmed = errors.New("import requires confirmation")
	// ErrInvalidBackup is returned for documents that are not a valid export.
	ErrInvalidBackup = errors.New("invalid backup document")
)

// Backup is the bulk export document.
type Backup struct {
	Profile    models.Profile `json:"profile"`
	Acts       []models.Act   `json:"acts"`
	ExportDate time.Time      `json:"exportDate"`
	Version    string         `json:"version"`
}

// Export snapshots the study profile and every act.
func (r *Repository) Export(ctx context.Context, studyID string) (Backup, error) {
	profile, err := r.LoadProfile(ctx, studyID)
	if err != nil {
		return Backup{}, fmt.Errorf("export profile: %w", err)
	}
	acts, err := r.List(ctx, studyID)
	if err != nil {
		return Backup{}, fmt.Errorf("export acts: %w", err)
	}
	return Backup{
		Profile:    profile,
		Acts:       acts,
		ExportDate: r.now().UTC(),
		Version:    BackupVersion,
	}, nil
}

// DecodeBackup parses an export document, rejecting ones without a profile
// or an acts array.
func DecodeBackup(data []byte) (Backup, error) {
	var raw struct {
		Profile    *models.Profile `json:"profile"`
		Acts       *[]models.Act   `json:"acts"`
		ExportDate time.Time       `json:"exportDate"`
		Version    string          `json:"version"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if raw.Profile == nil || raw.Acts == nil {
		return Backup{}, fmt.Errorf("%w: profile and acts are required", ErrInvalidBackup)
	}
	return Backup{
		Profile:    *raw.Profile,
		Acts:       *raw.Acts,
		ExportDate: raw.ExportDate,
		Version:    raw.Version,
	}, nil
}

// Import replaces the study's profile and act list wholesale. Every imported
// act is marked pending and pushed to the remote store in the background.
// Acts the backup does not carry are tombstoned and deleted remotely, so a
// later listing cannot bring them back.
func (r *Repository) Import(ctx context.Context, studyID string, b Backup, confirmed bool) error {
	if !confirmed {
		return ErrImportNotConfirmed
	}
	if err := b.Profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	seen := make(map[string]struct{}, len(b.Acts))
	for i := range b.Acts {
		if err := checkAct(&b.Acts[i]); err != nil {
			return fmt.Errorf("%w: act #%d: %v", ErrInvalidBackup, i, err)
		}
		if _, dup := seen[b.Acts[i].ID]; dup {
			return fmt.Errorf("%w: duplicate act id %s", ErrInvalidBackup, b.Acts[i].ID)
		}
		seen[b.Acts[i].ID] = struct{}{}
	}

	pending := make(map[string]time.Time, len(b.Acts))
	for _, a := range b.Acts {
		pending[a.ID] = a.UpdatedAt
	}
	remoteIDs := r.remoteActIDs(ctx, studyID)

	r.mu.Lock()
	deleted := r.replacedActs(studyID, remoteIDs, seen)
	err := r.writeProfile(studyID, b.Profile)
	if err == nil {
		err = r.writeActs(studyID, b.Acts)
	}
	if err == nil {
		err = r.writePending(studyID, pending)
	}
	if err == nil {
		err = r.writeDeleted(studyID, deleted)
	}
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	r.pushProfileAsync(ctx, studyID, b.Profile)
	for _, a := range b.Acts {
		r.pushAsync(ctx, studyID, a)
	}
	for id := range deleted {
		r.deleteAsync(ctx, studyID, id)
	}
	return nil
}

// remoteActIDs lists the ids the remote store holds for the study. It is
// best effort: an unreachable store yields none.
func (r *Repository) remoteActIDs(ctx context.Context, studyID string) []string {
	rctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	acts, err := r.remote.ListActs(rctx, studyID)
	if err != nil {
		r.logger.Warn("remote list failed during import, replaced remote acts resolved on next sync",
			zap.String("study_id", studyID),
			zap.Error(err))
		return nil
	}
	ids := make([]string, 0, len(acts))
	for _, a := range acts {
		ids = append(ids, a.ID)
	}
	return ids
}

// replacedActs returns the tombstones after an import keeping ids: every
// known act outside ids is marked, and ids themselves are unmarked.
// Must be called with r.mu held.
func (r *Repository) replacedActs(studyID string, remoteIDs []string, keep map[string]struct{}) map[string]time.Time {
	deleted, err := r.readDeleted(studyID)
	if err != nil {
		r.logger.Warn("discarding unreadable deletion markers", zap.String("study_id", studyID), zap.Error(err))
		deleted = map[string]time.Time{}
	}
	candidates := append([]string{}, remoteIDs...)
	if current, err := r.readActs(studyID); err == nil {
		for _, a := range current {
			candidates = append(candidates, a.ID)
		}
	} else {
		r.logger.Warn("local acts unreadable, import replaces them", zap.String("study_id", studyID), zap.Error(err))
	}

	now := r.now().UTC()
	for _, id := range candidates {
		if _, kept := keep[id]; !kept {
			if _, ok := deleted[id]; !ok {
				deleted[id] = now
			}
		}
	}
	for id := range keep {
		delete(deleted, id)
	}
	return deleted
}

// deleteAsync removes a tombstoned act from the remote store. On failure the
// tombstone stays for the next Sync.
func (r *Repository) deleteAsync(ctx context.Context, studyID, id string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := r.remote.DeleteAct(rctx, studyID, id); err != nil {
			r.logger.Warn("remote delete failed, tombstone kept",
				zap.String("study_id", studyID),
				zap.String("act_id", id),
				zap.Error(err))
			return
		}
		if err := r.clearDeleted(studyID, id); err != nil {
			r.logger.Warn("failed to clear deletion marker",
				zap.String("study_id", studyID),
				zap.String("act_id", id),
				zap.Error(err))
		}
		r.notifier.Notify(Event{Type: EventDeleted, StudyID: studyID, ActID: id, At: r.now().UTC()})
	}()
}

func (r *Repository) clearDeleted(studyID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted, err := r.readDeleted(studyID)
	if err != nil {
		return err
	}
	if _, ok := deleted[id]; !ok {
		return nil
	}
	delete(deleted, id)
	return r.writeDeleted(studyID, deleted)
}
