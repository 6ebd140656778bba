package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/cache"
	"github.com/xelth-com/huissierpro/internal/models"
)

// LoadProfile returns the study profile, preferring the remote copy.
func (r *Repository) LoadProfile(ctx context.Context, studyID string) (models.Profile, error) {
	rctx, cancel := context.WithTimeout(ctx, r.timeout)
	profile, err := r.remote.GetProfile(rctx, studyID)
	cancel()

	if err == nil {
		r.mu.Lock()
		werr := r.writeProfile(studyID, profile)
		r.mu.Unlock()
		if werr != nil {
			r.logger.Warn("failed to refresh cached profile", zap.String("study_id", studyID), zap.Error(werr))
		}
		return profile, nil
	}
	r.logger.Info("remote profile unavailable, using local cache",
		zap.String("study_id", studyID),
		zap.Error(err))

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readProfile(studyID)
}

// SaveProfile stores the profile locally, then upserts it remotely in the
// background.
func (r *Repository) SaveProfile(ctx context.Context, studyID string, profile models.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	err := r.writeProfile(studyID, profile)
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("save profile locally: %w", err)
	}

	r.pushProfileAsync(ctx, studyID, profile)
	return nil
}

func (r *Repository) pushProfileAsync(ctx context.Context, studyID string, profile models.Profile) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		if err := r.remote.UpsertProfile(rctx, studyID, profile); err != nil {
			r.logger.Warn("remote profile upsert failed",
				zap.String("study_id", studyID),
				zap.Error(err))
		}
	}()
}

func (r *Repository) readProfile(studyID string) (models.Profile, error) {
	data, err := r.local.Get(studyID, cache.ProfileKey)
	if errors.Is(err, cache.ErrKeyNotFound) {
		return models.Profile{}, fmt.Errorf("profile for study %s: %w", studyID, ErrNotFound)
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("read local profile: %w", err)
	}

	var p models.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return models.Profile{}, fmt.Errorf("%w: profile for study %s: %v", ErrCorruptLocalState, studyID, err)
	}
	if err := p.Validate(); err != nil {
		return models.Profile{}, fmt.Errorf("%w: profile for study %s: %v", ErrCorruptLocalState, studyID, err)
	}
	return p, nil
}

func (r *Repository) writeProfile(studyID string, p models.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.local.Set(studyID, cache.ProfileKey, data)
}
