// Package remote is the cloud copy of a study's records.
package remote

import (
	"context"
	"errors"

	"github.com/xelth-com/huissierpro/internal/models"
)

var (
	// ErrRemoteUnavailable wraps every network, auth or store failure.
	ErrRemoteUnavailable = errors.New("remote store unavailable")
	// ErrNotFound is returned when the remote store has no such row.
	ErrNotFound = errors.New("not found in remote store")
	// ErrForeignAct is returned when an act id already belongs to another study.
	ErrForeignAct = errors.New("act id belongs to another study")
)

// Store is a row-oriented store addressable by study id and record id.
type Store interface {
	// ListActs returns a study's acts ordered by date, newest first.
	ListActs(ctx context.Context, studyID string) ([]models.Act, error)
	GetAct(ctx context.Context, studyID, id string) (models.Act, error)
	// UpsertAct inserts or replaces the act keyed by its id. An id owned by
	// another study is never taken over.
	UpsertAct(ctx context.Context, studyID string, act models.Act) error
	// DeleteAct removes the study's act; a missing act is not an error.
	DeleteAct(ctx context.Context, studyID, id string) error
	GetProfile(ctx context.Context, studyID string) (models.Profile, error)
	UpsertProfile(ctx context.Context, studyID string, profile models.Profile) error
}

// Offline is used when no cloud database is configured. Every call fails
// with ErrRemoteUnavailable so callers degrade to the local cache.
type Offline struct{}

func (Offline) ListActs(context.Context, string) ([]models.Act, error) {
	return nil, ErrRemoteUnavailable
}

func (Offline) GetAct(context.Context, string, string) (models.Act, error) {
	return models.Act{}, ErrRemoteUnavailable
}

func (Offline) UpsertAct(context.Context, string, models.Act) error {
	return ErrRemoteUnavailable
}

func (Offline) DeleteAct(context.Context, string, string) error {
	return ErrRemoteUnavailable
}

func (Offline) GetProfile(context.Context, string) (models.Profile, error) {
	return models.Profile{}, ErrRemoteUnavailable
}

func (Offline) UpsertProfile(context.Context, string, models.Profile) error {
	return ErrRemoteUnavailable
}
