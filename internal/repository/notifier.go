package repository

import "time"

// Sync event types.
const (
	EventSaved      = "act_saved"
	EventSynced     = "act_synced"
	EventSyncFailed = "act_sync_failed"
	EventSyncPass   = "sync_pass"
	EventDeleted    = "act_deleted"
)

// Event describes a persistence step, published for live sync indicators.
type Event struct {
	Type    string    `json:"type"`
	StudyID string    `json:"studyId"`
	ActID   string    `json:"actId,omitempty"`
	Error   string    `json:"error,omitempty"`
	Pending int       `json:"pending,omitempty"`
	At      time.Time `json:"at"`
}

// Notifier receives repository events. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
