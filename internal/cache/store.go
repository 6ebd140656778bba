// Package cache is the local durable store that keeps a copy of every record
// on the device, partitioned by study.
package cache

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyNotFound is returned when nothing is stored under a key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrInvalidKey is returned for keys that cannot be mapped to storage.
	ErrInvalidKey = errors.New("invalid key")
)

// ProfileKey holds the study profile snapshot.
const ProfileKey = "profile"

// ActsKey holds the JSON snapshot of a study's act list.
func ActsKey(studyID string) string { return "acts_" + studyID }

// PendingKey holds the ids of acts not yet confirmed by the remote store.
func PendingKey(studyID string) string { return "pending_" + studyID }

// DeletedKey holds the ids of acts removed locally whose remote copy may
// still exist.
func DeletedKey(studyID string) string { return "deleted_" + studyID }

// Store is a key-value store of serialized snapshots scoped by study.
type Store interface {
	// Get returns the raw bytes stored under key, or ErrKeyNotFound.
	Get(studyID, key string) ([]byte, error)
	// Set replaces the value stored under key. It returns once the value is durable.
	Set(studyID, key string, value []byte) error
	// Delete removes key. Missing keys are not an error.
	Delete(studyID, key string) error
}

func checkName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidKey, kind)
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %s %q", ErrInvalidKey, kind, name)
	}
	return nil
}
