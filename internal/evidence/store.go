// Package evidence manages the media proofs attached to an act.
package evidence

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/xelth-com/huissierpro/internal/models"
)

// DefaultMaxBytes is the per-item ceiling applied when none is configured.
const DefaultMaxBytes = 5 << 20

// TimestampLayout formats Evidence.Timestamp.
const TimestampLayout = time.RFC3339

// ErrUnsupportedMedia is returned when a blob cannot be attached.
var ErrUnsupportedMedia = errors.New("unsupported media")

// Store attaches and removes evidence on acts. It never mutates its inputs.
type Store struct {
	MaxBytes int
	Now      func() time.Time
	NewID    func() string
}

// NewStore creates a store with the given per-item ceiling; zero or less
// selects DefaultMaxBytes.
func NewStore(maxBytes int) *Store {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{
		MaxBytes: maxBytes,
		Now:      time.Now,
		NewID:    uuid.NewString,
	}
}

// Attach embeds blob as a data URI and appends it to the act's evidence.
func (s *Store) Attach(act models.Act, blob []byte, description string) (models.Act, models.Evidence, error) {
	if len(blob) == 0 {
		return act, models.Evidence{}, fmt.Errorf("%w: empty payload", ErrUnsupportedMedia)
	}
	if len(blob) > s.MaxBytes {
		return act, models.Evidence{}, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrUnsupportedMedia, len(blob), s.MaxBytes)
	}

	mime := baseType(mimetype.Detect(blob).String())
	if !allowed(mime) {
		return act, models.Evidence{}, fmt.Errorf("%w: content type %s", ErrUnsupportedMedia, mime)
	}

	item := models.Evidence{
		ID:          s.NewID(),
		Data:        "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(blob),
		Timestamp:   s.Now().UTC().Format(TimestampLayout),
		Description: description,
		MimeType:    mime,
		Size:        len(blob),
	}
	return appendEvidence(act, item), item, nil
}

// AttachURL records an externally hosted proof.
func (s *Store) AttachURL(act models.Act, rawURL, description string) (models.Act, models.Evidence, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return act, models.Evidence{}, fmt.Errorf("%w: invalid url %q", ErrUnsupportedMedia, rawURL)
	}
	item := models.Evidence{
		ID:          s.NewID(),
		URL:         u.String(),
		Timestamp:   s.Now().UTC().Format(TimestampLayout),
		Description: description,
	}
	return appendEvidence(act, item), item, nil
}

// Remove drops the evidence with the given id. Unknown ids are ignored.
func (s *Store) Remove(act models.Act, evidenceID string) models.Act {
	out := act.Clone()
	kept := make([]models.Evidence, 0, len(out.Evidence))
	for _, e := range out.Evidence {
		if e.ID != evidenceID {
			kept = append(kept, e)
		}
	}
	out.Evidence = kept
	return out
}

// Count returns the number of evidence items across acts.
func Count(acts []models.Act) int {
	n := 0
	for _, a := range acts {
		n += len(a.Evidence)
	}
	return n
}

func appendEvidence(act models.Act, item models.Evidence) models.Act {
	out := act.Clone()
	out.Evidence = append(out.Evidence, item)
	return out
}

func baseType(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}

func allowed(mime string) bool {
	switch {
	case strings.HasPrefix(mime, "image/"),
		strings.HasPrefix(mime, "video/"),
		strings.HasPrefix(mime, "audio/"),
		mime == "application/pdf":
		return true
	}
	return false
}
