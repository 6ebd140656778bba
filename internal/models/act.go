package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar format used for Act.Date.
const DateLayout = "2006-01-02"

// Fees is the filing-cost breakdown of one act. Tax and Total are derived;
// use the fees package to keep them consistent with the inputs.
type Fees struct {
	Emoluments   float64 `json:"emoluments"`
	Transport    float64 `json:"transport"`
	Registration float64 `json:"registration"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
}

// Evidence is a piece of field proof attached to an act.
type Evidence struct {
	ID          string `json:"id"`
	Data        string `json:"data,omitempty"` // data URI
	URL         string `json:"url,omitempty"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	Size        int    `json:"size,omitempty"`
}

// Validate checks the evidence shape.
func (e Evidence) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fieldError("evidence.id", "required")
	}
	if e.Data == "" && e.URL == "" {
		return fieldError("evidence.data", "data or url required")
	}
	if e.Data != "" && !strings.HasPrefix(e.Data, "data:") {
		return fieldError("evidence.data", "must be a data URI")
	}
	if strings.TrimSpace(e.Timestamp) == "" {
		return fieldError("evidence.timestamp", "required")
	}
	return nil
}

// Act is one legal act being drafted, the unit persisted by the repository.
type Act struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Type             Category   `json:"type"`
	Date             string     `json:"date"`
	RawTranscription string     `json:"rawTranscription"`
	LegalContent     string     `json:"legalContent"`
	Status           Status     `json:"status"`
	Evidence         []Evidence `json:"evidence"`
	Fees             *Fees      `json:"fees"`
	UpdatedAt        time.Time  `json:"lastModified"`
}

// Validate checks the canonical record schema. It is run whenever an act
// crosses a persistence boundary.
func (a *Act) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fieldError("id", "required")
	}
	if strings.TrimSpace(a.Title) == "" {
		return fieldError("title", "required")
	}
	if strings.TrimSpace(string(a.Type)) == "" {
		return fieldError("type", "required")
	}
	if _, err := time.Parse(DateLayout, a.Date); err != nil {
		return fieldError("date", "expected YYYY-MM-DD")
	}
	if !a.Status.IsValid() {
		return fieldError("status", "unknown status "+string(a.Status))
	}
	if a.Fees == nil {
		return fieldError("fees", "required")
	}
	seen := make(map[string]struct{}, len(a.Evidence))
	for _, e := range a.Evidence {
		if err := e.Validate(); err != nil {
			return err
		}
		if _, dup := seen[e.ID]; dup {
			return fieldError("evidence.id", "duplicate id "+e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// Clone returns a deep copy so callers can mutate the result freely.
func (a Act) Clone() Act {
	out := a
	if a.Evidence != nil {
		out.Evidence = make([]Evidence, len(a.Evidence))
		copy(out.Evidence, a.Evidence)
	}
	if a.Fees != nil {
		f := *a.Fees
		out.Fees = &f
	}
	return out
}

// Touch bumps the modification timestamp.
func (a *Act) Touch(now time.Time) {
	a.UpdatedAt = now.UTC()
}

// AdvanceStatus moves the act to next, refusing to go backwards.
func (a *Act) AdvanceStatus(next Status) error {
	if !a.Status.CanAdvanceTo(next) {
		return ErrInvalidStatusTransition
	}
	a.Status = next
	return nil
}
