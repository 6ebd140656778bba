package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// LegalActRow is the remote representation of an Act.
// Evidence and fees are stored serialized, matching the cloud schema.
type LegalActRow struct {
	ID               string         `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	StudyID          string         `gorm:"column:study_id;type:varchar(128);not null;index:idx_legal_acts_study" json:"study_id"`
	Title            string         `gorm:"column:title;not null" json:"title"`
	Type             string         `gorm:"column:type;type:varchar(128)" json:"type"`
	Date             string         `gorm:"column:date;type:varchar(10);index:idx_legal_acts_study" json:"date"`
	RawTranscription string         `gorm:"column:raw_transcription;type:text" json:"raw_transcription"`
	LegalContent     string         `gorm:"column:legal_content;type:text" json:"legal_content"`
	Status           string         `gorm:"column:status;type:varchar(20);default:'draft'" json:"status"`
	Evidence         datatypes.JSON `gorm:"column:evidence" json:"evidence"`
	Fees             datatypes.JSON `gorm:"column:fees" json:"fees"`
	UpdatedAt        time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name
func (LegalActRow) TableName() string {
	return "legal_acts"
}

// NewLegalActRow flattens an act into its remote row.
func NewLegalActRow(studyID string, act Act) (*LegalActRow, error) {
	evidence := act.Evidence
	if evidence == nil {
		evidence = []Evidence{}
	}
	evJSON, err := json.Marshal(evidence)
	if err != nil {
		return nil, fmt.Errorf("marshal evidence: %w", err)
	}
	feesJSON, err := json.Marshal(act.Fees)
	if err != nil {
		return nil, fmt.Errorf("marshal fees: %w", err)
	}
	return &LegalActRow{
		ID:               act.ID,
		StudyID:          studyID,
		Title:            act.Title,
		Type:             string(act.Type),
		Date:             act.Date,
		RawTranscription: act.RawTranscription,
		LegalContent:     act.LegalContent,
		Status:           string(act.Status),
		Evidence:         datatypes.JSON(evJSON),
		Fees:             datatypes.JSON(feesJSON),
		UpdatedAt:        act.UpdatedAt.UTC(),
	}, nil
}

// ToAct decodes the row back into the canonical record and validates it.
func (r *LegalActRow) ToAct() (Act, error) {
	act := Act{
		ID:               r.ID,
		Title:            r.Title,
		Type:             Category(r.Type),
		Date:             r.Date,
		RawTranscription: r.RawTranscription,
		LegalContent:     r.LegalContent,
		Status:           Status(r.Status),
		Evidence:         []Evidence{},
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
	if len(r.Evidence) > 0 && string(r.Evidence) != "null" {
		if err := json.Unmarshal(r.Evidence, &act.Evidence); err != nil {
			return Act{}, fmt.Errorf("act %s: decode evidence: %w", r.ID, err)
		}
	}
	if len(r.Fees) > 0 && string(r.Fees) != "null" {
		var f Fees
		if err := json.Unmarshal(r.Fees, &f); err != nil {
			return Act{}, fmt.Errorf("act %s: decode fees: %w", r.ID, err)
		}
		act.Fees = &f
	}
	if err := act.Validate(); err != nil {
		return Act{}, fmt.Errorf("act %s: %w", r.ID, err)
	}
	return act, nil
}

// ProfileRow is the remote representation of a study profile.
type ProfileRow struct {
	StudyID   string         `gorm:"column:study_id;primaryKey;type:varchar(128)" json:"study_id"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table name
func (ProfileRow) TableName() string {
	return "profiles"
}

// NewProfileRow serializes a profile for the remote store.
func NewProfileRow(studyID string, p Profile) (*ProfileRow, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return &ProfileRow{StudyID: studyID, Data: datatypes.JSON(data), UpdatedAt: time.Now().UTC()}, nil
}

// ToProfile decodes and validates the stored profile.
func (r *ProfileRow) ToProfile() (Profile, error) {
	var p Profile
	if err := json.Unmarshal(r.Data, &p); err != nil {
		return Profile{}, fmt.Errorf("profile %s: %w", r.StudyID, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
