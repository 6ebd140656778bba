package remote

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xelth-com/huissierpro/internal/models"
)

// Postgres stores acts in the legal_acts table and profiles in profiles.
type Postgres struct {
	db *gorm.DB
}

// NewPostgres wraps an open GORM connection.
func NewPostgres(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) ListActs(ctx context.Context, studyID string) ([]models.Act, error) {
	var rows []models.LegalActRow
	err := p.db.WithContext(ctx).
		Where("study_id = ?", studyID).
		Order("date DESC").
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, unavailable("list acts", err)
	}

	acts := make([]models.Act, 0, len(rows))
	for i := range rows {
		act, err := rows[i].ToAct()
		if err != nil {
			// A malformed row is treated like any other remote failure.
			return nil, unavailable("decode act", err)
		}
		acts = append(acts, act)
	}
	return acts, nil
}

func (p *Postgres) GetAct(ctx context.Context, studyID, id string) (models.Act, error) {
	var row models.LegalActRow
	err := p.db.WithContext(ctx).
		Where("study_id = ? AND id = ?", studyID, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Act{}, ErrNotFound
	}
	if err != nil {
		return models.Act{}, unavailable("get act", err)
	}
	act, err := row.ToAct()
	if err != nil {
		return models.Act{}, unavailable("decode act", err)
	}
	return act, nil
}

func (p *Postgres) UpsertAct(ctx context.Context, studyID string, act models.Act) error {
	row, err := models.NewLegalActRow(studyID, act)
	if err != nil {
		return err
	}
	res := upsertAct(p.db.WithContext(ctx), row)
	if res.Error != nil {
		return unavailable("upsert act", res.Error)
	}
	// The conflict update is skipped when the existing row belongs to another study.
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrForeignAct, act.ID)
	}
	return nil
}

func upsertAct(tx *gorm.DB, row *models.LegalActRow) *gorm.DB {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		Where:     clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "legal_acts.study_id = excluded.study_id"}}},
		UpdateAll: true,
	}).Create(row)
}

func (p *Postgres) DeleteAct(ctx context.Context, studyID, id string) error {
	err := p.db.WithContext(ctx).
		Where("study_id = ? AND id = ?", studyID, id).
		Delete(&models.LegalActRow{}).Error
	if err != nil {
		return unavailable("delete act", err)
	}
	return nil
}

func (p *Postgres) GetProfile(ctx context.Context, studyID string) (models.Profile, error) {
	var row models.ProfileRow
	err := p.db.WithContext(ctx).Where("study_id = ?", studyID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, unavailable("get profile", err)
	}
	profile, err := row.ToProfile()
	if err != nil {
		return models.Profile{}, unavailable("decode profile", err)
	}
	return profile, nil
}

func (p *Postgres) UpsertProfile(ctx context.Context, studyID string, profile models.Profile) error {
	row, err := models.NewProfileRow(studyID, profile)
	if err != nil {
		return err
	}
	err = p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "study_id"}},
			UpdateAll: true,
		}).
		Create(row).Error
	if err != nil {
		return unavailable("upsert profile", err)
	}
	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, op, err)
}
