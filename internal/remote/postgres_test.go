package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/xelth-com/huissierpro/internal/models"
)

// dryRunDB builds SQL without a server: pgx connects lazily and the ping is off.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 port=5432 user=huissier dbname=huissierpro sslmode=disable",
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestUpsertAct_OnlyUpdatesRowsOfTheSameStudy(t *testing.T) {
	db := dryRunDB(t)
	row, err := models.NewLegalActRow("etude-b", models.Act{
		ID:        "shared-id",
		Title:     "Constat",
		Type:      models.CategoryConstat,
		Date:      "2025-03-01",
		Status:    models.StatusDraft,
		Evidence:  []models.Evidence{},
		Fees:      &models.Fees{},
		UpdatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return upsertAct(tx, row)
	})
	assert.Contains(t, sql, `ON CONFLICT ("id") DO UPDATE SET`)
	assert.Contains(t, sql, "WHERE legal_acts.study_id = excluded.study_id")
}
