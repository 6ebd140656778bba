package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestLegalActRow_RoundTrip(t *testing.T) {
	a := validAct()
	a.Evidence = []Evidence{{ID: "e1", URL: "https://example.org/p.jpg", Timestamp: "2025-02-14T10:00:00Z"}}
	a.UpdatedAt = time.Date(2025, 2, 14, 10, 0, 0, 0, time.UTC)

	row, err := NewLegalActRow("s1", a)
	require.NoError(t, err)
	assert.Equal(t, "s1", row.StudyID)
	assert.Equal(t, "legal_acts", row.TableName())

	got, err := row.ToAct()
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestLegalActRow_InvalidRow(t *testing.T) {
	row := &LegalActRow{ID: "x", Title: "t", Type: "Autre acte", Date: "2025-02-14", Status: "draft", Fees: datatypes.JSON("null")}
	_, err := row.ToAct()
	assert.ErrorIs(t, err, ErrValidation)

	row.Evidence = datatypes.JSON("{broken")
	_, err = row.ToAct()
	assert.Error(t, err)
}

func TestProfileRow_RoundTrip(t *testing.T) {
	p := Profile{Name: "Me Ndiaye", StudyName: "Étude Ndiaye", City: "Dakar"}
	row, err := NewProfileRow("s1", p)
	require.NoError(t, err)

	got, err := row.ToProfile()
	require.NoError(t, err)
	assert.Equal(t, p, got)
}
