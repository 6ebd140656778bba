package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAct() Act {
	return Act{
		ID:       "act-1",
		Title:    "Constat d'état des lieux",
		Type:     CategoryConstat,
		Date:     "2025-02-14",
		Status:   StatusDraft,
		Evidence: []Evidence{},
		Fees:     &Fees{Emoluments: 35000},
	}
}

func TestAct_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Act)
		field  string
	}{
		{"valid", func(*Act) {}, ""},
		{"missing id", func(a *Act) { a.ID = " " }, "id"},
		{"missing title", func(a *Act) { a.Title = "" }, "title"},
		{"missing type", func(a *Act) { a.Type = "" }, "type"},
		{"bad date", func(a *Act) { a.Date = "14/02/2025" }, "date"},
		{"unknown status", func(a *Act) { a.Status = "archived" }, "status"},
		{"missing fees", func(a *Act) { a.Fees = nil }, "fees"},
		{"evidence without payload", func(a *Act) {
			a.Evidence = []Evidence{{ID: "e1", Timestamp: "2025-02-14T10:00:00Z"}}
		}, "evidence.data"},
		{"duplicate evidence", func(a *Act) {
			e := Evidence{ID: "e1", URL: "https://example.org/p.jpg", Timestamp: "2025-02-14T10:00:00Z"}
			a.Evidence = []Evidence{e, e}
		}, "evidence.id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAct()
			tt.mutate(&a)
			err := a.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrValidation)
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestAct_CloneIsDeep(t *testing.T) {
	a := validAct()
	a.Evidence = []Evidence{{ID: "e1", URL: "https://example.org/p.jpg", Timestamp: "t"}}

	c := a.Clone()
	c.Fees.Emoluments = 1
	c.Evidence[0].Description = "changed"

	assert.Equal(t, 35000.0, a.Fees.Emoluments)
	assert.Empty(t, a.Evidence[0].Description)
}

func TestAct_AdvanceStatus(t *testing.T) {
	a := validAct()
	require.NoError(t, a.AdvanceStatus(StatusValidated))
	require.NoError(t, a.AdvanceStatus(StatusValidated))
	require.NoError(t, a.AdvanceStatus(StatusSigned))

	assert.ErrorIs(t, a.AdvanceStatus(StatusFinal), ErrInvalidStatusTransition)
	assert.ErrorIs(t, a.AdvanceStatus("unknown"), ErrInvalidStatusTransition)
	assert.Equal(t, StatusSigned, a.Status)
}

func TestAct_TouchUsesUTC(t *testing.T) {
	a := validAct()
	loc := time.FixedZone("WAT", 3600)
	a.Touch(time.Date(2025, 2, 14, 11, 0, 0, 0, loc))
	assert.Equal(t, time.UTC, a.UpdatedAt.Location())
	assert.Equal(t, 10, a.UpdatedAt.Hour())
}

func TestCategory_IsValid(t *testing.T) {
	assert.Len(t, Categories, 16)
	assert.True(t, CategorySommationPayer.IsValid())
	assert.False(t, Category("Acte inconnu").IsValid())
}

func TestProfile_Validate(t *testing.T) {
	p := Profile{Name: "Me Ndiaye", StudyName: "Étude Ndiaye"}
	assert.NoError(t, p.Validate())

	p.StudyName = ""
	assert.ErrorIs(t, p.Validate(), ErrValidation)
}
