package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/huissierpro/internal/models"
)

func TestParseFacts(t *testing.T) {
	raw := "REQUÉRANT: Banque Commerciale du Congo\nDESTINATAIRE: Mme Ngoma\nNOTES DE TERRAIN: loyers impayés de 250.000 FCFA depuis mars"

	f := ParseFacts(raw)
	assert.Equal(t, "Banque Commerciale du Congo", f.Requerant)
	assert.Equal(t, "Mme Ngoma", f.Destinataire)
	assert.Equal(t, int64(250000), f.Amount)
	assert.Equal(t, "loyers impayés de 250.000 FCFA depuis mars", f.Notes)
}

func TestParseFacts_Defaults(t *testing.T) {
	f := ParseFacts("REQUÉRANT:\nconstat d'un dégât des eaux")
	assert.Equal(t, DefaultRequerant, f.Requerant)
	assert.Equal(t, DefaultDestinataire, f.Destinataire)
	assert.Equal(t, int64(0), f.Amount)
	assert.Equal(t, "constat d'un dégât des eaux", f.Notes)
}

func TestTemplateGenerator_Generate(t *testing.T) {
	g := NewTemplateGenerator("Pointe-Noire")
	g.Now = func() time.Time { return time.Date(2025, 2, 14, 9, 30, 0, 0, time.UTC) }

	text, err := g.Generate(context.Background(),
		"REQUÉRANT: Banque X\nDESTINATAIRE: M. Diallo\nNOTES DE TERRAIN: créance de 37 400 FCFA",
		models.CategorySommationPayer)
	require.NoError(t, err)

	assert.Contains(t, text, "## SOMMATION DE PAYER")
	assert.Contains(t, text, "**BANQUE X**")
	assert.Contains(t, text, "**M. DIALLO**")
	assert.Contains(t, text, "37 400 FCFA (trente-sept mille quatre cents francs CFA)")
	assert.Contains(t, text, "POINTE-NOIRE")
	assert.Contains(t, text, "vendredi 14 février 2025")
	assert.Contains(t, text, "09h30")
}

func TestTemplateGenerator_Errors(t *testing.T) {
	g := NewTemplateGenerator("")
	assert.Equal(t, "Brazzaville", g.City)

	_, err := g.Generate(context.Background(), "   ", models.CategoryConstat)
	assert.ErrorIs(t, err, ErrGenerationFailed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, "faits", models.CategoryConstat)
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestFrenchNumber(t *testing.T) {
	tests := map[int64]string{
		0:       "zéro",
		1:       "un",
		17:      "dix-sept",
		21:      "vingt et un",
		71:      "soixante et onze",
		78:      "soixante-dix-huit",
		80:      "quatre-vingts",
		81:      "quatre-vingt-un",
		99:      "quatre-vingt-dix-neuf",
		100:     "cent",
		200:     "deux cents",
		201:     "deux cent un",
		1000:    "mille",
		1001:    "mille un",
		5400:    "cinq mille quatre cents",
		80000:   "quatre-vingt mille",
		200000:  "deux cent mille",
		1000000: "un million",
		2378098: "deux millions trois cent soixante-dix-huit mille quatre-vingt-dix-huit",
	}
	for n, want := range tests {
		assert.Equal(t, want, FrenchNumber(n), "FrenchNumber(%d)", n)
	}
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "0", GroupThousands(0))
	assert.Equal(t, "999", GroupThousands(999))
	assert.Equal(t, "37 400", GroupThousands(37400))
	assert.Equal(t, "2 378 098", GroupThousands(2378098))
	assert.Equal(t, "-1 000", GroupThousands(-1000))
}
