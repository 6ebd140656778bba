package acts

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/ai"
	"github.com/xelth-com/huissierpro/internal/cache"
	"github.com/xelth-com/huissierpro/internal/evidence"
	"github.com/xelth-com/huissierpro/internal/fees"
	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/remote"
	"github.com/xelth-com/huissierpro/internal/repository"
	"github.com/xelth-com/huissierpro/internal/session"
)

type fakeGenerator struct {
	facts    string
	category models.Category
	err      error
}

func (g *fakeGenerator) Generate(_ context.Context, facts string, category models.Category) (string, error) {
	g.facts, g.category = facts, category
	if g.err != nil {
		return "", g.err
	}
	return "## " + string(category) + "\n\nCorps", nil
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fixture struct {
	svc  *Service
	repo *repository.Repository
	gen  *fakeGenerator
	sess *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rs := remote.NewMemory()
	rs.SetDown(true)
	repo := repository.New(cache.NewMemStore(), rs, zap.NewNop())
	t.Cleanup(repo.Wait)

	gen := &fakeGenerator{}
	svc := NewService(repo, gen, evidence.NewStore(0), zap.NewNop())

	now := time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}
	ids := 0
	svc.newID = func() string {
		ids++
		return "act-" + string(rune('0'+ids))
	}

	sess := &session.Session{User: session.User{ID: "u1", Name: "Awa Ndiaye", Matricule: "HJ-042"}, StudyID: "etude-ndiaye"}
	return &fixture{svc: svc, repo: repo, gen: gen, sess: sess}
}

func (f *fixture) create(t *testing.T) models.Act {
	t.Helper()
	act, err := f.svc.Create(context.Background(), f.sess, CreateInput{
		Category:     models.CategorySommationPayer,
		Requerant:    "Banque X",
		Destinataire: "M. Diallo",
		Notes:        "créance de 250.000 FCFA",
	})
	require.NoError(t, err)
	return act
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	act := f.create(t)

	assert.Equal(t, "REQUÉRANT: Banque X\nDESTINATAIRE: M. Diallo\nNOTES DE TERRAIN: créance de 250.000 FCFA", f.gen.facts)
	assert.Equal(t, models.CategorySommationPayer, f.gen.category)
	assert.Equal(t, "act-1", act.ID)
	assert.Equal(t, "Sommation de payer - 2025-02-14", act.Title)
	assert.Equal(t, "2025-02-14", act.Date)
	assert.Equal(t, models.StatusDraft, act.Status)
	assert.Equal(t, f.gen.facts, act.RawTranscription)
	require.NotNil(t, act.Fees)
	assert.Equal(t, fees.Initial(models.CategorySommationPayer), *act.Fees)
	assert.Equal(t, "act-1", f.sess.CurrentActID)

	stored, err := f.svc.List(context.Background(), f.sess)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, act, stored[0])
}

func TestCreate_RawInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), f.sess, CreateInput{Category: models.CategoryConstat, Raw: " dictée brute "})
	require.NoError(t, err)
	assert.Equal(t, "dictée brute", f.gen.facts)
}

func TestCreate_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.sess, CreateInput{Notes: "faits"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.Create(ctx, f.sess, CreateInput{Category: models.CategoryConstat})
	assert.ErrorIs(t, err, models.ErrValidation)

	f.gen.err = errors.New("quota exceeded")
	_, err = f.svc.Create(ctx, f.sess, CreateInput{Category: models.CategoryConstat, Notes: "faits"})
	assert.ErrorIs(t, err, ai.ErrGenerationFailed)

	acts, err := f.svc.List(ctx, f.sess)
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestUpdateFees(t *testing.T) {
	f := newFixture(t)
	act := f.create(t)

	updated, err := f.svc.UpdateFees(context.Background(), f.sess, act.ID, FeesInput{Emoluments: 25000, Transport: 5000, Registration: 2000})
	require.NoError(t, err)
	assert.Equal(t, 5400.0, updated.Fees.Tax)
	assert.Equal(t, 37400.0, updated.Fees.Total)
	assert.True(t, updated.UpdatedAt.After(act.UpdatedAt))

	_, err = f.svc.UpdateFees(context.Background(), f.sess, act.ID, FeesInput{Transport: -1})
	assert.ErrorIs(t, err, fees.ErrInvalidFeeValue)

	got, err := f.svc.Get(context.Background(), f.sess, act.ID)
	require.NoError(t, err)
	assert.Equal(t, 37400.0, got.Fees.Total)
}

func TestUpdateContentAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	act := f.create(t)

	updated, err := f.svc.UpdateContent(ctx, f.sess, act.ID, "Texte revu")
	require.NoError(t, err)
	assert.Equal(t, "Texte revu", updated.LegalContent)

	updated, err = f.svc.AdvanceStatus(ctx, f.sess, act.ID, models.StatusFinal)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinal, updated.Status)

	_, err = f.svc.AdvanceStatus(ctx, f.sess, act.ID, models.StatusDraft)
	assert.ErrorIs(t, err, models.ErrInvalidStatusTransition)

	_, err = f.svc.UpdateContent(ctx, f.sess, "missing", "x")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEvidenceLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	act := f.create(t)

	_, first, err := f.svc.AttachEvidence(ctx, f.sess, act.ID, pngHeader, "façade")
	require.NoError(t, err)
	assert.Equal(t, "image/png", first.MimeType)

	_, second, err := f.svc.AttachEvidenceURL(ctx, f.sess, act.ID, "https://example.org/video.mp4", "vidéo")
	require.NoError(t, err)

	_, _, err = f.svc.AttachEvidence(ctx, f.sess, act.ID, []byte("plain text"), "note")
	assert.ErrorIs(t, err, evidence.ErrUnsupportedMedia)

	updated, err := f.svc.RemoveEvidence(ctx, f.sess, act.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, updated.Evidence, 1)
	assert.Equal(t, second.ID, updated.Evidence[0].ID)

	st, err := f.svc.Stats(ctx, f.sess)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Acts)
	assert.Equal(t, 1, st.Evidence)
	assert.Equal(t, 1, st.ByStatus[models.StatusDraft])
	assert.Equal(t, 1, st.Pending)
	assert.Equal(t, []string{act.ID}, st.LatestActs)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t)
	_, err := f.svc.Create(ctx, f.sess, CreateInput{Category: models.CategoryConstat, Notes: "dégât des eaux"})
	require.NoError(t, err)

	hits, err := f.svc.Search(ctx, f.sess, "DIALLO")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, models.CategorySommationPayer, hits[0].Type)

	all, err := f.svc.Search(ctx, f.sess, "  ")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRenderPDF(t *testing.T) {
	f := newFixture(t)
	act := f.create(t)

	out, err := f.svc.RenderPDF(context.Background(), f.sess, act.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	_, err = f.svc.RenderPDF(context.Background(), f.sess, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
