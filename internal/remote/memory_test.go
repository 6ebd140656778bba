package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/huissierpro/internal/models"
)

func TestMemory_ListOrdersByDateDesc(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	fees := &models.Fees{}
	for _, a := range []models.Act{
		{ID: "old", Date: "2025-01-02", Fees: fees},
		{ID: "new", Date: "2025-03-01", Fees: fees},
		{ID: "mid", Date: "2025-02-10", Fees: fees},
	} {
		require.NoError(t, m.UpsertAct(ctx, "s1", a))
	}

	acts, err := m.ListActs(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, acts, 3)
	assert.Equal(t, "new", acts[0].ID)
	assert.Equal(t, "mid", acts[1].ID)
	assert.Equal(t, "old", acts[2].ID)

	other, err := m.ListActs(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemory_Down(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.SetDown(true)

	_, err := m.ListActs(ctx, "s1")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.ErrorIs(t, m.UpsertAct(ctx, "s1", models.Act{ID: "x"}), ErrRemoteUnavailable)
	assert.Equal(t, 0, m.Upserts())

	m.SetDown(false)
	_, err = m.GetProfile(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := NewMemory().ListActs(ctx, "s1")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
}

func TestOffline(t *testing.T) {
	var s Store = Offline{}
	_, err := s.ListActs(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.ErrorIs(t, s.UpsertProfile(context.Background(), "s1", models.Profile{}), ErrRemoteUnavailable)
	assert.ErrorIs(t, s.DeleteAct(context.Background(), "s1", "x"), ErrRemoteUnavailable)
}

func TestMemory_UpsertKeepsActOwner(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	act := models.Act{ID: "shared-id", Date: "2025-03-01", Title: "A"}
	require.NoError(t, m.UpsertAct(ctx, "etude-a", act))

	act.Title = "B"
	assert.ErrorIs(t, m.UpsertAct(ctx, "etude-b", act), ErrForeignAct)

	got, err := m.GetAct(ctx, "etude-a", "shared-id")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	_, err = m.GetAct(ctx, "etude-b", "shared-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_DeleteAct(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.UpsertAct(ctx, "s1", models.Act{ID: "x", Date: "2025-03-01"}))

	require.NoError(t, m.DeleteAct(ctx, "s2", "x"))
	_, err := m.GetAct(ctx, "s1", "x")
	require.NoError(t, err, "another study cannot delete the act")

	require.NoError(t, m.DeleteAct(ctx, "s1", "x"))
	_, err = m.GetAct(ctx, "s1", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, m.DeleteAct(ctx, "s1", "x"))

	// The id is free again once deleted.
	require.NoError(t, m.UpsertAct(ctx, "s2", models.Act{ID: "x", Date: "2025-03-01"}))
}
