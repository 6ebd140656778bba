package evidence

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/huissierpro/internal/models"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newTestStore(maxBytes int) *Store {
	s := NewStore(maxBytes)
	n := 0
	s.NewID = func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	}
	s.Now = func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) }
	return s
}

func TestAttach(t *testing.T) {
	s := newTestStore(0)
	act := models.Act{ID: "a1"}

	out, item, err := s.Attach(act, pngHeader, "façade")
	require.NoError(t, err)

	assert.Empty(t, act.Evidence, "input act must not be mutated")
	require.Len(t, out.Evidence, 1)
	assert.Equal(t, "ev-1", item.ID)
	assert.Equal(t, "image/png", item.MimeType)
	assert.True(t, strings.HasPrefix(item.Data, "data:image/png;base64,"))
	assert.Equal(t, "2025-03-14T09:30:00Z", item.Timestamp)
	assert.NoError(t, item.Validate())
}

func TestAttach_Rejects(t *testing.T) {
	s := newTestStore(len(pngHeader))

	_, _, err := s.Attach(models.Act{}, nil, "")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	oversized := make([]byte, len(pngHeader)+1)
	copy(oversized, pngHeader)
	_, _, err = s.Attach(models.Act{}, oversized, "")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	_, _, err = s.Attach(models.Act{}, []byte("plain text notes"), "")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestAttachThenRemove_PreservesOrder(t *testing.T) {
	s := newTestStore(0)
	act := models.Act{ID: "a1"}

	var err error
	var ids []string
	for i := 0; i < 4; i++ {
		var item models.Evidence
		act, item, err = s.Attach(act, pngHeader, "")
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	out := s.Remove(act, ids[1])

	require.Len(t, out.Evidence, 3)
	assert.Equal(t, []string{ids[0], ids[2], ids[3]}, evidenceIDs(out))
	assert.Len(t, act.Evidence, 4)
}

func TestRemove_UnknownIsNoop(t *testing.T) {
	s := newTestStore(0)
	act, _, err := s.Attach(models.Act{ID: "a1"}, pngHeader, "")
	require.NoError(t, err)

	out := s.Remove(act, "missing")
	out = s.Remove(out, "missing")

	assert.Equal(t, evidenceIDs(act), evidenceIDs(out))
}

func TestAttachURL(t *testing.T) {
	s := newTestStore(0)

	out, item, err := s.AttachURL(models.Act{}, "https://cdn.example.cg/p/1.jpg", "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.cg/p/1.jpg", item.URL)
	assert.Len(t, out.Evidence, 1)

	_, _, err = s.AttachURL(models.Act{}, "ftp://nope", "")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
}

func TestCount(t *testing.T) {
	acts := []models.Act{
		{Evidence: make([]models.Evidence, 2)},
		{},
		{Evidence: make([]models.Evidence, 3)},
	}
	assert.Equal(t, 5, Count(acts))
}

func evidenceIDs(a models.Act) []string {
	ids := make([]string, 0, len(a.Evidence))
	for _, e := range a.Evidence {
		ids = append(ids, e.ID)
	}
	return ids
}
