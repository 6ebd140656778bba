package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xelth-com/huissierpro/internal/models"
)

func TestFromClaims(t *testing.T) {
	issued := time.Date(2025, 2, 14, 8, 0, 0, 0, time.UTC)
	claims := jwt.MapClaims{
		"id":        "u1",
		"email":     "awa@etude.cg",
		"matricule": "HJ-042",
		"studyId":   "etude-ndiaye",
		"role":      "huissier",
		"iat":       float64(issued.Unix()),
	}

	s, err := FromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "u1", s.User.ID)
	assert.Equal(t, "HJ-042", s.User.Matricule)
	assert.Equal(t, "etude-ndiaye", s.StudyID)
	assert.True(t, s.StartedAt.Equal(issued))
}

func TestFromClaims_MissingStudy(t *testing.T) {
	_, err := FromClaims(jwt.MapClaims{"id": "u1"})
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestContextRoundTrip(t *testing.T) {
	_, err := FromContext(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	s := FromUser(&models.UserAuth{ID: "u1", StudyID: "s1"}, time.Now())
	got, err := FromContext(WithSession(context.Background(), s))
	require.NoError(t, err)
	assert.Same(t, s, got)
}
