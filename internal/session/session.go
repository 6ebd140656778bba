// Package session carries the authenticated huissier and their study through
// each operation. A session is built at login and discarded at logout.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/utils"
)

// ErrNoSession is returned when a request carries no usable session.
var ErrNoSession = errors.New("no active session")

// User is the authenticated identity.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Matricule string `json:"matricule"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
}

// Session is the per-user context passed explicitly to each operation.
type Session struct {
	User         User            `json:"user"`
	StudyID      string          `json:"studyId"`
	Profile      *models.Profile `json:"profile,omitempty"`
	CurrentActID string          `json:"currentActId,omitempty"`
	StartedAt    time.Time       `json:"startedAt"`
}

// FromClaims builds a session from validated access-token claims.
func FromClaims(claims jwt.MapClaims) (*Session, error) {
	s := &Session{
		User: User{
			ID:        utils.ClaimString(claims, "id"),
			Email:     utils.ClaimString(claims, "email"),
			Matricule: utils.ClaimString(claims, "matricule"),
			Name:      utils.ClaimString(claims, "name"),
			Role:      utils.ClaimString(claims, "role"),
		},
		StudyID: utils.ClaimString(claims, "studyId"),
	}
	if s.User.ID == "" || s.StudyID == "" {
		return nil, ErrNoSession
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		s.StartedAt = iat.Time.UTC()
	}
	return s, nil
}

// FromUser builds a session at login.
func FromUser(u *models.UserAuth, now time.Time) *Session {
	return &Session{
		User: User{
			ID:        u.ID,
			Email:     u.Email,
			Matricule: u.Matricule,
			Name:      u.Name,
			Role:      u.Role,
		},
		StudyID:   u.StudyID,
		StartedAt: now.UTC(),
	}
}

type contextKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	if !ok || s == nil {
		return nil, ErrNoSession
	}
	return s, nil
}
