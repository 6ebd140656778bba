// Package accounts stores huissier login accounts.
package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/xelth-com/huissierpro/internal/models"
)

var (
	// ErrAccountNotFound is returned when no account matches.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when the matricule or email is taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrStudyTaken is returned when the study already has an account. The
	// study id is the tenant boundary, so it cannot be joined by registering.
	ErrStudyTaken = errors.New("study already has an account")
)

// Store looks up and creates accounts.
type Store interface {
	ByMatricule(ctx context.Context, matricule string) (models.UserAuth, error)
	// Create adds an account; it fails with ErrAccountExists or ErrStudyTaken.
	Create(ctx context.Context, user *models.UserAuth) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}
