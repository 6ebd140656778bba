// Package ai turns field notes into the body of a legal act.
package ai

import (
	"context"
	"errors"

	"github.com/xelth-com/huissierpro/internal/models"
)

// ErrGenerationFailed wraps every failure to produce a document.
var ErrGenerationFailed = errors.New("act generation failed")

// Generator drafts a legal act from raw facts. Implementations do not retry.
type Generator interface {
	Generate(ctx context.Context, facts string, category models.Category) (string, error)
}
