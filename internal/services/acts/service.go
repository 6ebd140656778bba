// Package acts is the application service behind the HTTP surface: it turns
// user intents into generator calls, fee and evidence edits, and repository writes.
package acts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/ai"
	"github.com/xelth-com/huissierpro/internal/evidence"
	"github.com/xelth-com/huissierpro/internal/fees"
	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/repository"
	"github.com/xelth-com/huissierpro/internal/services/printer"
	"github.com/xelth-com/huissierpro/internal/session"
)

// Repository is the persistence the service needs.
type Repository interface {
	List(ctx context.Context, studyID string) ([]models.Act, error)
	Get(ctx context.Context, studyID, id string) (models.Act, error)
	Save(ctx context.Context, studyID string, act models.Act) error
	Pending(studyID string) ([]string, error)
	LoadProfile(ctx context.Context, studyID string) (models.Profile, error)
}

// Service implements the act workflows.
type Service struct {
	repo      Repository
	generator ai.Generator
	evidence  *evidence.Store
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewService wires the service.
func NewService(repo Repository, gen ai.Generator, ev *evidence.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ev == nil {
		ev = evidence.NewStore(0)
	}
	return &Service{
		repo:      repo,
		generator: gen,
		evidence:  ev,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// CreateInput is what the user submits to draft a new act. Either the
// written form (Requerant, Destinataire, Notes) or Raw is used.
type CreateInput struct {
	Category     models.Category `json:"category"`
	Requerant    string          `json:"requerant"`
	Destinataire string          `json:"destinataire"`
	Notes        string          `json:"notes"`
	Raw          string          `json:"raw"`
}

// Facts returns the text handed to the generator.
func (in CreateInput) Facts() string {
	if strings.TrimSpace(in.Raw) != "" {
		return strings.TrimSpace(in.Raw)
	}
	return fmt.Sprintf("REQUÉRANT: %s\nDESTINATAIRE: %s\nNOTES DE TERRAIN: %s",
		strings.TrimSpace(in.Requerant), strings.TrimSpace(in.Destinataire), strings.TrimSpace(in.Notes))
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(string(in.Category)) == "" {
		return models.NewFieldError("category", "required")
	}
	if !in.Category.IsValid() {
		return models.NewFieldError("category", "unknown act type "+string(in.Category))
	}
	if strings.TrimSpace(in.Raw) == "" && strings.TrimSpace(in.Notes) == "" {
		return models.NewFieldError("notes", "facts required")
	}
	return nil
}

// Create generates a draft from the input and saves it as a new act with
// baseline fees.
func (s *Service) Create(ctx context.Context, sess *session.Session, in CreateInput) (models.Act, error) {
	if err := in.validate(); err != nil {
		return models.Act{}, err
	}
	facts := in.Facts()

	draft, err := s.generator.Generate(ctx, facts, in.Category)
	if err != nil {
		s.logger.Warn("act generation failed",
			zap.String("study_id", sess.StudyID),
			zap.String("category", string(in.Category)),
			zap.Error(err))
		if !errors.Is(err, ai.ErrGenerationFailed) {
			err = fmt.Errorf("%w: %v", ai.ErrGenerationFailed, err)
		}
		return models.Act{}, err
	}

	now := s.now().UTC()
	today := now.Format(models.DateLayout)
	baseline := fees.Initial(in.Category)
	act := models.Act{
		ID:               s.newID(),
		Title:            fmt.Sprintf("%s - %s", in.Category, today),
		Type:             in.Category,
		Date:             today,
		RawTranscription: facts,
		LegalContent:     draft,
		Status:           models.StatusDraft,
		Evidence:         []models.Evidence{},
		Fees:             &baseline,
		UpdatedAt:        now,
	}
	if err := s.repo.Save(ctx, sess.StudyID, act); err != nil {
		return models.Act{}, err
	}

	sess.CurrentActID = act.ID
	s.logger.Info("act created",
		zap.String("study_id", sess.StudyID),
		zap.String("act_id", act.ID),
		zap.String("category", string(act.Type)))
	return act, nil
}

// List returns the study's acts, newest first.
func (s *Service) List(ctx context.Context, sess *session.Session) ([]models.Act, error) {
	return s.repo.List(ctx, sess.StudyID)
}

// Get opens one act and makes it the session's current act.
func (s *Service) Get(ctx context.Context, sess *session.Session, id string) (models.Act, error) {
	act, err := s.repo.Get(ctx, sess.StudyID, id)
	if err != nil {
		return models.Act{}, err
	}
	sess.CurrentActID = act.ID
	return act, nil
}

// Search returns acts whose title, type, facts or content contain term,
// case-insensitively. An empty term returns every act.
func (s *Service) Search(ctx context.Context, sess *session.Session, term string) ([]models.Act, error) {
	acts, err := s.repo.List(ctx, sess.StudyID)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return acts, nil
	}

	out := make([]models.Act, 0, len(acts))
	for _, a := range acts {
		haystack := strings.ToLower(strings.Join([]string{a.Title, string(a.Type), a.RawTranscription, a.LegalContent}, "\n"))
		if strings.Contains(haystack, term) {
			out = append(out, a)
		}
	}
	return out, nil
}

// UpdateContent replaces the generated body.
func (s *Service) UpdateContent(ctx context.Context, sess *session.Session, id, content string) (models.Act, error) {
	return s.mutate(ctx, sess, id, func(a *models.Act) error {
		a.LegalContent = content
		return nil
	})
}

// FeesInput carries the editable fee inputs.
type FeesInput struct {
	Emoluments   float64 `json:"emoluments"`
	Transport    float64 `json:"transport"`
	Registration float64 `json:"registration"`
}

// UpdateFees sets the fee inputs and recomputes tax and total.
func (s *Service) UpdateFees(ctx context.Context, sess *session.Session, id string, in FeesInput) (models.Act, error) {
	next, err := fees.Recompute(models.Fees{
		Emoluments:   in.Emoluments,
		Transport:    in.Transport,
		Registration: in.Registration,
	})
	if err != nil {
		return models.Act{}, err
	}
	return s.mutate(ctx, sess, id, func(a *models.Act) error {
		a.Fees = &next
		return nil
	})
}

// AdvanceStatus moves the act forward in its drafting stages.
func (s *Service) AdvanceStatus(ctx context.Context, sess *session.Session, id string, status models.Status) (models.Act, error) {
	return s.mutate(ctx, sess, id, func(a *models.Act) error {
		return a.AdvanceStatus(status)
	})
}

// AttachEvidence embeds a media blob in the act.
func (s *Service) AttachEvidence(ctx context.Context, sess *session.Session, id string, blob []byte, description string) (models.Act, models.Evidence, error) {
	var item models.Evidence
	act, err := s.mutate(ctx, sess, id, func(a *models.Act) error {
		next, ev, err := s.evidence.Attach(*a, blob, description)
		if err != nil {
			return err
		}
		*a, item = next, ev
		return nil
	})
	return act, item, err
}

// AttachEvidenceURL records an externally hosted proof.
func (s *Service) AttachEvidenceURL(ctx context.Context, sess *session.Session, id, url, description string) (models.Act, models.Evidence, error) {
	var item models.Evidence
	act, err := s.mutate(ctx, sess, id, func(a *models.Act) error {
		next, ev, err := s.evidence.AttachURL(*a, url, description)
		if err != nil {
			return err
		}
		*a, item = next, ev
		return nil
	})
	return act, item, err
}

// RemoveEvidence drops one proof; unknown ids leave the act unchanged.
func (s *Service) RemoveEvidence(ctx context.Context, sess *session.Session, id, evidenceID string) (models.Act, error) {
	return s.mutate(ctx, sess, id, func(a *models.Act) error {
		*a = s.evidence.Remove(*a, evidenceID)
		return nil
	})
}

// Stats is the dashboard summary.
type Stats struct {
	Acts       int                   `json:"acts"`
	Evidence   int                   `json:"evidence"`
	ByStatus   map[models.Status]int `json:"byStatus"`
	TotalFees  float64               `json:"totalFees"`
	Pending    int                   `json:"pending"`
	LatestActs []string              `json:"latestActs"`
}

// Stats summarizes the study's acts.
func (s *Service) Stats(ctx context.Context, sess *session.Session) (Stats, error) {
	acts, err := s.repo.List(ctx, sess.StudyID)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Acts:     len(acts),
		Evidence: evidence.Count(acts),
		ByStatus: make(map[models.Status]int),
	}
	for _, a := range acts {
		st.ByStatus[a.Status]++
		if a.Fees != nil {
			st.TotalFees += a.Fees.Total
		}
	}

	recent := append([]models.Act(nil), acts...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].UpdatedAt.After(recent[j].UpdatedAt) })
	for i := 0; i < len(recent) && i < 5; i++ {
		st.LatestActs = append(st.LatestActs, recent[i].ID)
	}

	pending, err := s.repo.Pending(sess.StudyID)
	if err != nil {
		return Stats{}, err
	}
	st.Pending = len(pending)
	return st, nil
}

// RenderPDF prints the act with the study header. Without a saved profile
// the header falls back to the session identity.
func (s *Service) RenderPDF(ctx context.Context, sess *session.Session, id string) ([]byte, error) {
	act, err := s.repo.Get(ctx, sess.StudyID, id)
	if err != nil {
		return nil, err
	}

	profile, err := s.profile(ctx, sess)
	if err != nil {
		return nil, err
	}
	return printer.RenderActPDF(act, profile)
}

func (s *Service) profile(ctx context.Context, sess *session.Session) (models.Profile, error) {
	if sess.Profile != nil {
		return *sess.Profile, nil
	}
	p, err := s.repo.LoadProfile(ctx, sess.StudyID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Profile{
			Name:      sess.User.Name,
			StudyName: sess.StudyID,
			Matricule: sess.User.Matricule,
			Email:     sess.User.Email,
		}, nil
	}
	if err != nil {
		return models.Profile{}, err
	}
	sess.Profile = &p
	return p, nil
}

// mutate loads the act, applies fn, bumps the timestamp and saves it.
func (s *Service) mutate(ctx context.Context, sess *session.Session, id string, fn func(*models.Act) error) (models.Act, error) {
	act, err := s.repo.Get(ctx, sess.StudyID, id)
	if err != nil {
		return models.Act{}, err
	}
	act = act.Clone()
	if err := fn(&act); err != nil {
		return models.Act{}, err
	}

	act.Touch(s.now())
	if err := s.repo.Save(ctx, sess.StudyID, act); err != nil {
		return models.Act{}, err
	}
	sess.CurrentActID = act.ID
	return act, nil
}
