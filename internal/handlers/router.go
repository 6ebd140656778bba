package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/accounts"
	"github.com/xelth-com/huissierpro/internal/ai"
	"github.com/xelth-com/huissierpro/internal/buildinfo"
	"github.com/xelth-com/huissierpro/internal/evidence"
	"github.com/xelth-com/huissierpro/internal/fees"
	"github.com/xelth-com/huissierpro/internal/middleware"
	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/repository"
	"github.com/xelth-com/huissierpro/internal/services/acts"
	"github.com/xelth-com/huissierpro/internal/session"
	"github.com/xelth-com/huissierpro/internal/websocket"
)

// StudyStore is the study-level persistence behind the profile, backup and
// sync endpoints.
type StudyStore interface {
	LoadProfile(ctx context.Context, studyID string) (models.Profile, error)
	SaveProfile(ctx context.Context, studyID string, profile models.Profile) error
	Export(ctx context.Context, studyID string) (repository.Backup, error)
	Import(ctx context.Context, studyID string, b repository.Backup, confirmed bool) error
	Sync(ctx context.Context, studyID string) (repository.SyncReport, error)
}

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Acts      *acts.Service
	Study     StudyStore
	Accounts  accounts.Store
	Hub       *websocket.Hub
	JWTSecret string
	// MaxUploadBytes bounds multipart evidence uploads.
	MaxUploadBytes int64
	Logger         *zap.Logger
}

// Router wraps the mux router and the application services
type Router struct {
	*mux.Router
	deps   Deps
	logger *zap.Logger
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(deps Deps) *Router {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = evidence.DefaultMaxBytes
	}
	r := &Router{
		Router: mux.NewRouter(),
		deps:   deps,
		logger: deps.Logger,
	}
	r.Use(middleware.RequestLogger(deps.Logger))

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")
	auth.HandleFunc("/logout", r.logout).Methods("POST")

	// Sync events; the token travels as a query parameter
	r.HandleFunc("/ws", r.serveWs).Methods("GET")

	// API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(deps.JWTSecret))

	api.HandleFunc("/acts", r.listActs).Methods("GET")
	api.HandleFunc("/acts", r.createAct).Methods("POST")
	api.HandleFunc("/acts/{id}", r.getAct).Methods("GET")
	api.HandleFunc("/acts/{id}/content", r.updateContent).Methods("PUT")
	api.HandleFunc("/acts/{id}/fees", r.updateFees).Methods("PUT")
	api.HandleFunc("/acts/{id}/status", r.updateStatus).Methods("PUT")
	api.HandleFunc("/acts/{id}/evidence", r.attachEvidence).Methods("POST")
	api.HandleFunc("/acts/{id}/evidence/{evidenceId}", r.removeEvidence).Methods("DELETE")
	api.HandleFunc("/acts/{id}/pdf", r.actPDF).Methods("GET")

	api.HandleFunc("/fees/base", r.baseFee).Methods("GET")
	api.HandleFunc("/categories", r.listCategories).Methods("GET")

	api.HandleFunc("/profile", r.getProfile).Methods("GET")
	api.HandleFunc("/profile", r.putProfile).Methods("PUT")
	api.HandleFunc("/export", r.exportBackup).Methods("GET")
	api.HandleFunc("/import", r.importBackup).Methods("POST")
	api.HandleFunc("/sync", r.syncNow).Methods("POST")
	api.HandleFunc("/stats", r.stats).Methods("GET")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "huissierpro",
		"build":   buildinfo.Fields(),
	})
}

// sessionOf returns the session set by the auth middleware.
func (r *Router) sessionOf(w http.ResponseWriter, req *http.Request) (*session.Session, bool) {
	sess, err := session.FromContext(req.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Session required")
		return nil, false
	}
	return sess, true
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps a domain error onto an HTTP status.
func (r *Router) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		r.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation),
		errors.Is(err, fees.ErrInvalidFeeValue),
		errors.Is(err, evidence.ErrUnsupportedMedia),
		errors.Is(err, repository.ErrInvalidBackup),
		errors.Is(err, repository.ErrImportNotConfirmed):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidStatusTransition):
		return http.StatusConflict
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ai.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(req *http.Request, v interface{}) error {
	return json.NewDecoder(req.Body).Decode(v)
}
