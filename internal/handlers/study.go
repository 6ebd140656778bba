package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/fees"
	"github.com/xelth-com/huissierpro/internal/middleware"
	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/repository"
	"github.com/xelth-com/huissierpro/internal/websocket"
)

// maxBackupBytes bounds an uploaded export document.
const maxBackupBytes = 256 << 20

func (r *Router) baseFee(w http.ResponseWriter, req *http.Request) {
	category := models.Category(req.URL.Query().Get("category"))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"baseFee":  fees.BaseFeeFor(category),
		"fees":     fees.Initial(category),
	})
}

func (r *Router) listCategories(w http.ResponseWriter, req *http.Request) {
	out := make([]map[string]interface{}, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, map[string]interface{}{"category": c, "baseFee": fees.BaseFeeFor(c)})
	}
	respondJSON(w, http.StatusOK, out)
}

func (r *Router) getProfile(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	profile, err := r.deps.Study.LoadProfile(req.Context(), sess.StudyID)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (r *Router) putProfile(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	var profile models.Profile
	if err := decodeJSON(req, &profile); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := r.deps.Study.SaveProfile(req.Context(), sess.StudyID, profile); err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// exportBackup downloads the study as one JSON document.
func (r *Router) exportBackup(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	backup, err := r.deps.Study.Export(req.Context(), sess.StudyID)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("huissierpro_backup_%s.json", backup.ExportDate.Format("2006-01-02"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	respondJSON(w, http.StatusOK, backup)
}

// importBackup replaces the study with an uploaded export. The caller must
// pass ?confirm=true.
func (r *Router) importBackup(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	confirmed, _ := strconv.ParseBool(req.URL.Query().Get("confirm"))

	data, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBackupBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read backup")
		return
	}
	backup, err := repository.DecodeBackup(data)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	if err := r.deps.Study.Import(req.Context(), sess.StudyID, backup, confirmed); err != nil {
		r.respondServiceError(w, err)
		return
	}

	r.logger.Info("backup imported", zap.String("study_id", sess.StudyID), zap.Int("acts", len(backup.Acts)))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"imported": len(backup.Acts),
		"version":  backup.Version,
	})
}

// syncNow runs one reconciliation pass for the study.
func (r *Router) syncNow(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	report, err := r.deps.Study.Sync(req.Context(), sess.StudyID)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (r *Router) stats(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	st, err := r.deps.Acts.Stats(req.Context(), sess)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stats":       st,
		"generatedAt": time.Now().UTC(),
	})
}

// serveWs subscribes the caller to its study's sync events. Browsers cannot
// set headers on websocket requests, so the access token comes in ?token=.
func (r *Router) serveWs(w http.ResponseWriter, req *http.Request) {
	if r.deps.Hub == nil {
		respondError(w, http.StatusServiceUnavailable, "Sync events unavailable")
		return
	}
	token := req.URL.Query().Get("token")
	if bearer, ok := middleware.BearerToken(req); ok {
		token = bearer
	}
	sess, err := middleware.SessionFromToken(token, r.deps.JWTSecret)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	websocket.ServeWs(r.deps.Hub, sess.StudyID, w, req)
}
