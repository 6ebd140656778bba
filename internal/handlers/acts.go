package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/services/acts"
)

// listActs returns the study's acts; ?q= filters them.
func (r *Router) listActs(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	list, err := r.deps.Acts.Search(req.Context(), sess, req.URL.Query().Get("q"))
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// createAct drafts a new act from the submitted facts
func (r *Router) createAct(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	var in acts.CreateInput
	if err := decodeJSON(req, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	act, err := r.deps.Acts.Create(req.Context(), sess, in)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, act)
}

func (r *Router) getAct(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	act, err := r.deps.Acts.Get(req.Context(), sess, mux.Vars(req)["id"])
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, act)
}

func (r *Router) updateContent(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	var body struct {
		LegalContent string `json:"legalContent"`
	}
	if err := decodeJSON(req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	act, err := r.deps.Acts.UpdateContent(req.Context(), sess, mux.Vars(req)["id"], body.LegalContent)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, act)
}

func (r *Router) updateFees(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	var in acts.FeesInput
	if err := decodeJSON(req, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	act, err := r.deps.Acts.UpdateFees(req.Context(), sess, mux.Vars(req)["id"], in)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, act)
}

func (r *Router) updateStatus(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	var body struct {
		Status models.Status `json:"status"`
	}
	if err := decodeJSON(req, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if !body.Status.IsValid() {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Unknown status %q", body.Status))
		return
	}

	act, err := r.deps.Acts.AdvanceStatus(req.Context(), sess, mux.Vars(req)["id"], body.Status)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, act)
}

// attachEvidence accepts a multipart "file" upload, or a "url" form field
// for externally hosted media.
func (r *Router) attachEvidence(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	id := mux.Vars(req)["id"]

	// Leave headroom for the multipart envelope; the evidence store enforces the exact ceiling.
	req.Body = http.MaxBytesReader(w, req.Body, r.deps.MaxUploadBytes+64<<10)
	if err := req.ParseMultipartForm(r.deps.MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart upload")
		return
	}
	description := req.FormValue("description")

	if url := strings.TrimSpace(req.FormValue("url")); url != "" {
		act, item, err := r.deps.Acts.AttachEvidenceURL(req.Context(), sess, id, url, description)
		if err != nil {
			r.respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, map[string]interface{}{"act": act, "evidence": item})
		return
	}

	file, _, err := req.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	blob, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read upload")
		return
	}

	act, item, err := r.deps.Acts.AttachEvidence(req.Context(), sess, id, blob, description)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"act": act, "evidence": item})
}

func (r *Router) removeEvidence(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	vars := mux.Vars(req)
	act, err := r.deps.Acts.RemoveEvidence(req.Context(), sess, vars["id"], vars["evidenceId"])
	if err != nil {
		r.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, act)
}

// actPDF handles the PDF rendering request
func (r *Router) actPDF(w http.ResponseWriter, req *http.Request) {
	sess, ok := r.sessionOf(w, req)
	if !ok {
		return
	}
	id := mux.Vars(req)["id"]

	pdfBytes, err := r.deps.Acts.RenderPDF(req.Context(), sess, id)
	if err != nil {
		r.respondServiceError(w, err)
		return
	}

	// Set headers for download
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"acte_%s.pdf\"", id))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))

	w.Write(pdfBytes)
}
