package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xelth-com/huissierpro/internal/accounts"
	"github.com/xelth-com/huissierpro/internal/models"
	"github.com/xelth-com/huissierpro/internal/session"
	"github.com/xelth-com/huissierpro/internal/utils"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Matricule string `json:"matricule"`
	Password  string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Matricule string `json:"matricule"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	StudyID   string `json:"studyId"`
}

const minPasswordLength = 8

// login handles user login
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if err := decodeJSON(req, &loginReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	// 1. Find User
	user, err := r.deps.Accounts.ByMatricule(req.Context(), strings.TrimSpace(loginReq.Matricule))
	if err != nil {
		if !errors.Is(err, accounts.ErrAccountNotFound) {
			r.logger.Error("account lookup failed", zap.Error(err))
		}
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 2. Check Password
	if !utils.CheckPasswordHash(loginReq.Password, user.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 3. Update Last Login
	now := time.Now()
	if err := r.deps.Accounts.RecordLogin(req.Context(), user.ID, now); err != nil {
		r.logger.Warn("failed to record login", zap.String("user_id", user.ID), zap.Error(err))
	}

	r.respondTokens(w, http.StatusOK, &user, now)
}

// register handles account creation
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var regReq RegisterRequest
	if err := decodeJSON(req, &regReq); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	regReq.Matricule = strings.TrimSpace(regReq.Matricule)
	regReq.StudyID = strings.TrimSpace(regReq.StudyID)
	if regReq.Matricule == "" || regReq.StudyID == "" || regReq.Email == "" {
		respondError(w, http.StatusBadRequest, "matricule, email and studyId are required")
		return
	}
	if len(regReq.Password) < minPasswordLength {
		respondError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	// 1. Hash Password
	hashedPassword, err := utils.HashPassword(regReq.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	// 2. Create User
	user := models.UserAuth{
		Matricule: regReq.Matricule,
		Email:     strings.TrimSpace(regReq.Email),
		Password:  hashedPassword,
		Name:      regReq.Name,
		StudyID:   regReq.StudyID,
		Role:      "huissier",
		IsActive:  true,
	}
	if err := r.deps.Accounts.Create(req.Context(), &user); err != nil {
		if errors.Is(err, accounts.ErrAccountExists) {
			respondError(w, http.StatusConflict, "Matricule or email already registered")
			return
		}
		if errors.Is(err, accounts.ErrStudyTaken) {
			respondError(w, http.StatusConflict, "Study already has an account")
			return
		}
		r.logger.Error("account creation failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}
	r.logger.Info("account registered", zap.String("user_id", user.ID), zap.String("study_id", user.StudyID))

	// 3. Generate Tokens for immediate login
	r.respondTokens(w, http.StatusCreated, &user, time.Now())
}

// logout ends the session. Tokens are stateless; the client discards them.
func (r *Router) logout(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

func (r *Router) respondTokens(w http.ResponseWriter, status int, user *models.UserAuth, now time.Time) {
	accessToken, refreshToken, err := utils.GenerateTokens(user, r.deps.JWTSecret)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate tokens")
		return
	}

	respondJSON(w, status, map[string]interface{}{
		"tokens": map[string]string{
			"accessToken":  accessToken,
			"refreshToken": refreshToken,
		},
		"user":    user,
		"session": session.FromUser(user, now),
	})
}
