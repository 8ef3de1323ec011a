package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/yourorg/taskboard/internal/security/middleware"
	"github.com/yourorg/taskboard/internal/service"
)

// AuthHandler handles registration, sessions and profiles
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the minted token and the account it belongs to
type LoginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

// Logout handles POST /api/auth/logout by blacklisting the presented token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetTokenFromContext(r.Context())
	claims := middleware.GetClaimsFromContext(r.Context())
	if token == "" {
		http.Error(w, "missing auth", http.StatusUnauthorized)
		return
	}

	if err := h.authService.Logout(r.Context(), token, claims); err != nil {
		h.logger.Error("failed to blacklist token", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Profiles handles GET /api/auth/profiles with optional role
// (comma-separated), hasManager and sort query parameters
func (h *AuthHandler) Profiles(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing auth", http.StatusUnauthorized)
		return
	}

	query := service.ProfilesQuery{
		Role:     r.URL.Query().Get("role"),
		SortDesc: r.URL.Query().Get("sort") == "desc",
	}
	switch r.URL.Query().Get("hasManager") {
	case "true":
		yes := true
		query.HasManager = &yes
	case "false":
		no := false
		query.HasManager = &no
	}

	users, err := h.authService.GetProfiles(r.Context(), actor, query)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// Profile handles GET /api/auth/profiles/{id}
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing auth", http.StatusUnauthorized)
		return
	}

	user, err := h.authService.GetProfile(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// AssignManagerRequest names the user and the manager to put over them
type AssignManagerRequest struct {
	UserID    string `json:"userId"`
	ManagerID string `json:"managerId"`
}

// AssignManager handles POST /api/auth/assign-manager
func (h *AuthHandler) AssignManager(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing auth", http.StatusUnauthorized)
		return
	}

	var req AssignManagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.ManagerID == "" {
		http.Error(w, "userId and managerId are required", http.StatusBadRequest)
		return
	}

	user, err := h.authService.AssignManager(r.Context(), actor, req.UserID, req.ManagerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
