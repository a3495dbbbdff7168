package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/mejaggi/nexus-answers-56/internal/auth"
	"github.com/mejaggi/nexus-answers-56/internal/chat"
	"github.com/mejaggi/nexus-answers-56/internal/core"
	"github.com/mejaggi/nexus-answers-56/internal/store"
)

type contextKey string

const userContextKey contextKey = "user"

type APIHandler struct {
	chatService *core.Service
	store       *store.SQLiteStore
	tokens      *auth.Manager
}

func NewAPIHandler(cs *core.Service, st *store.SQLiteStore, tokens *auth.Manager) *APIHandler {
	return &APIHandler{chatService: cs, store: st, tokens: tokens}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string, analytics *chat.AnalyticsMetadata) {
	writeJSON(w, status, chat.ErrorResponse{Error: message, Analytics: analytics})
}

// BearerAuthMiddleware validates the access token and loads the account it
// belongs to.
func (h *APIHandler) BearerAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header is required", nil)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		userID, err := h.tokens.ValidateToken(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token", nil)
			return
		}

		user, err := h.store.GetUserByID(userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Failed to load user")
			writeError(w, http.StatusInternalServerError, "Failed to process user identity", nil)
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "User not found", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type credentialsRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
}

type authUserPayload struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
}

type authResponse struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refreshToken"`
	ExpiresIn    int             `json:"expiresIn"`
	User         authUserPayload `json:"user"`
}

func (h *APIHandler) issueSession(w http.ResponseWriter, user *store.User, status int) {
	token, err := h.tokens.IssueToken(user.ID)
	if err != nil {
		log.WithError(err).Error("Failed to issue token")
		writeError(w, http.StatusInternalServerError, "Failed to generate token", nil)
		return
	}
	refresh, err := h.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		log.WithError(err).Error("Failed to issue refresh token")
		writeError(w, http.StatusInternalServerError, "Failed to generate token", nil)
		return
	}

	writeJSON(w, status, authResponse{
		Token:        token,
		RefreshToken: refresh,
		ExpiresIn:    int(h.tokens.AccessTokenTTL().Seconds()),
		User: authUserPayload{
			ID:         user.ID,
			Email:      user.Email,
			Name:       user.Name,
			Department: user.Department,
		},
	})
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	existing, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		log.WithError(err).Error("Failed to check existing user")
		writeError(w, http.StatusInternalServerError, "Failed to create user", nil)
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "An account with this email already exists", nil)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		log.WithError(err).Error("Failed to hash password")
		writeError(w, http.StatusInternalServerError, "Failed to process password", nil)
		return
	}

	user, err := h.store.CreateUser(req.Email, hashed, req.Name, req.Department)
	if err != nil {
		log.WithError(err).WithField("email", req.Email).Error("Failed to create user")
		writeError(w, http.StatusInternalServerError, "Failed to create user", nil)
		return
	}

	h.issueSession(w, user, http.StatusCreated)
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", nil)
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		log.WithError(err).WithField("email", req.Email).Error("Failed to look up user")
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	h.issueSession(w, user, http.StatusOK)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *APIHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken is required", nil)
		return
	}

	userID, err := h.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}

	user, err := h.store.GetUserByID(userID)
	if err != nil || user == nil {
		writeError(w, http.StatusUnauthorized, "Unknown user", nil)
		return
	}

	h.issueSession(w, user, http.StatusOK)
}

// LogoutHandler acknowledges a logout. Tokens are stateless, so there is
// nothing to revoke server-side; the client clears its own session first.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages is required", nil)
		return
	}
	if req.Department == "" {
		req.Department = chat.DepartmentGeneral
	}

	resp, cerr := h.chatService.HandleChat(r.Context(), req)
	if cerr != nil {
		writeError(w, cerr.StatusCode, cerr.Message, cerr.Analytics)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// AnalyticsHandler is the fire-and-forget sink. Persistence failures are
// logged, not surfaced: the caller never depends on this endpoint.
func (h *APIHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	var rec chat.AnalyticsMetadata
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return
	}
	if rec.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required", nil)
		return
	}

	if err := h.store.SaveAnalytics(rec); err != nil {
		log.WithError(err).Warn("Failed to persist analytics record")
	}
	w.WriteHeader(http.StatusAccepted)
}

type analyticsListResponse struct {
	Records  []chat.AnalyticsMetadata `json:"records"`
	Feedback []chat.FeedbackRecord    `json:"feedback"`
}

// ListAnalyticsHandler returns the stored analytics records and feedback so
// the dashboard can aggregate them client-side.
func (h *APIHandler) ListAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListAnalytics(1000)
	if err != nil {
		log.WithError(err).Error("Failed to list analytics")
		writeError(w, http.StatusInternalServerError, "Failed to list analytics", nil)
		return
	}
	feedback, err := h.store.ListFeedback()
	if err != nil {
		log.WithError(err).Error("Failed to list feedback")
		writeError(w, http.StatusInternalServerError, "Failed to list feedback", nil)
		return
	}
	writeJSON(w, http.StatusOK, analyticsListResponse{Records: records, Feedback: feedback})
}

type feedbackRequest struct {
	Rating string `json:"rating"`
}

func (h *APIHandler) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	messageID := chi.URLParam(r, "messageID")

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error(), nil)
		return
	}
	if req.Rating != chat.RatingLike && req.Rating != chat.RatingDislike {
		writeError(w, http.StatusBadRequest, "rating must be like or dislike", nil)
		return
	}

	if err := h.store.UpsertFeedback(messageID, req.Rating); err != nil {
		log.WithError(err).WithField("message_id", messageID).Error("Failed to save feedback")
		writeError(w, http.StatusInternalServerError, "Failed to save feedback", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
