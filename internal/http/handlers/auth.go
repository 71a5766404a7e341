package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/houseoftheai/server/internal/auth"
	"github.com/houseoftheai/server/internal/middleware"
	"github.com/houseoftheai/server/internal/model"
)

// AuthHandler handles the signup, verification, and login endpoints
type AuthHandler struct {
	authService *auth.AuthService
	jwtService  *auth.JWTService
	production  bool
	log         *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.AuthService, jwtService *auth.JWTService, production bool, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
		production:  production,
		log:         log,
	}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Message string `json:"message"`
	TempID  string `json:"tempId"`
}

// HandleSignup handles POST /api/auth/signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "Name, email and password are required.")
		return
	}

	tempID, err := h.authService.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateAccount) {
			respondMessage(w, http.StatusBadRequest, "Email already registered.")
			return
		}
		h.log.Error("signup failed", slog.Any("error", err))
		respondMessage(w, http.StatusInternalServerError, "Signup failed.")
		return
	}

	respondJSON(w, http.StatusOK, signupResponse{
		Message: "OTP sent. Please verify to complete signup.",
		TempID:  tempID,
	})
}

type verifyOTPRequest struct {
	TempID string `json:"tempId"`
	OTP    string `json:"otp"`
}

type userResponse struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
}

// HandleVerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.authService.VerifyOTP(r.Context(), strings.TrimSpace(req.TempID), strings.TrimSpace(req.OTP))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrSessionExpired):
			respondMessage(w, http.StatusBadRequest, "Signup session expired.")
		case errors.Is(err, auth.ErrOTPExpired):
			respondMessage(w, http.StatusBadRequest, "OTP expired.")
		case errors.Is(err, auth.ErrInvalidOTP):
			respondMessage(w, http.StatusBadRequest, "Invalid OTP.")
		default:
			h.log.Error("otp verification failed", slog.Any("error", err))
			respondMessage(w, http.StatusInternalServerError, "OTP verification failed.")
		}
		return
	}

	if !h.issueSession(w, user) {
		return
	}
	respondJSON(w, http.StatusOK, userResponse{Message: "Signup complete!", User: user})
}

type resendOTPRequest struct {
	TempID string `json:"tempId"`
}

// HandleResendOTP handles POST /api/auth/resend-otp
func (h *AuthHandler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.authService.ResendOTP(r.Context(), strings.TrimSpace(req.TempID)); err != nil {
		if errors.Is(err, auth.ErrSignupExpired) {
			respondMessage(w, http.StatusBadRequest, "Signup expired.")
			return
		}
		h.log.Error("resend otp failed", slog.Any("error", err))
		respondMessage(w, http.StatusInternalServerError, "Could not resend OTP.")
		return
	}

	respondMessage(w, http.StatusOK, "OTP resent successfully.")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.authService.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondMessage(w, http.StatusBadRequest, "Invalid email or password.")
			return
		}
		h.log.Error("login failed", slog.Any("error", err))
		respondMessage(w, http.StatusInternalServerError, "Login failed.")
		return
	}

	if !h.issueSession(w, user) {
		return
	}
	respondJSON(w, http.StatusOK, userResponse{Message: "Login successful", User: user})
}

type googleLoginRequest struct {
	GoogleID string `json:"googleId"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// HandleGoogleLogin handles POST /api/auth/google
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req googleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.authService.GoogleLogin(r.Context(), req.GoogleID, strings.TrimSpace(req.Email), req.Name)
	if err != nil {
		h.log.Error("google auth failed", slog.Any("error", err))
		respondMessage(w, http.StatusInternalServerError, "Google auth failed.")
		return
	}

	if !h.issueSession(w, user) {
		return
	}
	respondJSON(w, http.StatusOK, userResponse{Message: "Google login successful", User: user})
}

// HandleLogout handles POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, h.production)
	respondMessage(w, http.StatusOK, "Logged out successfully")
}

// HandleMe handles GET /api/auth/me (protected)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok || user == nil {
		respondMessage(w, http.StatusUnauthorized, "Not authorized — No token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// issueSession signs a session token and sets the cookie. Returns false after
// writing an error response when signing fails.
func (h *AuthHandler) issueSession(w http.ResponseWriter, user model.User) bool {
	token, err := h.jwtService.SignSession(user)
	if err != nil {
		h.log.Error("failed to sign session token", slog.Any("error", err))
		respondMessage(w, http.StatusInternalServerError, "Login failed.")
		return false
	}
	setSessionCookie(w, token, h.production)
	return true
}
