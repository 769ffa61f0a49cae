package adaptor

import (
	"encoding/json"
	"net/http"

	"ferienpass/internal/dto/request"
	"ferienpass/internal/usecase"
	"ferienpass/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		respondError(w, h.log, err, "register")
		return
	}

	utils.ResponseCreated(w, "Registration successful", resp)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		respondError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// The session middleware already verified and stashed the token.
	token, ok := utils.GetTokenFromContext(r.Context())
	if !ok {
		utils.ResponseBadRequest(w, "No token provided", nil)
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		respondError(w, h.log, err, "logout")
		return
	}

	utils.ResponseSuccess(w, "Logout successful", nil)
}
