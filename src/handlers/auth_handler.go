package handlers

import (
	"net/http"

	"github.com/username/nepsefolio/backend/src/models"
	"github.com/username/nepsefolio/backend/src/security"
	"github.com/username/nepsefolio/backend/src/services"
	"github.com/username/nepsefolio/backend/src/utils"
)

type AuthHandler struct {
	authService services.AuthService
	tokens      *security.AuthService
}

func NewAuthHandler(authService services.AuthService, tokens *security.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		sendServiceError(w, r, err, "register")
		return
	}
	user, err := h.authService.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		sendServiceError(w, r, err, "register")
		return
	}
	utils.SendJSON(w, user, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		sendServiceError(w, r, err, "log in")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.SendJSONError(w, "email and password are required", http.StatusBadRequest)
		return
	}
	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		sendServiceError(w, r, err, "log in")
		return
	}
	utils.SendJSON(w, loginResponse{AccessToken: token, TokenType: "Bearer", User: user}, http.StatusOK)
}
