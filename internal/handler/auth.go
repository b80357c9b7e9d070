package handler

import (
	"net/http"

	"github.com/meowrun/platform/internal/auth"
	"github.com/meowrun/platform/internal/service"
)

// AuthHandler handles registration and login endpoints.
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	result, err := h.authSvc.Register(r.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		RawDevice:   r.Header.Get(auth.DeviceHeader),
		IP:          ClientIP(r),
		UserAgent:   r.UserAgent(),
	})
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, false)
}

// AdminLogin handles POST /admin/login.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, true)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, admin bool) {
	var req loginRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondBadBody(w)
		return
	}

	input := service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		RawDevice: r.Header.Get(auth.DeviceHeader),
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
	}

	var (
		result *service.AuthResult
		err    error
	)
	if admin {
		result, err = h.authSvc.AdminLogin(r.Context(), input)
	} else {
		result, err = h.authSvc.Login(r.Context(), input)
	}
	if err != nil {
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, result)
}
