package handlers

import (
	"github.com/gin-gonic/gin"

	"liquorpos/internal/domain/auth"
	"liquorpos/internal/infrastructure/http/v1/dto"
)

// AuthHandler serves login and registration.
type AuthHandler struct {
	BaseHandler
	service *auth.Service
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *auth.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Login authenticates a user and returns a token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
	})
}

// Register creates a user account.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, user.ID.String())
}
