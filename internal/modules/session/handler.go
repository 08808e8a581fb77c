package session

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cockpityara/internal/pkg/response"
)

type LoginRequest struct {
	Password string `json:"password"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/session", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	// Empty body is fine for the anonymous bootstrap
	_ = c.ShouldBindJSON(&req)

	token, p, err := h.service.Login(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			response.Error(c, http.StatusUnauthorized, "INVALID_PASSWORD", "Senha incorreta")
			return
		}
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to open session")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token":   token,
		"profile": p,
	})
}
