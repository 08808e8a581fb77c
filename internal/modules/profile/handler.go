package profile

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cockpityara/internal/pkg/response"
)

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Workshop string `json:"workshop"`
	Password string `json:"password"`
}

type PurchaseCreditsRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.GetProfile)
	rg.PUT("/profile", h.UpdateProfile)
	rg.POST("/profile/credits", h.PurchaseCredits)
	rg.GET("/profile/credits", h.ListTransactions)
}

func (h *Handler) GetProfile(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to read profile")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.Update(c.Request.Context(), UpdateInput{
		Name:     req.Name,
		Workshop: req.Workshop,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update profile")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

func (h *Handler) PurchaseCredits(c *gin.Context) {
	var req PurchaseCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Amount is required")
		return
	}

	total, err := h.service.PurchaseCredits(c.Request.Context(), req.Amount)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Amount must be positive")
			return
		}
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to add credits")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"credits": total})
}

func (h *Handler) ListTransactions(c *gin.Context) {
	txns, err := h.service.Transactions(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to read transactions")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transactions": txns})
}
