package clients

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cockpityara/internal/pkg/response"
	"cockpityara/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/clients", h.ListClients)
	rg.POST("/clients", h.AddClient)
	rg.GET("/clients/:id", h.GetClient)
	rg.PATCH("/clients/:id", h.UpdateClient)
	rg.DELETE("/clients/:id", h.RemoveClient)
	rg.POST("/clients/:id/select", h.SelectClient)
	rg.GET("/stats", h.GetStats)
}

func (h *Handler) ListClients(c *gin.Context) {
	list, err := h.service.UnifiedList(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to read client list")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"clients":    list,
		"sync_state": h.service.State(),
	})
}

func (h *Handler) AddClient(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	rec, stored, err := h.service.AddClient(c.Request.Context(), req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Client name is required")
			return
		}
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to create client")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"client": rec,
		"stored": stored,
	})
}

func (h *Handler) GetClient(c *gin.Context) {
	rec, err := h.service.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Client not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to read client")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"client": rec})
}

func (h *Handler) UpdateClient(c *gin.Context) {
	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return
	}

	rec, err := h.service.UpdateClient(c.Request.Context(), c.Param("id"), repository.PartialUpdate{
		Name:           req.Name,
		Phone:          req.Phone,
		Status:         req.Status,
		EstimatedValue: req.EstimatedValue,
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Client not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to update client")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"client": rec})
}

func (h *Handler) RemoveClient(c *gin.Context) {
	list, err := h.service.RemoveClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrUpdateFailed) {
			response.Error(c, http.StatusBadRequest, "NOT_LOCAL", "Only locally stored clients can be removed")
			return
		}
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to remove client")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"clients": list})
}

func (h *Handler) SelectClient(c *gin.Context) {
	rec, err := h.service.SelectActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Client not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to select client")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"client": rec})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.ComputeStats(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to compute stats")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}
