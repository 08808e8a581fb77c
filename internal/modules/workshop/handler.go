package workshop

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cockpityara/internal/assistant"
	"cockpityara/internal/domain/profile"
	"cockpityara/internal/modules/clients"
	"cockpityara/internal/pkg/response"
)

// ProfileReader supplies the workshop name for contract drafts
type ProfileReader interface {
	Get(ctx context.Context) (*profile.CarpenterProfile, error)
}

type Handler struct {
	service  *Service
	profiles ProfileReader
}

func NewHandler(service *Service, profiles ProfileReader) *Handler {
	return &Handler{service: service, profiles: profiles}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/clients/:id/chat", h.Chat)
	rg.POST("/clients/:id/bom", h.GenerateBOM)
	rg.POST("/clients/:id/contract", h.DraftContract)
	rg.POST("/clients/:id/estimate", h.EstimateCosts)
	rg.POST("/search", h.Search)
}

func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message text is required")
		return
	}

	var image *assistant.Image
	if req.ImageData != "" {
		mediaType := req.ImageMediaType
		if mediaType == "" {
			mediaType = "image/jpeg"
		}
		image = &assistant.Image{MediaType: mediaType, Data: req.ImageData}
	}

	res, err := h.service.Chat(c.Request.Context(), c.Param("id"), req.Text, image)
	if err != nil {
		h.writeToolError(c, err, "Failed to process chat message")
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) GenerateBOM(c *gin.Context) {
	res, err := h.service.GenerateBOM(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeToolError(c, err, "Failed to generate bill of materials")
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) DraftContract(c *gin.Context) {
	workshopName := "a marcenaria"
	if p, err := h.profiles.Get(c.Request.Context()); err == nil && p.Workshop != "" {
		workshopName = p.Workshop
	}

	res, err := h.service.DraftContract(c.Request.Context(), c.Param("id"), workshopName)
	if err != nil {
		h.writeToolError(c, err, "Failed to draft contract")
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) EstimateCosts(c *gin.Context) {
	var req EstimateRequest
	// Body is optional for estimates
	_ = c.ShouldBindJSON(&req)

	res, err := h.service.EstimateCosts(c.Request.Context(), c.Param("id"), req.Location)
	if err != nil {
		h.writeToolError(c, err, "Failed to estimate costs")
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Search prompt is required")
		return
	}

	res, err := h.service.Search(c.Request.Context(), req.Prompt, req.Location)
	if err != nil {
		h.writeToolError(c, err, "Search failed")
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) writeToolError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, clients.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Client not found")
	case errors.Is(err, ErrNoCredits):
		response.Error(c, http.StatusPaymentRequired, "NO_CREDITS", "Créditos insuficientes. Adquira mais créditos para continuar.")
	case errors.Is(err, ErrStaleReply):
		response.Error(c, http.StatusConflict, "STALE_REPLY", "Client selection changed, result discarded")
	case errors.Is(err, ErrAssistantOffline):
		response.Error(c, http.StatusServiceUnavailable, "ASSISTANT_OFFLINE", "Assistente offline. Configure sua chave de API.")
	case errors.Is(err, ErrUnavailable):
		response.Error(c, http.StatusBadGateway, "ASSISTANT_UNAVAILABLE", "Recurso indisponível no momento. Tente novamente.")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
