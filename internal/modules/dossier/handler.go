package dossier

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	domainprofile "cockpityara/internal/domain/profile"
	"cockpityara/internal/domain/project"
	"cockpityara/internal/modules/clients"
	"cockpityara/internal/pkg/response"
)

// ClientReader resolves the record to export
type ClientReader interface {
	GetClient(ctx context.Context, id string) (*project.Project, error)
}

// ProfileReader supplies workshop branding for the document
type ProfileReader interface {
	Get(ctx context.Context) (*domainprofile.CarpenterProfile, error)
}

// Renderer turns the dossier HTML into PDF bytes
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
}

// Handler serves the PDF dossier download.
type Handler struct {
	clientsReader ClientReader
	profiles      ProfileReader
	renderer      Renderer
}

func NewHandler(clientsReader ClientReader, profiles ProfileReader, renderer Renderer) *Handler {
	return &Handler{clientsReader: clientsReader, profiles: profiles, renderer: renderer}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/clients/:id/dossier", h.ExportDossier)
}

func (h *Handler) ExportDossier(c *gin.Context) {
	ctx := c.Request.Context()

	rec, err := h.clientsReader.GetClient(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Client not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to read client")
		return
	}

	p, err := h.profiles.Get(ctx)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "STORE_ERROR", "Failed to read profile")
		return
	}

	html, err := renderHTML(rec, p)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "RENDER_ERROR", "Failed to build dossier")
		return
	}

	pdf, err := h.renderer.Render(ctx, html)
	if err != nil {
		response.Error(c, http.StatusServiceUnavailable, "RENDER_ERROR", "PDF export unavailable")
		return
	}

	filename := fmt.Sprintf("dossie-%s.pdf", rec.ID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
