package companies

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/response"
)

// CreateRequest is the body for POST /companies.
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
}

// Handler handles company directory HTTP endpoints.
type Handler struct {
	dir    Directory
	logger *zap.Logger
}

// NewHandler creates a company handler.
func NewHandler(dir Directory, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{dir: dir, logger: logger}
}

// List handles GET /companies.
func (h *Handler) List(c *gin.Context) {
	list, err := h.dir.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "There is a problem with fetching companies data.")
		return
	}
	if list == nil {
		list = []models.Company{}
	}
	response.OK(c, list)
}

// Create handles POST /companies (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	company, err := h.dir.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err, "There is a problem with creating new company.")
		return
	}
	response.Created(c, company)
}

// Delete handles DELETE /companies/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid company id")
		return
	}
	if err := h.dir.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "There is a problem with deleting the company.")
		return
	}
	response.OK(c, gin.H{"id": id})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	if response.FromError(c, err, fallback) {
		h.logger.Error(fallback, zap.Error(err))
	}
}
