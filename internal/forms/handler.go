package forms

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/guestdesk/backend/internal/auth"
	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/response"
)

// CreateRequest is the body for POST /forms.
type CreateRequest struct {
	Name    string `json:"name" binding:"required"`
	Content string `json:"content"`
}

// UpdateRequest is the body for PUT /forms/:id. The name of a form is fixed once created.
type UpdateRequest struct {
	Content string `json:"content"`
}

// Handler handles form template HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a form handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Resolve handles GET /forms/resolve?locate=&gdpr=, returning the template a registration would use.
func (h *Handler) Resolve(c *gin.Context) {
	locate := c.Query("locate")
	if NormalizeName(locate) == "" {
		response.BadRequest(c, "locate is required")
		return
	}
	gdpr := false
	if raw := c.Query("gdpr"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "invalid gdpr flag")
			return
		}
		gdpr = v
	}
	f, err := h.store.GetByName(c.Request.Context(), ResolveVariant(locate, gdpr))
	if err != nil {
		h.fail(c, err, "There is a problem with fetching form data.")
		return
	}
	response.OK(c, f)
}

// List handles GET /forms (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "There is a problem with fetching forms data.")
		return
	}
	if list == nil {
		list = []models.Form{}
	}
	response.OK(c, list)
}

// Create handles POST /forms (admin only).
func (h *Handler) Create(c *gin.Context) {
	claims, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	f, err := h.store.Create(c.Request.Context(), req.Name, req.Content, claims.UserID)
	if err != nil {
		h.fail(c, err, "There is a problem with creating new form.")
		return
	}
	h.logger.Info("form created", zap.Int64("form_id", f.ID), zap.String("name", f.Name), zap.Int64("user_id", claims.UserID))
	response.Created(c, f)
}

// Update handles PUT /forms/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	claims, ok := auth.CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "missing user context")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	f, err := h.store.Update(c.Request.Context(), id, req.Content, claims.UserID)
	if err != nil {
		h.fail(c, err, "There is a problem with updating the form.")
		return
	}
	response.OK(c, f)
}

// Delete handles DELETE /forms/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid form id")
		return
	}
	f, err := h.store.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "There is a problem with deleting the form.")
		return
	}
	h.logger.Info("form deleted", zap.Int64("form_id", f.ID), zap.String("name", f.Name))
	response.OK(c, gin.H{"id": f.ID})
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	if response.FromError(c, err, fallback) {
		h.logger.Error(fallback, zap.Error(err))
	}
}
