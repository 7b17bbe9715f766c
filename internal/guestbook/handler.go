package guestbook

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/guestdesk/backend/internal/models"
	"github.com/guestdesk/backend/pkg/response"
)

const contentTypePDF = "application/pdf"

// Handler handles guest book HTTP endpoints.
type Handler struct {
	service *Service
	ledger  Ledger
	logger  *zap.Logger
}

// NewHandler creates a guest book handler.
func NewHandler(service *Service, ledger Ledger, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, ledger: ledger, logger: logger}
}

// Register handles POST /register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "There is a problem with guest registration.")
		return
	}
	response.OK(c, res)
}

// List handles GET /guest-book (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.ledger.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "There is a problem with fetching guest book data.")
		return
	}
	if list == nil {
		list = []models.GuestSubmission{}
	}
	response.OK(c, list)
}

// Download handles GET /guest-book/:id/download (admin only).
func (h *Handler) Download(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid guest book id")
		return
	}
	pdf, s, err := h.ledger.GetDocument(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "There is a problem with downloading the document.")
		return
	}
	response.Attachment(c, contentTypePDF, DocumentFilename(s.LastName, s.FirstName, s.CreatedAt), pdf)
}

func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	if response.FromError(c, err, fallback) {
		h.logger.Error(fallback, zap.Error(err))
	}
}
