package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guestdesk/backend/pkg/apperr"
)

// Body is the standard API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, Body{Success: false, Error: err})
}

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, err string) {
	c.JSON(http.StatusUnauthorized, Body{Success: false, Error: err})
}

// Forbidden sends 403.
func Forbidden(c *gin.Context, err string) {
	c.JSON(http.StatusForbidden, Body{Success: false, Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, Body{Success: false, Error: err})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, Body{Success: false, Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, Body{Success: false, Error: err})
}

// FromError maps a classified error to its status code. Client-fault kinds expose
// their message; every other kind answers with fallback so no internal detail leaks.
// It reports whether the error was a server fault, so callers know to log it.
func FromError(c *gin.Context, err error, fallback string) (serverFault bool) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		BadRequest(c, apperr.Message(err, fallback))
	case apperr.KindNotFound:
		NotFound(c, apperr.Message(err, fallback))
	case apperr.KindConflict:
		Conflict(c, apperr.Message(err, fallback))
	case apperr.KindUnauthorized:
		Unauthorized(c, apperr.Message(err, fallback))
	default:
		Internal(c, fallback)
		return true
	}
	return false
}

// Attachment sends raw bytes as a downloadable file.
func Attachment(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}
