package common

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the client-facing error shape
type ErrorBody struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// SuccessResponse writes data as-is with 200. Protocol endpoints must not be
// wrapped in an envelope.
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// CreatedResponse writes data with 201
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// ErrorResponse writes the structured error body and aborts the chain
func ErrorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Error:     message,
		Status:    status,
		Timestamp: time.Now().UnixMilli(),
	})
}

// StatusFor maps a service error onto an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTenantInactive):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError writes err as a client response. Internal errors are recorded
// on the gin context for the request logger and reach the client only as a
// generic message.
func HandleError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err) //nolint:errcheck // returns its argument
		ErrorResponse(c, status, "internal server error")
		return
	}
	ErrorResponse(c, status, err.Error())
}
