package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/liveqa/internal/apperr"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is returned by deletes and other acknowledgements.
type MessageBody struct {
	Message string `json:"message"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Accepted sends a 202 JSON response with data.
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, data)
}

// Message sends a 200 acknowledgement.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageBody{Message: msg})
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, ErrorBody{Error: err})
}

// NotFound sends 404.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, ErrorBody{Error: err})
}

// Conflict sends 409.
func Conflict(c *gin.Context, err string) {
	c.JSON(http.StatusConflict, ErrorBody{Error: err})
}

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, err string) {
	c.JSON(http.StatusServiceUnavailable, ErrorBody{Error: err})
}

// Internal sends 500.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, ErrorBody{Error: err})
}

// Error maps a classified error to its status. Internal errors are logged with op and
// answered with fallback so storage details never reach the caller.
func Error(c *gin.Context, logger *zap.Logger, op string, err error, fallback string) {
	switch apperr.KindOf(err) {
	case apperr.KindInvalidInput:
		BadRequest(c, apperr.MessageOf(err, fallback))
	case apperr.KindNotFound:
		NotFound(c, apperr.MessageOf(err, fallback))
	case apperr.KindConflict:
		Conflict(c, apperr.MessageOf(err, fallback))
	default:
		if logger != nil {
			logger.Error(op, zap.Error(err))
		}
		Internal(c, fallback)
	}
}
