package http

import (
	"net/http"

	"github.com/SamijonovSardor/Programming-topshiriq/internal/domain/shared"
	"github.com/SamijonovSardor/Programming-topshiriq/pkg/logger"
	"github.com/gin-gonic/gin"
)

// Error codes in the response body.
const (
	codeNotFound   = "not_found"
	codeConflict   = "conflict"
	codeForeignKey = "foreign_key"
	codeValidation = "validation_error"
	codeNoData     = "no_data"
	codeInternal   = "internal_error"

	msgInternal = "an unexpected error occurred"
)

// APIError is the body of every failed request.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// statusFor maps a domain error kind to its HTTP status and code.
func statusFor(err error) (int, string) {
	switch {
	case shared.IsNotFound(err):
		return http.StatusNotFound, codeNotFound
	case shared.IsAlreadyExists(err):
		return http.StatusConflict, codeConflict
	case shared.IsForeignKey(err):
		return http.StatusNotFound, codeForeignKey
	case shared.IsValidation(err):
		return http.StatusUnprocessableEntity, codeValidation
	case shared.IsNoData(err):
		return http.StatusNotFound, codeNoData
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// respondError writes err using the status of its kind. Unclassified errors
// are logged in full and reported with a generic message.
func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed",
			logger.String("path", c.Request.URL.Path),
			logger.Err(err),
		)
		writeError(c, status, code, msgInternal)
		return
	}
	writeError(c, status, code, shared.Message(err))
}

func writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: APIError{Code: code, Message: message}})
}
