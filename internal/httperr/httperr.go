package httperr

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string         `json:"error_code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Unavailable(c *gin.Context, code, message string) {
	Write(c, http.StatusServiceUnavailable, code, message)
}

// Handle converte um BusinessError na resposta HTTP correspondente.
// Retorna false quando o erro não é de negócio (caller trata como 500).
func Handle(c *gin.Context, err error) bool {
	be, ok := AsBusiness(err)
	if !ok {
		return false
	}

	status := http.StatusBadRequest
	switch {
	case strings.HasSuffix(be.Code, "_not_found"):
		status = http.StatusNotFound
	case be.Code == "unauthorized":
		status = http.StatusUnauthorized
	case be.Code == "time_conflict":
		status = http.StatusConflict
	case be.Code == "sources_unavailable":
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, HTTPError{
		Code:    be.Code,
		Message: be.Code,
		Details: be.Details,
	})
	return true
}
