package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lendora/loan-origination/pkg/apperr"
)

// Envelope is the success body: {success, message, data}.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// ErrorBody is the error body shared by every non-2xx response.
type ErrorBody struct {
	Success    bool        `json:"success"`
	Timestamp  time.Time   `json:"timestamp"`
	Path       string      `json:"path"`
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Errors     interface{} `json:"errors,omitempty"`
}

func Success[T any](c *gin.Context, status int, data T, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Envelope[T]{Success: true, Message: message, Data: data})
}

func Error(c *gin.Context, status int, message string, errs interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, ErrorBody{
		Success:    false,
		Timestamp:  time.Now().UTC(),
		Path:       c.Request.URL.Path,
		Message:    message,
		StatusCode: status,
		Errors:     errs,
	})
}

// AbortError writes the error body and aborts the handler chain (middleware use).
func AbortError(c *gin.Context, status int, message string, errs interface{}) {
	Error(c, status, message, errs)
	c.Abort()
}

// FromError maps a domain failure onto the envelope. Outside development,
// unexpected failures collapse to a generic message.
func FromError(c *gin.Context, err error, env string) {
	ae := apperr.From(err)
	status := apperr.HTTPStatus(ae)

	msg := ae.Message
	var details interface{}
	if len(ae.Fields) > 0 {
		details = ae.Fields
	}
	if status == http.StatusInternalServerError && env != "development" {
		msg = "internal server error"
		details = nil
	} else if status == http.StatusInternalServerError && ae.Err != nil {
		details = ae.Err.Error()
	}
	Error(c, status, msg, details)
}
