package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"verbum-lector/internal/editor"
	"verbum-lector/services"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, services.ErrNoSegment):
		return http.StatusNotFound
	case errors.Is(err, services.ErrBusy),
		errors.Is(err, services.ErrNotReady),
		errors.Is(err, services.ErrNothingToTranslate),
		errors.Is(err, services.ErrNoFocus):
		return http.StatusConflict
	case errors.Is(err, services.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, services.ErrInvalidAudio),
		errors.Is(err, editor.ErrLineBreak),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

// fail records err on the context and answers with the mapped status.
func fail(c *gin.Context, err error) {
	c.Error(err)
	status := statusFor(err)
	resp := ErrorResponse{Error: http.StatusText(status), Detail: err.Error()}
	c.AbortWithStatusJSON(status, resp)
}

// errorHandlerMiddleware answers for handlers that recorded an error
// without writing a response.
func (s *Server) errorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		status := statusFor(err.Err)
		if status >= http.StatusInternalServerError {
			s.log.Error("%s %s: %v", c.Request.Method, c.FullPath(), err.Err)
		} else {
			s.log.Debug("%s %s: %v", c.Request.Method, c.FullPath(), err.Err)
		}
		if !c.Writer.Written() {
			c.JSON(status, ErrorResponse{Error: http.StatusText(status), Detail: err.Error()})
		}
	}
}
