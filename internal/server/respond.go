package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/medtravel/internal/catalog"
	"github.com/ZaguanLabs/medtravel/internal/upload"
)

// envelope is the response shape shared by every JSON API.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Message: message})
}

// failErr maps err to a status. Anything unexpected is logged and hidden
// behind a 500.
func (s *Server) failErr(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		fail(c, http.StatusNotFound, "not found")
	case errors.Is(err, catalog.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &verrs):
		fail(c, http.StatusBadRequest, validationMessage(verrs))
	case upload.IsValidation(err):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		_ = c.Error(err)
		s.logger.Error("Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		fail(c, http.StatusInternalServerError, "internal server error")
	}
}

func validationMessage(verrs validator.ValidationErrors) string {
	if len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	msg := "invalid " + fe.Field() + ": failed " + fe.Tag()
	if fe.Param() != "" {
		msg += "=" + fe.Param()
	}
	return msg
}
