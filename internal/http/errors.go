package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portfolio-tracker/internal/domain"
	"portfolio-tracker/internal/exporter"
	"portfolio-tracker/internal/service"
	"portfolio-tracker/internal/validation"
)

var statusByKind = map[domain.Kind]int{
	domain.KindValidation:   http.StatusUnprocessableEntity,
	domain.KindUnauthorized: http.StatusForbidden,
	domain.KindNotFound:     http.StatusNotFound,
	domain.KindConflict:     http.StatusConflict,
}

// respondError writes the classified failure. Storage failures and errors
// without a classification become a 500 carrying the operation's fallback message.
func respondError(c *gin.Context, err error, fallback string) {
	var appErr *domain.Error
	if errors.As(err, &appErr) {
		if status, ok := statusByKind[appErr.Kind]; ok {
			body := gin.H{"message": appErr.Message}
			if appErr.Kind == domain.KindValidation {
				body["data"] = appErr.Violations
			}
			c.JSON(status, body)
			return
		}
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
		return
	case errors.Is(err, exporter.ErrShuttingDown):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Server is shutting down."})
		return
	}

	logEntry(c).WithError(err).WithField("kind", domain.KindOf(err).String()).Error(fallback)
	c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
}

// bindInput decodes the JSON body keeping numbers as json.Number so numeric
// rules see the value exactly as sent. An empty body decodes to an empty Input.
func bindInput(c *gin.Context) (validation.Input, bool) {
	in := validation.Input{}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Request body must be a JSON object."})
		return nil, false
	}
	return in, true
}

func parseID(c *gin.Context, param, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + what + " id."})
		return 0, false
	}
	return id, true
}
