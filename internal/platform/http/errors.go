package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acolhimento-gf/visitantes-api/internal/business/accounts"
	"github.com/acolhimento-gf/visitantes-api/internal/business/stats"
	"github.com/acolhimento-gf/visitantes-api/internal/business/visitors"
	"github.com/acolhimento-gf/visitantes-api/internal/platform/viacep"
	"github.com/acolhimento-gf/visitantes-api/internal/repository"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, viacep.ErrCEPNotFound):
		return http.StatusNotFound
	case errors.Is(err, accounts.ErrInvalidInput),
		errors.Is(err, accounts.ErrSelfDelete),
		errors.Is(err, visitors.ErrInvalidInput),
		errors.Is(err, visitors.ErrInvalidStatus),
		errors.Is(err, viacep.ErrInvalidCEP),
		errors.Is(err, stats.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, accounts.ErrInvalidCredentials),
		errors.Is(err, accounts.ErrSessionRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, accounts.ErrEmailTaken),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, visitors.ErrBackfillRunning),
		errors.Is(err, visitors.ErrRunNotActive):
		return http.StatusConflict
	case errors.Is(err, viacep.ErrCircuitOpen):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (r *Router) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		r.log.Error("request failed", "path", routeOf(c), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
