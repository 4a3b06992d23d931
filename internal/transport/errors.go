package transport

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/rpggio/cannonplot/internal/chart"
	"github.com/rpggio/cannonplot/internal/domain/cannon"
	"github.com/rpggio/cannonplot/pkg/response"
)

// writeError maps domain errors onto HTTP statuses. Unknown errors are
// logged and reported without detail.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, cannon.ErrCannonNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, cannon.ErrInvalidInput),
		errors.Is(err, cannon.ErrInvalidImport),
		errors.Is(err, chart.ErrInvalidRequest):
		response.BadRequest(c, err.Error())
	case errors.Is(err, cannon.ErrDuplicateFilename):
		response.Conflict(c, err.Error())
	default:
		logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
		response.InternalError(c, "internal error")
	}
}
