package handler

import (
	"errors"

	"fieldops/internal/apperr"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps an error to the HTTP status of its kind. Conflict
// responses carry the entity's current state.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	var e *apperr.Error
	if errors.As(err, &e) && e.State != "" {
		c.JSON(status, response.ErrorWithState(status, err.Error(), e.State))
		return
	}
	c.JSON(status, response.Error(status, err.Error()))
}
