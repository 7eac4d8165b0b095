package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opentable/private-dining/internal/service"
)

// writeServiceError maps the service error taxonomy onto HTTP status
// codes: 404 for unresolved identifiers, 422 for deterministic rule
// violations, 409 for both slot conflicts and optimistic version
// conflicts. Anything else is an internal error; the detail is logged by
// the caller, not leaked to the client.
func writeServiceError(c echo.Context, err error) error {
	var notFound *service.NotFoundError
	if errors.As(err, &notFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound.Error()})
	}
	var rule *service.BusinessRuleError
	if errors.As(err, &rule) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": rule.Error()})
	}
	var conflict *service.SlotConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{"error": conflict.Error()})
	}
	if errors.Is(err, service.ErrOptimisticConflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "The reservation was modified by another request. Please refresh and try again.",
		})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
