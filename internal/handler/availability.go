package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/opentable/private-dining/internal/service"
)

// AvailabilityHandler exposes the availability calendar.
type AvailabilityHandler struct {
	Availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	if availability == nil {
		panic("nil service passed to NewAvailabilityHandler")
	}
	return &AvailabilityHandler{Availability: availability}
}

// Get handles GET /v1/rooms/:id/availability?start_date&end_date. Both
// dates are required, YYYY-MM-DD, and the range is inclusive.
func (h *AvailabilityHandler) Get(c echo.Context) error {
	start, err := time.Parse("2006-01-02", c.QueryParam("start_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	end, err := time.Parse("2006-01-02", c.QueryParam("end_date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end_date must be YYYY-MM-DD"})
	}

	grid, err := h.Availability.GetAvailability(c.Request().Context(), c.Param("id"), start, end)
	if err != nil {
		log.Printf("handler: availability failed: %v", err)
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, grid)
}
