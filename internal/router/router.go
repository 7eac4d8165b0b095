package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/opentable/private-dining/internal/handler"
)

// RegisterRoutes registers the health check on the provided Echo
// instance. This endpoint can be used by load balancers or monitoring
// systems to verify that the service is up and running.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterReservations registers the booking, cancellation, and listing
// endpoints. createLimiter is applied to the creation route only: reads
// and cancellations are not the contended path.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, createLimiter echo.MiddlewareFunc) {
	e.POST("/v1/reservations", h.Create, createLimiter)
	e.GET("/v1/reservations/:id", h.Get)
	e.POST("/v1/reservations/:id/cancel", h.Cancel)
	e.GET("/v1/diners/:email/reservations", h.ListByDiner)
	e.GET("/v1/restaurants/:id/reservations", h.ListByRestaurant)
}

// RegisterAvailability registers the room availability calendar.
func RegisterAvailability(e *echo.Echo, h *handler.AvailabilityHandler) {
	e.GET("/v1/rooms/:id/availability", h.Get)
}

// RegisterCatalog registers the read-only restaurant and room browse
// endpoints. These routes require no authentication so that diners can
// explore rooms before booking.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler) {
	e.GET("/v1/restaurants", h.ListRestaurants)
	e.GET("/v1/restaurants/:id/rooms", h.ListRooms)
}
