package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/opentable/private-dining/internal/repository"
)

// CatalogHandler exposes read-only restaurant and room browsing. Catalog
// mutation belongs to a separate management surface; this service only
// ever reads.
type CatalogHandler struct {
	Restaurants *repository.RestaurantRepo
	Rooms       *repository.RoomRepo
}

// NewCatalogHandler constructs a CatalogHandler. Both repositories must
// be non-nil.
func NewCatalogHandler(restaurants *repository.RestaurantRepo, rooms *repository.RoomRepo) *CatalogHandler {
	if restaurants == nil || rooms == nil {
		panic("nil repository passed to NewCatalogHandler")
	}
	return &CatalogHandler{Restaurants: restaurants, Rooms: rooms}
}

// ListRestaurants handles GET /v1/restaurants with an optional ?city=
// filter.
func (h *CatalogHandler) ListRestaurants(c echo.Context) error {
	out, err := h.Restaurants.List(c.Request().Context(), c.QueryParam("city"))
	if err != nil {
		log.Printf("handler: list restaurants failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurants": out})
}

// ListRooms handles GET /v1/restaurants/:id/rooms, returning the active
// rooms of a restaurant.
func (h *CatalogHandler) ListRooms(c echo.Context) error {
	restaurantID := c.Param("id")
	if _, err := h.Restaurants.GetByID(c.Request().Context(), restaurantID); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "restaurant not found"})
		}
		log.Printf("handler: restaurant lookup failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out, err := h.Rooms.ListByRestaurant(c.Request().Context(), restaurantID)
	if err != nil {
		log.Printf("handler: list rooms failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out})
}
