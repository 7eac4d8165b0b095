package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/opentable/private-dining/internal/model"
	"github.com/opentable/private-dining/internal/service"
)

// ReservationHandler exposes the booking, cancellation, and listing
// endpoints. All business rules live in the service; the handler only
// binds, validates shapes, and maps errors to status codes.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler. The service
// must be non-nil.
func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	if reservations == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations}
}

type createReservationBody struct {
	RoomID          string `json:"room_id"`
	ReservationDate string `json:"reservation_date"`
	TimeSlot        string `json:"time_slot"`
	PartySize       int    `json:"party_size"`
	Diner           struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
	} `json:"diner"`
	EstimatedSpend *struct {
		AmountCents int64  `json:"amount_cents"`
		Currency    string `json:"currency"`
	} `json:"estimated_spend"`
	SpecialRequests *string `json:"special_requests"`
}

// Create handles POST /v1/reservations. It returns 201 with the created
// reservation, 400 for malformed input, 404 for an unknown room, 422 for
// business rule violations, and 409 when the slot is taken.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body createReservationBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.RoomID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	date, err := time.Parse("2006-01-02", body.ReservationDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_date must be YYYY-MM-DD"})
	}
	slot, err := model.ParseTimeSlot(body.TimeSlot)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if body.PartySize < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be at least 1"})
	}
	if body.Diner.Name == "" || body.Diner.Email == "" || body.Diner.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "diner name, email and phone are required"})
	}

	req := service.CreateReservationRequest{
		RoomID:          body.RoomID,
		ReservationDate: date,
		TimeSlot:        slot,
		PartySize:       body.PartySize,
		Diner: service.Diner{
			Name:  body.Diner.Name,
			Email: body.Diner.Email,
			Phone: body.Diner.Phone,
		},
		SpecialRequests: body.SpecialRequests,
	}
	if body.EstimatedSpend != nil {
		req.EstimatedSpend = &service.EstimatedSpend{
			AmountCents: body.EstimatedSpend.AmountCents,
			Currency:    body.EstimatedSpend.Currency,
		}
	}

	res, err := h.Reservations.CreateReservation(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	res, err := h.Reservations.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type cancelReservationBody struct {
	CancelledBy string `json:"cancelled_by"`
	Reason      string `json:"reason"`
}

// Cancel handles POST /v1/reservations/:id/cancel. Returns 200 with the
// cancelled reservation, 404 when it does not exist, 422 when it is
// already cancelled or in the past, and 409 when a concurrent cancel won
// the version race.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	var body cancelReservationBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.CancelledBy == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cancelled_by is required"})
	}
	res, err := h.Reservations.CancelReservation(c.Request().Context(), c.Param("id"), body.CancelledBy, body.Reason)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListByDiner handles GET /v1/diners/:email/reservations. Supports
// upcoming_only, limit, and offset query parameters.
func (h *ReservationHandler) ListByDiner(c echo.Context) error {
	email := c.Param("email")
	upcomingOnly := c.QueryParam("upcoming_only") == "true"
	limit, offset := pageParams(c)

	out, err := h.Reservations.ListByDiner(c.Request().Context(), email, upcomingOnly, limit, offset)
	if err != nil {
		log.Printf("handler: list by diner failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// ListByRestaurant handles GET /v1/restaurants/:id/reservations for
// staff use.
func (h *ReservationHandler) ListByRestaurant(c echo.Context) error {
	limit, offset := pageParams(c)
	out, err := h.Reservations.ListByRestaurant(c.Request().Context(), c.Param("id"), limit, offset)
	if err != nil {
		log.Printf("handler: list by restaurant failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": out})
}

// pageParams extracts limit/offset with defaults and bounds.
func pageParams(c echo.Context) (limit, offset int) {
	limit = 20
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
