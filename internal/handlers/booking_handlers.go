package handlers

import (
	"errors"
	"net/http"

	"github.com/dillendillen/doya.app-sub001/internal/services"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler holds the booking service.
type BookingHandler struct {
	bookingService services.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bs services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bs}
}

func (h *BookingHandler) respondBookingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrBookingNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Booking not found.", err.Error()))
	case errors.Is(err, services.ErrClientNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Client not found.", err.Error()))
	case errors.Is(err, services.ErrDogNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Dog not found.", err.Error()))
	case errors.Is(err, services.ErrBookingValidation):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
	default:
		respondServiceError(c, err, fallback)
	}
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateBooking: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	booking, err := h.bookingService.CreateBooking(req, actorID(c))
	if err != nil {
		utils.LogError(err, "CreateBooking: Error from bookingService.CreateBooking")
		h.respondBookingError(c, err, "Failed to create booking.")
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GetBookings handles GET /bookings with optional status and clientId filters.
func (h *BookingHandler) GetBookings(c *gin.Context) {
	clientID, ok := queryInt64(c, "clientId")
	if !ok {
		return
	}
	var status *string
	if raw := c.Query("status"); raw != "" {
		status = &raw
	}

	bookings, err := h.bookingService.GetBookings(status, clientID)
	if err != nil {
		utils.LogError(err, "GetBookings: Error from bookingService.GetBookings")
		h.respondBookingError(c, err, "Failed to fetch bookings.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings})
}

// GetBookingByID handles GET /bookings/:id.
func (h *BookingHandler) GetBookingByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBookingByID(id)
	if err != nil {
		utils.LogError(err, "GetBookingByID: Error from bookingService.GetBookingByID")
		h.respondBookingError(c, err, "Failed to fetch booking.")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// UpdateBooking handles PATCH /bookings/:id.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateBooking: Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	booking, err := h.bookingService.UpdateBooking(id, req, actorID(c))
	if err != nil {
		utils.LogError(err, "UpdateBooking: Error from bookingService.UpdateBooking")
		h.respondBookingError(c, err, "Failed to update booking.")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// DeleteBooking handles DELETE /bookings/:id.
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.bookingService.DeleteBooking(id, actorID(c)); err != nil {
		utils.LogError(err, "DeleteBooking: Error from bookingService.DeleteBooking")
		h.respondBookingError(c, err, "Failed to delete booking.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}
