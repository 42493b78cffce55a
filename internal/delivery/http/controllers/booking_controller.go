package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	h "calbook/internal/delivery/http/helpers"
	"calbook/internal/delivery/http/middleware"
	"calbook/internal/domain"
)

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// BookSlotRequest is the request body for POST /bookings.
type BookSlotRequest struct {
	SlotID     string `json:"slot_id"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	Subject    string `json:"subject"`
}

// Validate implements Validator.
func (b *BookSlotRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(b.SlotID) == "" {
		errs = append(errs, "slot_id is required")
	} else if !uuidRegex.MatchString(b.SlotID) {
		errs = append(errs, "invalid slot_id")
	}
	if strings.TrimSpace(b.GuestName) == "" {
		errs = append(errs, "guest_name is required")
	}
	email := strings.TrimSpace(strings.ToLower(b.GuestEmail))
	if email == "" {
		errs = append(errs, "guest_email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid guest_email format")
	}
	b.GuestEmail = email
	if strings.TrimSpace(b.Subject) == "" {
		errs = append(errs, "subject is required")
	}
	return errs
}

// CancelBookingRequest is the request body for POST /bookings/{bookingID}/cancel.
type CancelBookingRequest struct {
	GuestEmail string `json:"guest_email"`
}

// Validate implements Validator.
func (c *CancelBookingRequest) Validate() []string {
	email := strings.TrimSpace(strings.ToLower(c.GuestEmail))
	if email == "" {
		return []string{"guest_email is required"}
	}
	if !emailRegexp.MatchString(email) {
		return []string{"invalid guest_email format"}
	}
	c.GuestEmail = email
	return nil
}

// Book godoc
// @Summary Book a slot
// @Description Books an available slot for a guest. The guest record is created on first booking and reused on later bookings with the same email. If two requests race for the same slot, exactly one succeeds; the other receives slot_already_booked.
// @Tags bookings
// @Accept json
// @Produce json
// @Param body body BookSlotRequest true "Booking data"
// @Success 201 {object} helpers.APIResponse "data contains the created booking"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: slot_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: slot_already_booked"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /bookings [post]
func (c *BookingController) Book(w http.ResponseWriter, r *http.Request) {
	var req BookSlotRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	booking, err := c.Service.Book(r.Context(), domain.BookSlotInput{
		SlotID:     req.SlotID,
		GuestName:  strings.TrimSpace(req.GuestName),
		GuestEmail: req.GuestEmail,
		Subject:    strings.TrimSpace(req.Subject),
	})
	if err != nil {
		c.writeBookingError(w, r, err)
		return
	}

	h.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// Get godoc
// @Summary Get a booking
// @Description Returns the booking with its slot, guest, and host. Cancelled bookings are included, with cancelled_at set.
// @Tags bookings
// @Produce json
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains booking, slot, guest and host"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: booking_not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /bookings/{bookingID} [get]
func (c *BookingController) Get(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if !uuidRegex.MatchString(bookingID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid bookingID")
		return
	}

	details, err := c.Service.Get(r.Context(), bookingID)
	if err != nil {
		c.writeBookingError(w, r, err)
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, details)
}

// CancelAsHost godoc
// @Summary Cancel a booking as the host
// @Description Cancels the booking on a slot owned by the authenticated host. The booking is soft-deleted and the slot returns to available in the same transaction.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains {cancelled: true}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: booking_not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /bookings/{bookingID} [delete]
func (c *BookingController) CancelAsHost(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if !uuidRegex.MatchString(bookingID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid bookingID")
		return
	}

	hostID, ok := middleware.HostIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	err := c.Service.Cancel(r.Context(), bookingID, domain.CancelRequest{
		Role:   domain.RoleHost,
		HostID: hostID,
	})
	if err != nil {
		c.writeBookingError(w, r, err)
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// CancelAsGuest godoc
// @Summary Cancel a booking as the guest
// @Description Cancels the booking when the supplied guest_email matches the booking's guest. The booking is soft-deleted and the slot returns to available in the same transaction.
// @Tags bookings
// @Accept json
// @Produce json
// @Param bookingID path string true "Booking ID (UUID)"
// @Param body body CancelBookingRequest true "Guest identification"
// @Success 200 {object} helpers.APIResponse "data contains {cancelled: true}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: booking_not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /bookings/{bookingID}/cancel [post]
func (c *BookingController) CancelAsGuest(w http.ResponseWriter, r *http.Request) {
	bookingID := r.PathValue("bookingID")
	if !uuidRegex.MatchString(bookingID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid bookingID")
		return
	}

	var req CancelBookingRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	err := c.Service.Cancel(r.Context(), bookingID, domain.CancelRequest{
		Role:       domain.RoleGuest,
		GuestEmail: req.GuestEmail,
	})
	if err != nil {
		c.writeBookingError(w, r, err)
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"cancelled": true})
}

func (c *BookingController) writeBookingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSlotNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeSlotNotFound, "slot not found")
	case errors.Is(err, domain.ErrSlotAlreadyBooked):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeSlotBooked, "slot already booked")
	case errors.Is(err, domain.ErrBookingNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeBookingNotFound, "booking not found")
	case errors.Is(err, domain.ErrForbidden):
		h.WriteJSONError(w, http.StatusForbidden, h.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.WriteJSONError(w, http.StatusServiceUnavailable, h.ErrCodeStoreUnavailable, "store temporarily unavailable, retry later")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
	}
}
