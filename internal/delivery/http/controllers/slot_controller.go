package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	h "calbook/internal/delivery/http/helpers"
	"calbook/internal/delivery/http/middleware"
	"calbook/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type SlotController struct {
	Logger  *slog.Logger
	Service domain.ScheduleService
}

func NewSlotController(logger *slog.Logger, svc domain.ScheduleService) *SlotController {
	return &SlotController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateSlotRequest is the request body for POST /slots.
type CreateSlotRequest struct {
	StartTime       time.Time `json:"start_time"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Validate implements Validator. Duration values are checked in the service
// so the error maps to invalid_duration rather than bad_request.
func (c CreateSlotRequest) Validate() []string {
	var errs []string
	if c.StartTime.IsZero() {
		errs = append(errs, "start_time is required")
	}
	if c.DurationMinutes == 0 {
		errs = append(errs, "duration_minutes is required")
	}
	return errs
}

// ListSlotsResponse is the data payload for GET /slots.
type ListSlotsResponse struct {
	Slots      []*domain.Slot   `json:"slots"`
	Pagination h.PaginationMeta `json:"pagination"`
}

// Create godoc
// @Summary Create a slot
// @Description Publishes a bookable slot for the authenticated host. Duration must be 15, 30, or 60 minutes and the start time must be in the future.
// @Tags slots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateSlotRequest true "Slot data"
// @Success 201 {object} helpers.APIResponse "data contains the created slot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_duration"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /slots [post]
func (c *SlotController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSlotRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}

	hostID, ok := middleware.HostIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	slot, err := c.Service.CreateSlot(r.Context(), hostID, req.StartTime, req.DurationMinutes)
	if err != nil {
		c.writeScheduleError(w, r, err)
		return
	}

	h.WriteJSONSuccess(w, http.StatusCreated, slot)
}

// List godoc
// @Summary List slots
// @Description Returns slots matching the optional filters, paginated. Public: guests browse availability here.
// @Tags slots
// @Produce json
// @Param host_id query string false "Filter by host ID (UUID)"
// @Param status query string false "Filter by status: available or booked"
// @Param from query string false "Only slots starting at or after this RFC 3339 time"
// @Param to query string false "Only slots starting before this RFC 3339 time"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains slots and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /slots [get]
func (c *SlotController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var filter domain.SlotFilter
	if hostID := strings.TrimSpace(q.Get("host_id")); hostID != "" {
		if !uuidRegex.MatchString(hostID) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid host_id")
			return
		}
		filter.HostID = hostID
	}
	if status := strings.TrimSpace(strings.ToLower(q.Get("status"))); status != "" {
		if status != string(domain.SlotStatusAvailable) && status != string(domain.SlotStatusBooked) {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "status must be \"available\" or \"booked\"")
			return
		}
		filter.Status = domain.SlotStatus(status)
	}
	if from := q.Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "from must be an RFC 3339 timestamp")
			return
		}
		filter.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "to must be an RFC 3339 timestamp")
			return
		}
		filter.To = t
	}

	page := h.ParsePagination(r)
	slots, total, err := c.Service.ListSlots(r.Context(), filter, page)
	if err != nil {
		c.writeScheduleError(w, r, err)
		return
	}

	if slots == nil {
		slots = []*domain.Slot{}
	}
	h.WriteJSONSuccess(w, http.StatusOK, ListSlotsResponse{
		Slots:      slots,
		Pagination: h.NewPaginationMeta(page.Page, page.PageSize, total),
	})
}

// Get godoc
// @Summary Get a slot
// @Description Returns the slot with the given ID.
// @Tags slots
// @Produce json
// @Param slotID path string true "Slot ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the slot"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: slot_not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /slots/{slotID} [get]
func (c *SlotController) Get(w http.ResponseWriter, r *http.Request) {
	slotID := r.PathValue("slotID")
	if !uuidRegex.MatchString(slotID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid slotID")
		return
	}

	slot, err := c.Service.GetSlot(r.Context(), slotID)
	if err != nil {
		c.writeScheduleError(w, r, err)
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, slot)
}

// Delete godoc
// @Summary Delete a slot
// @Description Removes an available slot owned by the authenticated host. Slots with an active booking are rejected; cancel the booking first. Slots with cancelled booking history are rejected too, since those bookings keep their slot reference.
// @Tags slots
// @Produce json
// @Security BearerAuth
// @Param slotID path string true "Slot ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains {deleted: true}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: slot_not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: slot_already_booked or slot_in_use"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /slots/{slotID} [delete]
func (c *SlotController) Delete(w http.ResponseWriter, r *http.Request) {
	slotID := r.PathValue("slotID")
	if !uuidRegex.MatchString(slotID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid slotID")
		return
	}

	hostID, ok := middleware.HostIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.DeleteSlot(r.Context(), slotID, hostID); err != nil {
		c.writeScheduleError(w, r, err)
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// DeleteHost godoc
// @Summary Delete the current host account
// @Description Removes the authenticated host. Rejected while the host still owns slots; delete the slots first.
// @Tags hosts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains {deleted: true}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: host_in_use"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /hosts/me [delete]
func (c *SlotController) DeleteHost(w http.ResponseWriter, r *http.Request) {
	hostID, ok := middleware.HostIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.DeleteHost(r.Context(), hostID); err != nil {
		if errors.Is(err, domain.ErrHostInUse) {
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeHostInUse, "host still has slots; delete them first")
			return
		}
		c.writeScheduleError(w, r, err)
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

// DeleteGuest godoc
// @Summary Delete a guest record
// @Description Removes a guest. Rejected while any booking still references the guest; cancelled bookings keep their reference too, so this only succeeds for guests with no booking history.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param guestID path string true "Guest ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains {deleted: true}"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: guest_in_use"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /guests/{guestID} [delete]
func (c *SlotController) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	guestID := r.PathValue("guestID")
	if !uuidRegex.MatchString(guestID) {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid guestID")
		return
	}

	if _, ok := middleware.HostIDFromContext(r.Context()); !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.DeleteGuest(r.Context(), guestID); err != nil {
		if errors.Is(err, domain.ErrGuestInUse) {
			h.WriteJSONError(w, http.StatusConflict, h.ErrCodeGuestInUse, "guest still referenced by bookings")
			return
		}
		c.writeScheduleError(w, r, err)
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (c *SlotController) writeScheduleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDuration):
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeInvalidDuration, err.Error())
	case errors.Is(err, domain.ErrSlotNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeSlotNotFound, "slot not found")
	case errors.Is(err, domain.ErrSlotAlreadyBooked):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeSlotBooked, "slot has an active booking")
	case errors.Is(err, domain.ErrSlotInUse):
		h.WriteJSONError(w, http.StatusConflict, h.ErrCodeSlotInUse, "slot still referenced by bookings")
	case errors.Is(err, domain.ErrNotFound):
		h.WriteJSONError(w, http.StatusNotFound, h.ErrCodeNotFound, "not found")
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
