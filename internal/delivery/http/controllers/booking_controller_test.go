package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"calbook/internal/delivery/http/helpers"
	"calbook/internal/delivery/http/middleware"
	"calbook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBookingID = "44444444-4444-4444-4444-444444444444"

// fakeBookingService implements domain.BookingService for handler tests.
type fakeBookingService struct {
	bookBooking *domain.Booking
	bookErr     error
	lastInput   domain.BookSlotInput
	cancelErr   error
	lastCancel  domain.CancelRequest
	getDetails  *domain.BookingDetails
	getErr      error
}

func (f *fakeBookingService) Book(ctx context.Context, in domain.BookSlotInput) (*domain.Booking, error) {
	f.lastInput = in
	if f.bookErr != nil {
		return nil, f.bookErr
	}
	return f.bookBooking, nil
}

func (f *fakeBookingService) Cancel(ctx context.Context, bookingID string, req domain.CancelRequest) error {
	f.lastCancel = req
	return f.cancelErr
}

func (f *fakeBookingService) Get(ctx context.Context, id string) (*domain.BookingDetails, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getDetails, nil
}

func TestBookingController_Book(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	now := time.Now()

	validBody := `{"slot_id":"` + testSlotID + `","guest_name":"Bob","guest_email":"Bob@Example.com","subject":"Intro call"}`

	tests := []struct {
		name         string
		body         string
		fakeBooking  *domain.Booking
		fakeErr      error
		wantStatus   int
		wantBodyCode string
		checkInput   func(t *testing.T, in domain.BookSlotInput)
	}{
		{
			name:        "success normalizes guest email",
			body:        validBody,
			fakeBooking: &domain.Booking{ID: testBookingID, SlotID: testSlotID, GuestID: testGuestID, Subject: "Intro call", CreatedAt: now},
			wantStatus:  http.StatusCreated,
			checkInput: func(t *testing.T, in domain.BookSlotInput) {
				assert.Equal(t, testSlotID, in.SlotID)
				assert.Equal(t, "bob@example.com", in.GuestEmail)
				assert.Equal(t, "Bob", in.GuestName)
			},
		},
		{
			name:         "invalid json",
			body:         `{invalid`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "missing slot_id",
			body:         `{"guest_name":"Bob","guest_email":"bob@example.com","subject":"x"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "invalid guest_email",
			body:         `{"slot_id":"` + testSlotID + `","guest_name":"Bob","guest_email":"nope","subject":"x"}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "slot not found",
			body:         validBody,
			fakeErr:      domain.ErrSlotNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeSlotNotFound,
		},
		{
			name:         "slot already booked",
			body:         validBody,
			fakeErr:      domain.ErrSlotAlreadyBooked,
			wantStatus:   http.StatusConflict,
			wantBodyCode: helpers.ErrCodeSlotBooked,
		},
		{
			name:         "store unavailable",
			body:         validBody,
			fakeErr:      domain.ErrStoreUnavailable,
			wantStatus:   http.StatusServiceUnavailable,
			wantBodyCode: helpers.ErrCodeStoreUnavailable,
		},
		{
			name:         "service error",
			body:         validBody,
			fakeErr:      assert.AnError,
			wantStatus:   http.StatusInternalServerError,
			wantBodyCode: helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBookingService{bookBooking: tt.fakeBooking, bookErr: tt.fakeErr}
			ctrl := NewBookingController(logger, fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/bookings", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.Book(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var booking domain.Booking
				require.NoError(t, json.Unmarshal(dataBytes, &booking))
				assert.Equal(t, testBookingID, booking.ID)
				assert.Nil(t, booking.CancelledAt)
				if tt.checkInput != nil {
					tt.checkInput(t, fake.lastInput)
				}
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestBookingController_Get(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	now := time.Now()

	details := &domain.BookingDetails{
		Booking: &domain.Booking{ID: testBookingID, SlotID: testSlotID, GuestID: testGuestID, Subject: "Intro call", CreatedAt: now},
		Slot:    &domain.Slot{ID: testSlotID, HostID: testHostID, Status: domain.SlotStatusBooked},
		Guest:   &domain.Guest{ID: testGuestID, Name: "Bob", Email: "bob@example.com"},
		Host:    &domain.Host{ID: testHostID, Name: "Alice", Email: "alice@example.com"},
	}

	tests := []struct {
		name         string
		bookingID    string
		fakeDetails  *domain.BookingDetails
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:        "success",
			bookingID:   testBookingID,
			fakeDetails: details,
			wantStatus:  http.StatusOK,
		},
		{
			name:         "invalid uuid",
			bookingID:    "nope",
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "booking not found",
			bookingID:    testBookingID,
			fakeErr:      domain.ErrBookingNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBookingService{getDetails: tt.fakeDetails, getErr: tt.fakeErr}
			ctrl := NewBookingController(logger, fake)

			req := httptest.NewRequest(http.MethodGet, "http://test/bookings/"+tt.bookingID, nil)
			req.SetPathValue("bookingID", tt.bookingID)
			rr := httptest.NewRecorder()

			ctrl.Get(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var got domain.BookingDetails
				require.NoError(t, json.Unmarshal(dataBytes, &got))
				require.NotNil(t, got.Booking)
				require.NotNil(t, got.Slot)
				require.NotNil(t, got.Guest)
				require.NotNil(t, got.Host)
				assert.Equal(t, testBookingID, got.Booking.ID)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestBookingController_CancelAsHost(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name          string
		bookingID     string
		contextHostID string
		fakeErr       error
		wantStatus    int
		wantBodyCode  string
	}{
		{
			name:          "success",
			bookingID:     testBookingID,
			contextHostID: testHostID,
			wantStatus:    http.StatusOK,
		},
		{
			name:          "no host in context",
			bookingID:     testBookingID,
			contextHostID: "",
			wantStatus:    http.StatusUnauthorized,
			wantBodyCode:  helpers.ErrCodeUnauthorized,
		},
		{
			name:          "not the slot owner",
			bookingID:     testBookingID,
			contextHostID: testHostID,
			fakeErr:       domain.ErrForbidden,
			wantStatus:    http.StatusForbidden,
			wantBodyCode:  helpers.ErrCodeForbidden,
		},
		{
			name:          "already cancelled",
			bookingID:     testBookingID,
			contextHostID: testHostID,
			fakeErr:       domain.ErrBookingNotFound,
			wantStatus:    http.StatusNotFound,
			wantBodyCode:  helpers.ErrCodeBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBookingService{cancelErr: tt.fakeErr}
			ctrl := NewBookingController(logger, fake)

			req := httptest.NewRequest(http.MethodDelete, "http://test/bookings/"+tt.bookingID, nil)
			req.SetPathValue("bookingID", tt.bookingID)
			if tt.contextHostID != "" {
				req = req.WithContext(middleware.SetHostID(req.Context(), tt.contextHostID))
			}
			rr := httptest.NewRecorder()

			ctrl.CancelAsHost(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, domain.RoleHost, fake.lastCancel.Role)
				assert.Equal(t, tt.contextHostID, fake.lastCancel.HostID)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}

func TestBookingController_CancelAsGuest(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

	tests := []struct {
		name         string
		bookingID    string
		body         string
		fakeErr      error
		wantStatus   int
		wantBodyCode string
	}{
		{
			name:       "success normalizes email",
			bookingID:  testBookingID,
			body:       `{"guest_email":"Bob@Example.com"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:         "missing guest_email",
			bookingID:    testBookingID,
			body:         `{}`,
			wantStatus:   http.StatusBadRequest,
			wantBodyCode: helpers.ErrCodeBadRequest,
		},
		{
			name:         "email does not match booking",
			bookingID:    testBookingID,
			body:         `{"guest_email":"other@example.com"}`,
			fakeErr:      domain.ErrForbidden,
			wantStatus:   http.StatusForbidden,
			wantBodyCode: helpers.ErrCodeForbidden,
		},
		{
			name:         "booking not found",
			bookingID:    testBookingID,
			body:         `{"guest_email":"bob@example.com"}`,
			fakeErr:      domain.ErrBookingNotFound,
			wantStatus:   http.StatusNotFound,
			wantBodyCode: helpers.ErrCodeBookingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBookingService{cancelErr: tt.fakeErr}
			ctrl := NewBookingController(logger, fake)

			req := httptest.NewRequest(http.MethodPost, "http://test/bookings/"+tt.bookingID+"/cancel", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("bookingID", tt.bookingID)
			rr := httptest.NewRecorder()

			ctrl.CancelAsGuest(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code)
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, domain.RoleGuest, fake.lastCancel.Role)
				assert.Equal(t, "bob@example.com", fake.lastCancel.GuestEmail)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
		})
	}
}
