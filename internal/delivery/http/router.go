package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"calbook/internal/delivery/http/controllers"
	"calbook/internal/delivery/http/middleware"
	"calbook/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	authController *controllers.AuthController,
	slotController *controllers.SlotController,
	bookingController *controllers.BookingController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("GET /hosts/me", requireAuth(authController.Me))
	mux.HandleFunc("DELETE /hosts/me", requireAuth(slotController.DeleteHost))

	// Slots
	mux.HandleFunc("POST /slots", requireAuth(slotController.Create))
	mux.HandleFunc("GET /slots", slotController.List)
	mux.HandleFunc("GET /slots/{slotID}", slotController.Get)
	mux.HandleFunc("DELETE /slots/{slotID}", requireAuth(slotController.Delete))

	// Guests
	mux.HandleFunc("DELETE /guests/{guestID}", requireAuth(slotController.DeleteGuest))

	// Bookings are guest-facing and unauthenticated; cancelling as the host
	// uses DELETE with a bearer token, cancelling as the guest posts the
	// guest's email to /cancel.
	mux.HandleFunc("POST /bookings", bookingController.Book)
	mux.HandleFunc("GET /bookings/{bookingID}", bookingController.Get)
	mux.HandleFunc("DELETE /bookings/{bookingID}", requireAuth(bookingController.CancelAsHost))
	mux.HandleFunc("POST /bookings/{bookingID}/cancel", bookingController.CancelAsGuest)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
