package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calbook/config"
	delivery "calbook/internal/delivery/http"
	"calbook/internal/delivery/http/controllers"
	"calbook/internal/delivery/http/middleware"
	"calbook/internal/repository/postgres"
	"calbook/internal/services"

	authadapter "calbook/internal/adapters/auth"
	"calbook/internal/notify"

	_ "calbook/docs" // Swagger docs
)

// @title Calbook API
// @version 1.0
// @description Calendar booking backend: hosts publish time slots, guests book them.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := config.NewLogger()

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	hostRepo := postgres.NewHostRepository(db)
	guestRepo := postgres.NewGuestRepository(db)
	slotRepo := postgres.NewSlotRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)

	notifier := notify.NewClient(cfg.RedisAddr, logger)
	defer notifier.Close()

	hasher := authadapter.NewBcryptHasher(0)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	authService := services.NewAuthService(hostRepo, hasher, issuer, cfg.TokenExpiry)
	scheduleService := services.NewScheduleService(slotRepo, hostRepo, guestRepo)
	bookingService := services.NewBookingService(bookingRepo, notifier, logger)

	authController := controllers.NewAuthController(logger, authService)
	slotController := controllers.NewSlotController(logger, scheduleService)
	bookingController := controllers.NewBookingController(logger, bookingService)

	mux := delivery.NewRouter(authController, slotController, bookingController, verifier, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPM)
	defer rateLimiter.Close()
	var handler http.Handler = mux
	handler = rateLimiter.Middleware(handler)
	handler = middleware.CORS(cfg.CORSAllowedOrigins)(handler)
	handler = middleware.Logging(logger)(handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
