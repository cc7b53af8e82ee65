package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"placestay/internal/auth"
	"placestay/internal/config"
	apphttp "placestay/internal/http"
	"placestay/internal/repository/sqlite"
	"placestay/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	placeRepo := sqlite.NewPlaceRepository(db)
	bookingRepo := sqlite.NewBookingRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := placeRepo.Init(ctx); err != nil {
		logger.Fatalf("init place repository: %v", err)
	}
	if err := bookingRepo.Init(ctx); err != nil {
		logger.Fatalf("init booking repository: %v", err)
	}

	tokenTTL := time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, tokenTTL)
	guard := auth.NewGuard(userRepo, tokens)

	userService := service.NewUserService(userRepo, guard, tokens)
	placeService := service.NewPlaceService(placeRepo, guard)
	bookingService := service.NewBookingService(bookingRepo, placeRepo, guard)

	loginLimiter := apphttp.NewLoginLimiter(
		rate.Limit(float64(cfg.Login.RatePerMinute)/60.0),
		cfg.Login.Burst,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		placeService,
		bookingService,
		guard,
		logger,
		loginLimiter,
		tokenTTL,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
