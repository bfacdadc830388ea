package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food_marketplace/internal/config"
	"food_marketplace/internal/mockapi"
	"food_marketplace/internal/utils"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	cfg, err := config.LoadMockAPIConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.UploadsDir, os.ModePerm); err != nil {
		log.Fatalf("Failed to create uploads directory %s: %v", cfg.UploadsDir, err)
	}
	log.Printf("Uploads will be stored in: %s", cfg.UploadsDir)
	if cfg.EchoOTP {
		log.Println("WARN: OTP_ECHO is on, codes are returned in send-otp responses")
	}

	store := mockapi.NewStore()
	mockapi.Seed(store)

	api := mockapi.NewAPI(mockapi.Config{
		JWT:                    utils.NewJWTUtil(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpirationHours),
		UploadsDir:             cfg.UploadsDir,
		OTPTTL:                 cfg.OTPTTL,
		EchoOTP:                cfg.EchoOTP,
		InitialAdminPhone:      cfg.InitialAdminPhone,
		InitialSuperAdminPhone: cfg.InitialSuperAdminPhone,
	}, store)

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: mockapi.NewRouter(api),
	}

	go func() {
		log.Printf("Mock backend starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
