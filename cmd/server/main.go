package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food_marketplace/internal/apiclient"
	"food_marketplace/internal/config"
	"food_marketplace/internal/guard"
	"food_marketplace/internal/handler"
	"food_marketplace/internal/middleware"
	"food_marketplace/internal/service"
	"food_marketplace/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

type logHistory struct{}

func (logHistory) Replace(path string) {
	log.Printf("Navigation: replaced current screen with %s", path)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	cfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	guardCfg := cfg.GuardConfig()

	// --- Session storage ---
	kv, closeKV, err := config.OpenSessionRepository(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to open session storage: %v", err)
	}
	defer closeKV()

	sessions := session.NewStore(kv, session.WithWarningHook(func(w session.PersistenceWarning) {
		log.Printf("WARN: session storage: %v", w)
	}))

	// --- Backend client & services ---
	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)
	authService := service.NewAuthService(client, sessions)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, guardCfg)
	screenHandler := handler.NewScreenHandler(client, authService)

	// Follows every screen the shell admits so session-driven redirects show up in the log
	nav := guard.NewNavigator(sessions, guardCfg, logHistory{}, handler.ScreenRoles)
	defer nav.Close()
	nav.Navigate("/")

	router := gin.Default()
	router.Use(middleware.FollowScreens(nav))
	handler.RegisterRoutes(router, sessions, guardCfg, authHandler, screenHandler)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "session_loading": sessions.Snapshot().Loading})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: router,
	}

	go func() {
		log.Printf("App shell starting on port %s (backend %s)", cfg.Port, cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	go func() {
		<-sessions.Ready()
		s := sessions.Snapshot()
		if s.IsAuthenticated() {
			log.Printf("Restored session for user %s (%s)", s.User.ID, s.Role())
		} else {
			log.Println("No stored session, starting logged out")
		}
	}()

	// --- Graceful Shutdown ---
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
