package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contactdesk/internal/api"
	"contactdesk/internal/api/session"
	"contactdesk/internal/api/view"
	"contactdesk/internal/app/service"
	"contactdesk/internal/domain/repository"
	"contactdesk/internal/platform/config"
	"contactdesk/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize Database
	database.Connect()
	defer database.Close()
	if err := database.Migrate(context.Background()); err != nil {
		log.Fatalf("Could not run migrations: %v", err)
	}
	fmt.Println("Database connected and migrated.")

	// 3. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	contactRepo := repository.NewPgContactRepository(database.DB)

	// 4. Initialize Services
	authService := service.NewAuthService(userRepo, database.DB)
	contactService := service.NewContactService(contactRepo, database.DB)

	// 5. Seed Admin Account
	// Runs before the server accepts traffic; idempotent, so restarts are
	// safe. The default credentials are a development convenience only.
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer seedCancel()
	if err := authService.EnsureSeedAdmin(seedCtx, config.AppConfig.AdminUsername, config.AppConfig.AdminPassword); err != nil {
		log.Fatalf("Could not seed admin account: %v", err)
	}
	fmt.Println("Seed admin ensured.")

	// 6. Initialize Sessions & Views
	sessions := session.NewManager(config.AppConfig.SessionSecret, config.AppConfig.UseHTTPS)
	views, err := view.New()
	if err != nil {
		log.Fatalf("Could not parse templates: %v", err)
	}

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, contactService, sessions, views)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
