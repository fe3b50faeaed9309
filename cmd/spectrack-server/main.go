// Command spectrack-server runs the 3GPP spec tracking server.
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

	"github.com/spectrack/spectrack-go/internal/api"
	"github.com/spectrack/spectrack-go/internal/auth"
	"github.com/spectrack/spectrack-go/internal/config"
	"github.com/spectrack/spectrack-go/internal/core"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := core.New(version, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	if err := provisionFirstUser(app); err != nil {
		log.Fatalf("Failed to provision first user: %v", err)
	}

	server := api.NewServer(version, cfg, app.Store(), app.WsHub(), app.Tracker(), app.JobManager())
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: server.Router(),
	}

	go func() {
		log.Printf("spectrack-server %s listening on port %d", version, cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}

// provisionFirstUser creates an admin account with a random password on the
// very first start, printing the credentials once.
func provisionFirstUser(app *core.App) error {
	count, err := app.Store().CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return err
	}
	password := token[:16]
	if _, err := app.Store().CreateUser("admin", password, "admin"); err != nil {
		return err
	}
	log.Printf("Created initial admin user 'admin' with password %q - change it after first login", password)
	return nil
}
