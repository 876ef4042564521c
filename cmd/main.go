package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admin-notify-service/internal/config"
	"admin-notify-service/internal/server"
)

func main() {
	cfg := config.Load()
	srv := server.NewServer(cfg)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Admin notify service starting on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Println("Admin notify service shutting down gracefully...")
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Admin notify service shutdown error: %v", err)
		}
	case err := <-errCh:
		log.Fatal(err)
	}
}
