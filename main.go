package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/chat-hub/modules/api"
	"github.com/example/chat-hub/modules/auth"
	"github.com/example/chat-hub/modules/chat"
	"github.com/example/chat-hub/modules/hub"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Chat Hub ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	authModule := auth.NewModule()
	chatModule := chat.NewModule()
	hubModule := hub.NewModule()
	apiModule := api.NewModule(hubModule)

	// Order: service providers first, then their dependents.
	// - auth: accounts and token validation
	// - chat: rooms and message persistence
	// - hub: live sessions, consumes chat services, fans out MessageSent events
	// - api: Fiber HTTP/WebSocket surface, depends on auth and chat
	app.Register(authModule)
	app.Register(chatModule)
	app.Register(hubModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dbPath := os.Getenv("CHAT_DB_PATH")
	if dbPath == "" {
		dbPath = "chat.db"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("  Database: %s", dbPath)
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%s):", port)
	log.Println("  GET    /health                    - Health check")
	log.Println("  POST   /api/v1/auth/register      - Create an account")
	log.Println("  POST   /api/v1/auth/login         - Obtain a token")
	log.Println("  GET    /api/v1/rooms              - List rooms")
	log.Println("  POST   /api/v1/rooms              - Create a room")
	log.Println("  GET    /api/v1/rooms/:id/history  - Message history")
	log.Println("  GET    /api/v1/rooms/:id/members  - Connected members")
	log.Println("")
	log.Printf("WebSocket Endpoint (ws://localhost:%s/ws?token=...):", port)
	log.Println("  Frame types: join_room, send_message -> new_message")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
