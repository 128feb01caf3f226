// Package api exposes the HTTP surface of the chat service: REST endpoints
// for accounts and rooms, plus the WebSocket endpoint that feeds the hub.
package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/go-monolith/mono"

	"github.com/example/chat-hub/modules/auth"
	"github.com/example/chat-hub/modules/chat"
	"github.com/example/chat-hub/modules/hub"
)

var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// Module serves HTTP and WebSocket traffic.
type Module struct {
	app      *fiber.App
	port     string
	authPort auth.Port
	chatPort chat.Port
	hub      *hub.Module
	logger   *log.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewModule creates the API module. The listen port comes from PORT,
// defaulting to 8080.
func NewModule(hubModule *hub.Module) *Module {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return &Module{
		port:   port,
		hub:    hubModule,
		logger: log.New(os.Stdout, "[api] ", log.LstdFlags),
	}
}

func (m *Module) Name() string {
	return "api"
}

func (m *Module) Dependencies() []string {
	return []string{"auth", "chat"}
}

func (m *Module) SetDependencyServiceContainer(moduleName string, container mono.ServiceContainer) {
	switch moduleName {
	case "auth":
		m.authPort = auth.NewAdapter(container)
	case "chat":
		m.chatPort = chat.NewAdapter(container)
	}
}

func (m *Module) Start(ctx context.Context) error {
	if m.authPort == nil || m.chatPort == nil {
		return fmt.Errorf("api module dependencies not set")
	}
	if m.hub == nil {
		return fmt.Errorf("hub module not set")
	}

	m.baseCtx, m.cancel = context.WithCancel(context.Background())

	m.app = fiber.New(fiber.Config{
		AppName:               "chat-hub",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			// Long-lived upgrades would hold a log line open until close.
			return c.Path() == "/ws"
		},
	}))
	m.setupRoutes()

	// Listen blocks, so run it in the background and give it a moment
	// to surface bind errors.
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(":" + m.port); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-time.After(250 * time.Millisecond):
		m.logger.Printf("listening on port %s", m.port)
		return nil
	}
}

func (m *Module) Stop(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.app == nil {
		return nil
	}
	m.logger.Println("shutting down HTTP server")
	return m.app.ShutdownWithContext(ctx)
}

func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	healthy := m.app != nil
	message := "serving"
	if !healthy {
		message = "not started"
	}
	return mono.HealthStatus{
		Healthy: healthy,
		Message: message,
		Details: map[string]any{
			"port":     m.port,
			"sessions": m.hub.SessionCount(),
		},
	}
}
