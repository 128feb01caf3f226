// Package hub is the connection/session core: the concurrent connection
// registry, room membership, the inbound command protocol, and the
// broadcast router, together with the per-connection reader/writer
// lifecycle.
package hub

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/contrib/websocket"

	"github.com/example/chat-hub/events"
	"github.com/example/chat-hub/modules/chat"
)

// Module wires the hub into the application: it owns the registry,
// membership, and router, consumes chat storage through the service
// container, and rides MessageSent events on the event bus for fan-out.
type Module struct {
	registry   *Registry
	membership *Membership
	router     *Router
	processor  *Processor
	storage    StoragePort
	eventBus   mono.EventBus
	logger     *slog.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.DependentModule       = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the hub module.
func NewModule() *Module {
	logger := slog.Default()
	registry := NewRegistry()
	membership := NewMembership()
	return &Module{
		registry:   registry,
		membership: membership,
		router:     NewRouter(registry, membership, logger),
		logger:     logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "hub"
}

// Dependencies lists the modules the hub consumes services from.
func (m *Module) Dependencies() []string {
	return []string{"chat"}
}

// SetDependencyServiceContainer receives service containers from
// dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "chat" {
		m.storage = chat.NewAdapter(container)
	}
}

// SetEventBus receives the event bus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageSentV1.ToBase(),
	}
}

// RegisterEventConsumers subscribes the fan-out path to MessageSent events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.MessageSentV1, m.handleMessageSent, m); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}
	log.Println("[hub] Registered event consumers: MessageSent")
	return nil
}

// handleMessageSent fans the pre-serialized frame out to the room,
// excluding the sender.
func (m *Module) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	m.router.Publish(event.RoomID, event.SenderID, event.Frame)
	return nil
}

// publishMessage satisfies the processor's publisher dependency.
func (m *Module) publishMessage(_ context.Context, event events.MessageSentEvent) error {
	return events.MessageSentV1.Publish(m.eventBus, event, nil)
}

// Start builds the command processor once dependencies are in place.
func (m *Module) Start(_ context.Context) error {
	if m.storage == nil {
		return fmt.Errorf("chat storage dependency not set")
	}
	m.processor = NewProcessor(m.membership, m.storage, m, m.logger)
	log.Println("[hub] Module started")
	return nil
}

// Stop shuts the hub down. Sessions terminate with their sockets when the
// API server closes.
func (m *Module) Stop(_ context.Context) error {
	log.Printf("[hub] Module stopped (%d sessions were connected)", m.registry.Len())
	return nil
}

// Health reports hub occupancy.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"sessions": m.registry.Len(),
			"rooms":    m.membership.RoomCount(),
		},
	}
}

// HandleConnection runs a session for an authenticated user over an upgraded
// socket. It blocks until the connection closes; the caller is the
// websocket handler goroutine.
func (m *Module) HandleConnection(ctx context.Context, userID string, conn *websocket.Conn) {
	session := NewSession(userID, conn, m.registry, m.membership, m.processor, m.logger)
	session.Run(ctx)
}

// MembersOf returns a snapshot of the live member sessions of a room.
func (m *Module) MembersOf(room string) []string {
	return m.membership.MembersOf(room)
}

// SessionCount returns the number of live sessions.
func (m *Module) SessionCount() int {
	return m.registry.Len()
}
