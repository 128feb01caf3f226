package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/example/chat-hub/modules/chat"
)

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes() {
	m.app.Get("/health", m.healthHandler)

	// WebSocket admission: credential check, then upgrade.
	m.app.Use("/ws", WebSocketAuthMiddleware(m.authPort), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	m.app.Get("/ws", websocket.New(m.handleWebSocket))

	api := m.app.Group("/api/v1")

	// Public auth endpoints.
	api.Post("/auth/register", m.register)
	api.Post("/auth/login", m.login)

	// Everything else requires a Bearer token.
	rooms := api.Group("/rooms", AuthMiddleware(m.authPort))
	rooms.Get("/", m.listRooms)
	rooms.Post("/", m.createRoom)
	rooms.Get("/:id/history", m.getHistory)
	rooms.Get("/:id/members", m.getMembers)
}

// healthHandler handles GET /health.
func (m *Module) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":   "api",
			"sessions": m.hub.SessionCount(),
		},
	})
}

// register handles POST /api/v1/auth/register.
func (m *Module) register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := m.authPort.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Error:   "username_taken",
				Message: "Username is already taken",
			})
		}
		return badRequest(c, reason(err, "Registration failed"))
	}

	return c.Status(fiber.StatusCreated).JSON(*resp)
}

// login handles POST /api/v1/auth/login.
func (m *Module) login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resp, err := m.authPort.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return unauthorized(c, "Invalid username or password")
	}

	return c.JSON(TokenResponse{Token: resp.Token, TokenType: resp.TokenType})
}

// listRooms handles GET /api/v1/rooms.
func (m *Module) listRooms(c *fiber.Ctx) error {
	rooms, err := m.chatPort.ListRooms(c.UserContext())
	if err != nil {
		return serverError(c, "Failed to list rooms")
	}

	resp := RoomListResponse{Rooms: make([]RoomResponse, 0, len(rooms))}
	for _, room := range rooms {
		resp.Rooms = append(resp.Rooms, RoomResponse{
			ID:        room.ID,
			Name:      room.Name,
			CreatedAt: room.CreatedAt,
			Members:   len(m.hub.MembersOf(room.ID)),
		})
	}
	resp.Total = len(resp.Rooms)
	return c.JSON(resp)
}

// createRoom handles POST /api/v1/rooms.
func (m *Module) createRoom(c *fiber.Ctx) error {
	var req CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := chat.ValidateRoomName(req.Name); err != nil {
		return badRequest(c, reason(err, "Invalid room name"))
	}

	room, err := m.chatPort.CreateRoom(c.UserContext(), req.Name)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Error:   "room_exists",
				Message: "A room with this name already exists",
			})
		}
		return serverError(c, "Failed to create room")
	}

	return c.Status(fiber.StatusCreated).JSON(RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		CreatedAt: room.CreatedAt,
	})
}

// getHistory handles GET /api/v1/rooms/:id/history.
func (m *Module) getHistory(c *fiber.Ctx) error {
	roomID := c.Params("id")
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	messages, err := m.chatPort.GetHistory(c.UserContext(), roomID, limit)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return notFound(c, "Room not found")
		}
		return serverError(c, "Failed to get history")
	}

	resp := HistoryResponse{RoomID: roomID, Messages: make([]MessageResponse, 0, len(messages))}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, MessageResponse{
			ID:        msg.ID,
			RoomID:    msg.RoomID,
			UserID:    msg.UserID,
			Username:  msg.Username,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	return c.JSON(resp)
}

// getMembers handles GET /api/v1/rooms/:id/members: the hub's live
// membership snapshot joined with stored display names.
func (m *Module) getMembers(c *fiber.Ctx) error {
	roomID := c.Params("id")

	memberIDs := m.hub.MembersOf(roomID)
	resp := MemberListResponse{RoomID: roomID, Members: make([]MemberResponse, 0, len(memberIDs))}
	if len(memberIDs) == 0 {
		return c.JSON(resp)
	}

	names, err := m.chatPort.UsernamesFor(c.UserContext(), memberIDs)
	if err != nil {
		return serverError(c, "Failed to resolve member names")
	}
	for _, id := range memberIDs {
		resp.Members = append(resp.Members, MemberResponse{ID: id, Username: names[id]})
	}
	return c.JSON(resp)
}

// handleWebSocket hands an admitted connection to the hub. The middleware
// has already validated the credential; the authenticated user ID rides in
// via Locals.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	userID, _ := c.Locals(userIDKey).(string)
	if userID == "" {
		_ = c.Close()
		return
	}
	m.hub.HandleConnection(m.baseCtx, userID, c)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
		Error:   "not_found",
		Message: message,
	})
}

func serverError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}

// reason unwraps validation failures into a user-facing message.
func reason(err error, fallback string) string {
	var unwrapped error = err
	for errors.Unwrap(unwrapped) != nil {
		unwrapped = errors.Unwrap(unwrapped)
	}
	if unwrapped != nil && unwrapped.Error() != "" {
		return unwrapped.Error()
	}
	return fallback
}
