package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/example/chat-hub/modules/auth"
)

// mockAuthPort implements auth.Port for testing.
type mockAuthPort struct {
	registerFunc      func(ctx context.Context, username, password string) (*auth.RegisterResponse, error)
	loginFunc         func(ctx context.Context, username, password string) (*auth.LoginResponse, error)
	validateTokenFunc func(ctx context.Context, token string) (*auth.ValidateTokenResponse, error)
}

func (m *mockAuthPort) Register(ctx context.Context, username, password string) (*auth.RegisterResponse, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, username, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) Login(ctx context.Context, username, password string) (*auth.LoginResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthPort) ValidateToken(ctx context.Context, token string) (*auth.ValidateTokenResponse, error) {
	if m.validateTokenFunc != nil {
		return m.validateTokenFunc(ctx, token)
	}
	return nil, errors.New("not implemented")
}

// admissionMock maps the presented token straight onto an admission verdict.
func admissionMock() *mockAuthPort {
	return &mockAuthPort{
		validateTokenFunc: func(_ context.Context, token string) (*auth.ValidateTokenResponse, error) {
			switch token {
			case "":
				return &auth.ValidateTokenResponse{Valid: false, Error: "missing"}, nil
			case "expired-token":
				return &auth.ValidateTokenResponse{Valid: false, Error: "expired"}, nil
			case "valid-token":
				return &auth.ValidateTokenResponse{Valid: true, UserID: "user-123", Username: "alice"}, nil
			default:
				return &auth.ValidateTokenResponse{Valid: false, Error: "invalid"}, nil
			}
		},
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing authorization header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Authorization header is required",
		},
		{
			name:           "not a bearer token",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid authorization header format",
		},
		{
			name:           "invalid token",
			authHeader:     "Bearer bad-token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid or expired token",
		},
		{
			name:           "valid token",
			authHeader:     "Bearer valid-token",
			expectedStatus: http.StatusOK,
			expectedBody:   "user-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(AuthMiddleware(admissionMock()))
			app.Get("/test", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"user_id": c.Locals(userIDKey)})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("status = %v, want %v", resp.StatusCode, tt.expectedStatus)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("io.ReadAll() error = %v", err)
			}
			if !strings.Contains(string(body), tt.expectedBody) {
				t.Errorf("body = %v, want to contain %v", string(body), tt.expectedBody)
			}
		})
	}
}

func TestWebSocketAuthMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		authHeader     string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "missing credential",
			query:          "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Credential is required",
		},
		{
			name:           "invalid credential",
			query:          "?token=bad-token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Invalid credential",
		},
		{
			name:           "expired credential",
			query:          "?token=expired-token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   "Credential has expired",
		},
		{
			name:           "valid credential via query",
			query:          "?token=valid-token",
			expectedStatus: http.StatusOK,
			expectedBody:   "user-123",
		},
		{
			name:           "valid credential via header",
			query:          "",
			authHeader:     "Bearer valid-token",
			expectedStatus: http.StatusOK,
			expectedBody:   "user-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use("/ws", WebSocketAuthMiddleware(admissionMock()))
			app.Get("/ws", func(c *fiber.Ctx) error {
				return c.JSON(fiber.Map{"user_id": c.Locals(userIDKey)})
			})

			req := httptest.NewRequest("GET", "/ws"+tt.query, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("status = %v, want %v", resp.StatusCode, tt.expectedStatus)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("io.ReadAll() error = %v", err)
			}
			if !strings.Contains(string(body), tt.expectedBody) {
				t.Errorf("body = %v, want to contain %v", string(body), tt.expectedBody)
			}
		})
	}
}

// No hub or registry state exists for a rejected upgrade; the middleware
// short-circuits before the handler runs.
func TestWebSocketAuthMiddleware_RejectedBeforeHandler(t *testing.T) {
	handlerRan := false

	app := fiber.New()
	app.Use("/ws", WebSocketAuthMiddleware(admissionMock()))
	app.Get("/ws", func(c *fiber.Ctx) error {
		handlerRan = true
		return nil
	})

	req := httptest.NewRequest("GET", "/ws?token=expired-token", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	resp.Body.Close()

	if handlerRan {
		t.Error("handler ran for a rejected credential")
	}
}
