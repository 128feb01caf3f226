package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Port is the cross-module view of the auth services.
type Port interface {
	Register(ctx context.Context, username, password string) (*RegisterResponse, error)
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (*ValidateTokenResponse, error)
}

// Adapter implements Port over the service container.
type Adapter struct {
	container mono.ServiceContainer
}

// NewAdapter creates an Adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	if container == nil {
		panic("auth: ServiceContainer is nil")
	}
	return &Adapter{container: container}
}

// Register creates a new account.
func (a *Adapter) Register(ctx context.Context, username, password string) (*RegisterResponse, error) {
	req := RegisterRequest{Username: username, Password: password}
	var resp RegisterResponse
	if err := helper.CallRequestReplyService(ctx, a.container, ServiceRegister, json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	return &resp, nil
}

// Login authenticates an account and returns a token.
func (a *Adapter) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	req := LoginRequest{Username: username, Password: password}
	var resp LoginResponse
	if err := helper.CallRequestReplyService(ctx, a.container, ServiceLogin, json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	return &resp, nil
}

// ValidateToken validates a bearer credential.
func (a *Adapter) ValidateToken(ctx context.Context, token string) (*ValidateTokenResponse, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse
	if err := helper.CallRequestReplyService(ctx, a.container, ServiceValidateToken, json.Marshal, json.Unmarshal, &req, &resp); err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	return &resp, nil
}
