// Package directory talks to the remote user-directory service that owns
// persistent user records. It translates transport outcomes into local error
// kinds and hands typed users to the rest of the service; untyped or
// malformed payloads never travel past this boundary.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// Directory resolves and creates user records.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, newUser domain.NewUser) (*domain.User, error)
}

// Client is the HTTP implementation of Directory. It performs no retries;
// callers decide whether an UNAVAILABLE outcome is worth retrying.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient builds a directory client with a bounded request timeout.
func NewClient(cfg config.DirectoryConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout()},
		logger:  logger,
	}
}

// userPayload is the directory's wire shape for a user record.
type userPayload struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *userPayload) toDomain() (*domain.User, error) {
	if p.ID == "" || p.Email == "" {
		return nil, fmt.Errorf("directory user missing id or email")
	}
	role := domain.Role(p.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("directory user has unknown role %q", p.Role)
	}
	return &domain.User{
		ID:           p.ID,
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Role:         role,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}, nil
}

// createPayload is the wire shape for account creation.
type createPayload struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

// FindByEmail resolves a user by its email identity key.
func (c *Client) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	path := "/users/email/" + url.PathEscape(email)
	return c.fetchUser(ctx, http.MethodGet, path, nil)
}

// FindByID resolves a user by its stable identifier.
func (c *Client) FindByID(ctx context.Context, id string) (*domain.User, error) {
	path := "/users/" + url.PathEscape(id)
	return c.fetchUser(ctx, http.MethodGet, path, nil)
}

// Create registers a new user record. A duplicate email surfaces as CONFLICT.
func (c *Client) Create(ctx context.Context, newUser domain.NewUser) (*domain.User, error) {
	body, err := json.Marshal(createPayload{
		Name:         newUser.Name,
		Email:        newUser.Email,
		PasswordHash: newUser.PasswordHash,
		Role:         string(newUser.Role),
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return c.fetchUser(ctx, http.MethodPost, "/users", body)
}

// Ping checks directory reachability for readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/live", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("directory health returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) fetchUser(ctx context.Context, method, path string, body []byte) (*domain.User, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("directory request failed", zap.String("path", path), zap.Error(err))
		return nil, apperrors.NewUnavailable("user directory unreachable", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NewNotFound("user", nil)
	case resp.StatusCode == http.StatusConflict:
		return nil, apperrors.NewConflict("email already registered", nil)
	case resp.StatusCode >= 300:
		c.logger.Warn("directory returned unexpected status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, apperrors.NewUnavailable(
			fmt.Sprintf("user directory returned %d", resp.StatusCode), nil)
	}

	var payload userPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewUnavailable("malformed directory response", err)
	}
	user, err := payload.toDomain()
	if err != nil {
		return nil, apperrors.NewUnavailable("malformed directory response", err)
	}
	return user, nil
}
