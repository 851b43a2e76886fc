package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.DirectoryConfig{BaseURL: baseURL, TimeoutSeconds: 2}, zap.NewNop())
}

func userJSON() map[string]any {
	return map[string]any{
		"id":            "user-1",
		"name":          "Test User",
		"email":         "user@example.com",
		"password_hash": "$2a$04$abcdefghijklmnopqrstuv",
		"role":          "customer",
	}
}

func TestClient_FindByEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/email/user@example.com", r.URL.Path)
		_ = json.NewEncoder(w).Encode(userJSON())
	}))
	t.Cleanup(server.Close)

	user, err := newTestClient(server.URL).FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "user@example.com", user.Email)
	assert.Equal(t, domain.RoleCustomer, user.Role)
	assert.NotEmpty(t, user.PasswordHash)
}

func TestClient_FindByID_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	_, err := newTestClient(server.URL).FindByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestClient_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/users", r.URL.Path)

			var payload map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "new@example.com", payload["email"])
			assert.NotEmpty(t, payload["password_hash"])

			w.WriteHeader(http.StatusCreated)
			body := userJSON()
			body["id"] = "user-2"
			body["email"] = "new@example.com"
			_ = json.NewEncoder(w).Encode(body)
		}))
		t.Cleanup(server.Close)

		user, err := newTestClient(server.URL).Create(context.Background(), domain.NewUser{
			Name:         "New User",
			Email:        "new@example.com",
			PasswordHash: "$2a$04$abcdefghijklmnopqrstuv",
			Role:         domain.RoleCustomer,
		})
		require.NoError(t, err)
		assert.Equal(t, "user-2", user.ID)
	})

	t.Run("duplicate email", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
		}))
		t.Cleanup(server.Close)

		_, err := newTestClient(server.URL).Create(context.Background(), domain.NewUser{
			Name:         "New User",
			Email:        "taken@example.com",
			PasswordHash: "$2a$04$abcdefghijklmnopqrstuv",
			Role:         domain.RoleCustomer,
		})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	})
}

func TestClient_UnavailableMapping(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)

		_, err := newTestClient(server.URL).FindByEmail(context.Background(), "user@example.com")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable))
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{not json"))
		}))
		t.Cleanup(server.Close)

		_, err := newTestClient(server.URL).FindByEmail(context.Background(), "user@example.com")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable))
	})

	t.Run("unknown role in payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := userJSON()
			body["role"] = "superuser"
			_ = json.NewEncoder(w).Encode(body)
		}))
		t.Cleanup(server.Close)

		_, err := newTestClient(server.URL).FindByEmail(context.Background(), "user@example.com")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable))
	})

	t.Run("missing id in payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := userJSON()
			body["id"] = ""
			_ = json.NewEncoder(w).Encode(body)
		}))
		t.Cleanup(server.Close)

		_, err := newTestClient(server.URL).FindByEmail(context.Background(), "user@example.com")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable))
	})

	t.Run("timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		t.Cleanup(server.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := newTestClient(server.URL).FindByEmail(ctx, "user@example.com")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable))
	})

	t.Run("connection refused", func(t *testing.T) {
		_, err := newTestClient("http://127.0.0.1:1").FindByEmail(context.Background(), "user@example.com")
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeUnavailable))
	})
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health/live", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	assert.NoError(t, newTestClient(server.URL).Ping(context.Background()))
	assert.Error(t, newTestClient("http://127.0.0.1:1").Ping(context.Background()))
}
