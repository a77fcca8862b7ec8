package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fleet-auth-server/internal/handler"
	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/model/requestresponse"
	"fleet-auth-server/internal/security"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func adminIdentity() *model.Identity {
	isAdmin := true
	return &model.Identity{ID: "u1", IsAdmin: &isAdmin, AuthMethod: model.AuthMethodBearer}
}

func companyKeyIdentity(companyID int64) *model.Identity {
	return &model.Identity{ID: "ci-key", CompanyID: &companyID, Permissions: []string{"apikeys:revoke"}, AuthMethod: model.AuthMethodAPIKey}
}

func apiKeyRouter(svc *MockAPIKeyService) http.Handler {
	return apiKeyRouterAs(svc, adminIdentity())
}

func apiKeyRouterAs(svc *MockAPIKeyService, identity *model.Identity) http.Handler {
	h := handler.NewAPIKeyHandler(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if identity != nil {
				req = req.WithContext(security.WithIdentity(req.Context(), identity))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/api/apikeys", h.CreateAPIKey)
	r.Delete("/api/apikeys/{id}", h.RevokeAPIKey)
	return r
}

func TestCreateAPIKey(t *testing.T) {
	svc := new(MockAPIKeyService)
	svc.On("Create", mock.Anything, "ingest", int64(42), []string{"loads:read"}, (*time.Time)(nil)).
		Return(&model.APIKey{ID: "k1", CompanyID: 42, IsActive: true}, "fak_raw", nil)

	rec := httptest.NewRecorder()
	apiKeyRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/apikeys",
		strings.NewReader(`{"name":"ingest","companyId":42,"permissions":["loads:read"]}`)))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp requestresponse.CreateAPIKeyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "k1", resp.Response.ID)
	assert.Equal(t, "fak_raw", resp.Response.Key)
}

func TestCreateAPIKey_Invalid(t *testing.T) {
	bodies := []string{
		`{"companyId":42,"permissions":["loads:read"]}`,
		`{"name":"ingest","permissions":["loads:read"]}`,
		`{"name":"ingest","companyId":42,"permissions":[]}`,
		`not json`,
	}

	for i, body := range bodies {
		t.Run(fmt.Sprint(i), func(t *testing.T) {
			svc := new(MockAPIKeyService)
			rec := httptest.NewRecorder()
			apiKeyRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/apikeys", strings.NewReader(body)))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRevokeAPIKey(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
	}{
		{"revoked", nil, http.StatusOK},
		{"unknown key", fmt.Errorf("отзыв: %w", model.ErrNotFound), http.StatusNotFound},
		{"cache down", errors.New("redis down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAPIKeyService)
			svc.On("Revoke", mock.Anything, "k1", (*int64)(nil)).Return(tt.err)

			rec := httptest.NewRecorder()
			apiKeyRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/apikeys/k1", nil))

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}

func TestRevokeAPIKey_ScopedToCompany(t *testing.T) {
	svc := new(MockAPIKeyService)
	companyID := int64(42)
	svc.On("Revoke", mock.Anything, "own-key", &companyID).Return(nil)
	svc.On("Revoke", mock.Anything, "foreign-key", &companyID).Return(fmt.Errorf("отзыв: %w", model.ErrNotFound))
	router := apiKeyRouterAs(svc, companyKeyIdentity(42))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/apikeys/own-key", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/apikeys/foreign-key", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.AssertExpectations(t)
	svc.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, (*int64)(nil))
}

func TestRevokeAPIKey_NoCompanyOrIdentity(t *testing.T) {
	svc := new(MockAPIKeyService)

	rec := httptest.NewRecorder()
	apiKeyRouterAs(svc, &model.Identity{ID: "u2"}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/apikeys/k1", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	apiKeyRouterAs(svc, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/apikeys/k1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	svc.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateAPIKey_RejectedByService(t *testing.T) {
	svc := new(MockAPIKeyService)
	past := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.On("Create", mock.Anything, "ingest", int64(42), []string{"loads:read"}, &past).
		Return(nil, "", fmt.Errorf("срок в прошлом: %w", model.ErrInvalidInput))

	rec := httptest.NewRecorder()
	apiKeyRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/apikeys",
		strings.NewReader(`{"name":"ingest","companyId":42,"permissions":["loads:read"],"expiresAt":"2020-01-01T00:00:00Z"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	ok := handler.PingerFunc(func(context.Context) error { return nil })
	down := handler.PingerFunc(func(context.Context) error { return errors.New("connection refused") })

	rec := httptest.NewRecorder()
	handler.NewHealthHandler(map[string]handler.Pinger{"postgres": ok, "redis": ok}).
		Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.NewHealthHandler(map[string]handler.Pinger{"postgres": ok, "redis": down}).
		Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unavailable", body["redis"])
}
