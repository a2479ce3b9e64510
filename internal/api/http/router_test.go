package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/event-ticketing/internal/api/http/handlers"
	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/config"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/events"
	"github.com/spec-kit/event-ticketing/internal/observability"
	"github.com/spec-kit/event-ticketing/internal/repository/memory"
	"github.com/spec-kit/event-ticketing/internal/service"
)

type testServer struct {
	app    *fiber.App
	tokens map[string]string
	ids    map[string]string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	metrics := observability.NewMetrics()
	deps := service.Dependencies{
		Store:      store,
		Dispatcher: events.NewInMemoryDispatcher(),
		Metrics:    metrics,
		Logger:     zap.NewNop(),
	}
	ledger := service.NewInventoryLedger(metrics)
	purchases := service.NewPurchaseService(deps, ledger)
	authCfg := config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 10,
		BcryptCost:            bcrypt.MinCost,
	}
	authService := service.NewAuthService(authCfg, store.Repos().Users, zap.NewNop())

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("event-ticketing", "test", nil),
		Users:          handlers.NewUsersHandler(authService),
		Events:         handlers.NewEventsHandler(service.NewEventService(deps)),
		Categories:     handlers.NewCategoriesHandler(service.NewCategoryService(deps)),
		Tickets:        handlers.NewTicketsHandler(purchases),
		Registrations:  handlers.NewRegistrationsHandler(purchases),
		Promos:         handlers.NewPromoHandler(service.NewPromoService(deps)),
		Admin:          handlers.NewAdminHandler(service.NewSalesService(deps, ledger)),
		AdminUsers:     handlers.NewAdminUsersHandler(service.NewUserService(deps, authCfg)),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Repos().Users),
		Metrics:        metrics,
	})

	srv := &testServer{app: app, tokens: map[string]string{}, ids: map[string]string{}}
	for name, role := range map[string]domain.UserRole{
		"organizer": domain.RoleOrganizer,
		"admin":     domain.RoleAdmin,
		"alice":     domain.RoleUser,
		"bob":       domain.RoleUser,
	} {
		user := &domain.User{Name: name, Email: name + "@example.com", Role: role, Status: domain.UserStatusActive}
		require.NoError(t, store.Repos().Users.Create(context.Background(), user))
		token, _, err := authService.TokenManager().GenerateToken(user.ID, user.Role)
		require.NoError(t, err)
		srv.tokens[name] = token
		srv.ids[name] = user.ID
	}
	return srv
}

func (s *testServer) do(t *testing.T, method, path, who string, body any) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[who])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	payload := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload), string(raw))
	}
	return resp.StatusCode, payload
}

func data(payload map[string]any) map[string]any {
	out, _ := payload["data"].(map[string]any)
	return out
}

func errorCode(payload map[string]any) string {
	errBody, _ := payload["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func (s *testServer) createEvent(t *testing.T, capacity int, price string) string {
	t.Helper()
	status, payload := s.do(t, http.MethodPost, "/events", "organizer", map[string]any{
		"title":      "Gophercon",
		"location":   "Berlin",
		"event_date": time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"capacity":   capacity,
		"price":      price,
	})
	require.Equal(t, http.StatusCreated, status, payload)
	return data(payload)["id"].(string)
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status, payload := srv.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Carol", "email": "Carol@Example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusCreated, status, payload)
	user := data(payload)["user"].(map[string]any)
	assert.Equal(t, "carol@example.com", user["email"])
	assert.Equal(t, "user", user["role"])

	status, payload = srv.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"name": "Carol", "email": "carol@example.com", "password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(payload))

	status, payload = srv.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "carol@example.com", "password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, status, payload)
	token := data(payload)["auth"].(map[string]any)["token"].(string)
	assert.NotEmpty(t, token)

	status, payload = srv.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email": "carol@example.com", "password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", errorCode(payload))

	status, payload = srv.do(t, http.MethodGet, "/auth/me", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice@example.com", data(payload)["email"])
}

func TestRoleGuards(t *testing.T) {
	srv := newTestServer(t)
	eventID := srv.createEvent(t, 10, "50")

	cases := []struct {
		name   string
		method string
		path   string
		who    string
		status int
		code   string
	}{
		{name: "anonymous purchase", method: http.MethodPost, path: "/tickets/purchase/" + eventID, status: http.StatusUnauthorized, code: "UNAUTHORIZED"},
		{name: "user creates event", method: http.MethodPost, path: "/events", who: "alice", status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "organizer reads sales", method: http.MethodGet, path: "/admin/reports/sales", who: "organizer", status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "user lists promos", method: http.MethodGet, path: "/promo-codes", who: "bob", status: http.StatusForbidden, code: "FORBIDDEN"},
		{name: "unknown route", method: http.MethodGet, path: "/nowhere", status: http.StatusNotFound, code: "NOT_FOUND"},
		{name: "unknown event", method: http.MethodGet, path: "/events/missing", status: http.StatusNotFound, code: "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := srv.do(t, tc.method, tc.path, tc.who, nil)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, errorCode(payload))
		})
	}
}

func TestPurchaseAndCancelOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	eventID := srv.createEvent(t, 1, "100")

	status, payload := srv.do(t, http.MethodPost, "/tickets/purchase/"+eventID, "alice", nil)
	require.Equal(t, http.StatusCreated, status, payload)
	ticket := data(payload)
	assert.Equal(t, "100.00", ticket["price"])
	assert.Equal(t, "active", ticket["status"])

	status, payload = srv.do(t, http.MethodPost, "/tickets/purchase/"+eventID, "bob", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_CAPACITY", errorCode(payload))

	status, payload = srv.do(t, http.MethodGet, "/tickets/my-tickets", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, payload["data"], 1)

	status, payload = srv.do(t, http.MethodGet, "/tickets/"+ticket["id"].(string), "bob", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "ACCESS_DENIED", errorCode(payload))

	status, payload = srv.do(t, http.MethodPatch, "/tickets/"+ticket["id"].(string)+"/cancel", "alice", nil)
	require.Equal(t, http.StatusOK, status, payload)
	assert.Equal(t, "cancelled", data(payload)["status"])

	status, payload = srv.do(t, http.MethodPatch, "/tickets/"+ticket["id"].(string)+"/cancel", "alice", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_CANCELLED", errorCode(payload))

	status, payload = srv.do(t, http.MethodGet, "/tickets/verify/"+ticket["unique_code"].(string), "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, data(payload)["is_valid"])

	status, payload = srv.do(t, http.MethodGet, "/events/"+eventID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), data(payload)["tickets_sold"])
	assert.Equal(t, "0.00", data(payload)["total_revenue"])
}

func TestPromoRegistrationAndAdminOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	eventID := srv.createEvent(t, 10, "100")

	status, payload := srv.do(t, http.MethodPost, "/promo-codes", "admin", map[string]any{
		"code":           "save20",
		"discount_type":  "percentage",
		"discount_value": "20",
		"max_uses":       5,
		"valid_from":     time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
		"valid_until":    time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, status, payload)
	assert.Equal(t, "SAVE20", data(payload)["code"])

	status, payload = srv.do(t, http.MethodGet, "/promo-codes/validate/save20?eventid="+eventID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(payload)["is_valid"])
	assert.Empty(t, data(payload)["errors"])

	status, payload = srv.do(t, http.MethodPost, "/registrations/"+eventID, "alice", map[string]any{
		"quantity": 2, "promo_code": "SAVE20",
	})
	require.Equal(t, http.StatusCreated, status, payload)
	assert.Equal(t, "200.00", data(payload)["total_price"])
	assert.Equal(t, "160.00", data(payload)["final_price"])

	status, payload = srv.do(t, http.MethodPost, "/registrations/"+eventID, "alice", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE_PURCHASE", errorCode(payload))

	status, payload = srv.do(t, http.MethodGet, "/admin/reports/sales", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	summary := data(payload)["summary"].(map[string]any)
	assert.Equal(t, "160.00", summary["total_revenue"])
	assert.Equal(t, float64(2), summary["total_tickets_sold"])

	status, payload = srv.do(t, http.MethodPatch, "/admin/events/"+eventID+"/sales", "admin", map[string]any{"tickets_sold": 11})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "OUT_OF_RANGE", errorCode(payload))

	status, payload = srv.do(t, http.MethodPatch, "/admin/events/"+eventID+"/sales", "admin", map[string]any{"tickets_sold": 4})
	require.Equal(t, http.StatusOK, status, payload)
	assert.Equal(t, "400.00", data(payload)["total_revenue"])

	status, payload = srv.do(t, http.MethodPatch, "/admin/events/"+eventID+"/reset-sales", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), data(payload)["tickets_sold"])

	status, payload = srv.do(t, http.MethodGet, "/admin/events/"+eventID+"/adjustments", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, payload["data"], 2)
}

func TestEventListingAndOps(t *testing.T) {
	srv := newTestServer(t)
	srv.createEvent(t, 10, "10")
	srv.createEvent(t, 20, "20")

	status, payload := srv.do(t, http.MethodGet, "/events?limit=1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, payload["data"], 1)
	pagination := payload["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["total"])
	assert.Equal(t, float64(1), pagination["limit"])

	status, payload = srv.do(t, http.MethodGet, "/events?date_from=not-a-date", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(payload))

	status, _ = srv.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, payload = srv.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", payload["status"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "http_requests_total")
}

func list(payload map[string]any) []any {
	out, _ := payload["data"].([]any)
	return out
}

func TestCategoryEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status, payload := srv.do(t, http.MethodPost, "/categories", "organizer", map[string]any{"name": "Music"})
	assert.Equal(t, http.StatusForbidden, status, payload)

	status, payload = srv.do(t, http.MethodPost, "/categories", "admin", map[string]any{"name": "Music"})
	require.Equal(t, http.StatusCreated, status, payload)
	categoryID := data(payload)["id"].(string)

	status, payload = srv.do(t, http.MethodPost, "/categories", "admin", map[string]any{"name": "MUSIC"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", errorCode(payload))

	status, payload = srv.do(t, http.MethodPost, "/events", "organizer", map[string]any{
		"title":       "Gig",
		"location":    "Riverside",
		"event_date":  time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"capacity":    20,
		"price":       "30",
		"category_id": categoryID,
		"is_featured": true,
	})
	require.Equal(t, http.StatusCreated, status, payload)
	assert.Equal(t, categoryID, data(payload)["category_id"])
	srv.createEvent(t, 5, "5")

	status, payload = srv.do(t, http.MethodGet, "/events?category_id="+categoryID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(payload), 1)

	status, payload = srv.do(t, http.MethodGet, "/events?min_price=10&max_price=40&location=river", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(payload), 1)

	status, payload = srv.do(t, http.MethodGet, "/events?min_price=cheap", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(payload))

	status, payload = srv.do(t, http.MethodGet, "/events/featured", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(payload), 1)

	status, payload = srv.do(t, http.MethodGet, "/categories/"+categoryID, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, data(payload)["events"], 1)

	status, _ = srv.do(t, http.MethodDelete, "/categories/"+categoryID, "admin", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, payload = srv.do(t, http.MethodPatch, "/categories/"+categoryID+"/toggle-status", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, data(payload)["is_active"])

	status, payload = srv.do(t, http.MethodGet, "/categories/active", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list(payload))

	status, payload = srv.do(t, http.MethodGet, "/categories?is_active=false", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(payload), 1)
	assert.EqualValues(t, 1, payload["pagination"].(map[string]any)["total"])
}

func TestAdminUserEndpointsAndDashboard(t *testing.T) {
	srv := newTestServer(t)

	status, _ := srv.do(t, http.MethodGet, "/admin/users", "alice", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, payload := srv.do(t, http.MethodPost, "/admin/users", "admin", map[string]any{
		"name": "Dana", "email": "dana@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, status, payload)
	assert.Equal(t, "user", data(payload)["role"])
	danaID := data(payload)["id"].(string)

	status, payload = srv.do(t, http.MethodGet, "/admin/users?role=user&search=dana", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, list(payload), 1)

	status, payload = srv.do(t, http.MethodPatch, "/admin/users/"+danaID+"/role", "admin", map[string]any{"role": "organizer"})
	require.Equal(t, http.StatusOK, status, payload)
	assert.Equal(t, "organizer", data(payload)["role"])

	status, payload = srv.do(t, http.MethodPatch, "/admin/users/"+srv.ids["admin"]+"/role", "admin", map[string]any{"role": "user"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(payload))

	status, payload = srv.do(t, http.MethodPatch, "/admin/users/"+danaID+"/toggle-status", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, data(payload)["is_active"])

	status, payload = srv.do(t, http.MethodGet, "/admin/users?is_active=false", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(payload), 1)

	eventID := srv.createEvent(t, 5, "25")
	status, _ = srv.do(t, http.MethodPost, "/tickets/purchase/"+eventID, "alice", nil)
	require.Equal(t, http.StatusCreated, status)

	status, _ = srv.do(t, http.MethodDelete, "/admin/users/"+srv.ids["alice"], "admin", nil)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = srv.do(t, http.MethodDelete, "/admin/users/"+danaID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, payload = srv.do(t, http.MethodGet, "/admin/dashboard", "admin", nil)
	require.Equal(t, http.StatusOK, status)
	dash := data(payload)
	assert.EqualValues(t, 4, dash["totalUsers"])
	assert.EqualValues(t, 1, dash["totalEvents"])
	assert.EqualValues(t, 1, dash["totalTickets"])
	assert.EqualValues(t, 1, dash["activeTickets"])
	assert.Equal(t, "25.00", dash["totalRevenue"])
	assert.EqualValues(t, 1, dash["upcomingEvents"])
	assert.Len(t, dash["recentEvents"], 1)
}

func TestTicketHistoryOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	eventID := srv.createEvent(t, 5, "10")

	status, payload := srv.do(t, http.MethodPost, "/tickets/purchase/"+eventID, "alice", nil)
	require.Equal(t, http.StatusCreated, status, payload)

	status, _ = srv.do(t, http.MethodGet, "/users/me/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, payload = srv.do(t, http.MethodGet, "/users/me/history?status=active", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	entries := list(payload)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "Gophercon", entry["event"].(map[string]any)["title"])

	status, payload = srv.do(t, http.MethodGet, "/users/me/history?status=cancelled", "alice", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list(payload))

	status, _ = srv.do(t, http.MethodGet, "/users/me/history?status=lost", "alice", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
