package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"homeserve/database/repository"
	"homeserve/handlers"
	"homeserve/models"
	"homeserve/services/booking"
	"homeserve/services/catalog"
	"homeserve/services/ledger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "admin-test-token"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	repos := repository.NewMemoryRepositories()
	_, err := repos.Catalog.SeedDefaults(ctx, []models.Service{{Name: "Cleaning", Price: 50}, {Name: "Plumbing", Price: 100}})
	require.NoError(t, err)
	require.NoError(t, repos.Providers.Create(ctx, &models.Provider{ID: "p1", Professions: []string{"Plumbing"}}))
	require.NoError(t, repos.Providers.Create(ctx, &models.Provider{ID: "p2", Professions: []string{"Plumbing"}}))

	cat := &catalog.RepoCatalog{Repo: repos.Catalog}
	earnings := &ledger.DefaultEarningsLedger{Bookings: repos.Bookings, Providers: repos.Providers, Share: 0.9}
	bookingSvc := &booking.DefaultBookingService{
		Bookings:   repos.Bookings,
		Providers:  repos.Providers,
		Homeowners: repos.Homeowners,
		Catalog:    cat,
		Ledger:     earnings,
	}
	matching := &booking.DefaultMatchingService{Providers: repos.Providers, Bookings: repos.Bookings}
	ratings := &ledger.DefaultRatingAggregator{Bookings: repos.Bookings, Providers: repos.Providers}

	r := gin.New()
	RegisterRoutes(r, &handlers.HandlerBundle{
		Booking:           handlers.NewBookingHandler(bookingSvc, matching, ratings),
		Admin:             handlers.NewAdminHandler(bookingSvc, earnings, 100),
		Catalog:           handlers.NewCatalogHandler(cat),
		AdminToken:        adminToken,
		MaxRequestsPerMin: 1000,
	})
	return r
}

func call(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w := call(t, r, http.MethodPost, "/api/bookings", map[string]any{
		"homeownerId": "h1",
		"serviceType": "Plumbing",
		"date":        "2024-01-01",
		"time":        "10:00",
		"address":     "123 Main St",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Booking](t, w)
	assert.Equal(t, 100.0, created.ServiceAmount)
	assert.Equal(t, models.StatusPending, created.Status)

	w = call(t, r, http.MethodGet, "/api/bookings/provider/p1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Booking](t, w), 1)

	w = call(t, r, http.MethodPut, "/api/bookings/"+created.ID+"/accept", map[string]string{"providerId": "p1"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, r, http.MethodPut, "/api/bookings/"+created.ID+"/accept", map[string]string{"providerId": "p2"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, r, http.MethodPut, "/api/bookings/"+created.ID+"/status", map[string]string{"status": "completed"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, r, http.MethodPut, "/api/bookings/"+created.ID+"/cancel", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, r, http.MethodPost, "/api/bookings/rate", map[string]any{"bookingId": created.ID, "providerId": "p1", "rating": 5}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode[ledger.RatingSummary](t, w)
	assert.Equal(t, 5.0, summary.AverageRating)
	assert.Equal(t, 1, summary.RatingCount)

	w = call(t, r, http.MethodGet, "/api/bookings/"+created.ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Booking](t, w)
	require.NotNil(t, got.ProviderEarning)
	assert.Equal(t, 90.0, *got.ProviderEarning)

	w = call(t, r, http.MethodGet, "/api/bookings/homeowner/h1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Booking](t, w), 1)
}

func TestErrorStatuses(t *testing.T) {
	r := newTestRouter(t)

	w := call(t, r, http.MethodPost, "/api/bookings", map[string]any{"homeownerId": "h1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodGet, "/api/bookings/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, r, http.MethodGet, "/api/bookings/provider/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(t, r, http.MethodPut, "/api/bookings/missing/status", map[string]string{"status": "archived"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodGet, "/api/bookings/homeowner/nobody", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAdminRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := call(t, r, http.MethodPost, "/api/bookings", map[string]any{
		"homeownerId": "h1", "serviceType": "Cleaning", "date": "2024-01-01", "time": "10:00", "address": "1 Elm St",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Booking](t, w)

	w = call(t, r, http.MethodDelete, "/api/admin/bookings/"+created.ID, nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(t, r, http.MethodPost, "/api/admin/earnings", map[string]any{"bookingId": created.ID, "providerId": "p1", "earning": 10}, adminToken)
	assert.Equal(t, http.StatusConflict, w.Code, "booking is not completed")

	w = call(t, r, http.MethodPost, "/api/admin/earnings/reconcile", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"resumed":0}`, w.Body.String())

	w = call(t, r, http.MethodDelete, "/api/admin/bookings/"+created.ID, nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	w = call(t, r, http.MethodDelete, "/api/admin/bookings/"+created.ID, nil, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogAndHealthRoutes(t *testing.T) {
	r := newTestRouter(t)

	w := call(t, r, http.MethodGet, "/api/services", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Service](t, w), 2)

	w = call(t, r, http.MethodGet, "/api/services/price?serviceType=cleaning", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"serviceType":"cleaning","price":50}`, w.Body.String())

	w = call(t, r, http.MethodGet, "/api/services/price", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, r, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
