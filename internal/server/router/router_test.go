package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/barnmonitor/internal/config"
	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	"github.com/mamadbah2/barnmonitor/internal/server/handlers"
	"github.com/mamadbah2/barnmonitor/internal/service/auth"
	"github.com/mamadbah2/barnmonitor/internal/service/guard"
	"github.com/mamadbah2/barnmonitor/internal/service/records"
	"github.com/mamadbah2/barnmonitor/internal/service/reporting"
	"github.com/mamadbah2/barnmonitor/internal/session"
	"github.com/mamadbah2/barnmonitor/pkg/clients/barnapi"
	"github.com/mamadbah2/barnmonitor/pkg/clients/openmeteo"
)

// fakeBarnAPI is a minimal in-memory BarnMonitor API.
type fakeBarnAPI struct {
	mu    sync.Mutex
	sales []models.SaleRecord
}

func (f *fakeBarnAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}
	jane := map[string]any{"id": 7, "name": "Jane", "email": "jane@farm.io", "phone": "+254700111222"}

	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		var creds models.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		if creds.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": "sid-7", "data": map[string]any{"user": jane}})
	})
	mux.HandleFunc("DELETE /logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /farmers/7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 7, "name": "Jane", "animals": []map[string]any{{"id": 5, "name": "Bessie"}}})
	})
	mux.HandleFunc("GET /sales", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sid-7", r.Header.Get("Authorization"))
		f.mu.Lock()
		defer f.mu.Unlock()
		writeJSON(w, http.StatusOK, f.sales)
	})
	mux.HandleFunc("POST /sales", func(w http.ResponseWriter, r *http.Request) {
		var form models.SaleForm
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
		created := models.SaleRecord{
			ID: 101, AnimalID: form.AnimalID, ProductType: form.ProductType, QuantitySold: form.QuantitySold,
			Amount: form.Amount, SaleDate: form.SaleDate, Animal: &models.AnimalRef{ID: form.AnimalID, Name: "Bessie", FarmerID: 7},
		}
		f.mu.Lock()
		f.sales = append(f.sales, created)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, created)
	})
	mux.HandleFunc("GET /sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, s := range f.sales {
			if strconv.Itoa(s.ID) == r.PathValue("id") {
				writeJSON(w, http.StatusOK, s)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Sale not found"})
	})
	mux.HandleFunc("PATCH /sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		var form models.SaleForm
		require.NoError(t, json.NewDecoder(r.Body).Decode(&form))
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, s := range f.sales {
			if strconv.Itoa(s.ID) == r.PathValue("id") {
				s.ProductType, s.QuantitySold, s.Amount, s.SaleDate = form.ProductType, form.QuantitySold, form.Amount, form.SaleDate
				f.sales[i] = s
				writeJSON(w, http.StatusOK, s)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Sale not found"})
	})
	mux.HandleFunc("DELETE /sales/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Sale not found"})
	})
	mux.HandleFunc("GET /productions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.ProductionRecord{})
	})
	return mux
}

func newTestEngine(t *testing.T) http.Handler {
	t.Helper()

	api := &fakeBarnAPI{sales: []models.SaleRecord{
		{ID: 1, ProductType: "Milk", QuantitySold: 10, Amount: 500, SaleDate: "2024-01-01", Animal: &models.AnimalRef{ID: 5, Name: "Bessie", FarmerID: 7}},
		{ID: 2, ProductType: "Eggs", QuantitySold: 30, Amount: 90, SaleDate: "2024-01-02", Animal: &models.AnimalRef{ID: 6, Name: "Hen", FarmerID: 7}},
		{ID: 3, ProductType: "Milk", QuantitySold: 4, Amount: 200, SaleDate: "2024-01-02", Animal: &models.AnimalRef{ID: 9, Name: "Other", FarmerID: 8}},
	}}
	apiSrv := httptest.NewServer(api.handler(t))
	t.Cleanup(apiSrv.Close)

	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_weather":{"temperature":20,"windspeed":5,"weathercode":0,"time":"2024-01-02T12:00"}}`))
	}))
	t.Cleanup(weatherSrv.Close)

	store := session.NewMemoryStore()
	client := barnapi.NewClient(config.APIConfig{BaseURL: apiSrv.URL, Timeout: 2 * time.Second}, session.TokenOf(store), nil)
	set := records.NewSet(barnapi.NewCollections(client), store, nil)
	gateway := auth.NewGateway(client, store, nil)
	reports := reporting.NewService(store, openmeteo.NewClient(config.WeatherConfig{BaseURL: weatherSrv.URL}), client, set.Sales, set.Productions, nil)

	return New(Handlers{
		Auth:      handlers.NewAuthHandler(gateway, nil),
		Dashboard: handlers.NewDashboardHandler(store, reports, client, nil, nil, nil),
		Records:   handlers.NewRecordsHandlers(set.Controllers(), nil),
	}, guard.New(store), nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload), rec.Body.String())
	}
	return rec, payload
}

func login(t *testing.T, h http.Handler) {
	t.Helper()
	rec, payload := do(t, h, http.MethodPost, "/login", `{"email":"jane@farm.io","password":"secret"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/dashboard", payload["redirect"])
	assert.Equal(t, true, payload["authenticated"])
	assert.NotContains(t, rec.Body.String(), "sid-7")
}

func itemIDs(payload map[string]any) []float64 {
	var out []float64
	for _, item := range payload["items"].([]any) {
		out = append(out, item.(map[string]any)["id"].(float64))
	}
	return out
}

func TestHealthzCarriesRequestID(t *testing.T) {
	h := newTestEngine(t)
	rec, payload := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", payload["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGuardRedirectsWithoutSession(t *testing.T) {
	h := newTestEngine(t)
	for _, path := range []string{"/dashboard", "/api/sales", "/api/profile"} {
		rec, payload := do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Equal(t, "/login", payload["redirect"])
	}
}

func TestLoginFailures(t *testing.T) {
	h := newTestEngine(t)

	rec, payload := do(t, h, http.MethodPost, "/login", `{"email":"jane@farm.io","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password.", payload["error"])

	rec, payload = do(t, h, http.MethodPost, "/login", `{"email":"","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in email.", payload["error"])

	rec, _ = do(t, h, http.MethodPost, "/login", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordsLifecycle(t *testing.T) {
	h := newTestEngine(t)
	login(t, h)

	rec, payload := do(t, h, http.MethodGet, "/api/sales", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []float64{1, 2}, itemIDs(payload))
	assert.Equal(t, float64(590), payload["total"])

	rec, payload = do(t, h, http.MethodGet, "/api/sales?q=milk&sort=amount&dir=desc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []float64{1}, itemIDs(payload))

	rec, _ = do(t, h, http.MethodGet, "/api/sales?sort=colour", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, payload = do(t, h, http.MethodPost, "/api/sales",
		`{"animal_id":5,"product_type":"Milk","quantity_sold":10,"amount":500,"sale_date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Sales record added successfully!", payload["status"].(map[string]any)["success"])
	assert.Equal(t, float64(0), payload["form"].(map[string]any)["animal_id"])
	assert.Equal(t, float64(3), payload["count"])

	rec, payload = do(t, h, http.MethodPost, "/api/sales", `{"animal_id":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in product type.", payload["error"])
}

func TestEditCancelAndDelete(t *testing.T) {
	h := newTestEngine(t)
	login(t, h)
	_, _ = do(t, h, http.MethodGet, "/api/sales", "")

	rec, payload := do(t, h, http.MethodPost, "/api/sales/2/edit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), payload["editing"])
	assert.Equal(t, "Eggs", payload["form"].(map[string]any)["product_type"])

	rec, payload = do(t, h, http.MethodDelete, "/api/sales/edit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, payload, "editing")

	rec, _ = do(t, h, http.MethodPost, "/api/sales/3/edit", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, payload = do(t, h, http.MethodDelete, "/api/sales/2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "The record no longer exists.", payload["error"])

	rec, _ = do(t, h, http.MethodDelete, "/api/sales/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardAndLogout(t *testing.T) {
	h := newTestEngine(t)
	login(t, h)

	rec, payload := do(t, h, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(590), payload["total_sales"])
	assert.Equal(t, float64(1), payload["total_animals"])
	assert.Equal(t, "Clear", payload["weather_label"])

	rec, _ = do(t, h, http.MethodPost, "/api/export", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, payload = do(t, h, http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login", payload["redirect"])

	rec, _ = do(t, h, http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, payload = do(t, h, http.MethodGet, "/session", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, payload["authenticated"])

	rec, _ = do(t, h, http.MethodGet, "/api/sales", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestShowRecord(t *testing.T) {
	h := newTestEngine(t)

	rec, _ := do(t, h, http.MethodGet, "/api/sales/1", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	login(t, h)

	rec, payload := do(t, h, http.MethodGet, "/api/sales/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), payload["id"])
	assert.Equal(t, "Milk", payload["product_type"])

	rec, payload = do(t, h, http.MethodGet, "/api/sales/3", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "The record no longer exists.", payload["error"])

	rec, _ = do(t, h, http.MethodGet, "/api/sales/404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitAnswersOKForUpdates(t *testing.T) {
	h := newTestEngine(t)
	login(t, h)
	_, _ = do(t, h, http.MethodGet, "/api/sales", "")

	rec, _ := do(t, h, http.MethodPost, "/api/sales/2/edit", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, payload := do(t, h, http.MethodPost, "/api/sales",
		`{"animal_id":6,"product_type":"Eggs","quantity_sold":40,"amount":120,"sale_date":"2024-01-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sales record updated successfully!", payload["status"].(map[string]any)["success"])
	assert.Equal(t, float64(2), payload["count"])
	assert.InDelta(t, 620, payload["total"].(float64), 1e-9)
	assert.NotContains(t, payload, "editing")
}

func TestFeedsRejectEdit(t *testing.T) {
	h := newTestEngine(t)
	login(t, h)

	rec, payload := do(t, h, http.MethodPost, "/api/feeds/1/edit", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "These records cannot be edited.", payload["error"])
}
