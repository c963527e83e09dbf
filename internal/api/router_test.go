package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"zust-route-service/internal/domain"
	"zust-route-service/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

type fakeRoutes struct {
	result      *services.RouteResult
	err         error
	stops       []domain.Stop
	gotZone     string
	gotProfile  string
	generateHit int
}

func (f *fakeRoutes) Generate(_ context.Context, zoneID, profile string) (*services.RouteResult, error) {
	f.generateHit++
	f.gotZone, f.gotProfile = zoneID, profile
	return f.result, f.err
}

func (f *fakeRoutes) ViewSaved(_ context.Context, zoneID string) (*services.RouteResult, error) {
	f.gotZone = zoneID
	return f.result, f.err
}

func (f *fakeRoutes) Deliveries(_ context.Context, zoneID string) ([]domain.Stop, error) {
	f.gotZone = zoneID
	return f.stops, f.err
}

type fakeRaw struct {
	body []byte
	err  error
}

func (f *fakeRaw) LoadRaw(_ context.Context, _ string) ([]byte, error) { return f.body, f.err }

func sampleResult() *services.RouteResult {
	depot := domain.Stop{Name: "Depot", SubscriptionType: "DEPOT", Lat: ptr(52.5), Lon: ptr(13.4)}
	a := domain.Stop{Name: "A", Street: "Weg", HouseNumber: "1", Lat: ptr(52.6), Lon: ptr(13.5), JobID: 1}
	return &services.RouteResult{
		ZoneID: "Z-101",
		Saved: domain.SavedRoute{
			Profile:      "driving-car",
			Optimized:    json.RawMessage(`{"routes":[]}`),
			OrderedRoute: domain.OrderedRoute{depot, a, depot},
			RouteGeoJSON: json.RawMessage(`{"type":"FeatureCollection"}`),
			Stats: domain.RouteStats{
				TotalDistanceKm:  4,
				TotalDurationMin: 8,
				Segments:         []domain.Segment{{DistanceKm: 2, DurationMin: 4}, {DistanceKm: 2, DurationMin: 4}},
			},
		},
		Labor: services.ProjectLabor(4, 8, 0),
		Map: domain.MapView{
			Geometry: json.RawMessage(`{"type":"FeatureCollection"}`),
			Markers:  []domain.Marker{{Lat: 52.5, Lon: 13.4, Label: "Depot (DEPOT)"}},
		},
	}
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestHealth(t *testing.T) {
	h := NewRouter(&fakeRoutes{}, &fakeRaw{})

	rec := serve(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = serve(h, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDPropagated(t *testing.T) {
	h := NewRouter(&fakeRoutes{}, &fakeRaw{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewRouter(&fakeRoutes{}, &fakeRaw{})
	serve(h, http.MethodGet, "/health", "")

	rec := serve(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestGenerateRoute(t *testing.T) {
	routes := &fakeRoutes{result: sampleResult()}
	h := NewRouter(routes, &fakeRaw{})

	rec := serve(h, http.MethodPost, "/zones/Z-101/route", `{"profile":"cycling-regular"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Z-101", routes.gotZone)
	assert.Equal(t, "cycling-regular", routes.gotProfile)

	var body struct {
		Zone         string `json:"zone"`
		OrderedRoute []struct {
			Position int    `json:"position"`
			Name     string `json:"name"`
		} `json:"ordered_route"`
		Stats struct {
			TotalKm  float64 `json:"total_km"`
			Segments []any   `json:"segments"`
		} `json:"stats"`
		Labor []struct {
			Label string `json:"label"`
		} `json:"labor"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Z-101", body.Zone)
	require.Len(t, body.OrderedRoute, 3)
	assert.Equal(t, 1, body.OrderedRoute[0].Position)
	assert.Equal(t, "A", body.OrderedRoute[1].Name)
	assert.Equal(t, 4.0, body.Stats.TotalKm)
	assert.Len(t, body.Stats.Segments, 2)
	assert.Len(t, body.Labor, 10)
}

func TestGenerateRouteEmptyBody(t *testing.T) {
	routes := &fakeRoutes{result: sampleResult()}
	h := NewRouter(routes, &fakeRaw{})

	rec := serve(h, http.MethodPost, "/zones/Z-101/route", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", routes.gotProfile)
}

func TestGenerateRouteBadBody(t *testing.T) {
	routes := &fakeRoutes{result: sampleResult()}
	h := NewRouter(routes, &fakeRaw{})

	for _, body := range []string{`{"profile":`, `{"profil":"x"}`, `{} {}`} {
		rec := serve(h, http.MethodPost, "/zones/Z-101/route", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Zero(t, routes.generateHit)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid zone", domain.ErrInvalidZone, http.StatusBadRequest},
		{"invalid profile", domain.ErrInvalidProfile, http.StatusBadRequest},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"busy", domain.ErrZoneBusy, http.StatusConflict},
		{"insufficient", domain.ErrInsufficientStops, http.StatusUnprocessableEntity},
		{"no route", domain.ErrNoRoute, http.StatusBadGateway},
		{"optimizer", &domain.OptimizationError{StatusCode: 500, Body: "boom"}, http.StatusBadGateway},
		{"directions", &domain.DirectionsError{StatusCode: 404}, http.StatusBadGateway},
		{"integrity", &domain.RouteIntegrityError{Missing: []int{3}}, http.StatusBadGateway},
		{"corrupt", &domain.CorruptRecordError{Path: "x.json"}, http.StatusInternalServerError},
		{"other", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRouter(&fakeRoutes{err: tc.err}, &fakeRaw{})

			rec := serve(h, http.MethodPost, "/zones/Z-101/route", `{}`)
			assert.Equal(t, tc.want, rec.Code)
			assert.NotEmpty(t, decodeError(t, rec))
		})
	}
}

func TestOptimizerErrorMessage(t *testing.T) {
	h := NewRouter(&fakeRoutes{err: &domain.OptimizationError{StatusCode: 500, Body: "boom"}}, &fakeRaw{})

	rec := serve(h, http.MethodPost, "/zones/Z-101/route", `{}`)
	assert.Contains(t, decodeError(t, rec), "500")
	assert.Contains(t, decodeError(t, rec), "boom")
}

func TestSavedRouteAndMap(t *testing.T) {
	routes := &fakeRoutes{result: sampleResult()}
	h := NewRouter(routes, &fakeRaw{})

	rec := serve(h, http.MethodGet, "/zones/Z-101/route", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodGet, "/zones/Z-101/route/map", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"geometry":{"type":"FeatureCollection"},"markers":[{"lat":52.5,"lon":13.4,"label":"Depot (DEPOT)"}]}`,
		rec.Body.String())
}

func TestDeliveries(t *testing.T) {
	routes := &fakeRoutes{stops: []domain.Stop{
		{Name: "Depot", Lat: ptr(1), Lon: ptr(2)},
		{Name: "A"},
	}}
	h := NewRouter(routes, &fakeRaw{})

	rec := serve(h, http.MethodGet, "/zones/Z-101/deliveries", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Geocoded int `json:"geocoded"`
		Stops    []struct {
			Name string   `json:"name"`
			Lat  *float64 `json:"lat"`
		} `json:"stops"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Geocoded)
	require.Len(t, body.Stops, 2)
	assert.Nil(t, body.Stops[1].Lat)
}

func TestExportJSON(t *testing.T) {
	raw := []byte("{\n  \"profile\": \"driving-car\"\n}\n")
	h := NewRouter(&fakeRoutes{}, &fakeRaw{body: raw})

	rec := serve(h, http.MethodGet, "/zones/Z-101/route/export.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, raw, rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Z-101.json")

	h = NewRouter(&fakeRoutes{}, &fakeRaw{err: domain.ErrNotFound})
	rec = serve(h, http.MethodGet, "/zones/Z-101/route/export.json", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCSVExports(t *testing.T) {
	h := NewRouter(&fakeRoutes{result: sampleResult()}, &fakeRaw{})

	rec := serve(h, http.MethodGet, "/zones/Z-101/route/stats.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeffLabel,Value\n"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Z-101_stats_")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	rec = serve(h, http.MethodGet, "/zones/Z-101/route/order.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2,A,Weg,1,,,52.6,13.5\n")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Z-101_order_")
}
