package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/config"
	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/dataset"
	"github.com/02loveslollipop/Hyouga-glacier-explorer/services/api/observability"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	tables := dataset.Tables{
		Glaciers: []dataset.Glacier{
			{ID: 353, Name: "Mer De Glace", PoliticalUnit: "FR", Latitude: 45.87, Longitude: 6.93,
				PrimaryClassification: 5},
			{ID: 394, Name: "Rhonegletscher", PoliticalUnit: "CH", Latitude: 46.62, Longitude: 8.40,
				PrimaryClassification: 6},
			{ID: 3987, Name: "Tuyuksuyskiy", PoliticalUnit: "KZ", Latitude: 43.05, Longitude: 77.08},
		},
		MassBalance: []dataset.SeriesPoint{
			{GlacierID: 353, Year: 1995, Value: -890},
			{GlacierID: 353, Year: 1996, Value: 120},
		},
		Length: []dataset.SeriesPoint{
			{GlacierID: 394, Year: 1900, Value: 10.2},
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := dataset.NewStore(tables, logger)
	require.NoError(t, err)

	cfg := config.Config{Port: 8080, DefaultGlacierID: 353}
	return New(cfg, store, observability.NewMetricsForTesting(), logger)
}

func doRequest(t *testing.T, srv *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFilterGlaciersNoParams(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/api/v1/glaciers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))

	payload := decodeBody(t, rec)
	meta := payload["meta"].(map[string]any)
	// No parameters is the wildcard: every site matches.
	assert.Equal(t, float64(3), meta["count"])
	assert.Equal(t, float64(3), meta["country_count"])
	assert.Equal(t, float64(1900), meta["earliest_year"])
	assert.Equal(t, float64(3), meta["data_point_count"])

	markers := payload["data"].(map[string]any)["markers"].([]any)
	assert.Len(t, markers, 3)
}

func TestFilterGlaciersRequireParam(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/api/v1/glaciers?require=mass_balance", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	meta := payload["meta"].(map[string]any)
	assert.Equal(t, float64(1), meta["count"])

	markers := payload["data"].(map[string]any)["markers"].([]any)
	require.Len(t, markers, 1)
	assert.Equal(t, float64(353), markers[0].(map[string]any)["id"])
}

func TestFilterGlaciersClassificationParam(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet,
		"/api/v1/glaciers?classification=5&classification=6", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	assert.Equal(t, float64(2), payload["meta"].(map[string]any)["count"])
}

func TestFilterGlaciersEmptySubset(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/api/v1/glaciers?min_years=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	payload := decodeBody(t, rec)
	meta := payload["meta"].(map[string]any)
	assert.Equal(t, float64(0), meta["count"])
	assert.Nil(t, meta["earliest_year"])
}

func TestFilterGlaciersBadParams(t *testing.T) {
	cases := []struct {
		name   string
		target string
	}{
		{"bad first_meas", "/api/v1/glaciers?first_meas=soon"},
		{"negative min_years", "/api/v1/glaciers?min_years=-1"},
		{"code out of range", "/api/v1/glaciers?classification=11"},
		{"code not numeric", "/api/v1/glaciers?form=calving"},
		{"unknown require value", "/api/v1/glaciers?require=volume"},
	}

	srv := testServer(t)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodGet, tc.target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetGlacier(t *testing.T) {
	srv := testServer(t)

	t.Run("known id", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/glaciers/394", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		data := decodeBody(t, rec)["data"].(map[string]any)
		detail := data["detail"].(map[string]any)
		assert.Equal(t, "Rhonegletscher", detail["name"])

		charts := data["charts"].(map[string]any)
		require.Len(t, charts, 4)
		assert.Equal(t, "bar", charts["length"].(map[string]any)["kind"])
		assert.Equal(t, "no_data", charts["area"].(map[string]any)["kind"])
	})

	t.Run("unknown id falls back to default", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/glaciers/424242", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		detail := decodeBody(t, rec)["data"].(map[string]any)["detail"].(map[string]any)
		assert.Equal(t, "Mer De Glace", detail["name"])
	})

	t.Run("non-numeric id", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/v1/glaciers/mer-de-glace", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSelect(t *testing.T) {
	srv := testServer(t)

	t.Run("click payload selects the clicked site", func(t *testing.T) {
		body := strings.NewReader(`{"points":[{"customdata":["Rhonegletscher",394]}]}`)
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/select", body)
		require.Equal(t, http.StatusOK, rec.Code)

		detail := decodeBody(t, rec)["data"].(map[string]any)["detail"].(map[string]any)
		assert.Equal(t, float64(394), detail["id"])
	})

	t.Run("empty body selects the default site", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/select", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		detail := decodeBody(t, rec)["data"].(map[string]any)["detail"].(map[string]any)
		assert.Equal(t, float64(353), detail["id"])
	})

	t.Run("empty points array selects the default site", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/select", strings.NewReader(`{"points":[]}`))
		require.Equal(t, http.StatusOK, rec.Code)

		detail := decodeBody(t, rec)["data"].(map[string]any)["detail"].(map[string]any)
		assert.Equal(t, float64(353), detail["id"])
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/v1/select", strings.NewReader(`{`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFilterOptions(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/api/v1/meta/filters", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeBody(t, rec)["data"].(map[string]any)
	for _, key := range []string{"primary_classifications", "forms", "frontal_characteristics"} {
		options, ok := data[key].([]any)
		require.True(t, ok, key)
		assert.Len(t, options, 11, key)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodOptions, "/api/v1/glaciers", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
