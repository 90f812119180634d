package webui

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/evrank/metrics"
	"github.com/rushteam/evrank/model"
	"github.com/rushteam/evrank/rank"
	"github.com/rushteam/evrank/store"
)

func newTestServer(ms *store.MemoryStore, opts ...Option) *Server {
	m := metrics.New()
	ranker := rank.NewRanker(model.NewCoefficientStore(ms, model.WithMetrics(m)), rank.WithMetrics(m))
	opts = append([]Option{WithAccessLog(io.Discard), WithMetrics(m)}, opts...)
	return New(ranker, opts...)
}

func postForm(t *testing.T, s *Server, path string, form url.Values) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func teslaForm(user string) url.Values {
	return url.Values{
		"user_id":      {user},
		"price":        {"45000"},
		"range":        {"500"},
		"efficiency":   {"150"},
		"acceleration": {"6.1"},
		"fast_charge":  {"170"},
		"seat_count":   {"5"},
	}
}

func TestIndex(t *testing.T) {
	s := newTestServer(store.NewMemoryStore())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="benjo"`)
	assert.Contains(t, body, "Volkswagen ID.4")
}

func TestUtility_Form(t *testing.T) {
	s := newTestServer(store.NewMemoryStore())
	rec, body := postForm(t, s, "/api/utility", teslaForm("test_user_nonexistent"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, -23.03, body["utility_score"])
	assert.Equal(t, NoteDefault, body["note"])
	assert.Equal(t, "test_user_nonexistent", body["user_id"])
	features := body["car_features"].(map[string]any)
	assert.Equal(t, 45000.0, features["price"])
}

func TestUtility_RoundsForDisplay(t *testing.T) {
	ms := store.NewMemoryStore()
	ms.SetString("params:benjo", `{"coeffs":{"price":-0.333333,"range":0,"efficiency":0,"acceleration":0,"fast_charge":0,"seat_count":0.123456}}`)
	s := newTestServer(ms)

	rec, body := postForm(t, s, "/api/utility", teslaForm("benjo"))
	assert.Equal(t, http.StatusOK, rec.Code)
	// -14.999985 + 0.61728
	assert.Equal(t, -14.3827, body["utility_score"])
	assert.Equal(t, NoteResolved, body["note"])
	coeffs := body["coefficients_used"].(map[string]any)
	assert.Equal(t, -0.3333, coeffs["price"])
	assert.Equal(t, 0.1235, coeffs["seat_count"])
}

func TestUtility_JSONBody(t *testing.T) {
	s := newTestServer(store.NewMemoryStore())
	req := httptest.NewRequest(http.MethodPost, "/api/utility", strings.NewReader(
		`{"user_id":"u","price":45000,"range":500,"efficiency":150,"acceleration":6.1,"fast_charge":170,"seat_count":5}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"utility_score": -23.03`)
}

func TestUtility_Errors(t *testing.T) {
	form := teslaForm("u")
	form.Set("price", "cheap")
	rec, body := postForm(t, newTestServer(store.NewMemoryStore()), "/api/utility", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "price")

	down := store.NewMemoryStore()
	down.SetError(assert.AnError)
	rec, _ = postForm(t, newTestServer(down), "/api/utility", teslaForm("u"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	broken := store.NewMemoryStore()
	broken.SetString("params:u", "not json")
	rec, _ = postForm(t, newTestServer(broken), "/api/utility", teslaForm("u"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUtility_EmptyFieldIsZero(t *testing.T) {
	form := teslaForm("u")
	form.Set("seat_count", "")
	rec, body := postForm(t, newTestServer(store.NewMemoryStore()), "/api/utility", form)

	assert.Equal(t, http.StatusOK, rec.Code)
	// seat_count 默认系数 0.4，缺失时少 2
	assert.Equal(t, -25.03, body["utility_score"])
}

func TestBest_Form(t *testing.T) {
	s := newTestServer(store.NewMemoryStore())
	rec, body := postForm(t, s, "/api/best", url.Values{
		"user_id":   {"test_user_nonexistent"},
		"cars_json": {ExampleCars},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	best := body["best_car"].(map[string]any)
	assert.Equal(t, "Tesla Model 3", best["name"])
	assert.Equal(t, -23.03, best["utility"])

	ranked := body["all_cars_ranked"].([]any)
	require.Len(t, ranked, 3)
	var got []string
	var utils []float64
	for _, r := range ranked {
		m := r.(map[string]any)
		got = append(got, m["name"].(string))
		utils = append(utils, m["utility"].(float64))
	}
	assert.Equal(t, []string{"Tesla Model 3", "Volkswagen ID.4", "Hyundai Ioniq 5"}, got)
	assert.Equal(t, []float64{-23.03, -23.54, -25.49}, utils)
	assert.Equal(t, NoteDefault, body["note"])
}

func TestBest_InvalidJSON(t *testing.T) {
	s := newTestServer(store.NewMemoryStore())
	for _, cars := range []string{"not json", `{"name":"Tesla"}`, `[1, 2]`} {
		rec, body := postForm(t, s, "/api/best", url.Values{"user_id": {"u"}, "cars_json": {cars}})
		assert.Equal(t, http.StatusBadRequest, rec.Code, cars)
		assert.Equal(t, ErrInvalidJSON, body["error"], cars)
	}
}

func TestBest_EmptyList(t *testing.T) {
	rec, body := postForm(t, newTestServer(store.NewMemoryStore()), "/api/best", url.Values{
		"user_id":   {"u"},
		"cars_json": {"[]"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "empty")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(store.NewMemoryStore())
	postForm(t, s, "/api/utility", teslaForm("u"))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `evrank_score_requests_total{operation="score_one"} 1`)
	assert.Contains(t, rec.Body.String(), `evrank_coefficient_resolutions_total{source="default"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(store.NewMemoryStore())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/best", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
