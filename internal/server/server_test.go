package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"envgate/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, zerolog.Nop())
}

func doJSON(t *testing.T, srv *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func saveDefinition(t *testing.T, srv *Server, payload string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/envdefs", []byte(payload))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		EnvID string `json:"env_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.EnvID, 8)
	return resp.EnvID
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSaveDefinition_CreatedThenDuplicate(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/envdefs", []byte(`{"image":"x:1"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	var first struct {
		EnvID   string `json:"env_id"`
		Created *bool  `json:"created"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	require.NotNil(t, first.Created)
	assert.True(t, *first.Created)

	// Same content again: 200, created=false, same id
	rec = doJSON(t, srv, http.MethodPost, "/envdefs", []byte(`{"image":"x:1"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	var second struct {
		EnvID   string `json:"env_id"`
		Created *bool  `json:"created"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.Equal(t, first.EnvID, second.EnvID)
	require.NotNil(t, second.Created)
	assert.False(t, *second.Created)
}

func TestSaveDefinition_InvalidBody(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/envdefs", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDefinition_RoundTrip(t *testing.T) {
	srv := newTestServer(t)
	envID := saveDefinition(t, srv, `{"image":"x:1","packages":{"python":"3.12"}}`)

	rec := doJSON(t, srv, http.MethodGet, "/envdefs/"+envID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp envDefResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, envID, resp.EnvID)
	assert.Equal(t, "x:1", resp.Payload["image"])
}

func TestGetDefinition_NotFound(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/envdefs/00000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBind_And_CurrentBinding(t *testing.T) {
	srv := newTestServer(t)
	envID := saveDefinition(t, srv, `{"image":"x:1"}`)

	body, _ := json.Marshal(appEnvRequest{App: "svc", Env: "prod", EnvID: envID})
	rec := doJSON(t, srv, http.MethodPost, "/appenvs", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/appenvs?app=svc&env=prod", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp appEnvResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "svc", resp.App)
	assert.Equal(t, "prod", resp.Env)
	assert.Equal(t, envID, resp.EnvID)
	assert.Equal(t, "x:1", resp.Payload["image"])
}

func TestBind_UnknownDefinition(t *testing.T) {
	srv := newTestServer(t)

	body, _ := json.Marshal(appEnvRequest{App: "svc", Env: "prod", EnvID: "00000000"})
	rec := doJSON(t, srv, http.MethodPost, "/appenvs", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBind_MissingFields(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/appenvs", []byte(`{"app":"svc"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCurrentBinding_NeverBound(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/appenvs?app=ghost&env=prod", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCurrentBinding_MissingParams(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/appenvs?app=svc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListBindings_LatestPerPair(t *testing.T) {
	srv := newTestServer(t)
	idA := saveDefinition(t, srv, `{"image":"a:1"}`)
	idB := saveDefinition(t, srv, `{"image":"b:1"}`)

	binds := []appEnvRequest{
		{App: "app1", Env: "prod", EnvID: idA},
		{App: "app2", Env: "prod", EnvID: idA},
		{App: "app1", Env: "prod", EnvID: idB}, // redeploy app1/prod
	}
	for _, b := range binds {
		body, _ := json.Marshal(b)
		rec := doJSON(t, srv, http.MethodPost, "/appenvs", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/appenvs/list", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []appEnvResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)

	// Sorted by app, env; latest definition wins per pair
	assert.Equal(t, "app1", list[0].App)
	assert.Equal(t, idB, list[0].EnvID)
	assert.Equal(t, "app2", list[1].App)
	assert.Equal(t, idA, list[1].EnvID)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	// Generate some traffic first
	doJSON(t, srv, http.MethodGet, "/health", nil)

	rec := doJSON(t, srv, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "envgate_http_requests_total")
}
