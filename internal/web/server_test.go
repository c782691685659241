package web_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sergiu-D/dataforge/internal/engine"
	"github.com/Sergiu-D/dataforge/internal/schema"
	"github.com/Sergiu-D/dataforge/internal/session"
	"github.com/Sergiu-D/dataforge/internal/web"
)

func newServer(t *testing.T, provider string) (*web.Server, *engine.Selector) {
	t.Helper()
	loader, err := engine.NewLoader(engine.Config{Provider: provider, Seed: 7}, nil)
	require.NoError(t, err)
	sel := engine.NewSelector(loader)
	return web.NewServer(web.Config{PreviewRows: 2}, session.New(sel, nil), sel, nil), sel
}

func do(t *testing.T, srv *web.Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newServer(t, engine.ProviderNone)

	rec := do(t, srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "uninitialized", body["engine"])
	assert.Equal(t, "idle", body["session"])
}

func TestTypes(t *testing.T) {
	srv, sel := newServer(t, engine.ProviderBuiltin)

	rec := do(t, srv, http.MethodGet, "/api/types", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var types []schema.FieldTypeDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	assert.Len(t, types, 26)
	assert.Equal(t, engine.Ready, sel.State())
}

func TestValidate(t *testing.T) {
	srv, _ := newServer(t, engine.ProviderNone)

	rec := do(t, srv, http.MethodPost, "/api/schema/validate",
		`{"fields":[{"name":"email","type":"email"},{"name":"email","type":"email"}],"rows":5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":false,"errors":["duplicate field name: \"email\""]}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/schema/validate", `{"fields":[{"name":"a","type":"city"}]}`)
	assert.JSONEq(t, `{"valid":true,"errors":[]}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/schema/validate",
		`{"fields":[{"name":"n","type":"number","options":{"min":5,"max":1}}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid field options")

	rec = do(t, srv, http.MethodPost, "/api/schema/validate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMove(t *testing.T) {
	srv, _ := newServer(t, engine.ProviderNone)

	rec := do(t, srv, http.MethodPost, "/api/schema/move",
		`{"fields":[{"id":"a","name":"a","type":"city"},{"id":"b","name":"b","type":"city"},{"id":"c","name":"c","type":"city"}],"from":0,"to":2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var p schema.Payload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	var ids []string
	for _, f := range p.Fields {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"b", "c", "a"}, ids)

	rec = do(t, srv, http.MethodPost, "/api/schema/move", `{"fields":[{"id":"a","name":"a","type":"city"}],"from":0,"to":3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGenerateAndViews(t *testing.T) {
	srv, sel := newServer(t, engine.ProviderNone)

	rec := do(t, srv, http.MethodGet, "/api/dataset", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/generate",
		`{"fields":[{"name":"first","type":"first_name"},{"name":"mail","type":"email"}],"rows":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, engine.Failed, sel.State())

	want := "first,mail\nFirstName1,user1@example.com\nFirstName2,user2@example.com\nFirstName3,user3@example.com"
	var gen struct {
		Rows     int      `json:"rows"`
		Warnings []string `json:"warnings"`
		CSV      string   `json:"csv"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gen))
	assert.Equal(t, 3, gen.Rows)
	assert.Empty(t, gen.Warnings)
	assert.Equal(t, want, gen.CSV)

	rec = do(t, srv, http.MethodGet, "/api/dataset?view=csv", "")
	assert.Equal(t, want, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	rec = do(t, srv, http.MethodGet, "/api/dataset?view=json", "")
	assert.JSONEq(t, `[
		{"first":"FirstName1","mail":"user1@example.com"},
		{"first":"FirstName2","mail":"user2@example.com"},
		{"first":"FirstName3","mail":"user3@example.com"}
	]`, rec.Body.String())

	pterm.DisableStyling()
	defer pterm.EnableStyling()
	rec = do(t, srv, http.MethodGet, "/api/dataset?view=table", "")
	assert.Contains(t, rec.Body.String(), "FirstName2")
	assert.NotContains(t, rec.Body.String(), "FirstName3")

	rec = do(t, srv, http.MethodGet, "/api/dataset?view=xml", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateRejectsEmptySchema(t *testing.T) {
	srv, _ := newServer(t, engine.ProviderNone)

	rec := do(t, srv, http.MethodPost, "/api/generate", `{"fields":[],"rows":3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"error":"at least one field is required"}`, rec.Body.String())
}

func TestGenerateWithBuiltinEngine(t *testing.T) {
	srv, _ := newServer(t, engine.ProviderBuiltin)

	rec := do(t, srv, http.MethodPost, "/api/generate", `{"fields":[{"name":"id","type":"uuid"}],"rows":3}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var gen struct {
		CSV string `json:"csv"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gen))
	assert.Len(t, strings.Split(gen.CSV, "\n"), 4)
}

func TestDownload(t *testing.T) {
	srv, _ := newServer(t, engine.ProviderNone)

	rec := do(t, srv, http.MethodGet, "/api/download/csv", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	do(t, srv, http.MethodPost, "/api/generate", `{"fields":[{"name":"city","type":"city"}],"rows":2}`)

	rec = do(t, srv, http.MethodGet, "/api/download/csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "city\nCity1\nCity2", rec.Body.String())
	assert.Equal(t, `attachment; filename="generated_data.csv"`, rec.Header().Get("Content-Disposition"))

	rec = do(t, srv, http.MethodGet, "/api/download/json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "[\n  {\n    \"city\": \"City1\"\n  },\n  {\n    \"city\": \"City2\"\n  }\n]", rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/api/download/parquet", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShutdownWithoutStart(t *testing.T) {
	srv, _ := newServer(t, engine.ProviderNone)
	assert.NoError(t, srv.Shutdown(context.Background()))
}
