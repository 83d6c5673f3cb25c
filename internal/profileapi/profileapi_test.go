package profileapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagesmith/internal/editor"
	"pagesmith/internal/persist"
)

const savedDoc = `{"components":{"c1":{"id":"c1","type":"card","title":"<i>Hot</i> picks"}},"selectedComponentsIdx":[],"editMode":false}`

func do(t *testing.T, h http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSaveThenGet(t *testing.T) {
	store := persist.NewMemoryStore()
	h := New(store, Options{}).Router()

	rec := do(t, h, http.MethodPost, "/api/profile/save-state", savedDoc, map[string]string{persist.UserHeader: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"components":1}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/profile/get-state/alice", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("X-Request-ID"), "req_"))
	var doc editor.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Hot picks", doc.Components["c1"].Title)
}

func TestGetMissing(t *testing.T) {
	h := New(persist.NewMemoryStore(), Options{}).Router()
	rec := do(t, h, http.MethodGet, "/api/profile/get-state/ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSaveRejects(t *testing.T) {
	h := New(persist.NewMemoryStore(), Options{MaxBody: 64, Tokens: map[string]string{"tok": "bob"}}).Router()

	tests := []struct {
		name   string
		body   string
		header map[string]string
		want   int
	}{
		{"no user", savedDoc[:60], nil, http.StatusUnauthorized},
		{"unknown token", "{}", map[string]string{"Authorization": "Bearer nope"}, http.StatusUnauthorized},
		{"malformed", "{not json", map[string]string{"Authorization": "Bearer tok"}, http.StatusBadRequest},
		{"too large", savedDoc, map[string]string{"Authorization": "Bearer tok"}, http.StatusRequestEntityTooLarge},
		{"ok", "{}", map[string]string{"Authorization": "Bearer tok"}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, h, http.MethodPost, "/api/profile/save-state", tt.body, tt.header).Code)
		})
	}
}

type brokenStore struct{}

func (brokenStore) Load(context.Context, string) (*editor.Document, error) {
	return nil, errors.New("disk on fire")
}

func (brokenStore) Save(context.Context, string, *editor.Document) error {
	return errors.New("disk on fire")
}

func TestStoreFailures(t *testing.T) {
	h := New(brokenStore{}, Options{}).Router()
	assert.Equal(t, http.StatusInternalServerError, do(t, h, http.MethodGet, "/api/profile/get-state/x", "", nil).Code)
	assert.Equal(t, http.StatusInternalServerError,
		do(t, h, http.MethodPost, "/api/profile/save-state", "{}", map[string]string{persist.UserHeader: "x"}).Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := New(persist.NewMemoryStore(), Options{}).Router()
	rec := do(t, h, http.MethodGet, "/api/profile/get-state/alice", "", map[string]string{"X-Request-ID": "abc"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
}
