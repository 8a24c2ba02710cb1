package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/raw2dng/internal/prefs"
)

const testToken = "test-token-12345"

func setupHandler(t *testing.T, token string) (http.Handler, *prefs.Store) {
	t.Helper()
	store, err := prefs.Open(filepath.Join(t.TempDir(), prefs.FileName))
	require.NoError(t, err)
	return NewHandler(Deps{Prefs: store, Token: token}), store
}

func authReq(method, url, body, token string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, url, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Error.Type
}

func TestHealth_NoAuth(t *testing.T) {
	h, _ := setupHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestPreferences_RequiresToken(t *testing.T) {
	h, _ := setupHandler(t, testToken)

	for _, token := range []string{"", "wrong"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, authReq(http.MethodGet, "/preferences", "", token))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "authentication_error", decodeError(t, rr))
	}
}

func TestPreferences_EmptyTokenDisablesAuth(t *testing.T) {
	h, _ := setupHandler(t, "")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/preferences", "", ""))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestListPreferences(t *testing.T) {
	h, _ := setupHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/preferences", "", testToken))
	require.Equal(t, http.StatusOK, rr.Code)

	var got map[string]map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, prefs.Defaults(), got)
}

func TestGetPreference(t *testing.T) {
	h, _ := setupHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/preferences/Settings/DNG", "", testToken))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"section":"Settings","key":"DNG","value":"True"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodGet, "/preferences/Settings/dng", "", testToken))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSetPreference_RoundTrip(t *testing.T) {
	h, store := setupHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPut, "/preferences/Settings/TIFF", `{"value":"yes"}`, testToken))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"section":"Settings","key":"TIFF","value":"True"}`, rr.Body.String())

	tiff, err := store.TIFF()
	require.NoError(t, err)
	assert.True(t, tiff)

	reopened, err := prefs.Open(store.Path())
	require.NoError(t, err)
	tiff, err = reopened.TIFF()
	require.NoError(t, err)
	assert.True(t, tiff, "written through to disk")
}

func TestSetPreference_Language(t *testing.T) {
	h, store := setupHandler(t, testToken)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, authReq(http.MethodPut, "/preferences/General/Language", `{"value":"ru"}`, testToken))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ru", store.Language())
}

func TestSetPreference_Errors(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		body     string
		wantCode int
		wantType string
	}{
		{"bad json", "/preferences/Settings/DNG", `{`, http.StatusBadRequest, "invalid_request_error"},
		{"missing value", "/preferences/Settings/DNG", `{}`, http.StatusBadRequest, "invalid_request_error"},
		{"bad bool", "/preferences/Settings/DNG", `{"value":"maybe"}`, http.StatusBadRequest, "invalid_request_error"},
		{"unknown key", "/preferences/Settings/Sharpen", `{"value":"True"}`, http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupHandler(t, testToken)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, authReq(http.MethodPut, tt.url, tt.body, testToken))
			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantType, decodeError(t, rr))
		})
	}
}
