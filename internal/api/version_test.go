package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionHandler(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		gitCommit   string
		buildDate   string
		wantVersion string
		wantCommit  string
		wantDate    string
	}{
		{"with all values", "0.1.0", "abc123def456", "2026-01-28T12:00:00Z", "0.1.0", "abc123def456", "2026-01-28T12:00:00Z"},
		{"with defaults", "", "", "", "dev", vcsRevision(), "unknown"},
		{"unknown commit uses vcs", "1.0.0", "unknown", "2026-01-28T12:00:00Z", "1.0.0", vcsRevision(), "2026-01-28T12:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			VersionHandler(tt.version, tt.gitCommit, tt.buildDate).
				ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var resp versionResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, serviceName, resp.Service)
			assert.Equal(t, tt.wantVersion, resp.Version)
			assert.Equal(t, tt.wantCommit, resp.GitCommit)
			assert.Equal(t, tt.wantDate, resp.BuildDate)
			assert.Equal(t, runtime.Version(), resp.GoVersion)
		})
	}
}

func TestVersionHandler_Head(t *testing.T) {
	w := httptest.NewRecorder()
	VersionHandler("0.1.0", "abc123", "").ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/version", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, w.Body.Len())
}

func TestVersionHandler_MethodNotAllowed(t *testing.T) {
	handler := VersionHandler("0.1.0", "abc123", "2026-01-28T12:00:00Z")

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(method, "/version", nil))

			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
			assert.Equal(t, "GET, HEAD", w.Header().Get("Allow"))
		})
	}
}
