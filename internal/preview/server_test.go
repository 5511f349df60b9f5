package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsmith/internal/config"
	"git.home.luguber.info/inful/blogsmith/internal/site"
)

func previewFixture(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	contentDir := filepath.Join(root, "content")
	require.NoError(t, os.MkdirAll(contentDir, 0o750))
	cfg := &config.Config{
		BaseURL:      "https://blog.example.org/",
		LanguageCode: "en-us",
		Title:        "Example Blog",
		Outputs:      []config.OutputFormat{config.OutputHTML},
		Pagination:   config.PaginationConfig{PageSize: 10},
		Content:      config.ContentConfig{Directory: contentDir},
	}
	srv, err := NewServer(cfg, filepath.Join(root, "public"), Options{Port: 0})
	require.NoError(t, err)
	return srv
}

func TestHealthEndpoint(t *testing.T) {
	srv := previewFixture(t)

	// Before any build succeeded, a recorded failure means not ready.
	srv.status.setError(os.ErrNotExist)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	srv.status.setSuccess(&site.BuildReport{BuildID: "b-1", End: time.Now()})
	rec = httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusEndpointReportsLastBuild(t *testing.T) {
	srv := previewFixture(t)
	srv.status.setSuccess(&site.BuildReport{BuildID: "b-42", End: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)})
	srv.status.setError(os.ErrPermission)

	rec := httptest.NewRecorder()
	srv.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "b-42", payload["last_build_id"])
	require.Equal(t, float64(1), payload["good_builds"])
	require.Contains(t, payload["last_error"], "permission")
}

func TestShouldIgnoreEvent(t *testing.T) {
	ignored := []string{
		"content/.hello.md.swp",
		"content/posts/draft.md~",
		"content/#scratch#",
		"content/.git/index",
		"content/Thumbs.db",
	}
	for _, p := range ignored {
		require.True(t, shouldIgnoreEvent(p), "expected %s to be ignored", p)
	}
	require.False(t, shouldIgnoreEvent("content/posts/hello.md"))
}
