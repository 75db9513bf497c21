package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-word-finder/config"
	"github.com/gcbaptista/go-word-finder/internal/engine"
	testutil "github.com/gcbaptista/go-word-finder/internal/testing"
	"github.com/gcbaptista/go-word-finder/model"
	"github.com/gcbaptista/go-word-finder/services"
)

// setupTestRouter allows searches below the system temp directory, where
// testutil.WriteTree places its trees, unless tweak says otherwise.
func setupTestRouter(t *testing.T, tweak func(*config.Settings)) (*gin.Engine, *engine.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	eng := testutil.CreateTestEngine(t, func(s *config.Settings) {
		s.Server.AllowedRoots = []string{os.TempDir()}
		if tweak != nil {
			tweak(s)
		}
	})
	router := gin.New()
	SetupRoutes(router, eng, nil)
	return router, eng
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheckHandler(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestFindHandler(t *testing.T) {
	root := testutil.WriteTree(t, testutil.SampleTree())
	router, _ := setupTestRouter(t, nil)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedCode   ErrorCode
		expectedPath   string
		expectFound    bool
	}{
		{
			name:           "found",
			requestBody:    services.FindQuery{Root: root, Words: []string{"gamma", "beta", "delta"}},
			expectedStatus: http.StatusOK,
			expectFound:    true,
			expectedPath:   "docs/guide.txt",
		},
		{
			name:           "not found",
			requestBody:    services.FindQuery{Root: root, Words: []string{"alpha", "omega"}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "missing root",
			requestBody:    services.FindQuery{Words: []string{"alpha"}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "word with whitespace",
			requestBody:    services.FindQuery{Root: root, Words: []string{"alpha beta"}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeValidationFailed,
		},
		{
			name:           "root does not exist",
			requestBody:    services.FindQuery{Root: filepath.Join(root, "missing"), Words: []string{"alpha"}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidPath,
		},
		{
			name:           "root is a file",
			requestBody:    services.FindQuery{Root: filepath.Join(root, "a.txt"), Words: []string{"alpha"}},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   ErrorCodeInvalidPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/finds", tt.requestBody)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedCode != "" {
				var apiErr APIError
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
				assert.Equal(t, tt.expectedCode, apiErr.Code)
				assert.NotEmpty(t, apiErr.RequestID)
				return
			}

			var result services.FindResult
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			assert.Equal(t, tt.expectFound, result.Found)
			assert.Equal(t, tt.expectedPath, result.RelPath)
			assert.NotEmpty(t, result.QueryID)
		})
	}
}

func TestFindAsyncAndJobHandlers(t *testing.T) {
	root := testutil.WriteTree(t, testutil.SampleTree())
	router, eng := setupTestRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/finds/async", services.FindQuery{Root: root, Words: []string{"omega"}})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var accepted struct {
		JobID string `json:"job_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.JobID)

	testutil.WaitForJobCompletion(t, eng, accepted.JobID, testutil.DefaultJobPollingOptions())

	w = doJSON(t, router, http.MethodGet, "/jobs/"+accepted.JobID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var job struct {
		Status model.JobStatus     `json:"status"`
		Result services.FindResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, model.JobStatusCompleted, job.Status)
	assert.True(t, job.Result.Found)
	assert.Equal(t, "z.txt", job.Result.RelPath)

	w = doJSON(t, router, http.MethodGet, "/jobs?status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	w = doJSON(t, router, http.MethodGet, "/jobs?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/jobs/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success_rate")

	// Completed jobs cannot be cancelled
	w = doJSON(t, router, http.MethodDelete, "/jobs/"+accepted.JobID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, "/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, router, http.MethodDelete, "/jobs/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFindAsyncHandler_InvalidRoot(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/finds/async", services.FindQuery{Root: filepath.Join(t.TempDir(), "missing")})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(ErrorCodeInvalidPath))
}

func TestTreeHandler(t *testing.T) {
	root := testutil.WriteTree(t, map[string]string{
		"a.txt":     "x",
		"sub/b.txt": "y",
	})
	router, _ := setupTestRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/tree", services.TreeQuery{Root: root, Separator: "."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Tree string `json:"tree"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, filepath.Base(root)+"\n.a.txt\n.sub\n..b.txt\n", body.Tree)

	req, err := http.NewRequest(http.MethodPost, "/tree", strings.NewReader(`{"root":"`+filepath.ToSlash(root)+`"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "  sub\n    b.txt\n")

	w = doJSON(t, router, http.MethodPost, "/tree", services.TreeQuery{Root: root, Separator: "\n"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyticsAndMetricsHandlers(t *testing.T) {
	root := testutil.WriteTree(t, testutil.SampleTree())
	router, _ := setupTestRouter(t, nil)

	w := doJSON(t, router, http.MethodPost, "/finds", services.FindQuery{Root: root, Words: []string{"alpha"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var dashboard model.AnalyticsDashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	assert.Equal(t, 1, dashboard.TotalFinds)

	w = doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `wordfinder_finds_total{mode="sync",outcome="found"} 1`)
	assert.Contains(t, body, `http_requests_total{method="POST",path="/finds",status="200"} 1`)
}

func TestRequestSizeLimit(t *testing.T) {
	root := testutil.WriteTree(t, testutil.SampleTree())
	router, _ := setupTestRouter(t, func(s *config.Settings) {
		s.Server.RequestSizeLimit = 64
	})

	words := make([]string, 50)
	for i := range words {
		words[i] = "word"
	}
	w := doJSON(t, router, http.MethodPost, "/finds", services.FindQuery{Root: root, Words: words})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func doWithOrigin(router *gin.Engine, method, path, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Origin", origin)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		origins        []string
		method         string
		origin         string
		expectedStatus int
		expectedAllow  string
	}{
		{"no origins configured sends no headers", nil, http.MethodGet, "https://evil.example", http.StatusOK, ""},
		{"no origins configured has no preflight", nil, http.MethodOptions, "https://evil.example", http.StatusNotFound, ""},
		{"listed origin is echoed", []string{"https://ui.example"}, http.MethodGet, "https://ui.example", http.StatusOK, "https://ui.example"},
		{"listed origin preflight", []string{"https://ui.example"}, http.MethodOptions, "https://ui.example", http.StatusNoContent, "https://ui.example"},
		{"unlisted origin is refused", []string{"https://ui.example"}, http.MethodGet, "https://evil.example", http.StatusOK, ""},
		{"wildcard allows any origin", []string{"*"}, http.MethodOptions, "https://any.example", http.StatusNoContent, "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupTestRouter(t, func(s *config.Settings) {
				s.Server.CORSOrigins = tt.origins
			})

			w := doWithOrigin(router, tt.method, "/health", tt.origin)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedAllow, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestRootsOutsideAllowListAreRejected(t *testing.T) {
	allowed := testutil.WriteTree(t, testutil.SampleTree())
	outside := testutil.WriteTree(t, map[string]string{"secret.txt": "root:x:0:0\n"})
	router, _ := setupTestRouter(t, func(s *config.Settings) {
		s.Server.AllowedRoots = []string{allowed}
	})

	tests := []struct {
		name string
		path string
		body interface{}
	}{
		{"find outside", "/finds", services.FindQuery{Root: outside, Words: []string{"root:x:0:0"}}},
		{"async find outside", "/finds/async", services.FindQuery{Root: outside, Words: []string{"root:x:0:0"}}},
		{"tree outside", "/tree", services.TreeQuery{Root: outside}},
		{"parent of allowed root", "/tree", services.TreeQuery{Root: filepath.Dir(allowed)}},
		{"dot-dot escape", "/tree", services.TreeQuery{Root: filepath.Join(allowed, "..", filepath.Base(outside))}},
		{"filesystem root", "/tree", services.TreeQuery{Root: string(os.PathSeparator)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var apiErr APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
			assert.Equal(t, ErrorCodeInvalidPath, apiErr.Code)
			assert.Contains(t, apiErr.Message, "outside the allowed roots")
			assert.NotContains(t, w.Body.String(), "secret.txt")
		})
	}

	t.Run("subdirectory of allowed root", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/tree", services.TreeQuery{Root: filepath.Join(allowed, "docs")})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSymlinkOutOfAllowedRootIsRejected(t *testing.T) {
	allowed := t.TempDir()
	outside := testutil.WriteTree(t, map[string]string{"secret.txt": "hidden\n"})
	link := filepath.Join(allowed, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	router, _ := setupTestRouter(t, func(s *config.Settings) {
		s.Server.AllowedRoots = []string{allowed}
	})

	w := doJSON(t, router, http.MethodPost, "/finds", services.FindQuery{Root: link, Words: []string{"hidden"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "secret.txt")
}

func TestEmptyAllowListRejectsEveryRoot(t *testing.T) {
	root := testutil.WriteTree(t, testutil.SampleTree())
	router, _ := setupTestRouter(t, func(s *config.Settings) {
		s.Server.AllowedRoots = nil
	})

	w := doJSON(t, router, http.MethodPost, "/finds", services.FindQuery{Root: root, Words: []string{"alpha"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	router, _ := setupTestRouter(t, nil)

	req, err := http.NewRequest(http.MethodGet, "/jobs/missing", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, "req-123", apiErr.RequestID)
	assert.WithinDuration(t, time.Now(), apiErr.Timestamp, time.Minute)
}
