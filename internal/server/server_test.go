package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resume-tailor/resume-tailor-go/internal/config"
	"github.com/resume-tailor/resume-tailor-go/internal/generation"
	"github.com/resume-tailor/resume-tailor-go/internal/provider"
	"github.com/resume-tailor/resume-tailor-go/internal/provider/ollama"
	"github.com/resume-tailor/resume-tailor-go/internal/routing"
)

func testConfig() *config.Config {
	return &config.Config{
		Address:     ":0",
		Env:         "test",
		ServiceName: "resume-tailor",
		Ollama: config.OllamaConfig{
			DefaultModel: "phi3",
			Temperature:  0.7,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
		CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		Limits:  config.LimitsConfig{MaxUploadBytes: 1 << 20},
	}
}

// stubUpstream answers every generation with the given stream lines and
// records the last request body.
type stubUpstream struct {
	*httptest.Server
	mu   sync.Mutex
	last provider.GenerationRequest
}

func (s *stubUpstream) Last() provider.GenerationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func newStubUpstream(t *testing.T, lines ...string) *stubUpstream {
	t.Helper()
	s := &stubUpstream{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			fmt.Fprint(w, `{"models":[]}`)
			return
		}
		var req provider.GenerationRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		s.last = req
		s.mu.Unlock()
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestServer(cfg *config.Config, baseURL string) *Server {
	gin.SetMode(gin.TestMode)
	rt := routing.NewDefault(cfg.Ollama.DefaultModel, "ollama", ollama.New(baseURL, 0))
	return New(cfg, rt)
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestGenerateCoverLetterWithStubUpstream(t *testing.T) {
	up := newStubUpstream(t, `{"response":"X","done":true}`)
	srv := newTestServer(testConfig(), up.URL)

	w := do(t, srv, http.MethodPost, EndPointCoverLetter, `{"resume_text":"R","job_description":"J"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cover_letter":"X"}`, w.Body.String())
	assert.Equal(t, "phi3", up.Last().Model)
	assert.Equal(t, 0.7, up.Last().Temperature)
	assert.Contains(t, up.Last().Prompt, "Resume:\nR\n")
	assert.Contains(t, up.Last().Prompt, "Job Description:\nJ\n")
}

func TestGenerateCoverLetterModelOverride(t *testing.T) {
	up := newStubUpstream(t, `{"response":"Y","done":true}`)
	srv := newTestServer(testConfig(), up.URL)

	w := do(t, srv, http.MethodPost, EndPointCoverLetter, `{"model":"llama3"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "llama3", up.Last().Model)
}

func TestResizeResumeDefaultsToOnePage(t *testing.T) {
	up := newStubUpstream(t, `{"response":"Cut the hobbies "}`, `{"done":true}`)
	srv := newTestServer(testConfig(), up.URL)

	w := do(t, srv, http.MethodPost, EndPointResizeResume, `{"resume_text":"R"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"resume_resizing_guidance":"Cut the hobbies"}`, w.Body.String())
	assert.Contains(t, up.Last().Prompt, "The target page length is 1 page(s).")
}

func TestResizeResumeAcceptsStringPageCount(t *testing.T) {
	up := newStubUpstream(t, `{"response":"ok","done":true}`)
	srv := newTestServer(testConfig(), up.URL)

	w := do(t, srv, http.MethodPost, EndPointResizeResume, `{"resume_text":"R","target_page_length":"2"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, up.Last().Prompt, "The target page length is 2 page(s).")
}

func TestEmptyBodyUsesDefaults(t *testing.T) {
	up := newStubUpstream(t, `{"response":"X","done":true}`)
	srv := newTestServer(testConfig(), up.URL)

	w := do(t, srv, http.MethodPost, EndPointCoverLetter, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cover_letter":"X"}`, w.Body.String())
}

func TestInvalidJSON(t *testing.T) {
	up := newStubUpstream(t)
	srv := newTestServer(testConfig(), up.URL)

	w := do(t, srv, http.MethodPost, EndPointResizeResume, `{"resume_text":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"1001"`)
}

func TestUpstreamDownReturnsErrorText(t *testing.T) {
	up := newStubUpstream(t)
	url := up.URL
	up.Close()
	srv := newTestServer(testConfig(), url)

	w := do(t, srv, http.MethodPost, EndPointCoverLetter, `{"resume_text":"R"}`)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body["cover_letter"], generation.ConnectErrorPrefix), body["cover_letter"])
}

func TestMalformedStreamIsServerError(t *testing.T) {
	up := newStubUpstream(t, `{"response":"A"}`, `<html>`)
	srv := newTestServer(testConfig(), up.URL)

	w := do(t, srv, http.MethodPost, EndPointCoverLetter, `{}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":"1007","message":"internal server error"}`, w.Body.String())
}

func TestInputLimit(t *testing.T) {
	up := newStubUpstream(t, `{"response":"X","done":true}`)
	cfg := testConfig()
	cfg.Limits.MaxInputBytes = 4
	srv := newTestServer(cfg, up.URL)

	w := do(t, srv, http.MethodPost, EndPointCoverLetter, `{"resume_text":"too long"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestIndexHealthReadyModels(t *testing.T) {
	up := newStubUpstream(t)
	srv := newTestServer(testConfig(), up.URL)

	w := do(t, srv, http.MethodGet, EndPointIndex, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/generate_cover_letter")

	w = do(t, srv, http.MethodGet, EndPointHealth, "")
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, srv, http.MethodGet, EndPointReady, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, EndPointModels, "")
	assert.JSONEq(t, `{"models":[{"name":"echo","backend":"echo"},{"name":"phi3","backend":"ollama"}]}`, w.Body.String())

	w = do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadyWhenUpstreamDown(t *testing.T) {
	up := newStubUpstream(t)
	url := up.URL
	up.Close()
	srv := newTestServer(testConfig(), url)

	w := do(t, srv, http.MethodGet, EndPointReady, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"not_ready"`)
}

func upload(t *testing.T, srv *Server, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename)}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, EndPointExtractResume, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestExtractResumeText(t *testing.T) {
	srv := newTestServer(testConfig(), "http://127.0.0.1:1")

	w := upload(t, srv, "cv.txt", "text/plain", []byte("Jane Doe\nGo engineer\n"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"resume_text":"Jane Doe\nGo engineer"}`, w.Body.String())

	w = upload(t, srv, "cv.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestExtractResumeTextMissingFile(t *testing.T) {
	srv := newTestServer(testConfig(), "http://127.0.0.1:1")

	w := do(t, srv, http.MethodPost, EndPointExtractResume, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitedRoutes(t *testing.T) {
	up := newStubUpstream(t, `{"response":"X","done":true}`)
	cfg := testConfig()
	cfg.RateLimit.RequestsPerMinute = 1
	srv := newTestServer(cfg, up.URL)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, EndPointCoverLetter, `{}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, srv, http.MethodPost, EndPointCoverLetter, `{}`).Code)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, EndPointHealth, "").Code)
}
