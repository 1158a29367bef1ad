package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Manushivuz/IISPPR-MainSite/internal/ads"
	"github.com/Manushivuz/IISPPR-MainSite/internal/pageads"
	"github.com/Manushivuz/IISPPR-MainSite/internal/storage"
	"github.com/Manushivuz/IISPPR-MainSite/internal/testimonials"
	"github.com/Manushivuz/IISPPR-MainSite/internal/upload"
)

type contentEnv struct {
	engine   *gin.Engine
	adRepo   *ads.MemoryRepository
	tmRepo   *testimonials.MemoryRepository
	pageRepo *pageads.MemoryRepository
}

func newContentEnv(t *testing.T, guard ...gin.HandlerFunc) *contentEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	local, err := storage.NewLocalStorage(t.TempDir(), "/uploads/assets")
	require.NoError(t, err)
	intake, err := upload.NewIntake(t.TempDir(), 1<<20)
	require.NoError(t, err)

	env := &contentEnv{
		adRepo:   ads.NewMemoryRepository(),
		tmRepo:   testimonials.NewMemoryRepository(),
		pageRepo: pageads.NewMemoryRepository(),
	}
	adSvc := ads.NewService(env.adRepo, local)
	adSvc.SetUnlinker(env.pageRepo)
	pageSvc := pageads.NewService(env.pageRepo, adSvc)

	g := gin.New()
	api := g.Group("/api")
	NewAdsHandler(adSvc, pageSvc, intake).Register(api, guard...)
	NewPageAdsHandler(pageSvc).Register(api, guard...)
	NewTestimonialsHandler(testimonials.NewService(env.tmRepo, local), intake).Register(api, guard...)
	env.engine = g
	return env
}

func (e *contentEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// formRequest builds a multipart request; an empty filename sends no file part.
func formRequest(t *testing.T, method, path string, fields map[string]string, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var samplePNG = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
