package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Manushivuz/IISPPR-MainSite/internal/document/service"
	"github.com/Manushivuz/IISPPR-MainSite/internal/storage"
	"github.com/Manushivuz/IISPPR-MainSite/internal/upload"
)

func newRouter(t *testing.T, guard ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	local, err := storage.NewLocalStorage(t.TempDir(), "/uploads/assets")
	require.NoError(t, err)
	intake, err := upload.NewIntake(t.TempDir(), 1<<20)
	require.NoError(t, err)
	g := gin.New()
	RegisterDocumentRoutes(g.Group("/api"), service.NewMemoryService(local), intake, guard...)
	return g
}

func multipartBody(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("pdf", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func createDoc(t *testing.T, g *gin.Engine, docType, title string) string {
	t.Helper()
	body, ct := multipartBody(t, map[string]string{"type": docType, "title": title, "author_names": "Ada, Grace"}, "paper.pdf", samplePDF)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", ct)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Document struct {
			ID          string   `json:"_id"`
			AuthorNames []string `json:"author_names"`
			PDFURL      string   `json:"pdfUrl"`
		} `json:"document"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, []string{"Ada", "Grace"}, resp.Document.AuthorNames)
	require.True(t, strings.HasPrefix(resp.Document.PDFURL, "/uploads/assets/documents/"))
	return resp.Document.ID
}

func TestDocumentHandler_CRUD(t *testing.T) {
	g := newRouter(t)
	id := createDoc(t, g, "article", "Field notes")

	// get
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"?type=article", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// wrong type scope
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"?type=report", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	// list
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents?type=article", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Success   bool              `json:"success"`
		Documents []json.RawMessage `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.True(t, list.Success)
	require.Len(t, list.Documents, 1)

	// delete
	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/documents/"+id+"?type=article", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestDocumentHandler_ListRequiresType(t *testing.T) {
	g := newRouter(t)
	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_CreateRejectsNonPDF(t *testing.T) {
	g := newRouter(t)
	body, ct := multipartBody(t, map[string]string{"type": "report", "title": "x"}, "x.pdf", []byte("just text"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", ct)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	body, ct = multipartBody(t, map[string]string{"type": "report", "title": "x"}, "", nil)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", ct)
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_BatchDeletePartialFailure(t *testing.T) {
	g := newRouter(t)
	id := createDoc(t, g, "report", "Annual")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/documents?type=report", strings.NewReader(`{"ids":["`+id+`","not-an-id"]}`))
	req.Header.Set("Content-Type", "application/json")
	g.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Message string            `json:"message"`
		Deleted []string          `json:"deleted"`
		Failed  []service.Failure `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Deletion process completed", resp.Message)
	require.Equal(t, []string{id}, resp.Deleted)
	require.Len(t, resp.Failed, 1)
	require.Equal(t, "not-an-id", resp.Failed[0].ID)
	require.Equal(t, service.ReasonNotFound, resp.Failed[0].Reason)
}

func TestDocumentHandler_GuardProtectsMutations(t *testing.T) {
	deny := func(c *gin.Context) { c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "no"}) }
	g := newRouter(t, deny)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/documents/abc?type=report", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents?type=report", nil))
	require.Equal(t, http.StatusOK, w.Code)
}
