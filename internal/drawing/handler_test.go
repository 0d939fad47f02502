package drawing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/typeid"
)

func newTestRouter(t *testing.T) (*mux.Router, *Service) {
	t.Helper()
	svc := NewService(newMemoryStore(t))
	r := mux.NewRouter()
	NewHandler(svc).Mount(r)
	return r, svc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGet(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(r, "POST", "/drawings", `{"name":"network"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Drawing
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NoError(t, typeid.Validate(created.ID, typeid.PrefixDrawing))
	assert.Equal(t, "network", created.Name)

	rec = do(r, "GET", "/drawings/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, "GET", "/drawings/"+created.ID+"/snapshots/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc document.Document
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&doc))
	assert.Equal(t, document.CurrentVersion, doc.Version)
	assert.Equal(t, "network", doc.Name)
	assert.Empty(t, doc.Items)

	rec = do(r, "GET", "/drawings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Drawing
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 1)
}

func TestCreateValidation(t *testing.T) {
	r, _ := newTestRouter(t)
	assert.Equal(t, http.StatusBadRequest, do(r, "POST", "/drawings", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, "POST", "/drawings", `{"name":""}`).Code)
}

func TestErrorsMapToStatus(t *testing.T) {
	r, _ := newTestRouter(t)
	assert.Equal(t, http.StatusBadRequest, do(r, "GET", "/drawings/not-an-id", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, "GET", "/drawings/"+typeid.NewDrawingID(), "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, "DELETE", "/drawings/"+typeid.NewDrawingID(), "").Code)
}

func TestDelete(t *testing.T) {
	r, svc := newTestRouter(t)
	d, err := svc.Create(t.Context(), "gone")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, do(r, "DELETE", "/drawings/"+d.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, "GET", "/drawings/"+d.ID, "").Code)
}

func TestThumbnailAfterSave(t *testing.T) {
	r, svc := newTestRouter(t)
	d, err := svc.Create(t.Context(), "thumb")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, do(r, "GET", "/drawings/"+d.ID+"/thumbnail.png", "").Code)

	require.NoError(t, svc.SaveDocument(d.ID, `{"version":1,"items":[]}`, []byte("\x89PNG")))
	rec := do(r, "GET", "/drawings/"+d.ID+"/thumbnail.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	doc, err := svc.LoadDocument(d.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"items":[]}`, doc)
}
