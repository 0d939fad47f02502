package export

import (
	"bytes"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/diagrammer/backend-go/internal/drawing"
	"github.com/inamate/diagrammer/backend-go/internal/engine"
	"github.com/inamate/diagrammer/backend-go/internal/scene"
)

func newTestRouter(t *testing.T) (*mux.Router, *drawing.Service) {
	t.Helper()
	store, err := drawing.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	svc := drawing.NewService(store)
	r := mux.NewRouter()
	NewHandler(svc, scene.DefaultConfig()).Mount(r)
	return r, svc
}

func TestExportDrawing(t *testing.T) {
	r, svc := newTestRouter(t)
	d, err := svc.Create(t.Context(), "sample")
	require.NoError(t, err)

	e := engine.NewEngine(scene.DefaultConfig())
	require.NoError(t, e.LoadSampleDocument())
	require.NoError(t, svc.SaveDocument(d.ID, e.GetDocument(), nil))

	req := httptest.NewRequest("GET", "/drawings/"+d.ID+"/export.png?width=200&height=100&name=my%20chart", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="my-chart.png"`, rec.Header().Get("Content-Disposition"))
	img, err := png.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 100, img.Bounds().Dy())
}

func TestExportPostedDocument(t *testing.T) {
	r, _ := newTestRouter(t)
	body := `{"version":1,"items":[]}`

	req := httptest.NewRequest("POST", "/export/png?width=64&height=48", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestExportErrors(t *testing.T) {
	r, _ := newTestRouter(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad id", "GET", "/drawings/nope/export.png", "", http.StatusBadRequest},
		{"bad width", "POST", "/export/png?width=0", `{"version":1,"items":[]}`, http.StatusBadRequest},
		{"huge height", "POST", "/export/png?height=99999", `{"version":1,"items":[]}`, http.StatusBadRequest},
		{"bad document", "POST", "/export/png", `{"version":7}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
