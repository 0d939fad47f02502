// Package export renders drawings to PNG files for download.
package export

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/inamate/diagrammer/backend-go/internal/drawing"
	"github.com/inamate/diagrammer/backend-go/internal/engine"
	"github.com/inamate/diagrammer/backend-go/internal/scene"
)

const (
	maxUploadSize = 16 << 20 // 16MB
	maxDimension  = 8192
	defaultWidth  = 1600
	defaultHeight = 1200
)

type Handler struct {
	drawings *drawing.Service
	cfg      scene.Config
}

func NewHandler(drawings *drawing.Service, cfg scene.Config) *Handler {
	return &Handler{drawings: drawings, cfg: cfg}
}

// Mount registers the export routes on r.
func (h *Handler) Mount(r *mux.Router) {
	r.HandleFunc("/drawings/{drawingId}/export.png", h.ExportDrawing).Methods("GET")
	r.HandleFunc("/export/png", h.ExportDocument).Methods("POST")
}

// ExportDrawing renders the latest snapshot of a stored drawing.
func (h *Handler) ExportDrawing(w http.ResponseWriter, r *http.Request) {
	drawingID := mux.Vars(r)["drawingId"]
	snap, err := h.drawings.GetLatestSnapshot(r.Context(), drawingID)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, drawing.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, drawing.ErrInvalidID):
			status = http.StatusBadRequest
		default:
			slog.Error("export: get snapshot", "error", err)
		}
		http.Error(w, http.StatusText(status), status)
		return
	}
	h.render(w, r, string(snap.Document), drawingID)
}

// ExportDocument renders a document posted in the request body.
func (h *Handler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "request too large", http.StatusBadRequest)
		return
	}
	h.render(w, r, string(data), "drawing")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, doc, fallbackName string) {
	width, err := dimension(r.URL.Query().Get("width"), defaultWidth)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := dimension(r.URL.Query().Get("height"), defaultHeight)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e := engine.NewEngine(h.cfg)
	if err := e.LoadDocument(doc); err != nil {
		http.Error(w, "invalid document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	png, err := e.Thumbnail(width, height)
	if err != nil {
		slog.Error("export: render", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = fallbackName
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.png"`, sanitize(name)))
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

func dimension(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > maxDimension {
		return 0, fmt.Errorf("invalid dimension %q: must be 1-%d", raw, maxDimension)
	}
	return v, nil
}

// sanitize keeps a name safe for a Content-Disposition filename.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, name)
}
