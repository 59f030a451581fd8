package web

import (
	"bytes"
	"embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/KaramelBytes/worksetmap/internal/dataset"
	"github.com/KaramelBytes/worksetmap/internal/heatmap"
	"github.com/KaramelBytes/worksetmap/internal/render"
	"github.com/google/uuid"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// UploadIDHeader carries the ID logged for each upload.
const UploadIDHeader = "X-Upload-ID"

// Handlers serves the upload page and API.
type Handlers struct {
	opt       dataset.Options
	renderer  *render.Renderer
	maxUpload int64
	logger    *slog.Logger
}

// NewHandlers creates handlers; maxUploadMB <= 0 means 32 MiB.
func NewHandlers(opt dataset.Options, r *render.Renderer, maxUploadMB int, logger *slog.Logger) *Handlers {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	if r == nil {
		r = render.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{opt: opt, renderer: r, maxUpload: int64(maxUploadMB) << 20, logger: logger}
}

type pageData struct {
	Error    string
	Kind     string
	Name     string
	Records  int
	Worksets int
	Starred  int
	Models   int
	Image    template.URL
}

// Index renders the empty upload form.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	h.page(w, http.StatusOK, pageData{})
}

// Upload processes the posted file and renders the page with the heatmap inline.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	res, png, status, err := h.process(w, r)
	if err != nil {
		h.page(w, status, pageData{Error: err.Error(), Kind: heatmap.Kind(err)})
		return
	}
	rows, cols := res.Matrix.Shape()
	h.page(w, http.StatusOK, pageData{
		Name:     res.Name,
		Records:  res.Records,
		Worksets: rows,
		Starred:  len(res.Matrix.Starred()),
		Models:   cols,
		Image:    template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
	})
}

// API returns the heatmap PNG, or the matrix as JSON with ?format=json.
func (h *Handlers) API(w http.ResponseWriter, r *http.Request) {
	res, png, status, err := h.process(w, r)
	if err != nil {
		writeJSON(w, status, map[string]string{"error": err.Error(), "kind": heatmap.Kind(err)})
		return
	}
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, res)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// process runs one upload through load, build and render. It returns the HTTP
// status to use when err is non-nil.
func (h *Handlers) process(w http.ResponseWriter, r *http.Request) (*dataset.Result, []byte, int, error) {
	id := uuid.New().String()
	w.Header().Set(UploadIDHeader, id)
	log := h.logger.With("upload_id", id)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			log.Warn("upload too large", "limit", h.maxUpload)
			return nil, nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds %d MiB limit", h.maxUpload>>20)
		}
		return nil, nil, http.StatusBadRequest, errors.New("file required")
	}
	defer file.Close()

	res, err := dataset.Process(header.Filename, file, h.opt)
	if err != nil {
		kind := heatmap.Kind(err)
		log.Info("upload rejected", "file", header.Filename, "kind", kind, "error", err)
		switch kind {
		case "":
			return nil, nil, http.StatusInternalServerError, err
		case heatmap.KindTooLarge:
			return nil, nil, http.StatusRequestEntityTooLarge, err
		}
		return nil, nil, http.StatusBadRequest, err
	}
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, res.Matrix, res.Canvas); err != nil {
		log.Error("render failed", "file", header.Filename, "error", err)
		return nil, nil, http.StatusInternalServerError, fmt.Errorf("render heatmap: %w", err)
	}
	rows, cols := res.Matrix.Shape()
	log.Debug("rendered heatmap", "file", header.Filename, "records", res.Records,
		"rows", rows, "cols", cols, "width", res.Canvas.Width, "height", res.Canvas.Height)
	return res, buf.Bytes(), http.StatusOK, nil
}

func (h *Handlers) page(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		h.logger.Error("render page", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
