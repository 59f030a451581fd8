package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KaramelBytes/worksetmap/internal/dataset"
	"github.com/KaramelBytes/worksetmap/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Revit Model Name,Workset Name\nM1,A\nM1,A\nM2,B\nM1,*X\n"

type testWriter struct{ t testing.TB }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

func newTestServer(t *testing.T, maxMB int) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewServer(Config{
		Addr:        ":0",
		MaxUploadMB: maxMB,
		Options:     dataset.DefaultOptions(),
		Style:       render.DefaultStyle(),
		Logger:      logger,
	})
	return s.Router()
}

func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestIndex(t *testing.T) {
	h := newTestServer(t, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Worksets and Revit Models Heatmap</title>")
	assert.Contains(t, body, `type="file"`)
	assert.Contains(t, body, `accept=".csv,.tsv,.xlsx"`)
	assert.NotContains(t, body, "<img")
}

func TestUploadRendersInlineImage(t *testing.T) {
	h := newTestServer(t, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/", "worksets.csv", sampleCSV))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `src="data:image/png;base64,`)
	assert.Contains(t, body, "worksets.csv: 4 rows, 3 worksets (1 starred), 2 models")
	assert.NotEmpty(t, rec.Header().Get(UploadIDHeader))
}

func TestUploadShowsErrorKind(t *testing.T) {
	h := newTestServer(t, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/", "bad.csv", "Model,Workset\nM1,A\n"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-kind="missing_column"`)
	assert.Contains(t, body, "Revit Model Name")
}

func TestAPI_PNG(t *testing.T) {
	h := newTestServer(t, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/api/heatmap", "worksets.csv", sampleCSV))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err := png.Decode(rec.Body)
	assert.NoError(t, err)
}

func TestAPI_JSON(t *testing.T) {
	h := newTestServer(t, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/api/heatmap?format=json", "worksets.csv", sampleCSV))

	require.Equal(t, http.StatusOK, rec.Code)
	var got dataset.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []string{"A", "B", "*X"}, got.Matrix.Rows)
	assert.Equal(t, []string{"M1", "M2"}, got.Matrix.Cols)
	assert.Equal(t, [][]int{{2, 0}, {0, 1}, {1, 0}}, got.Matrix.Counts)
	assert.InDelta(t, 2.8, got.Canvas.Width, 1e-9)
}

func TestAPI_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		kind     string
	}{
		{"no file", "", "", http.StatusBadRequest, ""},
		{"missing column", "a.csv", "Revit Model Name\nM1\n", http.StatusBadRequest, "missing_column"},
		{"empty", "a.csv", "Revit Model Name,Workset Name\n", http.StatusBadRequest, "empty"},
		{"malformed", "a.csv", "Revit Model Name,Workset Name\n\"M1,A\n", http.StatusBadRequest, "malformed"},
	}
	h := newTestServer(t, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, uploadRequest(t, "/api/heatmap", tt.filename, tt.content))

			assert.Equal(t, tt.status, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body["kind"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAPI_TooLarge(t *testing.T) {
	h := newTestServer(t, 1)
	big := "Revit Model Name,Workset Name\n" + strings.Repeat("Model,Workset\n", 100_000)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/api/heatmap", "big.csv", big))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestAPI_TooManyCells(t *testing.T) {
	opt := dataset.DefaultOptions()
	opt.MaxCells = 4
	s := NewServer(Config{
		Options: opt,
		Style:   render.DefaultStyle(),
		Logger:  slog.New(slog.NewTextHandler(testWriter{t}, nil)),
	})
	h := s.Router()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/api/heatmap", "worksets.csv", sampleCSV))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "too_large", body["kind"])
	assert.Contains(t, body["error"], "3 worksets x 2 models exceeds the 4 cell limit")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/", "worksets.csv", sampleCSV))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-kind="too_large"`)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, 0)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
