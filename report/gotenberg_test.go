package report

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderHTMLPostsDocumentAndLayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		file, header, err := r.FormFile("files")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		assert.Equal(t, "index.html", header.Filename)
		html, _ := io.ReadAll(file)
		assert.Equal(t, "<html>hi</html>", string(html))
		assert.Equal(t, "8.500", r.FormValue("paperWidth"))
		assert.Equal(t, "11.000", r.FormValue("paperHeight"))
		assert.Equal(t, "0.500", r.FormValue("marginLeft"))
		assert.Equal(t, "true", r.FormValue("printBackground"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	pdf, err := NewClient(srv.URL+"/").RenderHTML(context.Background(), "<html>hi</html>", PageOptions{WidthMM: 215.9, HeightMM: 279.4, MarginMM: 12.7})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
}

func TestRenderHTMLReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RenderHTML(context.Background(), "<html></html>", A4)
	require.ErrorIs(t, err, ErrConversion)
	assert.Contains(t, err.Error(), "chromium crashed")
}

func TestPageOptionsDefaultToA4(t *testing.T) {
	fields := PageOptions{}.fields()
	assert.Equal(t, "8.268", fields["paperWidth"])
	assert.Equal(t, "11.693", fields["paperHeight"])
	assert.Equal(t, "0.000", fields["marginTop"])
}

func TestHandlerPingAndSample(t *testing.T) {
	gotenberg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			_, _ = w.Write([]byte(`{"status":"up"}`))
			return
		}
		_, _ = w.Write([]byte("%PDF-sample"))
	}))
	defer gotenberg.Close()

	sample := func(context.Context) (string, PageOptions, error) { return "<html></html>", A4, nil }
	router := chi.NewRouter()
	NewHandler(NewClient(gotenberg.URL), sample, slog.New(slog.NewTextHandler(io.Discard, nil))).MountRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sample", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-sample", rec.Body.String())
}

func TestHandlerPingUnavailable(t *testing.T) {
	gotenberg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer gotenberg.Close()

	router := chi.NewRouter()
	NewHandler(NewClient(gotenberg.URL), nil, slog.New(slog.NewTextHandler(io.Discard, nil))).MountRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
