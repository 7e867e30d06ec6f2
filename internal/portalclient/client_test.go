package portalclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n%%EOF\n")

func TestTailorStoreModeFollowsFileID(t *testing.T) {
	var tailorAuth, downloadAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tailor-resume":
			tailorAuth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			_, _ = io.WriteString(w, `{"fileId":"Tailored_Resume_Acme.pdf","filename":"Tailored_Resume_Acme.pdf"}`)
		case "/api/download-resume":
			downloadAuth = r.Header.Get("Authorization")
			if r.URL.Query().Get("fileId") != "Tailored_Resume_Acme.pdf" {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="Tailored_Resume_Acme.pdf"`)
			_, _ = w.Write(samplePDF)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := New(srv.URL, StaticToken("tok"))
	require.NoError(t, err)

	doc, err := c.Tailor(context.Background(), 42, 7, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Tailored_Resume_Acme.pdf", doc.Filename)
	assert.Equal(t, samplePDF, doc.Data)
	assert.Equal(t, "Bearer tok", tailorAuth)
	assert.Equal(t, "Bearer tok", downloadAuth)
	assert.Equal(t, float64(42), gotBody["resumeId"])
	assert.Equal(t, "Acme", gotBody["jobCompany"])
}

func TestTailorStreamMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="x.pdf"`)
		_, _ = w.Write(samplePDF)
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	doc, err := c.Tailor(context.Background(), 1, 2, "")
	require.NoError(t, err)
	assert.Equal(t, "x.pdf", doc.Filename)
	assert.Equal(t, samplePDF, doc.Data)
}

func TestTailorSurfacesPortalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":{"code":"backend_error","message":"model unavailable"}}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, StaticToken("tok"))
	require.NoError(t, err)

	_, err = c.Tailor(context.Background(), 1, 2, "")
	var portalErr *Error
	require.True(t, errors.As(err, &portalErr))
	assert.Equal(t, http.StatusBadGateway, portalErr.Status)
	assert.Equal(t, "backend_error", portalErr.Code)
	assert.Equal(t, "model unavailable", portalErr.Message)
}

func TestAnonymousClientSendsNoAuthorization(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := New(srv.URL, StaticToken("   "))
	require.NoError(t, err)

	_, err = c.Tailor(context.Background(), 1, 2, "")
	var portalErr *Error
	require.True(t, errors.As(err, &portalErr))
	assert.Equal(t, http.StatusUnauthorized, portalErr.Status)
	assert.Equal(t, "Unauthorized", portalErr.Message)
	assert.Empty(t, gotAuth)
}

func TestNewRejectsInvalidURL(t *testing.T) {
	_, err := New("not a url", nil)
	assert.Error(t, err)
}

func TestTailorStreamModeWithoutDispositionUsesDefaultName(t *testing.T) {
	for _, disposition := range []string{"", "attachment", "inline", "not a header;;"} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			if disposition != "" {
				w.Header().Set("Content-Disposition", disposition)
			}
			_, _ = w.Write(samplePDF)
		}))

		c, err := New(srv.URL, nil)
		require.NoError(t, err)
		doc, err := c.Tailor(context.Background(), 1, 2, "")
		srv.Close()

		require.NoError(t, err, disposition)
		assert.Equal(t, DefaultFilename, doc.Filename, disposition)
		assert.Equal(t, samplePDF, doc.Data)
	}
}

func TestDownloadSanitizesDispositionName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		if r.URL.Query().Get("fileId") == "with-header.pdf" {
			w.Header().Set("Content-Disposition", `attachment; filename="../Acme Corp.pdf"`)
		}
		_, _ = w.Write(samplePDF)
	}))
	defer srv.Close()

	c, err := New(srv.URL, nil)
	require.NoError(t, err)

	doc, err := c.Download(context.Background(), "with-header.pdf")
	require.NoError(t, err)
	assert.Equal(t, ".._Acme_Corp.pdf", doc.Filename)

	doc, err = c.Download(context.Background(), "Tailored_Resume_Acme.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Tailored_Resume_Acme.pdf", doc.Filename)
}
