package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dconn.dev/projectgrid/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL + "/api/")
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("/api")
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/projects", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"id":"1","title":"Snake","description":"pygame","type":"python","uploadDate":"2024-03-01T10:00:00Z","filename":"snake.zip"},
			{"id":2,"title":"Clip","description":"short","type":"video","uploadDate":"2024-03-02T10:00:00Z"}
		]`)
	})

	projects, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "1", projects[0].ID)
	assert.Equal(t, models.TypePython, projects[0].Type)
	assert.Equal(t, "snake.zip", projects[0].FileRef)
	assert.Equal(t, "2", projects[1].ID)
}

func TestList_NullBodyIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `null`)
	})

	projects, err := c.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestList_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"db down"}`)
	})

	_, err := c.List(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "db down", ServerMessage(err))
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestList_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	_, err = c.List(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestCreate(t *testing.T) {
	var got struct {
		title, description, kind, filename, contentType string
		content                                         []byte
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		got.title = r.FormValue("title")
		got.description = r.FormValue("description")
		got.kind = r.FormValue("type")
		f, hdr, err := r.FormFile("projectFile")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		got.filename = hdr.Filename
		got.contentType = hdr.Header.Get("Content-Type")
		got.content, _ = io.ReadAll(f)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Proyecto subido"})
	})

	msg, err := c.Create(context.Background(), models.UploadForm{
		Title:       "Snake",
		Description: "pygame snake",
		Type:        "python",
		FileName:    "snake.zip",
		File:        bytes.NewReader([]byte("PK\x03\x04 zip body")),
	})
	require.NoError(t, err)

	assert.Equal(t, "Proyecto subido", msg)
	assert.Equal(t, "Snake", got.title)
	assert.Equal(t, "pygame snake", got.description)
	assert.Equal(t, "python", got.kind)
	assert.Equal(t, "snake.zip", got.filename)
	assert.Equal(t, "application/zip", got.contentType)
	assert.Equal(t, "PK\x03\x04 zip body", string(got.content))
}

func TestCreate_ServerRejects(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"Tipo de archivo no permitido"}`)
	})

	_, err := c.Create(context.Background(), models.UploadForm{
		Title: "x", Description: "y", Type: "other", FileName: "a.exe",
		File: strings.NewReader("MZ"),
	})
	require.Error(t, err)
	assert.Equal(t, "Tipo de archivo no permitido", ServerMessage(err))
}

func TestDownloadURL(t *testing.T) {
	c, err := New("http://localhost:5000/api")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api/projects/42/download", c.DownloadURL("42"))
	assert.Equal(t, "http://localhost:5000/api/projects/a%2Fb/download", c.DownloadURL("a/b"))
}

func TestDownload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects/7/download", r.URL.Path)
		w.Header().Set("Content-Disposition", `attachment; filename="song.mp3"`)
		io.WriteString(w, "ID3 data")
	})

	var buf bytes.Buffer
	name, n, err := c.Download(context.Background(), "7", &buf)
	require.NoError(t, err)
	assert.Equal(t, "song.mp3", name)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "ID3 data", buf.String())
}

func TestDelete(t *testing.T) {
	var method, path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "9"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/api/projects/9", path)
}

func TestDelete_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := c.Delete(context.Background(), "9")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Empty(t, ServerMessage(err))
}
