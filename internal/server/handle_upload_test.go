package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/eastertrail/internal/upload"
)

func multipartRequest(t *testing.T, path string, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestUploadBackground(t *testing.T) {
	e := newTestEnv(t, "")
	png := []byte("\x89PNG fake")

	rec := e.serve(multipartRequest(t, "/api/upload/background", map[string]string{"day": "2"}, "scene.png", png))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	saved := decode[upload.Saved](t, rec)
	if saved.Filename != "background-day-2.png" || saved.URL != "/uploads/background-day-2.png" {
		t.Fatalf("saved = %+v", saved)
	}

	// The stored file is served back under /uploads.
	got := e.do(t, http.MethodGet, saved.URL, nil)
	if got.Code != http.StatusOK {
		t.Fatalf("serve status = %d", got.Code)
	}
	if body, _ := io.ReadAll(got.Body); !bytes.Equal(body, png) {
		t.Errorf("served body = %q", body)
	}

	list := decode[[]upload.Background](t, e.do(t, http.MethodGet, "/api/uploads/backgrounds", nil))
	if len(list) != 1 || list[0].Day == nil || *list[0].Day != 2 {
		t.Fatalf("backgrounds = %+v", list)
	}
}

func TestUploadItem(t *testing.T) {
	e := newTestEnv(t, "")

	rec := e.serve(multipartRequest(t, "/api/upload/item", map[string]string{"day": "1", "index": "3"}, "egg.webp", []byte("RIFF")))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body: %s", rec.Code, rec.Body.String())
	}
	saved := decode[upload.Saved](t, rec)
	if saved.URL != "/uploads/items/day-1-item-3.webp" {
		t.Fatalf("url = %q", saved.URL)
	}

	list := decode[[]upload.Image](t, e.do(t, http.MethodGet, "/api/uploads/items", nil))
	defaults := len(e.deps.Content.ItemImages)
	if len(list) != defaults+1 || list[defaults].URL != saved.URL {
		t.Fatalf("items = %+v", list)
	}
}

func TestUploadErrors(t *testing.T) {
	e := newTestEnv(t, "")

	tests := []struct {
		name     string
		path     string
		fields   map[string]string
		filename string
		want     int
	}{
		{"missing file", "/api/upload/background", nil, "", http.StatusBadRequest},
		{"traversal day", "/api/upload/background", map[string]string{"day": "../x"}, "a.png", http.StatusBadRequest},
		{"traversal index", "/api/upload/item", map[string]string{"index": "1/../../x"}, "a.png", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.serve(multipartRequest(t, tt.path, tt.fields, tt.filename, []byte("x")))
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	if rec := e.do(t, http.MethodGet, "/uploads/", nil); rec.Code != http.StatusNotFound {
		t.Errorf("directory listing status = %d", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/uploads/missing.png", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing file status = %d", rec.Code)
	}
}

func TestUploadTooLarge(t *testing.T) {
	e := newTestEnv(t, "")

	big := bytes.Repeat([]byte{0}, upload.MaxBytes+multipartMemory+1)
	rec := e.serve(multipartRequest(t, "/api/upload/background", map[string]string{"day": "1"}, "huge.png", big))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusRequestEntityTooLarge, rec.Body.String())
	}

	list := decode[[]upload.Background](t, e.do(t, http.MethodGet, "/api/uploads/backgrounds", nil))
	if len(list) != 0 {
		t.Fatalf("backgrounds = %+v", list)
	}
}

func TestUploadRequiresAdmin(t *testing.T) {
	e := newTestEnv(t, "pw")

	rec := e.serve(multipartRequest(t, "/api/upload/item", nil, "a.png", []byte("x")))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req := multipartRequest(t, "/api/upload/item", nil, "a.png", []byte("x"))
	req.AddCookie(login(t, e, "pw"))
	if rec := e.serve(req); rec.Code != http.StatusOK {
		t.Fatalf("signed in status = %d; body: %s", rec.Code, rec.Body.String())
	}
}
