package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

// minimal valid PNG header; enough for content sniffing
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestImageUploadAndServe(t *testing.T) {
	app, db := newTestApp(t)
	admin := adminToken(t, app, db)

	body, ctype := multipartUpload(t, "photo.png", pngBytes)
	req := httptest.NewRequest("POST", "/upload/image", body)
	req.Header.Set("Content-Type", ctype)
	resp, err := app.Test(withBearer(req, admin), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload: want 200, got %d", resp.StatusCode)
	}
	var out struct {
		Filename string `json:"filename"`
		URL      string `json:"url"`
	}
	b, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("decode %s: %v", string(b), err)
	}
	if out.Filename == "" || out.URL != "/upload/uploads/"+out.Filename {
		t.Fatalf("payload %+v", out)
	}

	resp, err = app.Test(httptest.NewRequest("GET", out.URL, nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("serve: want 200, got %d", resp.StatusCode)
	}
	served, _ := io.ReadAll(resp.Body)
	if !bytes.Equal(served, pngBytes) {
		t.Fatalf("served bytes differ")
	}
}

func TestImageUploadRejections(t *testing.T) {
	app, db := newTestApp(t)
	admin := adminToken(t, app, db)
	customer := registerAndLogin(t, app, "cust@example.com", "cust")

	// wrong extension
	body, ctype := multipartUpload(t, "script.exe", pngBytes)
	req := httptest.NewRequest("POST", "/upload/image", body)
	req.Header.Set("Content-Type", ctype)
	resp, _ := app.Test(withBearer(req, admin), -1)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad extension: want 400, got %d", resp.StatusCode)
	}

	// extension lies about the content
	body, ctype = multipartUpload(t, "notes.png", []byte("plain text, not an image at all"))
	req = httptest.NewRequest("POST", "/upload/image", body)
	req.Header.Set("Content-Type", ctype)
	resp, _ = app.Test(withBearer(req, admin), -1)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("non-image content: want 400, got %d", resp.StatusCode)
	}

	// non-admin
	body, ctype = multipartUpload(t, "photo.png", pngBytes)
	req = httptest.NewRequest("POST", "/upload/image", body)
	req.Header.Set("Content-Type", ctype)
	resp, _ = app.Test(withBearer(req, customer), -1)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("customer upload: want 403, got %d", resp.StatusCode)
	}
}

func TestServeRejectsTraversal(t *testing.T) {
	app, _ := newTestApp(t)

	for _, name := range []string{"..%2F..%2Fetc%2Fpasswd", "..", "a..b..%2Fsecret"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/upload/uploads/"+name, nil), -1)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: want 400/404, got %d", name, resp.StatusCode)
		}
	}
}
