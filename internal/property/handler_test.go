package property

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/middleware"
	"github.com/carlosalbertoprojetos/imobiliaria-api/internal/storage"
)

// newTestServer wires repository, storage, service, and handler into the same
// route layout cmd/api/main.go uses.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("new local storage: %v", err)
	}
	svc := NewService(newMemoryRepository(), store)
	h := NewHandler(svc, store)

	r := chi.NewRouter()
	r.Get("/uploads/{name}", h.GetImage)
	r.Route("/properties", func(r chi.Router) {
		r.Use(middleware.RequireToken)
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doRequest(t *testing.T, method, target, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, target, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeProperty(t *testing.T, resp *http.Response) *Property {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	p := &Property{}
	if err := json.Unmarshal(env.Data, p); err != nil {
		t.Fatalf("decode property: %v", err)
	}
	return p
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileContent []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %q: %v", k, err)
		}
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("image", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(fileContent); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func createProperty(t *testing.T, srv *httptest.Server, token string, fields map[string]string) *Property {
	t.Helper()
	body, contentType := multipartBody(t, fields, "", nil)
	resp := doRequest(t, http.MethodPost, srv.URL+"/properties", token, body, contentType)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	return decodeProperty(t, resp)
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/properties"},
		{http.MethodPost, "/properties"},
		{http.MethodGet, "/properties/123"},
		{http.MethodPut, "/properties/123"},
		{http.MethodDelete, "/properties/123"},
	}
	for _, tc := range cases {
		resp := doRequest(t, tc.method, srv.URL+tc.path, "", nil, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s %s without token: expected 401, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}
}

func TestListEmptyOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/properties", "usuario_teste", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(bytes.TrimSpace(env.Data)) != "[]" {
		t.Fatalf("expected empty array, got %s", env.Data)
	}
}

// TestPropertyLifecycle walks the full scenario: create without image, read
// back the identical record, delete as the owner, confirm it is gone.
func TestPropertyLifecycle(t *testing.T) {
	srv := newTestServer(t)
	const token = "usuario_teste"

	created := createProperty(t, srv, token, map[string]string{
		"title":   "Casa Teste",
		"price":   "123456.78",
		"address": "Rua Teste, 1",
	})
	if created.Owner != token {
		t.Fatalf("expected owner %q, got %q", token, created.Owner)
	}
	if created.ImageURL != nil {
		t.Fatalf("expected null image_url, got %q", *created.ImageURL)
	}
	if created.Price != 123456.78 {
		t.Fatalf("price does not round-trip: %v", created.Price)
	}

	resp := doRequest(t, http.MethodGet, srv.URL+"/properties/"+created.ID, token, nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got := decodeProperty(t, resp)
	if got.ID != created.ID || got.Title != created.Title || got.Price != created.Price ||
		got.Address != created.Address || got.Owner != created.Owner {
		t.Fatalf("get result differs from create result:\n got %#v\nwant %#v", got, created)
	}

	resp = doRequest(t, http.MethodDelete, srv.URL+"/properties/"+created.ID, token, nil, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, srv.URL+"/properties/"+created.ID, token, nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestCreateMissingFieldLeavesNoTrace(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"title": "Sem Preço",
		// price and address absent
	}, "foto.jpg", []byte("bytes"))
	resp := doRequest(t, http.MethodPost, srv.URL+"/properties", "owner", body, contentType)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	// Validation failed before any persistence: the list stays empty.
	resp = doRequest(t, http.MethodGet, srv.URL+"/properties", "owner", nil, "")
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(bytes.TrimSpace(env.Data)) != "[]" {
		t.Fatalf("expected empty list after rejected create, got %s", env.Data)
	}
}

func TestCreateRejectsNonNumericPrice(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{
		"title": "Casa", "price": "caro", "address": "Rua",
	}, "", nil)
	resp := doRequest(t, http.MethodPost, srv.URL+"/properties", "owner", body, contentType)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateAcceptsURLEncodedForm(t *testing.T) {
	srv := newTestServer(t)

	form := url.Values{}
	form.Set("title", "Casa Urlencoded")
	form.Set("price", "-10")
	form.Set("address", "Rua")
	resp := doRequest(t, http.MethodPost, srv.URL+"/properties", "owner",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	p := decodeProperty(t, resp)
	// No lower bound on price: non-positive values are accepted as-is.
	if p.Price != -10 {
		t.Fatalf("expected price -10, got %v", p.Price)
	}
}

func TestCreateWithImageServesUploadedBytes(t *testing.T) {
	srv := newTestServer(t)
	content := []byte("fake image data")

	body, contentType := multipartBody(t, map[string]string{
		"title": "Apto com Imagem", "price": "500000", "address": "Rua Foto, 2",
	}, "foto.jpg", content)
	resp := doRequest(t, http.MethodPost, srv.URL+"/properties", "owner", body, contentType)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	p := decodeProperty(t, resp)
	if p.ImageURL == nil {
		t.Fatal("expected non-null image_url")
	}

	// Image serving needs no token: blob names are unguessable strings.
	resp = doRequest(t, http.MethodGet, srv.URL+*p.ImageURL, "", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	got, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("served bytes differ from upload: %q", got)
	}
}

// TestUpdateIgnoresOwnership pins the contract's authorization asymmetry:
// delete is tied to the owner token, update is not.
func TestUpdateIgnoresOwnership(t *testing.T) {
	srv := newTestServer(t)

	created := createProperty(t, srv, "owner-a", map[string]string{
		"title": "Casa A", "price": "100", "address": "Rua",
	})

	body, contentType := multipartBody(t, map[string]string{"title": "Renomeada"}, "", nil)
	resp := doRequest(t, http.MethodPut, srv.URL+"/properties/"+created.ID, "owner-b", body, contentType)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for non-owner update, got %d", resp.StatusCode)
	}
	updated := decodeProperty(t, resp)
	if updated.Title != "Renomeada" {
		t.Fatalf("expected updated title, got %q", updated.Title)
	}
	if updated.Owner != "owner-a" {
		t.Fatalf("owner must be immutable, got %q", updated.Owner)
	}
}

func TestUpdateUnknownIDOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	body, contentType := multipartBody(t, map[string]string{"title": "x"}, "", nil)
	resp := doRequest(t, http.MethodPut, srv.URL+"/properties/does-not-exist", "owner", body, contentType)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeleteWrongOwnerOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	created := createProperty(t, srv, "owner-a", map[string]string{
		"title": "Casa", "price": "1", "address": "Rua",
	})

	resp := doRequest(t, http.MethodDelete, srv.URL+"/properties/"+created.ID, "owner-b", nil, "")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	resp = doRequest(t, http.MethodGet, srv.URL+"/properties/"+created.ID, "owner-a", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("record should survive a forbidden delete, got %d", resp.StatusCode)
	}
}

func TestDeleteUnknownIDReturnsNoContent(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodDelete, srv.URL+"/properties/nunca-existiu", "any-token", nil, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected idempotent 204, got %d", resp.StatusCode)
	}
}

func TestGetUnknownImage(t *testing.T) {
	srv := newTestServer(t)

	resp := doRequest(t, http.MethodGet, srv.URL+"/uploads/nao-existe.jpg", "", nil, "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
