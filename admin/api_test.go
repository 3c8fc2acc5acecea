package admin

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"estatedesk/client"
	"estatedesk/model"
)

const oneListingBody = `{"listings":[{"id":"1","title":"Flat","location_address":"1 Main St","price":1000,"property_type":"Apartment","status":"For Rent","images":"[\"http://x/img.png\"]"}]}`

type hit struct {
	method, path, auth string
	form               map[string]string
	file               string
	fileType           string
	fileData           string
}

// listingsServer answers the listings routes and records every request.
type listingsServer struct {
	mu     sync.Mutex
	hits   []hit
	status map[string]int
	body   map[string]string
}

func newListingsServer(t *testing.T) (*listingsServer, *httptest.Server) {
	t.Helper()
	ls := &listingsServer{
		status: map[string]int{},
		body:   map[string]string{"GET /api/listings": oneListingBody},
	}
	srv := httptest.NewServer(ls)
	t.Cleanup(srv.Close)
	return ls, srv
}

func (ls *listingsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h := hit{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			h.form = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				h.form[k] = v[0]
			}
			if files := r.MultipartForm.File["images"]; len(files) > 0 {
				h.file = files[0].Filename
				h.fileType = files[0].Header.Get("Content-Type")
				if f, err := files[0].Open(); err == nil {
					b, _ := io.ReadAll(f)
					f.Close()
					h.fileData = string(b)
				}
			}
		}
	}

	key := r.Method + " " + r.URL.Path
	ls.mu.Lock()
	ls.hits = append(ls.hits, h)
	status, ok := ls.status[key]
	body := ls.body[key]
	ls.mu.Unlock()

	if !ok {
		status = http.StatusOK
		if r.Method == http.MethodPost {
			status = http.StatusCreated
		}
	}
	if body == "" {
		body = `{}`
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (ls *listingsServer) respond(key string, status int, body string) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.status[key] = status
	ls.body[key] = body
}

func (ls *listingsServer) count(method, path string) int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	n := 0
	for _, h := range ls.hits {
		if h.method == method && h.path == path {
			n++
		}
	}
	return n
}

func (ls *listingsServer) last() hit {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.hits[len(ls.hits)-1]
}

func (ls *listingsServer) all() []hit {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return append([]hit(nil), ls.hits...)
}

func newHTTPAPI(srv *httptest.Server) HTTPAPI {
	return HTTPAPI{Config: client.Config{BaseURL: srv.URL}, Session: adminSession}
}

func TestHTTPAPIListNormalizesEncodedImages(t *testing.T) {
	_, srv := newListingsServer(t)

	listings, err := newHTTPAPI(srv).List(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, model.Images{"http://x/img.png"}, listings[0].Images)
}

func TestHTTPAPIListWithoutListingsField(t *testing.T) {
	ls, srv := newListingsServer(t)
	ls.respond("GET /api/listings", http.StatusOK, `{}`)

	listings, err := newHTTPAPI(srv).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, listings)
	assert.Empty(t, listings)
}

func TestHTTPAPIListFallbackMessage(t *testing.T) {
	ls, srv := newListingsServer(t)
	ls.respond("GET /api/listings", http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := newHTTPAPI(srv).List(context.Background())
	assert.EqualError(t, err, "Failed to fetch listings")
}

func TestHTTPAPICreateSendsMultipart(t *testing.T) {
	ls, srv := newListingsServer(t)

	l := model.NewDraft()
	l.Title = `The "Loft"`
	l.LocationAddress = "2 High St"
	l.Price = 1500.5
	png := "\x89PNG\r\n\x1a\n0000"
	img := &ImageFile{Name: `front "door".png`, Data: []byte(png)}

	require.NoError(t, newHTTPAPI(srv).Create(context.Background(), l, img))

	h := ls.last()
	assert.Equal(t, http.MethodPost, h.method)
	assert.Equal(t, "/api/listings/create", h.path)
	assert.Equal(t, "Bearer tok", h.auth)
	assert.Equal(t, map[string]string{
		"title":            `The "Loft"`,
		"description":      "",
		"location_address": "2 High St",
		"price":            "1500.5",
		"property_type":    "Apartment",
		"status":           "For Sale",
	}, h.form)
	assert.Equal(t, `front "door".png`, h.file)
	assert.Equal(t, "image/png", h.fileType)
	assert.Equal(t, png, h.fileData)
}

func TestHTTPAPIUpdateWithoutImage(t *testing.T) {
	ls, srv := newListingsServer(t)

	l := sampleListing("abc")
	require.NoError(t, newHTTPAPI(srv).Update(context.Background(), l, nil))

	h := ls.last()
	assert.Equal(t, http.MethodPut, h.method)
	assert.Equal(t, "/api/listings/abc", h.path)
	assert.Equal(t, "1000", h.form["price"])
	assert.Equal(t, "", h.file)
}

func TestHTTPAPISaveErrorMessage(t *testing.T) {
	ls, srv := newListingsServer(t)
	ls.respond("POST /api/listings/create", http.StatusForbidden, `{"message": "You do not have permission to do this."}`)

	err := newHTTPAPI(srv).Create(context.Background(), sampleListing(""), nil)
	var reqErr *client.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusForbidden, reqErr.Status)
	assert.Equal(t, "You do not have permission to do this.", reqErr.Message)
}

func TestHTTPAPIDeleteToleratesNonJSONError(t *testing.T) {
	ls, srv := newListingsServer(t)
	ls.respond("DELETE /api/listings/9", http.StatusInternalServerError, `oops`)

	err := newHTTPAPI(srv).Delete(context.Background(), "9")
	assert.EqualError(t, err, "Failed to delete listing")
}

func TestViewRendersServerRowAndPreview(t *testing.T) {
	_, srv := newListingsServer(t)
	v := NewListingsView(newHTTPAPI(srv), adminSession)
	defer v.Unmount()

	require.NoError(t, v.Mount(context.Background()))

	rows := v.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, Row{
		ID:           "1",
		Title:        "Flat",
		Address:      "1 Main St",
		Price:        "1,000",
		PropertyType: "Apartment",
		Status:       "For Rent",
	}, rows[0])

	require.NoError(t, v.OpenEditModal(v.Listings()[0]))
	assert.Equal(t, "http://x/img.png", v.PreviewSource())
	assert.Equal(t, "Current Image:", v.ImageCaption())
}

func TestViewCreateRefetchesExactlyOnce(t *testing.T) {
	ls, srv := newListingsServer(t)
	v := NewListingsView(newHTTPAPI(srv), adminSession)
	defer v.Unmount()
	require.NoError(t, v.Mount(context.Background()))
	require.Equal(t, 1, ls.count(http.MethodGet, "/api/listings"))

	require.NoError(t, v.OpenAddModal())
	require.NoError(t, v.HandleChange(FieldTitle, "Loft"))
	require.NoError(t, v.HandleChange(FieldLocationAddress, "2 High St"))
	require.NoError(t, v.HandleChange(FieldPrice, "99000"))
	require.NoError(t, v.SelectImage(ImageFile{Name: "loft.jpg", Data: []byte("\xff\xd8\xff\xe0jpeg")}))

	require.NoError(t, v.HandleSubmit(context.Background()))

	hits := ls.all()
	require.Len(t, hits, 3)
	assert.Equal(t, http.MethodPost, hits[1].method)
	assert.Equal(t, "/api/listings/create", hits[1].path)
	assert.Equal(t, "loft.jpg", hits[1].file)
	assert.Equal(t, http.MethodGet, hits[2].method)
	assert.Equal(t, "/api/listings", hits[2].path)

	assert.Equal(t, ModalClosed, v.Modal())
	assert.Equal(t, "", v.Err())
}

func TestViewFailedFetchKeepsRows(t *testing.T) {
	ls, srv := newListingsServer(t)
	v := NewListingsView(newHTTPAPI(srv), adminSession)
	defer v.Unmount()
	require.NoError(t, v.Mount(context.Background()))

	ls.respond("GET /api/listings", http.StatusInternalServerError, `{"message": "Internal server error."}`)
	require.Error(t, v.FetchListings(context.Background()))

	assert.Len(t, v.Rows(), 1)
	assert.Equal(t, "Internal server error.", v.Err())
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1,000", FormatPrice(1000))
	assert.Equal(t, "999", FormatPrice(999))
	assert.Equal(t, "1,234,567", FormatPrice(1234567))
	assert.Equal(t, "1,234.5", FormatPrice(1234.5))
}

func TestTempFilePreviews(t *testing.T) {
	p := TempFilePreviews{Dir: t.TempDir()}

	url, err := p.Create(ImageFile{Name: "A.PNG", Data: []byte("img")})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "file://"))

	path := strings.TrimPrefix(url, "file://")
	assert.Equal(t, ".png", filepath.Ext(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	p.Revoke(url)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestReadImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "house.jpg")
	require.NoError(t, os.WriteFile(path, []byte("\xff\xd8\xff\xe0jpeg"), 0o600))

	f, err := ReadImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, "house.jpg", f.Name)
	assert.Equal(t, "image/jpeg", f.ContentType())

	_, err = ReadImageFile(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}
