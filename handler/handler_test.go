package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"estatedesk/model"
	"estatedesk/storage"
)

const testBaseURL = "http://listings.test"

type testEnv struct {
	e        *echo.Echo
	h        *Handler
	imageDir string
}

// newTestEnv registers the routes without auth; every request runs as an admin.
func newTestEnv(t *testing.T, cacheTTL time.Duration) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Listing{}))

	imageDir := t.TempDir()
	images, err := storage.NewLocalStore(imageDir, testBaseURL)
	require.NoError(t, err)

	h := &Handler{
		DB:        db,
		Images:    images,
		Cache:     NewListingCache(cacheTTL),
		JWTSecret: []byte("test-secret"),
	}

	e := echo.New()
	e.Validator = NewValidator()
	admin := &model.AuthUser{ID: uuid.NewString(), Roles: []string{model.RoleAdmin}, IsAdmin: true}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user", admin)
			return next(c)
		}
	})

	e.POST("/api/signup", h.Signup)
	e.POST("/api/login", h.Login)
	e.GET("/api/listings", h.FetchListings)
	e.POST("/api/listings/create", h.CreateListing)
	e.GET("/api/listings/:id", h.FetchListing)
	e.PUT("/api/listings/:id", h.UpdateListing)
	e.DELETE("/api/listings/:id", h.DeleteListing)

	return &testEnv{e: e, h: h, imageDir: imageDir}
}

type imageUpload struct {
	name string
	data []byte
}

func genListingFields() map[string]string {
	fake := faker.New()
	return map[string]string{
		"title":            fake.Lorem().Sentence(3),
		"description":      fake.Lorem().Sentence(8),
		"location_address": fake.Address().StreetAddress(),
		"price":            strconv.Itoa(fake.IntBetween(1, 1000000)),
		"property_type":    "House",
		"status":           "For Rent",
	}
}

func (env *testEnv) multipart(t *testing.T, method, target string, fields map[string]string, img *imageUpload) *httptest.ResponseRecorder {
	t.Helper()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if img != nil {
		part, err := writer.CreateFormFile("images", img.name)
		require.NoError(t, err)
		_, err = part.Write(img.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) json(t *testing.T, method, target string, data interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if data != nil {
		payload, err := json.Marshal(data)
		require.NoError(t, err)
		body = bytes.NewBuffer(payload)
	} else {
		body = new(bytes.Buffer)
	}

	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}

func (env *testEnv) createListing(t *testing.T, fields map[string]string, img *imageUpload) model.Listing {
	t.Helper()

	rec := env.multipart(t, http.MethodPost, "/api/listings/create", fields, img)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[model.Listing](t, rec)
}

func (env *testEnv) fetchAll(t *testing.T) []model.Listing {
	t.Helper()

	rec := env.json(t, http.MethodGet, "/api/listings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return decode[model.ListingsResponse](t, rec).Listings
}
