package admin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"estatedesk/client"
	"estatedesk/model"
	"estatedesk/session"
)

const (
	listingsPath = "/api/listings"
	createPath   = "/api/listings/create"

	fetchFallback  = "Failed to fetch listings"
	saveFallback   = "Failed to save listing"
	deleteFallback = "Failed to delete listing"
)

// ListingsAPI is what the view needs from the backend.
type ListingsAPI interface {
	List(ctx context.Context) ([]model.Listing, error)
	Create(ctx context.Context, l model.Listing, image *ImageFile) error
	Update(ctx context.Context, l model.Listing, image *ImageFile) error
	Delete(ctx context.Context, id string) error
}

// ImageFile is an image picked by the user, not uploaded yet.
type ImageFile struct {
	Name string
	Data []byte
}

func (f ImageFile) ContentType() string {
	return http.DetectContentType(f.Data)
}

func ReadImageFile(path string) (ImageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageFile{}, fmt.Errorf("read image: %w", err)
	}
	return ImageFile{Name: filepath.Base(path), Data: data}, nil
}

// HTTPAPI is the ListingsAPI backed by the listings REST routes.
type HTTPAPI struct {
	Config  client.Config
	Session session.Session
}

func (a HTTPAPI) List(ctx context.Context) ([]model.Listing, error) {
	ep := client.NewEndpoint[model.ListingsResponse](a.Config, a.Session, client.Params{
		URL:      listingsPath,
		Method:   http.MethodGet,
		Fallback: fetchFallback,
	})
	if err := ep.Execute(ctx); err != nil {
		return nil, err
	}

	res, _ := ep.Data()
	if res.Listings == nil {
		return []model.Listing{}, nil
	}
	return res.Listings, nil
}

func (a HTTPAPI) Create(ctx context.Context, l model.Listing, image *ImageFile) error {
	return a.submit(ctx, http.MethodPost, createPath, l, image)
}

func (a HTTPAPI) Update(ctx context.Context, l model.Listing, image *ImageFile) error {
	return a.submit(ctx, http.MethodPut, listingPath(l.ID), l, image)
}

func (a HTTPAPI) Delete(ctx context.Context, id string) error {
	return client.Send(ctx, a.Config, a.Session, client.Request{
		Method:   http.MethodDelete,
		Path:     listingPath(id),
		Fallback: deleteFallback,
	}, nil)
}

func (a HTTPAPI) submit(ctx context.Context, method, path string, l model.Listing, image *ImageFile) error {
	body, contentType, err := listingForm(l, image)
	if err != nil {
		return err
	}
	return client.Send(ctx, a.Config, a.Session, client.Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: contentType,
		Fallback:    saveFallback,
	}, nil)
}

func listingPath(id string) string {
	return listingsPath + "/" + url.PathEscape(id)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// listingForm encodes the scalar fields and the optional image as multipart/form-data.
func listingForm(l model.Listing, image *ImageFile) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := []struct{ name, value string }{
		{"title", l.Title},
		{"description", l.Description},
		{"location_address", l.LocationAddress},
		{"price", strconv.FormatFloat(l.Price, 'f', -1, 64)},
		{"property_type", string(l.PropertyType)},
		{"status", string(l.Status)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", err
		}
	}

	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, quoteEscaper.Replace(image.Name)))
		h.Set("Content-Type", image.ContentType())
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(image.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
