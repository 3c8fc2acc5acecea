package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"estatedesk/model"
	"estatedesk/storage"
)

// Multipart field carrying the optional image file
const imageField = "images"

func bindListingForm(c echo.Context) (model.ListingForm, error) {
	form := model.ListingForm{}
	if err := c.Bind(&form); err != nil {
		return form, &echo.HTTPError{Code: http.StatusBadRequest, Message: "Invalid listing form."}
	}

	// Field level checks first so the messages match what the admin view shows
	probe := model.Listing{}
	form.Apply(&probe)
	if err := probe.Validate(); err != nil {
		return form, &echo.HTTPError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := probe.ValidateEnums(); err != nil {
		return form, &echo.HTTPError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := c.Validate(&form); err != nil {
		return form, err
	}

	return form, nil
}

// storeUploadedImage returns "" when the request carries no image.
func (h *Handler) storeUploadedImage(c echo.Context, title string) (string, error) {
	file, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", &echo.HTTPError{Code: http.StatusBadRequest, Message: "Failed to read image."}
	}

	src, err := file.Open()
	if err != nil {
		return "", &echo.HTTPError{Code: http.StatusBadRequest, Message: "Failed to read image."}
	}
	defer src.Close()

	key, err := storage.ObjectKey(title, file.Filename)
	if err != nil {
		return "", err
	}

	url, err := h.Images.Put(c.Request().Context(), key, src, file.Header.Get(echo.HeaderContentType))
	if err != nil {
		c.Logger().Errorf("upload image: %v", err)
		return "", &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to upload image."}
	}

	c.Logger().Infof("image uploaded to %s", url)
	return url, nil
}

// Best effort; a stale object is not worth failing the request for.
func (h *Handler) removeImages(c echo.Context, images model.Images) {
	for _, url := range images {
		err := h.Images.Delete(c.Request().Context(), url)
		if err != nil && !errors.Is(err, storage.ErrNotManaged) {
			c.Logger().Warnf("remove image %s: %v", url, err)
		}
	}
}
