package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"estatedesk/model"
)

func (h *Handler) FetchListings(c echo.Context) error {
	roles := requestRoles(c)
	if cached, ok := h.Cache.Get(); ok {
		return c.JSON(http.StatusOK, echo.Map{"listings": responseArrFormatter(cached, roles)})
	}

	gen := h.Cache.Generation()
	listings := []model.Listing{}
	err := h.DB.Model(&model.Listing{}).Order("created_at desc").Find(&listings).Error
	if err != nil {
		c.Logger().Errorf("fetch listings: %v", err)
		return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to fetch listings."}
	}

	h.Cache.Set(gen, listings)
	return c.JSON(http.StatusOK, echo.Map{"listings": responseArrFormatter(listings, roles)})
}

func (h *Handler) FetchListing(c echo.Context) error {
	listing, err := h.findListing(c, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, responseFormatter(*listing, requestRoles(c)))
}

func (h *Handler) CreateListing(c echo.Context) error {
	reqUser, ok := c.Get("user").(*model.AuthUser)
	if !ok {
		return &echo.HTTPError{Code: http.StatusUnauthorized, Message: "Missing user."}
	}

	form, err := bindListingForm(c)
	if err != nil {
		return err
	}

	listing := model.Listing{Images: model.Images{}, CreatedByID: reqUser.ID}
	form.Apply(&listing)

	url, err := h.storeUploadedImage(c, listing.Title)
	if err != nil {
		return err
	}
	if url != "" {
		listing.Images = model.Images{url}
	}

	if err := h.DB.Create(&listing).Error; err != nil {
		c.Logger().Errorf("create listing: %v", err)
		h.removeImages(c, listing.Images)
		return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to create listing."}
	}

	h.Cache.Invalidate()
	return c.JSON(http.StatusCreated, listing)
}

func (h *Handler) UpdateListing(c echo.Context) error {
	listing, err := h.findListing(c, c.Param("id"))
	if err != nil {
		return err
	}

	form, err := bindListingForm(c)
	if err != nil {
		return err
	}
	form.Apply(listing)

	url, err := h.storeUploadedImage(c, listing.Title)
	if err != nil {
		return err
	}

	var replaced model.Images
	if url != "" {
		replaced = listing.Images
		listing.Images = model.Images{url}
	}

	if err := h.DB.Save(listing).Error; err != nil {
		c.Logger().Errorf("update listing %s: %v", listing.ID, err)
		if url != "" {
			h.removeImages(c, model.Images{url})
		}
		return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to update listing."}
	}

	h.removeImages(c, replaced)
	h.Cache.Invalidate()
	return c.JSON(http.StatusOK, listing)
}

func (h *Handler) DeleteListing(c echo.Context) error {
	listing, err := h.findListing(c, c.Param("id"))
	if err != nil {
		return err
	}

	r := h.DB.Delete(&model.Listing{ID: listing.ID})
	if r.Error != nil {
		c.Logger().Errorf("delete listing %s: %v", listing.ID, r.Error)
		return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to delete listing."}
	}

	if r.RowsAffected == 0 {
		return &echo.HTTPError{Code: http.StatusNotFound, Message: "Listing not found."}
	}

	h.removeImages(c, listing.Images)
	h.Cache.Invalidate()
	return c.JSON(http.StatusOK, DeleteResponse{Deleted: r.RowsAffected})
}

func (h *Handler) findListing(c echo.Context, id string) (*model.Listing, error) {
	listing := model.Listing{}
	err := h.DB.First(&listing, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &echo.HTTPError{Code: http.StatusNotFound, Message: "Listing not found."}
		}
		c.Logger().Errorf("fetch listing %s: %v", id, err)
		return nil, &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to fetch listing."}
	}
	return &listing, nil
}
