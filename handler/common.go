package handler

import (
	"estatedesk/storage"

	"gorm.io/gorm"
)

type Handler struct {
	DB        *gorm.DB
	Images    storage.ImageStore
	Cache     *ListingCache
	JWTSecret []byte
}

type DeleteResponse struct {
	Deleted int64 `json:"deleted"`
}
