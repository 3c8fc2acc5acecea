package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PropertyType string

const (
	PropertyApartment  PropertyType = "Apartment"
	PropertyHouse      PropertyType = "House"
	PropertyCommercial PropertyType = "Commercial"
)

var propertyTypes = []PropertyType{PropertyApartment, PropertyHouse, PropertyCommercial}

func (t PropertyType) IsValid() bool {
	for _, v := range propertyTypes {
		if v == t {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusForSale Status = "For Sale"
	StatusForRent Status = "For Rent"
)

var statuses = []Status{StatusForSale, StatusForRent}

func (s Status) IsValid() bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

var (
	ErrTitleRequired    = errors.New("Title is required")
	ErrAddressRequired  = errors.New("Address is required")
	ErrPriceNotPositive = errors.New("Price must be greater than zero")
	ErrInvalidType      = errors.New("Property type is not supported")
	ErrInvalidStatus    = errors.New("Status is not supported")
)

// Primary listing struct for DB interactions and the wire
// ID is empty until the backend assigns one on create
type Listing struct {
	ID              string       `json:"id,omitempty" gorm:"type:uuid;primarykey"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	LocationAddress string       `json:"location_address"`
	Price           float64      `json:"price"`
	PropertyType    PropertyType `json:"property_type"`
	Status          Status       `json:"status"`
	Images          Images       `json:"images"`
	CreatedByID     string       `json:"created_by_id,omitempty" gorm:"type:uuid"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// Listing as shown to anyone but admins
type PublicListing struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	LocationAddress string       `json:"location_address"`
	Price           float64      `json:"price"`
	PropertyType    PropertyType `json:"property_type"`
	Status          Status       `json:"status"`
	Images          Images       `json:"images"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

func (l Listing) ToPublicFormat() any {
	return PublicListing{
		ID:              l.ID,
		Title:           l.Title,
		Description:     l.Description,
		LocationAddress: l.LocationAddress,
		Price:           l.Price,
		PropertyType:    l.PropertyType,
		Status:          l.Status,
		Images:          l.Images,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// NewDraft returns the defaults used by an empty add form.
func NewDraft() Listing {
	return Listing{
		PropertyType: PropertyApartment,
		Status:       StatusForSale,
		Images:       Images{},
	}
}

func (base *Listing) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID != "" {
		return
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}

	base.ID = id.String()
	return
}

// Validate checks the fields a submission must satisfy before it is sent or stored.
// Title and address are checked after trimming whitespace.
func (l Listing) Validate() error {
	if strings.TrimSpace(l.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(l.LocationAddress) == "" {
		return ErrAddressRequired
	}
	if !(l.Price > 0) {
		return ErrPriceNotPositive
	}
	return nil
}

// ValidateEnums is only enforced server side; the client draft can't leave the enums.
func (l Listing) ValidateEnums() error {
	if !l.PropertyType.IsValid() {
		return ErrInvalidType
	}
	if !l.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Multipart form submitted by the admin view on create and update
type ListingForm struct {
	Title           string  `form:"title" validate:"required"`
	Description     string  `form:"description"`
	LocationAddress string  `form:"location_address" validate:"required"`
	Price           float64 `form:"price" validate:"required,gt=0"`
	PropertyType    string  `form:"property_type" validate:"required"`
	Status          string  `form:"status" validate:"required"`
}

// Apply copies the form fields onto l, leaving id, images and bookkeeping alone.
func (f ListingForm) Apply(l *Listing) {
	l.Title = f.Title
	l.Description = f.Description
	l.LocationAddress = f.LocationAddress
	l.Price = f.Price
	l.PropertyType = PropertyType(f.PropertyType)
	l.Status = Status(f.Status)
}

type ListingsResponse struct {
	Listings []Listing `json:"listings"`
}
