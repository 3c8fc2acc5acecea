package admin

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// EmptyMessage is shown in place of the table body when there are no listings.
const EmptyMessage = "No listings found."

var pricePrinter = message.NewPrinter(language.English)

// Row is one rendered table line.
type Row struct {
	ID           string
	Title        string
	Address      string
	Price        string
	PropertyType string
	Status       string
}

// FormatPrice groups thousands and keeps at most three decimals: 1000 -> "1,000".
func FormatPrice(p float64) string {
	return pricePrinter.Sprint(number.Decimal(p, number.MaxFractionDigits(3)))
}

func (v *ListingsView) Rows() []Row {
	listings := v.Listings()
	rows := make([]Row, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, Row{
			ID:           l.ID,
			Title:        l.Title,
			Address:      l.LocationAddress,
			Price:        FormatPrice(l.Price),
			PropertyType: string(l.PropertyType),
			Status:       string(l.Status),
		})
	}
	return rows
}

// PreviewSource is what the modal shows: the live preview, else the first
// stored image, else "".
func (v *ListingsView) PreviewSource() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.preview != "" {
		return v.preview
	}
	return v.draft.Images.First()
}

func (v *ListingsView) ImageCaption() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.image != nil:
		return "New selected file: " + v.image.Name
	case len(v.draft.Images) > 0:
		return "Current Image:"
	}
	return "No image uploaded"
}

func (v *ListingsView) UploadLabel() string {
	if _, ok := v.SelectedImage(); ok {
		return "Change Image"
	}
	return "Upload Image"
}

func (v *ListingsView) Title() string {
	if v.Modal() == ModalEdit {
		return "Edit Listing"
	}
	return "Add Listing"
}

func (v *ListingsView) SubmitLabel() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case v.saving:
		return "Saving..."
	case v.modal == ModalEdit:
		return "Update"
	}
	return "Add"
}
