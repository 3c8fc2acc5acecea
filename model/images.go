package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Images is the ordered list of image URLs of a listing.
//
// On the wire and in storage it shows up either as a JSON array of strings or
// as a string holding such an array encoded as JSON. Both decode to the same
// sequence here, once, so nothing downstream has to care which one it got.
// Anything malformed decodes to an empty sequence instead of an error.
type Images []string

// ParseImages normalizes a raw JSON value into Images.
func ParseImages(raw []byte) Images {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Images{}
	}

	switch raw[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return Images{}
		}
		return parseImageArray([]byte(encoded))
	case '[':
		return parseImageArray(raw)
	default:
		return Images{}
	}
}

func parseImageArray(raw []byte) Images {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return Images{}
	}
	return Images(list)
}

func (i *Images) UnmarshalJSON(data []byte) error {
	*i = ParseImages(data)
	return nil
}

func (i Images) MarshalJSON() ([]byte, error) {
	if i == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(i))
}

// First returns the first image URL, or "" when there is none.
func (i Images) First() string {
	if len(i) == 0 {
		return ""
	}
	return i[0]
}

// Scan reads the column through datatypes.JSON; unreadable values become empty.
func (i *Images) Scan(value interface{}) error {
	var raw datatypes.JSON
	if err := raw.Scan(value); err != nil {
		*i = Images{}
		return nil
	}
	*i = ParseImages(raw)
	return nil
}

func (i Images) Value() (driver.Value, error) {
	b, err := i.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b).Value()
}

func (Images) GormDataType() string {
	return datatypes.JSON{}.GormDataType()
}

func (Images) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return datatypes.JSON{}.GormDBDataType(db, field)
}
