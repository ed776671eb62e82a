package models

import (
	"strings"
	"time"
)

// Dog is a stored dog record. Name and Image are nullable; at least one is set
// for every row this service writes.
type Dog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      *string   `gorm:"type:text" json:"name"`
	Image     *string   `gorm:"type:text" json:"image"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName pins the table name used by every driver.
func (Dog) TableName() string {
	return "dogs"
}

// Empty reports whether both name and image are absent.
func (d Dog) Empty() bool {
	return d.Name == nil && d.Image == nil
}

// Normalized returns a copy with trimmed fields and empty strings turned into nil.
func (d Dog) Normalized() Dog {
	d.Name = NormalizeField(d.Name)
	d.Image = NormalizeField(d.Image)
	return d
}

// DogCreate request payload for /save
type DogCreate struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

// Normalize trims whitespace and turns empty fields into nil
func (d *DogCreate) Normalize() {
	d.Name = NormalizeField(d.Name)
	d.Image = NormalizeField(d.Image)
}

// Empty reports whether both fields are absent after normalization.
func (d DogCreate) Empty() bool {
	return d.Name == nil && d.Image == nil
}

// DogRead response model for listings. ID is nil for records that never lived in storage.
type DogRead struct {
	ID        *uint      `json:"id,omitempty"`
	Name      *string    `json:"name"`
	Image     *string    `json:"image"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// ToRead converts a stored row into its response shape.
func (d Dog) ToRead() DogRead {
	id := d.ID
	created := d.CreatedAt
	return DogRead{ID: &id, Name: d.Name, Image: d.Image, CreatedAt: &created}
}

// NormalizeField trims s and returns nil when nothing is left.
func NormalizeField(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// StringPtr returns a normalized pointer for a plain string.
func StringPtr(s string) *string {
	return NormalizeField(&s)
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
