package domain

import (
	"time"

	"parkshare/internal/pkg/timerange"
)

// Place is a listed driveway/parking space rented by the hour.
type Place struct {
	ID                int64     `json:"id"`
	OwnerID           int64     `json:"owner_id" gorm:"not null;index"`
	Name              string    `json:"name" validate:"required"`
	Description       string    `json:"description,omitempty"`
	Address           string    `json:"address"`
	City              string    `json:"city"`
	State             string    `json:"state"`
	ZipCode           string    `json:"zip_code"`
	Latitude          *float64  `json:"latitude,omitempty"`
	Longitude         *float64  `json:"longitude,omitempty"`
	PricePerHourCents int64     `json:"price_per_hour_cents" validate:"required,gt=0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	Images []PlaceImage `json:"images,omitempty"`
}

// PriceFor computes the total price in cents for renting the place
// over r. Integer arithmetic keeps cents exact; non-divisible
// durations round half up.
func (p *Place) PriceFor(r timerange.Range) int64 {
	minutes := int64(r.Duration() / time.Minute)
	return (p.PricePerHourCents*minutes + 30) / 60
}

type PlaceImage struct {
	ID        int64     `json:"id"`
	PlaceID   int64     `json:"place_id" gorm:"not null;index"`
	ImageKey  string    `json:"image_key"`
	IsPrimary bool      `json:"is_primary"`
	CreatedAt time.Time `json:"created_at"`
}
