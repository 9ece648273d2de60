package place

type CreatePlaceRequest struct {
	Name              string   `json:"name" binding:"required"`
	Description       string   `json:"description"`
	Address           string   `json:"address" binding:"required"`
	City              string   `json:"city" binding:"required"`
	State             string   `json:"state"`
	ZipCode           string   `json:"zip_code"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	PricePerHourCents int64    `json:"price_per_hour_cents" binding:"required,gt=0"`
}

type UpdatePlaceRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Address           *string  `json:"address"`
	City              *string  `json:"city"`
	State             *string  `json:"state"`
	ZipCode           *string  `json:"zip_code"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	PricePerHourCents *int64   `json:"price_per_hour_cents"`
}

type SearchRequest struct {
	Latitude  float64 `form:"lat" binding:"required"`
	Longitude float64 `form:"lng" binding:"required"`
	RadiusKm  float64 `form:"radius_km"`
}
