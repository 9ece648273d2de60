package place

import (
	"context"

	"parkshare/internal/domain"
)

type PlaceRepository interface {
	Create(ctx context.Context, p *domain.Place) error
	GetByID(ctx context.Context, id int64) (*domain.Place, error)
	GetByOwner(ctx context.Context, ownerID int64) ([]domain.Place, error)
	Update(ctx context.Context, p *domain.Place) error
	FindByLocation(ctx context.Context, lat, lng, latRange, lngRange float64) ([]domain.Place, error)
	Delete(ctx context.Context, id int64) error
	AddImage(ctx context.Context, img *domain.PlaceImage) error
	ListImages(ctx context.Context, placeID int64) ([]domain.PlaceImage, error)
	DeleteImage(ctx context.Context, imageID int64) (string, error)
}
