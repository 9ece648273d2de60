package place

import (
	"context"
	"io"
	"log"
	"path/filepath"

	"parkshare/internal/domain"
	"parkshare/internal/pkg/storage"
)

const defaultRadiusKm = 5.0

type Service struct {
	places  PlaceRepository
	objects storage.ObjectStorage
}

func NewService(places PlaceRepository, objects storage.ObjectStorage) *Service {
	return &Service{places: places, objects: objects}
}

func (s *Service) CreatePlace(ctx context.Context, ownerID int64, req CreatePlaceRequest) (*domain.Place, error) {
	p := &domain.Place{
		OwnerID:           ownerID,
		Name:              req.Name,
		Description:       req.Description,
		Address:           req.Address,
		City:              req.City,
		State:             req.State,
		ZipCode:           req.ZipCode,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		PricePerHourCents: req.PricePerHourCents,
	}
	if p.PricePerHourCents <= 0 {
		return nil, ErrValidation
	}
	if err := s.places.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPlace(ctx context.Context, id int64) (*domain.Place, error) {
	p, err := s.places.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	imgs, err := s.places.ListImages(ctx, id)
	if err == nil {
		p.Images = imgs
	}
	return p, nil
}

func (s *Service) MyPlaces(ctx context.Context, ownerID int64) ([]domain.Place, error) {
	return s.places.GetByOwner(ctx, ownerID)
}

// Search returns places within a bounding box around the given point.
// The box approximates the radius; a degree of latitude is ~111 km and
// a degree of longitude shrinks toward the poles, which is close
// enough for neighborhood-scale search.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]domain.Place, error) {
	radius := req.RadiusKm
	if radius <= 0 {
		radius = defaultRadiusKm
	}
	latRange := (radius / 111.0) * 2
	lngRange := (radius / 85.0) * 2
	return s.places.FindByLocation(ctx, req.Latitude, req.Longitude, latRange, lngRange)
}

func (s *Service) UpdatePlace(ctx context.Context, ownerID, id int64, req UpdatePlaceRequest) (*domain.Place, error) {
	p, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Address != nil {
		p.Address = *req.Address
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.State != nil {
		p.State = *req.State
	}
	if req.ZipCode != nil {
		p.ZipCode = *req.ZipCode
	}
	if req.Latitude != nil {
		p.Latitude = req.Latitude
	}
	if req.Longitude != nil {
		p.Longitude = req.Longitude
	}
	if req.PricePerHourCents != nil {
		if *req.PricePerHourCents <= 0 {
			return nil, ErrValidation
		}
		p.PricePerHourCents = *req.PricePerHourCents
	}

	if err := s.places.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePlace removes the place together with its blocks, bookings,
// and images. Stored image objects are cleaned up after the rows are
// gone; a failed object delete only logs.
func (s *Service) DeletePlace(ctx context.Context, ownerID, id int64) error {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return err
	}

	imgs, _ := s.places.ListImages(ctx, id)

	if err := s.places.Delete(ctx, id); err != nil {
		return err
	}

	for _, img := range imgs {
		if err := s.objects.Delete(img.ImageKey); err != nil {
			log.Printf("place: failed to delete image object %s: %v", img.ImageKey, err)
		}
	}
	return nil
}

func (s *Service) UploadImage(ctx context.Context, ownerID, placeID int64, file io.Reader, filename string, isPrimary bool) (*domain.PlaceImage, error) {
	if _, err := s.getOwned(ctx, ownerID, placeID); err != nil {
		return nil, err
	}

	switch filepath.Ext(filename) {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return nil, ErrValidation
	}

	key, err := s.objects.Save(file, "places", filename)
	if err != nil {
		return nil, err
	}

	img := &domain.PlaceImage{
		PlaceID:   placeID,
		ImageKey:  key,
		IsPrimary: isPrimary,
	}
	if err := s.places.AddImage(ctx, img); err != nil {
		if derr := s.objects.Delete(key); derr != nil {
			log.Printf("place: failed to delete orphaned object %s: %v", key, derr)
		}
		return nil, err
	}
	return img, nil
}

func (s *Service) DeleteImage(ctx context.Context, ownerID, placeID, imageID int64) error {
	if _, err := s.getOwned(ctx, ownerID, placeID); err != nil {
		return err
	}

	key, err := s.places.DeleteImage(ctx, imageID)
	if err != nil {
		return ErrNotFound
	}
	if err := s.objects.Delete(key); err != nil {
		log.Printf("place: failed to delete image object %s: %v", key, err)
	}
	return nil
}

func (s *Service) getOwned(ctx context.Context, ownerID, id int64) (*domain.Place, error) {
	p, err := s.places.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	if p.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return p, nil
}
