package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"parkshare/internal/domain"
)

type PlaceRepository struct {
	db *gorm.DB
}

func NewPlaceRepository(db *gorm.DB) *PlaceRepository {
	return &PlaceRepository{db: db}
}

type placeModel struct {
	ID                int64     `gorm:"column:id;primaryKey"`
	OwnerID           int64     `gorm:"column:owner_id;index"`
	Name              string    `gorm:"column:name"`
	Description       string    `gorm:"column:description"`
	Address           string    `gorm:"column:address"`
	City              string    `gorm:"column:city"`
	State             string    `gorm:"column:state"`
	ZipCode           string    `gorm:"column:zip_code"`
	Latitude          *float64  `gorm:"column:latitude"`
	Longitude         *float64  `gorm:"column:longitude"`
	PricePerHourCents int64     `gorm:"column:price_per_hour_cents"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (placeModel) TableName() string { return "places" }

type placeImageModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	PlaceID   int64     `gorm:"column:place_id;index"`
	ImageKey  string    `gorm:"column:image_key"`
	IsPrimary bool      `gorm:"column:is_primary"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (placeImageModel) TableName() string { return "place_images" }

func toDomainPlace(m placeModel) *domain.Place {
	return &domain.Place{
		ID:                m.ID,
		OwnerID:           m.OwnerID,
		Name:              m.Name,
		Description:       m.Description,
		Address:           m.Address,
		City:              m.City,
		State:             m.State,
		ZipCode:           m.ZipCode,
		Latitude:          m.Latitude,
		Longitude:         m.Longitude,
		PricePerHourCents: m.PricePerHourCents,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func toPlaceModel(p *domain.Place) placeModel {
	return placeModel{
		ID:                p.ID,
		OwnerID:           p.OwnerID,
		Name:              p.Name,
		Description:       p.Description,
		Address:           p.Address,
		City:              p.City,
		State:             p.State,
		ZipCode:           p.ZipCode,
		Latitude:          p.Latitude,
		Longitude:         p.Longitude,
		PricePerHourCents: p.PricePerHourCents,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toDomainPlaceImage(m placeImageModel) domain.PlaceImage {
	return domain.PlaceImage{
		ID:        m.ID,
		PlaceID:   m.PlaceID,
		ImageKey:  m.ImageKey,
		IsPrimary: m.IsPrimary,
		CreatedAt: m.CreatedAt,
	}
}

func (r *PlaceRepository) Create(ctx context.Context, p *domain.Place) error {
	m := toPlaceModel(p)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*p = *toDomainPlace(m)
	return nil
}

func (r *PlaceRepository) GetByID(ctx context.Context, id int64) (*domain.Place, error) {
	var m placeModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainPlace(m), nil
}

func (r *PlaceRepository) GetByOwner(ctx context.Context, ownerID int64) ([]domain.Place, error) {
	var ms []placeModel
	tx := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Place, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainPlace(m))
	}
	return out, nil
}

func (r *PlaceRepository) Update(ctx context.Context, p *domain.Place) error {
	m := toPlaceModel(p)
	return r.db.WithContext(ctx).Save(&m).Error
}

// FindByLocation returns places inside the bounding box centered on
// (lat, lng) with the given side lengths in degrees.
func (r *PlaceRepository) FindByLocation(ctx context.Context, lat, lng, latRange, lngRange float64) ([]domain.Place, error) {
	var ms []placeModel
	tx := r.db.WithContext(ctx).
		Where("latitude BETWEEN ? AND ?", lat-latRange/2, lat+latRange/2).
		Where("longitude BETWEEN ? AND ?", lng-lngRange/2, lng+lngRange/2).
		Order("id ASC").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Place, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainPlace(m))
	}
	return out, nil
}

// Delete removes a place together with everything it owns: blocks,
// bookings and image rows, all in one transaction.
func (r *PlaceRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("place_id = ?", id).Delete(&blockModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("place_id = ?", id).Delete(&bookingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("place_id = ?", id).Delete(&placeImageModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&placeModel{}, id).Error
	})
}

func (r *PlaceRepository) AddImage(ctx context.Context, img *domain.PlaceImage) error {
	m := placeImageModel{
		PlaceID:   img.PlaceID,
		ImageKey:  img.ImageKey,
		IsPrimary: img.IsPrimary,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*img = toDomainPlaceImage(m)
	return nil
}

func (r *PlaceRepository) ListImages(ctx context.Context, placeID int64) ([]domain.PlaceImage, error) {
	var ms []placeImageModel
	tx := r.db.WithContext(ctx).
		Where("place_id = ?", placeID).
		Order("is_primary DESC, id ASC").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.PlaceImage, 0, len(ms))
	for _, m := range ms {
		out = append(out, toDomainPlaceImage(m))
	}
	return out, nil
}

func (r *PlaceRepository) DeleteImage(ctx context.Context, imageID int64) (string, error) {
	var m placeImageModel
	tx := r.db.WithContext(ctx).First(&m, imageID)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", tx.Error
	}
	if err := r.db.WithContext(ctx).Delete(&placeImageModel{}, imageID).Error; err != nil {
		return "", err
	}
	return m.ImageKey, nil
}
