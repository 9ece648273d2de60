package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"parkshare/internal/domain"
	"parkshare/internal/pkg/timerange"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	PlaceID         int64     `gorm:"column:place_id;index"`
	UserID          int64     `gorm:"column:user_id;index"`
	StartTime       time.Time `gorm:"column:start_time"`
	EndTime         time.Time `gorm:"column:end_time"`
	Status          string    `gorm:"column:status"`
	TotalPriceCents int64     `gorm:"column:total_price_cents"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	return &domain.Booking{
		ID:              m.ID,
		PlaceID:         m.PlaceID,
		UserID:          m.UserID,
		StartTime:       m.StartTime,
		EndTime:         m.EndTime,
		Status:          domain.BookingStatus(m.Status),
		TotalPriceCents: m.TotalPriceCents,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:              b.ID,
		PlaceID:         b.PlaceID,
		UserID:          b.UserID,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Status:          string(b.Status),
		TotalPriceCents: b.TotalPriceCents,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// syncBlock keeps the booking's derived block in step with its status:
// active bookings get the block upserted (keyed by booking id) to the
// booking's current interval, everything else loses the block. Runs
// inside the caller's transaction so booking and block never disagree.
func syncBlock(tx *gorm.DB, b *domain.Booking, reason string) error {
	if !b.IsActive() {
		return tx.Where("booking_id = ?", b.ID).Delete(&blockModel{}).Error
	}

	m := blockModel{
		PlaceID:       b.PlaceID,
		StartDatetime: b.StartTime,
		EndDatetime:   b.EndTime,
		BlockType:     string(domain.BlockBooking),
		Reason:        reason,
		BookingID:     &b.ID,
		IsRecurring:   false,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "booking_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"place_id", "start_datetime", "end_datetime", "updated_at",
		}),
	}).Create(&m).Error
}

// CreateWithBlock inserts the booking and its derived block in one
// transaction.
func (r *BookingRepository) CreateWithBlock(ctx context.Context, b *domain.Booking, blockReason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := toBookingModel(b)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		*b = *toDomainBooking(m)
		return syncBlock(tx, b, blockReason)
	})
}

// SaveWithBlock persists the booking and re-synchronizes the derived
// block in one transaction. Idempotent: safe to run on every save.
func (r *BookingRepository) SaveWithBlock(ctx context.Context, b *domain.Booking, blockReason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := toBookingModel(b)
		if err := tx.Save(&m).Error; err != nil {
			return err
		}
		*b = *toDomainBooking(m)
		return syncBlock(tx, b, blockReason)
	})
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

// HasOverlapping reports whether any active booking for the place
// strictly overlaps q. excludeID skips a booking (its own row, when
// re-validating a time edit); pass 0 to check them all.
func (r *BookingRepository) HasOverlapping(ctx context.Context, placeID int64, q timerange.Range, excludeID int64) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("place_id = ?", placeID).
		Where("status IN ?", []string{string(domain.BookingPending), string(domain.BookingConfirmed)}).
		Where("start_time < ? AND end_time > ?", q.End, q.Start)
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

type BookingFilter struct {
	Status       domain.BookingStatus
	UpcomingOnly bool
	PastOnly     bool
}

func applyFilter(tx *gorm.DB, f BookingFilter, now time.Time) *gorm.DB {
	if f.Status != "" {
		tx = tx.Where("status = ?", string(f.Status))
	}
	if f.UpcomingOnly {
		tx = tx.Where("start_time > ?", now)
	}
	if f.PastOnly {
		tx = tx.Where("end_time <= ?", now)
	}
	return tx
}

func (r *BookingRepository) ListForUser(ctx context.Context, userID int64, f BookingFilter) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID)
	tx = applyFilter(tx, f, time.Now().UTC())
	if err := tx.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) ListForPlace(ctx context.Context, placeID int64, f BookingFilter) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).Where("place_id = ?", placeID)
	tx = applyFilter(tx, f, time.Now().UTC())
	if err := tx.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// ListActivePastEnd returns pending/confirmed bookings whose end time
// has already passed; the completion job feeds on this.
func (r *BookingRepository) ListActivePastEnd(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	var ms []bookingModel
	tx := r.db.WithContext(ctx).
		Where("status IN ?", []string{string(domain.BookingPending), string(domain.BookingConfirmed)}).
		Where("end_time <= ?", now).
		Order("id ASC").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}
