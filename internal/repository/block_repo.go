package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"parkshare/internal/domain"
	"parkshare/internal/pkg/timerange"
)

type BlockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

type blockModel struct {
	ID               int64      `gorm:"column:id;primaryKey"`
	PlaceID          int64      `gorm:"column:place_id;index:idx_blocks_place_start;index:idx_blocks_place_end"`
	StartDatetime    time.Time  `gorm:"column:start_datetime;index:idx_blocks_place_start"`
	EndDatetime      time.Time  `gorm:"column:end_datetime;index:idx_blocks_place_end"`
	BlockType        string     `gorm:"column:block_type"`
	Reason           string     `gorm:"column:reason"`
	BookingID        *int64     `gorm:"column:booking_id;uniqueIndex"`
	IsRecurring      bool       `gorm:"column:is_recurring"`
	RecurringPattern *string    `gorm:"column:recurring_pattern"`
	RecurringEndDate *time.Time `gorm:"column:recurring_end_date"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (blockModel) TableName() string { return "blocked_periods" }

func toDomainBlock(m blockModel) *domain.BlockedPeriod {
	var pattern domain.RecurringPattern
	if m.RecurringPattern != nil {
		pattern = domain.RecurringPattern(*m.RecurringPattern)
	}
	return &domain.BlockedPeriod{
		ID:               m.ID,
		PlaceID:          m.PlaceID,
		StartDatetime:    m.StartDatetime,
		EndDatetime:      m.EndDatetime,
		BlockType:        domain.BlockType(m.BlockType),
		Reason:           m.Reason,
		BookingID:        m.BookingID,
		IsRecurring:      m.IsRecurring,
		RecurringPattern: pattern,
		RecurringEndDate: m.RecurringEndDate,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toBlockModel(b *domain.BlockedPeriod) blockModel {
	var pattern *string
	if b.RecurringPattern != "" {
		v := string(b.RecurringPattern)
		pattern = &v
	}
	return blockModel{
		ID:               b.ID,
		PlaceID:          b.PlaceID,
		StartDatetime:    b.StartDatetime,
		EndDatetime:      b.EndDatetime,
		BlockType:        string(b.BlockType),
		Reason:           b.Reason,
		BookingID:        b.BookingID,
		IsRecurring:      b.IsRecurring,
		RecurringPattern: pattern,
		RecurringEndDate: b.RecurringEndDate,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func toDomainBlocks(ms []blockModel) []domain.BlockedPeriod {
	out := make([]domain.BlockedPeriod, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBlock(m))
	}
	return out
}

func (r *BlockRepository) Create(ctx context.Context, b *domain.BlockedPeriod) error {
	m := toBlockModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBlock(m)
	return nil
}

func (r *BlockRepository) GetByID(ctx context.Context, id int64) (*domain.BlockedPeriod, error) {
	var m blockModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainBlock(m), nil
}

func (r *BlockRepository) Update(ctx context.Context, b *domain.BlockedPeriod) error {
	m := toBlockModel(b)
	return r.db.WithContext(ctx).Save(&m).Error
}

func (r *BlockRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&blockModel{}, id).Error
}

func (r *BlockRepository) ListForPlace(ctx context.Context, placeID int64) ([]domain.BlockedPeriod, error) {
	var ms []blockModel
	tx := r.db.WithContext(ctx).
		Where("place_id = ?", placeID).
		Order("id ASC").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBlocks(ms), nil
}

// ListNonRecurringOverlapping returns non-recurring blocks whose
// interval strictly overlaps q (touching does not count), ordered by
// id for a deterministic first match.
func (r *BlockRepository) ListNonRecurringOverlapping(ctx context.Context, placeID int64, q timerange.Range) ([]domain.BlockedPeriod, error) {
	var ms []blockModel
	tx := r.db.WithContext(ctx).
		Where("place_id = ? AND is_recurring = ?", placeID, false).
		Where("start_datetime < ? AND end_datetime > ?", q.End, q.Start).
		Order("id ASC").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBlocks(ms), nil
}

// ListRecurring returns every recurring block for the place; pattern
// expansion against concrete dates happens in the caller.
func (r *BlockRepository) ListRecurring(ctx context.Context, placeID int64) ([]domain.BlockedPeriod, error) {
	var ms []blockModel
	tx := r.db.WithContext(ctx).
		Where("place_id = ? AND is_recurring = ?", placeID, true).
		Order("id ASC").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBlocks(ms), nil
}

// ListMergeCandidates returns non-recurring owner-block/maintenance
// blocks overlapping q inclusively: blocks that merely touch the
// proposed interval are candidates too, so adjoining blocks coalesce.
// Booking-derived blocks are never merge candidates.
func (r *BlockRepository) ListMergeCandidates(ctx context.Context, placeID int64, q timerange.Range) ([]domain.BlockedPeriod, error) {
	var ms []blockModel
	tx := r.db.WithContext(ctx).
		Where("place_id = ? AND is_recurring = ?", placeID, false).
		Where("block_type IN ?", []string{string(domain.BlockOwner), string(domain.BlockMaintenance)}).
		Where("start_datetime <= ? AND end_datetime >= ?", q.End, q.Start).
		Order("id ASC").
		Find(&ms)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBlocks(ms), nil
}

// ReplaceOverlapping deletes the absorbed blocks and inserts the
// merged one atomically. The merge must never observe the delete
// without the insert.
func (r *BlockRepository) ReplaceOverlapping(ctx context.Context, deleteIDs []int64, b *domain.BlockedPeriod) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(deleteIDs) > 0 {
			if err := tx.Delete(&blockModel{}, deleteIDs).Error; err != nil {
				return err
			}
		}
		m := toBlockModel(b)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		*b = *toDomainBlock(m)
		return nil
	})
}

func (r *BlockRepository) GetForBooking(ctx context.Context, bookingID int64) (*domain.BlockedPeriod, error) {
	var m blockModel
	tx := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&m)
	if tx.Error != nil {
		if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, tx.Error
	}
	return toDomainBlock(m), nil
}
