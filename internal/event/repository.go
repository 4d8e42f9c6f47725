package event

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/whatson-events/whatson-backend/internal/vendor"
)

type Repository interface {
	// CreateWithVendor persists the event and the owning vendor's
	// back-reference in one transaction: both commit or neither does.
	CreateWithVendor(ctx context.Context, e *Event) error
	// DeleteWithVendor removes the event and the vendor's back-reference
	// in one transaction.
	DeleteWithVendor(ctx context.Context, e *Event) error

	FindByID(ctx context.Context, id uint) (*Event, error)
	Update(ctx context.Context, e *Event) error

	// ListByDate returns all events on the exact calendar day, owning
	// vendor preloaded with the password hash omitted.
	ListByDate(ctx context.Context, date time.Time) ([]Event, error)
	// ListByVendor returns a vendor's events strictly before (past) or on
	// and after (upcoming) the cutoff day, ordered accordingly.
	ListByVendor(ctx context.Context, vendorID uint, cutoff time.Time, past bool) ([]Event, error)
	// ListAllByVendor returns every event of a vendor, oldest first.
	ListAllByVendor(ctx context.Context, vendorID uint) ([]Event, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWithVendor(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		res := tx.Model(&vendor.Vendor{}).
			Where("id = ?", e.VendorID).
			UpdateColumn("event_count", gorm.Expr("event_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *gormRepository) DeleteWithVendor(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Event{}, e.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&vendor.Vendor{}).
			Where("id = ? AND event_count > 0", e.VendorID).
			UpdateColumn("event_count", gorm.Expr("event_count - 1")).Error
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uint) (*Event, error) {
	var e Event
	err := r.db.WithContext(ctx).
		Preload("Vendor", withoutPassword).
		First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *gormRepository) Update(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *gormRepository) ListByDate(ctx context.Context, date time.Time) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Preload("Vendor", withoutPassword).
		Where("date = ?", date).
		Find(&events).Error
	return events, err
}

func (r *gormRepository) ListByVendor(ctx context.Context, vendorID uint, cutoff time.Time, past bool) ([]Event, error) {
	var events []Event
	q := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID)
	if past {
		q = q.Where("date < ?", cutoff).Order("date DESC")
	} else {
		q = q.Where("date >= ?", cutoff).Order("date ASC")
	}
	err := q.Find(&events).Error
	return events, err
}

func (r *gormRepository) ListAllByVendor(ctx context.Context, vendorID uint) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("date ASC").
		Find(&events).Error
	return events, err
}

// withoutPassword keeps the password hash out of vendor joins entirely,
// on top of it never being serialized.
func withoutPassword(db *gorm.DB) *gorm.DB {
	return db.Omit("password_hash")
}
