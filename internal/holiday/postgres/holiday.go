package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms/internal/core/datamodel"
	holidaydm "github.com/frahmantamala/hrms/internal/core/datamodel/holiday"
	"github.com/frahmantamala/hrms/internal/holiday"
	"gorm.io/gorm"
)

type HolidayRepository struct {
	db *gorm.DB
}

func NewHolidayRepository(db *gorm.DB) *HolidayRepository {
	return &HolidayRepository{db: db}
}

func fromRow(row *holidaydm.Holiday) *holiday.Holiday {
	return &holiday.Holiday{ID: row.ID, HolidayDate: row.HolidayDate, Name: row.Name, CreatedAt: row.CreatedAt}
}

func (r *HolidayRepository) ListBetween(ctx context.Context, from, to string) ([]*holiday.Holiday, error) {
	var rows []holidaydm.Holiday
	err := r.db.WithContext(ctx).
		Where("holiday_date >= ? AND holiday_date <= ?", from, to).
		Order("holiday_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*holiday.Holiday, 0, len(rows))
	for i := range rows {
		out = append(out, fromRow(&rows[i]))
	}
	return out, nil
}

func (r *HolidayRepository) Nearest(ctx context.Context, date string) (*holiday.Holiday, error) {
	var row holidaydm.Holiday
	err := r.db.WithContext(ctx).
		Where("holiday_date >= ?", date).
		Order("holiday_date ASC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, holiday.ErrHolidayNotFound
		}
		return nil, err
	}
	return fromRow(&row), nil
}

func (r *HolidayRepository) Create(ctx context.Context, h *holiday.Holiday) error {
	row := holidaydm.Holiday{HolidayDate: h.HolidayDate, Name: h.Name, CreatedAt: time.Now()}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if datamodel.IsDuplicateKey(err) {
			return holiday.ErrHolidayExists
		}
		return err
	}
	h.ID, h.CreatedAt = row.ID, row.CreatedAt
	return nil
}

func (r *HolidayRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&holidaydm.Holiday{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return holiday.ErrHolidayNotFound
	}
	return nil
}
