package holiday

import "time"

type Holiday struct {
	ID          int64     `gorm:"primaryKey"`
	HolidayDate string    `gorm:"column:holiday_date;type:varchar(10);uniqueIndex;not null"`
	Name        string    `gorm:"column:name;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (Holiday) TableName() string { return "holidays" }
