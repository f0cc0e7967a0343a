package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
)

// AttendanceLog records one salesperson work day. Date is truncated to UTC
// midnight and unique per salesperson.
type AttendanceLog struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SalespersonID uuid.UUID              `gorm:"column:salesperson_id;type:uuid;not null;uniqueIndex:idx_attendance_salesperson_date"`
	Date          time.Time              `gorm:"column:date;not null;uniqueIndex:idx_attendance_salesperson_date"`
	LoginTime     time.Time              `gorm:"column:login_time;not null"`
	LogoutTime    *time.Time             `gorm:"column:logout_time"`
	TotalHours    *decimal.Decimal       `gorm:"column:total_hours;type:numeric(5,2)"`
	Status        enums.AttendanceStatus `gorm:"column:status;type:text;not null"`
	Salesperson   *User                  `gorm:"foreignKey:SalespersonID"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
