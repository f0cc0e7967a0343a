package attendance

import (
	"time"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// View is the API-facing projection of one attendance day.
type View struct {
	ID              uuid.UUID              `json:"id"`
	SalespersonID   uuid.UUID              `json:"salesperson_id"`
	SalespersonName string                 `json:"salesperson_name,omitempty"`
	Date            time.Time              `json:"date"`
	LoginTime       time.Time              `json:"login_time"`
	LogoutTime      *time.Time             `json:"logout_time,omitempty"`
	TotalHours      *decimal.Decimal       `json:"total_hours,omitempty"`
	Status          enums.AttendanceStatus `json:"status"`
}

// NewView projects an attendance log into its API representation.
func NewView(log *models.AttendanceLog) View {
	view := View{
		ID:            log.ID,
		SalespersonID: log.SalespersonID,
		Date:          log.Date,
		LoginTime:     log.LoginTime,
		LogoutTime:    log.LogoutTime,
		TotalHours:    log.TotalHours,
		Status:        log.Status,
	}
	if log.Salesperson != nil {
		view.SalespersonName = log.Salesperson.Name
	}
	return view
}
