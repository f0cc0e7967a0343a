package attendance

import (
	"context"
	"time"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes attendance persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an attendance repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new attendance log.
func (r *Repository) Create(ctx context.Context, log *models.AttendanceLog) (*models.AttendanceLog, error) {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return nil, err
	}
	return log, nil
}

// FindBySalespersonAndDate loads the log for one salesperson on one UTC day.
func (r *Repository) FindBySalespersonAndDate(ctx context.Context, salespersonID uuid.UUID, date time.Time) (*models.AttendanceLog, error) {
	var log models.AttendanceLog
	err := r.db.WithContext(ctx).
		Where("salesperson_id = ? AND date = ?", salespersonID, date).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// Update applies the provided column updates to a log.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.AttendanceLog{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListBySalesperson returns a salesperson's logs, newest day first.
func (r *Repository) ListBySalesperson(ctx context.Context, salespersonID uuid.UUID, params pagination.Params) ([]models.AttendanceLog, int64, error) {
	norm := pagination.Normalize(params)

	query := r.db.WithContext(ctx).
		Model(&models.AttendanceLog{}).
		Where("salesperson_id = ?", salespersonID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var found []models.AttendanceLog
	err := query.
		Order("date DESC").
		Limit(norm.Limit).
		Offset(norm.Offset()).
		Find(&found).Error
	if err != nil {
		return nil, 0, err
	}
	return found, total, nil
}

// ListByDate returns every log on one UTC day with the salesperson resolved.
func (r *Repository) ListByDate(ctx context.Context, date time.Time, params pagination.Params) ([]models.AttendanceLog, int64, error) {
	norm := pagination.Normalize(params)

	query := r.db.WithContext(ctx).
		Model(&models.AttendanceLog{}).
		Where("date = ?", date)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var found []models.AttendanceLog
	err := query.
		Preload("Salesperson").
		Order("login_time ASC").
		Limit(norm.Limit).
		Offset(norm.Offset()).
		Find(&found).Error
	if err != nil {
		return nil, 0, err
	}
	return found, total, nil
}

// MarkIncompleteBefore flags every still-open log from days before cutoff.
// Returns the number of rows affected.
func (r *Repository) MarkIncompleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.AttendanceLog{}).
		Where("status = ? AND date < ?", enums.AttendanceStatusLoggedIn, cutoff).
		UpdateColumn("status", enums.AttendanceStatusIncomplete)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
