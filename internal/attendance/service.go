package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgdb "github.com/developersvyapar-netizen/vyaapar-backend/pkg/db"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type attendanceRepo interface {
	Create(ctx context.Context, log *models.AttendanceLog) (*models.AttendanceLog, error)
	FindBySalespersonAndDate(ctx context.Context, salespersonID uuid.UUID, date time.Time) (*models.AttendanceLog, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListBySalesperson(ctx context.Context, salespersonID uuid.UUID, params pagination.Params) ([]models.AttendanceLog, int64, error)
	ListByDate(ctx context.Context, date time.Time, params pagination.Params) ([]models.AttendanceLog, int64, error)
	MarkIncompleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Service defines salesperson attendance operations.
type Service interface {
	ClockIn(ctx context.Context, salespersonID uuid.UUID) (*View, error)
	ClockOut(ctx context.Context, salespersonID uuid.UUID) (*View, error)
	History(ctx context.Context, salespersonID uuid.UUID, params pagination.Params) ([]View, pagination.Page, error)
	DailyReport(ctx context.Context, date time.Time, params pagination.Params) ([]View, pagination.Page, error)
	CloseStale(ctx context.Context) (int64, error)
}

type service struct {
	repo attendanceRepo
	now  func() time.Time
}

// NewService builds an attendance service. A nil clock defaults to time.Now.
func NewService(repo attendanceRepo, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("attendance repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) ClockIn(ctx context.Context, salespersonID uuid.UUID) (*View, error) {
	if salespersonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "salesperson identity missing")
	}

	loginAt := s.now().UTC()
	day := Day(loginAt)

	created, err := s.repo.Create(ctx, &models.AttendanceLog{
		ID:            uuid.New(),
		SalespersonID: salespersonID,
		Date:          day,
		LoginTime:     loginAt,
		Status:        enums.AttendanceStatusLoggedIn,
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "salesperson_date") || pkgdb.IsUniqueViolation(err, "date") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "already clocked in today")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create attendance log")
	}

	view := NewView(created)
	return &view, nil
}

func (s *service) ClockOut(ctx context.Context, salespersonID uuid.UUID) (*View, error) {
	if salespersonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "salesperson identity missing")
	}

	logoutAt := s.now().UTC()
	day := Day(logoutAt)

	log, err := s.repo.FindBySalespersonAndDate(ctx, salespersonID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no clock-in recorded today")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attendance log")
	}
	if log.Status != enums.AttendanceStatusLoggedIn {
		return nil, pkgerrors.New(pkgerrors.CodePrecondition, "already clocked out today")
	}

	hours := hoursBetween(log.LoginTime, logoutAt)
	if err := s.repo.Update(ctx, log.ID, map[string]any{
		"logout_time": logoutAt,
		"total_hours": hours,
		"status":      enums.AttendanceStatusLoggedOut,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update attendance log")
	}

	log.LogoutTime = &logoutAt
	log.TotalHours = &hours
	log.Status = enums.AttendanceStatusLoggedOut
	view := NewView(log)
	return &view, nil
}

func (s *service) History(ctx context.Context, salespersonID uuid.UUID, params pagination.Params) ([]View, pagination.Page, error) {
	if salespersonID == uuid.Nil {
		return nil, pagination.Page{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "salesperson identity missing")
	}
	found, total, err := s.repo.ListBySalesperson(ctx, salespersonID, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attendance logs")
	}
	return views(found), pagination.NewPage(params, total), nil
}

func (s *service) DailyReport(ctx context.Context, date time.Time, params pagination.Params) ([]View, pagination.Page, error) {
	found, total, err := s.repo.ListByDate(ctx, Day(date), params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attendance logs")
	}
	return views(found), pagination.NewPage(params, total), nil
}

// CloseStale marks logs from previous days that never clocked out as
// INCOMPLETE so reports do not show perpetual open shifts.
func (s *service) CloseStale(ctx context.Context) (int64, error) {
	affected, err := s.repo.MarkIncompleteBefore(ctx, Day(s.now()))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close stale attendance logs")
	}
	return affected, nil
}

// Day truncates a timestamp to UTC midnight, the attendance day key.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func hoursBetween(from, to time.Time) decimal.Decimal {
	if to.Before(from) {
		return decimal.Zero
	}
	minutes := to.Sub(from).Minutes()
	return decimal.NewFromFloat(minutes).Div(decimal.NewFromInt(60)).Round(2)
}

func views(found []models.AttendanceLog) []View {
	out := make([]View, 0, len(found))
	for i := range found {
		out = append(out, NewView(&found[i]))
	}
	return out
}
