package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAttendanceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:attendance_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  login_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  password_hash TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE attendance_logs (
  id TEXT PRIMARY KEY,
  salesperson_id TEXT NOT NULL,
  date DATETIME NOT NULL,
  login_time DATETIME NOT NULL,
  logout_time DATETIME,
  total_hours NUMERIC,
  status TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (salesperson_id, date)
);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newAttendanceService(t *testing.T, db *gorm.DB, now *time.Time) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), func() time.Time { return *now })
	require.NoError(t, err)
	return svc
}

func TestClockInAndOut(t *testing.T) {
	t.Parallel()

	db := setupAttendanceTestDB(t)
	ctx := context.Background()
	salespersonID := uuid.New()

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, &now)

	opened, err := svc.ClockIn(ctx, salespersonID)
	require.NoError(t, err)
	assert.Equal(t, enums.AttendanceStatusLoggedIn, opened.Status)
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), opened.Date)
	assert.Nil(t, opened.LogoutTime)

	// 8 hours 30 minutes on shift.
	now = now.Add(8*time.Hour + 30*time.Minute)

	closed, err := svc.ClockOut(ctx, salespersonID)
	require.NoError(t, err)
	assert.Equal(t, enums.AttendanceStatusLoggedOut, closed.Status)
	require.NotNil(t, closed.TotalHours)
	assert.True(t, closed.TotalHours.Equal(decimal.RequireFromString("8.5")), "got %s", closed.TotalHours)
}

func TestClockInTwiceSameDay(t *testing.T) {
	t.Parallel()

	db := setupAttendanceTestDB(t)
	ctx := context.Background()
	salespersonID := uuid.New()

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, &now)

	_, err := svc.ClockIn(ctx, salespersonID)
	require.NoError(t, err)

	now = now.Add(time.Hour)
	_, err = svc.ClockIn(ctx, salespersonID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestClockOutWithoutClockIn(t *testing.T) {
	t.Parallel()

	db := setupAttendanceTestDB(t)
	now := time.Date(2026, 8, 31, 17, 0, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, &now)

	_, err := svc.ClockOut(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestClockOutTwice(t *testing.T) {
	t.Parallel()

	db := setupAttendanceTestDB(t)
	ctx := context.Background()
	salespersonID := uuid.New()

	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, &now)

	_, err := svc.ClockIn(ctx, salespersonID)
	require.NoError(t, err)
	now = now.Add(4 * time.Hour)
	_, err = svc.ClockOut(ctx, salespersonID)
	require.NoError(t, err)

	_, err = svc.ClockOut(ctx, salespersonID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodePrecondition, coded.Code())
}

func TestHistoryNewestFirst(t *testing.T) {
	t.Parallel()

	db := setupAttendanceTestDB(t)
	ctx := context.Background()
	salespersonID := uuid.New()

	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, &now)

	for day := 0; day < 3; day++ {
		_, err := svc.ClockIn(ctx, salespersonID)
		require.NoError(t, err)
		now = now.Add(24 * time.Hour)
	}

	logs, page, err := svc.History(ctx, salespersonID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, int64(3), page.Total)
	assert.True(t, logs[0].Date.After(logs[1].Date))
	assert.True(t, logs[1].Date.After(logs[2].Date))
}

func TestDailyReport(t *testing.T) {
	t.Parallel()

	db := setupAttendanceTestDB(t)
	ctx := context.Background()

	now := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, &now)

	for i := 0; i < 2; i++ {
		_, err := svc.ClockIn(ctx, uuid.New())
		require.NoError(t, err)
		now = now.Add(15 * time.Minute)
	}

	logs, page, err := svc.DailyReport(ctx, time.Date(2026, 8, 31, 22, 0, 0, 0, time.UTC), pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	assert.Equal(t, int64(2), page.Total)

	logs, _, err = svc.DailyReport(ctx, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestCloseStaleMarksPriorOpenShifts(t *testing.T) {
	t.Parallel()

	db := setupAttendanceTestDB(t)
	ctx := context.Background()
	yesterdayOpen := uuid.New()
	todayOpen := uuid.New()

	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	svc := newAttendanceService(t, db, &now)

	_, err := svc.ClockIn(ctx, yesterdayOpen)
	require.NoError(t, err)

	now = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	_, err = svc.ClockIn(ctx, todayOpen)
	require.NoError(t, err)

	closed, err := svc.CloseStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	var stale models.AttendanceLog
	require.NoError(t, db.First(&stale, "salesperson_id = ?", yesterdayOpen).Error)
	assert.Equal(t, enums.AttendanceStatusIncomplete, stale.Status)

	var open models.AttendanceLog
	require.NoError(t, db.First(&open, "salesperson_id = ?", todayOpen).Error)
	assert.Equal(t, enums.AttendanceStatusLoggedIn, open.Status)
}

func TestDayTruncatesToUTCMidnight(t *testing.T) {
	t.Parallel()

	local := time.FixedZone("UTC+5:30", 5*3600+1800)
	day := Day(time.Date(2026, 9, 1, 2, 0, 0, 0, local)) // 20:30 Aug 31 UTC
	assert.Equal(t, time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), day)
}
