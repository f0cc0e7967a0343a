package controllers

import (
	"net/http"
	"time"

	"github.com/developersvyapar-netizen/vyaapar-backend/api/responses"
	"github.com/developersvyapar-netizen/vyaapar-backend/api/validators"
	attendancesvc "github.com/developersvyapar-netizen/vyaapar-backend/internal/attendance"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/logger"
)

// AttendanceClockIn opens the caller's shift for today.
func AttendanceClockIn(svc attendancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		salespersonID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ClockIn(r.Context(), salespersonID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// AttendanceClockOut closes the caller's shift for today.
func AttendanceClockOut(svc attendancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		salespersonID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.ClockOut(r.Context(), salespersonID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, view)
	}
}

// AttendanceHistory returns the caller's attendance log, newest first.
func AttendanceHistory(svc attendancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		salespersonID, _, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logs, page, err := svc.History(r.Context(), salespersonID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"attendance": logs,
			"pagination": page,
		})
	}
}

// AttendanceDailyReport returns all shifts for one day. Admin only.
// The date query param defaults to today (UTC).
func AttendanceDailyReport(svc attendancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := validators.ParseQueryDate(r, "date", time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		logs, page, err := svc.DailyReport(r.Context(), date, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"date":       attendancesvc.Day(date).Format("2006-01-02"),
			"attendance": logs,
			"pagination": page,
		})
	}
}

// AttendanceCloseStale marks open shifts from prior days INCOMPLETE. Admin only.
func AttendanceCloseStale(svc attendancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		closed, err := svc.CloseStale(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil && closed > 0 {
			ctx := logg.WithField(r.Context(), "count", closed)
			logg.Info(ctx, "attendance.stale_closed")
		}
		responses.WriteSuccess(w, map[string]any{"closed": closed})
	}
}
