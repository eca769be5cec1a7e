package http

import (
	"bytes"
	"errors"
	"net/http"

	"driverdash/internal/auth"
	"driverdash/internal/core"
	applog "driverdash/internal/log"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.CurrentSession(r)
	ctx := r.Context()

	dr := parseDateRange(r, s.dashboard)
	sum, err := s.dashboard.CurrentPeriod(ctx, sess.DriverID, dr.Start, dr.End)
	if err != nil && !errors.Is(err, core.ErrEmptyRange) {
		applog.FromContext(ctx).Error("Period summary failed", applog.FieldDriverID, sess.DriverID, applog.FieldError, err)
	}

	first, last := s.dashboard.CurrentMonthBounds()
	s.render(w, r, http.StatusOK, "dashboard.html", dashboardView{
		DriverName: sess.Name,
		Months:     newMonthCards(s.dashboard.PastMonths(ctx, sess.DriverID)),
		MinDate:    first.String(),
		MaxDate:    last.String(),
		Range:      dr,
		Period:     newPeriodView(dr, sum, err),
	})
}

// handlePeriodPartial renders the current period section for HTMX.
func (s *Server) handlePeriodPartial(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.CurrentSession(r)
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	dr := parseDateRange(r, s.dashboard)
	sum, err := s.dashboard.CurrentPeriod(ctx, sess.DriverID, dr.Start, dr.End)
	switch {
	case errors.Is(err, core.ErrEmptyRange):
		logger.Debug("Empty period selected",
			applog.FieldDriverID, sess.DriverID,
			applog.FieldRangeStart, dr.Start.String(),
			applog.FieldRangeEnd, dr.End.String())
	case err != nil:
		logger.Error("Period summary failed", applog.FieldDriverID, sess.DriverID, applog.FieldError, err)
		InternalServerError("Could not load the selected period").Write(w)
		return
	}

	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "period", newPeriodView(dr, sum, err)); err != nil {
		logger.Error("Template execution failed", applog.FieldError, err, "template", "period")
		InternalServerError("Could not render the selected period").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerPeriodLoaded(dr.Start.String(), dr.End.String()).
		BodyHTML(buf.String()).
		Write(w)
}

func (s *Server) handlePeriodJSON(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.CurrentSession(r)
	dr := parseDateRange(r, s.dashboard)
	sum, err := s.dashboard.CurrentPeriod(r.Context(), sess.DriverID, dr.Start, dr.End)
	if err != nil && !errors.Is(err, core.ErrEmptyRange) {
		applog.FromContext(r.Context()).Error("Period summary failed", applog.FieldDriverID, sess.DriverID, applog.FieldError, err)
		writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": "period unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, newPeriodJSON(dr, sum, err))
}

func (s *Server) handleMonthsJSON(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.CurrentSession(r)
	writeJSON(w, r, http.StatusOK, newMonthsJSON(s.dashboard.PastMonths(r.Context(), sess.DriverID)))
}
