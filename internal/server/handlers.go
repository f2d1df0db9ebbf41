package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vikrant82/elnet-dashboard/internal/logger"
	"github.com/vikrant82/elnet-dashboard/internal/models"
)

// Units-per-kWh conversion for the derived load averages: balance units
// divided by 8.33 approximates rupees per kWh on this tariff.
const unitRate = 8.33

const (
	defaultIntervalHours = 24
	defaultGroupMinutes  = 30
	defaultRechargeLimit = 10
)

// dashPoint is one aggregation bucket on the wire.
type dashPoint struct {
	Timestamp  string  `json:"timestamp"`
	AmountUsed float64 `json:"amount_used"`
}

// handleDashData serves GET /dash_data: usage sums in fixed-width buckets
// over a trailing window. Both parameters must be integers when present.
func (s *Server) handleDashData(w http.ResponseWriter, r *http.Request) {
	interval, err1 := queryInt(r, "interval", defaultIntervalHours)
	group, err2 := queryInt(r, "group", defaultGroupMinutes)
	if err1 != nil || err2 != nil || interval < 1 || group < 1 {
		writeError(w, http.StatusBadRequest, "Invalid interval or group parameter")
		return
	}

	buckets, err := s.store.GetBucketedUsage(interval, group)
	if err != nil {
		logger.Error("failed to load bucketed usage", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load usage data")
		return
	}

	points := make([]dashPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, dashPoint{
			Timestamp:  b.BucketStart.UTC().Format(http.TimeFormat),
			AmountUsed: b.AmountUsed,
		})
	}

	writeJSON(w, http.StatusOK, points)
}

// homeResponse is the dashboard index payload. Pointer fields render as
// null when the live API is unreachable; the endpoint still returns 200 so
// the dashboard degrades instead of erroring.
type homeResponse struct {
	CurrentDayEB   *float64 `json:"current_day_eb"`
	CurrentDayDG   *float64 `json:"current_day_dg"`
	CurrentMonthEB *float64 `json:"current_month_eb"`
	CurrentMonthDG *float64 `json:"current_month_dg"`
	MeterBalance   *float64 `json:"meter_balance"`
	DailyAvgEB     *float64 `json:"daily_avg_eb"`
	DailyAvgDG     *float64 `json:"daily_avg_dg"`
	MonthlyAvgEB   *float64 `json:"monthly_avg_eb"`
	MonthlyAvgDG   *float64 `json:"monthly_avg_dg"`
}

// handleHome serves GET /: the live aggregate view plus derived average
// loads in watts.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	home, err := s.home.FetchHome(r.Context())
	if err != nil {
		logger.Error("failed to fetch home data", "error", err)
		writeJSON(w, http.StatusOK, homeResponse{})
		return
	}

	now := s.now().In(s.loc)
	dayHours := now.Sub(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)).Hours()
	monthHours := now.Sub(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)).Hours()

	resp := homeResponse{
		CurrentDayEB:   &home.CurrentDayEB,
		CurrentDayDG:   &home.CurrentDayDG,
		CurrentMonthEB: &home.CurrentMonthEB,
		CurrentMonthDG: &home.CurrentMonthDG,
		MeterBalance:   &home.MeterBalance,
		DailyAvgEB:     avgWatts(home.CurrentDayEB, dayHours),
		DailyAvgDG:     avgWatts(home.CurrentDayDG, dayHours),
		MonthlyAvgEB:   avgWatts(home.CurrentMonthEB, monthHours),
		MonthlyAvgDG:   avgWatts(home.CurrentMonthDG, monthHours),
	}

	writeJSON(w, http.StatusOK, resp)
}

// avgWatts converts a balance amount spent over a span of hours into an
// average load in watts. Nil when the span is degenerate.
func avgWatts(amount, hours float64) *float64 {
	if hours <= 0 {
		return nil
	}
	v := amount / hours / unitRate * 1000
	return &v
}

// handleRecharges serves GET /recharges: the newest recharge records.
func (s *Server) handleRecharges(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultRechargeLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "Invalid limit parameter")
		return
	}

	records, err := s.store.GetRecentRecharges(limit)
	if err != nil {
		logger.Error("failed to load recharges", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load recharges")
		return
	}
	if records == nil {
		records = []models.UsageRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
