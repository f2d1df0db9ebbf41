// Package models defines data structures and domain types.
package models

import "time"

// Reading is a single snapshot from the metering API. EB and DG are the
// grid and generator energy counters; both accumulate while their source
// is active. UpdatedOn is the meter's own clock in its local civil time.
type Reading struct {
	Balance     float64
	PresentLoad float64
	EB          float64
	DG          float64
	UpdatedOn   time.Time
}

// HomeData is the live aggregate view from the metering API's home
// endpoint. It is consumed by the daily summary and the dashboard index
// and is never persisted.
type HomeData struct {
	CurrentDayEB   float64 `json:"current_day_eb"`
	CurrentDayDG   float64 `json:"current_day_dg"`
	CurrentMonthEB float64 `json:"current_month_eb"`
	CurrentMonthDG float64 `json:"current_month_dg"`
	MeterBalance   float64 `json:"meter_balance"`
}
