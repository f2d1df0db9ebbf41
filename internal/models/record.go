package models

import "time"

// UsageRecord is one persisted row of the power_usage ledger. Records are
// append-only; at most one of AmountUsed/RechargeAmount is nonzero.
// Timestamp is stored as naive UTC.
type UsageRecord struct {
	ID             int64     `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Balance        float64   `json:"balance"`
	PresentLoad    float64   `json:"present_load"`
	AmountUsed     float64   `json:"amount_used"`
	RechargeAmount float64   `json:"recharge_amount"`
}

// UsageBucket is one fixed-width aggregation window of usage sums.
type UsageBucket struct {
	BucketStart time.Time
	AmountUsed  float64
}
