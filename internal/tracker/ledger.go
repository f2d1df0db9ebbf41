package tracker

import (
	"fmt"

	"github.com/vikrant82/elnet-dashboard/internal/db"
	"github.com/vikrant82/elnet-dashboard/internal/models"
)

// usageSpikeCap bounds a plausible single-interval usage delta. Larger
// deltas are treated as data errors and recorded as zero usage.
const usageSpikeCap = 50.0

// Ledger turns accepted readings into accounting deltas and append-only
// usage records. The delta is computed against the last persisted record's
// balance, independent of the session state.
type Ledger struct {
	store *db.DB
}

// NewLedger creates a usage ledger over the given store.
func NewLedger(store *db.DB) *Ledger {
	return &Ledger{store: store}
}

// Record computes the usage or recharge delta for the reading and persists
// a record when the balance moved. Returns a recharge event when the
// balance increased. Consecutive readings with an unchanged balance are
// deduplicated (no new row).
func (l *Ledger) Record(r *models.Reading) (*models.Event, error) {
	last, err := l.store.GetLastRecord()
	if err != nil {
		return nil, fmt.Errorf("failed to read last record: %w", err)
	}

	var delta float64
	if last != nil {
		delta = last.Balance - r.Balance
	}

	var amountUsed, rechargeAmount float64
	var event *models.Event
	switch {
	case delta > 0 && delta < usageSpikeCap:
		amountUsed = delta
	case delta < 0:
		rechargeAmount = -delta
		event = &models.Event{
			Type:    models.EventRecharge,
			Amount:  rechargeAmount,
			Balance: r.Balance,
		}
	}
	// delta == 0 or delta >= usageSpikeCap: both amounts stay zero.

	if last != nil && last.Balance == r.Balance {
		return nil, nil
	}

	rec := &models.UsageRecord{
		Timestamp:      r.UpdatedOn.UTC(),
		Balance:        r.Balance,
		PresentLoad:    r.PresentLoad,
		AmountUsed:     amountUsed,
		RechargeAmount: rechargeAmount,
	}
	if err := l.store.InsertUsageRecord(rec); err != nil {
		return nil, err
	}

	return event, nil
}
