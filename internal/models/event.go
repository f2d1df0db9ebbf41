package models

import "fmt"

// EventType identifies a notification-worthy domain event.
type EventType int

const (
	// EventLowBalance fires when the balance drops below the configured
	// threshold (at most once per calendar day).
	EventLowBalance EventType = iota
	// EventGeneratorOn fires when power switches from grid to generator.
	EventGeneratorOn
	// EventGridRestored fires when power switches back from generator to grid.
	EventGridRestored
	// EventRecharge fires when the meter balance increases.
	EventRecharge
)

// Event is a domain event emitted by the transition engine or the ledger.
type Event struct {
	Type    EventType
	Balance float64
	// Amount is the recharge amount for EventRecharge, zero otherwise.
	Amount float64
}

// Text renders the event as a human-readable notification message with
// the given currency symbol. Amounts are always formatted to 2 decimals.
func (e Event) Text(symbol string) string {
	switch e.Type {
	case EventLowBalance:
		return fmt.Sprintf("Low balance alert: Your meter balance is %s%.2f.", symbol, e.Balance)
	case EventGeneratorOn:
		return fmt.Sprintf("Power is now on DG. Meter balance: %s%.2f.", symbol, e.Balance)
	case EventGridRestored:
		return fmt.Sprintf("Power is now off DG. Meter balance: %s%.2f.", symbol, e.Balance)
	case EventRecharge:
		return fmt.Sprintf("Meter recharged with %s%.2f. New balance: %s%.2f.", symbol, e.Amount, symbol, e.Balance)
	}
	return ""
}
