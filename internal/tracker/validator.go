package tracker

import (
	"errors"
	"fmt"
	"time"

	"github.com/vikrant82/elnet-dashboard/internal/models"
)

// maxReadingAge is how far behind the wall clock a reading's timestamp may
// be before it is considered a stale replay from the API.
const maxReadingAge = 5 * time.Minute

// Validation sentinels. Rejected readings are dropped before any session
// state mutation or persistence.
var (
	ErrStaleReading      = errors.New("stale reading")
	ErrDegenerateReading = errors.New("degenerate all-zero reading")
)

// ValidateReading rejects stale or degenerate snapshots. now must be in
// the meter's civil timezone. The check is stateless.
func ValidateReading(r *models.Reading, now time.Time) error {
	if age := now.Sub(r.UpdatedOn); age > maxReadingAge {
		return fmt.Errorf("%w: reading is %s old", ErrStaleReading, age.Round(time.Second))
	}

	if r.Balance == 0 && r.EB == 0 && r.DG == 0 {
		return ErrDegenerateReading
	}

	return nil
}
