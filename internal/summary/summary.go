// Package summary builds the daily usage summary message.
package summary

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/vikrant82/elnet-dashboard/internal/models"
)

// Build renders the daily summary from the live aggregate data, with an
// optional sparkline of the day's bucketed usage when enough buckets exist.
func Build(home *models.HomeData, buckets []models.UsageBucket, symbol string) string {
	var b strings.Builder

	b.WriteString("*Daily Power Usage Summary*\n\n")
	fmt.Fprintf(&b, "Today's EB Usage: %s%.2f\n", symbol, home.CurrentDayEB)
	fmt.Fprintf(&b, "Today's DG Usage: %s%.2f\n", symbol, home.CurrentDayDG)
	fmt.Fprintf(&b, "Month's EB Usage: %s%.2f\n", symbol, home.CurrentMonthEB)
	fmt.Fprintf(&b, "Month's DG Usage: %s%.2f\n", symbol, home.CurrentMonthDG)
	fmt.Fprintf(&b, "Meter Balance: %s%.2f", symbol, home.MeterBalance)

	if len(buckets) >= 2 {
		series := make([]float64, len(buckets))
		for i, bucket := range buckets {
			series[i] = bucket.AmountUsed
		}
		b.WriteString("\n\n```\n")
		b.WriteString(asciigraph.Plot(series, asciigraph.Height(5)))
		b.WriteString("\n```")
	}

	return b.String()
}
