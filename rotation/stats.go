/*
stats.go - Per-vendor workload scoring

PURPOSE:
  Aggregates a Schedule into per-vendor counts and points for display.
  Holidays are weighted double because a holiday shift costs more than a
  Sunday shift; the weighting is a fixed policy constant, not configurable.

SCOPE:
  Closed entries never contribute, no matter what stale VendorIDs they
  carry. Vendors appear in the output as soon as they hold one non-closed
  assignment - including inactive or deleted vendors with locked history,
  which is how "inactive (history)" reporting works upstream.
*/
package rotation

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Point weights per assignment type.
const (
	SundayPoints  = 1
	HolidayPoints = 2
)

// VendorStats is one vendor's accumulated workload for a year.
type VendorStats struct {
	VendorID     VendorID `json:"vendorId"`
	SundayCount  int      `json:"sundayCount"`
	HolidayCount int      `json:"holidayCount"`
	TotalPoints  int      `json:"totalPoints"`
}

// ComputeStats accumulates per-vendor counts over the schedule's non-closed
// entries. A nil schedule yields an empty result. The output is ordered by
// TotalPoints descending, then VendorID ascending, so it renders stably.
func ComputeStats(schedule *Schedule) []VendorStats {
	if schedule == nil {
		return nil
	}

	byVendor := make(map[VendorID]*VendorStats)
	for _, entry := range schedule.Entries {
		if entry.Closed {
			continue
		}
		for _, vid := range entry.VendorIDs {
			st, ok := byVendor[vid]
			if !ok {
				st = &VendorStats{VendorID: vid}
				byVendor[vid] = st
			}
			if entry.Type == EntrySunday {
				st.SundayCount++
				st.TotalPoints += SundayPoints
			} else {
				st.HolidayCount++
				st.TotalPoints += HolidayPoints
			}
		}
	}

	stats := make([]VendorStats, 0, len(byVendor))
	for _, st := range byVendor {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalPoints != stats[j].TotalPoints {
			return stats[i].TotalPoints > stats[j].TotalPoints
		}
		return stats[i].VendorID < stats[j].VendorID
	})
	return stats
}

// =============================================================================
// WORKLOAD SHARES
// =============================================================================

// VendorShare is a vendor's slice of the total workload, as a percentage.
type VendorShare struct {
	VendorID VendorID        `json:"vendorId"`
	Points   int             `json:"points"`
	Share    decimal.Decimal `json:"share"`
}

var hundred = decimal.NewFromInt(100)

// WorkloadShares converts stats into percentage shares of the total points,
// rounded to one decimal place. Preserves the input order. An all-zero or
// empty input yields shares of zero rather than dividing by zero.
func WorkloadShares(stats []VendorStats) []VendorShare {
	total := 0
	for _, st := range stats {
		total += st.TotalPoints
	}

	shares := make([]VendorShare, len(stats))
	for i, st := range stats {
		share := decimal.Zero
		if total > 0 {
			share = decimal.NewFromInt(int64(st.TotalPoints)).
				Mul(hundred).
				Div(decimal.NewFromInt(int64(total))).
				Round(1)
		}
		shares[i] = VendorShare{VendorID: st.VendorID, Points: st.TotalPoints, Share: share}
	}
	return shares
}
