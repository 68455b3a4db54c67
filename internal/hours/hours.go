// Package hours derives a section's total weekly load from its schedule.
package hours

import (
	"time"

	"github.com/ElCzar/secchub-planning/types"
)

// Default is the fallback weekly load used when a section has no usable
// schedule. The backend contract treats zero-hour assignments as meaningless,
// so an empty or malformed schedule still produces a positive load.
const Default = 4

const clockLayout = "15:04"

// Compute derives the total weekly hours from the given schedule entries.
//
// For each entry with both times present and parseable, the end-of-day minute
// minus the start-of-day minute is accumulated, clamped to >= 0. The total is
// converted to hours rounding up to the nearest whole hour. Entries with a
// missing or malformed time are skipped.
//
// Pure and total: never fails. Returns Default when the entry list is empty
// or sums to zero.
//
// Parameters:
//   - entries: Weekly time blocks of the section
//
// Returns:
//   - int: Total weekly hours, always >= 1
func Compute(entries []types.ScheduleEntry) int {
	totalMinutes := 0

	for _, e := range entries {
		if e.StartTime == "" || e.EndTime == "" {
			continue
		}

		start, err := time.Parse(clockLayout, e.StartTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(clockLayout, e.EndTime)
		if err != nil {
			continue
		}

		minutes := int(end.Sub(start).Minutes())
		if minutes < 0 {
			minutes = 0
		}
		totalMinutes += minutes
	}

	if totalMinutes == 0 {
		return Default
	}

	// Round up to the next whole hour.
	return (totalMinutes + 59) / 60
}
