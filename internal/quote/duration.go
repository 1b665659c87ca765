package quote

import (
	"math"

	"bks/internal"
)

const (
	minEstimatedDays = 1
	maxEstimatedDays = 10

	// fallback pace when no component carries labor data
	areaPerDay = 50.0
)

// EstimateDays estimates the work duration from the labor-days figures the
// matched components carry. When none of the items has labor data it falls
// back to a coarse one-day-per-50-m² heuristic over the area-based lines;
// that figure is approximate, not authoritative.
func EstimateDays(items []internal.QuoteItem) int {
	var laborDays float64
	for _, it := range items {
		if it.LaborMax != nil && *it.LaborMax > 0 {
			laborDays += *it.LaborMax * it.Quantity
		}
	}
	if laborDays > 0 {
		return clampDays(int(math.Ceil(laborDays)))
	}

	var area float64
	for _, it := range items {
		if it.Unit == UnitSquareMeter {
			area += it.Quantity
		}
	}
	return clampDays(int(math.Ceil(area / areaPerDay)))
}

func clampDays(days int) int {
	if days < minEstimatedDays {
		return minEstimatedDays
	}
	if days > maxEstimatedDays {
		return maxEstimatedDays
	}
	return days
}
