package databases

import (
	"sort"
	"time"

	"github.com/linesmerrill/accident-recon-api/models"
)

// The Summarize functions fold a snapshot of records into a report in one pass.
// Counts commute; money is summed in sorted order so the floating point total
// does not depend on the order the store returned the records in.

func sumSorted(values []float64) float64 {
	sort.Float64s(values)
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// SummarizeCases builds case statistics as of now
func SummarizeCases(cases []models.Case, now time.Time) models.CaseStatistics {
	stats := models.CaseStatistics{
		Total:      len(cases),
		ByStatus:   make(map[models.CaseStatus]int),
		ByPriority: make(map[models.Priority]int),
	}
	daysOpen := 0
	for _, c := range cases {
		stats.ByStatus[c.Status]++
		stats.ByPriority[c.Priority]++
		if c.IsOverdue(now) {
			stats.OverdueCount++
		}
		daysOpen += c.DaysOpen(now)
	}
	if stats.Total > 0 {
		stats.AverageDaysOpen = float64(daysOpen) / float64(stats.Total)
	}
	return stats
}

// SummarizeAccidents builds accident statistics. AverageDamage is over the
// accidents that carry an estimate.
func SummarizeAccidents(accidents []models.Accident) models.AccidentStatistics {
	stats := models.AccidentStatistics{
		Total:           len(accidents),
		BySeverity:      make(map[models.Severity]int),
		ByWeather:       make(map[models.Weather]int),
		ByRoadCondition: make(map[models.RoadCondition]int),
	}
	damages := make([]float64, 0, len(accidents))
	for _, a := range accidents {
		stats.BySeverity[a.Severity()]++
		stats.ByWeather[a.Weather]++
		stats.ByRoadCondition[a.RoadCondition]++
		stats.TotalInjuries += a.Injuries
		stats.TotalFatalities += a.Fatalities
		if a.EstimatedDamage != nil {
			damages = append(damages, *a.EstimatedDamage)
		}
	}
	stats.AccidentsWithDamage = len(damages)
	stats.TotalDamage = sumSorted(damages)
	if stats.AccidentsWithDamage > 0 {
		stats.AverageDamage = stats.TotalDamage / float64(stats.AccidentsWithDamage)
	}
	return stats
}

// SummarizeClaims builds insurance claim statistics
func SummarizeClaims(claims []models.InsuranceClaim) models.ClaimStatistics {
	stats := models.ClaimStatistics{
		Total:    len(claims),
		ByStatus: make(map[models.ClaimStatus]int),
		ByType:   make(map[models.ClaimType]int),
	}
	var claimed, approved, paid, outstanding []float64
	for _, c := range claims {
		stats.ByStatus[c.Status]++
		stats.ByType[c.Type]++
		if c.IsPending() {
			stats.PendingCount++
		}
		if c.IsResolved() {
			stats.ResolvedCount++
		}
		claimed = append(claimed, c.Amount)
		if c.ApprovedAmount != nil {
			approved = append(approved, *c.ApprovedAmount)
		}
		if c.PaidAmount != nil {
			paid = append(paid, *c.PaidAmount)
		}
		outstanding = append(outstanding, c.OutstandingAmount())
	}
	stats.TotalClaimed = sumSorted(claimed)
	stats.TotalApproved = sumSorted(approved)
	stats.TotalPaid = sumSorted(paid)
	stats.TotalOutstanding = sumSorted(outstanding)
	return stats
}
