package engine

import "guardian-engine-go/internal/models"

// SummarizeHistory aggregates a window of history records into a single
// summary. Pure; this is the only aggregation path for read-side
// reporting so "total earned over period" has one source of truth.
func SummarizeHistory(records []models.EnergyHistoryRecord) models.EnergyHistorySummary {
	summary := models.EnergyHistorySummary{}
	if len(records) == 0 {
		return summary
	}

	for _, rec := range records {
		if summary.FromDate == "" || rec.Date < summary.FromDate {
			summary.FromDate = rec.Date
		}
		if rec.Date > summary.ToDate {
			summary.ToDate = rec.Date
		}

		summary.DaysReported++
		summary.TotalEarned += rec.TotalEarned
		summary.Breakdown.DailyReport += rec.Breakdown.DailyReport
		summary.Breakdown.StreakBonus += rec.Breakdown.StreakBonus
		summary.Breakdown.PerformanceBonus += rec.Breakdown.PerformanceBonus
		summary.Breakdown.WeeklyBonus += rec.Breakdown.WeeklyBonus

		if rec.TotalEarned > summary.BestDayEarned || summary.BestDate == "" {
			summary.BestDayEarned = rec.TotalEarned
			summary.BestDate = rec.Date
		}
		if rec.StreakDay > summary.MaxStreakDay {
			summary.MaxStreakDay = rec.StreakDay
		}
	}

	summary.AveragePerDay = float64(summary.TotalEarned) / float64(summary.DaysReported)
	return summary
}
