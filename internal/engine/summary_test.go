package engine

import (
	"testing"

	"guardian-engine-go/internal/models"
)

func TestSummarizeHistory_Empty(t *testing.T) {
	summary := SummarizeHistory(nil)
	if summary.DaysReported != 0 || summary.TotalEarned != 0 {
		t.Errorf("Empty history should summarize to zero, got %+v", summary)
	}
}

func TestSummarizeHistory(t *testing.T) {
	records := []models.EnergyHistoryRecord{
		{
			Id: "user1_2025-03-03", UserId: "user1", Date: "2025-03-03",
			Breakdown:   models.EnergyBreakdown{DailyReport: 10, StreakBonus: 2},
			TotalEarned: 12, StreakDay: 1,
		},
		{
			Id: "user1_2025-03-04", UserId: "user1", Date: "2025-03-04",
			Breakdown:   models.EnergyBreakdown{DailyReport: 10, StreakBonus: 2, PerformanceBonus: 10},
			TotalEarned: 22, StreakDay: 2,
		},
		{
			Id: "user1_2025-03-05", UserId: "user1", Date: "2025-03-05",
			Breakdown:   models.EnergyBreakdown{DailyReport: 10, StreakBonus: 2, PerformanceBonus: 3},
			TotalEarned: 15, StreakDay: 3,
		},
	}

	summary := SummarizeHistory(records)

	if summary.DaysReported != 3 {
		t.Errorf("Expected 3 days reported, got %d", summary.DaysReported)
	}
	if summary.TotalEarned != 49 {
		t.Errorf("Expected 49E total, got %d", summary.TotalEarned)
	}
	if summary.Breakdown.DailyReport != 30 || summary.Breakdown.StreakBonus != 6 || summary.Breakdown.PerformanceBonus != 13 {
		t.Errorf("Unexpected breakdown: %+v", summary.Breakdown)
	}
	if summary.BestDate != "2025-03-04" || summary.BestDayEarned != 22 {
		t.Errorf("Expected best day 2025-03-04 (22E), got %s (%dE)", summary.BestDate, summary.BestDayEarned)
	}
	if summary.MaxStreakDay != 3 {
		t.Errorf("Expected max streak day 3, got %d", summary.MaxStreakDay)
	}
	if summary.FromDate != "2025-03-03" || summary.ToDate != "2025-03-05" {
		t.Errorf("Expected window 2025-03-03..2025-03-05, got %s..%s", summary.FromDate, summary.ToDate)
	}
	want := float64(49) / 3
	if summary.AveragePerDay != want {
		t.Errorf("Expected average %.2f, got %.2f", want, summary.AveragePerDay)
	}
}
