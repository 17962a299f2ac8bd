package engine

import (
	"fmt"
	"testing"

	"guardian-engine-go/internal/models"
)

func testThresholds() models.AnomalyThresholds {
	return models.AnomalyThresholds{
		WindowDays:        7,
		ModificationLimit: 3,
		GrowthFactorLimit: "10",
		LowOutputRatio:    "0.3",
		HighEnergyLevel:   10,
		DuplicateLimit:    1,
	}
}

// reportsOn builds one report per consecutive day starting 2025-03-01.
func reportsOn(metrics []models.ReportMetrics) []models.Report {
	reports := make([]models.Report, 0, len(metrics))
	for i, m := range metrics {
		reports = append(reports, models.Report{
			UserId:  "user1",
			Date:    fmt.Sprintf("2025-03-%02d", i+1),
			Metrics: m,
		})
	}
	return reports
}

func TestDetectAnomalies_EmptyWindow(t *testing.T) {
	flags := DetectAnomalies(nil, 50, testThresholds())
	if flags.Any() {
		t.Error("No reports should raise no flags")
	}
}

func TestDetectAnomalies_CleanWindow(t *testing.T) {
	metrics := []models.ReportMetrics{
		{Views: 400, Likes: 40, Replies: 12},
		{Views: 450, Likes: 38, Replies: 15},
		{Views: 380, Likes: 45, Replies: 10},
		{Views: 500, Likes: 50, Replies: 14},
		{Views: 420, Likes: 41, Replies: 11},
	}

	flags := DetectAnomalies(reportsOn(metrics), 12, testThresholds())
	if flags.Any() {
		t.Errorf("Organic-looking reports should raise no flags, got %+v", flags)
	}
}

func TestDetectAnomalies_SuspiciousPattern(t *testing.T) {
	// Seven identical reports in a row: pasting yesterday's numbers.
	same := models.ReportMetrics{Views: 500, Likes: 50, Replies: 20}
	metrics := make([]models.ReportMetrics, 7)
	for i := range metrics {
		metrics[i] = same
	}

	flags := DetectAnomalies(reportsOn(metrics), 5, testThresholds())
	if !flags.SuspiciousPattern {
		t.Error("Expected SuspiciousPattern for 7 identical reports")
	}
}

func TestDetectAnomalies_InconsistentGrowth(t *testing.T) {
	metrics := []models.ReportMetrics{
		{Views: 100, Likes: 10, Replies: 3},
		{Views: 1500, Likes: 11, Replies: 3}, // 15x views overnight
	}

	flags := DetectAnomalies(reportsOn(metrics), 5, testThresholds())
	if !flags.InconsistentGrowth {
		t.Error("Expected InconsistentGrowth for a 15x day-over-day jump")
	}
}

func TestDetectAnomalies_GrowthNeedsConsecutiveDays(t *testing.T) {
	reports := []models.Report{
		{UserId: "user1", Date: "2025-03-01", Metrics: models.ReportMetrics{Views: 100}},
		{UserId: "user1", Date: "2025-03-05", Metrics: models.ReportMetrics{Views: 1500}},
	}

	flags := DetectAnomalies(reports, 5, testThresholds())
	if flags.InconsistentGrowth {
		t.Error("A jump across a multi-day gap is not day-over-day growth")
	}
}

func TestDetectAnomalies_FrequentModification(t *testing.T) {
	reports := reportsOn([]models.ReportMetrics{
		{Views: 100}, {Views: 120}, {Views: 110},
	})
	reports[0].ModificationCount = 2
	reports[2].ModificationCount = 2

	flags := DetectAnomalies(reports, 5, testThresholds())
	if !flags.FrequentModification {
		t.Error("Expected FrequentModification for 4 edits against a limit of 3")
	}
}

func TestDetectAnomalies_HighEnergyLowOutput(t *testing.T) {
	// 10 baseline days around 1000 output, then a 7-day window near zero.
	metrics := make([]models.ReportMetrics, 0, 17)
	for i := 0; i < 10; i++ {
		metrics = append(metrics, models.ReportMetrics{Views: 900, Likes: 80, Replies: 20})
	}
	for i := 0; i < 7; i++ {
		metrics = append(metrics, models.ReportMetrics{Views: 10 + i, Likes: 1, Replies: 1})
	}

	flags := DetectAnomalies(reportsOn(metrics), 15, testThresholds())
	if !flags.HighEnergyLowOutput {
		t.Error("Expected HighEnergyLowOutput for a collapsed window at level 15")
	}
}

func TestDetectAnomalies_LowOutputIgnoresLowLevels(t *testing.T) {
	metrics := make([]models.ReportMetrics, 0, 17)
	for i := 0; i < 10; i++ {
		metrics = append(metrics, models.ReportMetrics{Views: 900, Likes: 80, Replies: 20})
	}
	for i := 0; i < 7; i++ {
		metrics = append(metrics, models.ReportMetrics{Views: 10 + i, Likes: 1, Replies: 1})
	}

	flags := DetectAnomalies(reportsOn(metrics), 5, testThresholds())
	if flags.HighEnergyLowOutput {
		t.Error("Low output below the high-energy level is not anomalous")
	}
}

func TestDetectAnomalies_LowOutputNeedsBaseline(t *testing.T) {
	metrics := make([]models.ReportMetrics, 0, 5)
	for i := 0; i < 5; i++ {
		metrics = append(metrics, models.ReportMetrics{Views: 5, Likes: 1, Replies: 0})
	}

	flags := DetectAnomalies(reportsOn(metrics), 20, testThresholds())
	if flags.HighEnergyLowOutput {
		t.Error("Without history outside the window there is no baseline to compare against")
	}
}
