package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"guardian-engine-go/internal/models"
)

// DetectAnomalies compares a user's latest reports against their own
// short-term history and raises advisory flags for human review.
//
// recent may span more days than the detection window; the newest
// WindowDays entries form the window and anything older serves as the
// user's historical baseline. Self-relative by design: low-volume teams
// are only compared against themselves. The function never blocks or
// mutates anything, and false positives are acceptable.
func DetectAnomalies(recent []models.Report, currentLevel int, th models.AnomalyThresholds) models.AnomalyFlags {
	if len(recent) == 0 {
		return models.AnomalyFlags{}
	}

	reports := make([]models.Report, len(recent))
	copy(reports, recent)
	sort.Slice(reports, func(i, j int) bool { return reports[i].Date < reports[j].Date })

	windowDays := th.WindowDays
	if windowDays <= 0 {
		windowDays = 7
	}
	window := reports
	var baseline []models.Report
	if len(reports) > windowDays {
		baseline = reports[:len(reports)-windowDays]
		window = reports[len(reports)-windowDays:]
	}

	return models.AnomalyFlags{
		HighEnergyLowOutput:  lowOutputForLevel(window, baseline, currentLevel, th),
		FrequentModification: modificationsExceeded(window, th.ModificationLimit),
		InconsistentGrowth:   implausibleGrowth(window, th.GrowthFactorLimit),
		SuspiciousPattern:    duplicatePattern(window, th.DuplicateLimit),
	}
}

// reportOutput is the combined output volume of one report.
func reportOutput(r models.Report) int {
	return r.Metrics.Views + r.Metrics.Likes + r.Metrics.Replies
}

func averageOutput(reports []models.Report) decimal.Decimal {
	if len(reports) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, r := range reports {
		sum = sum.Add(decimal.NewFromInt(int64(reportOutput(r))))
	}
	return sum.Div(decimal.NewFromInt(int64(len(reports))))
}

// lowOutputForLevel flags a high-level user whose windowed output has
// collapsed relative to their own historical average. Without a baseline
// there is nothing to compare against.
func lowOutputForLevel(window, baseline []models.Report, currentLevel int, th models.AnomalyThresholds) bool {
	if currentLevel < th.HighEnergyLevel || len(baseline) == 0 {
		return false
	}
	ratio, err := decimal.NewFromString(th.LowOutputRatio)
	if err != nil || !ratio.IsPositive() {
		return false
	}
	historical := averageOutput(baseline)
	if !historical.IsPositive() {
		return false
	}
	return averageOutput(window).LessThan(historical.Mul(ratio))
}

func modificationsExceeded(window []models.Report, limit int) bool {
	if limit <= 0 {
		return false
	}
	edits := 0
	for _, r := range window {
		edits += r.ModificationCount
	}
	return edits > limit
}

// implausibleGrowth flags a day-over-day jump of any single metric above
// the configured factor between consecutive calendar days.
func implausibleGrowth(window []models.Report, factorLimit string) bool {
	limit, err := decimal.NewFromString(factorLimit)
	if err != nil || !limit.IsPositive() {
		return false
	}
	for i := 1; i < len(window); i++ {
		prev, cur := window[i-1], window[i]
		prevDay, err1 := ParseDay(prev.Date)
		curDay, err2 := ParseDay(cur.Date)
		if err1 != nil || err2 != nil || daysBetween(prevDay, curDay) != 1 {
			continue
		}
		pairs := [][2]int{
			{prev.Metrics.Views, cur.Metrics.Views},
			{prev.Metrics.Likes, cur.Metrics.Likes},
			{prev.Metrics.Replies, cur.Metrics.Replies},
		}
		for _, pair := range pairs {
			if pair[0] <= 0 {
				continue
			}
			factor := decimal.NewFromInt(int64(pair[1])).Div(decimal.NewFromInt(int64(pair[0])))
			if factor.GreaterThan(limit) {
				return true
			}
		}
	}
	return false
}

// duplicatePattern counts reports whose metrics are an exact copy of an
// earlier day in the window. More than limit copies looks like pasting
// yesterday's numbers instead of reporting.
func duplicatePattern(window []models.Report, limit int) bool {
	duplicates := 0
	for i := 1; i < len(window); i++ {
		if !window[i].Metrics.HasActivity() {
			continue
		}
		for j := 0; j < i; j++ {
			if window[i].Metrics.Equal(window[j].Metrics) {
				duplicates++
				break
			}
		}
	}
	return duplicates > limit
}
