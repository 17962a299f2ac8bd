package engine

import (
	"github.com/shopspring/decimal"

	"guardian-engine-go/internal/models"
)

// GrantParams are the inputs of one energy grant. Recent is the user's
// own history window (used only for the weekly bonus); the function has
// no other state.
type GrantParams struct {
	Date      string
	StreakDay int
	Metrics   models.ReportMetrics
	Goal      models.TeamGoal
	Tuning    models.EnergyTuning
	Recent    []models.EnergyHistoryRecord
}

// GrantEnergy computes the energy breakdown one reporting event earns.
// Pure function of its params; every field is clamped to >= 0.
func GrantEnergy(p GrantParams) models.EnergyBreakdown {
	if !p.Metrics.HasActivity() {
		// A report with no activity earns nothing at all.
		return models.EnergyBreakdown{}
	}

	base := clampNonNegative(p.Tuning.DailyReportBase)

	return models.EnergyBreakdown{
		DailyReport:      base,
		StreakBonus:      streakBonusFor(p.StreakDay, p.Tuning.StreakTiers),
		PerformanceBonus: performanceBonus(base, p.Metrics, p.Goal, p.Tuning.PerformanceCap),
		WeeklyBonus:      weeklyBonus(p.Date, p.Tuning, p.Recent),
	}
}

// streakBonusFor picks the bonus of the highest tier whose FromDay the
// streak has reached. Tiers are validated ascending at registry load, so
// the step function is non-decreasing in streakDay.
func streakBonusFor(streakDay int, tiers []models.StreakTier) int {
	bonus := 0
	for _, tier := range tiers {
		if streakDay >= tier.FromDay {
			bonus = tier.Bonus
		}
	}
	return clampNonNegative(bonus)
}

// performanceBonus scales the daily base by the average achievement
// ratio of the reported output metrics against the team goal, capped at
// the configured multiple of the base.
func performanceBonus(base int, m models.ReportMetrics, goal models.TeamGoal, capMultiple string) int {
	ratio := achievementRatio(m, goal)
	if ratio.IsZero() {
		return 0
	}
	capRatio, err := decimal.NewFromString(capMultiple)
	if err != nil || capRatio.IsNegative() {
		capRatio = decimal.Zero
	}
	if ratio.GreaterThan(capRatio) {
		ratio = capRatio
	}
	bonus := decimal.NewFromInt(int64(base)).Mul(ratio).IntPart()
	return clampNonNegative(int(bonus))
}

// achievementRatio averages metric/goal across the goal metrics that
// have a target. Exact decimal math; no rounding until the final grant.
func achievementRatio(m models.ReportMetrics, goal models.TeamGoal) decimal.Decimal {
	sum := decimal.Zero
	count := 0

	add := func(actual, target int) {
		if target <= 0 {
			return
		}
		sum = sum.Add(decimal.NewFromInt(int64(actual)).Div(decimal.NewFromInt(int64(target))))
		count++
	}

	add(m.Views, goal.DailyViews)
	add(m.Likes, goal.DailyLikes)
	add(m.Replies, goal.DailyReplies)

	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}

// weeklyBonus pays out only on the configured weekday, and only when the
// user reported on every day since that weekday's previous occurrence.
func weeklyBonus(date string, tuning models.EnergyTuning, recent []models.EnergyHistoryRecord) int {
	if tuning.WeeklyBonus <= 0 {
		return 0
	}
	day, err := ParseDay(date)
	if err != nil {
		return 0
	}
	if day.Weekday().String() != tuning.WeeklyBonusWeekday {
		return 0
	}

	reported := make(map[string]bool, len(recent))
	for _, rec := range recent {
		reported[rec.Date] = true
	}
	// The previous occurrence was 7 days ago; the 6 days in between all
	// need a history record. Today's report is the one being granted.
	for i := 1; i <= 6; i++ {
		if !reported[day.AddDate(0, 0, -i).Format(models.DateFormat)] {
			return 0
		}
	}
	return clampNonNegative(tuning.WeeklyBonus)
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
