package engine

import (
	"fmt"
	"time"

	"guardian-engine-go/internal/models"
)

// ParseDay parses a calendar date in the canonical YYYY-MM-DD format.
func ParseDay(date string) (time.Time, error) {
	day, err := time.Parse(models.DateFormat, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", date, err)
	}
	return day, nil
}

// daysBetween returns the whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// AdvanceStreak folds one report date into the user's streak state.
//
// The transition is deterministic: the day after the last report extends
// the streak, the same day is a no-op (duplicate submissions never
// double-increment), and any larger gap resets the streak to 1 with
// Broken set. A report dated before the last report is rejected.
func AdvanceStreak(prev models.UserStreakData, reportDate string) (models.StreakAdvance, error) {
	day, err := ParseDay(reportDate)
	if err != nil {
		return models.StreakAdvance{}, err
	}

	next := prev
	broken := false

	switch {
	case prev.LastReportDate == "":
		// First report ever.
		next.CurrentStreak = 1
	case prev.LastReportDate == reportDate:
		// Same-day duplicate: streak unchanged.
	default:
		last, err := ParseDay(prev.LastReportDate)
		if err != nil {
			return models.StreakAdvance{}, fmt.Errorf("stored last report date is corrupt: %w", err)
		}
		gap := daysBetween(last, day)
		if gap < 0 {
			return models.StreakAdvance{}, fmt.Errorf("report date %s is before last report date %s", reportDate, prev.LastReportDate)
		}
		if gap == 1 {
			next.CurrentStreak++
		} else {
			next.CurrentStreak = 1
			broken = true
		}
	}

	next.LastReportDate = reportDate
	newRecord := next.CurrentStreak > prev.LongestStreak
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}

	return models.StreakAdvance{
		Next:      next,
		StreakDay: next.CurrentStreak,
		NewRecord: newRecord,
		Broken:    broken,
	}, nil
}

// StreakWarning reports how close the user is to breaking their streak.
// The streak survives as long as a report lands on the calendar day after
// the last report, so the deadline is the end of that day. Advisory only.
func StreakWarning(lastReportDate string, now time.Time) models.StreakWarningInfo {
	if lastReportDate == "" {
		return models.StreakWarningInfo{}
	}
	last, err := time.ParseInLocation(models.DateFormat, lastReportDate, now.Location())
	if err != nil {
		return models.StreakWarningInfo{}
	}
	if now.Format(models.DateFormat) == lastReportDate {
		// Already reported today.
		return models.StreakWarningInfo{}
	}

	deadline := last.AddDate(0, 0, 2)
	hoursLeft := deadline.Sub(now).Hours()

	switch {
	case hoursLeft <= 0:
		return models.StreakWarningInfo{
			ShouldWarn: true,
			Urgency:    models.UrgencyCritical,
			HoursLeft:  0,
			Message:    "Your streak has ended. Submit a report today to start a new one.",
		}
	case hoursLeft < 2:
		return models.StreakWarningInfo{
			ShouldWarn: true,
			Urgency:    models.UrgencyCritical,
			HoursLeft:  hoursLeft,
			Message:    fmt.Sprintf("Less than %d hours left to keep your streak alive!", 2),
		}
	case hoursLeft < 6:
		return models.StreakWarningInfo{
			ShouldWarn: true,
			Urgency:    models.UrgencyWarning,
			HoursLeft:  hoursLeft,
			Message:    "Your streak breaks tonight. Submit today's report soon.",
		}
	case hoursLeft <= 12:
		return models.StreakWarningInfo{
			ShouldWarn: true,
			Urgency:    models.UrgencyInfo,
			HoursLeft:  hoursLeft,
			Message:    "Don't forget today's report to keep your streak going.",
		}
	default:
		return models.StreakWarningInfo{HoursLeft: hoursLeft}
	}
}
