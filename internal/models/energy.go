package models

import "time"

// DateFormat is the calendar-day format used for every date-keyed record.
// All streak and history math operates on whole calendar days.
const DateFormat = "2006-01-02"

// ReportMetrics are the self-reported KPI fields of one daily report.
type ReportMetrics struct {
	Views        int `db:"views" json:"views"`
	Likes        int `db:"likes" json:"likes"`
	Replies      int `db:"replies" json:"replies"`
	NewFollowers int `db:"new_followers" json:"new_followers"`
	PostCount    int `db:"post_count" json:"post_count"`
}

// HasActivity reports whether at least one metric field is non-zero.
// A report with no activity earns no base energy.
func (m ReportMetrics) HasActivity() bool {
	return m.Views > 0 || m.Likes > 0 || m.Replies > 0 || m.NewFollowers > 0 || m.PostCount > 0
}

// Equal reports whether two metric sets are exact duplicates of each other.
func (m ReportMetrics) Equal(other ReportMetrics) bool {
	return m == other
}

// Report is one submitted daily report, keyed by (user, calendar date).
// ModificationCount tracks how often the row was edited after first submission.
type Report struct {
	UserId            string        `db:"user_id"`
	Date              string        `db:"date"`
	Metrics           ReportMetrics `db:"-"`
	ModificationCount int           `db:"modification_count"`
	CreatedAt         time.Time     `db:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at"`
}

// EnergyBreakdown is the per-event split of an energy grant.
// Every field is clamped to >= 0 by the ledger.
type EnergyBreakdown struct {
	DailyReport      int `db:"daily_report" json:"daily_report"`
	StreakBonus      int `db:"streak_bonus" json:"streak_bonus"`
	PerformanceBonus int `db:"performance_bonus" json:"performance_bonus"`
	WeeklyBonus      int `db:"weekly_bonus" json:"weekly_bonus"`
}

// Total is the amount of energy the event earned.
func (b EnergyBreakdown) Total() int {
	return b.DailyReport + b.StreakBonus + b.PerformanceBonus + b.WeeklyBonus
}

// EnergyHistoryRecord is the durable per-(user, date) ledger row.
// Id is always "{userId}_{date}"; writing twice for the same key overwrites.
type EnergyHistoryRecord struct {
	Id          string          `db:"id"`
	UserId      string          `db:"user_id"`
	Date        string          `db:"date"`
	Breakdown   EnergyBreakdown `db:"-"`
	TotalEarned int             `db:"total_earned"`
	StreakDay   int             `db:"streak_day"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// HistoryKey builds the idempotency key for one (user, date) ledger row.
// Storage adapters must preserve this format to keep upserts idempotent.
func HistoryKey(userId, date string) string {
	return userId + "_" + date
}

// EnergyHistorySummary is the single read-side aggregation over a history window.
type EnergyHistorySummary struct {
	FromDate         string          `json:"from_date"`
	ToDate           string          `json:"to_date"`
	DaysReported     int             `json:"days_reported"`
	TotalEarned      int             `json:"total_earned"`
	Breakdown        EnergyBreakdown `json:"breakdown"`
	AveragePerDay    float64         `json:"avg_per_day"`
	BestDate         string          `json:"best_date,omitempty"`
	BestDayEarned    int             `json:"best_day_earned"`
	MaxStreakDay     int             `json:"max_streak_day"`
}

// UserEnergyData is the spendable/lifetime energy pair of one user.
// TotalEarned never decreases across distinct reporting days; Current is
// reduced by guardian investment.
type UserEnergyData struct {
	Current     int `db:"current_energy" json:"current"`
	TotalEarned int `db:"total_earned" json:"total_earned"`
}

// UserStreakData tracks consecutive-day reporting state.
// LastReportDate is empty until the first report ever.
type UserStreakData struct {
	CurrentStreak  int    `db:"current_streak" json:"current_streak"`
	LongestStreak  int    `db:"longest_streak" json:"longest_streak"`
	LastReportDate string `db:"last_report_date" json:"last_report_date"`
}

// StreakAdvance is the outcome of folding one report date into streak state.
type StreakAdvance struct {
	Next      UserStreakData
	StreakDay int
	NewRecord bool
	Broken    bool
}

// Streak warning urgency levels, in escalation order.
const (
	UrgencyInfo     = "info"
	UrgencyWarning  = "warning"
	UrgencyCritical = "critical"
)

// StreakWarningInfo is an advisory signal that a streak is about to break.
// It has no side effects and is never persisted.
type StreakWarningInfo struct {
	ShouldWarn bool    `json:"should_warn"`
	Urgency    string  `json:"urgency,omitempty"`
	HoursLeft  float64 `json:"hours_left"`
	Message    string  `json:"message,omitempty"`
}

// LevelInfo is the derived level presentation for a cumulative energy total.
type LevelInfo struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// AnomalyFlags are advisory heuristics over a user's recent report window.
// They are computed fresh on demand and surfaced for human review only.
type AnomalyFlags struct {
	HighEnergyLowOutput  bool `json:"high_energy_low_output"`
	FrequentModification bool `json:"frequent_modification"`
	InconsistentGrowth   bool `json:"inconsistent_growth"`
	SuspiciousPattern    bool `json:"suspicious_pattern"`
}

// Any reports whether at least one flag is raised.
func (f AnomalyFlags) Any() bool {
	return f.HighEnergyLowOutput || f.FrequentModification || f.InconsistentGrowth || f.SuspiciousPattern
}
