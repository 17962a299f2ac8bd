package models

import "time"

// Config represents the application configuration
type Config struct {
	Database DatabaseConfig
	Engine   EngineConfig
	Notifier NotifierConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Path               string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	PingTimeout        time.Duration
	CreateDemoProfiles bool
}

// EngineConfig holds engine-level settings
type EngineConfig struct {
	// CatalogFile points at a YAML guardian catalog. Empty means the
	// built-in catalog is used.
	CatalogFile string
}

// NotifierConfig holds settings for the streak-warning sweeper.
type NotifierConfig struct {
	PollingInterval time.Duration
	// MinUrgency filters warnings below this level ("info", "warning",
	// "critical").
	MinUrgency string
}

// StreakTier is one step of the streak bonus function: every streak day
// >= FromDay earns Bonus, until a later tier takes over.
type StreakTier struct {
	FromDay int `yaml:"from_day"`
	Bonus   int `yaml:"bonus"`
}

// EnergyTuning holds the product-tuning constants of the energy ledger.
// Only the ordering invariants are fixed; the numbers are configuration.
type EnergyTuning struct {
	DailyReportBase int          `yaml:"daily_report_base"`
	StreakTiers     []StreakTier `yaml:"streak_tiers"`
	// PerformanceCap caps the performance bonus at this multiple of the
	// daily base, expressed as a decimal string (e.g. "3").
	PerformanceCap string `yaml:"performance_cap"`
	WeeklyBonus    int    `yaml:"weekly_bonus"`
	// WeeklyBonusWeekday names the weekday the weekly bonus pays out on.
	WeeklyBonusWeekday string `yaml:"weekly_bonus_weekday"`
}

// TeamGoal is the team's daily output target the performance bonus is
// measured against.
type TeamGoal struct {
	DailyViews   int `yaml:"daily_views"`
	DailyLikes   int `yaml:"daily_likes"`
	DailyReplies int `yaml:"daily_replies"`
}

// LevelCurve defines the energy cost of each level-up: reaching level
// n+1 from n costs BaseDelta + Growth*(n-1). Covers [0, inf) with no
// gaps and caps at MaxLevel.
type LevelCurve struct {
	BaseDelta int `yaml:"base_delta"`
	Growth    int `yaml:"growth"`
	MaxLevel  int `yaml:"max_level"`
}

// LevelTitle maps every level >= MinLevel to a tier name, until a later
// entry takes over. Entries partition the level space.
type LevelTitle struct {
	MinLevel int    `yaml:"min_level"`
	Title    string `yaml:"title"`
	Icon     string `yaml:"icon"`
	Color    string `yaml:"color"`
}

// AnomalyThresholds are the heuristic knobs of the anomaly detector.
type AnomalyThresholds struct {
	WindowDays        int `yaml:"window_days"`
	ModificationLimit int `yaml:"modification_limit"`
	// GrowthFactorLimit flags day-over-day metric jumps above this
	// multiple, expressed as a decimal string (e.g. "10").
	GrowthFactorLimit string `yaml:"growth_factor_limit"`
	// LowOutputRatio flags windows whose average output falls below this
	// fraction of the user's own historical average, decimal string.
	LowOutputRatio string `yaml:"low_output_ratio"`
	// HighEnergyLevel is the level at or above which low output becomes
	// suspicious at all.
	HighEnergyLevel int `yaml:"high_energy_level"`
	// DuplicateLimit flags windows containing more than this many exact
	// copies of a prior day's metrics.
	DuplicateLimit int `yaml:"duplicate_limit"`
}
