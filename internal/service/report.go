package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"guardian-engine-go/internal/engine"
	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/store"
)

// ReportInput is one submitted daily report event.
type ReportInput struct {
	UserId         string
	Date           string
	Metrics        models.ReportMetrics
	IsModification bool
}

// ReportResult is everything the presentation layer renders after a
// report lands: the grant, the streak transition, the derived level and
// the advisory anomaly flags.
type ReportResult struct {
	Breakdown    models.EnergyBreakdown
	EarnedToday  int
	StreakDay    int
	NewRecord    bool
	StreakBroken bool
	Level        models.LevelInfo
	LeveledUp    bool
	Flags        models.AnomalyFlags
	Profile      *models.UserGuardianProfile
}

// SubmitReport folds one daily report into the user's profile: streak
// advance, energy grant, history upsert and level derivation, committed
// as a single transactional read-modify-write.
//
// Re-submitting the same (user, date) is idempotent: the streak does not
// double-increment and the history row is overwritten, with the profile
// adjusted by the difference between the old and new grant (last valid
// submission wins).
func (s *Service) SubmitReport(ctx context.Context, in ReportInput) (*ReportResult, error) {
	if in.UserId == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if _, err := engine.ParseDay(in.Date); err != nil {
		return nil, err
	}
	if err := validateMetrics(in.Metrics); err != nil {
		return nil, err
	}

	zap.L().Info("Processing report",
		zap.String("user_id", in.UserId),
		zap.String("date", in.Date),
		zap.Bool("modification", in.IsModification))

	profile, err := s.store.EnsureProfile(ctx, in.UserId)
	if err != nil {
		return nil, err
	}
	energyBefore := profile.Energy.Current
	curve := s.registry.LevelCurve()
	previousLevel := engine.LevelForEnergy(profile.Energy.TotalEarned, curve)

	adv, err := engine.AdvanceStreak(profile.Streak, in.Date)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.RecentHistory(ctx, in.UserId, weeklyLookbackDays, in.Date)
	if err != nil {
		return nil, err
	}
	breakdown := engine.GrantEnergy(engine.GrantParams{
		Date:      in.Date,
		StreakDay: adv.StreakDay,
		Metrics:   in.Metrics,
		Goal:      s.registry.TeamGoal(),
		Tuning:    s.registry.Tuning(),
		Recent:    recent,
	})

	// A previous submission for the same date is replaced, not stacked.
	previous, err := s.store.GetHistory(ctx, in.UserId, in.Date)
	if err != nil {
		return nil, err
	}
	previousTotal := 0
	if previous != nil {
		previousTotal = previous.TotalEarned
	}
	delta := breakdown.Total() - previousTotal

	profile.Streak = adv.Next
	profile.Energy.TotalEarned += delta
	if profile.Energy.TotalEarned < 0 {
		profile.Energy.TotalEarned = 0
	}
	profile.Energy.Current += delta
	if profile.Energy.Current < 0 {
		// The earlier grant may already have been spent.
		profile.Energy.Current = 0
	}

	record := models.EnergyHistoryRecord{
		Id:          models.HistoryKey(in.UserId, in.Date),
		UserId:      in.UserId,
		Date:        in.Date,
		Breakdown:   breakdown,
		TotalEarned: breakdown.Total(),
		StreakDay:   adv.StreakDay,
	}

	err = s.store.CommitReport(ctx, store.CommitReportParams{
		Profile:        profile,
		History:        record,
		Metrics:        in.Metrics,
		IsModification: in.IsModification || previous != nil,
		GrantId:        uuid.New().String(),
		EnergyBefore:   energyBefore,
	})
	if err != nil {
		return nil, err
	}

	level := engine.CalculateLevel(profile.Energy.TotalEarned, curve, s.registry.LevelTitles())

	flags, err := s.reviewAnomalies(ctx, in.UserId, level.Level)
	if err != nil {
		// Advisory only: a failed anomaly read never fails the report.
		zap.L().Warn("Anomaly review failed after report",
			zap.String("user_id", in.UserId),
			zap.Error(err))
		flags = models.AnomalyFlags{}
	}

	return &ReportResult{
		Breakdown:    breakdown,
		EarnedToday:  breakdown.Total(),
		StreakDay:    adv.StreakDay,
		NewRecord:    adv.NewRecord,
		StreakBroken: adv.Broken,
		Level:        level,
		LeveledUp:    level.Level > previousLevel,
		Flags:        flags,
		Profile:      profile,
	}, nil
}

// HistorySummary aggregates the user's history rows over a date range.
func (s *Service) HistorySummary(ctx context.Context, userId, from, to string) (models.EnergyHistorySummary, error) {
	if userId == "" {
		return models.EnergyHistorySummary{}, fmt.Errorf("user id is required")
	}
	if _, err := engine.ParseDay(from); err != nil {
		return models.EnergyHistorySummary{}, err
	}
	if _, err := engine.ParseDay(to); err != nil {
		return models.EnergyHistorySummary{}, err
	}
	records, err := s.store.HistoryRange(ctx, userId, from, to)
	if err != nil {
		return models.EnergyHistorySummary{}, err
	}
	return engine.SummarizeHistory(records), nil
}

// Profile returns the user's full profile document.
func (s *Service) Profile(ctx context.Context, userId string) (*models.UserGuardianProfile, error) {
	if userId == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return s.store.GetProfile(ctx, userId)
}

// Level derives the user's current level presentation.
func (s *Service) Level(profile *models.UserGuardianProfile) models.LevelInfo {
	return engine.CalculateLevel(profile.Energy.TotalEarned, s.registry.LevelCurve(), s.registry.LevelTitles())
}

// ReviewAnomalies recomputes the advisory flags for a user from their
// recent report window. Never persisted; review surfaces call this on
// demand.
func (s *Service) ReviewAnomalies(ctx context.Context, userId string) (models.AnomalyFlags, error) {
	if userId == "" {
		return models.AnomalyFlags{}, fmt.Errorf("user id is required")
	}
	profile, err := s.store.GetProfile(ctx, userId)
	if err != nil {
		return models.AnomalyFlags{}, err
	}
	level := engine.LevelForEnergy(profile.Energy.TotalEarned, s.registry.LevelCurve())
	return s.reviewAnomalies(ctx, userId, level)
}

func (s *Service) reviewAnomalies(ctx context.Context, userId string, level int) (models.AnomalyFlags, error) {
	reports, err := s.store.RecentReports(ctx, userId, anomalyLookbackDays)
	if err != nil {
		return models.AnomalyFlags{}, err
	}
	return engine.DetectAnomalies(reports, level, s.registry.AnomalyThresholds()), nil
}
