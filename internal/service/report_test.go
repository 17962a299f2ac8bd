package service

import (
	"context"
	"testing"

	"guardian-engine-go/internal/memory"
	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/registry"
)

func setupTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	s := memory.NewStore()
	return NewService(s, registry.Default()), s
}

func TestSubmitReport_FirstReport(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	// Half the default team goal on every output metric.
	result, err := svc.SubmitReport(ctx, ReportInput{
		UserId:  "alice",
		Date:    "2025-03-03",
		Metrics: models.ReportMetrics{Views: 500, Likes: 50, Replies: 15},
	})
	if err != nil {
		t.Fatalf("SubmitReport failed: %v", err)
	}

	if result.StreakDay != 1 {
		t.Errorf("Expected streak day 1, got %d", result.StreakDay)
	}
	if result.Breakdown.DailyReport != 10 {
		t.Errorf("Expected base 10, got %d", result.Breakdown.DailyReport)
	}
	if result.Breakdown.StreakBonus != 2 {
		t.Errorf("Expected streak bonus 2, got %d", result.Breakdown.StreakBonus)
	}
	if result.Breakdown.PerformanceBonus != 5 {
		t.Errorf("Expected performance bonus 5 at half goal, got %d", result.Breakdown.PerformanceBonus)
	}
	if result.EarnedToday != 17 {
		t.Errorf("Expected 17E earned, got %d", result.EarnedToday)
	}
	if result.Profile.Energy.Current != 17 || result.Profile.Energy.TotalEarned != 17 {
		t.Errorf("Unexpected profile energy: %+v", result.Profile.Energy)
	}
	if result.Level.Level != 1 {
		t.Errorf("Expected level 1, got %d", result.Level.Level)
	}
	if result.Flags.Any() {
		t.Errorf("A single report should raise no flags, got %+v", result.Flags)
	}
}

func TestSubmitReport_DuplicateDayReplacesGrant(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	first, err := svc.SubmitReport(ctx, ReportInput{
		UserId:  "alice",
		Date:    "2025-03-03",
		Metrics: models.ReportMetrics{Views: 500, Likes: 50, Replies: 15},
	})
	if err != nil {
		t.Fatalf("First SubmitReport failed: %v", err)
	}

	// Corrected numbers for the same day.
	second, err := svc.SubmitReport(ctx, ReportInput{
		UserId:  "alice",
		Date:    "2025-03-03",
		Metrics: models.ReportMetrics{Views: 1000, Likes: 100, Replies: 30},
	})
	if err != nil {
		t.Fatalf("Second SubmitReport failed: %v", err)
	}

	if second.StreakDay != 1 {
		t.Errorf("Duplicate day must not advance the streak, got day %d", second.StreakDay)
	}
	if second.EarnedToday != 22 {
		t.Errorf("Expected 22E for the corrected report, got %d", second.EarnedToday)
	}
	// Last valid submission wins: the profile reflects only the new grant.
	if second.Profile.Energy.TotalEarned != 22 {
		t.Errorf("Expected lifetime total 22 (not %d+22), got %d",
			first.EarnedToday, second.Profile.Energy.TotalEarned)
	}

	summary, err := svc.HistorySummary(ctx, "alice", "2025-03-01", "2025-03-31")
	if err != nil {
		t.Fatalf("HistorySummary failed: %v", err)
	}
	if summary.DaysReported != 1 || summary.TotalEarned != 22 {
		t.Errorf("Expected 1 day / 22E in the ledger, got %d days / %dE",
			summary.DaysReported, summary.TotalEarned)
	}
}

func TestSubmitReport_StreakAcrossDays(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	metrics := models.ReportMetrics{Views: 300, Likes: 30, Replies: 10}
	for _, date := range []string{"2025-03-03", "2025-03-04", "2025-03-05"} {
		if _, err := svc.SubmitReport(ctx, ReportInput{UserId: "alice", Date: date, Metrics: metrics}); err != nil {
			t.Fatalf("SubmitReport %s failed: %v", date, err)
		}
	}

	// Two-day gap resets the streak.
	result, err := svc.SubmitReport(ctx, ReportInput{UserId: "alice", Date: "2025-03-08", Metrics: metrics})
	if err != nil {
		t.Fatalf("SubmitReport failed: %v", err)
	}
	if result.StreakDay != 1 || !result.StreakBroken {
		t.Errorf("Expected broken streak back at day 1, got day %d broken=%v",
			result.StreakDay, result.StreakBroken)
	}
	if result.Profile.Streak.LongestStreak != 3 {
		t.Errorf("Longest streak must survive the break, got %d", result.Profile.Streak.LongestStreak)
	}
}

func TestSubmitReport_LevelUp(t *testing.T) {
	svc, s := setupTestService(t)
	ctx := context.Background()

	profile, err := s.EnsureProfile(ctx, "alice")
	if err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	profile.Energy.Current = 90
	profile.Energy.TotalEarned = 90
	if err := s.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	result, err := svc.SubmitReport(ctx, ReportInput{
		UserId:  "alice",
		Date:    "2025-03-03",
		Metrics: models.ReportMetrics{Views: 500, Likes: 50, Replies: 15},
	})
	if err != nil {
		t.Fatalf("SubmitReport failed: %v", err)
	}

	if !result.LeveledUp || result.Level.Level != 2 {
		t.Errorf("Expected level up to 2 at %dE, got level %d leveledUp=%v",
			result.Profile.Energy.TotalEarned, result.Level.Level, result.LeveledUp)
	}
}

func TestSubmitReport_RejectsBadInput(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.SubmitReport(ctx, ReportInput{UserId: "", Date: "2025-03-03"}); err == nil {
		t.Error("Expected error for missing user id")
	}
	if _, err := svc.SubmitReport(ctx, ReportInput{UserId: "alice", Date: "03/03/2025"}); err == nil {
		t.Error("Expected error for malformed date")
	}
	if _, err := svc.SubmitReport(ctx, ReportInput{
		UserId: "alice", Date: "2025-03-03",
		Metrics: models.ReportMetrics{Views: -1},
	}); err == nil {
		t.Error("Expected error for negative metric")
	}
}

func TestReconcile_ConsistentAfterReports(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	metrics := models.ReportMetrics{Views: 300, Likes: 30, Replies: 10}
	for _, date := range []string{"2025-03-03", "2025-03-04"} {
		if _, err := svc.SubmitReport(ctx, ReportInput{UserId: "alice", Date: date, Metrics: metrics}); err != nil {
			t.Fatalf("SubmitReport failed: %v", err)
		}
	}

	result, err := svc.Reconcile(ctx, "alice")
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if !result.Consistent {
		t.Errorf("Expected consistent ledger, stored %d calculated %d",
			result.StoredTotal, result.CalculatedTotal)
	}
}
