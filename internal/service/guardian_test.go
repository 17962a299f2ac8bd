package service

import (
	"context"
	"testing"
	"time"

	"guardian-engine-go/internal/memory"
	"guardian-engine-go/internal/models"
)

func seedEnergy(t *testing.T, s *memory.Store, userId string, current, totalEarned int) {
	t.Helper()
	ctx := context.Background()

	profile, err := s.EnsureProfile(ctx, userId)
	if err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	profile.Energy.Current = current
	profile.Energy.TotalEarned = totalEarned
	if err := s.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
}

func TestUnlockGuardian(t *testing.T) {
	svc, s := setupTestService(t)
	ctx := context.Background()
	seedEnergy(t, s, "alice", 150, 150)

	check, err := svc.UnlockGuardian(ctx, "alice", "ember_fox")
	if err != nil {
		t.Fatalf("UnlockGuardian failed: %v", err)
	}
	if !check.CanUnlock {
		t.Fatalf("Expected unlock, refused with %q", check.Reason)
	}

	profile, err := svc.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Energy.Current != 50 {
		t.Errorf("Expected 50E after the 100E unlock, got %d", profile.Energy.Current)
	}
	inst := profile.Guardian("ember_fox")
	if inst == nil || !inst.Unlocked || inst.InvestedEnergy != 0 {
		t.Errorf("Expected fresh unlocked instance, got %+v", inst)
	}
}

func TestUnlockGuardian_RefusalIsNotAnError(t *testing.T) {
	svc, s := setupTestService(t)
	ctx := context.Background()
	seedEnergy(t, s, "alice", 40, 40)

	check, err := svc.UnlockGuardian(ctx, "alice", "ember_fox")
	if err != nil {
		t.Fatalf("UnlockGuardian failed: %v", err)
	}
	if check.CanUnlock {
		t.Fatal("Expected refusal with 40E against a 100E cost")
	}
	if check.Reason == "" {
		t.Error("Refusal must carry a reason")
	}

	// Nothing deducted, nothing created.
	profile, err := svc.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Energy.Current != 40 {
		t.Errorf("Refusal must not deduct energy, got %d", profile.Energy.Current)
	}
	if profile.Guardian("ember_fox") != nil {
		t.Error("Refusal must not create an instance")
	}
}

func TestUnlockGuardian_UnknownId(t *testing.T) {
	svc, s := setupTestService(t)
	seedEnergy(t, s, "alice", 1000, 1000)

	if _, err := svc.UnlockGuardian(context.Background(), "alice", "chaos_slime"); err == nil {
		t.Fatal("Expected error for unknown guardian id")
	}
}

func TestInvestEnergy_EvolvesAndPersists(t *testing.T) {
	svc, s := setupTestService(t)
	ctx := context.Background()
	seedEnergy(t, s, "alice", 300, 300)

	if _, err := svc.UnlockGuardian(ctx, "alice", "ember_fox"); err != nil {
		t.Fatalf("UnlockGuardian failed: %v", err)
	}

	result, err := svc.InvestEnergy(ctx, "alice", "ember_fox", 150)
	if err != nil {
		t.Fatalf("InvestEnergy failed: %v", err)
	}
	if !result.Evolved || result.NewStage != 2 {
		t.Errorf("Expected evolution to stage 2, got %+v", result)
	}

	profile, err := svc.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Energy.Current != 50 {
		t.Errorf("Expected 50E left (300 - 100 unlock - 150 invest), got %d", profile.Energy.Current)
	}
	inst := profile.Guardian("ember_fox")
	if inst.InvestedEnergy != 150 {
		t.Errorf("Expected 150E invested, got %d", inst.InvestedEnergy)
	}
	if len(inst.Memories) != 2 {
		t.Errorf("Expected 2 evolution log entries, got %d", len(inst.Memories))
	}
	// TotalEarned is untouched by spending.
	if profile.Energy.TotalEarned != 300 {
		t.Errorf("Investing must not change lifetime total, got %d", profile.Energy.TotalEarned)
	}
}

func TestInvestEnergy_ClampsToSpendable(t *testing.T) {
	svc, s := setupTestService(t)
	ctx := context.Background()
	seedEnergy(t, s, "alice", 130, 130)

	if _, err := svc.UnlockGuardian(ctx, "alice", "ember_fox"); err != nil {
		t.Fatalf("UnlockGuardian failed: %v", err)
	}

	result, err := svc.InvestEnergy(ctx, "alice", "ember_fox", 500)
	if err != nil {
		t.Fatalf("InvestEnergy failed: %v", err)
	}
	if result.ActualInvested != 30 {
		t.Errorf("Expected clamp to the remaining 30E, got %d", result.ActualInvested)
	}

	profile, err := svc.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.Energy.Current != 0 {
		t.Errorf("Expected 0E after clamped investment, got %d", profile.Energy.Current)
	}
}

func TestInvestEnergy_LockedGuardian(t *testing.T) {
	svc, s := setupTestService(t)
	seedEnergy(t, s, "alice", 100, 100)

	if _, err := svc.InvestEnergy(context.Background(), "alice", "ember_fox", 10); err == nil {
		t.Fatal("Expected error investing into a guardian that was never unlocked")
	}
}

func TestSetActiveGuardian(t *testing.T) {
	svc, s := setupTestService(t)
	ctx := context.Background()
	seedEnergy(t, s, "alice", 150, 150)

	if _, err := svc.UnlockGuardian(ctx, "alice", "ember_fox"); err != nil {
		t.Fatalf("UnlockGuardian failed: %v", err)
	}
	if err := svc.SetActiveGuardian(ctx, "alice", "ember_fox"); err != nil {
		t.Fatalf("SetActiveGuardian failed: %v", err)
	}

	profile, err := svc.Profile(ctx, "alice")
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if profile.ActiveGuardianId != "ember_fox" {
		t.Errorf("Expected active guardian ember_fox, got %q", profile.ActiveGuardianId)
	}

	if err := svc.SetActiveGuardian(ctx, "alice", "mist_koi"); err == nil {
		t.Error("Expected error activating a guardian that was never unlocked")
	}
}

func TestStreakWarning(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	metrics := models.ReportMetrics{Views: 300, Likes: 30, Replies: 10}
	if _, err := svc.SubmitReport(ctx, ReportInput{UserId: "alice", Date: "2025-03-05", Metrics: metrics}); err != nil {
		t.Fatalf("SubmitReport failed: %v", err)
	}

	evening := time.Date(2025, 3, 6, 19, 0, 0, 0, time.UTC)
	warning, err := svc.StreakWarning(ctx, "alice", evening)
	if err != nil {
		t.Fatalf("StreakWarning failed: %v", err)
	}
	if !warning.ShouldWarn {
		t.Error("Expected a warning on the evening of the deadline day")
	}
	if warning.Urgency != models.UrgencyWarning {
		t.Errorf("Expected warning urgency, got %q", warning.Urgency)
	}
}
