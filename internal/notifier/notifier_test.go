package notifier

import (
	"context"
	"testing"
	"time"

	"guardian-engine-go/internal/memory"
	"guardian-engine-go/internal/models"
)

func TestUrgencyRank(t *testing.T) {
	if urgencyRank(models.UrgencyInfo) >= urgencyRank(models.UrgencyWarning) {
		t.Error("info must rank below warning")
	}
	if urgencyRank(models.UrgencyWarning) >= urgencyRank(models.UrgencyCritical) {
		t.Error("warning must rank below critical")
	}
	if urgencyRank("") != urgencyRank(models.UrgencyInfo) {
		t.Error("empty urgency should default to info")
	}
}

func seedLastReport(t *testing.T, s *memory.Store, userId, date string) {
	t.Helper()
	ctx := context.Background()

	profile, err := s.EnsureProfile(ctx, userId)
	if err != nil {
		t.Fatalf("EnsureProfile failed: %v", err)
	}
	profile.Streak.CurrentStreak = 3
	profile.Streak.LongestStreak = 3
	profile.Streak.LastReportDate = date
	if err := s.SaveProfile(ctx, profile); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
}

func TestCheckUser_AnnouncesOnce(t *testing.T) {
	s := memory.NewStore()
	seedLastReport(t, s, "alice", "2025-03-05")

	n := NewNotifier(Config{Store: s, PollingInterval: time.Hour})
	evening := time.Date(2025, 3, 6, 19, 0, 0, 0, time.UTC)

	if err := n.checkUser(context.Background(), "alice", evening); err != nil {
		t.Fatalf("checkUser failed: %v", err)
	}
	if len(n.announced) != 1 {
		t.Fatalf("Expected 1 announced warning, got %d", len(n.announced))
	}

	// A second sweep at the same urgency stays quiet.
	if err := n.checkUser(context.Background(), "alice", evening); err != nil {
		t.Fatalf("checkUser failed: %v", err)
	}
	if len(n.announced) != 1 {
		t.Errorf("Repeated sweep must not re-announce, got %d records", len(n.announced))
	}

	// Escalation to critical fires again.
	lastHour := time.Date(2025, 3, 6, 23, 30, 0, 0, time.UTC)
	if err := n.checkUser(context.Background(), "alice", lastHour); err != nil {
		t.Fatalf("checkUser failed: %v", err)
	}
	if len(n.announced) != 2 {
		t.Errorf("Escalated urgency should announce again, got %d records", len(n.announced))
	}
}

func TestCheckUser_RespectsMinUrgency(t *testing.T) {
	s := memory.NewStore()
	seedLastReport(t, s, "alice", "2025-03-05")

	n := NewNotifier(Config{Store: s, PollingInterval: time.Hour, MinUrgency: models.UrgencyCritical})
	evening := time.Date(2025, 3, 6, 19, 0, 0, 0, time.UTC)

	if err := n.checkUser(context.Background(), "alice", evening); err != nil {
		t.Fatalf("checkUser failed: %v", err)
	}
	if len(n.announced) != 0 {
		t.Errorf("Warning below the urgency floor must stay silent, got %d records", len(n.announced))
	}
}

func TestCheckUser_QuietWhenSafe(t *testing.T) {
	s := memory.NewStore()
	seedLastReport(t, s, "alice", "2025-03-06")

	n := NewNotifier(Config{Store: s, PollingInterval: time.Hour})
	morning := time.Date(2025, 3, 7, 8, 0, 0, 0, time.UTC)

	if err := n.checkUser(context.Background(), "alice", morning); err != nil {
		t.Fatalf("checkUser failed: %v", err)
	}
	if len(n.announced) != 0 {
		t.Errorf("No warning expected with a full day left, got %d records", len(n.announced))
	}
}

func TestCleanupAnnounced(t *testing.T) {
	s := memory.NewStore()
	n := NewNotifier(Config{Store: s, PollingInterval: time.Hour})

	now := time.Now()
	n.markAnnounced("alice_2025-03-01_warning", now.Add(-72*time.Hour))
	n.markAnnounced("bob_2025-03-06_warning", now)

	n.cleanupAnnounced(now)
	if len(n.announced) != 1 {
		t.Fatalf("Expected expired record to be dropped, got %d remaining", len(n.announced))
	}
	if _, ok := n.announced["bob_2025-03-06_warning"]; !ok {
		t.Error("Fresh record must survive cleanup")
	}
}
