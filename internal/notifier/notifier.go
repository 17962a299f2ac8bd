package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"guardian-engine-go/internal/engine"
	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/store"

	"go.uber.org/zap"
)

// Config contains configuration for the streak Notifier.
type Config struct {
	Store           store.ProfileStore
	PollingInterval time.Duration
	// MinUrgency suppresses warnings below this level. One of "info",
	// "warning", "critical"; empty means "info".
	MinUrgency string
}

// Notifier periodically sweeps all profiles and surfaces streak warnings
// for users whose streak is about to break. Warnings are advisory console
// output; nothing is persisted and no profile is mutated.
type Notifier struct {
	store           store.ProfileStore
	pollingInterval time.Duration
	minUrgency      int

	// State management for already-announced warnings, keyed
	// "{userId}_{date}_{urgency}" so escalations re-fire.
	announced map[string]time.Time
	mutex     sync.RWMutex

	// Control channels
	stopChan chan struct{}
	doneChan chan struct{}
}

func urgencyRank(urgency string) int {
	switch urgency {
	case models.UrgencyCritical:
		return 2
	case models.UrgencyWarning:
		return 1
	default:
		return 0
	}
}

// NewNotifier creates a new streak warning notifier.
func NewNotifier(cfg Config) *Notifier {
	return &Notifier{
		store:           cfg.Store,
		pollingInterval: cfg.PollingInterval,
		minUrgency:      urgencyRank(cfg.MinUrgency),
		announced:       make(map[string]time.Time),
		stopChan:        make(chan struct{}),
		doneChan:        make(chan struct{}),
	}
}

// Start begins the warning sweep loop.
func (n *Notifier) Start(ctx context.Context) error {
	zap.L().Info("Starting streak notifier")

	userIds, err := n.store.ListUserIds(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(userIds) == 0 {
		zap.L().Warn("No profiles to watch - warnings will appear once users report")
	}

	go n.pollLoop(ctx)

	zap.L().Info("Streak notifier started successfully",
		zap.Duration("polling_interval", n.pollingInterval),
		zap.Int("profiles", len(userIds)))
	return nil
}

// Stop gracefully stops the notifier.
func (n *Notifier) Stop() {
	zap.L().Info("Stopping streak notifier")
	close(n.stopChan)
	<-n.doneChan
	zap.L().Info("Streak notifier stopped")
}

// pollLoop runs the main sweep loop.
func (n *Notifier) pollLoop(ctx context.Context) {
	defer close(n.doneChan)

	ticker := time.NewTicker(n.pollingInterval)
	defer ticker.Stop()

	n.sweep(ctx)

	for {
		select {
		case <-ticker.C:
			n.sweep(ctx)
		case <-n.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// ANSI color helpers for console output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// sweep checks every profile's streak deadline once.
func (n *Notifier) sweep(ctx context.Context) {
	now := time.Now()

	userIds, err := n.store.ListUserIds(ctx)
	if err != nil {
		zap.L().Error("Failed to list users for sweep", zap.Error(err))
		return
	}

	fmt.Printf("\n%s[%s] Sweeping %d profiles for streak deadlines%s\n",
		colorCyan, now.Format("15:04:05"), len(userIds), colorReset)

	var wg sync.WaitGroup
	for _, userId := range userIds {
		wg.Add(1)

		go func(id string) {
			defer wg.Done()

			if err := n.checkUser(ctx, id, now); err != nil {
				fmt.Printf("  %s✗ %s: %s%s\n", colorRed, id, err, colorReset)
				zap.L().Error("Failed to check streak",
					zap.String("user_id", id),
					zap.Error(err))
			}
		}(userId)
	}
	wg.Wait()

	n.cleanupAnnounced(now)
}

// checkUser evaluates one user's streak deadline and announces the
// warning if it clears the urgency floor and wasn't announced yet.
func (n *Notifier) checkUser(ctx context.Context, userId string, now time.Time) error {
	profile, err := n.store.GetProfile(ctx, userId)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	warning := engine.StreakWarning(profile.Streak.LastReportDate, now)
	if !warning.ShouldWarn {
		return nil
	}
	if urgencyRank(warning.Urgency) < n.minUrgency {
		return nil
	}

	key := fmt.Sprintf("%s_%s_%s", userId, now.Format(models.DateFormat), warning.Urgency)
	if n.isAnnounced(key) {
		return nil
	}

	color := colorYellow
	symbol := "~"
	if warning.Urgency == models.UrgencyCritical {
		color = colorRed
		symbol = "!"
	}
	fmt.Printf("  %s%s %-16s streak %d, %.1fh left | [%s] %s%s\n",
		color, symbol, userId, profile.Streak.CurrentStreak,
		warning.HoursLeft, warning.Urgency, warning.Message, colorReset)

	zap.L().Info("Streak warning",
		zap.String("user_id", userId),
		zap.String("urgency", warning.Urgency),
		zap.Float64("hours_left", warning.HoursLeft),
		zap.Int("current_streak", profile.Streak.CurrentStreak))

	n.markAnnounced(key, now)
	return nil
}

// isAnnounced checks whether this warning was already surfaced.
func (n *Notifier) isAnnounced(key string) bool {
	n.mutex.RLock()
	defer n.mutex.RUnlock()

	_, exists := n.announced[key]
	return exists
}

// markAnnounced records a surfaced warning so later sweeps stay quiet.
func (n *Notifier) markAnnounced(key string, at time.Time) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	n.announced[key] = at
}

// cleanupAnnounced drops announcement records older than two days; their
// streak deadline has passed either way.
func (n *Notifier) cleanupAnnounced(now time.Time) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	cutoff := now.Add(-48 * time.Hour)
	cleaned := 0

	for key, announcedAt := range n.announced {
		if announcedAt.Before(cutoff) {
			delete(n.announced, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		zap.L().Debug("Cleaned up expired warning records",
			zap.Int("cleaned", cleaned),
			zap.Int("remaining", len(n.announced)))
	}
}
