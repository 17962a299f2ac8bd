package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"guardian-engine-go/internal/common"
	"guardian-engine-go/internal/config"
	"guardian-engine-go/internal/engine"
	"guardian-engine-go/internal/models"

	"go.uber.org/zap"
)

type summaryRequest struct {
	userId string
	from   string
	to     string
}

func parseAndValidateFlags() (*summaryRequest, error) {
	userFlag := flag.String("user", "", "User id (required)")
	fromFlag := flag.String("from", "", "Window start (YYYY-MM-DD, default 30 days ago)")
	toFlag := flag.String("to", "", "Window end (YYYY-MM-DD, default today)")
	flag.Parse()

	if *userFlag == "" {
		return nil, fmt.Errorf("--user is required")
	}

	now := time.Now()
	from := *fromFlag
	if from == "" {
		from = now.AddDate(0, 0, -30).Format(models.DateFormat)
	}
	to := *toFlag
	if to == "" {
		to = now.Format(models.DateFormat)
	}

	return &summaryRequest{userId: *userFlag, from: from, to: to}, nil
}

func main() {
	_, cleanup := common.InitializeLogger()
	defer cleanup()

	request, err := parseAndValidateFlags()
	if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	profile, err := services.Engine.Profile(ctx, request.userId)
	if err != nil {
		zap.L().Fatal("Profile lookup failed", zap.String("user_id", request.userId), zap.Error(err))
	}
	level := services.Engine.Level(profile)

	common.PrintHeader(fmt.Sprintf("Profile: %s", request.userId), common.DefaultWidth)
	fmt.Printf("Level %d %s %s\n", level.Level, level.Icon, level.Title)
	fmt.Printf("Energy: %dE spendable / %dE lifetime\n", profile.Energy.Current, profile.Energy.TotalEarned)
	fmt.Printf("Streak: %d days (longest %d, last report %s)\n",
		profile.Streak.CurrentStreak, profile.Streak.LongestStreak, profile.Streak.LastReportDate)

	if warning, err := services.Engine.StreakWarning(ctx, request.userId, time.Now()); err == nil && warning.ShouldWarn {
		fmt.Printf("⚠ [%s] %s\n", warning.Urgency, warning.Message)
	}

	printGuardians(profile, services)
	printSummary(ctx, request, services)
	printFlags(ctx, request.userId, services)

	common.PrintFooter("Summary complete.", common.DefaultWidth)
}

func printGuardians(profile *models.UserGuardianProfile, services *common.Services) {
	guardians := services.Registry.Guardians()
	fmt.Printf("\n┌─ Guardians (%d in catalog)\n", len(guardians))
	for i, def := range guardians {
		isLast := i == len(guardians)-1
		prefix := common.BoxPrefix(isLast)
		inst := profile.Guardian(def.Id)
		if inst == nil || !inst.Unlocked {
			fmt.Printf("%s %-15s locked (tier %d, %dE to unlock)\n",
				prefix, def.Name, def.Tier, def.Unlock.EnergyCost)
			continue
		}
		stage := engine.CurrentStage(inst.InvestedEnergy, services.Registry.Stages())
		active := ""
		if profile.ActiveGuardianId == def.Id {
			active = "  [active]"
		}
		fmt.Printf("%s %-15s stage %d %-13s %5dE invested, %d evolutions%s\n",
			prefix, def.Name, stage, services.Registry.StageName(stage),
			inst.InvestedEnergy, len(inst.Memories), active)
	}
}

func printSummary(ctx context.Context, request *summaryRequest, services *common.Services) {
	summary, err := services.Engine.HistorySummary(ctx, request.userId, request.from, request.to)
	if err != nil {
		zap.L().Fatal("History summary failed", zap.Error(err))
	}

	fmt.Printf("\n┌─ Energy history %s → %s\n", request.from, request.to)
	fmt.Printf("│  days reported: %d, total earned: %dE (%.1fE/day)\n",
		summary.DaysReported, summary.TotalEarned, summary.AveragePerDay)
	fmt.Printf("│  breakdown: report %dE, streak %dE, performance %dE, weekly %dE\n",
		summary.Breakdown.DailyReport, summary.Breakdown.StreakBonus,
		summary.Breakdown.PerformanceBonus, summary.Breakdown.WeeklyBonus)
	fmt.Printf("└  best day: %s (%dE), max streak day: %d\n",
		summary.BestDate, summary.BestDayEarned, summary.MaxStreakDay)
}

func printFlags(ctx context.Context, userId string, services *common.Services) {
	flags, err := services.Engine.ReviewAnomalies(ctx, userId)
	if err != nil {
		zap.L().Warn("Anomaly review failed", zap.Error(err))
		return
	}
	if !flags.Any() {
		return
	}
	fmt.Println("\nReview flags (advisory, for human review):")
	fmt.Printf("│  high energy low output: %v\n", flags.HighEnergyLowOutput)
	fmt.Printf("│  frequent modification:  %v\n", flags.FrequentModification)
	fmt.Printf("│  inconsistent growth:    %v\n", flags.InconsistentGrowth)
	fmt.Printf("└  suspicious pattern:     %v\n", flags.SuspiciousPattern)
}
