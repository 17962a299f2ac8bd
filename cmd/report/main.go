package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"guardian-engine-go/internal/common"
	"guardian-engine-go/internal/config"
	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/service"

	"go.uber.org/zap"
)

type reportRequest struct {
	userId   string
	date     string
	metrics  models.ReportMetrics
	modified bool
}

func parseAndValidateFlags() (*reportRequest, error) {
	userFlag := flag.String("user", "", "User id (required)")
	dateFlag := flag.String("date", time.Now().Format(models.DateFormat), "Report date (YYYY-MM-DD)")
	viewsFlag := flag.Int("views", 0, "Views reported today")
	likesFlag := flag.Int("likes", 0, "Likes reported today")
	repliesFlag := flag.Int("replies", 0, "Replies reported today")
	followersFlag := flag.Int("followers", 0, "New followers reported today")
	postsFlag := flag.Int("posts", 0, "Posts published today")
	modifiedFlag := flag.Bool("modified", false, "Mark this submission as an edit of an earlier report")
	flag.Parse()

	if *userFlag == "" {
		return nil, fmt.Errorf("--user is required")
	}

	return &reportRequest{
		userId: *userFlag,
		date:   *dateFlag,
		metrics: models.ReportMetrics{
			Views:        *viewsFlag,
			Likes:        *likesFlag,
			Replies:      *repliesFlag,
			NewFollowers: *followersFlag,
			PostCount:    *postsFlag,
		},
		modified: *modifiedFlag,
	}, nil
}

func printResult(result *service.ReportResult) {
	common.PrintHeader("Daily Report Submitted", common.DefaultWidth)

	fmt.Printf("Earned today: %dE\n", result.EarnedToday)
	fmt.Printf("│  daily report      %4dE\n", result.Breakdown.DailyReport)
	fmt.Printf("│  streak bonus      %4dE\n", result.Breakdown.StreakBonus)
	fmt.Printf("│  performance bonus %4dE\n", result.Breakdown.PerformanceBonus)
	fmt.Printf("└  weekly bonus      %4dE\n", result.Breakdown.WeeklyBonus)

	fmt.Printf("\nStreak day %d", result.StreakDay)
	if result.NewRecord {
		fmt.Print("  (new personal record!)")
	}
	if result.StreakBroken {
		fmt.Print("  (previous streak broke)")
	}
	fmt.Println()

	fmt.Printf("Level %d %s %s", result.Level.Level, result.Level.Icon, result.Level.Title)
	if result.LeveledUp {
		fmt.Print("  — LEVEL UP")
	}
	fmt.Println()
	fmt.Printf("Energy: %dE spendable, %dE lifetime\n",
		result.Profile.Energy.Current, result.Profile.Energy.TotalEarned)

	if result.Flags.Any() {
		fmt.Println("\nReview flags (advisory):")
		if result.Flags.HighEnergyLowOutput {
			fmt.Println("│  high energy, low output")
		}
		if result.Flags.FrequentModification {
			fmt.Println("│  frequent modifications")
		}
		if result.Flags.InconsistentGrowth {
			fmt.Println("│  inconsistent growth")
		}
		if result.Flags.SuspiciousPattern {
			fmt.Println("└  suspicious repetition")
		}
	}

	common.PrintFooter("Report recorded.", common.DefaultWidth)
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

	result, err := services.Engine.SubmitReport(ctx, service.ReportInput{
		UserId:         request.userId,
		Date:           request.date,
		Metrics:        request.metrics,
		IsModification: request.modified,
	})
	if err != nil {
		zap.L().Fatal("Report submission failed",
			zap.String("user_id", request.userId),
			zap.String("date", request.date),
			zap.Error(err))
	}

	printResult(result)
}
