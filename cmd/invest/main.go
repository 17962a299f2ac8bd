package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"guardian-engine-go/internal/common"
	"guardian-engine-go/internal/config"

	"go.uber.org/zap"
)

type investRequest struct {
	userId     string
	guardianId string
	amount     int
	unlock     bool
	activate   bool
}

func parseAndValidateFlags() (*investRequest, error) {
	userFlag := flag.String("user", "", "User id (required)")
	guardianFlag := flag.String("guardian", "", "Guardian id (required)")
	amountFlag := flag.Int("amount", 0, "Energy to invest")
	unlockFlag := flag.Bool("unlock", false, "Unlock the guardian instead of investing")
	activateFlag := flag.Bool("activate", false, "Make the guardian active")
	flag.Parse()

	if *userFlag == "" || *guardianFlag == "" {
		return nil, fmt.Errorf("--user and --guardian are required")
	}
	if !*unlockFlag && !*activateFlag && *amountFlag <= 0 {
		return nil, fmt.Errorf("--amount must be positive when investing")
	}

	return &investRequest{
		userId:     *userFlag,
		guardianId: *guardianFlag,
		amount:     *amountFlag,
		unlock:     *unlockFlag,
		activate:   *activateFlag,
	}, nil
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

	switch {
	case request.unlock:
		check, err := services.Engine.UnlockGuardian(ctx, request.userId, request.guardianId)
		if err != nil {
			zap.L().Fatal("Unlock failed", zap.Error(err))
		}
		if !check.CanUnlock {
			fmt.Printf("Cannot unlock %s: %s\n", request.guardianId, check.Reason)
			return
		}
		fmt.Printf("Unlocked %s 🎉\n", request.guardianId)

	case request.activate:
		if err := services.Engine.SetActiveGuardian(ctx, request.userId, request.guardianId); err != nil {
			zap.L().Fatal("Activation failed", zap.Error(err))
		}
		fmt.Printf("%s is now the active guardian\n", request.guardianId)

	default:
		result, err := services.Engine.InvestEnergy(ctx, request.userId, request.guardianId, request.amount)
		if err != nil {
			zap.L().Fatal("Investment failed", zap.Error(err))
		}
		fmt.Printf("Invested %dE into %s (requested %dE)\n",
			result.ActualInvested, request.guardianId, result.Requested)
		if result.Evolved {
			fmt.Printf("✨ Evolved: stage %d → %d (%s)\n",
				result.PreviousStage, result.NewStage,
				services.Registry.StageName(result.NewStage))
		} else {
			fmt.Printf("Stage %d (%s)\n",
				result.NewStage, services.Registry.StageName(result.NewStage))
		}
	}
}
