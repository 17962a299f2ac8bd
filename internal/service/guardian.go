package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"guardian-engine-go/internal/engine"
	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/store"
)

// InvestEnergy moves spendable energy into an unlocked guardian and
// persists the result atomically. The invested amount is clamped to the
// user's spendable energy.
func (s *Service) InvestEnergy(ctx context.Context, userId, guardianId string, amount int) (*models.InvestmentResult, error) {
	if userId == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if _, ok := s.registry.Guardian(guardianId); !ok {
		return nil, fmt.Errorf("unknown guardian id %q", guardianId)
	}

	profile, err := s.store.GetProfile(ctx, userId)
	if err != nil {
		return nil, err
	}
	energyBefore := profile.Energy.Current

	inst := profile.Guardian(guardianId)
	memoriesBefore := 0
	if inst != nil {
		memoriesBefore = len(inst.Memories)
	}

	result, err := engine.InvestEnergy(profile, guardianId, amount, s.registry.Stages(), time.Now())
	if err != nil {
		return nil, err
	}

	var newMemories []models.GuardianMemory
	if inst := profile.Guardian(guardianId); inst != nil {
		newMemories = inst.Memories[memoriesBefore:]
	}

	err = s.store.CommitInvestment(ctx, store.CommitInvestmentParams{
		Profile:       profile,
		GuardianId:    guardianId,
		Memories:      newMemories,
		TransactionId: uuid.New().String(),
		Type:          "invest",
		Amount:        result.ActualInvested,
		EnergyBefore:  energyBefore,
	})
	if err != nil {
		return nil, err
	}

	if result.Evolved {
		zap.L().Info("Guardian evolved",
			zap.String("user_id", userId),
			zap.String("guardian_id", guardianId),
			zap.Int("from_stage", result.PreviousStage),
			zap.Int("to_stage", result.NewStage))
	}
	return &result, nil
}

// UnlockGuardian attempts to unlock a guardian. A refusal is an
// expected outcome returned as a structured check with the reason; only
// invalid input or storage failure is an error. On success the energy
// cost is deducted and the guardian starts at stage 0 — atomically, or
// not at all.
func (s *Service) UnlockGuardian(ctx context.Context, userId, guardianId string) (models.UnlockCheck, error) {
	if userId == "" {
		return models.UnlockCheck{}, fmt.Errorf("user id is required")
	}
	def, ok := s.registry.Guardian(guardianId)
	if !ok {
		return models.UnlockCheck{}, fmt.Errorf("unknown guardian id %q", guardianId)
	}

	profile, err := s.store.GetProfile(ctx, userId)
	if err != nil {
		return models.UnlockCheck{}, err
	}
	energyBefore := profile.Energy.Current

	check, err := s.registry.CanUnlockGuardian(guardianId, profile)
	if err != nil {
		return models.UnlockCheck{}, err
	}
	if !check.CanUnlock {
		zap.L().Info("Unlock refused",
			zap.String("user_id", userId),
			zap.String("guardian_id", guardianId),
			zap.String("reason", check.Reason))
		return check, nil
	}

	if err := engine.ApplyUnlock(profile, def, time.Now()); err != nil {
		return models.UnlockCheck{}, err
	}

	err = s.store.CommitInvestment(ctx, store.CommitInvestmentParams{
		Profile:       profile,
		GuardianId:    guardianId,
		TransactionId: uuid.New().String(),
		Type:          "unlock",
		Amount:        def.Unlock.EnergyCost,
		EnergyBefore:  energyBefore,
	})
	if err != nil {
		return models.UnlockCheck{}, err
	}

	zap.L().Info("Guardian unlocked",
		zap.String("user_id", userId),
		zap.String("guardian_id", guardianId),
		zap.Int("cost", def.Unlock.EnergyCost),
		zap.Int("energy_after", profile.Energy.Current))
	return check, nil
}

// SetActiveGuardian switches the user's active guardian. No energy
// cost; the target only needs to be unlocked.
func (s *Service) SetActiveGuardian(ctx context.Context, userId, guardianId string) error {
	if userId == "" {
		return fmt.Errorf("user id is required")
	}
	if _, ok := s.registry.Guardian(guardianId); !ok {
		return fmt.Errorf("unknown guardian id %q", guardianId)
	}
	profile, err := s.store.GetProfile(ctx, userId)
	if err != nil {
		return err
	}
	if err := engine.SetActiveGuardian(profile, guardianId); err != nil {
		return err
	}
	return s.store.SaveProfile(ctx, profile)
}

// StreakWarning reports whether the user should be nudged before their
// streak breaks. Advisory; no side effects.
func (s *Service) StreakWarning(ctx context.Context, userId string, now time.Time) (models.StreakWarningInfo, error) {
	if userId == "" {
		return models.StreakWarningInfo{}, fmt.Errorf("user id is required")
	}
	profile, err := s.store.GetProfile(ctx, userId)
	if err != nil {
		return models.StreakWarningInfo{}, err
	}
	return engine.StreakWarning(profile.Streak.LastReportDate, now), nil
}

// Reconcile recomputes a user's lifetime total from the history ledger.
func (s *Service) Reconcile(ctx context.Context, userId string) (store.ReconcileResult, error) {
	if userId == "" {
		return store.ReconcileResult{}, fmt.Errorf("user id is required")
	}
	return s.store.ReconcileTotalEarned(ctx, userId)
}
