package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/store"
)

// CurrentStage derives a guardian's evolution stage from its cumulative
// invested energy. Stages never need to be stored: this is the single
// source of truth, non-decreasing in invested energy.
func CurrentStage(invested int, stages []models.EvolutionStage) int {
	stage := models.MinStage
	for _, s := range stages {
		if invested < s.Threshold {
			break
		}
		stage = s.Stage
	}
	return stage
}

// InvestEnergy moves spendable energy into a guardian. The amount is
// clamped to what the user actually has; clamping is designed behavior,
// not an error. On every stage transition crossed, an immutable
// GuardianMemory entry is appended to the instance's evolution log.
func InvestEnergy(profile *models.UserGuardianProfile, guardianId string, amount int, stages []models.EvolutionStage, now time.Time) (models.InvestmentResult, error) {
	if profile == nil {
		return models.InvestmentResult{}, fmt.Errorf("profile is required")
	}
	if amount < 0 {
		return models.InvestmentResult{}, fmt.Errorf("investment amount must be >= 0, got %d", amount)
	}
	inst := profile.Guardian(guardianId)
	if inst == nil {
		return models.InvestmentResult{}, fmt.Errorf("guardian %q: %w", guardianId, store.ErrUnknownGuardian)
	}
	if !inst.Unlocked {
		return models.InvestmentResult{}, fmt.Errorf("guardian %q: %w", guardianId, store.ErrGuardianLocked)
	}

	actual := amount
	if actual > profile.Energy.Current {
		actual = profile.Energy.Current
	}

	prevStage := CurrentStage(inst.InvestedEnergy, stages)
	profile.Energy.Current -= actual
	inst.InvestedEnergy += actual
	newStage := CurrentStage(inst.InvestedEnergy, stages)

	if newStage > prevStage {
		for s := prevStage + 1; s <= newStage; s++ {
			inst.Memories = append(inst.Memories, models.GuardianMemory{
				Id:                   uuid.New().String(),
				GuardianId:           guardianId,
				FromStage:            s - 1,
				ToStage:              s,
				InvestedAtTransition: inst.InvestedEnergy,
				CreatedAt:            now,
			})
		}
	}

	inst.UpdatedAt = now
	profile.UpdatedAt = now

	return models.InvestmentResult{
		GuardianId:     guardianId,
		Requested:      amount,
		ActualInvested: actual,
		PreviousStage:  prevStage,
		NewStage:       newStage,
		Evolved:        newStage > prevStage,
	}, nil
}

// ApplyUnlock deducts the unlock cost and creates the guardian instance
// at stage 0 with nothing invested. Eligibility is checked beforehand
// via the registry; this function still refuses to overdraw or double
// unlock so the operation stays atomic from the caller's perspective.
func ApplyUnlock(profile *models.UserGuardianProfile, def models.GuardianDefinition, now time.Time) error {
	if profile == nil {
		return fmt.Errorf("profile is required")
	}
	if inst := profile.Guardian(def.Id); inst != nil && inst.Unlocked {
		return fmt.Errorf("guardian %q is already unlocked", def.Id)
	}
	if profile.Energy.Current < def.Unlock.EnergyCost {
		return fmt.Errorf("unlock %q costs %d, have %d: %w", def.Id, def.Unlock.EnergyCost, profile.Energy.Current, store.ErrInsufficientEnergy)
	}

	profile.Energy.Current -= def.Unlock.EnergyCost
	if profile.Guardians == nil {
		profile.Guardians = make(map[string]*models.GuardianInstance)
	}
	profile.Guardians[def.Id] = &models.GuardianInstance{
		GuardianId:     def.Id,
		Unlocked:       true,
		InvestedEnergy: 0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	profile.UpdatedAt = now
	return nil
}

// SetActiveGuardian switches which guardian the user has active. The
// target only needs to be unlocked; switching has no energy cost.
func SetActiveGuardian(profile *models.UserGuardianProfile, guardianId string) error {
	if profile == nil {
		return fmt.Errorf("profile is required")
	}
	inst := profile.Guardian(guardianId)
	if inst == nil {
		return fmt.Errorf("guardian %q: %w", guardianId, store.ErrUnknownGuardian)
	}
	if !inst.Unlocked {
		return fmt.Errorf("guardian %q: %w", guardianId, store.ErrGuardianLocked)
	}
	profile.ActiveGuardianId = guardianId
	return nil
}
