package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"guardian-engine-go/internal/store"
)

// CommitReport atomically persists everything one reporting event
// changed: the version-checked profile row, the idempotent (user, date)
// history upsert, the raw report row, and an audit entry. Either all of
// it lands or none of it does.
func (s *Service) CommitReport(ctx context.Context, params store.CommitReportParams) error {
	profile := params.Profile
	if profile == nil || profile.UserId == "" {
		return fmt.Errorf("profile with user id is required")
	}

	zap.L().Info("Committing report",
		zap.String("user_id", profile.UserId),
		zap.String("date", params.History.Date),
		zap.Int("earned", params.History.TotalEarned),
		zap.Int("streak_day", params.History.StreakDay))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateProfileTx(ctx, tx, profile); err != nil {
		return err
	}

	rec := params.History
	_, err = tx.ExecContext(ctx, queryUpsertHistory,
		rec.Id, rec.UserId, rec.Date,
		rec.Breakdown.DailyReport, rec.Breakdown.StreakBonus,
		rec.Breakdown.PerformanceBonus, rec.Breakdown.WeeklyBonus,
		rec.TotalEarned, rec.StreakDay)
	if err != nil {
		return fmt.Errorf("failed to upsert history record: %w", err)
	}

	modified := 0
	if params.IsModification {
		modified = 1
	}
	m := params.Metrics
	_, err = tx.ExecContext(ctx, queryUpsertReport,
		rec.Id, rec.UserId, rec.Date,
		m.Views, m.Likes, m.Replies, m.NewFollowers, m.PostCount,
		modified)
	if err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}

	delta := profile.Energy.Current - params.EnergyBefore
	_, err = tx.ExecContext(ctx, queryInsertAudit,
		params.GrantId, profile.UserId, "grant", delta,
		params.EnergyBefore, profile.Energy.Current, "",
		fmt.Sprintf("report %s", rec.Date))
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	profile.Version++

	zap.L().Info("Report committed",
		zap.String("user_id", profile.UserId),
		zap.String("date", rec.Date),
		zap.Int("energy_after", profile.Energy.Current),
		zap.Int("total_earned", profile.Energy.TotalEarned))
	return nil
}

// CommitInvestment atomically persists an investment or unlock: the
// version-checked profile row, the mutated guardian instance, any new
// evolution log entries, and an audit entry.
func (s *Service) CommitInvestment(ctx context.Context, params store.CommitInvestmentParams) error {
	profile := params.Profile
	if profile == nil || profile.UserId == "" {
		return fmt.Errorf("profile with user id is required")
	}
	inst := profile.Guardian(params.GuardianId)
	if inst == nil {
		return fmt.Errorf("guardian %q: %w", params.GuardianId, store.ErrUnknownGuardian)
	}

	zap.L().Info("Committing investment",
		zap.String("user_id", profile.UserId),
		zap.String("guardian_id", params.GuardianId),
		zap.String("type", params.Type),
		zap.Int("amount", params.Amount))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := updateProfileTx(ctx, tx, profile); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, queryUpsertInstance,
		profile.UserId, inst.GuardianId, inst.Unlocked, inst.InvestedEnergy)
	if err != nil {
		return fmt.Errorf("failed to upsert guardian instance: %w", err)
	}

	for _, memory := range params.Memories {
		_, err = tx.ExecContext(ctx, queryInsertMemory,
			memory.Id, profile.UserId, memory.GuardianId,
			memory.FromStage, memory.ToStage, memory.InvestedAtTransition, memory.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert guardian memory: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, queryInsertAudit,
		params.TransactionId, profile.UserId, params.Type, -params.Amount,
		params.EnergyBefore, profile.Energy.Current, params.GuardianId,
		fmt.Sprintf("%s %s", params.Type, params.GuardianId))
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	profile.Version++

	zap.L().Info("Investment committed",
		zap.String("user_id", profile.UserId),
		zap.String("guardian_id", params.GuardianId),
		zap.Int("invested_energy", inst.InvestedEnergy),
		zap.Int("energy_after", profile.Energy.Current))
	return nil
}
