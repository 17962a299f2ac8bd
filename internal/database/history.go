package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/store"
)

func scanHistory(rows *sql.Rows) (models.EnergyHistoryRecord, error) {
	var rec models.EnergyHistoryRecord
	err := rows.Scan(&rec.Id, &rec.UserId, &rec.Date,
		&rec.Breakdown.DailyReport, &rec.Breakdown.StreakBonus,
		&rec.Breakdown.PerformanceBonus, &rec.Breakdown.WeeklyBonus,
		&rec.TotalEarned, &rec.StreakDay, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

// GetHistory returns the history row for one (user, date), or nil when
// the user did not report that day.
func (s *Service) GetHistory(ctx context.Context, userId, date string) (*models.EnergyHistoryRecord, error) {
	var rec models.EnergyHistoryRecord
	err := s.db.QueryRowContext(ctx, queryGetHistory, models.HistoryKey(userId, date)).Scan(
		&rec.Id, &rec.UserId, &rec.Date,
		&rec.Breakdown.DailyReport, &rec.Breakdown.StreakBonus,
		&rec.Breakdown.PerformanceBonus, &rec.Breakdown.WeeklyBonus,
		&rec.TotalEarned, &rec.StreakDay, &rec.CreatedAt, &rec.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history for %s on %s: %w", userId, date, err)
	}
	return &rec, nil
}

// HistoryRange returns history rows with from <= date <= to, ascending.
func (s *Service) HistoryRange(ctx context.Context, userId, from, to string) ([]models.EnergyHistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryHistoryRange, userId, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query history range: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}()

	records := make([]models.EnergyHistoryRecord, 0)
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecentHistory returns up to days rows dated strictly before until,
// ascending by date.
func (s *Service) RecentHistory(ctx context.Context, userId string, days int, until string) ([]models.EnergyHistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryRecentHistory, userId, until, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent history: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}()

	records := make([]models.EnergyHistoryRecord, 0, days)
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// The query walks newest-first; callers want ascending dates.
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// RecentReports returns the newest raw reports, ascending by date.
func (s *Service) RecentReports(ctx context.Context, userId string, limit int) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, queryRecentReports, userId, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent reports: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}()

	reports := make([]models.Report, 0, limit)
	for rows.Next() {
		var r models.Report
		err := rows.Scan(&r.UserId, &r.Date,
			&r.Metrics.Views, &r.Metrics.Likes, &r.Metrics.Replies,
			&r.Metrics.NewFollowers, &r.Metrics.PostCount,
			&r.ModificationCount, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(reports)-1; i < j; i, j = i+1, j-1 {
		reports[i], reports[j] = reports[j], reports[i]
	}
	return reports, nil
}

// ReconcileTotalEarned recomputes the lifetime total from the history
// ledger and compares it to the profile row, surfacing drift.
func (s *Service) ReconcileTotalEarned(ctx context.Context, userId string) (store.ReconcileResult, error) {
	zap.L().Info("Reconciling total earned", zap.String("user_id", userId))

	profile, err := s.GetProfile(ctx, userId)
	if err != nil {
		return store.ReconcileResult{}, err
	}

	var calculated int
	if err := s.db.QueryRowContext(ctx, querySumHistory, userId).Scan(&calculated); err != nil {
		return store.ReconcileResult{}, fmt.Errorf("failed to sum history: %w", err)
	}

	result := store.ReconcileResult{
		UserId:          userId,
		StoredTotal:     profile.Energy.TotalEarned,
		CalculatedTotal: calculated,
		Consistent:      profile.Energy.TotalEarned == calculated,
	}
	if !result.Consistent {
		zap.L().Error("Total earned reconciliation failed",
			zap.String("user_id", userId),
			zap.Int("stored_total", result.StoredTotal),
			zap.Int("calculated_total", result.CalculatedTotal))
	} else {
		zap.L().Info("Total earned reconciliation successful",
			zap.String("user_id", userId),
			zap.Int("total_earned", calculated))
	}
	return result, nil
}
