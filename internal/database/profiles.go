package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/store"
)

// EnsureProfile returns the user's profile, creating an empty one on
// first contact. A fresh profile has zero energy, no streak and no
// unlocked guardians.
func (s *Service) EnsureProfile(ctx context.Context, userId string) (*models.UserGuardianProfile, error) {
	if userId == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if _, err := s.db.ExecContext(ctx, queryInsertProfile, userId); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return s.GetProfile(ctx, userId)
}

// GetProfile loads the full profile document: energy, streak, guardian
// instances and their evolution logs.
func (s *Service) GetProfile(ctx context.Context, userId string) (*models.UserGuardianProfile, error) {
	zap.L().Debug("Loading profile", zap.String("user_id", userId))

	profile := &models.UserGuardianProfile{Guardians: make(map[string]*models.GuardianInstance)}
	err := s.db.QueryRowContext(ctx, queryGetProfile, userId).Scan(
		&profile.UserId, &profile.Energy.Current, &profile.Energy.TotalEarned,
		&profile.Streak.CurrentStreak, &profile.Streak.LongestStreak, &profile.Streak.LastReportDate,
		&profile.ActiveGuardianId, &profile.Version, &profile.CreatedAt, &profile.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %q: %w", userId, store.ErrProfileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if err := s.loadInstances(ctx, userId, profile); err != nil {
		return nil, err
	}
	if err := s.loadMemories(ctx, userId, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) loadInstances(ctx context.Context, userId string, profile *models.UserGuardianProfile) error {
	rows, err := s.db.QueryContext(ctx, queryGetInstances, userId)
	if err != nil {
		return fmt.Errorf("failed to load guardian instances: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}()

	for rows.Next() {
		inst := &models.GuardianInstance{}
		if err := rows.Scan(&inst.GuardianId, &inst.Unlocked, &inst.InvestedEnergy, &inst.CreatedAt, &inst.UpdatedAt); err != nil {
			return fmt.Errorf("failed to scan guardian instance: %w", err)
		}
		profile.Guardians[inst.GuardianId] = inst
	}
	return rows.Err()
}

func (s *Service) loadMemories(ctx context.Context, userId string, profile *models.UserGuardianProfile) error {
	rows, err := s.db.QueryContext(ctx, queryGetMemories, userId)
	if err != nil {
		return fmt.Errorf("failed to load guardian memories: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}()

	for rows.Next() {
		var m models.GuardianMemory
		if err := rows.Scan(&m.Id, &m.GuardianId, &m.FromStage, &m.ToStage, &m.InvestedAtTransition, &m.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan guardian memory: %w", err)
		}
		if inst := profile.Guardians[m.GuardianId]; inst != nil {
			inst.Memories = append(inst.Memories, m)
		}
	}
	return rows.Err()
}

// ListUserIds returns every user id with a profile row.
func (s *Service) ListUserIds(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, queryListUserIds)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveProfile persists profile-only changes with optimistic locking.
// The profile's Version must be the value read; it is bumped on success.
func (s *Service) SaveProfile(ctx context.Context, profile *models.UserGuardianProfile) error {
	if profile == nil || profile.UserId == "" {
		return fmt.Errorf("profile with user id is required")
	}
	result, err := s.db.ExecContext(ctx, queryUpdateProfile,
		profile.Energy.Current, profile.Energy.TotalEarned,
		profile.Streak.CurrentStreak, profile.Streak.LongestStreak, profile.Streak.LastReportDate,
		profile.ActiveGuardianId, profile.UserId, profile.Version)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("profile update for %q failed - %w", profile.UserId, store.ErrConcurrentModification)
	}
	profile.Version++
	return nil
}

// updateProfileTx is the version-checked profile write used inside
// commit transactions.
func updateProfileTx(ctx context.Context, tx *sql.Tx, profile *models.UserGuardianProfile) error {
	result, err := tx.ExecContext(ctx, queryUpdateProfile,
		profile.Energy.Current, profile.Energy.TotalEarned,
		profile.Streak.CurrentStreak, profile.Streak.LongestStreak, profile.Streak.LastReportDate,
		profile.ActiveGuardianId, profile.UserId, profile.Version)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("profile update for %q failed - %w", profile.UserId, store.ErrConcurrentModification)
	}
	return nil
}
