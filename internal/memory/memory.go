// Package memory provides an in-memory ProfileStore. It mirrors the
// SQLite backend's semantics (idempotent history upserts, optimistic
// version checks) and is used for tests and throwaway environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"guardian-engine-go/internal/models"
	"guardian-engine-go/internal/store"
)

// Ensure Store satisfies the full backend contract.
var _ store.ProfileStore = (*Store)(nil)

// auditEntry is the in-memory counterpart of an energy_transactions row.
type auditEntry struct {
	Id           string
	UserId       string
	Type         string
	Amount       int
	EnergyBefore int
	EnergyAfter  int
	GuardianId   string
	Reference    string
	CreatedAt    time.Time
}

// Store keeps all state in process memory. Every read hands out deep
// copies so callers can mutate freely before committing.
type Store struct {
	mutex    sync.RWMutex
	profiles map[string]*models.UserGuardianProfile
	history  map[string]models.EnergyHistoryRecord
	reports  map[string]models.Report
	audit    []auditEntry
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		profiles: make(map[string]*models.UserGuardianProfile),
		history:  make(map[string]models.EnergyHistoryRecord),
		reports:  make(map[string]models.Report),
	}
}

func copyProfile(p *models.UserGuardianProfile) *models.UserGuardianProfile {
	clone := *p
	clone.Guardians = make(map[string]*models.GuardianInstance, len(p.Guardians))
	for id, inst := range p.Guardians {
		instClone := *inst
		instClone.Memories = append([]models.GuardianMemory(nil), inst.Memories...)
		clone.Guardians[id] = &instClone
	}
	return &clone
}

// EnsureProfile returns the user's profile, creating an empty one on
// first contact.
func (s *Store) EnsureProfile(ctx context.Context, userId string) (*models.UserGuardianProfile, error) {
	if userId == "" {
		return nil, fmt.Errorf("user id is required")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	profile, exists := s.profiles[userId]
	if !exists {
		now := time.Now()
		profile = &models.UserGuardianProfile{
			UserId:    userId,
			Guardians: make(map[string]*models.GuardianInstance),
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.profiles[userId] = profile
	}
	return copyProfile(profile), nil
}

// GetProfile returns the user's profile or ErrProfileNotFound.
func (s *Store) GetProfile(ctx context.Context, userId string) (*models.UserGuardianProfile, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	profile, exists := s.profiles[userId]
	if !exists {
		return nil, fmt.Errorf("user %q: %w", userId, store.ErrProfileNotFound)
	}
	return copyProfile(profile), nil
}

// ListUserIds returns every known user id, sorted.
func (s *Store) ListUserIds(ctx context.Context) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// commitProfile is the version-checked profile write shared by every
// mutation path. Caller must hold the write lock.
func (s *Store) commitProfile(profile *models.UserGuardianProfile) error {
	stored, exists := s.profiles[profile.UserId]
	if !exists {
		return fmt.Errorf("user %q: %w", profile.UserId, store.ErrProfileNotFound)
	}
	if stored.Version != profile.Version {
		return fmt.Errorf("profile update for %q failed - %w", profile.UserId, store.ErrConcurrentModification)
	}

	clone := copyProfile(profile)
	clone.Version++
	clone.UpdatedAt = time.Now()
	clone.CreatedAt = stored.CreatedAt
	s.profiles[profile.UserId] = clone
	profile.Version++
	return nil
}

// CommitReport atomically persists a report's effects: the mutated
// profile, the (user, date)-keyed history row and the raw report.
func (s *Store) CommitReport(ctx context.Context, params store.CommitReportParams) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.commitProfile(params.Profile); err != nil {
		return err
	}

	now := time.Now()

	record := params.History
	if existing, exists := s.history[record.Id]; exists {
		record.CreatedAt = existing.CreatedAt
	} else {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	s.history[record.Id] = record

	reportKey := models.HistoryKey(params.Profile.UserId, params.History.Date)
	report, exists := s.reports[reportKey]
	if !exists {
		report = models.Report{
			UserId:    params.Profile.UserId,
			Date:      params.History.Date,
			CreatedAt: now,
		}
	} else if params.IsModification {
		report.ModificationCount++
	}
	report.Metrics = params.Metrics
	report.UpdatedAt = now
	s.reports[reportKey] = report

	s.audit = append(s.audit, auditEntry{
		Id:           params.GrantId,
		UserId:       params.Profile.UserId,
		Type:         "grant",
		Amount:       params.Profile.Energy.Current - params.EnergyBefore,
		EnergyBefore: params.EnergyBefore,
		EnergyAfter:  params.Profile.Energy.Current,
		Reference:    record.Id,
		CreatedAt:    now,
	})
	return nil
}

// CommitInvestment atomically persists an investment or unlock. The new
// memories already live on the profile's guardian instance; they are
// listed separately only for audit parity with the SQLite backend.
func (s *Store) CommitInvestment(ctx context.Context, params store.CommitInvestmentParams) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.commitProfile(params.Profile); err != nil {
		return err
	}

	s.audit = append(s.audit, auditEntry{
		Id:           params.TransactionId,
		UserId:       params.Profile.UserId,
		Type:         params.Type,
		Amount:       -params.Amount,
		EnergyBefore: params.EnergyBefore,
		EnergyAfter:  params.Profile.Energy.Current,
		GuardianId:   params.GuardianId,
		CreatedAt:    time.Now(),
	})
	return nil
}

// SaveProfile persists profile-only changes with optimistic locking.
func (s *Store) SaveProfile(ctx context.Context, profile *models.UserGuardianProfile) error {
	if profile == nil || profile.UserId == "" {
		return fmt.Errorf("profile with user id is required")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.commitProfile(profile)
}

// GetHistory returns the history row for one (user, date), or nil.
func (s *Store) GetHistory(ctx context.Context, userId, date string) (*models.EnergyHistoryRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	record, exists := s.history[models.HistoryKey(userId, date)]
	if !exists {
		return nil, nil
	}
	return &record, nil
}

func (s *Store) userHistory(userId string) []models.EnergyHistoryRecord {
	records := make([]models.EnergyHistoryRecord, 0)
	for _, record := range s.history {
		if record.UserId == userId {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records
}

// HistoryRange returns history rows with from <= date <= to, ascending.
func (s *Store) HistoryRange(ctx context.Context, userId, from, to string) ([]models.EnergyHistoryRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	records := make([]models.EnergyHistoryRecord, 0)
	for _, record := range s.userHistory(userId) {
		if record.Date >= from && record.Date <= to {
			records = append(records, record)
		}
	}
	return records, nil
}

// RecentHistory returns up to days rows dated strictly before until,
// ascending by date.
func (s *Store) RecentHistory(ctx context.Context, userId string, days int, until string) ([]models.EnergyHistoryRecord, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	records := make([]models.EnergyHistoryRecord, 0)
	for _, record := range s.userHistory(userId) {
		if record.Date < until {
			records = append(records, record)
		}
	}
	if len(records) > days {
		records = records[len(records)-days:]
	}
	return records, nil
}

// RecentReports returns the newest raw reports, ascending by date.
func (s *Store) RecentReports(ctx context.Context, userId string, limit int) ([]models.Report, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	reports := make([]models.Report, 0)
	for _, report := range s.reports {
		if report.UserId == userId {
			reports = append(reports, report)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Date < reports[j].Date })
	if len(reports) > limit {
		reports = reports[len(reports)-limit:]
	}
	return reports, nil
}

// ReconcileTotalEarned recomputes the lifetime total from history rows
// and compares it against the profile.
func (s *Store) ReconcileTotalEarned(ctx context.Context, userId string) (store.ReconcileResult, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	profile, exists := s.profiles[userId]
	if !exists {
		return store.ReconcileResult{}, fmt.Errorf("user %q: %w", userId, store.ErrProfileNotFound)
	}

	calculated := 0
	for _, record := range s.userHistory(userId) {
		calculated += record.TotalEarned
	}

	return store.ReconcileResult{
		UserId:          userId,
		StoredTotal:     profile.Energy.TotalEarned,
		CalculatedTotal: calculated,
		Consistent:      profile.Energy.TotalEarned == calculated,
	}, nil
}
