package store

import (
	"context"
	"errors"

	"guardian-engine-go/internal/models"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrProfileNotFound        = errors.New("profile not found")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrUnknownGuardian        = errors.New("unknown guardian")
	ErrGuardianLocked         = errors.New("guardian is not unlocked")
	ErrInsufficientEnergy     = errors.New("insufficient energy")
)

// CommitReportParams carries everything one reporting event writes: the
// mutated profile, the (user, date)-keyed history row, and the raw report
// for the anomaly window. Applied atomically or not at all.
type CommitReportParams struct {
	// Profile is the mutated profile. Its Version field must still hold
	// the value read before mutation; the backend bumps it on write and
	// fails with ErrConcurrentModification if another writer got there
	// first.
	Profile        *models.UserGuardianProfile
	History        models.EnergyHistoryRecord
	Metrics        models.ReportMetrics
	IsModification bool
	// GrantId identifies the audit row for this grant.
	GrantId string
	// EnergyBefore is the spendable energy before the grant, recorded in
	// the audit trail.
	EnergyBefore int
}

// CommitInvestmentParams carries one investment or unlock action.
type CommitInvestmentParams struct {
	Profile    *models.UserGuardianProfile
	GuardianId string
	// Memories are new evolution log entries to append. Append-only: the
	// backend never edits or removes existing entries.
	Memories      []models.GuardianMemory
	TransactionId string
	// Type is "invest" or "unlock".
	Type         string
	Amount       int
	EnergyBefore int
}

// ReconcileResult compares a profile's stored lifetime total against the
// sum of its history rows.
type ReconcileResult struct {
	UserId          string
	StoredTotal     int
	CalculatedTotal int
	Consistent      bool
}

// ProfileStore is the contract every storage backend must satisfy. All
// per-user writes are transactional read-modify-writes: the engine reads
// a profile, mutates it in memory, and commits with its original version.
type ProfileStore interface {
	// EnsureProfile returns the user's profile, creating an empty one on
	// first contact.
	EnsureProfile(ctx context.Context, userId string) (*models.UserGuardianProfile, error)
	// GetProfile returns the user's profile or ErrProfileNotFound.
	GetProfile(ctx context.Context, userId string) (*models.UserGuardianProfile, error)
	// ListUserIds returns every known user id.
	ListUserIds(ctx context.Context) ([]string, error)

	// CommitReport atomically persists a report's effects.
	CommitReport(ctx context.Context, params CommitReportParams) error
	// CommitInvestment atomically persists an investment or unlock.
	CommitInvestment(ctx context.Context, params CommitInvestmentParams) error
	// SaveProfile persists profile-only changes (e.g. switching the
	// active guardian), version-checked like the commit methods.
	SaveProfile(ctx context.Context, profile *models.UserGuardianProfile) error

	// GetHistory returns the history row for one (user, date), or nil.
	GetHistory(ctx context.Context, userId, date string) (*models.EnergyHistoryRecord, error)
	// HistoryRange returns history rows with from <= date <= to, ascending.
	HistoryRange(ctx context.Context, userId, from, to string) ([]models.EnergyHistoryRecord, error)
	// RecentHistory returns up to days rows dated strictly before until,
	// ascending by date.
	RecentHistory(ctx context.Context, userId string, days int, until string) ([]models.EnergyHistoryRecord, error)
	// RecentReports returns the newest raw reports, ascending by date.
	RecentReports(ctx context.Context, userId string, limit int) ([]models.Report, error)

	// ReconcileTotalEarned recomputes the lifetime total from history and
	// compares it to the profile row.
	ReconcileTotalEarned(ctx context.Context, userId string) (ReconcileResult, error)
}
