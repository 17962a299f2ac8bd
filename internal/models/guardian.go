package models

import "time"

// Evolution stage bounds. Stages run 0..MaxStage and are always derived
// from invested energy, never stored on their own.
const (
	MinStage = 0
	MaxStage = 4
)

// UnlockCondition gates a guardian behind energy cost and optional
// prerequisites (a grown same-attribute guardian, a minimum level).
type UnlockCondition struct {
	EnergyCost             int    `yaml:"energy_cost"`
	PrerequisiteGuardianId string `yaml:"prerequisite_guardian_id,omitempty"`
	PrerequisiteLevel      int    `yaml:"prerequisite_level,omitempty"`
}

// GuardianDefinition is immutable catalog data, loaded once per process.
type GuardianDefinition struct {
	Id        string          `yaml:"id"`
	Name      string          `yaml:"name"`
	Attribute string          `yaml:"attribute"`
	Tier      int             `yaml:"tier"`
	Unlock    UnlockCondition `yaml:"unlock"`
}

// EvolutionStage is one row of the ordered stage table. Threshold is the
// cumulative invested energy required to reach the stage.
type EvolutionStage struct {
	Stage     int    `yaml:"stage"`
	Threshold int    `yaml:"threshold"`
	Name      string `yaml:"name"`
}

// GuardianMemory is one entry of a guardian's append-only evolution log.
type GuardianMemory struct {
	Id                   string    `db:"id"`
	GuardianId           string    `db:"guardian_id"`
	FromStage            int       `db:"from_stage"`
	ToStage              int       `db:"to_stage"`
	InvestedAtTransition int       `db:"invested_at_transition"`
	CreatedAt            time.Time `db:"created_at"`
}

// GuardianInstance is one user's copy of a catalog guardian.
// Stage is intentionally absent: it is recomputed from InvestedEnergy.
type GuardianInstance struct {
	GuardianId     string           `db:"guardian_id"`
	Unlocked       bool             `db:"unlocked"`
	InvestedEnergy int              `db:"invested_energy"`
	Memories       []GuardianMemory `db:"-"`
	CreatedAt      time.Time        `db:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at"`
}

// UserGuardianProfile is the single per-user document every engine
// operation reads and writes. Version backs optimistic locking in the
// storage adapter; the engine itself never inspects it.
type UserGuardianProfile struct {
	UserId           string
	Energy           UserEnergyData
	Streak           UserStreakData
	Guardians        map[string]*GuardianInstance
	ActiveGuardianId string
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Guardian returns the instance for id, or nil if the user has never
// touched that guardian.
func (p *UserGuardianProfile) Guardian(id string) *GuardianInstance {
	if p.Guardians == nil {
		return nil
	}
	return p.Guardians[id]
}

// UnlockCheck is the structured outcome of an unlock eligibility query.
// A refusal is an expected result the caller branches on, not an error.
type UnlockCheck struct {
	CanUnlock bool   `json:"can_unlock"`
	Reason    string `json:"reason,omitempty"`
}

// InvestmentResult describes the effect of one investment action.
type InvestmentResult struct {
	GuardianId     string
	Requested      int
	ActualInvested int
	PreviousStage  int
	NewStage       int
	Evolved        bool
}
