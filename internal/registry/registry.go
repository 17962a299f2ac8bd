package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"

	"guardian-engine-go/internal/engine"
	"guardian-engine-go/internal/models"
)

// Catalog is the on-disk (YAML) shape of the static game data: the
// guardian definitions, the evolution stage table, the level curve and
// titles, and the energy/anomaly tuning constants.
type Catalog struct {
	Guardians   []models.GuardianDefinition `yaml:"guardians"`
	Stages      []models.EvolutionStage     `yaml:"evolution_stages"`
	LevelCurve  models.LevelCurve           `yaml:"level_curve"`
	LevelTitles []models.LevelTitle         `yaml:"level_titles"`
	Energy      models.EnergyTuning         `yaml:"energy"`
	TeamGoal    models.TeamGoal             `yaml:"team_goal"`
	Anomaly     models.AnomalyThresholds    `yaml:"anomaly"`
}

// Registry is the validated, read-only lookup structure built from a
// Catalog once at process start. All ordering invariants (ascending
// stage thresholds, disjoint title ranges, non-decreasing streak tiers)
// are checked here so the engine can rely on them.
type Registry struct {
	guardians map[string]models.GuardianDefinition
	order     []string
	stages    []models.EvolutionStage
	curve     models.LevelCurve
	titles    []models.LevelTitle
	tuning    models.EnergyTuning
	goal      models.TeamGoal
	anomaly   models.AnomalyThresholds
}

// Load builds a registry from a YAML catalog file. An empty path yields
// the built-in catalog.
func Load(catalogFile string) (*Registry, error) {
	if catalogFile == "" {
		return New(DefaultCatalog())
	}

	path := catalogFile
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, catalogFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", catalogFile, err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", catalogFile, err)
	}
	return New(catalog)
}

// New validates a catalog and builds the registry.
func New(catalog Catalog) (*Registry, error) {
	if err := validateStages(catalog.Stages); err != nil {
		return nil, err
	}
	if err := validateCurve(catalog.LevelCurve); err != nil {
		return nil, err
	}
	if err := validateTitles(catalog.LevelTitles, catalog.LevelCurve.MaxLevel); err != nil {
		return nil, err
	}
	if err := validateTuning(catalog.Energy); err != nil {
		return nil, err
	}
	if err := validateAnomaly(catalog.Anomaly); err != nil {
		return nil, err
	}

	guardians := make(map[string]models.GuardianDefinition, len(catalog.Guardians))
	order := make([]string, 0, len(catalog.Guardians))
	for i, g := range catalog.Guardians {
		if g.Id == "" {
			return nil, fmt.Errorf("guardian at index %d missing id", i)
		}
		if g.Name == "" || g.Attribute == "" {
			return nil, fmt.Errorf("guardian %q missing name or attribute", g.Id)
		}
		if g.Tier < 1 {
			return nil, fmt.Errorf("guardian %q has invalid tier %d", g.Id, g.Tier)
		}
		if g.Unlock.EnergyCost < 0 {
			return nil, fmt.Errorf("guardian %q has negative unlock cost", g.Id)
		}
		if _, exists := guardians[g.Id]; exists {
			return nil, fmt.Errorf("duplicate guardian id %q", g.Id)
		}
		guardians[g.Id] = g
		order = append(order, g.Id)
	}
	for _, g := range guardians {
		if g.Unlock.PrerequisiteGuardianId == "" {
			continue
		}
		prereq, ok := guardians[g.Unlock.PrerequisiteGuardianId]
		if !ok {
			return nil, fmt.Errorf("guardian %q requires unknown guardian %q", g.Id, g.Unlock.PrerequisiteGuardianId)
		}
		if prereq.Tier >= g.Tier {
			return nil, fmt.Errorf("guardian %q prerequisite %q must be a lower tier", g.Id, prereq.Id)
		}
	}

	return &Registry{
		guardians: guardians,
		order:     order,
		stages:    catalog.Stages,
		curve:     catalog.LevelCurve,
		titles:    catalog.LevelTitles,
		tuning:    catalog.Energy,
		goal:      catalog.TeamGoal,
		anomaly:   catalog.Anomaly,
	}, nil
}

func validateStages(stages []models.EvolutionStage) error {
	if len(stages) != models.MaxStage+1 {
		return fmt.Errorf("evolution table needs %d stages, got %d", models.MaxStage+1, len(stages))
	}
	for i, s := range stages {
		if s.Stage != i {
			return fmt.Errorf("evolution stage at index %d has stage number %d", i, s.Stage)
		}
		if i == 0 {
			if s.Threshold != 0 {
				return fmt.Errorf("stage 0 threshold must be 0, got %d", s.Threshold)
			}
			continue
		}
		if s.Threshold <= stages[i-1].Threshold {
			return fmt.Errorf("stage %d threshold %d does not increase over stage %d", s.Stage, s.Threshold, s.Stage-1)
		}
	}
	return nil
}

func validateCurve(curve models.LevelCurve) error {
	if curve.BaseDelta <= 0 {
		return fmt.Errorf("level curve base delta must be positive, got %d", curve.BaseDelta)
	}
	if curve.Growth < 0 {
		return fmt.Errorf("level curve growth cannot be negative, got %d", curve.Growth)
	}
	if curve.MaxLevel < 1 {
		return fmt.Errorf("max level must be at least 1, got %d", curve.MaxLevel)
	}
	return nil
}

func validateTitles(titles []models.LevelTitle, maxLevel int) error {
	if len(titles) == 0 {
		return fmt.Errorf("at least one level title is required")
	}
	if titles[0].MinLevel != 1 {
		return fmt.Errorf("first level title must start at level 1, got %d", titles[0].MinLevel)
	}
	for i := 1; i < len(titles); i++ {
		if titles[i].MinLevel <= titles[i-1].MinLevel {
			return fmt.Errorf("level title %q does not start above %q", titles[i].Title, titles[i-1].Title)
		}
	}
	if titles[len(titles)-1].MinLevel > maxLevel {
		return fmt.Errorf("level title %q starts above max level %d", titles[len(titles)-1].Title, maxLevel)
	}
	return nil
}

func validateTuning(tuning models.EnergyTuning) error {
	if tuning.DailyReportBase <= 0 {
		return fmt.Errorf("daily report base must be positive, got %d", tuning.DailyReportBase)
	}
	if len(tuning.StreakTiers) == 0 {
		return fmt.Errorf("at least one streak tier is required")
	}
	if tuning.StreakTiers[0].FromDay != 1 {
		return fmt.Errorf("first streak tier must start at day 1, got %d", tuning.StreakTiers[0].FromDay)
	}
	for i, tier := range tuning.StreakTiers {
		if tier.Bonus < 0 {
			return fmt.Errorf("streak tier %d has negative bonus", i)
		}
		if i == 0 {
			continue
		}
		if tier.FromDay <= tuning.StreakTiers[i-1].FromDay {
			return fmt.Errorf("streak tier %d does not start after tier %d", i, i-1)
		}
		if tier.Bonus < tuning.StreakTiers[i-1].Bonus {
			return fmt.Errorf("streak tier %d bonus %d decreases below tier %d", i, tier.Bonus, i-1)
		}
	}
	capRatio, err := decimal.NewFromString(tuning.PerformanceCap)
	if err != nil {
		return fmt.Errorf("invalid performance cap %q: %w", tuning.PerformanceCap, err)
	}
	if capRatio.IsNegative() {
		return fmt.Errorf("performance cap cannot be negative")
	}
	if tuning.WeeklyBonus < 0 {
		return fmt.Errorf("weekly bonus cannot be negative, got %d", tuning.WeeklyBonus)
	}
	if tuning.WeeklyBonus > 0 && !validWeekday(tuning.WeeklyBonusWeekday) {
		return fmt.Errorf("invalid weekly bonus weekday %q", tuning.WeeklyBonusWeekday)
	}
	return nil
}

func validWeekday(name string) bool {
	switch name {
	case "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday":
		return true
	}
	return false
}

func validateAnomaly(th models.AnomalyThresholds) error {
	if th.WindowDays <= 0 {
		return fmt.Errorf("anomaly window must be positive, got %d", th.WindowDays)
	}
	if _, err := decimal.NewFromString(th.GrowthFactorLimit); err != nil {
		return fmt.Errorf("invalid growth factor limit %q: %w", th.GrowthFactorLimit, err)
	}
	if _, err := decimal.NewFromString(th.LowOutputRatio); err != nil {
		return fmt.Errorf("invalid low output ratio %q: %w", th.LowOutputRatio, err)
	}
	return nil
}

// Guardian looks up a catalog definition by id.
func (r *Registry) Guardian(id string) (models.GuardianDefinition, bool) {
	g, ok := r.guardians[id]
	return g, ok
}

// Guardians returns all definitions in catalog order.
func (r *Registry) Guardians() []models.GuardianDefinition {
	out := make([]models.GuardianDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.guardians[id])
	}
	return out
}

// Stages returns the ordered evolution stage table.
func (r *Registry) Stages() []models.EvolutionStage { return r.stages }

// StageName returns the display name of a stage number.
func (r *Registry) StageName(stage int) string {
	if stage < 0 || stage >= len(r.stages) {
		return ""
	}
	return r.stages[stage].Name
}

// LevelCurve returns the level progression curve.
func (r *Registry) LevelCurve() models.LevelCurve { return r.curve }

// LevelTitles returns the ordered level title ranges.
func (r *Registry) LevelTitles() []models.LevelTitle { return r.titles }

// Tuning returns the energy ledger tuning constants.
func (r *Registry) Tuning() models.EnergyTuning { return r.tuning }

// TeamGoal returns the team's daily output target.
func (r *Registry) TeamGoal() models.TeamGoal { return r.goal }

// AnomalyThresholds returns the anomaly detector knobs.
func (r *Registry) AnomalyThresholds() models.AnomalyThresholds { return r.anomaly }

// minimum stage a prerequisite guardian must have grown to before a
// dependent guardian can be unlocked
const prerequisiteStage = 2

// CanUnlockGuardian evaluates unlock eligibility for one guardian. A
// refusal is an expected outcome returned as a structured result; only
// an unknown guardian id is an error.
func (r *Registry) CanUnlockGuardian(id string, profile *models.UserGuardianProfile) (models.UnlockCheck, error) {
	def, ok := r.guardians[id]
	if !ok {
		return models.UnlockCheck{}, fmt.Errorf("unknown guardian id %q", id)
	}
	if profile == nil {
		return models.UnlockCheck{}, fmt.Errorf("profile is required")
	}

	if inst := profile.Guardian(id); inst != nil && inst.Unlocked {
		return models.UnlockCheck{Reason: "already unlocked"}, nil
	}
	if profile.Energy.Current < def.Unlock.EnergyCost {
		return models.UnlockCheck{
			Reason: fmt.Sprintf("requires %dE, have %dE", def.Unlock.EnergyCost, profile.Energy.Current),
		}, nil
	}
	if def.Unlock.PrerequisiteLevel > 0 {
		level := engine.LevelForEnergy(profile.Energy.TotalEarned, r.curve)
		if level < def.Unlock.PrerequisiteLevel {
			return models.UnlockCheck{
				Reason: fmt.Sprintf("requires level %d, at level %d", def.Unlock.PrerequisiteLevel, level),
			}, nil
		}
	}
	if prereqId := def.Unlock.PrerequisiteGuardianId; prereqId != "" {
		prereq := profile.Guardian(prereqId)
		if prereq == nil || !prereq.Unlocked {
			return models.UnlockCheck{
				Reason: fmt.Sprintf("requires guardian %q to be unlocked first", prereqId),
			}, nil
		}
		if stage := engine.CurrentStage(prereq.InvestedEnergy, r.stages); stage < prerequisiteStage {
			return models.UnlockCheck{
				Reason: fmt.Sprintf("requires guardian %q at stage %d, currently stage %d", prereqId, prerequisiteStage, stage),
			}, nil
		}
	}

	return models.UnlockCheck{CanUnlock: true}, nil
}
