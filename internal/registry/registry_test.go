package registry

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v2"

	"guardian-engine-go/internal/models"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	reg, err := New(DefaultCatalog())
	if err != nil {
		t.Fatalf("Built-in catalog failed validation: %v", err)
	}

	if len(reg.Guardians()) != 6 {
		t.Errorf("Expected 6 guardians, got %d", len(reg.Guardians()))
	}
	if len(reg.Stages()) != models.MaxStage+1 {
		t.Errorf("Expected %d stages, got %d", models.MaxStage+1, len(reg.Stages()))
	}
	if reg.StageName(0) != "Dormant" || reg.StageName(4) != "Transcendent" {
		t.Errorf("Unexpected stage names: %q, %q", reg.StageName(0), reg.StageName(4))
	}
}

func TestNew_RejectsBadStageTable(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Catalog)
	}{
		{
			name:   "too few stages",
			mutate: func(c *Catalog) { c.Stages = c.Stages[:3] },
		},
		{
			name:   "stage 0 threshold not zero",
			mutate: func(c *Catalog) { c.Stages[0].Threshold = 10 },
		},
		{
			name:   "non-increasing thresholds",
			mutate: func(c *Catalog) { c.Stages[2].Threshold = c.Stages[1].Threshold },
		},
		{
			name:   "wrong stage numbering",
			mutate: func(c *Catalog) { c.Stages[3].Stage = 7 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := DefaultCatalog()
			tt.mutate(&catalog)
			if _, err := New(catalog); err == nil {
				t.Fatal("Expected validation error")
			}
		})
	}
}

func TestNew_RejectsBadTuning(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Catalog)
	}{
		{
			name:   "zero daily base",
			mutate: func(c *Catalog) { c.Energy.DailyReportBase = 0 },
		},
		{
			name:   "first streak tier not day 1",
			mutate: func(c *Catalog) { c.Energy.StreakTiers[0].FromDay = 2 },
		},
		{
			name:   "decreasing streak bonus",
			mutate: func(c *Catalog) { c.Energy.StreakTiers[1].Bonus = 1 },
		},
		{
			name:   "garbage performance cap",
			mutate: func(c *Catalog) { c.Energy.PerformanceCap = "lots" },
		},
		{
			name:   "invalid weekly bonus weekday",
			mutate: func(c *Catalog) { c.Energy.WeeklyBonusWeekday = "Funday" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := DefaultCatalog()
			tt.mutate(&catalog)
			if _, err := New(catalog); err == nil {
				t.Fatal("Expected validation error")
			}
		})
	}
}

func TestNew_RejectsBadGuardians(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.Guardians = append(catalog.Guardians, catalog.Guardians[0])
	if _, err := New(catalog); err == nil {
		t.Fatal("Expected error for duplicate guardian id")
	}

	catalog = DefaultCatalog()
	catalog.Guardians[3].Unlock.PrerequisiteGuardianId = "does_not_exist"
	if _, err := New(catalog); err == nil {
		t.Fatal("Expected error for unknown prerequisite guardian")
	}
}

func TestNew_RejectsBadTitles(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.LevelTitles[0].MinLevel = 2
	if _, err := New(catalog); err == nil {
		t.Fatal("Expected error for titles not starting at level 1")
	}

	catalog = DefaultCatalog()
	catalog.LevelTitles[2].MinLevel = catalog.LevelTitles[1].MinLevel
	if _, err := New(catalog); err == nil {
		t.Fatal("Expected error for overlapping title ranges")
	}
}

func TestLoad_EmptyPathUsesBuiltIn(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, ok := reg.Guardian("ember_fox"); !ok {
		t.Error("Expected built-in catalog to contain ember_fox")
	}
}

func TestLoad_FromYamlFile(t *testing.T) {
	catalog := DefaultCatalog()
	catalog.Guardians[0].Name = "Cinder Fox"

	data, err := yaml.Marshal(catalog)
	if err != nil {
		t.Fatalf("Failed to marshal catalog: %v", err)
	}
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write catalog file: %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	g, ok := reg.Guardian("ember_fox")
	if !ok {
		t.Fatal("Expected ember_fox in loaded catalog")
	}
	if g.Name != "Cinder Fox" {
		t.Errorf("Expected overridden name, got %q", g.Name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing catalog file")
	}
}

func unlockTestProfile(current, totalEarned int) *models.UserGuardianProfile {
	return &models.UserGuardianProfile{
		UserId:    "user1",
		Energy:    models.UserEnergyData{Current: current, TotalEarned: totalEarned},
		Guardians: map[string]*models.GuardianInstance{},
	}
}

func TestCanUnlockGuardian_TierOne(t *testing.T) {
	reg := Default()

	check, err := reg.CanUnlockGuardian("ember_fox", unlockTestProfile(100, 100))
	if err != nil {
		t.Fatalf("CanUnlockGuardian failed: %v", err)
	}
	if !check.CanUnlock {
		t.Errorf("Expected unlock allowed, refused with %q", check.Reason)
	}
}

func TestCanUnlockGuardian_InsufficientEnergy(t *testing.T) {
	reg := Default()

	check, err := reg.CanUnlockGuardian("ember_fox", unlockTestProfile(99, 99))
	if err != nil {
		t.Fatalf("CanUnlockGuardian failed: %v", err)
	}
	if check.CanUnlock {
		t.Error("Expected refusal for 99E against a 100E cost")
	}
	if check.Reason == "" {
		t.Error("Refusal must carry a reason")
	}
}

func TestCanUnlockGuardian_AlreadyUnlocked(t *testing.T) {
	reg := Default()
	profile := unlockTestProfile(1000, 1000)
	profile.Guardians["ember_fox"] = &models.GuardianInstance{GuardianId: "ember_fox", Unlocked: true}

	check, err := reg.CanUnlockGuardian("ember_fox", profile)
	if err != nil {
		t.Fatalf("CanUnlockGuardian failed: %v", err)
	}
	if check.CanUnlock {
		t.Error("Expected refusal for already unlocked guardian")
	}
}

func TestCanUnlockGuardian_PrerequisiteStage(t *testing.T) {
	reg := Default()

	// Level 10 costs the deltas of levels 1..9: sum(100+20i, i=0..8) = 1620.
	totalForLevel10 := 1620

	// Prerequisite at stage 1 (50E invested): refused.
	profile := unlockTestProfile(500, totalForLevel10)
	profile.Guardians["ember_fox"] = &models.GuardianInstance{
		GuardianId: "ember_fox", Unlocked: true, InvestedEnergy: 50,
	}
	check, err := reg.CanUnlockGuardian("blaze_kitsune", profile)
	if err != nil {
		t.Fatalf("CanUnlockGuardian failed: %v", err)
	}
	if check.CanUnlock {
		t.Error("Expected refusal while prerequisite guardian is only at stage 1")
	}

	// Prerequisite at stage 2 (150E invested): allowed.
	profile.Guardians["ember_fox"].InvestedEnergy = 150
	check, err = reg.CanUnlockGuardian("blaze_kitsune", profile)
	if err != nil {
		t.Fatalf("CanUnlockGuardian failed: %v", err)
	}
	if !check.CanUnlock {
		t.Errorf("Expected unlock allowed at stage 2, refused with %q", check.Reason)
	}
}

func TestCanUnlockGuardian_PrerequisiteLevel(t *testing.T) {
	reg := Default()

	profile := unlockTestProfile(500, 500)
	profile.Guardians["ember_fox"] = &models.GuardianInstance{
		GuardianId: "ember_fox", Unlocked: true, InvestedEnergy: 150,
	}

	check, err := reg.CanUnlockGuardian("blaze_kitsune", profile)
	if err != nil {
		t.Fatalf("CanUnlockGuardian failed: %v", err)
	}
	if check.CanUnlock {
		t.Error("Expected refusal below the level prerequisite")
	}
}

func TestCanUnlockGuardian_UnknownId(t *testing.T) {
	reg := Default()

	if _, err := reg.CanUnlockGuardian("nonexistent", unlockTestProfile(0, 0)); err == nil {
		t.Fatal("Expected error for unknown guardian id")
	}
}
