package registry

import "guardian-engine-go/internal/models"

// DefaultCatalog is the built-in game data, used when no catalog file is
// configured. The numbers are product tuning, not contract: a YAML
// catalog may override any of them as long as the ordering invariants
// hold.
func DefaultCatalog() Catalog {
	return Catalog{
		Guardians: []models.GuardianDefinition{
			{
				Id: "ember_fox", Name: "Ember Fox", Attribute: "flame", Tier: 1,
				Unlock: models.UnlockCondition{EnergyCost: 100},
			},
			{
				Id: "mist_koi", Name: "Mist Koi", Attribute: "tide", Tier: 1,
				Unlock: models.UnlockCondition{EnergyCost: 100},
			},
			{
				Id: "moss_owl", Name: "Moss Owl", Attribute: "gale", Tier: 1,
				Unlock: models.UnlockCondition{EnergyCost: 100},
			},
			{
				Id: "blaze_kitsune", Name: "Blaze Kitsune", Attribute: "flame", Tier: 2,
				Unlock: models.UnlockCondition{EnergyCost: 500, PrerequisiteGuardianId: "ember_fox", PrerequisiteLevel: 10},
			},
			{
				Id: "abyss_ryu", Name: "Abyss Ryu", Attribute: "tide", Tier: 2,
				Unlock: models.UnlockCondition{EnergyCost: 500, PrerequisiteGuardianId: "mist_koi", PrerequisiteLevel: 10},
			},
			{
				Id: "storm_garuda", Name: "Storm Garuda", Attribute: "gale", Tier: 2,
				Unlock: models.UnlockCondition{EnergyCost: 500, PrerequisiteGuardianId: "moss_owl", PrerequisiteLevel: 10},
			},
		},
		Stages: []models.EvolutionStage{
			{Stage: 0, Threshold: 0, Name: "Dormant"},
			{Stage: 1, Threshold: 50, Name: "Awakened"},
			{Stage: 2, Threshold: 150, Name: "Matured"},
			{Stage: 3, Threshold: 350, Name: "Ascended"},
			{Stage: 4, Threshold: 700, Name: "Transcendent"},
		},
		LevelCurve: models.LevelCurve{BaseDelta: 100, Growth: 20, MaxLevel: 99},
		LevelTitles: []models.LevelTitle{
			{MinLevel: 1, Title: "Rookie Keeper", Icon: "🌱", Color: "#8BC34A"},
			{MinLevel: 10, Title: "Apprentice Keeper", Icon: "🔰", Color: "#4CAF50"},
			{MinLevel: 20, Title: "Adept Keeper", Icon: "⭐", Color: "#03A9F4"},
			{MinLevel: 35, Title: "Veteran Keeper", Icon: "🌟", Color: "#3F51B5"},
			{MinLevel: 50, Title: "Elite Keeper", Icon: "👑", Color: "#9C27B0"},
			{MinLevel: 75, Title: "Legendary Keeper", Icon: "🔥", Color: "#FF9800"},
		},
		Energy: models.EnergyTuning{
			DailyReportBase: 10,
			StreakTiers: []models.StreakTier{
				{FromDay: 1, Bonus: 2},
				{FromDay: 4, Bonus: 5},
				{FromDay: 11, Bonus: 8},
				{FromDay: 22, Bonus: 12},
			},
			PerformanceCap:     "3",
			WeeklyBonus:        20,
			WeeklyBonusWeekday: "Sunday",
		},
		TeamGoal: models.TeamGoal{DailyViews: 1000, DailyLikes: 100, DailyReplies: 30},
		Anomaly: models.AnomalyThresholds{
			WindowDays:        7,
			ModificationLimit: 3,
			GrowthFactorLimit: "10",
			LowOutputRatio:    "0.3",
			HighEnergyLevel:   10,
			DuplicateLimit:    1,
		},
	}
}

// Default returns a registry built from the built-in catalog. The
// built-in catalog is covered by tests, so a validation failure here is
// a programming error.
func Default() *Registry {
	r, err := New(DefaultCatalog())
	if err != nil {
		panic(err)
	}
	return r
}
