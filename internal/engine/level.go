package engine

import "guardian-engine-go/internal/models"

// LevelForEnergy maps cumulative earned energy to a level. Strictly
// non-decreasing in totalEarned; level 1 covers [0, BaseDelta) and each
// subsequent level costs Growth more than the one before it.
func LevelForEnergy(totalEarned int, curve models.LevelCurve) int {
	if totalEarned < 0 {
		totalEarned = 0
	}
	level := 1
	remaining := totalEarned
	for level < curve.MaxLevel {
		delta := curve.BaseDelta + curve.Growth*(level-1)
		if delta <= 0 || remaining < delta {
			break
		}
		remaining -= delta
		level++
	}
	return level
}

// TitleForLevel picks the title of the highest range the level falls in.
// Titles are validated at registry load: sorted, starting at level 1, so
// every level maps to exactly one title.
func TitleForLevel(level int, titles []models.LevelTitle) models.LevelTitle {
	var current models.LevelTitle
	for _, t := range titles {
		if level >= t.MinLevel {
			current = t
		}
	}
	return current
}

// CalculateLevel derives the full level presentation from a cumulative
// energy total.
func CalculateLevel(totalEarned int, curve models.LevelCurve, titles []models.LevelTitle) models.LevelInfo {
	level := LevelForEnergy(totalEarned, curve)
	title := TitleForLevel(level, titles)
	return models.LevelInfo{
		Level: level,
		Title: title.Title,
		Icon:  title.Icon,
		Color: title.Color,
	}
}
