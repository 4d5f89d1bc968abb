// Package pet holds the deterministic rules that evolve the pet from
// completion activity and elapsed time.
package pet

import (
	"time"

	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/utils"
)

const (
	// CompletionXP is granted once per completion transition.
	CompletionXP = 20
	// CompletionHealth is granted once per completion transition.
	CompletionHealth = 10
	// PartialHealth is granted for an increment that does not complete the habit.
	PartialHealth = 2

	// LevelThreshold is the XP step between levels.
	LevelThreshold = 100

	// DecayPerMissedDay is the health lost for each past day without any completion.
	DecayPerMissedDay = 10

	MaxHealth = 100
	MinHealth = 0

	// Mood thresholds on health.
	HappyHealth   = 70
	NeutralHealth = 40
	SadHealth     = 20
)

// LevelForXP returns the level for a lifetime XP total: 1 + floor(xp / 100).
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}
	return 1 + totalXP/LevelThreshold
}

// XPToNextLevel returns the lifetime XP at which the given level ends.
func XPToNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return level * LevelThreshold
}

// LevelProgress returns the percentage (0-100) of the way from the current level to the next.
func LevelProgress(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	level := LevelForXP(totalXP)
	floor := (level - 1) * LevelThreshold
	return (totalXP - floor) * 100 / LevelThreshold
}

// ClampHealth bounds health to [MinHealth, MaxHealth].
func ClampHealth(h int) int {
	if h < MinHealth {
		return MinHealth
	}
	if h > MaxHealth {
		return MaxHealth
	}
	return h
}

// MoodFor derives a mood from health. Sleeping overrides every health mood.
func MoodFor(health int, asleep bool) constants.Mood {
	if asleep {
		return constants.MoodSleeping
	}
	switch {
	case health >= HappyHealth:
		return constants.MoodHappy
	case health >= NeutralHealth:
		return constants.MoodNeutral
	case health >= SadHealth:
		return constants.MoodSad
	default:
		return constants.MoodSick
	}
}

// InSleepWindow reports whether now's local time of day falls in [start, end).
// A window whose end is earlier than its start wraps past midnight.
// Unparseable or empty windows never match.
func InSleepWindow(now time.Time, start, end string) bool {
	s, err := utils.ParseTimeToMinutes(start)
	if err != nil {
		return false
	}
	e, err := utils.ParseTimeToMinutes(end)
	if err != nil {
		return false
	}
	if s == e {
		return false
	}

	m := utils.MinutesOfDay(now)
	if s < e {
		return m >= s && m < e
	}
	return m >= s || m < e
}

// Hatch returns a brand new pet.
func Hatch(name, color string, now time.Time, settings models.Settings) models.Pet {
	p := models.Pet{
		Name:          name,
		Color:         color,
		Health:        MaxHealth,
		XP:            0,
		TotalXP:       0,
		Level:         1,
		Inventory:     []string{},
		CreatedAt:     now,
		LastDecayDate: utils.FormatDate(now),
	}
	p.Mood = MoodFor(p.Health, InSleepWindow(now, settings.SleepStart, settings.SleepEnd))
	return p
}

// ApplyCompletion grants the reward for a completion transition.
func ApplyCompletion(p models.Pet) models.Pet {
	p = p.Clone()
	p.XP += CompletionXP
	p.TotalXP += CompletionXP
	p.Health = ClampHealth(p.Health + CompletionHealth)
	return levelUp(p)
}

// ApplyPartial grants the reward for an increment that did not complete the habit.
func ApplyPartial(p models.Pet) models.Pet {
	p = p.Clone()
	p.Health = ClampHealth(p.Health + PartialHealth)
	return p
}

// ApplyDecay removes health for missed days. Health never drops below zero.
func ApplyDecay(p models.Pet, missedDays int) models.Pet {
	if missedDays <= 0 {
		return p
	}
	p = p.Clone()
	p.Health = ClampHealth(p.Health - missedDays*DecayPerMissedDay)
	return p
}

// Refresh recomputes the displayed mood for the given time and sleep window.
func Refresh(p models.Pet, now time.Time, settings models.Settings) models.Pet {
	p.Mood = MoodFor(p.Health, InSleepWindow(now, settings.SleepStart, settings.SleepEnd))
	return p
}

// levelUp recomputes the level from lifetime XP and grants free unlocks.
// Level never decreases, even if a stored level is ahead of the formula.
func levelUp(p models.Pet) models.Pet {
	if computed := LevelForXP(p.TotalXP); computed > p.Level {
		p.Level = computed
	}
	for _, item := range UnlockedAt(p.Level) {
		if !p.Owns(item.ID) {
			p.Inventory = append(p.Inventory, item.ID)
		}
	}
	return p
}
