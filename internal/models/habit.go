package models

import (
	"time"

	"github.com/julianstephens/habitpet/internal/constants"
)

// Frequency describes how often a habit is expected to be done.
// Days is reserved for weekly habits and is not consulted by any computation.
type Frequency struct {
	Type constants.FrequencyType `json:"type"`
	Days []int                   `json:"days"`
}

// Habit represents a user-defined recurring action with a daily target
type Habit struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Color       string              `json:"color"`
	Icon        string              `json:"icon"`
	TimeOfDay   constants.TimeOfDay `json:"time_of_day"`
	Frequency   Frequency           `json:"frequency"`
	TargetCount int                 `json:"target_count"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Clone returns a copy of the habit that shares no slices with the receiver.
func (h Habit) Clone() Habit {
	if h.Frequency.Days != nil {
		h.Frequency.Days = append([]int(nil), h.Frequency.Days...)
	}
	return h
}
