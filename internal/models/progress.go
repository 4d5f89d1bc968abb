package models

// DailyProgress is the record of how many times a habit was logged on a calendar date.
// At most one row exists per (HabitID, Date).
type DailyProgress struct {
	HabitID      string `json:"habit_id"`
	Date         string `json:"date"` // YYYY-MM-DD format
	CurrentCount int    `json:"current_count"`
	Completed    bool   `json:"completed"`
}

// Key returns the composite identity of the row.
func (p DailyProgress) Key() ProgressKey {
	return ProgressKey{HabitID: p.HabitID, Date: p.Date}
}

// ProgressKey identifies a progress row
type ProgressKey struct {
	HabitID string
	Date    string
}
