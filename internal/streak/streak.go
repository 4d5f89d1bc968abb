// Package streak derives consecutive-completion streaks from daily progress.
package streak

import (
	"sort"

	"github.com/julianstephens/habitpet/internal/utils"
)

// maxWalk bounds the backward walk so a corrupt lookup can't loop forever.
const maxWalk = 100_000

// Lookup reports whether the habit was fully completed on date.
type Lookup func(date string) bool

// Current returns the number of consecutive completed days ending at today.
// A today that is not yet completed is treated as pending: counting starts
// at yesterday instead of returning zero.
func Current(today string, completed Lookup) int {
	if !utils.ValidateDateFormat(today) {
		return 0
	}

	day := today
	if !completed(day) {
		day = utils.MustAddDays(day, -1)
	}

	count := 0
	for count < maxWalk && completed(day) {
		count++
		day = utils.MustAddDays(day, -1)
	}
	return count
}

// Longest returns the longest run of consecutive dates in the set.
// Invalid dates are ignored.
func Longest(dates []string) int {
	valid := make([]string, 0, len(dates))
	seen := make(map[string]bool, len(dates))
	for _, d := range dates {
		if seen[d] || !utils.ValidateDateFormat(d) {
			continue
		}
		seen[d] = true
		valid = append(valid, d)
	}
	sort.Strings(valid)

	best, run := 0, 0
	prev := ""
	for _, d := range valid {
		if prev != "" && utils.MustAddDays(prev, 1) == d {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = d
	}
	return best
}

// FromDates builds a Lookup over a set of completed dates.
func FromDates(dates []string) Lookup {
	set := make(map[string]bool, len(dates))
	for _, d := range dates {
		set[d] = true
	}
	return func(date string) bool { return set[date] }
}
