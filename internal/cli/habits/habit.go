package habits

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitpet/internal/cli"
	"github.com/julianstephens/habitpet/internal/constants"
	"github.com/julianstephens/habitpet/internal/engine"
	"github.com/julianstephens/habitpet/internal/models"
	"github.com/julianstephens/habitpet/internal/utils"
	"github.com/julianstephens/habitpet/internal/validation"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits with today's progress." default:"1"`
	Edit    HabitEditCmd    `cmd:"" help:"Edit a habit."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit and all of its progress."`
	Log     HabitLogCmd     `cmd:"" help:"Log one repetition of a habit."`
	Undo    HabitUndoCmd    `cmd:"" help:"Undo one repetition of a habit."`
	Streak  HabitStreakCmd  `cmd:"" help:"Show current and longest streaks."`
	History HabitHistoryCmd `cmd:"" help:"Show habit history (ASCII grid)."`
}

// ParseWeekdays parses a comma-separated list of weekdays into 0=Sunday..6=Saturday
func ParseWeekdays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	var days []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		day := -1
		if wd, ok := dayMap[part]; ok {
			day = int(wd)
		} else if num, err := strconv.Atoi(part); err == nil && num >= 0 && num <= 6 {
			day = num
		}
		if day < 0 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	return days, nil
}

// FormatFrequency formats a frequency into a human-readable string
func FormatFrequency(f models.Frequency) string {
	switch f.Type {
	case constants.FrequencyWeekly:
		if len(f.Days) > 0 {
			var days []string
			for _, d := range f.Days {
				days = append(days, time.Weekday(d).String()[:3])
			}
			return fmt.Sprintf("weekly on %s", strings.Join(days, ","))
		}
		return "weekly"
	default:
		return "daily"
	}
}

func parseFrequency(kind, days string) (models.Frequency, error) {
	t, err := validation.Frequency(kind)
	if err != nil {
		return models.Frequency{}, err
	}
	d, err := ParseWeekdays(days)
	if err != nil {
		return models.Frequency{}, err
	}
	if t == constants.FrequencyDaily && len(d) > 0 {
		return models.Frequency{}, fmt.Errorf("--days only applies to weekly habits")
	}
	return models.Frequency{Type: t, Days: d}, nil
}

// titleTaken reports whether another habit already uses title, ignoring case
func titleTaken(st *engine.Store, title, exceptID string) bool {
	for _, h := range st.Habits() {
		if h.ID != exceptID && strings.EqualFold(h.Title, title) {
			return true
		}
	}
	return false
}

type HabitAddCmd struct {
	Title     string `arg:"" help:"Habit title."`
	Target    int    `help:"Repetitions needed per day." default:"1"`
	Color     string `help:"Display color."`
	Icon      string `help:"Display icon."`
	TimeOfDay string `help:"anytime, morning, midday or evening." default:"anytime"`
	Frequency string `help:"daily or weekly." default:"daily"`
	Days      string `help:"Weekdays for weekly habits (e.g. mon,wed,fri)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if err := validation.HabitFields(c.Title, c.Target); err != nil {
		return err
	}
	tod, err := validation.TimeOfDay(c.TimeOfDay)
	if err != nil {
		return err
	}
	freq, err := parseFrequency(c.Frequency, c.Days)
	if err != nil {
		return err
	}

	st, err := ctx.Engine()
	if err != nil {
		return err
	}

	title := strings.TrimSpace(c.Title)
	if titleTaken(st, title, "") {
		return fmt.Errorf("habit with title %q already exists", title)
	}

	h := st.AddHabit(engine.HabitInput{
		Title:       title,
		Color:       c.Color,
		Icon:        c.Icon,
		TimeOfDay:   tod,
		Frequency:   freq,
		TargetCount: c.Target,
	})

	ctx.Printf("Added habit: %s (%s, %dx %s)\n", h.Title, cli.ShortID(h.ID), h.TargetCount, FormatFrequency(h.Frequency))
	return nil
}

type HabitListCmd struct {
	Date string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	st, err := ctx.Engine()
	if err != nil {
		return err
	}

	habits := st.Habits()
	if len(habits) == 0 {
		ctx.Println("No habits found. Add one with 'habitpet habit add'.")
		return nil
	}

	ctx.Printf("Habits for %s:\n\n", day)
	done := 0
	for _, h := range habits {
		row, _ := st.ProgressFor(h.ID, day)
		status := "[ ]"
		if row.Completed {
			status = "[x]"
			done++
		} else if row.CurrentCount > 0 {
			status = "[~]"
		}
		ctx.Printf("%s %-24s %d/%d  streak %-3d %-10s %s\n",
			status, h.Title, row.CurrentCount, h.TargetCount, st.GetStreak(h.ID), h.TimeOfDay, cli.ShortID(h.ID))
	}
	ctx.Printf("\nCompleted: %d/%d\n", done, len(habits))
	return nil
}

type HabitEditCmd struct {
	Habit     string  `arg:"" help:"Habit title or id."`
	Title     *string `help:"New title."`
	Target    *int    `help:"New repetitions per day."`
	Color     *string `help:"New display color."`
	Icon      *string `help:"New display icon."`
	TimeOfDay *string `help:"anytime, morning, midday or evening."`
	Frequency *string `help:"daily or weekly."`
	Days      *string `help:"Weekdays for weekly habits (e.g. mon,wed,fri)."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine()
	if err != nil {
		return err
	}
	h, err := cli.FindHabit(st, c.Habit)
	if err != nil {
		return err
	}

	var patch engine.HabitPatch
	updated := false

	if c.Title != nil {
		title := strings.TrimSpace(*c.Title)
		if err := validation.HabitFields(title, 1); err != nil {
			return err
		}
		if titleTaken(st, title, h.ID) {
			return fmt.Errorf("habit with title %q already exists", title)
		}
		patch.Title = &title
		updated = true
	}
	if c.Target != nil {
		if err := validation.HabitFields(h.Title, *c.Target); err != nil {
			return err
		}
		patch.TargetCount = c.Target
		updated = true
	}
	if c.Color != nil {
		patch.Color = c.Color
		updated = true
	}
	if c.Icon != nil {
		patch.Icon = c.Icon
		updated = true
	}
	if c.TimeOfDay != nil {
		tod, err := validation.TimeOfDay(*c.TimeOfDay)
		if err != nil {
			return err
		}
		patch.TimeOfDay = &tod
		updated = true
	}
	if c.Frequency != nil || c.Days != nil {
		kind, days := string(h.Frequency.Type), ""
		if c.Frequency != nil {
			kind = *c.Frequency
		}
		if c.Days != nil {
			days = *c.Days
		} else if constants.FrequencyType(kind) == constants.FrequencyWeekly {
			for i, d := range h.Frequency.Days {
				if i > 0 {
					days += ","
				}
				days += strconv.Itoa(d)
			}
		}
		freq, err := parseFrequency(kind, days)
		if err != nil {
			return err
		}
		patch.Frequency = &freq
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use flags such as --title or --target to edit the habit.")
		return nil
	}
	if !st.UpdateHabit(h.ID, patch) {
		return fmt.Errorf("habit %q not found", c.Habit)
	}

	h, _ = st.Habit(h.ID)
	ctx.Printf("Updated habit: %s\n", h.Title)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit title or id."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine()
	if err != nil {
		return err
	}
	h, err := cli.FindHabit(st, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %q and all of its history?", h.Title))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if !st.DeleteHabit(h.ID) {
		return fmt.Errorf("habit %q not found", c.Habit)
	}
	ctx.Printf("Deleted habit: %s\n", h.Title)
	return nil
}

type HabitLogCmd struct {
	Habit string `arg:"" help:"Habit title or id."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	st, err := ctx.Engine()
	if err != nil {
		return err
	}
	h, err := cli.FindHabit(st, c.Habit)
	if err != nil {
		return err
	}

	before := st.Pet()
	res, ok := st.LogProgress(h.ID, day)
	if !ok {
		return fmt.Errorf("could not log %q for %s", h.Title, day)
	}

	switch {
	case res.Completed:
		ctx.Printf("✓ %s completed for %s (%d/%d)\n", h.Title, day, res.Progress.CurrentCount, h.TargetCount)
	case res.Progress.CurrentCount >= h.TargetCount:
		ctx.Printf("%s is already complete for %s\n", h.Title, day)
		return nil
	default:
		ctx.Printf("Logged %s for %s (%d/%d)\n", h.Title, day, res.Progress.CurrentCount, h.TargetCount)
	}

	if before != nil && res.Pet != nil {
		if gained := res.Pet.TotalXP - before.TotalXP; gained > 0 {
			ctx.Printf("  %s earned %d XP\n", res.Pet.Name, gained)
		}
		if res.Pet.Level > before.Level {
			ctx.Printf("  %s reached level %d!\n", res.Pet.Name, res.Pet.Level)
		}
	}
	return nil
}

type HabitUndoCmd struct {
	Habit string `arg:"" help:"Habit title or id."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
}

func (c *HabitUndoCmd) Run(ctx *cli.Context) error {
	day, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	st, err := ctx.Engine()
	if err != nil {
		return err
	}
	h, err := cli.FindHabit(st, c.Habit)
	if err != nil {
		return err
	}

	row, ok := st.UndoProgress(h.ID, day)
	if !ok {
		ctx.Printf("Nothing to undo for %s on %s\n", h.Title, day)
		return nil
	}
	ctx.Printf("Undid %s for %s (%d/%d)\n", h.Title, day, row.CurrentCount, h.TargetCount)
	return nil
}

type HabitStreakCmd struct {
	Habit string `arg:"" optional:"" help:"Habit title or id (default: all habits)."`
}

func (c *HabitStreakCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine()
	if err != nil {
		return err
	}

	habits := st.Habits()
	if c.Habit != "" {
		h, err := cli.FindHabit(st, c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		longest, err := st.LongestStreak(context.Background(), h.ID)
		if err != nil {
			return err
		}
		ctx.Printf("%-24s current %-4d longest %d\n", h.Title, st.GetStreak(h.ID), longest)
	}
	return nil
}

type HabitHistoryCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show history for a specific habit only."`
}

func (c *HabitHistoryCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	st, err := ctx.Engine()
	if err != nil {
		return err
	}

	habits := st.Habits()
	if c.Habit != "" {
		h, err := cli.FindHabit(st, c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	end := st.Today()
	start := utils.MustAddDays(end, -(c.Days - 1))
	rows, err := st.GetHistoricalProgress(context.Background(), start, end)
	if err != nil {
		return err
	}

	byKey := make(map[models.ProgressKey]models.DailyProgress, len(rows))
	for _, row := range rows {
		byKey[row.Key()] = row
	}

	const nameWidth = 20
	ctx.Printf("Habit history (last %d days):\n\n", c.Days)
	ctx.Printf("%-*s", nameWidth, "Habit")
	for i := 0; i < c.Days; i++ {
		ctx.Printf(" %5s", utils.MustAddDays(start, i)[5:])
	}
	ctx.Println()
	ctx.Println(strings.Repeat("-", nameWidth+6*c.Days))

	for _, h := range habits {
		name := h.Title
		if r := []rune(name); len(r) > nameWidth {
			name = string(r[:nameWidth-3]) + "..."
		}
		ctx.Printf("%-*s", nameWidth, name)
		for i := 0; i < c.Days; i++ {
			row := byKey[models.ProgressKey{HabitID: h.ID, Date: utils.MustAddDays(start, i)}]
			mark := "."
			if row.Completed {
				mark = "x"
			} else if row.CurrentCount > 0 {
				mark = "~"
			}
			ctx.Printf("   %s  ", mark)
		}
		ctx.Println()
	}
	ctx.Println("\nx = complete, ~ = partial, . = nothing logged")
	return nil
}
