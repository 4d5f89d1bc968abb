package system

import (
	"github.com/julianstephens/habitpet/internal/cli"
)

// ResetCmd wipes habits, progress history and the pet. Settings are kept.
type ResetCmd struct {
	Yes bool `short:"y" help:"Reset without asking."`
}

func (c *ResetCmd) Run(ctx *cli.Context) error {
	st, err := ctx.Engine()
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirm("Delete every habit, all progress history and the pet?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Reset cancelled.")
			return nil
		}
	}

	if ctx.Config.BackupBeforeReset {
		if err := ctx.Flush(); err != nil {
			return err
		}
		ctx.PerformAutomaticBackup()
	}

	st.ResetData()
	ctx.Println("✓ All habits, progress and the pet were removed. Settings were kept.")
	return nil
}
