package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitpet/internal/cli"
	"github.com/julianstephens/habitpet/internal/cli/backups"
	"github.com/julianstephens/habitpet/internal/cli/habits"
	"github.com/julianstephens/habitpet/internal/cli/pets"
	"github.com/julianstephens/habitpet/internal/cli/settings"
	"github.com/julianstephens/habitpet/internal/cli/system"
	"github.com/julianstephens/habitpet/internal/config"
	"github.com/julianstephens/habitpet/internal/constants"
	apperrors "github.com/julianstephens/habitpet/internal/errors"
	"github.com/julianstephens/habitpet/internal/logger"
	"github.com/julianstephens/habitpet/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path (default: ~/.config/habitpet/config.yaml)." type:"string"`
	DB      string `name:"db" help:"Database path or connection string. Network connection strings must NOT embed a password. Use the OS keyring or HABITPET_DB_CONNECTION instead." type:"string"`
	Debug   bool   `help:"Enable debug logging."`

	Init     system.InitCmd       `cmd:"" help:"Initialize habitpet storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits and log progress." default:"1"`
	Pet      pets.PetCmd          `cmd:"" help:"Care for your pet."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Reset    system.ResetCmd      `cmd:"" help:"Delete all habits, progress and the pet."`
	Backup   backups.BackupCmd    `cmd:"" help:"Manage storage backups."`
	Keyring  struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a database connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with a virtual pet that thrives on your streaks"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	apperrors.Fatal(run(ctx))
}

func run(ctx *kong.Context) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.DB != "" {
		cfg.Database = CLI.DB
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: config.ConfigDir(), JSON: cfg.LogJSON}); err != nil {
		// Logging is optional; keep going with the nop logger
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	if cfg.File != "" {
		logger.Debug("Loaded config", "file", cfg.File)
	}

	store, err := storage.Open(cfg.Database, config.DBPath())
	if err != nil {
		return err
	}

	appCtx := cli.NewContext(cfg, store)
	defer func() {
		if err := appCtx.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	return ctx.Run(appCtx)
}
