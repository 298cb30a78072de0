package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/wispapp/wisp/internal/achievement"
	"github.com/wispapp/wisp/internal/companion"
	"github.com/wispapp/wisp/internal/config"
	"github.com/wispapp/wisp/internal/core"
	"github.com/wispapp/wisp/internal/health"
)

var BUILD_VERSION = "dev"

var configFile = flag.String("config", "", "use a custom config file instead of ~/.config/wisp/config.yaml")
var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printUsage()
		return
	}

	cfgPath := *configFile
	if cfgPath == "" {
		cfgPath = core.ConfigFile()
	}
	cfg, cfgErr := config.Load(cfgPath)

	logger, err := initializeLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("-------- new wisp session --------", zap.Any("args", os.Args))
	if cfgErr != nil {
		logger.Warn("config not loaded, using defaults", zap.Error(cfgErr))
	}

	dbPath := core.StateFile()
	if cfg.DataDir != "" {
		dbPath = filepath.Join(cfg.DataDir, "state.db")
	}

	manager, err := companion.NewManager(cfg, dbPath, logger)
	if err != nil {
		logger.Error("failed to initialize companion", zap.Error(err))
		fmt.Fprintln(os.Stderr, "wisp: could not open state store:", err)
		os.Exit(1)
	}
	defer func() {
		_ = manager.Close()
	}()

	if err := dispatch(manager, flag.Args()); err != nil {
		logger.Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "wisp:", err)
		os.Exit(1)
	}
}

func dispatch(manager *companion.Manager, args []string) error {
	switch args[0] {
	case "record":
		return runRecord(manager, args[1:])
	case "status":
		fmt.Print(manager.RenderDashboard())
		return nil
	case "achievements":
		return runAchievements(manager, args[1:])
	case "notifications":
		fmt.Print(manager.RenderNotifications())
		return nil
	case "equip":
		if len(args) < 2 {
			return fmt.Errorf("usage: wisp equip <cosmetic-id>")
		}
		return manager.Inventory().Equip(args[1])
	case "unequip":
		if len(args) < 2 {
			return fmt.Errorf("usage: wisp unequip <cosmetic-id>")
		}
		return manager.Inventory().Unequip(args[1])
	case "rollover":
		return manager.RolloverWeek(time.Now(), nil)
	case "export":
		path := core.ExportFile()
		if len(args) > 1 {
			path = args[1]
		}
		if err := manager.Export(path); err != nil {
			return err
		}
		fmt.Println("exported to", path)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runRecord(manager *companion.Manager, args []string) error {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	date := fs.String("date", "", "observation date (2006-01-02, default today)")
	steps := fs.Int("steps", 0, "step count for the day")
	sleep := fs.Int("sleep", 0, "sleep minutes for the night")
	hrv := fs.Float64("hrv", 0, "heart rate variability reading")
	if err := fs.Parse(args); err != nil {
		return err
	}

	day := time.Now()
	if *date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", *date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", *date, err)
		}
		day = parsed
	}

	obs := health.Observation{
		Date:         day,
		Steps:        *steps,
		SleepMinutes: *sleep,
		HRV:          *hrv,
	}
	if err := manager.ProcessObservation(obs, nil); err != nil {
		return err
	}

	fmt.Print(manager.RenderNotifications())
	return nil
}

func runAchievements(manager *companion.Manager, args []string) error {
	fs := flag.NewFlagSet("achievements", flag.ContinueOnError)
	category := fs.String("category", "", "filter by category")
	status := fs.String("status", "", "filter by status (earned or locked)")
	rarity := fs.String("rarity", "", "filter by rarity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	out, err := manager.RenderAchievements(achievement.Filter{
		Category: achievement.Category(*category),
		Status:   *status,
		Rarity:   achievement.Rarity(*rarity),
	})
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func initializeLogger(level string) (*zap.Logger, error) {
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		parsed = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logLevel := parsed
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}
	return loggerConfig.Build()
}

func printUsage() {
	fmt.Println("Usage: wisp <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  record --steps N [--sleep M] [--hrv F] [--date YYYY-MM-DD]")
	fmt.Println("        fold one day's health readings into the reward engines")
	fmt.Println("  status")
	fmt.Println("        show the companion dashboard")
	fmt.Println("  achievements [--category C] [--status earned|locked] [--rarity R]")
	fmt.Println("        list achievements")
	fmt.Println("  notifications")
	fmt.Println("        show and clear pending reward notifications")
	fmt.Println("  equip <cosmetic-id> / unequip <cosmetic-id>")
	fmt.Println("        manage equipped cosmetics")
	fmt.Println("  rollover")
	fmt.Println("        generate this week's challenges")
	fmt.Println("  export [path]")
	fmt.Println("        write the full reward state as JSON")
	flag.PrintDefaults()
}
