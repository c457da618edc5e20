package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medshift/rostergen/internal/config"
	"github.com/medshift/rostergen/pkg/core/gate"
	"github.com/medshift/rostergen/pkg/core/model"
	"github.com/medshift/rostergen/pkg/core/services"
	"github.com/medshift/rostergen/pkg/core/simulation"
	"github.com/medshift/rostergen/pkg/notify"
	"github.com/medshift/rostergen/pkg/postgres"
	"github.com/medshift/rostergen/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg          *config.Config
	rules        model.RulesConfiguration
	database     *postgres.DB
	orchestrator *simulation.Orchestrator
	logger       *zap.Logger
	ctx          context.Context
}

var (
	env    string
	siteID string
	app    *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rostergen",
		Short: "Rostergen CLI - generate, validate and simulate staff rosters",
		Long:  `A CLI tool for constraint-based shift planning: roster generation, rule validation and planning simulation.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				if app.database != nil {
					app.database.Close()
				}
				if app.logger != nil {
					app.logger.Sync()
				}
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (test, prod, etc.)")
	rootCmd.PersistentFlags().StringVar(&siteID, "site", "default", "Site identifier")

	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(validateLeaveCmd())
	rootCmd.AddCommand(validateAssignmentCmd())
	rootCmd.AddCommand(validateGenerationCmd())
	rootCmd.AddCommand(purgeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, database, notifier and orchestrator
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	// Optional .env for DATABASE_URL / TELEGRAM_* settings
	godotenv.Load()

	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.logger.Info("Starting application", zap.String("environment", env))

	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.rules, err = app.cfg.BuildRules()
	if err != nil {
		return fmt.Errorf("failed to build rules: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	if connString := os.Getenv("DATABASE_URL"); connString != "" {
		app.logger.Info("Connecting to database")
		app.database, err = postgres.NewDB(app.ctx, connString)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := app.database.RunMigrations(app.ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		app.logger.Info("Database initialized successfully")
	}

	var notifier notify.Notifier = notify.NewLogNotifier(app.logger)
	if token := os.Getenv("TELEGRAM_TOKEN"); token != "" {
		chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		notifier, err = notify.NewTelegramNotifier(token, chatID, app.logger)
		if err != nil {
			return fmt.Errorf("failed to create telegram notifier: %w", err)
		}
		app.logger.Info("Telegram notifier enabled")
	}

	simCfg := simulation.Config{
		Workers:       app.cfg.Simulation.Workers,
		ChunkDays:     app.cfg.Simulation.ChunkDays,
		WorkerTimeout: time.Duration(app.cfg.Simulation.WorkerTimeoutSeconds) * time.Second,
		CacheTTL:      time.Duration(app.cfg.Simulation.CacheTTLMinutes) * time.Minute,
	}
	app.orchestrator = simulation.New(nil, app.database, notifier, app.logger, simCfg)

	return nil
}

func requireDatabase() error {
	if app.database == nil {
		return fmt.Errorf("DATABASE_URL is not set; this command needs a database")
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

func printValidation(result *model.ValidationResult) {
	if result.Valid {
		fmt.Println("\n✓ Valid: no rule violations")
		return
	}
	fmt.Printf("\n✗ %d violation(s):\n", len(result.Errors))
	for _, msg := range result.Errors {
		fmt.Printf("  - %s\n", msg)
	}
}

// buildGate loads the persisted state snapshot the business rule gate
// evaluates against.
func buildGate() (*gate.Gate, error) {
	if err := requireDatabase(); err != nil {
		return nil, err
	}
	staff, err := app.database.LoadStaff(app.ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff: %w", err)
	}
	leaves, err := app.database.LoadLeaves(app.ctx, "", time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to load leaves: %w", err)
	}

	horizonStart := time.Now().AddDate(-1, 0, 0)
	horizonEnd := time.Now().AddDate(1, 0, 0)
	holidays, err := app.cfg.Holidays(horizonStart, horizonEnd)
	if err != nil {
		return nil, err
	}

	quotas := make([]gate.LeaveQuota, 0, len(staff))
	for _, s := range staff {
		quotas = append(quotas, gate.LeaveQuota{StaffID: s.ID, YearlyCapDays: gate.DefaultLimits().YearlyLeaveCapDays})
	}

	return gate.New(gate.Config{
		Staff:    staff,
		Leaves:   leaves,
		Quotas:   quotas,
		Rules:    app.rules,
		Holidays: holidays,
	}), nil
}

// Command definitions

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <start> <end>",
		Short: "Generate a planning over a date range and validate it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(args[0])
			if err != nil {
				return err
			}
			end, err := parseDate(args[1])
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			if err := requireDatabase(); err != nil {
				return err
			}

			result, err := services.GeneratePlanning(app.ctx, app.database, app.logger, siteID, app.rules, start, end, dryRun)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Planning generated: %d assignments\n", len(result.Assignments))
			if !dryRun {
				fmt.Printf("Persisted: %d created, %d updated, %d conflicts\n",
					result.Created, result.Updated, len(result.Conflicts))
				for _, conflict := range result.Conflicts {
					fmt.Printf("  ! %v\n", conflict)
				}
			}
			printValidation(result.Validation)
			return nil
		},
	}
	cmd.Flags().Bool("dry-run", false, "Generate and validate without saving")
	return cmd
}

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario_id> <start> <end>",
		Short: "Run a planning simulation and print its summary",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(args[1])
			if err != nil {
				return err
			}
			end, err := parseDate(args[2])
			if err != nil {
				return err
			}
			strategyName, _ := cmd.Flags().GetString("strategy")
			strategy, err := simulation.ParseStrategy(strategyName)
			if err != nil {
				return err
			}
			userID, _ := cmd.Flags().GetString("user")

			if err := requireDatabase(); err != nil {
				return err
			}

			run, err := services.RunSimulationBlocking(app.ctx, app.database, app.orchestrator, app.logger,
				args[0], userID, siteID, app.rules, start, end, strategy)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Simulation %s completed in %dms\n", run.ID, run.ExecutionMs)
			fmt.Printf("Period:   %s → %s (%d days)\n",
				run.Result.SimulatedPeriod.From, run.Result.SimulatedPeriod.To, run.Result.SimulatedPeriod.TotalDays)
			fmt.Printf("Coverage: %.1f%%\n", run.Result.StaffingCoverage.Overall)
			fmt.Printf("Conflicts: %d (high %d / medium %d / low %d)\n",
				run.Result.Conflicts.Total,
				run.Result.Conflicts.ByPriority.High,
				run.Result.Conflicts.ByPriority.Medium,
				run.Result.Conflicts.ByPriority.Low)
			for _, load := range run.Result.ShiftDistribution {
				fmt.Printf("  %-24s morning %2d, afternoon %2d, night %2d, weekend %2d, %.0fh\n",
					load.StaffName, load.MorningShifts, load.AfternoonShifts, load.NightShifts,
					load.WeekendShifts, load.TotalHours)
			}
			return nil
		},
	}
	cmd.Flags().String("strategy", "", "Execution strategy: default, cached, parallel, incremental")
	cmd.Flags().String("user", "", "User to notify")
	return cmd
}

func validateLeaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-leave <staff_id> <start> <end>",
		Short: "Pre-validate a leave request against the business rules",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(args[1])
			if err != nil {
				return err
			}
			end, err := parseDate(args[2])
			if err != nil {
				return err
			}
			leaveType, _ := cmd.Flags().GetString("type")

			g, err := buildGate()
			if err != nil {
				return err
			}
			result, err := g.ValidateLeaveRequest(gate.LeaveRequestInput{
				StaffID: args[0],
				Start:   start,
				End:     end,
				Type:    leaveType,
			})
			if err != nil {
				return err
			}
			printValidation(result)
			return nil
		},
	}
	cmd.Flags().String("type", "VACATION", "Leave type")
	return cmd
}

func validateAssignmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-assignment <staff_id> <shift_type> <date>",
		Short: "Pre-validate a manual assignment against the business rules",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(args[2])
			if err != nil {
				return err
			}
			roomID, _ := cmd.Flags().GetString("room")
			supervised, _ := cmd.Flags().GetBool("supervised")

			g, err := buildGate()
			if err != nil {
				return err
			}
			result, err := g.ValidateAssignment(gate.AssignmentInput{
				StaffID:    args[0],
				Shift:      model.ShiftType(args[1]),
				Date:       date,
				RoomID:     roomID,
				Supervised: supervised,
			})
			if err != nil {
				return err
			}
			printValidation(result)
			return nil
		},
	}
	cmd.Flags().String("room", "", "Target room id")
	cmd.Flags().Bool("supervised", false, "A senior supervises this assignment")
	return cmd
}

func validateGenerationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-generation <start> <end>",
		Short: "Pre-validate a planning generation request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(args[0])
			if err != nil {
				return err
			}
			end, err := parseDate(args[1])
			if err != nil {
				return err
			}
			immediate, _ := cmd.Flags().GetBool("immediate")
			rooms, _ := cmd.Flags().GetInt("rooms")

			g, err := buildGate()
			if err != nil {
				return err
			}
			result, err := g.ValidatePlanningGeneration(gate.GenerationRequestInput{
				Start:     start,
				End:       end,
				Immediate: immediate,
				RoomCount: rooms,
			})
			if err != nil {
				return err
			}
			printValidation(result)
			return nil
		},
	}
	cmd.Flags().Bool("immediate", false, "Apply the immediate-generation window limit")
	cmd.Flags().Int("rooms", 0, "Operating room count for feasibility checks")
	return cmd
}

func purgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge <start> <end>",
		Short: "Delete all assignments in a date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseDate(args[0])
			if err != nil {
				return err
			}
			end, err := parseDate(args[1])
			if err != nil {
				return err
			}
			if err := requireDatabase(); err != nil {
				return err
			}
			count, err := app.database.DeleteAssignments(app.ctx, start, end)
			if err != nil {
				return err
			}
			fmt.Printf("\n✓ Deleted %d assignments between %s and %s\n", count, args[0], args[1])
			return nil
		},
	}
}
