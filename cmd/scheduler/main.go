package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"workforce-scheduler/internal/config"
	"workforce-scheduler/internal/demand"
	"workforce-scheduler/internal/demo"
	"workforce-scheduler/internal/logging"
	"workforce-scheduler/internal/models"
	"workforce-scheduler/internal/output"
	"workforce-scheduler/internal/scheduling"
	"workforce-scheduler/internal/validation"
)

var (
	flagConfig    string
	flagCount     int
	flagDays      int
	flagSeed      int64
	flagOutput    string
	flagSolver    string
	flagMode      string
	flagTimeLimit float64
	flagPattern   string
	flagBusyDays  []string
	flagRealistic bool
	flagLogLevel  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Generate workforce schedules under labor policies and role caps",
		Long: `Generates daily and weekly workforce schedules at 15-minute resolution,
maximizing on-floor coverage or matching a staffing demand curve while
honoring lunch and break policies, availability, role capacities and weekly
hour caps.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML config file")
	rootCmd.PersistentFlags().IntVar(&flagCount, "count", 10, "Number of demo associates")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 42, "Random seed for demo data")
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "", "Output path (.pdf, .xlsx, .json or .txt)")
	rootCmd.PersistentFlags().BoolVar(&flagRealistic, "realistic", false, "Use the realistic shift start distribution")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(demoCmd())
	rootCmd.AddCommand(weeklyDemoCmd())
	rootCmd.AddCommand(demandDemoCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if flagTimeLimit > 0 {
		cfg.Solver.TimeLimitSeconds = flagTimeLimit
	}
	if flagMode != "" {
		cfg.Solver.OptimizationMode = flagMode
	}
	if flagSolver != "" {
		cfg.Solver.Type = flagSolver
	}
	logger, err := logging.New(flagLogLevel, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func demoAssociates(dates []time.Time) []*models.Associate {
	if flagRealistic {
		starts := models.StandardStartDistribution()
		if flagCount != 47 {
			starts = models.ScaleStartDistribution(starts, flagCount)
		}
		return demo.RealisticAssociates(starts, dates, flagSeed)
	}
	return demo.SampleAssociates(flagCount, dates, flagSeed)
}

func demoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Generate and validate a single-day demo schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			date := time.Now().UTC().Truncate(24 * time.Hour)
			associates := demoAssociates([]time.Time{date})
			req := models.NewScheduleRequest(date, associates)
			req.Seed = flagSeed
			if flagRealistic {
				req.ShiftStarts = models.StandardStartDistribution()
				if flagCount != 47 {
					req.ShiftStarts = models.ScaleStartDistribution(req.ShiftStarts, flagCount)
				}
			}

			policySet := cfg.PolicySet()
			scheduler := scheduling.NewScheduler(policySet)
			schedule, stats, err := scheduler.GenerateScheduleWithStats(req)
			if err != nil {
				return err
			}

			associatesByID := byID(associates)
			result := validation.New(policySet).Validate(schedule, req, associatesByID)
			printDaySummary(schedule, stats, result)

			if err := writeDayOutput(logger, schedule, req, associatesByID); err != nil {
				return err
			}
			if !result.IsValid {
				return fmt.Errorf("schedule failed validation with %d violations", len(result.Violations))
			}
			return nil
		},
	}
	return cmd
}

func weeklyDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weekly-demo",
		Short: "Generate and validate a weekly demo schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			req, associates := buildWeeklyRequest()
			policySet := cfg.PolicySet()

			weekly := scheduling.NewWeeklyScheduler(policySet)
			weekly.Logger = logger
			schedule, err := weekly.Generate(req)
			if err != nil {
				return err
			}
			schedule.RunID = uuid.NewString()

			associatesByID := byID(associates)
			result := validation.New(policySet).ValidateWeekly(schedule, req, associatesByID)
			printWeeklySummary(schedule, scheduling.Summarize(schedule, req), result)

			if err := writeWeeklyOutput(logger, schedule, req, associatesByID); err != nil {
				return err
			}
			if !result.IsValid {
				return fmt.Errorf("schedule failed validation with %d violations", len(result.Violations))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagDays, "days", 7, "Number of days to schedule")
	cmd.Flags().StringVar(&flagPattern, "pattern", string(models.PatternTwoConsecutive), "Days-off pattern")
	cmd.Flags().StringSliceVar(&flagBusyDays, "busy-days", nil, "Busy dates (YYYY-MM-DD)")
	return cmd
}

func demandDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demand-demo",
		Short: "Generate a demand-aware weekly schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			req, associates := buildWeeklyRequest()
			policySet := cfg.PolicySet()

			daCfg := scheduling.DefaultDemandAwareConfig()
			daCfg.SolverType = cfg.SolverType()
			daCfg.SolverConfig = cfg.SolverConfig()

			scheduler := scheduling.NewDemandAwareScheduler(policySet, daCfg)
			scheduler.Logger = logger

			weeklyDemand := demand.StandardWeek(req.StartDate, nil, nil)
			result, err := scheduler.Generate(context.Background(), req, weeklyDemand)
			if err != nil {
				return err
			}
			result.Schedule.RunID = uuid.NewString()

			associatesByID := byID(associates)
			vres := validation.New(policySet).ValidateWeekly(result.Schedule, req, associatesByID)
			printWeeklySummary(result.Schedule, scheduling.Summarize(result.Schedule, req), vres)
			color.New(color.FgCyan).Printf("Overall demand match: %.1f%%\n", result.OverallMatchScore)

			if err := writeWeeklyOutput(logger, result.Schedule, req, associatesByID); err != nil {
				return err
			}
			if !vres.IsValid {
				return fmt.Errorf("schedule failed validation with %d violations", len(vres.Violations))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagDays, "days", 7, "Number of days to schedule")
	cmd.Flags().StringVar(&flagSolver, "solver", "", "Solver: heuristic, cpsat or hybrid")
	cmd.Flags().StringVar(&flagMode, "mode", "", "Optimization mode")
	cmd.Flags().Float64Var(&flagTimeLimit, "time-limit", 0, "CP solver time limit in seconds")
	cmd.Flags().StringVar(&flagPattern, "pattern", string(models.PatternTwoConsecutive), "Days-off pattern")
	cmd.Flags().StringSliceVar(&flagBusyDays, "busy-days", nil, "Busy dates (YYYY-MM-DD)")
	return cmd
}

func buildWeeklyRequest() (*models.WeeklyScheduleRequest, []*models.Associate) {
	days := flagDays
	if days < 1 {
		days = 7
	}
	start := time.Now().UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, days-1)

	dates := make([]time.Time, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	associates := demoAssociates(dates)

	req := models.NewWeeklyScheduleRequest(start, end, associates)
	req.Seed = flagSeed
	req.Pattern = models.DaysOffPattern(flagPattern)
	for _, raw := range flagBusyDays {
		if req.BusyDays == nil {
			req.BusyDays = make(map[string]bool)
		}
		req.BusyDays[strings.TrimSpace(raw)] = true
	}
	return req, associates
}

func byID(associates []*models.Associate) map[string]*models.Associate {
	m := make(map[string]*models.Associate, len(associates))
	for _, a := range associates {
		m[a.ID] = a
	}
	return m
}

func printDaySummary(schedule *models.DaySchedule, stats scheduling.DayStats, result validation.Result) {
	bold := color.New(color.Bold)
	bold.Printf("Schedule for %s\n", models.DateKey(schedule.Date))
	fmt.Printf("  scheduled %d/%d associates, %.1f work hours\n",
		stats.Scheduled, stats.TotalAssociates, float64(stats.TotalWorkMinutes)/60)
	fmt.Printf("  coverage min %d, max %d, avg %.1f\n", stats.MinCoverage, stats.MaxCoverage, stats.AvgCoverage)
	printValidation(result)
}

func printWeeklySummary(schedule *models.WeeklySchedule, stats scheduling.WeeklyStats, result validation.Result) {
	bold := color.New(color.Bold)
	bold.Printf("Weekly schedule %s to %s\n", models.DateKey(schedule.StartDate), models.DateKey(schedule.EndDate))
	fmt.Printf("  %s\n", stats.String())
	if schedule.Fairness != nil {
		fmt.Printf("  fairness %.1f (avg %.1fh, stddev %.1fh)\n",
			schedule.Fairness.FairnessScore, schedule.Fairness.AvgHours, schedule.Fairness.HoursStdDev)
	}
	printValidation(result)
}

func printValidation(result validation.Result) {
	if result.IsValid {
		color.New(color.FgGreen).Println("  validation: OK")
	} else {
		color.New(color.FgRed).Printf("  validation: %d violations\n", len(result.Violations))
		for _, v := range result.Violations {
			fmt.Printf("    %s\n", v)
		}
	}
	for _, w := range result.Warnings {
		color.New(color.FgYellow).Printf("  warning: %s\n", w)
	}
}

func writeDayOutput(logger *zap.Logger, schedule *models.DaySchedule, req *models.ScheduleRequest, associatesByID map[string]*models.Associate) error {
	if flagOutput == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(flagOutput)) {
	case ".pdf":
		gen := output.NewPDFGenerator(logger)
		return gen.Generate(context.Background(), []*models.DaySchedule{schedule}, req, associatesByID, flagOutput)
	case ".json":
		data, err := schedule.Encode()
		if err != nil {
			return err
		}
		return os.WriteFile(flagOutput, data, 0o644)
	default:
		f, err := os.Create(flagOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		return output.WriteText(f, schedule, req, associatesByID)
	}
}

func writeWeeklyOutput(logger *zap.Logger, schedule *models.WeeklySchedule, req *models.WeeklyScheduleRequest, associatesByID map[string]*models.Associate) error {
	if flagOutput == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(flagOutput)) {
	case ".pdf":
		gen := output.NewPDFGenerator(logger)
		dayReq := req.DayRequest(req.StartDate)
		return gen.Generate(context.Background(), schedule.Days, dayReq, associatesByID, flagOutput)
	case ".xlsx":
		return output.WriteXLSX(flagOutput, schedule, req, associatesByID)
	default:
		f, err := os.Create(flagOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		for _, day := range schedule.Days {
			if err := output.WriteText(f, day, req.DayRequest(day.Date), associatesByID); err != nil {
				return err
			}
			fmt.Fprintln(f)
		}
		return nil
	}
}
