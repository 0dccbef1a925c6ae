// Command capacityctl — операторские команды: миграции, просмотр календаря линии, демо-данные.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/config"
	"github.com/Leganyst/production-scheduler/internal/db"
	"github.com/Leganyst/production-scheduler/internal/dto"
	"github.com/Leganyst/production-scheduler/internal/model"
	"github.com/Leganyst/production-scheduler/internal/placement"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	envFile string
	db      *gorm.DB
	engine  *capacity.Engine
	cfg     *config.EngineConfig
}

// open поднимает БД и движок по конфигурации из окружения.
func (a *app) open() error {
	if a.envFile != "" {
		config.LoadEnv(a.envFile)
	} else {
		config.LoadEnv()
	}

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		return fmt.Errorf("load db config: %w", err)
	}
	a.cfg, err = config.LoadEngineConfig()
	if err != nil {
		return fmt.Errorf("load engine config: %w", err)
	}
	a.db, err = db.NewGormDB(dbCfg)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	a.engine = capacity.NewEngine(a.db, *a.cfg, capacity.WithLogger(log.New(io.Discard, "", 0)))
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "capacityctl",
		Short:        "Capacity & shift calendar operator tool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env", "", "path to .env file (default: ./.env)")

	root.AddCommand(newMigrateCmd(a), newCalendarCmd(a), newSeedCmd(a), newPlaceCmd(a))
	return root
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := model.AutoMigrate(a.db); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCalendarCmd(a *app) *cobra.Command {
	var (
		lineStr  string
		startStr string
		days     int
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print the effective capacity calendar of a line",
		RunE: func(cmd *cobra.Command, args []string) error {
			lineID, err := uuid.Parse(lineStr)
			if err != nil {
				return fmt.Errorf("--line: %w", err)
			}
			ctx := context.Background()

			var start calendar.Date
			var cal []capacity.EffectiveDay
			if startStr == "" {
				today, err := a.engine.Today(ctx, lineID)
				if err != nil {
					return err
				}
				start = calendar.WeekStartOf(today, a.cfg.WeekStart)
				cal, err = a.engine.GetCalendar(ctx, lineID, start, days)
				if err != nil {
					return err
				}
			} else {
				start, err = calendar.ParseDate(startStr)
				if err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				cal, err = a.engine.GetCalendar(ctx, lineID, start, days)
				if err != nil {
					return err
				}
			}

			resp := dto.ToCalendarResponse(lineID, start, cal)
			if asJSON {
				b, err := sonic.ConfigStd.MarshalIndent(resp, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return nil
			}
			printCalendar(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.Flags().StringVar(&lineStr, "line", "", "line id (required)")
	cmd.Flags().StringVar(&startStr, "start", "", "first date YYYY-MM-DD (default: start of the current week)")
	cmd.Flags().IntVar(&days, "days", 0, "number of days (0 = CALENDAR_DEFAULT_WEEKS x 7)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}

func printCalendar(w io.Writer, resp dto.CalendarResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDOW\tHOURS\tSOURCE\tSHIFTS\tREASON")
	for _, d := range resp.Days {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\n",
			d.Date, d.Date.ISOWeekday(), d.Hours.StringFixed(2), d.Source, d.ShiftsCount, d.Reason)
		for _, warn := range d.Warnings {
			fmt.Fprintf(tw, "\t\t\t!\t\t%s\n", warn.Message)
		}
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\t\t\t\n", resp.TotalHours.StringFixed(2))
	_ = tw.Flush()
}

func newSeedCmd(a *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo line with a weekday day shift (07:30-16:30, unpaid lunch 12:00-12:30)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := model.AutoMigrate(a.db); err != nil {
				return fmt.Errorf("auto migrate: %w", err)
			}
			ctx := context.Background()

			line, err := a.engine.CreateLine(ctx, capacity.LineSpec{
				Name:               name,
				DefaultHoursPerDay: dayShiftHours,
			})
			if err != nil {
				return err
			}
			shiftID, err := a.engine.CreateShift(ctx, line.ID, capacity.ShiftSpec{
				Name:        "Day Shift",
				ShiftNumber: 1,
				Start:       calendar.MustTimeOfDay("07:30"),
				End:         calendar.MustTimeOfDay("16:30"),
				ActiveDays:  calendar.Weekdays,
				Active:      true,
				Breaks: []capacity.BreakSpec{
					{Name: "Lunch", Start: calendar.MustTimeOfDay("12:00"), End: calendar.MustTimeOfDay("12:30")},
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "line %s (%s), shift %s\n", line.ID, line.Name, shiftID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Demo Line", "line name")
	return cmd
}

func newPlaceCmd(a *app) *cobra.Command {
	var lineStr, anchorStr string

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Re-place the work-order queue of a line",
		RunE: func(cmd *cobra.Command, args []string) error {
			lineID, err := uuid.Parse(lineStr)
			if err != nil {
				return fmt.Errorf("--line: %w", err)
			}
			ctx := context.Background()

			var anchor calendar.Date
			if anchorStr == "" {
				anchor, err = a.engine.Today(ctx, lineID)
			} else {
				anchor, err = calendar.ParseDate(anchorStr)
			}
			if err != nil {
				return err
			}

			svc := placement.NewService(a.db, placement.NewPlacer(a.engine, a.cfg.PlacementHorizonDays), log.New(io.Discard, "", 0))
			assignments, err := svc.PlaceLine(ctx, lineID, anchor)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "WO\tHOURS\tSTART\tEND\tDAYS")
			for _, as := range assignments {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", as.WONumber, as.Hours.StringFixed(2), as.Start, as.End, len(as.Slots))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&lineStr, "line", "", "line id (required)")
	cmd.Flags().StringVar(&anchorStr, "anchor", "", "first day YYYY-MM-DD (default: today in the line's time zone)")
	_ = cmd.MarkFlagRequired("line")
	return cmd
}

var dayShiftHours = decimal.RequireFromString("8.5")
