package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fastrack/internal/bootstrap"
	"fastrack/internal/modules/fasting/domain"
	"fastrack/internal/modules/fasting/dto"
	"fastrack/internal/platform/config"
	"fastrack/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	dataDir  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "fastrack",
		Short:         "Intermittent fasting timer and journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data", config.DefaultDataDir(), "data directory")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace|debug|info|warn|error (default from FASTRACK_LOG_LEVEL or warn)")

	root.AddCommand(newTUICmd(opts))
	root.AddCommand(newFastCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newProtocolCmd(opts))
	root.AddCommand(newStreakCmd(opts))
	root.AddCommand(newStatsCmd(opts))
	root.AddCommand(newReindexCmd(opts))
	return root
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.dataDir)
	if err != nil {
		return config.Config{}, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

func loadApp(opts *rootOptions, logOut io.Writer) (*bootstrap.App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(context.Background(), cfg, logging.New(cfg.LogLevel, logOut))
}

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run fastrack terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			logger, closer, err := logging.OpenFile(cfg.LogPath, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer closer.Close()
			app, err := bootstrap.New(context.Background(), cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()
			return bootstrap.RunTUI(app)
		},
	}
}

func newFastCmd(opts *rootOptions) *cobra.Command {
	fast := &cobra.Command{Use: "fast", Short: "Fasting session lifecycle"}

	var at string
	start := &cobra.Command{
		Use:   "start [--at <time>]",
		Short: "Start a fast now or at an earlier time",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var startAt *time.Time
			if strings.TrimSpace(at) != "" {
				parsed, err := parseTime(at)
				if err != nil {
					return err
				}
				startAt = &parsed
			}
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.FastingCLI.Start(context.Background(), startAt)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fast started at=%s goal=%q ratio=%s\n",
				out.StartedAt.Format(time.RFC3339), out.Protocol.Label, out.Protocol.Ratio)
			return nil
		},
	}
	start.Flags().StringVar(&at, "at", "", "start time (RFC3339 or 2006-01-02T15:04)")

	stop := &cobra.Command{
		Use:   "stop",
		Short: "Stop the active fast and record it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.FastingCLI.Stop(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fast stopped: id=%d duration=%s goal=%q %s\n",
				out.ID, domain.FormatClock(out.Duration), out.GoalName, outcome(out.MetGoal))
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the active fast",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.FastingCLI.Status(context.Background())
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), out)
			return nil
		},
	}

	var interval time.Duration
	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print the running timer until the fast ends or Ctrl-C",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			if interval <= 0 {
				interval = app.Config.TickInterval
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			done, err := app.FastingCLI.Watch(ctx, interval, func(out dto.StatusOutput) {
				printStatus(cmd.OutOrStdout(), out)
			})
			if err != nil {
				return err
			}
			<-done
			return nil
		},
	}
	watch.Flags().DurationVar(&interval, "interval", 0, "refresh interval (default from FASTRACK_TICK_INTERVAL or 1s)")

	fast.AddCommand(start, stop, status, watch)
	return fast
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Completed fasts"}

	history.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List completed fasts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			records, err := app.FastingCLI.History(context.Background())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no fasts")
				return nil
			}
			for _, r := range records {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\t%s\n", r.ID,
					r.Start.Format("2006-01-02 15:04"), r.End.Format("2006-01-02 15:04"),
					domain.FormatClock(r.Duration), r.GoalName, outcome(r.MetGoal))
			}
			return nil
		},
	})

	var editID int64
	var editStart, editEnd string
	edit := &cobra.Command{
		Use:   "edit --id <id> --start <time> --end <time>",
		Short: "Correct the start and end of a fast",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if editID == 0 {
				return fmt.Errorf("--id is required")
			}
			start, err := parseTime(editStart)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			end, err := parseTime(editEnd)
			if err != nil {
				return fmt.Errorf("--end: %w", err)
			}
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.FastingCLI.EditRecord(context.Background(), editID, start, end)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fast updated: id=%d duration=%s %s\n", out.ID, domain.FormatClock(out.Duration), outcome(out.MetGoal))
			return nil
		},
	}
	edit.Flags().Int64Var(&editID, "id", 0, "fast id")
	edit.Flags().StringVar(&editStart, "start", "", "new start time")
	edit.Flags().StringVar(&editEnd, "end", "", "new end time")

	var deleteID int64
	del := &cobra.Command{
		Use:   "delete --id <id>",
		Short: "Delete a fast",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if deleteID == 0 {
				return fmt.Errorf("--id is required")
			}
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.FastingCLI.DeleteRecord(context.Background(), deleteID)
			if err != nil {
				return err
			}
			if !out.Deleted {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no fast with id %d\n", out.ID)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", out.ID)
			return nil
		},
	}
	del.Flags().Int64Var(&deleteID, "id", 0, "fast id")

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear --yes",
		Short: "Delete every completed fast",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.FastingCLI.ClearHistory(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm")

	var since string
	var days int
	daily := &cobra.Command{
		Use:   "days [--since <date>]",
		Short: "Per-day fasting totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			from := dayStart(time.Now(), days-1)
			if strings.TrimSpace(since) != "" {
				parsed, err := time.ParseInLocation(domain.DayLayout, since, time.Local)
				if err != nil {
					return fmt.Errorf("--since must be YYYY-MM-DD: %w", err)
				}
				from = parsed
			}
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			totals, err := app.FastingCLI.DailyTotals(context.Background(), from)
			if err != nil {
				return err
			}
			if len(totals) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no fasts")
				return nil
			}
			for _, d := range totals {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tfasts=%d\tgoals=%d\ttotal=%s\n", d.Day, d.Fasts, d.GoalsMet, domain.FormatClock(d.Total))
			}
			return nil
		},
	}
	daily.Flags().StringVar(&since, "since", "", "first day to include (YYYY-MM-DD)")
	daily.Flags().IntVar(&days, "days", 7, "number of days to include when --since is not set")

	export := &cobra.Command{
		Use:   "export",
		Short: "Write the markdown journal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.FastingCLI.ExportJournal(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d notes index=%s\n", out.Notes, out.IndexPath)
			return nil
		},
	}

	history.AddCommand(edit, del, clearCmd, daily, export)
	return history
}

func newProtocolCmd(opts *rootOptions) *cobra.Command {
	protocol := &cobra.Command{Use: "protocol", Short: "Fasting protocols"}

	protocol.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List fasting protocols",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			protocols, err := app.FastingCLI.Protocols(context.Background())
			if err != nil {
				return err
			}
			for _, p := range protocols {
				marker := " "
				if p.Selected {
					marker = "*"
				}
				index := "-"
				if p.Index > 0 {
					index = fmt.Sprint(p.Index)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%s\n", marker, index, p.Label, p.Ratio)
			}
			return nil
		},
	})

	var label string
	var hours float64
	set := &cobra.Command{
		Use:   "set [<index|label>] [--hours <h> --label <name>]",
		Short: "Select the protocol for future fasts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && hours == 0 {
				return fmt.Errorf("give a protocol index or label, or --hours")
			}
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			var out dto.ProtocolOutput
			if len(args) == 1 {
				out, err = app.FastingCLI.SelectProtocol(context.Background(), args[0])
			} else {
				out, err = app.FastingCLI.CustomProtocol(context.Background(), label, hours)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "protocol set: %s (%s)\n", out.Label, out.Ratio)
			return nil
		},
	}
	set.Flags().StringVar(&label, "label", "", "custom protocol label")
	set.Flags().Float64Var(&hours, "hours", 0, "custom fasting goal in hours")

	protocol.AddCommand(set)
	return protocol
}

func newStreakCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show consecutive days with a goal met",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			out, err := app.FastingCLI.Status(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "streak: %d %s\n", out.Streak, plural(out.Streak, "day", "days"))
			return nil
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise fasting history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			s, err := app.FastingCLI.Stats(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "fasts: %d\ngoals met: %d\nlongest: %s\naverage: %s\ntotal: %s\nstreak: %d\nbest streak: %d\n",
				s.TotalFasts, s.GoalsMet, domain.FormatClock(s.Longest), domain.FormatClock(s.Average),
				domain.FormatClock(s.Total), s.CurrentStreak, s.BestStreak)
			return nil
		},
	}
}

func newReindexCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the history index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.FastingCLI.Reindex(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "reindex complete")
			return nil
		},
	}
}

func printStatus(w io.Writer, out dto.StatusOutput) {
	if !out.Active {
		_, _ = fmt.Fprintf(w, "no active fast (protocol %s)\n", out.Protocol.Ratio)
	} else {
		state := "fasting"
		if out.GoalReached {
			state = "goal reached"
		}
		_, _ = fmt.Fprintf(w, "%s elapsed=%s progress=%.1f%% goal=%q started=%s\n", state,
			domain.FormatClock(out.Elapsed), out.Progress*100, out.Protocol.Label, out.StartedAt.Format(time.RFC3339))
	}
	if out.Warning != "" {
		_, _ = fmt.Fprintf(w, "warning: %s\n", out.Warning)
	}
}

// parseTime accepts RFC3339 or a local datetime as entered in a browser
// datetime-local field.
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339 or 2006-01-02T15:04", raw)
}

func dayStart(t time.Time, daysBack int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -daysBack)
}

func outcome(met bool) string {
	if met {
		return "goal met"
	}
	return "goal missed"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
