package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aguswahy13/bike-rental/internal/app"
	"github.com/aguswahy13/bike-rental/internal/config"
	"github.com/aguswahy13/bike-rental/internal/logging"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/dataset"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/pipeline"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/types"
	"github.com/aguswahy13/bike-rental/internal/modules/rentals/views"
)

// cli carries what PersistentPreRunE prepares for every subcommand.
type cli struct {
	cfg    config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           appName,
		Short:         "Bike rental insights dashboard",
		Long:          "Serves an interactive dashboard over the daily and hourly bike rental datasets.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			c.cfg = cfg
			c.logger = logging.New(cfg, version, appName, os.Stdout)
			slog.SetDefault(c.logger)
			return nil
		},
		RunE: c.runServe,
	}
	root.AddCommand(c.serveCmd(), c.importCmd(), c.summaryCmd())
	return root
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard (default)",
		Args:  cobra.NoArgs,
		RunE:  c.runServe,
	}
}

func (c *cli) runServe(cmd *cobra.Command, args []string) error {
	c.logger.Info("starting",
		"version", version,
		"env", c.cfg.AppEnv,
		"log_level", c.cfg.LogLevel.String(),
	)
	return app.Run(cmd.Context(), c.cfg, c.logger)
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Load the CSV files into the SQLite database",
		Long: `Reads DAY_FILE and HOUR_FILE and replaces the contents of the SQLite
database at SQLITE_PATH with them in one transaction. Serve from it with
DATA_SOURCE=sqlite.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			daily, hourly, err := app.Import(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d daily and %d hourly records into %s\n", daily, hourly, c.cfg.SQLitePath)
			return err
		},
	}
}

type summaryFlags struct {
	from    string
	to      string
	seasons []string
	weather []string
}

func (c *cli) summaryCmd() *cobra.Command {
	var flags summaryFlags
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print KPIs and rental summaries for a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := app.LoadDataset(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				return err
			}
			f, err := flags.filter(cmd, ds)
			if err != nil {
				return err
			}
			return writeSummary(cmd.OutOrStdout(), pipeline.Run(ds, f))
		},
	}
	cmd.Flags().StringVar(&flags.from, "from", "", "first day, YYYY-MM-DD (default: first day in the data)")
	cmd.Flags().StringVar(&flags.to, "to", "", "last day, YYYY-MM-DD (default: last day in the data)")
	cmd.Flags().StringSliceVar(&flags.seasons, "season", nil, "season codes to include (default: all)")
	cmd.Flags().StringSliceVar(&flags.weather, "weather", nil, "weather labels to include (default: all)")
	return cmd
}

// filter narrows the dataset defaults with the flags that were set. A flag
// set to an empty list selects nothing.
func (flags summaryFlags) filter(cmd *cobra.Command, ds *dataset.Dataset) (pipeline.Filter, error) {
	f := pipeline.DefaultFilter(ds)
	if flags.from != "" {
		t, err := time.Parse("2006-01-02", flags.from)
		if err != nil {
			return pipeline.Filter{}, fmt.Errorf("invalid --from %q (expected YYYY-MM-DD)", flags.from)
		}
		f.Start = t
	}
	if flags.to != "" {
		t, err := time.Parse("2006-01-02", flags.to)
		if err != nil {
			return pipeline.Filter{}, fmt.Errorf("invalid --to %q (expected YYYY-MM-DD)", flags.to)
		}
		f.End = t
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.Start.After(f.End) {
		return pipeline.Filter{}, errors.New("--from must be <= --to")
	}
	if cmd.Flags().Changed("season") {
		f.Seasons = make([]types.Season, 0, len(flags.seasons))
		for _, s := range flags.seasons {
			n, err := strconv.Atoi(s)
			if err != nil {
				return pipeline.Filter{}, fmt.Errorf("invalid --season %q (expected integer)", s)
			}
			f.Seasons = append(f.Seasons, types.Season(n))
		}
	}
	if cmd.Flags().Changed("weather") {
		f.Weather = make([]string, 0, len(flags.weather))
		for _, w := range flags.weather {
			if !types.IsWeatherLabel(w) {
				return pipeline.Filter{}, fmt.Errorf("unknown weather %q (allowed: %v)", w, types.WeatherLabels())
			}
			f.Weather = append(f.Weather, w)
		}
	}
	return f, nil
}

func writeSummary(out io.Writer, res pipeline.Result) error {
	data := views.BuildInsights(res, nil)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Records\t%s hourly\t%s daily\n", views.FormatCount(data.HourlyRows), views.FormatCount(data.DailyRows))
	for _, k := range data.KPIs {
		fmt.Fprintf(tw, "%s\t%s\n", k.Label, k.Value)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Season\tTotal")
	for _, r := range data.SeasonRows {
		fmt.Fprintf(tw, "%s\t%s\n", r.Label, views.FormatCount(r.Total))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "Weather\tTotal")
	for _, r := range data.WeatherRows {
		fmt.Fprintf(tw, "%s\t%s\n", r.Label, views.FormatCount(r.Total))
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, data.Narrative)
	return tw.Flush()
}
