package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/srr_metrics/backend/internal/aggregate"
	"github.com/srr_metrics/backend/internal/cache"
	"github.com/srr_metrics/backend/internal/config"
	"github.com/srr_metrics/backend/internal/service"
	"github.com/srr_metrics/backend/internal/source"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

// options are the persistent flags shared by every subcommand.
type options struct {
	envFile string
	verbose bool
	service string
	month   string
	start   string
	end     string
	variant string

	// newSource is replaced in tests.
	newSource func(ctx context.Context, cfg config.Config) (source.Source, func(), error)
}

func Run() ExitCode {
	if err := NewRootCmd().Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{newSource: source.New})
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "srrctl",
		Short:         "Support interaction response-time metrics from the SRR worksheet.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Help(); err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", ".env", "Config file read before the environment")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Set debug logging level")
	pf.StringVar(&opts.service, "service", aggregate.All, "Service filter")
	pf.StringVar(&opts.month, "month", aggregate.All, "Month filter")
	pf.StringVar(&opts.start, "start", "", "Comparison window start (YYYY-MM-DD), previous month by default")
	pf.StringVar(&opts.end, "end", "", "Comparison window end (YYYY-MM-DD)")
	pf.StringVar(&opts.variant, "variant", string(service.VariantAll), "all or working_hours")

	rootCmd.AddCommand(
		newSummaryCmd(opts),
		newAgentsCmd(opts),
		newBreakdownCmd(opts),
		newExportCmd(opts),
	)
	return rootCmd
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()
}

// loadView reads the configured source once and builds the filtered view.
func (o *options) loadView(ctx context.Context) (service.View, error) {
	cfg, err := config.LoadFile(o.envFile)
	if err != nil {
		return service.View{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return service.View{}, err
	}
	req, err := o.viewRequest(cfg.Location())
	if err != nil {
		return service.View{}, err
	}

	logger := newLogger(o.verbose)
	src, closeSource, err := o.newSource(ctx, cfg)
	if err != nil {
		return service.View{}, err
	}
	defer closeSource()

	datasets := cache.New[service.Dataset](cfg.CacheTTL)
	datasets.FetchTimeout = cfg.FetchBudget()
	dash := service.NewDashboard(src, datasets, service.DashboardConfig{
		Worksheet: cfg.Worksheet,
		Location:  cfg.Location(),
		TTL:       cfg.CacheTTL,
	}, logger)
	return dash.View(ctx, req)
}

func (o *options) viewRequest(loc *time.Location) (service.ViewRequest, error) {
	variant, err := service.ParseVariant(o.variant)
	if err != nil {
		return service.ViewRequest{}, err
	}
	req := service.ViewRequest{
		Filters: aggregate.Filters{Service: o.service, Month: o.month},
		Variant: variant,
	}
	if o.start == "" && o.end == "" {
		return req, nil
	}
	if o.start == "" || o.end == "" {
		return service.ViewRequest{}, fmt.Errorf("--start and --end must be given together")
	}
	start, err := time.ParseInLocation("2006-01-02", o.start, loc)
	if err != nil {
		return service.ViewRequest{}, fmt.Errorf("invalid --start: %w", err)
	}
	end, err := time.ParseInLocation("2006-01-02", o.end, loc)
	if err != nil {
		return service.ViewRequest{}, fmt.Errorf("invalid --end: %w", err)
	}
	if end.Before(start) {
		return service.ViewRequest{}, fmt.Errorf("--end must not be before --start")
	}
	w := aggregate.DayWindow(start, end, loc)
	req.Window = &w
	return req, nil
}

func renderTable(out io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(out)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(header)
	table.AppendBulk(rows)
	table.Render()
}

func formatSurvey(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
