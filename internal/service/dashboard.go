package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/srr_metrics/backend/internal/aggregate"
	"github.com/srr_metrics/backend/internal/cache"
	"github.com/srr_metrics/backend/internal/duration"
	"github.com/srr_metrics/backend/internal/metrics"
	"github.com/srr_metrics/backend/internal/models"
	"github.com/srr_metrics/backend/internal/source"
)

// Dataset is one normalized read of the worksheet.
type Dataset struct {
	Records  []models.Interaction `json:"-"`
	Stats    NormalizeStats       `json:"stats"`
	LoadedAt time.Time            `json:"loaded_at"`
}

type DashboardConfig struct {
	Worksheet string
	Location  *time.Location
	TTL       time.Duration
	Clock     clockwork.Clock
}

type Dashboard struct {
	Source source.Source
	Cache  *cache.Cache[Dataset]
	Logger zerolog.Logger

	worksheet string
	loc       *time.Location
	ttl       time.Duration
	clock     clockwork.Clock
}

func NewDashboard(src source.Source, c *cache.Cache[Dataset], cfg DashboardConfig, logger zerolog.Logger) *Dashboard {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	c.OnHit = func(string) { metrics.CacheRequestsTotal.WithLabelValues("hit").Inc() }
	c.OnMiss = func(string) { metrics.CacheRequestsTotal.WithLabelValues("miss").Inc() }
	return &Dashboard{
		Source:    src,
		Cache:     c,
		Logger:    logger,
		worksheet: cfg.Worksheet,
		loc:       cfg.Location,
		ttl:       cfg.TTL,
		clock:     cfg.Clock,
	}
}

func (d *Dashboard) Location() *time.Location { return d.loc }

func (d *Dashboard) cacheKey(variant Variant) string {
	return fmt.Sprintf("%s|%s|%s", d.Source.Kind(), d.worksheet, variant)
}

// Load returns the normalized dataset for variant, reading the source at most
// once per TTL. Source and schema errors are returned to the caller.
func (d *Dashboard) Load(ctx context.Context, variant Variant) (Dataset, error) {
	if variant == "" {
		variant = VariantAll
	}
	return d.Cache.GetOrFetch(ctx, d.cacheKey(variant), d.ttl, func(ctx context.Context) (Dataset, error) {
		return d.fetch(ctx, variant)
	})
}

func (d *Dashboard) fetch(ctx context.Context, variant Variant) (Dataset, error) {
	kind := d.Source.Kind()
	start := time.Now()
	table, err := d.Source.ReadWorksheet(ctx, d.worksheet)
	metrics.SourceFetchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SourceFetchesTotal.WithLabelValues(kind, "error").Inc()
		d.Logger.Error().Err(err).Str("source", kind).Str("worksheet", d.worksheet).Msg("worksheet read failed")
		return Dataset{}, fmt.Errorf("read worksheet: %w", err)
	}
	metrics.SourceFetchesTotal.WithLabelValues(kind, "ok").Inc()

	records, stats, err := Normalize(table, NormalizeOptions{Location: d.loc, Variant: variant})
	if err != nil {
		d.Logger.Error().Err(err).Str("source", kind).Msg("worksheet schema rejected")
		return Dataset{}, err
	}
	metrics.RowsDroppedTotal.WithLabelValues("no_service").Add(float64(stats.DroppedNoService))
	metrics.RowsDroppedTotal.WithLabelValues("outside_working_hours").Add(float64(stats.DroppedOutsideWorkHours))
	metrics.RecordsLoaded.WithLabelValues(string(variant)).Set(float64(stats.Kept))

	d.Logger.Info().
		Str("source", kind).
		Str("variant", string(variant)).
		Int("rows", stats.Rows).
		Int("kept", stats.Kept).
		Int("bad_timestamps", stats.BadTimestamps).
		Int("bad_durations", stats.BadDurations).
		Dur("took", time.Since(start)).
		Msg("worksheet loaded")
	return Dataset{Records: records, Stats: stats, LoadedAt: d.clock.Now().In(d.loc)}, nil
}

func (d *Dashboard) Invalidate() {
	d.Cache.Invalidate()
}

// Warm reloads the default variant so the next view is served from cache.
func (d *Dashboard) Warm(ctx context.Context) error {
	_, err := d.Load(ctx, VariantAll)
	return err
}

// DefaultWindow is the previous calendar month in loc.
func DefaultWindow(now time.Time, loc *time.Location) aggregate.Window {
	return aggregate.PreviousMonth(now.In(loc))
}

type ViewRequest struct {
	Filters aggregate.Filters
	Variant Variant
	// Window defaults to the previous calendar month when nil.
	Window *aggregate.Window
}

type Overview struct {
	aggregate.Overall
	AvgAck          string           `json:"avg_ack"`
	AvgResolve      string           `json:"avg_resolve"`
	Window          aggregate.Window `json:"window"`
	WindowCount     int              `json:"window_count"`
	Delta           aggregate.Delta  `json:"delta"`
	AckDelta        string           `json:"ack_delta"`
	ResolveDelta    string           `json:"resolve_delta"`
	AckImproved     bool             `json:"ack_improved"`
	ResolveImproved bool             `json:"resolve_improved"`
}

type View struct {
	Variant          Variant                                          `json:"variant"`
	Filters          aggregate.Filters                                `json:"filters"`
	Options          aggregate.Options                                `json:"options"`
	Overview         Overview                                         `json:"overview"`
	InQueue          aggregate.QueueSnapshot                          `json:"in_queue"`
	InProgress       aggregate.QueueSnapshot                          `json:"in_progress"`
	Breakdowns       map[aggregate.Dimension][]aggregate.BreakdownRow `json:"breakdowns"`
	ReasonsByAck     []aggregate.BreakdownRow                         `json:"reasons_by_ack"`
	ReasonsByResolve []aggregate.BreakdownRow                         `json:"reasons_by_resolve"`
	Agents           []aggregate.AgentRow                             `json:"agents"`
	AgentCounts      []aggregate.Count                                `json:"agent_counts"`
	ServiceCounts    []aggregate.Count                                `json:"service_counts"`
	Reasons          []aggregate.Count                                `json:"reasons"`
	Requestors       aggregate.Matrix                                 `json:"requestors"`
	HourlyServices   aggregate.Matrix                                 `json:"hourly_services"`
	HourlyReasons    aggregate.Matrix                                 `json:"hourly_reasons"`
	Records          []models.Interaction                             `json:"-"`
	Stats            NormalizeStats                                   `json:"stats"`
	LoadedAt         time.Time                                        `json:"loaded_at"`
}

// View builds every derived table for one filter selection. Overall metrics
// use the filtered records; the comparison window is drawn from the whole
// dataset.
func (d *Dashboard) View(ctx context.Context, req ViewRequest) (View, error) {
	ds, err := d.Load(ctx, req.Variant)
	if err != nil {
		return View{}, err
	}
	variant := req.Variant
	if variant == "" {
		variant = VariantAll
	}
	window := DefaultWindow(d.clock.Now(), d.loc)
	if req.Window != nil {
		window = *req.Window
	}

	filtered := req.Filters.Apply(ds.Records)
	v := View{
		Variant:        variant,
		Filters:        req.Filters,
		Options:        aggregate.FilterOptions(ds.Records, req.Filters.Service, d.clock.Now().In(d.loc)),
		Overview:       overview(filtered, ds.Records, window),
		InQueue:        aggregate.Queue(filtered, models.StatusInQueue),
		InProgress:     aggregate.Queue(filtered, models.StatusInProgress),
		Breakdowns:     map[aggregate.Dimension][]aggregate.BreakdownRow{},
		Agents:         aggregate.AgentSummary(filtered),
		AgentCounts:    aggregate.AgentCounts(filtered),
		ServiceCounts:  aggregate.ServiceCounts(filtered),
		Reasons:        aggregate.ReasonDistribution(filtered),
		Requestors:     aggregate.RequestorServiceMatrix(filtered),
		HourlyServices: aggregate.HourlyServiceCounts(filtered),
		HourlyReasons:  aggregate.HourlyReasonCounts(filtered),
		Records:        filtered,
		Stats:          ds.Stats,
		LoadedAt:       ds.LoadedAt,
	}
	for _, dim := range aggregate.BreakdownDimensions {
		v.Breakdowns[dim] = aggregate.Breakdown(filtered, dim)
	}
	reasons := v.Breakdowns[aggregate.DimCaseReason]
	v.ReasonsByAck = aggregate.RankByAverage(reasons, aggregate.MeasureAck)
	v.ReasonsByResolve = aggregate.RankByAverage(reasons, aggregate.MeasureResolve)
	return v, nil
}

func overview(filtered, all []models.Interaction, window aggregate.Window) Overview {
	overall := aggregate.OverallMetrics(filtered)
	baseline := aggregate.Averages{AckSeconds: overall.AvgAckSeconds, ResolveSeconds: overall.AvgResolveSeconds}
	delta := aggregate.WindowedDeltaAgainst(baseline, all, window)
	return Overview{
		Overall:         overall,
		AvgAck:          duration.FormatMean(overall.AvgAckSeconds),
		AvgResolve:      duration.FormatMean(overall.AvgResolveSeconds),
		Window:          window,
		WindowCount:     len(aggregate.InWindow(all, window)),
		Delta:           delta,
		AckDelta:        duration.FormatSeconds(delta.AckDeltaSeconds),
		ResolveDelta:    duration.FormatSeconds(delta.ResolveDeltaSeconds),
		AckImproved:     delta.AckDeltaSeconds < 0,
		ResolveImproved: delta.ResolveDeltaSeconds < 0,
	}
}
