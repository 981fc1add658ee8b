package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/srr_metrics/backend/internal/aggregate"
	"github.com/srr_metrics/backend/internal/chart"
	"github.com/srr_metrics/backend/internal/export"
	"github.com/srr_metrics/backend/internal/http/middleware"
	"github.com/srr_metrics/backend/internal/refresh"
	"github.com/srr_metrics/backend/internal/service"
	"github.com/srr_metrics/backend/internal/utils"
)

type Handler struct {
	Dashboard *service.Dashboard
	Scheduler *refresh.Scheduler
	Validator *validator.Validate
	Logger    zerolog.Logger
	Timeout   time.Duration
}

// ViewQuery is the filter selection shared by every read endpoint.
type ViewQuery struct {
	Service string `form:"service" validate:"omitempty,max=200"`
	Month   string `form:"month" validate:"omitempty,max=32"`
	Start   string `form:"start" validate:"required_with=End,omitempty,datetime=2006-01-02"`
	End     string `form:"end" validate:"required_with=Start,omitempty,datetime=2006-01-02"`
	Variant string `form:"variant" validate:"omitempty,oneof=all working_hours"`
}

type RecordsQuery struct {
	Limit  int `form:"limit" validate:"omitempty,min=1,max=5000"`
	Offset int `form:"offset" validate:"omitempty,min=0"`
}

type OverviewResponse struct {
	Variant  service.Variant        `json:"variant"`
	Filters  aggregate.Filters      `json:"filters"`
	Options  aggregate.Options      `json:"options"`
	Overview service.Overview       `json:"overview"`
	Stats    service.NormalizeStats `json:"stats"`
	LoadedAt time.Time              `json:"loaded_at"`
	Refresh  refresh.Status         `json:"refresh"`
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if p, ok := h.Dashboard.Source.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "SOURCE_UNAVAILABLE", "Data source unavailable", err.Error())
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "source": h.Dashboard.Source.Kind()})
}

// @Summary Overview metrics
// @Description Interaction count, survey average, response-time averages and the delta against a date window
// @Tags metrics
// @Produce json
// @Param service query string false "Service filter, All for none"
// @Param month query string false "Month filter, All for none"
// @Param start query string false "Window start (YYYY-MM-DD)"
// @Param end query string false "Window end (YYYY-MM-DD)"
// @Param variant query string false "all or working_hours"
// @Success 200 {object} OverviewResponse
// @Failure 400 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/overview [get]
func (h *Handler) Overview(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, OverviewResponse{
		Variant:  v.Variant,
		Filters:  v.Filters,
		Options:  v.Options,
		Overview: v.Overview,
		Stats:    v.Stats,
		LoadedAt: v.LoadedAt,
		Refresh:  h.Scheduler.Status(),
	})
}

// @Summary Open cases
// @Tags metrics
// @Produce json
// @Param service query string false "Service filter"
// @Param month query string false "Month filter"
// @Success 200 {object} map[string]any
// @Router /api/queue [get]
func (h *Handler) Queue(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"in_queue": v.InQueue, "in_progress": v.InProgress})
}

// @Summary Response times by dimension
// @Tags metrics
// @Produce json
// @Param dimension path string true "hour_created, month, service or case_reason"
// @Param rank query string false "ack or resolve: order by that average, slowest first"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/breakdowns/{dimension} [get]
func (h *Handler) Breakdown(c *gin.Context) {
	dim, err := aggregate.ParseDimension(c.Param("dimension"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_DIMENSION", "Unknown breakdown dimension", err.Error())
		return
	}
	rank := aggregate.Measure(c.Query("rank"))
	if rank != "" && rank != aggregate.MeasureAck && rank != aggregate.MeasureResolve {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "rank must be ack or resolve", nil)
		return
	}
	v, ok := h.view(c)
	if !ok {
		return
	}
	rows := v.Breakdowns[dim]
	if rank != "" {
		rows = aggregate.RankByAverage(rows, rank)
	}
	c.JSON(http.StatusOK, gin.H{"dimension": dim, "items": rows})
}

// @Summary Agent summary
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/agents [get]
func (h *Handler) Agents(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":                      v.Agents,
		"counts":                     v.AgentCounts,
		"slow_ack_threshold_seconds": aggregate.SlowAckThresholdSeconds,
	})
}

// @Summary Requestor by service counts
// @Tags metrics
// @Produce json
// @Success 200 {object} aggregate.Matrix
// @Router /api/requestors [get]
func (h *Handler) Requestors(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, v.Requestors)
}

// @Summary Volume distributions
// @Description Interactions per service and case reason, and per hour by service and by case reason
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/distributions [get]
func (h *Handler) Distributions(c *gin.Context) {
	v, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"services":        v.ServiceCounts,
		"reasons":         v.Reasons,
		"hourly_services": v.HourlyServices,
		"hourly_reasons":  v.HourlyReasons,
	})
}

// @Summary Normalized records
// @Tags records
// @Produce json
// @Param limit query int false "Page size (default 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]any
// @Router /api/records [get]
func (h *Handler) Records(c *gin.Context) {
	var q RecordsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query", err.Error())
		return
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if q.Limit == 0 {
		q.Limit = 100
	}
	v, ok := h.view(c)
	if !ok {
		return
	}
	total := len(v.Records)
	start := min(q.Offset, total)
	end := min(start+q.Limit, total)
	c.JSON(http.StatusOK, gin.H{
		"items":  v.Records[start:end],
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
	})
}

// @Summary Download a table as CSV
// @Tags export
// @Produce text/csv
// @Param table path string true "hourly_services, hourly_ack, monthly, groups, requestors, agents, case_reasons, in_queue, in_progress or raw"
// @Success 200 {file} file
// @Failure 400 {object} map[string]any
// @Router /api/export/{table} [get]
func (h *Handler) Export(c *gin.Context) {
	table, err := export.ParseTable(c.Param("table"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_TABLE", "Unknown export table", err.Error())
		return
	}
	v, ok := h.view(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, table, v); err != nil {
		h.Logger.Error().Err(err).Str("table", string(table)).Msg("export failed")
		writeError(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render table", err.Error())
		return
	}
	body := buf.Bytes()
	etag := utils.ETag(body)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Header("ETag", etag)
	c.Header("Content-Disposition", `attachment; filename="`+table.Filename()+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// @Summary Render a chart as PNG
// @Tags charts
// @Produce image/png
// @Param chart path string true "services, hourly_ack or agent_ack"
// @Success 200 {file} file
// @Failure 404 {object} map[string]any
// @Router /api/charts/{chart} [get]
func (h *Handler) Chart(c *gin.Context) {
	kind, err := chart.ParseKind(c.Param("chart"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_CHART", "Unknown chart", err.Error())
		return
	}
	v, ok := h.view(c)
	if !ok {
		return
	}
	img, err := chart.Render(kind, v)
	if err != nil {
		if errors.Is(err, chart.ErrNoData) {
			writeError(c, http.StatusNotFound, "NO_DATA", "Nothing to chart for this selection", nil)
			return
		}
		h.Logger.Error().Err(err).Str("chart", string(kind)).Msg("chart render failed")
		writeError(c, http.StatusInternalServerError, "CHART_ERROR", "Failed to render chart", err.Error())
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", img)
}

// @Summary Refresh status
// @Tags refresh
// @Produce json
// @Success 200 {object} refresh.Status
// @Router /api/refresh [get]
func (h *Handler) RefreshStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Scheduler.Status())
}

// @Summary Refresh now
// @Description Drops cached data, reloads it and restarts the countdown
// @Tags refresh
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	ev := h.Scheduler.Trigger(c.Request.Context())
	h.Logger.Info().Str("request_id", c.GetString(middleware.RequestIDHeader)).Msg("manual refresh")
	c.JSON(http.StatusOK, gin.H{"event": ev, "status": h.Scheduler.Status()})
}

// @Summary Refresh events
// @Description Server-sent events: one status event on connect, then a refresh event each time cached data is dropped
// @Tags refresh
// @Produce text/event-stream
// @Router /api/events [get]
func (h *Handler) Events(c *gin.Context) {
	events, cancel := h.Scheduler.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("status", h.Scheduler.Status())
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("refresh", ev)
			return true
		}
	})
}

// view binds and validates the filter query, then builds the dashboard view.
// It writes the error response itself and reports whether to continue.
func (h *Handler) view(c *gin.Context) (service.View, bool) {
	var q ViewQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid query", err.Error())
		return service.View{}, false
	}
	if err := h.Validator.Struct(q); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return service.View{}, false
	}
	req, err := h.viewRequest(q)
	if err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return service.View{}, false
	}

	ctx := c.Request.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}
	v, err := h.Dashboard.View(ctx, req)
	if err != nil {
		if errors.Is(err, service.ErrMissingColumn) {
			writeError(c, http.StatusBadGateway, "SCHEMA_ERROR", "Worksheet is missing required columns", err.Error())
			return service.View{}, false
		}
		h.Logger.Error().Err(err).Msg("failed to load dashboard data")
		writeError(c, http.StatusBadGateway, "SOURCE_ERROR", "Failed to load worksheet", err.Error())
		return service.View{}, false
	}
	return v, true
}

func (h *Handler) viewRequest(q ViewQuery) (service.ViewRequest, error) {
	variant, err := service.ParseVariant(q.Variant)
	if err != nil {
		return service.ViewRequest{}, err
	}
	req := service.ViewRequest{
		Filters: aggregate.Filters{Service: q.Service, Month: q.Month},
		Variant: variant,
	}
	if q.Start != "" {
		loc := h.Dashboard.Location()
		start, _ := time.ParseInLocation("2006-01-02", q.Start, loc)
		end, _ := time.ParseInLocation("2006-01-02", q.End, loc)
		if end.Before(start) {
			return service.ViewRequest{}, errors.New("end must not be before start")
		}
		w := aggregate.DayWindow(start, end, loc)
		req.Window = &w
	}
	return req, nil
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
