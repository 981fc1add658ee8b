package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/srr_metrics/backend/internal/aggregate"
	"github.com/srr_metrics/backend/internal/export"
)

func newSummaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print overall metrics and the delta against the comparison window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.loadView(cmd.Context())
			if err != nil {
				return err
			}
			ov := v.Overview
			renderTable(cmd.OutOrStdout(), []string{"Metric", "Value"}, [][]string{
				{"Interactions", strconv.Itoa(ov.Count)},
				{"Avg Survey", formatSurvey(ov.SurveyAvg)},
				{"Avg Time to Acknowledge", ov.AvgAck},
				{"Avg Time to Resolve", ov.AvgResolve},
				{"Window", ov.Window.Start.Format("2006-01-02") + " .. " + ov.Window.End.Format("2006-01-02")},
				{"Acknowledge Delta", ov.AckDelta},
				{"Resolve Delta", ov.ResolveDelta},
				{"In Queue", strconv.Itoa(v.InQueue.Count)},
				{"In Progress", strconv.Itoa(v.InProgress.Count)},
			})
			return nil
		},
	}
}

func newAgentsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "Print the agent summary, fastest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := opts.loadView(cmd.Context())
			if err != nil {
				return err
			}
			header, rows, err := export.Rows(export.TableAgents, v)
			if err != nil {
				return err
			}
			for i, a := range v.Agents {
				if a.AckOverThreshold {
					rows[i][1] += " (!)"
				}
			}
			renderTable(cmd.OutOrStdout(), header, rows)
			return nil
		},
	}
}

func newBreakdownCmd(opts *options) *cobra.Command {
	var rank string
	cmd := &cobra.Command{
		Use:   "breakdown <hour_created|month|service|case_reason>",
		Short: "Print average response times grouped by one dimension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dim, err := aggregate.ParseDimension(args[0])
			if err != nil {
				return err
			}
			measure := aggregate.Measure(rank)
			if rank != "" && measure != aggregate.MeasureAck && measure != aggregate.MeasureResolve {
				return fmt.Errorf("--rank must be ack or resolve")
			}
			v, err := opts.loadView(cmd.Context())
			if err != nil {
				return err
			}
			items := v.Breakdowns[dim]
			if rank != "" {
				items = aggregate.RankByAverage(items, measure)
			}
			rows := make([][]string, 0, len(items))
			for _, r := range items {
				rows = append(rows, []string{r.Value, strconv.Itoa(r.Count), r.AvgAck, r.AvgResolve})
			}
			renderTable(cmd.OutOrStdout(), []string{string(dim), "Interactions", "Avg Time to Acknowledge", "Avg Time to Resolve"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&rank, "rank", "", "Order by the ack or resolve average, slowest first")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var outPath string
	names := make([]string, 0, len(export.Tables))
	for _, t := range export.Tables {
		names = append(names, string(t))
	}
	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Write a table as CSV (" + strings.Join(names, ", ") + ")",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := export.ParseTable(args[0])
			if err != nil {
				return err
			}
			v, err := opts.loadView(cmd.Context())
			if err != nil {
				return err
			}
			if outPath == "" {
				return export.Write(cmd.OutOrStdout(), table, v)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			if err := export.Write(f, table, v); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}
