package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type reportOptions struct {
	kind      string
	startDate string
	endDate   string
	goals     bool
}

func newReportCommand(opts *rootOptions) *cobra.Command {
	ro := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print per-category summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rng, kind, err := ro.parse()
			if err != nil {
				return err
			}

			_, logger, b, err := opts.openBackend(cmd)
			if err != nil {
				return err
			}
			defer func() {
				if err := b.Close(); err != nil {
					logger.Error("Failed to release backend", log.FieldError, err)
				}
			}()

			ctx := cmd.Context()
			rows, err := categoryReport(ctx, b.Categories, b.Ledger, kind, rng)
			if err != nil {
				return err
			}
			renderCategoryReport(cmd.OutOrStdout(), rows)

			if !ro.goals {
				return nil
			}
			goals, err := goalReport(ctx, b.Goals, rng)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			renderGoalReport(cmd.OutOrStdout(), goals)
			return nil
		},
	}

	cmd.Flags().StringVar(&ro.kind, "type", "", "only categories of this type (income or expense)")
	cmd.Flags().StringVar(&ro.startDate, "start-date", "", "first day included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ro.endDate, "end-date", "", "last day included (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&ro.goals, "goals", false, "also summarize savings goal contributions")

	return cmd
}

func (o *reportOptions) parse() (core.DateRange, core.Kind, error) {
	var rng core.DateRange
	if o.startDate != "" {
		d, err := core.ParseDate(o.startDate)
		if err != nil {
			return rng, "", fmt.Errorf("--start-date: %w", err)
		}
		rng.From = &d
	}
	if o.endDate != "" {
		d, err := core.ParseDate(o.endDate)
		if err != nil {
			return rng, "", fmt.Errorf("--end-date: %w", err)
		}
		rng.To = &d
	}
	if err := rng.Validate(); err != nil {
		return rng, "", err
	}

	var kind core.Kind
	if o.kind != "" {
		k, err := core.ParseKind(o.kind)
		if err != nil {
			return rng, "", fmt.Errorf("--type: %w", err)
		}
		kind = k
	}
	return rng, kind, nil
}

type (
	categoryLister interface {
		List(ctx context.Context, kind core.Kind) ([]core.Category, error)
	}

	categorySummarizer interface {
		Summarize(ctx context.Context, categoryID string, r core.DateRange) (core.CategorySummary, error)
	}

	goalSummarizer interface {
		ListGoals(ctx context.Context) ([]core.SavingsGoal, error)
		SummarizeContributions(ctx context.Context, goalID string, r core.DateRange) (core.GoalSummary, error)
	}
)

func categoryReport(ctx context.Context, cats categoryLister, ledger categorySummarizer, kind core.Kind, rng core.DateRange) ([]core.CategorySummary, error) {
	list, err := cats.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	rows := make([]core.CategorySummary, 0, len(list))
	for _, c := range list {
		s, err := ledger.Summarize(ctx, c.ID, rng)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", c.Name, err)
		}
		rows = append(rows, s)
	}
	return rows, nil
}

func goalReport(ctx context.Context, goals goalSummarizer, rng core.DateRange) ([]core.GoalSummary, error) {
	list, err := goals.ListGoals(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]core.GoalSummary, 0, len(list))
	for _, g := range list {
		s, err := goals.SummarizeContributions(ctx, g.ID, rng)
		if err != nil {
			return nil, fmt.Errorf("summarize goal %s: %w", g.Name, err)
		}
		rows = append(rows, s)
	}
	return rows, nil
}

func renderCategoryReport(w io.Writer, rows []core.CategorySummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Type", "Count", "Total", "Average", "Min", "Max", "First", "Last"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
	})

	for _, r := range rows {
		s := r.Summary
		table.Append([]string{
			r.Category.Name,
			string(r.Category.Kind),
			strconv.FormatInt(s.Count, 10),
			s.Total.StringFixed(2),
			s.Mean.StringFixed(2),
			s.Min.StringFixed(2),
			s.Max.StringFixed(2),
			dateCell(s.FirstDate),
			dateCell(s.LastDate),
		})
	}
	table.Render()
}

func renderGoalReport(w io.Writer, rows []core.GoalSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Goal", "Target", "Saved", "Progress %", "Contributions", "Last"})
	table.SetAutoFormatHeaders(false)

	for _, r := range rows {
		table.Append([]string{
			r.Goal.Name,
			r.Goal.TargetAmount.StringFixed(2),
			r.Goal.CurrentAmount.StringFixed(2),
			r.Progress.StringFixed(1),
			strconv.FormatInt(r.Summary.Count, 10),
			dateCell(r.Summary.LastDate),
		})
	}
	table.Render()
}

func dateCell(d *core.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}
