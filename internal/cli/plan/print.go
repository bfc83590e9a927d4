package plan

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pablasso/smartplan/internal/plan"
)

// emptyPlansMessage is printed when the server has no plans.
const emptyPlansMessage = "No plans yet. Create one with: smartplan plan create <goal>"

func printPlans(w io.Writer, plans []plan.Summary, now time.Time) error {
	if len(plans) == 0 {
		_, err := fmt.Fprintln(w, emptyPlansMessage)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGOAL\tTASKS\tCREATED")
	for _, p := range plans {
		created := "-"
		if !p.CreatedAt.IsZero() {
			created = humanize.RelTime(p.CreatedAt, now, "ago", "from now")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", p.ID, p.Goal, p.TaskCount, created)
	}
	return tw.Flush()
}

func printPlan(w io.Writer, p *plan.Plan) error {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 %s  (id %s)\n", p.Goal, p.ID)
	fmt.Fprintf(&b, "%s %d%% Complete\n", progressBar(int(p.Progress), 20), p.Progress)

	for _, t := range p.Tasks {
		b.WriteString("\n")
		fmt.Fprintf(&b, "#%d %s [%s] %s\n", t.ID, t.Name, t.Priority.Display(), t.Status.Label())
		if desc := strings.TrimSpace(t.Description); desc != "" {
			fmt.Fprintf(&b, "   %s\n", desc)
		}
		meta := fmt.Sprintf("⏱ %s days", strconv.FormatFloat(t.EstimatedDays, 'f', -1, 64))
		if deps := t.DependsOnLabel(); deps != "" {
			meta += "  " + deps
		}
		fmt.Fprintf(&b, "   %s\n", meta)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func printReport(w io.Writer, r plan.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Plan\t%s\n", r.PlanID)
	fmt.Fprintf(tw, "Goal\t%s\n", r.Goal)
	fmt.Fprintf(tw, "Tasks\t%d\n", r.TotalTasks)
	fmt.Fprintf(tw, "Completed\t%d\n", r.Completed)
	fmt.Fprintf(tw, "In progress\t%d\n", r.InProgress)
	fmt.Fprintf(tw, "Pending\t%d\n", r.Pending)
	fmt.Fprintf(tw, "Progress\t%s %d%%\n", progressBar(int(r.ProgressPercentage), 20), r.ProgressPercentage)
	return tw.Flush()
}

func progressBar(percent, width int) string {
	percent = min(max(percent, 0), 100)
	filled := percent * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
