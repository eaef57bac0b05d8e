package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jobtrail/jobtrail/internal/domain"
)

// ─── Progress Bar ───────────────────────────────────────────────────────────
// Renders a fixed-width bar: [=========>..........]  42%

const barWidth = 20

func renderBar(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	empty := barWidth - filled

	var bar string
	if filled == barWidth {
		bar = strings.Repeat("=", filled)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", empty)
	} else {
		bar = strings.Repeat(".", barWidth)
	}
	return fmt.Sprintf("[%s] %3.0f%%", bar, pct)
}

// ─── progress command ───────────────────────────────────────────────────────

func init() {
	progressCmd.Flags().BoolVar(&progressMonthly, "month", false, "Show this month instead of this week")
	rootCmd.AddCommand(progressCmd)
}

var progressMonthly bool

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show this week's (or month's) activity against targets",
	RunE:  runProgress,
}

func runProgress(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()
	ctx := context.Background()

	if progressMonthly {
		m, err := d.Service.MonthlyProgress(ctx, userFlag)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(m)
		}
		printMonthly(m)
		return nil
	}

	wk, err := d.Service.WeeklyProgress(ctx, userFlag)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(wk)
	}
	printWeekly(wk)
	return nil
}

func printWeekly(p domain.WeeklyProgress) {
	fmt.Printf("Week of %s\n\n", p.WeekStart.Format("Mon Jan 2"))
	w := newTable()
	fmt.Fprintln(w, "\tTHIS WEEK\tLAST WEEK\tTARGET\t")
	fmt.Fprintf(w, "Applications\t%d\t%d\t%d\t%s\n",
		p.Applications, p.ApplicationsLastWeek, p.ApplicationTarget, renderBar(p.ApplicationProgressPct))
	fmt.Fprintf(w, "Networking\t%d\t%d\t%d\t%s\n",
		p.Networking, p.NetworkingLastWeek, p.NetworkingTarget, renderBar(p.NetworkingProgressPct))
	fmt.Fprintf(w, "Interviews\t%d\t%d\t-\t\n", p.Interviews, p.InterviewsLastWeek)
	w.Flush()
}

func printMonthly(p domain.MonthlyProgress) {
	fmt.Printf("%s\n\n", p.MonthStart.Format("January 2006"))
	w := newTable()
	fmt.Fprintf(w, "Applications\t%d\t(last month %d)\n", p.Applications, p.ApplicationsLastMonth)
	fmt.Fprintf(w, "Interviews\t%d\t\n", p.Interviews)
	fmt.Fprintf(w, "Networking\t%d\t\n", p.Networking)
	w.Flush()
}
