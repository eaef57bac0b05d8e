package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobtrail/jobtrail/internal/app/progression"
	"github.com/jobtrail/jobtrail/internal/domain"
)

func init() {
	appAddCmd.Flags().StringVar(&appStatus, "status", "Applied", "Initial status (Saved, Applied, Interview, Offer, ...)")
	appCmd.AddCommand(appAddCmd, appStatusCmd)

	eventCmd.Flags().StringVar(&eventApp, "app", "", "Application id the event belongs to")
	eventCmd.Flags().StringVar(&eventAt, "at", "", "When it happens (RFC3339, default now)")

	rootCmd.AddCommand(appCmd, contactCmd, eventCmd, logCmd)
}

var (
	appStatus string
	eventApp  string
	eventAt   string
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Track job applications",
}

var appAddCmd = &cobra.Command{
	Use:   "add <company> <role>",
	Short: "Record an application",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemonOutcome(func(ctx context.Context, d *progression.Service) (interface{}, error) {
			app, out, err := d.AddApplication(ctx, userFlag, domain.Application{
				Company: args[0],
				Role:    args[1],
				Status:  domain.ApplicationStatus(appStatus),
			})
			if err == nil && !jsonOut {
				fmt.Printf("Application %s saved (%s)\n", shortID(app.ID), app.Status)
				printOutcome(os.Stdout, out)
			}
			return map[string]interface{}{"application": app, "outcome": out}, err
		})
	},
}

var appStatusCmd = &cobra.Command{
	Use:   "status <application-id> <status>",
	Short: "Move an application to a new status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDaemonOutcome(func(ctx context.Context, d *progression.Service) (interface{}, error) {
			app, out, err := d.UpdateApplicationStatus(ctx, userFlag, args[0], args[1])
			if err == nil && !jsonOut {
				fmt.Printf("%s at %s is now %s\n", app.Role, app.Company, app.Status)
				printOutcome(os.Stdout, out)
			}
			return map[string]interface{}{"application": app, "outcome": out}, err
		})
	},
}

var contactCmd = &cobra.Command{
	Use:   "contact <name> [company]",
	Short: "Record a networking contact",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := domain.Contact{Name: args[0]}
		if len(args) > 1 {
			c.Company = args[1]
		}
		return withDaemonOutcome(func(ctx context.Context, d *progression.Service) (interface{}, error) {
			saved, out, err := d.AddContact(ctx, userFlag, c)
			if err == nil && !jsonOut {
				fmt.Printf("Contact %s saved\n", saved.Name)
				printOutcome(os.Stdout, out)
			}
			return map[string]interface{}{"contact": saved, "outcome": out}, err
		})
	},
}

var eventCmd = &cobra.Command{
	Use:   "event <type> <title>",
	Short: "Record an interview, networking event or deadline",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		at := time.Now()
		if eventAt != "" {
			t, err := time.Parse(time.RFC3339, eventAt)
			if err != nil {
				return fmt.Errorf("--at must be RFC3339: %w", err)
			}
			at = t
		}
		return withDaemonOutcome(func(ctx context.Context, d *progression.Service) (interface{}, error) {
			ev, out, err := d.AddEvent(ctx, userFlag, domain.Event{
				ApplicationID: eventApp,
				Type:          domain.EventType(args[0]),
				Title:         args[1],
				ScheduledAt:   at,
			})
			if err == nil && !jsonOut {
				fmt.Printf("%s event saved for %s\n", ev.Type, ev.ScheduledAt.Format("Mon Jan 2 15:04"))
				printOutcome(os.Stdout, out)
			}
			return map[string]interface{}{"event": ev, "outcome": out}, err
		})
	},
}

var logCmd = &cobra.Command{
	Use:   "log <category> [amount]",
	Short: "Count activity toward open quests (application, networking, interview, skill, research, offer)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := 1
		if len(args) > 1 {
			n, err := parsePositive(args[1], "amount")
			if err != nil {
				return err
			}
			amount = n
		}
		return withDaemonOutcome(func(ctx context.Context, d *progression.Service) (interface{}, error) {
			out, err := d.RecordActivity(ctx, userFlag, domain.QuestCategory(args[0]), amount)
			if err == nil && !jsonOut {
				fmt.Printf("Logged %d %s\n", amount, args[0])
				printOutcome(os.Stdout, out)
			}
			return out, err
		})
	},
}
