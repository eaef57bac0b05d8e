package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jobtrail/jobtrail/internal/app/progression"
)

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

// printOutcome reports XP, level-ups, completed quests and unlocks.
func printOutcome(w io.Writer, out progression.Outcome) {
	if out.XPAwarded > 0 {
		fmt.Fprintf(w, "+%d XP", out.XPAwarded)
		if out.LeveledUp {
			fmt.Fprintf(w, "  LEVEL UP! Level %d (%s)", out.Goals.CurrentLevel, out.LevelTitle)
		}
		fmt.Fprintln(w)
	}
	for _, q := range out.Completed {
		fmt.Fprintf(w, "[done] %s\n", q.Title)
	}
	for _, a := range out.Unlocked {
		fmt.Fprintf(w, "[achievement] %s (%s)\n", a.AchievementID, a.Tier)
	}
}

func parsePositive(s, what string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", what, s)
	}
	return n, nil
}

// until renders the time left before t, e.g. "3d4h" or "45m".
func until(t, now time.Time) string {
	d := t.Sub(now)
	if d <= 0 {
		return "expired"
	}
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd%dh", int(d.Hours())/24, int(d.Hours())%24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
}

func parseNonNegative(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("progress must be a non-negative integer, got %q", s)
	}
	return n, nil
}

// resolveQuestID expands a unique id prefix, as printed by 'jobtrail quests'.
func resolveQuestID(ctx context.Context, svc *progression.Service, prefix string) (string, error) {
	quests, err := svc.Quests(ctx, userFlag)
	if err != nil {
		return "", err
	}
	match := ""
	for _, q := range quests {
		if q.ID == prefix {
			return q.ID, nil
		}
		if strings.HasPrefix(q.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("quest id %q is ambiguous", prefix)
			}
			match = q.ID
		}
	}
	if match == "" {
		return prefix, nil
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// withDaemonOutcome opens the store, runs fn and prints its result as JSON
// when --json is set.
func withDaemonOutcome(fn func(ctx context.Context, svc *progression.Service) (interface{}, error)) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := fn(context.Background(), d.Service)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(result)
	}
	return nil
}
