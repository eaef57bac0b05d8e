package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	questsCmd.AddCommand(questProgressCmd, questCleanupCmd)
	rootCmd.AddCommand(questsCmd)
}

var questsCmd = &cobra.Command{
	Use:   "quests",
	Short: "List active quests",
	RunE:  runQuests,
}

var questProgressCmd = &cobra.Command{
	Use:   "progress <quest-id> <progress>",
	Short: "Set a quest's progress",
	Args:  cobra.ExactArgs(2),
	RunE:  runQuestProgress,
}

var questCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired, unfinished quests",
	Args:  cobra.NoArgs,
	RunE:  runQuestCleanup,
}

func runQuests(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	quests, err := d.Service.Quests(context.Background(), userFlag)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(quests)
	}
	if len(quests) == 0 {
		fmt.Println("No quests.")
		return nil
	}

	now := time.Now()
	w := newTable()
	fmt.Fprintln(w, "ID\tTYPE\tQUEST\tPROGRESS\tXP\tLEFT")
	for _, q := range quests {
		left := until(q.ExpiresAt, now)
		if q.IsCompleted {
			left = "done"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %d/%d\t%d\t%s\n",
			shortID(q.ID), q.Type, q.Title, renderBar(q.ProgressPct()),
			q.CurrentProgress, q.Target, q.XPReward, left)
	}
	return w.Flush()
}

func runQuestProgress(cmd *cobra.Command, args []string) error {
	progress, err := parseNonNegative(args[1])
	if err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	questID, err := resolveQuestID(ctx, d.Service, args[0])
	if err != nil {
		return err
	}
	out, err := d.Service.UpdateQuestProgress(ctx, userFlag, questID, progress)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(out)
	}
	fmt.Println("Progress saved.")
	printOutcome(os.Stdout, out)
	return nil
}

func runQuestCleanup(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	n, err := d.Service.CleanupExpired(context.Background(), userFlag)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d expired quest(s).\n", n)
	return nil
}
