package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jobtrail/jobtrail/internal/domain"
)

func init() {
	modeCmd.Flags().IntVar(&modeApplications, "applications", 0, "Weekly application target")
	modeCmd.Flags().IntVar(&modeNetworking, "networking", 0, "Weekly networking target")
	modeCmd.Flags().IntVar(&modeSkillHours, "skill-hours", 0, "Weekly skill-building hours")
	rootCmd.AddCommand(modeCmd)
}

var (
	modeApplications int
	modeNetworking   int
	modeSkillHours   int
)

var modeCmd = &cobra.Command{
	Use:   "mode [mode]",
	Short: "Show or switch the job-search mode",
	Long: `Show the current mode, or switch to one of:

  active_seeker    (crush)      applying hard, daily quests
  career_growth    (climb)      building skills and network
  stealth_seeker   (stealth)    searching quietly while employed
  career_insurance (insurance)  staying ready, weekly cadence

Switching replaces unfinished quests with the new mode's set.
Unlocked achievements are kept.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMode,
}

func runMode(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()
	ctx := context.Background()

	if len(args) == 0 {
		sum, err := d.Service.Summary(ctx, userFlag)
		if err != nil {
			return err
		}
		fmt.Printf("Current mode: %s\n", sum.Goals.Mode)
		fmt.Println("Available:")
		for _, m := range domain.AllModes() {
			fmt.Printf("  %s\n", m)
		}
		return nil
	}

	mode, err := domain.ParseMode(args[0])
	if err != nil {
		return err
	}
	change, err := d.Service.SetMode(ctx, userFlag, mode, &domain.Targets{
		Applications: modeApplications,
		Networking:   modeNetworking,
		SkillHours:   modeSkillHours,
	})
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(change)
	}

	fmt.Printf("Mode set to %s.\n", mode)
	fmt.Printf("  %d new quest(s), %d replaced\n", len(change.Created), change.Deleted)
	for _, q := range change.Created {
		fmt.Printf("  + [%s] %s (%d XP)\n", q.Type, q.Title, q.XPReward)
	}
	return nil
}
