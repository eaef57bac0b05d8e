package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, XP, streak and mode",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	sum, err := d.Service.Summary(context.Background(), userFlag)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(sum)
	}

	g := sum.Goals
	fmt.Printf("%s  (mode: %s)\n", g.UserID, g.Mode)
	if !sum.Persisted {
		fmt.Println("No progress yet. Run 'jobtrail mode <mode>' or log some activity to get started.")
	}
	fmt.Printf("Level %d  %s\n", g.CurrentLevel, sum.LevelTitle)
	fmt.Printf("  %s  %d XP, %d to next level\n", renderBar(sum.LevelProgressPct), g.TotalXP, sum.XPToNextLevel)
	fmt.Printf("Streak   %d day(s)  (longest %d)\n", sum.EffectiveStreak, g.LongestStreak)
	fmt.Printf("Targets  %d applications, %d networking, %dh skills per week\n",
		g.WeeklyApplicationTarget, g.WeeklyNetworkingTarget, g.WeeklySkillHours)
	return nil
}
