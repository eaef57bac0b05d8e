package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobtrail/jobtrail/internal/domain"
)

func init() {
	skillAddCmd.Flags().IntVar(&skillTarget, "target", 0, "Target hours for this skill")
	skillCmd.AddCommand(skillAddCmd, skillLogCmd)
	rootCmd.AddCommand(skillCmd)
}

var skillTarget int

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "List skills, or add one and log hours against it",
	RunE:  runSkillList,
}

var skillAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Start tracking a skill",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkillAdd,
}

var skillLogCmd = &cobra.Command{
	Use:   "log <skill-id> <hours>",
	Short: "Log hours spent on a skill",
	Args:  cobra.ExactArgs(2),
	RunE:  runSkillLog,
}

func runSkillList(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	skills, err := d.Service.Skills(context.Background(), userFlag)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(skills)
	}
	if len(skills) == 0 {
		fmt.Println("No skills yet. Run 'jobtrail skill add <name>' to start one.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tSKILL\tHOURS\tTARGET")
	for _, s := range skills {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", shortID(s.ID), s.Name, s.HoursLogged, s.TargetHours)
	}
	return w.Flush()
}

func runSkillAdd(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	sk, err := d.Service.AddSkill(context.Background(), userFlag, domain.Skill{Name: args[0], TargetHours: skillTarget})
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(sk)
	}
	fmt.Printf("Tracking %s (%s)\n", sk.Name, sk.ID)
	return nil
}

func runSkillLog(cmd *cobra.Command, args []string) error {
	hours, err := parsePositive(args[1], "hours")
	if err != nil {
		return err
	}

	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()
	ctx := context.Background()

	skillID := args[0]
	if skills, err := d.Service.Skills(ctx, userFlag); err == nil {
		for _, s := range skills {
			if shortID(s.ID) == skillID {
				skillID = s.ID
				break
			}
		}
	}

	sk, out, err := d.Service.LogSkillHours(ctx, userFlag, skillID, hours)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(out)
	}
	fmt.Printf("%s: %d hour(s) logged\n", sk.Name, sk.HoursLogged)
	printOutcome(os.Stdout, out)
	return nil
}
