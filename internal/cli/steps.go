package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(stepsCmd)
}

var stepsCmd = &cobra.Command{
	Use:     "steps",
	Aliases: []string{"next"},
	Short:   "Suggest the next few job-search actions",
	RunE:    runSteps,
}

func runSteps(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	steps, err := d.Service.SmartSteps(context.Background(), userFlag)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(steps)
	}
	if len(steps) == 0 {
		fmt.Println("Nothing urgent. Keep going!")
		return nil
	}
	for i, s := range steps {
		fmt.Printf("%d. %s\n", i+1, s.Title)
	}
	return nil
}
