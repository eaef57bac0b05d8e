package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jobtrail/jobtrail/internal/app/match"
	"github.com/jobtrail/jobtrail/internal/domain"
)

func init() {
	scoreCmd.Flags().StringVar(&scorePrefs, "prefs", "", "Preferences file (YAML or JSON)")
	rootCmd.AddCommand(scoreCmd)
}

var scorePrefs string

var scoreCmd = &cobra.Command{
	Use:   "score <job-file>",
	Short: "Score a job against your preferences",
	Long: `Score a job posting (YAML or JSON) against job preferences.

Example job.yaml:

  title: Backend Engineer
  company: Acme
  location: Berlin
  salary_min: 70000
  salary_max: 90000
  role_type: full-time
  industry: fintech
  work_style: hybrid`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func runScore(cmd *cobra.Command, args []string) error {
	var job domain.Job
	if err := readYAML(args[0], &job); err != nil {
		return fmt.Errorf("read job: %w", err)
	}

	var prefs *domain.JobPreferences
	if scorePrefs != "" {
		prefs = &domain.JobPreferences{}
		if err := readYAML(scorePrefs, prefs); err != nil {
			return fmt.Errorf("read preferences: %w", err)
		}
	}

	result := match.Score(job, prefs)
	if jsonOut {
		return printJSON(result)
	}

	fmt.Printf("%s at %s: %d/100\n\n", job.Title, job.Company, result.TotalScore)
	w := newTable()
	fmt.Fprintln(w, "FACTOR\tSCORE\tWEIGHT")
	for _, f := range result.Breakdown {
		fmt.Fprintf(w, "%s\t%d\t%.0f\n", f.Factor, f.Score, f.Weight)
	}
	return w.Flush()
}

// readYAML decodes a YAML (or JSON) file into v.
func readYAML(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, v)
}
