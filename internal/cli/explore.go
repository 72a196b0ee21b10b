package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/psorokin/canonica/internal/dataset"
)

// exploreCmd represents the explore command
var exploreCmd = &cobra.Command{
	Use:   "explore <cases.csv>",
	Short: "Print statistics about a case dataset",
	Long: `Explore summarizes a case CSV without calling any model: total and
labeled case counts, label balance, per-book case distribution, and
backstory length statistics.

Example:
  canonica explore validation.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cases, err := dataset.ReadCasesFile(args[0])
		if err != nil {
			return fmt.Errorf("read cases: %w", err)
		}
		dataset.Explore(cases).Report(os.Stdout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
