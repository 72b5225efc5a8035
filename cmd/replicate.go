package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/tellersim/metrics"
	"github.com/sarchlab/tellersim/report"
	"github.com/sarchlab/tellersim/teller"
)

const replicationsFile = "replications.yaml"

var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Run independent replications side by side.",
	Long: "`replicate` runs the same bank with consecutive seeds, each on " +
		"its own engine, and prints the metrics of every replication.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		b := teller.MakeBuilder().
			WithNumCustomers(cfg.Customers).
			WithInterarrival(cfg.Interarrival).
			WithService(cfg.Service)
		seeds := cfg.Seeds(cfg.Replications, time.Now().UnixNano())

		reps, err := teller.RunReplications(cmd.Context(), b, seeds)
		if err != nil {
			return err
		}

		summaries := make([]report.ReplicationSummary, 0, len(reps))
		for _, r := range reps {
			summaries = append(summaries, report.ReplicationSummary{
				Seed: r.Seed,
				Metrics: metrics.Calculate(
					r.Result.Customers, r.Result.EndTime),
			})
		}

		if err := report.PrintReplications(cmd.OutOrStdout(), summaries); err != nil {
			return err
		}

		if !cfg.Output.Metrics {
			return nil
		}

		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return err
		}

		path := filepath.Join(cfg.Output.Dir, replicationsFile)
		if err := writeFile(path, func(f *os.File) error {
			return report.WriteReplicationsYAML(f, summaries)
		}); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\nReplication metrics saved to '%s'\n", path)

		return nil
	},
}

func init() {
	replicateCmd.Flags().Int("count", 10, "number of replications")
	replicateCmd.Flags().Bool("metrics", true,
		"write the metrics of every replication as YAML")
}
