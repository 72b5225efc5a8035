package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/tellersim/metrics"
)

// A ReplicationSummary is the metrics of one replication and the seed that
// produced it.
type ReplicationSummary struct {
	Seed    int64           `yaml:"seed"`
	Metrics metrics.Metrics `yaml:"metrics"`
}

var replicationColumns = []string{
	metrics.AverageWaitingTime,
	metrics.MaxWaitingTime,
	metrics.AverageSystemTime,
	metrics.ServerUtilization,
	metrics.AverageQueueLength,
	metrics.MaxQueueLength,
}

// PrintReplications prints one line per replication. Replications are not
// combined.
func PrintReplications(w io.Writer, reps []ReplicationSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprint(tw, "Seed\t")
	for _, name := range replicationColumns {
		fmt.Fprintf(tw, "%s\t", TitleName(name))
	}
	fmt.Fprintln(tw)

	for _, r := range reps {
		values := r.Metrics.AsMap()

		fmt.Fprintf(tw, "%d\t", r.Seed)
		for _, name := range replicationColumns {
			fmt.Fprintf(tw, "%.2f\t", values[name])
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

// WriteReplicationsYAML writes every replication's metrics as a YAML list.
func WriteReplicationsYAML(w io.Writer, reps []ReplicationSummary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(reps); err != nil {
		return fmt.Errorf("encoding replications: %w", err)
	}

	return enc.Close()
}
