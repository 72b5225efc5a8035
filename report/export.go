package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/tellersim/metrics"
)

// WriteMetricsYAML writes the metrics as a YAML document.
func WriteMetricsYAML(w io.Writer, m metrics.Metrics) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	return enc.Close()
}

// ReadMetricsYAML reads metrics written by WriteMetricsYAML.
func ReadMetricsYAML(r io.Reader) (metrics.Metrics, error) {
	var m metrics.Metrics

	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return metrics.Metrics{}, fmt.Errorf("decoding metrics: %w", err)
	}

	return m, nil
}

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	nameColor    = color.New(color.FgWhite)
	valueColor   = color.New(color.FgGreen)
)

// PrintSummary prints every metric with a readable name and two decimals.
func PrintSummary(w io.Writer, m metrics.Metrics) {
	values := m.AsMap()

	headingColor.Fprintln(w, "Simulation Metrics:")

	for _, name := range metrics.Names {
		nameColor.Fprintf(w, "%s: ", TitleName(name))
		valueColor.Fprintf(w, "%.2f\n", values[name])
	}
}

// TitleName turns a metric key such as "max_queue_length" into
// "Max Queue Length".
func TitleName(name string) string {
	words := strings.Split(name, "_")

	for i, word := range words {
		if word == "" {
			continue
		}

		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}
