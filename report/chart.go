package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/tellersim/metrics"
)

const (
	chartWidth  = 80
	chartHeight = 20
	noData      = "No data to display"

	// HistogramBins is the number of bins of the waiting time histogram.
	HistogramBins = 30
)

// Generator draws ASCII charts.
type Generator struct {
	width  int
	height int
}

// NewGenerator creates a new chart generator.
func NewGenerator() *Generator {
	return &Generator{
		width:  chartWidth,
		height: chartHeight,
	}
}

func (g *Generator) plotWidth() int {
	return g.width - 10
}

func (g *Generator) header(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", g.width))
	sb.WriteString("\n\n")
}

func (g *Generator) xAxis(sb *strings.Builder, columns int, from, to string) {
	sb.WriteString("         +")
	sb.WriteString(strings.Repeat("-", columns))
	sb.WriteString("\n")

	gap := columns - len(from) - len(to)
	if gap < 1 {
		gap = 1
	}

	sb.WriteString("          ")
	sb.WriteString(from)
	sb.WriteString(strings.Repeat(" ", gap))
	sb.WriteString(to)
	sb.WriteString("\n")
}

// sampleIndex maps a chart column to an index into n data points.
func sampleIndex(x, columns, n int) int {
	if columns <= 1 {
		return 0
	}

	i := int(float64(x) / float64(columns-1) * float64(n-1))
	if i >= n {
		i = n - 1
	}

	return i
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}

	return m
}

// PerCustomerChart plots one value per customer, such as the waiting time.
func (g *Generator) PerCustomerChart(title, unit string, values []float64) string {
	if len(values) == 0 {
		return noData
	}

	var sb strings.Builder
	g.header(&sb, title)

	columns := min(len(values), g.plotWidth())
	top := maxOf(values)

	levels := make([]int, columns)
	for x := range levels {
		v := values[sampleIndex(x, columns, len(values))]
		if top > 0 {
			levels[x] = int(math.Round(v / top * float64(g.height)))
		}
	}

	for row := g.height; row >= 1; row-- {
		sb.WriteString(fmt.Sprintf("%8.2f |", top*float64(row)/float64(g.height)))

		for _, level := range levels {
			switch {
			case level == row:
				sb.WriteString("*")
			case level > row:
				sb.WriteString(".")
			default:
				sb.WriteString(" ")
			}
		}

		sb.WriteString("\n")
	}

	g.xAxis(&sb, columns, "1", fmt.Sprintf("customer %d", len(values)))
	sb.WriteString(fmt.Sprintf("\n  y: %s\n", unit))

	return sb.String()
}

// Histogram counts the values into bins of equal width and draws one bar per
// bin.
func (g *Generator) Histogram(title string, values []float64, bins int) string {
	if len(values) == 0 || bins <= 0 {
		return noData
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	counts := make([]int, bins)
	width := (hi - lo) / float64(bins)

	for _, v := range values {
		b := 0
		if width > 0 {
			b = min(int((v-lo)/width), bins-1)
		}

		counts[b]++
	}

	top := 0
	for _, c := range counts {
		top = max(top, c)
	}

	var sb strings.Builder
	g.header(&sb, title)

	barWidth := max(g.plotWidth()/bins, 1)
	rows := min(top, g.height)

	for row := rows; row >= 1; row-- {
		threshold := float64(row) / float64(rows) * float64(top)
		sb.WriteString(fmt.Sprintf("%8.0f |", threshold))

		for _, c := range counts {
			mark := " "
			if float64(c) >= threshold {
				mark = "█"
			}

			sb.WriteString(strings.Repeat(mark, barWidth))
		}

		sb.WriteString("\n")
	}

	g.xAxis(&sb, barWidth*bins, fmt.Sprintf("%.2f", lo), fmt.Sprintf("%.2f", hi))
	sb.WriteString(fmt.Sprintf("\n  %d values in %d bins\n", len(values), bins))

	return sb.String()
}

// StepChart draws a length-over-time series up to endTime.
func (g *Generator) StepChart(
	title string,
	points []metrics.Point,
	endTime float64,
) string {
	if len(points) == 0 || endTime <= 0 {
		return noData
	}

	top := 0
	for _, p := range points {
		top = max(top, p.Length)
	}

	var sb strings.Builder
	g.header(&sb, title)

	columns := g.plotWidth()
	lengths := make([]int, columns)

	next := 0
	current := 0

	for x := range lengths {
		t := endTime * float64(x) / float64(columns-1)
		for next < len(points) && points[next].Time <= t {
			current = points[next].Length
			next++
		}

		lengths[x] = current
	}

	rows := max(min(top, g.height), 1)

	for row := rows; row >= 1; row-- {
		threshold := float64(row) / float64(rows) * float64(top)
		sb.WriteString(fmt.Sprintf("%8.0f |", threshold))

		for _, l := range lengths {
			if top > 0 && float64(l) >= threshold {
				sb.WriteString("█")
			} else {
				sb.WriteString(" ")
			}
		}

		sb.WriteString("\n")
	}

	g.xAxis(&sb, columns, "0", fmt.Sprintf("%.2f", endTime))

	return sb.String()
}

// BarChart draws one horizontal bar per named value.
func (g *Generator) BarChart(
	title string,
	names []string,
	values map[string]float64,
) string {
	if len(names) == 0 {
		return noData
	}

	labelWidth := 0
	top := 0.0

	for _, name := range names {
		labelWidth = max(labelWidth, len(TitleName(name)))
		top = math.Max(top, values[name])
	}

	var sb strings.Builder
	g.header(&sb, title)

	barSpace := max(g.width-labelWidth-14, 1)

	for _, name := range names {
		v := values[name]

		n := 0
		if top > 0 && v > 0 {
			n = int(math.Round(v / top * float64(barSpace)))
		}

		sb.WriteString(fmt.Sprintf("%-*s |", labelWidth, TitleName(name)))
		sb.WriteString(strings.Repeat("█", n))
		sb.WriteString(fmt.Sprintf(" %.2f\n", v))
	}

	return sb.String()
}

// Chart file names written by WriteCharts.
const (
	WaitingTimesChart   = "waiting_times.txt"
	SystemTimesChart    = "system_times.txt"
	WaitingHistogram    = "waiting_times_histogram.txt"
	QueueLengthChart    = "queue_length_over_time.txt"
	MetricsSummaryChart = "metrics_summary.txt"
)

// summaryNames are the metrics shown in the summary bar chart. The counts
// and times of the whole run would dwarf the others.
var summaryNames = []string{
	metrics.AverageWaitingTime,
	metrics.MaxWaitingTime,
	metrics.AverageSystemTime,
	metrics.MaxSystemTime,
	metrics.ServerUtilization,
	metrics.AverageQueueLength,
	metrics.MaxQueueLength,
}

// WriteCharts renders every chart of a run into dir, one file per chart, and
// returns the paths written.
func (g *Generator) WriteCharts(
	dir string,
	rows []Row,
	m metrics.Metrics,
	queue []metrics.Point,
) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	waits := make([]float64, len(rows))
	systems := make([]float64, len(rows))

	for i, r := range rows {
		waits[i] = r.WaitingTime
		systems[i] = r.SystemTime
	}

	charts := []struct {
		file string
		body string
	}{
		{WaitingTimesChart, g.PerCustomerChart(
			"Waiting Time for Each Customer", "waiting time (minutes)", waits)},
		{SystemTimesChart, g.PerCustomerChart(
			"Total Time in System for Each Customer", "system time (minutes)",
			systems)},
		{WaitingHistogram, g.Histogram(
			"Distribution of Waiting Times", waits, HistogramBins)},
		{QueueLengthChart, g.StepChart(
			"Queue Length Over Time", queue, m.EndTime)},
		{MetricsSummaryChart, g.BarChart(
			"Simulation Metrics", summaryNames, m.AsMap())},
	}

	paths := make([]string, 0, len(charts))

	for _, c := range charts {
		path := filepath.Join(dir, c.file)

		if err := os.WriteFile(path, []byte(c.body), 0o644); err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}
