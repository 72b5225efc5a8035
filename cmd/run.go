package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/sarchlab/tellersim/config"
	"github.com/sarchlab/tellersim/datarecording"
	"github.com/sarchlab/tellersim/metrics"
	"github.com/sarchlab/tellersim/monitoring"
	"github.com/sarchlab/tellersim/report"
	"github.com/sarchlab/tellersim/sim/timing"
	"github.com/sarchlab/tellersim/teller"
	"github.com/sarchlab/tellersim/tracing"
)

// File names written into the output directory.
const (
	resultsFile = "simulation_results.csv"
	metricsFile = "metrics.yaml"
	plotsDir    = "plots"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation and report its metrics.",
	Long: "`run` simulates one bank day, prints the metrics, and writes " +
		"the results table, the metrics, and the charts into the output " +
		"directory.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		return runOnce(cmd, cfg)
	},
}

func init() {
	runCmd.Flags().Bool("csv", true, "write the results table as CSV")
	runCmd.Flags().Bool("metrics", true, "write the metrics as YAML")
	runCmd.Flags().Bool("charts", true, "write ASCII charts")
	runCmd.Flags().Bool("record", false,
		"record customers and metrics into a SQLite database")
	runCmd.Flags().Bool("trace", false,
		"record the wait and service of every customer into the database")
	runCmd.Flags().Bool("monitor", false, "serve the run over HTTP")
	runCmd.Flags().Int("monitor-port", 0, "port of the monitor")
	runCmd.Flags().Bool("open-browser", false,
		"open the monitor in a browser")
}

type metricEntry struct {
	Name  string
	Value float64
}

type runSetup struct {
	cfg      config.Config
	runID    string
	sim      *teller.Simulation
	recorder datarecording.DataRecorder
	tracer   *tracing.DBTracer
	monitor  *monitoring.Monitor
}

func buildSimulation(cfg config.Config) (*teller.Simulation, error) {
	b := teller.MakeBuilder().
		WithNumCustomers(cfg.Customers).
		WithInterarrival(cfg.Interarrival).
		WithService(cfg.Service)

	if cfg.Seed != nil {
		b = b.WithSeed(*cfg.Seed)
	}

	return b.Build("Teller")
}

func setUpRun(cfg config.Config) (*runSetup, error) {
	s, err := buildSimulation(cfg)
	if err != nil {
		return nil, err
	}

	setup := &runSetup{
		cfg:   cfg,
		runID: xid.New().String(),
		sim:   s,
	}

	if cfg.Verbose {
		s.Engine().AcceptHook(
			timing.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	if cfg.Output.Record || cfg.Output.Trace {
		if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
			return nil, err
		}

		path := filepath.Join(cfg.Output.Dir, "tellersim_"+setup.runID)

		setup.recorder, err = datarecording.New(path)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Output.Trace {
		setup.tracer = tracing.NewDBTracer(s.Engine(), setup.recorder)
		tracing.CollectTrace(s.Teller(), setup.tracer)
	}

	if cfg.Monitor.Enabled {
		setup.monitor = monitoring.NewMonitor().
			WithPortNumber(cfg.Monitor.Port).
			WithBrowser(cfg.Monitor.OpenBrowser)
		setup.monitor.RegisterSimulation(s)
		setup.monitor.StartServer()
	}

	return setup, nil
}

func runOnce(cmd *cobra.Command, cfg config.Config) error {
	setup, err := setUpRun(cfg)
	if err != nil {
		return err
	}

	result, err := setup.sim.Run()
	if err != nil {
		return err
	}

	m := metrics.Calculate(result.Customers, result.EndTime)
	report.PrintSummary(cmd.OutOrStdout(), m)

	if err := writeOutputs(cmd, setup, result, m); err != nil {
		return err
	}

	if setup.monitor != nil {
		fmt.Fprintln(cmd.ErrOrStderr(),
			"Simulation completed. The monitor keeps serving until interrupted.")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		<-ctx.Done()
	}

	return nil
}

func writeOutputs(
	cmd *cobra.Command,
	setup *runSetup,
	result teller.Result,
	m metrics.Metrics,
) error {
	out := setup.cfg.Output
	rows := report.Table(result.Customers)

	if out.CSV || out.Metrics || out.Charts {
		if err := os.MkdirAll(out.Dir, 0o755); err != nil {
			return err
		}
	}

	if out.CSV {
		path := filepath.Join(out.Dir, resultsFile)
		if err := writeFile(path, func(f *os.File) error {
			return report.WriteCSV(f, rows)
		}); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\nSimulation results saved to '%s'\n", path)
	}

	if out.Metrics {
		path := filepath.Join(out.Dir, metricsFile)
		if err := writeFile(path, func(f *os.File) error {
			return report.WriteMetricsYAML(f, m)
		}); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Metrics saved to '%s'\n", path)
	}

	if out.Charts {
		paths, err := report.NewGenerator().WriteCharts(
			filepath.Join(out.Dir, plotsDir),
			rows,
			m,
			metrics.QueueLengthSeries(result.Customers),
		)
		if err != nil {
			return err
		}

		for _, p := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "Saved chart to %s\n", p)
		}
	}

	if setup.recorder != nil {
		return record(setup, rows, m)
	}

	return nil
}

func record(setup *runSetup, rows []report.Row, m metrics.Metrics) error {
	if setup.cfg.Output.Record {
		setup.recorder.CreateTable("customers", report.Row{})
		for _, r := range rows {
			setup.recorder.InsertData("customers", r)
		}

		setup.recorder.CreateTable("metrics", metricEntry{})
		values := m.AsMap()
		for _, name := range metrics.Names {
			setup.recorder.InsertData("metrics",
				metricEntry{Name: name, Value: values[name]})
		}
	}

	if setup.tracer != nil {
		setup.tracer.Terminate()
	}

	return setup.recorder.Close()
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return f.Close()
}
