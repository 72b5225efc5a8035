// Package cmd provides the command-line interface of tellersim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sarchlab/tellersim/config"
)

var (
	cfgFile string
	envFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tellersim",
	Short: "tellersim simulates a bank with a single teller.",
	Long: `tellersim simulates a bank where customers arrive at random, wait ` +
		`in one line, and are served one at a time by a single teller. It ` +
		`reports how long customers wait, how busy the teller is, and how ` +
		`long the line gets.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "",
		"file of TELLERSIM_* variables to load (default .env if present)")
	rootCmd.PersistentFlags().IntP("customers", "n", 0,
		"number of customers")
	rootCmd.PersistentFlags().Int64("seed", 0,
		"seed of the random variates")
	rootCmd.PersistentFlags().Float64("interarrival-min", 0,
		"shortest time between two arrivals")
	rootCmd.PersistentFlags().Float64("interarrival-max", 0,
		"longest time between two arrivals")
	rootCmd.PersistentFlags().Float64("service-min", 0,
		"shortest service time")
	rootCmd.PersistentFlags().Float64("service-max", 0,
		"longest service time")
	rootCmd.PersistentFlags().String("output-dir", "",
		"directory of the files written")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false,
		"log every event to stderr")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replicateCmd)
}

// flagKeys maps flags to the config keys they override.
var flagKeys = map[string]string{
	"customers":        "customers",
	"seed":             "seed",
	"interarrival-min": "interarrival.min",
	"interarrival-max": "interarrival.max",
	"service-min":      "service.min",
	"service-max":      "service.max",
	"output-dir":       "output.dir",
	"verbose":          "verbose",
	"csv":              "output.csv",
	"metrics":          "output.metrics",
	"charts":           "output.charts",
	"record":           "output.record",
	"trace":            "output.trace",
	"monitor":          "monitor.enabled",
	"monitor-port":     "monitor.port",
	"open-browser":     "monitor.open_browser",
	"count":            "replications",
}

// loadConfig layers the config file, the env file, the environment, and the
// flags the user actually set.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadEnvFile(envFile, envFile != ""); err != nil {
		return config.Config{}, err
	}

	v := viper.New()

	if cfgFile != "" {
		if err := config.ReadFile(v, cfgFile); err != nil {
			return config.Config{}, err
		}
	}

	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}

		if err := v.BindPFlag(key, f); err != nil {
			return config.Config{}, err
		}
	}

	return config.Load(v)
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	return rootCmd.Execute()
}
