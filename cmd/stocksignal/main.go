package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFile string
	logLevel   string
	provider   string
	csvDir     string
)

var versionString = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "stocksignal",
		Short:   "Technical signal scoring, backtesting and price forecasting for daily stock data",
		Version: versionString,
	}

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", defaultConfig, "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Price feed: yahoo, rest, csv or mock")
	rootCmd.PersistentFlags().StringVar(&csvDir, "csv-dir", "", "Directory of {SYMBOL}.csv files for the csv provider")

	rootCmd.AddCommand(newAnalyzeCmd(), newServeCmd(), newBotCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
