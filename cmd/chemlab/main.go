// Command chemlab is the virtual chemistry lab: it simulates what happens in a
// beaker, serves the lab API and manages the chemical catalog.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chemlab/internal/config"
	"chemlab/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chemlab",
	Short: "chemlab - virtual chemistry lab",
	Long: `chemlab mixes chemicals in a virtual beaker.

Known reactions come from a deterministic reaction table, including cascades
where products react further. An optional Gemini-backed narrator explains
what happened; without an API key built-in explanations are used.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		opts := logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			File:   cfg.Logging.File,
		}
		if verbose {
			opts.Level = "debug"
		}
		logger, err = logging.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")

	reactCmd.Flags().StringVarP(&reactTemperature, "temperature", "t", "room", "Temperature: room, hot or cold")
	reactCmd.Flags().StringVarP(&reactConcentration, "concentration", "k", "dilute", "Concentration: dilute or concentrated")
	reactCmd.Flags().BoolVar(&reactJSON, "json", false, "Print the raw result as JSON")

	catalogAddCmd.Flags().StringVar(&importName, "name", "", "Chemical name to look up on PubChem")
	catalogAddCmd.Flags().Int64Var(&importCID, "cid", 0, "PubChem compound ID")
	catalogAddCmd.Flags().StringVar(&importCategory, "category", "", "Shelf category (required)")
	catalogAddCmd.MarkFlagRequired("category")

	catalogSearchCmd.Flags().IntVar(&searchMax, "max", 20, "Maximum matches to count (at most 100)")

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)

	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogSeedCmd)
	catalogCmd.AddCommand(catalogSearchCmd)

	rootCmd.AddCommand(reactCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(colorCmd)
	rootCmd.AddCommand(reactionsCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
