package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formflow/pkg/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	configPath string
	verbose    bool

	cfg    = config.Default()
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "formflow",
	Short:        "Fill multi-group survey forms from the terminal",
	Long:         "formflow loads a survey schema, walks its groups interactively, keeps calculated fields up to date and writes the answers.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := loadConfig(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		cfg = loaded

		level, err := cfg.LogLevel()
		if err != nil {
			return err
		}
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the formflow version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "formflow %s (%s)\n", version, commit)
	},
}

// loadConfig reads the config file. An explicit path must exist; the default
// path is optional.
func loadConfig(path string, explicit bool) (config.Config, error) {
	if explicit {
		return config.LoadFile(path)
	}
	return config.Load(path)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Path to the formflow TOML config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	fillCmd.Flags().StringVarP(&fillOutput, "output", "o", "", "Write answers to this file instead of stdout")
	fillCmd.Flags().StringVar(&fillAnswers, "answers", "", "Pre-seed answers from a JSON or YAML file")
	fillCmd.Flags().StringVar(&fillFormat, "format", "", "Output format: json, form or pretty (overrides config)")

	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Treat schema warnings as errors")

	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(versionCmd)
}
