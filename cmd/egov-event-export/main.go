package main

import (
	"fmt"
	"os"

	logpkg "egov-event-export/internal/common/logger"
	"egov-event-export/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "egov-event-export"

var (
	configPath string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   serviceName,
	Short: "Export calendar events from the portal database into static JSON artifacts",
	Long: `egov-event-export reads calendar events from the per-field node tables of the
portal database, flattens them into documents and writes the events, categories,
offices, information systems and search suggestions JSON files for the static site.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log, err = logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run one export and exit",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the columns of the field tables and a few sample events",
	Args:  cobra.NoArgs,
	RunE:  runInspect,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Export on startup, then on every schedule tick, stream message or file change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (or set EXPORT_CONFIG env)")

	watchCmd.Flags().Bool("skip-startup", false, "Do not export before waiting for the first trigger")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
