package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/glucose-go/internal/app"
	"github.com/jwulff/glucose-go/internal/config"
	"github.com/jwulff/glucose-go/internal/logging"
	"github.com/jwulff/glucose-go/internal/version"
)

var (
	cfgFile       string
	logLevel      string
	displayUnit   string
	displayLocale string
	appHandle     *app.App
)

var rootCmd = &cobra.Command{
	Use:   "glucose",
	Short: "Format, store and watch glucose readings",
	Long: `glucose renders blood glucose values in mg/dL or mmol/L, keeps a local
history of Dexcom Share readings and raises low, high and connection alarms.

Settings are read from the --config file and GLUCOSE_* environment
variables; --display-unit and --locale override the display section for
one run.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if displayUnit != "" {
			cfg.Display.Unit = displayUnit
		}
		if displayLocale != "" {
			cfg.Display.Locale = displayLocale
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger := logging.NewLogger(cfg.Logging)
		handle, err := app.NewApp(cfg, logger)
		if err != nil {
			return err
		}
		handle.Out = cmd.OutOrStdout()
		appHandle = handle
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().StringVar(&displayUnit, "display-unit", "", "Display unit, mg/dL or mmol/L (overrides display.unit)")
	rootCmd.PersistentFlags().StringVar(&displayLocale, "locale", "", "Display locale, e.g. de or fr-CH (overrides display.locale)")

	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(elapsedCmd)
	rootCmd.AddCommand(nearCmd)
	rootCmd.AddCommand(filesizeCmd)
	rootCmd.AddCommand(percentCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(alarmCmd)
	rootCmd.AddCommand(versionCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("glucose: command ran before the application was built")
	}
	return appHandle
}
