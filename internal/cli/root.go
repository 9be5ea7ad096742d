// internal/cli/root.go
package syncbench

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/mwiater/syncbench/internal/appconfig"
	"github.com/mwiater/syncbench/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "syncbench",
	Short:         "syncbench — latency benchmarks for synchronous inference endpoints",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureConfigLoaded(); err != nil {
			return err
		}
		console := viper.GetBool("debug") && !viper.GetBool("tui")
		if err := logging.Init(viper.GetString("logFile"), console); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

// Execute runs the root command and exits with status 1 on any error.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	// Ctrl-C cancels the run between calls; no report is written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logging.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (JSON or YAML)")
	rootCmd.PersistentFlags().Bool("debug", false, "mirror log output to the console")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")

	configureViper()
}

// configureViper binds the root flags and registers the defaults.
func configureViper() {
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
	setDefaults(appconfig.Defaults())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("syncbench")
		viper.AddConfigPath(".")
		viper.AddConfigPath("config")
	}
	viper.SetEnvPrefix("SYNCBENCH")
	viper.AutomaticEnv()
}

// ensureConfigLoaded reads the config file; a missing default file is fine.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

func setDefaults(d appconfig.Config) {
	viper.SetDefault("baseURL", d.BaseURL)
	viper.SetDefault("voice", d.Voice)
	viper.SetDefault("rounds", d.Rounds)
	viper.SetDefault("pacingMs", d.PacingMs)
	viper.SetDefault("settleMs", d.SettleMs)
	viper.SetDefault("warmup", d.Warmup)
	viper.SetDefault("timeout", d.TimeoutSeconds)
	viper.SetDefault("includeDownload", d.IncludeDownload)
	viper.SetDefault("artifactField", d.ArtifactField)
	viper.SetDefault("outputDir", d.OutputDir)
	viper.SetDefault("apiKeyEnv", d.APIKeyEnv)
	viper.SetDefault("logFile", d.LogFile)
	viper.SetDefault("wordCounts", d.WordCounts)
	viper.SetDefault("basePhrase", d.BasePhrase)
	viper.SetDefault("fillerPhrase", d.FillerPhrase)
	viper.SetDefault("closingMarker", d.ClosingMarker)
	viper.SetDefault("tui", d.TUI)
}

// currentConfig materializes the merged configuration (flags > env > file > defaults).
func currentConfig(args []string) (*appconfig.Config, error) {
	cfg := appconfig.Defaults()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Label = appconfig.LabelOrDefault(args)
	cfg.ConfigPath = viper.ConfigFileUsed()
	return &cfg, nil
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
