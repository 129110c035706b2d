package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/buffos/revenue-timeline/internal/contract"
	"github.com/buffos/revenue-timeline/internal/dataset"
	"github.com/buffos/revenue-timeline/timeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:                "revenue-timeline",
	Short:              "Chart average movie revenue by release year.",
	Long:               `Revenue Timeline aggregates box-office records into a yearly trend line you can brush, hover and export.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".revenue-timeline")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	viper.SetEnvPrefix("REVENUE_TIMELINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("width", contract.DefaultWidth)
	viper.SetDefault("format", string(contract.SVGFormat))
	viper.SetDefault("quality", contract.DefaultQuality)
	viper.SetDefault("listen", contract.DefaultListenAddr)
	viper.SetDefault("session-cache-size", contract.DefaultSessionCacheSize)
	viper.SetDefault("pointer-rate", contract.DefaultPointerRate)
	viper.SetDefault("pointer-burst", contract.DefaultPointerBurst)
	viper.SetDefault("table", dataset.DefaultTable)
	viper.SetDefault("color", "auto")
}

// sharedSetup is called by all commands that read a dataset.
func sharedSetup(_ context.Context, _ *cobra.Command, args []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Handle positional arguments (which Viper doesn't do).
	input.DataPath = ""
	if len(args) == 1 {
		input.DataPath = args[0]
	}

	// 4. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	contract.SetColors(cfg.UseColors)
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadRecords reads the configured source.
func loadRecords(ctx context.Context) ([]timeline.Record, error) {
	src := cfg.Source
	where := src.Path
	if src.Kind == dataset.SQLKind {
		where = fmt.Sprintf("%s table %s", src.Driver, src.Table)
	}
	contract.LogInfo("Reading %s data from %s", src.Kind, where)

	records, err := dataset.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		contract.LogWarn("No records found; the chart will be empty")
	} else {
		contract.LogInfo("Loaded %d records", len(records))
	}
	return records, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
