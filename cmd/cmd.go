// Package cmd defines the command-line interface for revenue-timeline.
package cmd

import (
	"github.com/buffos/revenue-timeline/internal/contract"
	"github.com/buffos/revenue-timeline/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("kind", "", "Data source kind: json or csv or parquet or xlsx or sql (default: from the file extension)")
	rootCmd.PersistentFlags().String("sheet", "", "Worksheet to read from xlsx files (default: first sheet)")
	rootCmd.PersistentFlags().String("year-column", dataset.DefaultColumns.Year, "Column holding the release year")
	rootCmd.PersistentFlags().String("revenue-column", dataset.DefaultColumns.Revenue, "Column holding the gross revenue")
	rootCmd.PersistentFlags().String("title-column", dataset.DefaultColumns.Title, "Column holding the movie title")
	rootCmd.PersistentFlags().String("db-driver", "", "Read records from a database: sqlite or mysql or postgres")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("table", dataset.DefaultTable, "Database table holding the records")
	rootCmd.PersistentFlags().Float64("width", contract.DefaultWidth, "Container width in pixels")
	rootCmd.PersistentFlags().Int("highlight", 0, "Year to mark with the pulse marker")
	rootCmd.PersistentFlags().String("select", "", "Year range to brush, as START:END")
	rootCmd.PersistentFlags().String("color", "auto", "Enable colored labels in output (yes/no/auto)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of renderCmd to Viper
	renderCmd.Flags().StringP("format", "f", string(contract.SVGFormat), "Output format: svg or html or png or jpeg or parquet or json")
	renderCmd.Flags().StringP("output-file", "o", "", "Output file path (default: stdout)")
	renderCmd.Flags().Int("quality", contract.DefaultQuality, "JPEG quality (1-100)")
	renderCmd.Flags().Int("hover", 0, "Year to show under the hover hairline")
	if err := viper.BindPFlags(renderCmd.Flags()); err != nil {
		contract.LogFatal("Error binding render flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListenAddr, "Address to listen on")
	serveCmd.Flags().Int("session-cache-size", contract.DefaultSessionCacheSize, "Most chart sessions kept alive at once")
	serveCmd.Flags().String("cors-origins", "", "Comma-separated list of allowed CORS origins")
	serveCmd.Flags().Float64("pointer-rate", contract.DefaultPointerRate, "Pointer events accepted per second per session")
	serveCmd.Flags().Int("pointer-burst", contract.DefaultPointerBurst, "Pointer event burst per session")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of importCmd to Viper
	importCmd.Flags().String("to-driver", string(dataset.SQLiteDriver), "Destination database: sqlite or mysql or postgres")
	importCmd.Flags().String("to-connect", "", "Destination connection string (a file path for sqlite)")
	importCmd.Flags().String("to-table", dataset.DefaultTable, "Destination table")
	if err := viper.BindPFlags(importCmd.Flags()); err != nil {
		contract.LogFatal("Error binding import flags", err)
	}
}
