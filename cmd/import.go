package cmd

import (
	"fmt"

	"github.com/buffos/revenue-timeline/internal/contract"
	"github.com/buffos/revenue-timeline/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// importCmd copies records from a file into a database table.
var importCmd = &cobra.Command{
	Use:   "import <data-file>",
	Short: "Copy records from a data file into a database table.",
	Long: `Read records from a json, csv, parquet or xlsx file and append them to a
database table, creating it when missing. The table can then be served
with --db-driver and --db-connect.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		driver, err := dataset.ParseDriver(viper.GetString("to-driver"))
		if err != nil {
			return err
		}
		dsn := viper.GetString("to-connect")
		if err := contract.ValidateDatabaseConnectionString(driver, dsn); err != nil {
			return err
		}
		table := viper.GetString("to-table")
		if err := dataset.ValidateTableName(table); err != nil {
			return err
		}

		records, err := loadRecords(rootCtx)
		if err != nil {
			return err
		}

		db, err := dataset.Open(rootCtx, driver, dsn)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		if err := dataset.StoreRecords(rootCtx, db, driver, table, records); err != nil {
			return fmt.Errorf("import into %s table %s: %w", driver, table, err)
		}
		contract.LogInfo("Imported %d records into %s table %s", len(records), driver, table)
		return nil
	},
}
