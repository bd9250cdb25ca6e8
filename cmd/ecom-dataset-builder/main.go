package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/ecom-dataset-builder/internal/connector"
	"github.com/vitebski/ecom-dataset-builder/internal/generator"
	"github.com/vitebski/ecom-dataset-builder/internal/loader"
	"github.com/vitebski/ecom-dataset-builder/internal/reporter"
	"github.com/vitebski/ecom-dataset-builder/internal/utils"
)

func main() {
	var (
		dbPath   string
		dataDir  string
		envFile  string
		logLevel string
		seed     int64
		records  int
	)

	setup := func() *logrus.Logger {
		logger := utils.SetupLogging(logLevel)
		utils.LoadEnvironmentVariables(envFile, logger)

		if dataDir == "" {
			dataDir = os.Getenv("ECOM_DATA_DIR")
			if dataDir == "" {
				dataDir = "."
			}
		}
		return logger
	}

	rootCmd := &cobra.Command{
		Use:   "ecom-dataset-builder",
		Short: "Synthesize, load, and report on a small e-commerce dataset",
		Long: `E-Commerce Dataset Builder

Generates a five-entity e-commerce dataset as CSV files, loads it into a
local SQLite store with foreign keys declared, and runs a multi-table join
report. The three stages are independent and coupled only through the
file and schema contract.`,
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the five CSV files from a seeded random source",
		Run: func(cmd *cobra.Command, args []string) {
			logger := setup()

			if !cmd.Flags().Changed("seed") {
				seed = utils.GetEnvInt64("ECOM_SEED", seed)
			}
			if !cmd.Flags().Changed("records") {
				records = utils.GetEnvInt("ECOM_RECORDS", records)
			}
			if records <= 0 {
				logger.Errorf("Invalid record count: %d", records)
				os.Exit(1)
			}

			logger.Infof("Generating dataset with seed %d (%d records per entity)", seed, records)
			dg := generator.NewDataGenerator(seed, dataDir, records, logger)
			if err := dg.GenerateAll(); err != nil {
				logger.Errorf("Failed to generate dataset: %v", err)
				os.Exit(1)
			}
			logger.Info("All CSV files generated successfully")
		},
	}

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Rebuild the SQLite store from the CSV files",
		Run: func(cmd *cobra.Command, args []string) {
			logger := setup()

			db := connector.NewSQLiteConnector(dbPath, logger)

			l := loader.NewLoader(db, dataDir, logger)
			result, err := l.Load()
			db.Disconnect()
			if err != nil {
				logger.Errorf("Failed to load data: %v", err)
				os.Exit(1)
			}

			utils.PrintLoadSummary(result)
			logger.Infof("Database saved as: %s", db.Path)
		},
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Run the five-table join report against the store",
		Run: func(cmd *cobra.Command, args []string) {
			logger := setup()

			db := connector.NewSQLiteConnector(dbPath, logger)

			// The connection is released on both the normal and the error
			// path before the process exits.
			r := reporter.NewReporter(db, logger)
			err := r.Run(os.Stdout)
			db.Disconnect()
			if err != nil {
				logger.Errorf("Failed to run report: %v", err)
				os.Exit(1)
			}
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare store row counts against the source CSV files",
		Run: func(cmd *cobra.Command, args []string) {
			logger := setup()

			db := connector.NewSQLiteConnector(dbPath, logger)

			result := utils.VerifyAgainstFiles(db, dataDir, logger)
			db.Disconnect()

			utils.PrintVerificationResults(result)
			if !result.Success {
				os.Exit(1)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the SQLite database file (default: ecom.db)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "D", "", "Directory for the CSV files (default: working directory)")
	rootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	generateCmd.Flags().Int64VarP(&seed, "seed", "s", 42, "Seed for the pseudo-random source")
	generateCmd.Flags().IntVarP(&records, "records", "r", 20, "Number of records per fixed-cardinality entity")

	rootCmd.AddCommand(generateCmd, loadCmd, reportCmd, verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
