package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/ecom-dataset-builder/internal/connector"
	"github.com/vitebski/ecom-dataset-builder/internal/schema"
	"github.com/vitebski/ecom-dataset-builder/pkg/models"
)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	// Get log level from environment variable or parameter
	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("ECOM_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	return logger
}

// LoadEnvironmentVariables loads environment variables from a .env file if
// one exists. All ECOM_* variables are optional; built-in defaults cover
// the bare invocation.
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) {
	if _, err := os.Stat(envFile); err != nil {
		logger.Debugf("No %s file found, using existing environment variables", envFile)
		return
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warningf("Error loading %s file: %v", envFile, err)
		return
	}
	logger.Infof("Loaded environment variables from %s", envFile)

	if logger.Level == logrus.DebugLevel {
		for _, env := range os.Environ() {
			if strings.HasPrefix(env, "ECOM_") {
				logger.Debugf("%s", env)
			}
		}
	}
}

// GetEnvInt gets an integer value from environment variable
func GetEnvInt(varName string, defaultValue int) int {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// GetEnvInt64 gets a 64-bit integer value from environment variable
func GetEnvInt64(varName string, defaultValue int64) int64 {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// PrintLoadSummary prints per-table row counts after a load run.
func PrintLoadSummary(result models.LoadResult) {
	tables := make([]string, 0, len(result.RowCounts))
	for table := range result.RowCounts {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("DATA LOAD SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	for _, table := range tables {
		fmt.Printf("  %-15s %d rows\n", table+":", result.RowCounts[table])
	}
	fmt.Printf("Total rows loaded: %d\n", result.TotalRows())
	fmt.Println(strings.Repeat("=", 50))
}

// CountFileRows counts the data rows (excluding the header) of one
// table's CSV file.
func CountFileRows(dataDir string, t models.Table) (int, error) {
	path := filepath.Join(dataDir, t.FileName)
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%s is empty, expected a header row", path)
	}
	return len(records) - 1, nil
}

// VerifyAgainstFiles compares per-table row counts in the store against
// the data rows of the source CSV files.
func VerifyAgainstFiles(db *connector.SQLiteConnector, dataDir string, logger *logrus.Logger) models.VerificationResult {
	result := models.VerificationResult{
		Success:          true,
		MismatchedTables: make(map[string][2]int),
	}

	for _, t := range schema.Tables() {
		expected, err := CountFileRows(dataDir, t)
		if err != nil {
			logger.Warningf("Could not count rows in %s: %v", t.FileName, err)
			result.MissingTables = append(result.MissingTables, t.Name)
			result.Success = false
			continue
		}

		actual, err := db.RowCount(t.Name)
		if err != nil {
			logger.Warningf("Could not verify record count for table: %s", t.Name)
			result.MissingTables = append(result.MissingTables, t.Name)
			result.Success = false
			continue
		}

		if actual != expected {
			logger.Warningf("Table %s has %d rows, expected %d from %s", t.Name, actual, expected, t.FileName)
			result.MismatchedTables[t.Name] = [2]int{expected, actual}
			result.Success = false
		}
	}

	if result.Success {
		logger.Info("Verification successful: all table counts match the source files")
	}

	return result
}

// PrintVerificationResults prints the outcome of the store verification.
func PrintVerificationResults(result models.VerificationResult) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("STORE VERIFICATION RESULTS")
	fmt.Println(strings.Repeat("=", 50))

	if result.Success {
		fmt.Println("All table row counts match the source CSV files")
		fmt.Println(strings.Repeat("=", 50))
		return
	}

	if len(result.MissingTables) > 0 {
		fmt.Printf("%d tables could not be verified:\n", len(result.MissingTables))
		for _, table := range result.MissingTables {
			fmt.Printf("  - %s\n", table)
		}
	}

	if len(result.MismatchedTables) > 0 {
		tables := make([]string, 0, len(result.MismatchedTables))
		for table := range result.MismatchedTables {
			tables = append(tables, table)
		}
		sort.Strings(tables)

		fmt.Printf("%d tables have mismatched row counts:\n", len(result.MismatchedTables))
		for _, table := range tables {
			counts := result.MismatchedTables[table]
			fmt.Printf("  - %s: expected %d, found %d\n", table, counts[0], counts[1])
		}
	}

	fmt.Println(strings.Repeat("=", 50))
}
