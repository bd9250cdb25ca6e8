package connector

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// SQLiteConnector handles database connection and query execution against
// the file-backed SQLite store.
type SQLiteConnector struct {
	Path   string
	DB     *sql.DB
	Logger *logrus.Logger
}

// NewSQLiteConnector creates a new connector for the store at path. An
// empty path falls back to ECOM_DB_PATH, then to ecom.db in the working
// directory.
func NewSQLiteConnector(path string, logger *logrus.Logger) *SQLiteConnector {
	if path == "" {
		path = getEnvOrDefault("ECOM_DB_PATH", "ecom.db")
	}

	return &SQLiteConnector{
		Path:   path,
		Logger: logger,
	}
}

// Connect opens the SQLite database file with foreign key enforcement
// enabled.
func (dc *SQLiteConnector) Connect() error {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", dc.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		dc.Logger.Errorf("Error opening SQLite database: %v", err)
		return err
	}

	// Test the connection
	err = db.Ping()
	if err != nil {
		dc.Logger.Errorf("Error pinging SQLite database: %v", err)
		return err
	}

	dc.DB = db
	dc.Logger.Infof("Connected to SQLite database: %s", dc.Path)
	return nil
}

// Disconnect closes the database connection
func (dc *SQLiteConnector) Disconnect() {
	if dc.DB != nil {
		err := dc.DB.Close()
		if err != nil {
			dc.Logger.Errorf("Error closing database connection: %v", err)
		} else {
			dc.Logger.Info("SQLite connection closed")
		}
	}
}

// ExecuteQuery executes a SQL query and returns the results
func (dc *SQLiteConnector) ExecuteQuery(query string, params ...interface{}) ([]map[string]interface{}, error) {
	if dc.DB == nil {
		if err := dc.Connect(); err != nil {
			return nil, err
		}
	}

	rows, err := dc.DB.Query(query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing query: %v", err)
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		dc.Logger.Errorf("Error getting columns: %v", err)
		return nil, err
	}

	var results []map[string]interface{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			dc.Logger.Errorf("Error scanning row: %v", err)
			return nil, err
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			val := values[i]
			if val == nil {
				row[col] = nil
			} else {
				// Convert []byte to string for text fields
				if b, ok := val.([]byte); ok {
					row[col] = string(b)
				} else {
					row[col] = val
				}
			}
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		dc.Logger.Errorf("Error iterating rows: %v", err)
		return nil, err
	}

	return results, nil
}

// ExecuteStatement executes a SQL statement and returns the number of affected rows
func (dc *SQLiteConnector) ExecuteStatement(query string, params ...interface{}) (int64, error) {
	if dc.DB == nil {
		if err := dc.Connect(); err != nil {
			return 0, err
		}
	}

	result, err := dc.DB.Exec(query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing statement: %v", err)
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		dc.Logger.Errorf("Error getting affected rows: %v", err)
		return 0, err
	}

	return affected, nil
}

// WithTransaction runs fn inside a single transaction. Any error from fn
// rolls back everything done inside it; otherwise the transaction commits.
func (dc *SQLiteConnector) WithTransaction(fn func(tx *sql.Tx) error) error {
	if dc.DB == nil {
		if err := dc.Connect(); err != nil {
			return err
		}
	}

	tx, err := dc.DB.Begin()
	if err != nil {
		dc.Logger.Errorf("Error starting transaction: %v", err)
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			dc.Logger.Errorf("Error rolling back transaction: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		dc.Logger.Errorf("Error committing transaction: %v", err)
		tx.Rollback()
		return err
	}

	return nil
}

// RowCount returns the number of rows in a table.
func (dc *SQLiteConnector) RowCount(table string) (int, error) {
	results, err := dc.ExecuteQuery(fmt.Sprintf("SELECT COUNT(*) AS count FROM %s", table))
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("no result returned for count query on table %s", table)
	}

	count, ok := results[0]["count"].(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected count value for table %s: %v", table, results[0]["count"])
	}
	return int(count), nil
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
