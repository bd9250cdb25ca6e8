package loader

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/ecom-dataset-builder/internal/connector"
	"github.com/vitebski/ecom-dataset-builder/internal/schema"
	"github.com/vitebski/ecom-dataset-builder/pkg/models"
)

// Loader rebuilds the SQLite store from the five CSV files. Every run
// starts from an empty store: an existing database file is deleted first,
// and all insertions happen inside a single transaction.
type Loader struct {
	DB      *connector.SQLiteConnector
	DataDir string
	Logger  *logrus.Logger
}

// NewLoader creates a loader reading CSV files from dataDir.
func NewLoader(db *connector.SQLiteConnector, dataDir string, logger *logrus.Logger) *Loader {
	return &Loader{
		DB:      db,
		DataDir: dataDir,
		Logger:  logger,
	}
}

// Load destroys any existing store, recreates the schema, and loads the
// five files in dependency order. On any failure the whole run is rolled
// back and the error returned.
func (l *Loader) Load() (models.LoadResult, error) {
	result := models.LoadResult{RowCounts: make(map[string]int)}

	if err := l.reset(); err != nil {
		return result, err
	}
	if l.DB.DB == nil {
		if err := l.DB.Connect(); err != nil {
			return result, err
		}
	}

	ordered, err := schema.InsertionOrder(schema.Tables())
	if err != nil {
		return result, err
	}

	err = l.DB.WithTransaction(func(tx *sql.Tx) error {
		for _, t := range ordered {
			count, err := l.loadTable(tx, t)
			if err != nil {
				return err
			}
			result.RowCounts[t.Name] = count
			l.Logger.Infof("Loaded %d rows into %s", count, t.Name)
		}
		return nil
	})
	if err != nil {
		l.Logger.Errorf("Load failed, all changes rolled back: %v", err)
		return models.LoadResult{RowCounts: make(map[string]int)}, err
	}

	// Report row counts from the store itself for verification.
	for _, t := range ordered {
		count, err := l.DB.RowCount(t.Name)
		if err != nil {
			return result, err
		}
		result.RowCounts[t.Name] = count
	}

	return result, nil
}

// reset deletes an existing database file so the load always starts from
// an empty store.
func (l *Loader) reset() error {
	path := l.DB.Path
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(path); err != nil {
		l.Logger.Errorf("Error removing existing database %s: %v", path, err)
		return err
	}
	l.Logger.Infof("Removed existing database: %s", path)
	return nil
}

// loadTable creates one table and inserts its file's rows inside the
// enclosing transaction.
func (l *Loader) loadTable(tx *sql.Tx, t models.Table) (int, error) {
	if _, err := tx.Exec(schema.CreateTableSQL(t)); err != nil {
		return 0, fmt.Errorf("creating table %s: %w", t.Name, err)
	}

	rows, err := l.readTableFile(t)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(schema.InsertSQL(t))
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", t.Name, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			return 0, fmt.Errorf("inserting row %d into %s: %w", i+1, t.Name, err)
		}
	}

	return len(rows), nil
}

// readTableFile reads and type-coerces all data rows of a table's CSV
// file. The header must match the schema's column list exactly.
func (l *Loader) readTableFile(t models.Table) ([][]interface{}, error) {
	path := filepath.Join(l.DataDir, t.FileName)
	f, err := os.Open(path)
	if err != nil {
		l.Logger.Errorf("Error opening %s: %v", path, err)
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty, expected a header row", path)
	}

	if err := validateHeader(t, records[0]); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	rows := make([][]interface{}, 0, len(records)-1)
	for i, record := range records[1:] {
		row, err := coerceRow(t, record)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// validateHeader checks that a CSV header names exactly the schema's
// columns in order.
func validateHeader(t models.Table, header []string) error {
	expected := t.ColumnNames()
	if len(header) != len(expected) {
		return fmt.Errorf("header has %d fields, expected %d", len(header), len(expected))
	}
	for i, name := range expected {
		if header[i] != name {
			return fmt.Errorf("header field %d is %q, expected %q", i+1, header[i], name)
		}
	}
	return nil
}

// coerceRow converts one CSV record to typed values per the column
// declarations. A malformed numeric field fails the row rather than being
// coerced to zero.
func coerceRow(t models.Table, record []string) ([]interface{}, error) {
	if len(record) != len(t.Columns) {
		return nil, fmt.Errorf("record has %d fields, expected %d", len(record), len(t.Columns))
	}

	row := make([]interface{}, len(record))
	for i, col := range t.Columns {
		switch col.Type {
		case models.Integer:
			v, err := strconv.Atoi(record[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: invalid integer %q", col.Name, record[i])
			}
			row[i] = v
		case models.Decimal:
			v, err := strconv.ParseFloat(record[i], 64)
			if err != nil {
				return nil, fmt.Errorf("column %s: invalid decimal %q", col.Name, record[i])
			}
			row[i] = v
		default:
			row[i] = record[i]
		}
	}
	return row, nil
}
