package connector

import (
	"database/sql"
	"errors"
	"os"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func newMockConnector(t *testing.T) (*SQLiteConnector, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &SQLiteConnector{
		Path:   "test.db",
		DB:     db,
		Logger: testLogger(),
	}, mock
}

func TestNewSQLiteConnector(t *testing.T) {
	// Environment fallback
	os.Setenv("ECOM_DB_PATH", "env.db")
	dc := NewSQLiteConnector("", testLogger())
	if dc.Path != "env.db" {
		t.Errorf("Expected path to be 'env.db', got '%s'", dc.Path)
	}

	// Default path
	os.Unsetenv("ECOM_DB_PATH")
	dc = NewSQLiteConnector("", testLogger())
	if dc.Path != "ecom.db" {
		t.Errorf("Expected path to be 'ecom.db', got '%s'", dc.Path)
	}

	// Explicit path wins
	os.Setenv("ECOM_DB_PATH", "env.db")
	defer os.Unsetenv("ECOM_DB_PATH")
	dc = NewSQLiteConnector("explicit.db", testLogger())
	if dc.Path != "explicit.db" {
		t.Errorf("Expected path to be 'explicit.db', got '%s'", dc.Path)
	}
}

func TestExecuteQuery(t *testing.T) {
	dc, mock := newMockConnector(t)

	rows := sqlmock.NewRows([]string{"customer_id", "name"}).
		AddRow(int64(1), "Jane Smith").
		AddRow(int64(2), []byte("John Davis"))
	mock.ExpectQuery("SELECT customer_id, name FROM customers").WillReturnRows(rows)

	results, err := dc.ExecuteQuery("SELECT customer_id, name FROM customers")
	if err != nil {
		t.Fatalf("Expected query to succeed, got error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(results))
	}
	if results[0]["customer_id"] != int64(1) {
		t.Errorf("Expected customer_id 1, got %v", results[0]["customer_id"])
	}

	// []byte values are converted to strings
	if results[1]["name"] != "John Davis" {
		t.Errorf("Expected name 'John Davis', got %v", results[1]["name"])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestExecuteStatement(t *testing.T) {
	dc, mock := newMockConnector(t)

	mock.ExpectExec("DELETE FROM payments").WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := dc.ExecuteStatement("DELETE FROM payments")
	if err != nil {
		t.Fatalf("Expected statement to succeed, got error: %v", err)
	}
	if affected != 3 {
		t.Errorf("Expected 3 affected rows, got %d", affected)
	}
}

func TestWithTransactionCommit(t *testing.T) {
	dc, mock := newMockConnector(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO customers").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := dc.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO customers (customer_id) VALUES (?)", 1)
		return err
	})
	if err != nil {
		t.Fatalf("Expected transaction to commit, got error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestWithTransactionRollback(t *testing.T) {
	dc, mock := newMockConnector(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := errors.New("bad row")
	err := dc.WithTransaction(func(tx *sql.Tx) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Expected the callback error to surface, got: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unfulfilled expectations: %v", err)
	}
}

func TestRowCount(t *testing.T) {
	dc, mock := newMockConnector(t)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(int64(20))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) AS count FROM customers")).WillReturnRows(rows)

	count, err := dc.RowCount("customers")
	if err != nil {
		t.Fatalf("Expected count to succeed, got error: %v", err)
	}
	if count != 20 {
		t.Errorf("Expected 20 rows, got %d", count)
	}
}
