package generator

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/ecom-dataset-builder/internal/schema"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestGenerateDatasetCounts(t *testing.T) {
	dg := NewDataGenerator(42, t.TempDir(), 20, testLogger())
	dataset := dg.GenerateDataset()

	assert.Len(t, dataset.Customers, 20)
	assert.Len(t, dataset.Products, 20)
	assert.Len(t, dataset.Orders, 20)
	assert.Len(t, dataset.Payments, 20)

	// 1-3 items per order
	assert.GreaterOrEqual(t, len(dataset.OrderItems), 20)
	assert.LessOrEqual(t, len(dataset.OrderItems), 60)

	itemsPerOrder := make(map[int]int)
	for _, item := range dataset.OrderItems {
		itemsPerOrder[item.OrderID]++
	}
	require.Len(t, itemsPerOrder, 20)
	for orderID, n := range itemsPerOrder {
		assert.GreaterOrEqual(t, n, 1, "order %d", orderID)
		assert.LessOrEqual(t, n, 3, "order %d", orderID)
	}
}

func TestGenerateDatasetIDs(t *testing.T) {
	dg := NewDataGenerator(7, t.TempDir(), 20, testLogger())
	dataset := dg.GenerateDataset()

	// Dense 1..20 sequences for the fixed-cardinality entities.
	for i, c := range dataset.Customers {
		assert.Equal(t, i+1, c.CustomerID)
	}
	for i, p := range dataset.Products {
		assert.Equal(t, i+1, p.ProductID)
	}
	for i, o := range dataset.Orders {
		assert.Equal(t, i+1, o.OrderID)
	}
	for i, p := range dataset.Payments {
		assert.Equal(t, i+1, p.PaymentID)
	}

	// Item ids are assigned sequentially across the whole run.
	for i, item := range dataset.OrderItems {
		assert.Equal(t, i+1, item.OrderItemID)
	}
}

func TestGenerateDatasetValueRanges(t *testing.T) {
	dg := NewDataGenerator(99, t.TempDir(), 20, testLogger())
	dataset := dg.GenerateDataset()

	methods := make(map[string]bool)
	for _, m := range paymentMethods {
		methods[m] = true
	}

	for _, o := range dataset.Orders {
		assert.GreaterOrEqual(t, o.CustomerID, 1)
		assert.LessOrEqual(t, o.CustomerID, 20)

		date, err := time.Parse("2006-01-02", o.OrderDate)
		require.NoError(t, err)
		assert.False(t, date.Before(orderWindowStart), "date %s before window", o.OrderDate)
		assert.False(t, date.After(orderWindowEnd), "date %s after window", o.OrderDate)
	}

	for _, item := range dataset.OrderItems {
		assert.GreaterOrEqual(t, item.ProductID, 1)
		assert.LessOrEqual(t, item.ProductID, 20)
		assert.GreaterOrEqual(t, item.Quantity, 1)
		assert.LessOrEqual(t, item.Quantity, 5)
	}

	for _, p := range dataset.Payments {
		assert.GreaterOrEqual(t, p.OrderID, 1)
		assert.LessOrEqual(t, p.OrderID, 20)
		assert.GreaterOrEqual(t, p.Amount, 20.0)
		assert.LessOrEqual(t, p.Amount, 500.0)
		assert.True(t, methods[p.PaymentMethod], "unknown payment method %q", p.PaymentMethod)
	}
}

// Payment amounts are generated independently of the order's item totals.
// That decoupling is part of the dataset contract, so this test checks the
// amount range only and deliberately does not reconcile payments against
// item totals.
func TestPaymentAmountIsIndependentNoise(t *testing.T) {
	dg := NewDataGenerator(1, t.TempDir(), 20, testLogger())
	dataset := dg.GenerateDataset()

	for _, p := range dataset.Payments {
		cents := p.Amount * 100
		assert.InDelta(t, cents, float64(int64(cents+0.5)), 1e-6, "amount %v not rounded to cents", p.Amount)
	}
}

func TestWriteFilesHeaders(t *testing.T) {
	dir := t.TempDir()
	dg := NewDataGenerator(42, dir, 20, testLogger())
	require.NoError(t, dg.GenerateAll())

	for _, table := range schema.Tables() {
		f, err := os.Open(filepath.Join(dir, table.FileName))
		require.NoError(t, err)

		records, err := csv.NewReader(f).ReadAll()
		f.Close()
		require.NoError(t, err)
		require.NotEmpty(t, records, table.FileName)

		assert.Equal(t, table.ColumnNames(), records[0], "%s header", table.FileName)

		if table.Name == "order_items" {
			assert.GreaterOrEqual(t, len(records)-1, 20)
			assert.LessOrEqual(t, len(records)-1, 60)
		} else {
			assert.Equal(t, 20, len(records)-1, "%s row count", table.FileName)
		}
	}
}

func TestReproducibility(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()

	require.NoError(t, NewDataGenerator(42, dirA, 20, testLogger()).GenerateAll())
	require.NoError(t, NewDataGenerator(42, dirB, 20, testLogger()).GenerateAll())

	for _, table := range schema.Tables() {
		a, err := os.ReadFile(filepath.Join(dirA, table.FileName))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(dirB, table.FileName))
		require.NoError(t, err)
		assert.Equal(t, a, b, "%s differs between runs with the same seed", table.FileName)
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()

	require.NoError(t, NewDataGenerator(42, dirA, 20, testLogger()).GenerateAll())
	require.NoError(t, NewDataGenerator(43, dirB, 20, testLogger()).GenerateAll())

	a, err := os.ReadFile(filepath.Join(dirA, "customers.csv"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dirB, "customers.csv"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateAllOverwrites(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, NewDataGenerator(1, dir, 20, testLogger()).GenerateAll())
	first, err := os.ReadFile(filepath.Join(dir, "orders.csv"))
	require.NoError(t, err)

	require.NoError(t, NewDataGenerator(2, dir, 20, testLogger()).GenerateAll())
	second, err := os.ReadFile(filepath.Join(dir, "orders.csv"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "files should be rewritten, not appended")

	records, err := csv.NewReader(strings.NewReader(string(second))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, 21, len(records), "header plus 20 rows")
}

func TestGenerateAllBadDirectory(t *testing.T) {
	dg := NewDataGenerator(42, filepath.Join(t.TempDir(), "missing"), 20, testLogger())
	assert.Error(t, dg.GenerateAll())
}

func TestCustomRecordCount(t *testing.T) {
	dg := NewDataGenerator(42, t.TempDir(), 5, testLogger())
	dataset := dg.GenerateDataset()

	assert.Len(t, dataset.Customers, 5)
	assert.Len(t, dataset.Products, 5)
	assert.Len(t, dataset.Orders, 5)
	assert.Len(t, dataset.Payments, 5)
	assert.GreaterOrEqual(t, len(dataset.OrderItems), 5)
	assert.LessOrEqual(t, len(dataset.OrderItems), 15)
}
