package models

import "fmt"

// ColumnType classifies a column for type coercion during load.
type ColumnType int

const (
	Integer ColumnType = iota
	Decimal
	Text
)

// SQLType returns the SQLite type name for a column type.
func (ct ColumnType) SQLType() string {
	switch ct {
	case Integer:
		return "INTEGER"
	case Decimal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Column represents a table column with its type and key role.
type Column struct {
	Name       string
	Type       ColumnType
	PrimaryKey bool
}

// ForeignKey represents a foreign key relationship
type ForeignKey struct {
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}

// Table is a declarative description of one entity: its table name, the
// CSV file it is exchanged through, its ordered columns, and its foreign
// keys. DDL and INSERT statements are derived from it.
type Table struct {
	Name        string
	FileName    string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// ColumnNames returns the ordered column names, which are also the
// required CSV header fields.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Customer is a buyer referenced by orders.
type Customer struct {
	CustomerID int
	Name       string
	Email      string
	City       string
}

// Product is a catalog entry referenced by order items.
type Product struct {
	ProductID   int
	ProductName string
	Category    string
	Price       float64
}

// Order references a customer and carries a calendar date.
type Order struct {
	OrderID    int
	CustomerID int
	OrderDate  string
}

// OrderItem references an order and a product.
type OrderItem struct {
	OrderItemID int
	OrderID     int
	ProductID   int
	Quantity    int
}

// Payment references an order. Amount is generated independently of the
// order's item totals.
type Payment struct {
	PaymentID     int
	OrderID       int
	Amount        float64
	PaymentMethod string
}

// Dataset holds one generated run of all five record sets.
type Dataset struct {
	Customers  []Customer
	Products   []Product
	Orders     []Order
	OrderItems []OrderItem
	Payments   []Payment
}

// LoadResult represents the outcome of one load run.
type LoadResult struct {
	RowCounts map[string]int
}

// TotalRows returns the number of rows inserted across all tables.
func (lr LoadResult) TotalRows() int {
	total := 0
	for _, n := range lr.RowCounts {
		total += n
	}
	return total
}

// VerificationResult represents the result of comparing store row counts
// against the source CSV files.
type VerificationResult struct {
	Success          bool
	MissingTables    []string
	MismatchedTables map[string][2]int // table -> [expected, actual]
}

// ReportRow is one line of the order/payment join report.
type ReportRow struct {
	CustomerName  string
	ProductName   string
	Category      string
	Quantity      int
	Price         float64
	TotalAmount   float64
	PaymentMethod string
	OrderDate     string
}

func (r ReportRow) String() string {
	return fmt.Sprintf("%s: %s x%d on %s", r.CustomerName, r.ProductName, r.Quantity, r.OrderDate)
}
