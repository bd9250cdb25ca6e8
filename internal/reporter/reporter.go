package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/ecom-dataset-builder/internal/connector"
	"github.com/vitebski/ecom-dataset-builder/pkg/models"
)

// reportQuery is the fixed 5-way inner join. One output row per matching
// (order item, payment) pair; orders without a payment drop out.
const reportQuery = `
SELECT
    c.name AS customer_name,
    p.product_name,
    p.category,
    oi.quantity,
    p.price,
    (p.price * oi.quantity) AS total_amount,
    pay.payment_method,
    o.order_date
FROM
    order_items oi
INNER JOIN orders o ON oi.order_id = o.order_id
INNER JOIN customers c ON o.customer_id = c.customer_id
INNER JOIN products p ON oi.product_id = p.product_id
INNER JOIN payments pay ON o.order_id = pay.order_id
ORDER BY o.order_date`

// Reporter runs the read-only join report against the store.
type Reporter struct {
	DB     *connector.SQLiteConnector
	Logger *logrus.Logger
}

// NewReporter creates a reporter over an existing store.
func NewReporter(db *connector.SQLiteConnector, logger *logrus.Logger) *Reporter {
	return &Reporter{
		DB:     db,
		Logger: logger,
	}
}

// QueryRows executes the join and returns the result rows ordered by
// order date.
func (r *Reporter) QueryRows() ([]models.ReportRow, error) {
	if r.DB.DB == nil {
		if err := r.DB.Connect(); err != nil {
			return nil, err
		}
	}

	rows, err := r.DB.DB.Query(reportQuery)
	if err != nil {
		r.Logger.Errorf("Error executing report query: %v", err)
		return nil, err
	}
	defer rows.Close()

	var results []models.ReportRow
	for rows.Next() {
		var row models.ReportRow
		if err := rows.Scan(
			&row.CustomerName,
			&row.ProductName,
			&row.Category,
			&row.Quantity,
			&row.Price,
			&row.TotalAmount,
			&row.PaymentMethod,
			&row.OrderDate,
		); err != nil {
			r.Logger.Errorf("Error scanning report row: %v", err)
			return nil, err
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		r.Logger.Errorf("Error iterating report rows: %v", err)
		return nil, err
	}

	return results, nil
}

// Render writes the report as a fixed-width table with a trailing record
// count.
func Render(w io.Writer, rows []models.ReportRow) {
	line := strings.Repeat("=", 120)

	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "%-20s %-25s %-20s %-5s %-10s %-12s %-18s %-12s\n",
		"Customer Name", "Product Name", "Category", "Qty",
		"Price", "Total Amount", "Payment Method", "Order Date")
	fmt.Fprintln(w, line)

	for _, row := range rows {
		fmt.Fprintf(w, "%-20s %-25s %-20s %-5d $%-9.2f $%-11.2f %-18s %-12s\n",
			row.CustomerName, row.ProductName, row.Category, row.Quantity,
			row.Price, row.TotalAmount, row.PaymentMethod, row.OrderDate)
	}

	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "\nTotal records: %d\n", len(rows))
}

// Run executes the report and renders it to w. Query failures are logged
// and returned; the store is never mutated.
func (r *Reporter) Run(w io.Writer) error {
	rows, err := r.QueryRows()
	if err != nil {
		return err
	}
	Render(w, rows)
	return nil
}
