package schema

import (
	"fmt"
	"strings"

	"github.com/vitebski/ecom-dataset-builder/pkg/models"
	"github.com/yourbasic/graph"
)

// Tables returns the declarative schema for the five entities. The order
// here is not significant; InsertionOrder derives the load order from the
// foreign key edges.
func Tables() []models.Table {
	return []models.Table{
		{
			Name:     "customers",
			FileName: "customers.csv",
			Columns: []models.Column{
				{Name: "customer_id", Type: models.Integer, PrimaryKey: true},
				{Name: "name", Type: models.Text},
				{Name: "email", Type: models.Text},
				{Name: "city", Type: models.Text},
			},
		},
		{
			Name:     "products",
			FileName: "products.csv",
			Columns: []models.Column{
				{Name: "product_id", Type: models.Integer, PrimaryKey: true},
				{Name: "product_name", Type: models.Text},
				{Name: "category", Type: models.Text},
				{Name: "price", Type: models.Decimal},
			},
		},
		{
			Name:     "orders",
			FileName: "orders.csv",
			Columns: []models.Column{
				{Name: "order_id", Type: models.Integer, PrimaryKey: true},
				{Name: "customer_id", Type: models.Integer},
				{Name: "order_date", Type: models.Text},
			},
			ForeignKeys: []models.ForeignKey{
				{Column: "customer_id", ReferencedTable: "customers", ReferencedColumn: "customer_id"},
			},
		},
		{
			Name:     "order_items",
			FileName: "order_items.csv",
			Columns: []models.Column{
				{Name: "order_item_id", Type: models.Integer, PrimaryKey: true},
				{Name: "order_id", Type: models.Integer},
				{Name: "product_id", Type: models.Integer},
				{Name: "quantity", Type: models.Integer},
			},
			ForeignKeys: []models.ForeignKey{
				{Column: "order_id", ReferencedTable: "orders", ReferencedColumn: "order_id"},
				{Column: "product_id", ReferencedTable: "products", ReferencedColumn: "product_id"},
			},
		},
		{
			Name:     "payments",
			FileName: "payments.csv",
			Columns: []models.Column{
				{Name: "payment_id", Type: models.Integer, PrimaryKey: true},
				{Name: "order_id", Type: models.Integer},
				{Name: "amount", Type: models.Decimal},
				{Name: "payment_method", Type: models.Text},
			},
			ForeignKeys: []models.ForeignKey{
				{Column: "order_id", ReferencedTable: "orders", ReferencedColumn: "order_id"},
			},
		},
	}
}

// TableByName looks up a table in the schema by its table name.
func TableByName(name string) (models.Table, error) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, nil
		}
	}
	return models.Table{}, fmt.Errorf("unknown table: %s", name)
}

// CreateTableSQL derives the CREATE TABLE statement for a table, declaring
// the primary key and foreign key constraints.
func CreateTableSQL(t models.Table) string {
	var defs []string
	for _, col := range t.Columns {
		def := fmt.Sprintf("%s %s", col.Name, col.Type.SQLType())
		if col.PrimaryKey {
			def += " PRIMARY KEY"
		} else {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	for _, fk := range t.ForeignKeys {
		defs = append(defs, fmt.Sprintf(
			"FOREIGN KEY (%s) REFERENCES %s(%s)",
			fk.Column, fk.ReferencedTable, fk.ReferencedColumn,
		))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(defs, ", "))
}

// InsertSQL derives the parameterized INSERT statement for a table.
func InsertSQL(t models.Table) string {
	columns := t.ColumnNames()
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = "?"
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		t.Name,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
}

// InsertionOrder sorts tables so that every table appears after the tables
// it references. The foreign keys form a dependency graph; a topological
// sort of that graph is a valid creation and load order.
func InsertionOrder(tables []models.Table) ([]models.Table, error) {
	indexByName := make(map[string]int, len(tables))
	for i, t := range tables {
		indexByName[t.Name] = i
	}

	// Edge referenced -> referencing, so parents sort first.
	g := graph.New(len(tables))
	for i, t := range tables {
		for _, fk := range t.ForeignKeys {
			ref, ok := indexByName[fk.ReferencedTable]
			if !ok {
				return nil, fmt.Errorf("table %s references unknown table %s", t.Name, fk.ReferencedTable)
			}
			g.Add(ref, i)
		}
	}

	order, ok := graph.TopSort(g)
	if !ok {
		return nil, fmt.Errorf("circular foreign key dependency detected")
	}

	ordered := make([]models.Table, len(order))
	for i, idx := range order {
		ordered[i] = tables[idx]
	}
	return ordered, nil
}
