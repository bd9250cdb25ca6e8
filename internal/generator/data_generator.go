package generator

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/ecom-dataset-builder/internal/schema"
	"github.com/vitebski/ecom-dataset-builder/pkg/models"
)

// Fixed lookup tables. Generated values are drawn uniformly from these, so
// a fixed seed reproduces the same files byte for byte.
var firstNames = []string{
	"John", "Jane", "Michael", "Sarah", "David", "Emily", "Robert", "Jessica",
	"William", "Amanda", "James", "Lisa", "Christopher", "Michelle", "Daniel",
	"Ashley", "Matthew", "Stephanie", "Anthony", "Nicole", "Mark", "Elizabeth",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis",
	"Rodriguez", "Martinez", "Hernandez", "Lopez", "Wilson", "Anderson", "Thomas",
	"Taylor", "Moore", "Jackson", "Martin", "Lee", "Thompson", "White",
}

var cities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Philadelphia",
	"San Antonio", "San Diego", "Dallas", "San Jose", "Austin", "Jacksonville",
	"San Francisco", "Columbus", "Fort Worth", "Charlotte", "Seattle", "Denver",
}

type catalogEntry struct {
	name     string
	category string
	price    float64
}

var productCatalog = []catalogEntry{
	{"Wireless Mouse", "Electronics", 29.99},
	{"USB-C Cable", "Electronics", 12.99},
	{"Laptop Stand", "Electronics", 39.99},
	{"Mechanical Keyboard", "Electronics", 89.99},
	{"Webcam HD", "Electronics", 59.99},
	{"Cotton T-Shirt", "Clothing", 19.99},
	{"Denim Jeans", "Clothing", 49.99},
	{"Running Shoes", "Clothing", 79.99},
	{"Winter Jacket", "Clothing", 99.99},
	{"Baseball Cap", "Clothing", 24.99},
	{"Coffee Maker", "Home & Kitchen", 45.99},
	{"Blender", "Home & Kitchen", 69.99},
	{"Dinner Set", "Home & Kitchen", 89.99},
	{"Bed Sheets", "Home & Kitchen", 34.99},
	{"Desk Lamp", "Home & Kitchen", 29.99},
	{"Novel - Mystery", "Books", 14.99},
	{"Cookbook", "Books", 24.99},
	{"Notebook Set", "Books", 12.99},
	{"Yoga Mat", "Sports", 29.99},
	{"Dumbbells Set", "Sports", 79.99},
	{"Basketball", "Sports", 24.99},
	{"Tennis Racket", "Sports", 89.99},
}

var paymentMethods = []string{
	"Credit Card", "Debit Card", "PayPal", "Bank Transfer", "Cash on Delivery",
}

// The one-year window order dates are drawn from.
var (
	orderWindowStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	orderWindowEnd   = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// DataGenerator synthesizes the five record sets and serializes them as
// CSV files. All randomness flows through the explicit Rand handle.
type DataGenerator struct {
	Rand    *rand.Rand
	OutDir  string
	Records int
	Logger  *logrus.Logger
}

// NewDataGenerator creates a generator seeded with the given value. records
// is the row count for the fixed-cardinality entities (customers, products,
// orders, payments).
func NewDataGenerator(seed int64, outDir string, records int, logger *logrus.Logger) *DataGenerator {
	return &DataGenerator{
		Rand:    rand.New(rand.NewSource(seed)),
		OutDir:  outDir,
		Records: records,
		Logger:  logger,
	}
}

// GenerateDataset synthesizes one full dataset in memory. The order of the
// generation calls is part of the reproducibility contract: all five sets
// consume the same random stream in a fixed sequence.
func (dg *DataGenerator) GenerateDataset() models.Dataset {
	return models.Dataset{
		Customers:  dg.generateCustomers(),
		Products:   dg.generateProducts(),
		Orders:     dg.generateOrders(),
		OrderItems: dg.generateOrderItems(),
		Payments:   dg.generatePayments(),
	}
}

func (dg *DataGenerator) generateCustomers() []models.Customer {
	customers := make([]models.Customer, 0, dg.Records)
	for i := 1; i <= dg.Records; i++ {
		first := firstNames[dg.Rand.Intn(len(firstNames))]
		last := lastNames[dg.Rand.Intn(len(lastNames))]
		customers = append(customers, models.Customer{
			CustomerID: i,
			Name:       first + " " + last,
			Email:      strings.ToLower(first) + "." + strings.ToLower(last) + "@email.com",
			City:       cities[dg.Rand.Intn(len(cities))],
		})
	}
	return customers
}

func (dg *DataGenerator) generateProducts() []models.Product {
	products := make([]models.Product, 0, dg.Records)
	for i := 1; i <= dg.Records; i++ {
		entry := productCatalog[dg.Rand.Intn(len(productCatalog))]
		products = append(products, models.Product{
			ProductID:   i,
			ProductName: entry.name,
			Category:    entry.category,
			Price:       entry.price,
		})
	}
	return products
}

func (dg *DataGenerator) generateOrders() []models.Order {
	windowDays := int(orderWindowEnd.Sub(orderWindowStart).Hours()/24) + 1

	orders := make([]models.Order, 0, dg.Records)
	for i := 1; i <= dg.Records; i++ {
		date := orderWindowStart.AddDate(0, 0, dg.Rand.Intn(windowDays))
		orders = append(orders, models.Order{
			OrderID:    i,
			CustomerID: dg.Rand.Intn(dg.Records) + 1,
			OrderDate:  date.Format("2006-01-02"),
		})
	}
	return orders
}

func (dg *DataGenerator) generateOrderItems() []models.OrderItem {
	var items []models.OrderItem
	itemID := 1

	// 1-3 items per order
	for orderID := 1; orderID <= dg.Records; orderID++ {
		numItems := dg.Rand.Intn(3) + 1
		for j := 0; j < numItems; j++ {
			items = append(items, models.OrderItem{
				OrderItemID: itemID,
				OrderID:     orderID,
				ProductID:   dg.Rand.Intn(dg.Records) + 1,
				Quantity:    dg.Rand.Intn(5) + 1,
			})
			itemID++
		}
	}
	return items
}

func (dg *DataGenerator) generatePayments() []models.Payment {
	payments := make([]models.Payment, 0, dg.Records)
	for i := 1; i <= dg.Records; i++ {
		// Amount is independent of the order's item totals. Kept that way
		// deliberately; the dataset carries this inconsistency by contract.
		amount := math.Round((20.0+dg.Rand.Float64()*480.0)*100) / 100
		payments = append(payments, models.Payment{
			PaymentID:     i,
			OrderID:       dg.Rand.Intn(dg.Records) + 1,
			Amount:        amount,
			PaymentMethod: paymentMethods[dg.Rand.Intn(len(paymentMethods))],
		})
	}
	return payments
}

// GenerateAll synthesizes the dataset and overwrites the five CSV files in
// OutDir. Any write failure aborts the run.
func (dg *DataGenerator) GenerateAll() error {
	dataset := dg.GenerateDataset()
	return dg.WriteFiles(dataset)
}

// WriteFiles serializes a dataset to the five CSV files. Headers come from
// the schema declaration, so the file contract cannot drift from the table
// contract.
func (dg *DataGenerator) WriteFiles(dataset models.Dataset) error {
	for _, t := range schema.Tables() {
		rows, err := datasetRows(dataset, t.Name)
		if err != nil {
			return err
		}
		if err := dg.writeFile(t, rows); err != nil {
			return err
		}
		dg.Logger.Infof("Generated %s with %d rows", t.FileName, len(rows))
	}
	return nil
}

func (dg *DataGenerator) writeFile(t models.Table, rows [][]string) error {
	path := filepath.Join(dg.OutDir, t.FileName)
	f, err := os.Create(path)
	if err != nil {
		dg.Logger.Errorf("Error creating %s: %v", path, err)
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.ColumnNames()); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// datasetRows renders one record set as CSV field rows.
func datasetRows(dataset models.Dataset, table string) ([][]string, error) {
	switch table {
	case "customers":
		rows := make([][]string, 0, len(dataset.Customers))
		for _, c := range dataset.Customers {
			rows = append(rows, []string{strconv.Itoa(c.CustomerID), c.Name, c.Email, c.City})
		}
		return rows, nil
	case "products":
		rows := make([][]string, 0, len(dataset.Products))
		for _, p := range dataset.Products {
			rows = append(rows, []string{strconv.Itoa(p.ProductID), p.ProductName, p.Category, formatDecimal(p.Price)})
		}
		return rows, nil
	case "orders":
		rows := make([][]string, 0, len(dataset.Orders))
		for _, o := range dataset.Orders {
			rows = append(rows, []string{strconv.Itoa(o.OrderID), strconv.Itoa(o.CustomerID), o.OrderDate})
		}
		return rows, nil
	case "order_items":
		rows := make([][]string, 0, len(dataset.OrderItems))
		for _, oi := range dataset.OrderItems {
			rows = append(rows, []string{
				strconv.Itoa(oi.OrderItemID), strconv.Itoa(oi.OrderID),
				strconv.Itoa(oi.ProductID), strconv.Itoa(oi.Quantity),
			})
		}
		return rows, nil
	case "payments":
		rows := make([][]string, 0, len(dataset.Payments))
		for _, p := range dataset.Payments {
			rows = append(rows, []string{
				strconv.Itoa(p.PaymentID), strconv.Itoa(p.OrderID),
				formatDecimal(p.Amount), p.PaymentMethod,
			})
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("no record set for table: %s", table)
	}
}

func formatDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
