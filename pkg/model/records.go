// pkg/model/records.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used by the source files (DD/MM/YYYY).
const DateLayout = "02/01/2006"

// RawProduct is a product row exactly as read from produtos.csv.
// Fields stay as strings so the cleaner owns every coercion decision.
type RawProduct struct {
	ID       string
	Name     string
	Price    string
	Category string
}

// RawEmployee is an employee row exactly as read from empregados.csv.
type RawEmployee struct {
	ID   string
	Name string
	Age  string
	Role string
}

// RawSale is a sale row exactly as read from vendas.csv.
type RawSale struct {
	ID         string
	ProductID  string
	EmployeeID string
	Quantity   string
	UnitPrice  string
	TotalPrice string
	Date       string
}

// Product is a validated product row. Price is always positive and IDs are
// unique within a cleaned table.
type Product struct {
	ID       int
	Name     string
	Price    decimal.Decimal
	Category string
}

// Employee is a validated employee row. Age always lies in the valid working
// range after cleaning.
type Employee struct {
	ID   int
	Name string
	Age  int
	Role string
}

// Sale is a validated sale row. ProductID and EmployeeID always reference
// surviving rows of the cleaned product and employee tables, and TotalPrice
// equals Quantity * UnitPrice exactly.
type Sale struct {
	ID          int
	ProductID   int
	EmployeeID  int
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	Date        time.Time
	DateImputed bool
}
