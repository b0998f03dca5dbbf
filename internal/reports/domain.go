// Package reports implements the analytics aggregation engine behind the
// StockLens dashboard. Every component is a pure transformation over an
// immutable data snapshot: the engine never fetches, persists, or renders.
package reports

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CurrencyCode identifies a transaction currency.
type CurrencyCode string

// Currencies observed in transactional records. The rate table decides which
// of them are actually accepted at runtime.
const (
	CurrencyCZK CurrencyCode = "CZK"
	CurrencyEUR CurrencyCode = "EUR"
	CurrencyUSD CurrencyCode = "USD"
)

// OrderStatus mirrors the order lifecycle managed by the upstream order module.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus tracks settlement of an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// Order is an immutable order snapshot owned by the order subsystem.
type Order struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	CreatedAt     time.Time
	Currency      CurrencyCode
	GrandTotal    decimal.Decimal
	Status        OrderStatus
	PaymentStatus PaymentStatus
}

// OrderLineItem links an order to a product with quantity and line total.
type OrderLineItem struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
	LineTotal decimal.Decimal
}

// AlertLevel expresses a low-stock alert either in absolute units or as a
// percentage of the product's maximum stock level.
type AlertLevel struct {
	Value   int64
	Percent bool
}

// Units resolves the alert level to absolute units given the maximum stock.
func (a AlertLevel) Units(maxStock int64) int64 {
	if !a.Percent {
		return a.Value
	}
	if maxStock <= 0 {
		return 0
	}
	return maxStock * a.Value / 100
}

// Product is an immutable product snapshot owned by the inventory subsystem.
type Product struct {
	ID               uuid.UUID
	SKU              string
	Name             string
	CategoryID       uuid.UUID
	CategoryName     string
	Quantity         int64
	LowStockAlert    AlertLevel
	MinStockLevel    int64
	MaxStockLevel    int64
	ImportCostBase   decimal.Decimal
	SellingPriceBase decimal.Decimal
	LastSoldAt       *time.Time
}

// Expense is an immutable expense snapshot.
type Expense struct {
	ID       uuid.UUID
	Date     time.Time
	Currency CurrencyCode
	Amount   decimal.Decimal
	Category string
}

// Customer is an immutable customer snapshot.
type Customer struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Money pairs an amount with its currency. Amounts in different currencies
// must pass through RateTable.ToBase before being combined.
type Money struct {
	Amount   decimal.Decimal
	Currency CurrencyCode
}

// Snapshot groups the immutable record sets the engine aggregates over. The
// engine holds no state of its own; a snapshot is the whole world per call.
type Snapshot struct {
	Orders    []Order
	LineItems []OrderLineItem
	Products  []Product
	Expenses  []Expense
	Customers []Customer
}

// ProductByID builds a lookup index over the snapshot's products.
func (s Snapshot) ProductByID() map[uuid.UUID]Product {
	idx := make(map[uuid.UUID]Product, len(s.Products))
	for _, p := range s.Products {
		idx[p.ID] = p
	}
	return idx
}

// CustomerByID builds a lookup index over the snapshot's customers.
func (s Snapshot) CustomerByID() map[uuid.UUID]Customer {
	idx := make(map[uuid.UUID]Customer, len(s.Customers))
	for _, c := range s.Customers {
		idx[c.ID] = c
	}
	return idx
}

// OrderByID builds a lookup index over the snapshot's orders.
func (s Snapshot) OrderByID() map[uuid.UUID]Order {
	idx := make(map[uuid.UUID]Order, len(s.Orders))
	for _, o := range s.Orders {
		idx[o.ID] = o
	}
	return idx
}

// Sentinel errors for errors.Is checks across package boundaries.
var (
	// ErrUnsupportedCurrency indicates a currency code missing from the rate table.
	ErrUnsupportedCurrency = errors.New("reports: unsupported currency")
	// ErrInvalidQuantity indicates a negative value where a non-negative one is required.
	ErrInvalidQuantity = errors.New("reports: invalid quantity")
	// ErrInvalidWindow indicates a malformed or missing period window.
	ErrInvalidWindow = errors.New("reports: invalid period window")
)

// UnsupportedCurrencyError reports the offending currency code.
type UnsupportedCurrencyError struct {
	Code CurrencyCode
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("reports: unsupported currency %q", string(e.Code))
}

// Is makes errors.Is(err, ErrUnsupportedCurrency) succeed.
func (e *UnsupportedCurrencyError) Is(target error) bool {
	return target == ErrUnsupportedCurrency
}

// InvalidQuantityError reports a structurally invalid quantity.
type InvalidQuantityError struct {
	Field string
	Value int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("reports: invalid quantity %d for %s", e.Value, e.Field)
}

// Is makes errors.Is(err, ErrInvalidQuantity) succeed.
func (e *InvalidQuantityError) Is(target error) bool {
	return target == ErrInvalidQuantity
}
