package reports

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Deterministic IDs so tie-break assertions are stable across runs.
func testID(n int) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012d", n))
}

func mustDec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type orderOpt func(*Order)

func inCurrency(code CurrencyCode) orderOpt {
	return func(o *Order) { o.Currency = code }
}

func paid() orderOpt {
	return func(o *Order) { o.PaymentStatus = PaymentStatusPaid }
}

func byCustomer(id uuid.UUID) orderOpt {
	return func(o *Order) { o.CustomerID = id }
}

func testOrder(n int, at time.Time, total string, opts ...orderOpt) Order {
	o := Order{
		ID:            testID(n),
		CustomerID:    testID(900),
		CreatedAt:     at,
		Currency:      CurrencyCZK,
		GrandTotal:    mustDec(total),
		Status:        OrderStatusDelivered,
		PaymentStatus: PaymentStatusUnpaid,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func testItem(orderN, productN int, qty int64, lineTotal string) OrderLineItem {
	return OrderLineItem{
		OrderID:   testID(orderN),
		ProductID: testID(productN),
		Quantity:  qty,
		LineTotal: mustDec(lineTotal),
	}
}

func testProduct(n int, name string, qty int64, importCost string) Product {
	return Product{
		ID:               testID(n),
		SKU:              fmt.Sprintf("SKU-%03d", n),
		Name:             name,
		CategoryID:       testID(800),
		CategoryName:     "General",
		Quantity:         qty,
		LowStockAlert:    AlertLevel{Value: 5},
		MinStockLevel:    5,
		MaxStockLevel:    100,
		ImportCostBase:   mustDec(importCost),
		SellingPriceBase: mustDec(importCost).Mul(decimal.NewFromInt(2)),
	}
}

func testCustomer(n int, name string, at time.Time) Customer {
	return Customer{ID: testID(n), Name: name, CreatedAt: at}
}

func testExpense(n int, at time.Time, amount string, code CurrencyCode) Expense {
	return Expense{
		ID:       testID(n),
		Date:     at,
		Currency: code,
		Amount:   mustDec(amount),
		Category: "operations",
	}
}

func wholeOf(year int, month time.Month) Windows {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	prev := start.AddDate(0, -1, 0)
	return Windows{
		Current:  PeriodWindow{Start: start, End: endOfMonth(start)},
		Previous: windowPtr(PeriodWindow{Start: prev, End: endOfMonth(prev)}),
	}
}
