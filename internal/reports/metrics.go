package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PeriodMetrics is the flat, serialisable financial summary for one window
// pair. All monetary fields are normalised into the base currency.
type PeriodMetrics struct {
	Revenue       decimal.Decimal `json:"revenue"`
	ProductCost   decimal.Decimal `json:"productCost"`
	ExpenseCost   decimal.Decimal `json:"expenseCost"`
	Cost          decimal.Decimal `json:"cost"`
	Profit        decimal.Decimal `json:"profit"`
	Margin        float64         `json:"margin"`
	OrderCount    int             `json:"orderCount"`
	UnitCount     int64           `json:"unitCount"`
	AvgOrderValue decimal.Decimal `json:"avgOrderValue"`
	CashCollected decimal.Decimal `json:"cashCollected"`
	RevenueGrowth float64         `json:"revenueGrowth"`
	ProfitGrowth  float64         `json:"profitGrowth"`
}

// Aggregator computes period metrics over record snapshots. It is stateless
// apart from the read-only rate table.
type Aggregator struct {
	rates RateTable
}

// NewAggregator constructs an Aggregator bound to a rate table.
func NewAggregator(rates RateTable) *Aggregator {
	return &Aggregator{rates: rates}
}

// windowTotals holds the intermediate sums for a single window.
type windowTotals struct {
	revenue       decimal.Decimal
	productCost   decimal.Decimal
	expenseCost   decimal.Decimal
	cashCollected decimal.Decimal
	orderCount    int
	unitCount     int64
}

// Aggregate computes PeriodMetrics for the window pair. Growth percentages
// are zero when no previous window exists (custom ranges). An unsupported
// currency anywhere in the window is a hard error; an unresolvable line-item
// product contributes zero cost and is otherwise ignored.
func (a *Aggregator) Aggregate(snap Snapshot, win Windows) (PeriodMetrics, error) {
	current, err := a.sumWindow(snap, win.Current)
	if err != nil {
		return PeriodMetrics{}, err
	}

	metrics := PeriodMetrics{
		Revenue:       current.revenue,
		ProductCost:   current.productCost,
		ExpenseCost:   current.expenseCost,
		Cost:          current.productCost.Add(current.expenseCost),
		CashCollected: current.cashCollected,
		OrderCount:    current.orderCount,
		UnitCount:     current.unitCount,
	}
	metrics.Profit = metrics.Revenue.Sub(metrics.Cost)
	metrics.Margin = marginPercent(metrics.Profit, metrics.Revenue)
	if current.orderCount > 0 {
		metrics.AvgOrderValue = current.revenue.Div(decimal.NewFromInt(int64(current.orderCount))).Round(2)
	}

	if win.Previous == nil {
		return metrics, nil
	}

	previous, err := a.sumWindow(snap, *win.Previous)
	if err != nil {
		return PeriodMetrics{}, err
	}
	prevProfit := previous.revenue.Sub(previous.productCost).Sub(previous.expenseCost)
	metrics.RevenueGrowth = GrowthPercent(metrics.Revenue, previous.revenue)
	metrics.ProfitGrowth = GrowthPercent(metrics.Profit, prevProfit)
	return metrics, nil
}

func (a *Aggregator) sumWindow(snap Snapshot, win PeriodWindow) (windowTotals, error) {
	totals := windowTotals{
		revenue:       decimal.Zero,
		productCost:   decimal.Zero,
		expenseCost:   decimal.Zero,
		cashCollected: decimal.Zero,
	}

	inWindow := make(map[uuid.UUID]struct{})
	for _, order := range snap.Orders {
		if !win.Contains(order.CreatedAt) {
			continue
		}
		amount, err := a.rates.ToBase(order.GrandTotal, order.Currency)
		if err != nil {
			return windowTotals{}, err
		}
		totals.revenue = totals.revenue.Add(amount)
		if order.PaymentStatus == PaymentStatusPaid {
			totals.cashCollected = totals.cashCollected.Add(amount)
		}
		totals.orderCount++
		inWindow[order.ID] = struct{}{}
	}

	products := snap.ProductByID()
	for _, item := range snap.LineItems {
		if _, ok := inWindow[item.OrderID]; !ok {
			continue
		}
		if item.Quantity < 0 {
			return windowTotals{}, &InvalidQuantityError{Field: "lineItem.quantity", Value: item.Quantity}
		}
		totals.unitCount += item.Quantity
		product, ok := products[item.ProductID]
		if !ok {
			// Deleted product: the line still counts units but adds no cost.
			continue
		}
		qty := decimal.NewFromInt(item.Quantity)
		totals.productCost = totals.productCost.Add(product.ImportCostBase.Mul(qty))
	}

	for _, expense := range snap.Expenses {
		if !win.Contains(expense.Date) {
			continue
		}
		amount, err := a.rates.ToBase(expense.Amount, expense.Currency)
		if err != nil {
			return windowTotals{}, err
		}
		totals.expenseCost = totals.expenseCost.Add(amount)
	}

	return totals, nil
}

// marginPercent returns profit/revenue as a percentage, zero when revenue is
// not positive. Never NaN, never a panic.
func marginPercent(profit, revenue decimal.Decimal) float64 {
	if !revenue.IsPositive() {
		return 0
	}
	pct, _ := profit.Div(revenue).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// GrowthPercent applies the uniform growth convention: (current-previous)/
// |previous| x 100, with previous==0 collapsing to 0 (both zero) or 100
// (activity appeared from nothing). The same rule serves revenue and profit.
func GrowthPercent(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	pct, _ := current.Sub(previous).Div(previous.Abs()).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// DaysBetween counts whole days from a to b, flooring partial days.
func DaysBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}
