package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Thresholds bundles every externally configured cutoff the engine consumes.
type Thresholds struct {
	CustomerValueTiers ValueTierCutoffs
	OrderValueTiers    ValueTierCutoffs
	Frequency          FrequencyCutoffs
	Health             HealthThresholds
}

// DefaultThresholds mirror the original dashboard configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CustomerValueTiers: ValueTierCutoffs{
			High: decimal.NewFromInt(50000),
			Low:  decimal.NewFromInt(10000),
		},
		OrderValueTiers: ValueTierCutoffs{
			High: decimal.NewFromInt(10000),
			Low:  decimal.NewFromInt(2000),
		},
		Frequency: FrequencyCutoffs{Frequent: 10, Regular: 5, Occasional: 2},
		Health:    DefaultHealthThresholds(),
	}
}

// FinancialReport is the aggregate consumed by the financial report screen.
type FinancialReport struct {
	Window             PeriodWindow    `json:"window"`
	Previous           *PeriodWindow   `json:"previous,omitempty"`
	Metrics            PeriodMetrics   `json:"metrics"`
	OrderValueSegments []SegmentBucket `json:"orderValueSegments"`
	TopCategories      []RankedEntity  `json:"topCategories"`
	MonthlyTrend       []TrendPoint    `json:"monthlyTrend,omitempty"`
}

// TrendPoint is one month of the revenue/cost/profit series.
type TrendPoint struct {
	Month      string          `json:"month"`
	Revenue    decimal.Decimal `json:"revenue"`
	Cost       decimal.Decimal `json:"cost"`
	Profit     decimal.Decimal `json:"profit"`
	Margin     float64         `json:"margin"`
	OrderCount int             `json:"orderCount"`
	UnitCount  int64           `json:"unitCount"`
}

// CustomerReport is the aggregate consumed by the customer report screen.
type CustomerReport struct {
	Window            PeriodWindow       `json:"window"`
	TopCustomers      []RankedEntity     `json:"topCustomers"`
	Standings         []CustomerStanding `json:"standings"`
	ValueSegments     []SegmentBucket    `json:"valueSegments"`
	FrequencySegments []SegmentBucket    `json:"frequencySegments"`
	NewCustomers      int                `json:"newCustomers"`
}

// InventoryTotals summarises stock health counts across the catalogue.
type InventoryTotals struct {
	TotalUnits      int64           `json:"totalUnits"`
	TotalStockValue decimal.Decimal `json:"totalStockValue"`
	LowStockCount   int             `json:"lowStockCount"`
	OutOfStockCount int             `json:"outOfStockCount"`
	DeadStockCount  int             `json:"deadStockCount"`
	OverstockCount  int             `json:"overstockCount"`
}

// InventoryReport is the aggregate consumed by the inventory report screen.
type InventoryReport struct {
	AsOf           time.Time               `json:"asOf"`
	Totals         InventoryTotals         `json:"totals"`
	Signals        []InventoryHealthSignal `json:"signals"`
	VelocityAlerts []InventoryHealthSignal `json:"velocityAlerts"`
}

// DashboardSummary is the condensed aggregate behind the landing dashboard.
type DashboardSummary struct {
	Window       PeriodWindow    `json:"window"`
	Metrics      PeriodMetrics   `json:"metrics"`
	TopProducts  []RankedEntity  `json:"topProducts"`
	TopCustomers []RankedEntity  `json:"topCustomers"`
	Inventory    InventoryTotals `json:"inventory"`
}

// Assembler composes engine outputs into the structures the presentation
// layer displays. It recomputes from scratch on every call; memoisation is
// the caller's business.
type Assembler struct {
	rates      RateTable
	thresholds Thresholds
	labels     *Labels
	aggregator *Aggregator
	ranker     *Ranker
	health     *HealthEvaluator
}

// NewAssembler wires the engine components behind one facade.
func NewAssembler(rates RateTable, thresholds Thresholds, labels *Labels) *Assembler {
	return &Assembler{
		rates:      rates,
		thresholds: thresholds,
		labels:     labels,
		aggregator: NewAggregator(rates),
		ranker:     NewRanker(rates),
		health:     NewHealthEvaluator(thresholds.Health),
	}
}

// Financial builds the financial report for the window pair. trendMonths > 0
// appends a per-calendar-month series ending at the window's end month.
func (a *Assembler) Financial(snap Snapshot, win Windows, trendMonths int) (FinancialReport, error) {
	metrics, err := a.aggregator.Aggregate(snap, win)
	if err != nil {
		return FinancialReport{}, err
	}

	segments, err := a.orderValueSegments(snap, win.Current)
	if err != nil {
		return FinancialReport{}, err
	}

	categories, err := a.ranker.TopCategoriesByRevenue(snap, win.Current, 10)
	if err != nil {
		return FinancialReport{}, err
	}

	report := FinancialReport{
		Window:             win.Current,
		Previous:           win.Previous,
		Metrics:            metrics,
		OrderValueSegments: segments,
		TopCategories:      categories,
	}
	if trendMonths > 0 {
		trend, err := a.monthlyTrend(snap, win.Current.End, trendMonths)
		if err != nil {
			return FinancialReport{}, err
		}
		report.MonthlyTrend = trend
	}
	return report, nil
}

// Customers builds the customer report for the window.
func (a *Assembler) Customers(snap Snapshot, win PeriodWindow, limit int) (CustomerReport, error) {
	standings, err := CustomerStandings(snap, a.rates, win)
	if err != nil {
		return CustomerReport{}, err
	}

	top, err := a.ranker.TopCustomersBySpend(snap, win, limit)
	if err != nil {
		return CustomerReport{}, err
	}

	valueSegments := Segment(standings,
		func(s CustomerStanding) string { return s.CustomerID },
		func(s CustomerStanding) decimal.Decimal { return s.TotalSpent },
		ValueTierClassifier(a.thresholds.CustomerValueTiers))
	frequencySegments := Segment(standings,
		func(s CustomerStanding) string { return s.CustomerID },
		func(s CustomerStanding) int { return s.OrderCount },
		FrequencyTierClassifier(a.thresholds.Frequency))
	a.labels.Apply(valueSegments)
	a.labels.Apply(frequencySegments)

	newCustomers := 0
	for _, c := range snap.Customers {
		if win.Contains(c.CreatedAt) {
			newCustomers++
		}
	}

	return CustomerReport{
		Window:            win,
		TopCustomers:      top,
		Standings:         standings,
		ValueSegments:     valueSegments,
		FrequencySegments: frequencySegments,
		NewCustomers:      newCustomers,
	}, nil
}

// Inventory builds the inventory health report as of the given instant.
func (a *Assembler) Inventory(snap Snapshot, asOf time.Time) (InventoryReport, error) {
	signals, err := a.health.EvaluateAll(snap, asOf)
	if err != nil {
		return InventoryReport{}, err
	}
	report := InventoryReport{
		AsOf:    asOf,
		Totals:  inventoryTotals(signals),
		Signals: signals,
	}
	report.VelocityAlerts = velocityAlerts(signals, 10)
	return report, nil
}

// Dashboard builds the condensed landing summary for the window pair.
func (a *Assembler) Dashboard(snap Snapshot, win Windows, limit int) (DashboardSummary, error) {
	metrics, err := a.aggregator.Aggregate(snap, win)
	if err != nil {
		return DashboardSummary{}, err
	}
	topProducts, err := a.ranker.TopProductsByUnits(snap, win.Current, limit)
	if err != nil {
		return DashboardSummary{}, err
	}
	topCustomers, err := a.ranker.TopCustomersBySpend(snap, win.Current, limit)
	if err != nil {
		return DashboardSummary{}, err
	}
	signals, err := a.health.EvaluateAll(snap, win.Current.End)
	if err != nil {
		return DashboardSummary{}, err
	}
	return DashboardSummary{
		Window:       win.Current,
		Metrics:      metrics,
		TopProducts:  topProducts,
		TopCustomers: topCustomers,
		Inventory:    inventoryTotals(signals),
	}, nil
}

func (a *Assembler) orderValueSegments(snap Snapshot, win PeriodWindow) ([]SegmentBucket, error) {
	type orderValue struct {
		id    string
		value decimal.Decimal
	}
	values := make([]orderValue, 0, len(snap.Orders))
	for _, order := range snap.Orders {
		if !win.Contains(order.CreatedAt) {
			continue
		}
		amount, err := a.rates.ToBase(order.GrandTotal, order.Currency)
		if err != nil {
			return nil, err
		}
		values = append(values, orderValue{id: order.ID.String(), value: amount})
	}
	segments := Segment(values,
		func(v orderValue) string { return v.id },
		func(v orderValue) decimal.Decimal { return v.value },
		ValueTierClassifier(a.thresholds.OrderValueTiers))
	a.labels.Apply(segments)
	return segments, nil
}

// monthlyTrend recomputes the window metrics per calendar month, oldest first.
func (a *Assembler) monthlyTrend(snap Snapshot, end time.Time, months int) ([]TrendPoint, error) {
	points := make([]TrendPoint, 0, months)
	cursor := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location()).AddDate(0, -(months - 1), 0)
	for i := 0; i < months; i++ {
		win := PeriodWindow{Start: cursor, End: endOfMonth(cursor)}
		totals, err := a.aggregator.sumWindow(snap, win)
		if err != nil {
			return nil, err
		}
		cost := totals.productCost.Add(totals.expenseCost)
		profit := totals.revenue.Sub(cost)
		points = append(points, TrendPoint{
			Month:      cursor.Format("2006-01"),
			Revenue:    totals.revenue,
			Cost:       cost,
			Profit:     profit,
			Margin:     marginPercent(profit, totals.revenue),
			OrderCount: totals.orderCount,
			UnitCount:  totals.unitCount,
		})
		cursor = cursor.AddDate(0, 1, 0)
	}
	return points, nil
}

func inventoryTotals(signals []InventoryHealthSignal) InventoryTotals {
	totals := InventoryTotals{TotalStockValue: decimal.Zero}
	for _, s := range signals {
		totals.TotalUnits += s.Quantity
		totals.TotalStockValue = totals.TotalStockValue.Add(s.StockValue)
		if s.LowStock {
			totals.LowStockCount++
		}
		if s.OutOfStock {
			totals.OutOfStockCount++
		}
		if s.DeadStock {
			totals.DeadStockCount++
		}
		if s.Overstock {
			totals.OverstockCount++
		}
	}
	return totals
}

// velocityAlerts keeps signals with a non-normal velocity grade, soonest to
// run out first.
func velocityAlerts(signals []InventoryHealthSignal, limit int) []InventoryHealthSignal {
	alerts := make([]InventoryHealthSignal, 0)
	for _, s := range signals {
		if s.Velocity != nil && s.Velocity.Alert != VelocityNormal {
			alerts = append(alerts, s)
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Velocity.DaysUntilEmpty != alerts[j].Velocity.DaysUntilEmpty {
			return alerts[i].Velocity.DaysUntilEmpty < alerts[j].Velocity.DaysUntilEmpty
		}
		return alerts[i].ProductID.String() < alerts[j].ProductID.String()
	})
	if len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts
}
