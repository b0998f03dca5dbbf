package reports

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReorderUrgency classifies how critically a product sits below its minimum.
type ReorderUrgency string

const (
	UrgencyNone     ReorderUrgency = "none"
	UrgencyLow      ReorderUrgency = "low"
	UrgencyCritical ReorderUrgency = "critical"
)

// VelocityAlertLevel grades a days-until-empty estimate.
type VelocityAlertLevel string

const (
	VelocityNormal   VelocityAlertLevel = "normal"
	VelocityWarning  VelocityAlertLevel = "warning"
	VelocityCritical VelocityAlertLevel = "critical"
)

// VelocitySignal estimates sell-through; it is omitted entirely when the
// window holds no sales history rather than fabricated from too little data.
type VelocitySignal struct {
	DailyRate      float64            `json:"dailyRate"`
	DaysUntilEmpty int                `json:"daysUntilEmpty"`
	Alert          VelocityAlertLevel `json:"alert"`
}

// InventoryHealthSignal is the per-product health summary.
type InventoryHealthSignal struct {
	ProductID      uuid.UUID       `json:"productId"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	Quantity       int64           `json:"quantity"`
	LowStock       bool            `json:"lowStock"`
	OutOfStock     bool            `json:"outOfStock"`
	DeadStock      bool            `json:"deadStock"`
	Overstock      bool            `json:"overstock"`
	ReorderUrgency ReorderUrgency  `json:"reorderUrgency"`
	Velocity       *VelocitySignal `json:"velocity,omitempty"`
	StockValue     decimal.Decimal `json:"stockValue"`
}

// HealthThresholds carries the externally configured inventory heuristics.
type HealthThresholds struct {
	DeadStockDays       int
	VelocityWindowDays  int
	CriticalReorderRate float64
	CriticalDaysLeft    int
	WarningDaysLeft     int
	OverstockMultiplier int64
}

// DefaultHealthThresholds mirror the values the original dashboard shipped
// with; deployments override them through configuration.
func DefaultHealthThresholds() HealthThresholds {
	return HealthThresholds{
		DeadStockDays:       90,
		VelocityWindowDays:  30,
		CriticalReorderRate: 0.5,
		CriticalDaysLeft:    7,
		WarningDaysLeft:     14,
		OverstockMultiplier: 10,
	}
}

// HealthEvaluator derives inventory signals per product. Stateless: the
// snapshot passed in is the whole state.
type HealthEvaluator struct {
	thresholds HealthThresholds
}

// NewHealthEvaluator constructs an evaluator with the given thresholds.
func NewHealthEvaluator(thresholds HealthThresholds) *HealthEvaluator {
	if thresholds.DeadStockDays <= 0 {
		thresholds.DeadStockDays = 90
	}
	if thresholds.VelocityWindowDays <= 0 {
		thresholds.VelocityWindowDays = 30
	}
	return &HealthEvaluator{thresholds: thresholds}
}

// Evaluate derives the health signal for one product. soldInWindow is the
// unit count sold during the velocity window; a negative product quantity is
// structurally invalid and fails hard.
func (e *HealthEvaluator) Evaluate(p Product, today time.Time, soldInWindow int64) (InventoryHealthSignal, error) {
	if p.Quantity < 0 {
		return InventoryHealthSignal{}, &InvalidQuantityError{Field: "product.quantity", Value: p.Quantity}
	}
	if soldInWindow < 0 {
		return InventoryHealthSignal{}, &InvalidQuantityError{Field: "soldInWindow", Value: soldInWindow}
	}

	signal := InventoryHealthSignal{
		ProductID:      p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Quantity:       p.Quantity,
		OutOfStock:     p.Quantity == 0,
		ReorderUrgency: UrgencyNone,
		StockValue:     p.SellingPriceBase.Mul(decimal.NewFromInt(p.Quantity)),
	}

	alertUnits := p.LowStockAlert.Units(p.MaxStockLevel)
	signal.LowStock = p.Quantity > 0 && alertUnits > 0 && p.Quantity <= alertUnits
	signal.Overstock = alertUnits > 0 && p.Quantity > alertUnits*e.thresholds.OverstockMultiplier

	signal.DeadStock = p.LastSoldAt == nil || DaysBetween(*p.LastSoldAt, today) > e.thresholds.DeadStockDays

	if p.MinStockLevel > 0 {
		ratio := float64(p.Quantity) / float64(p.MinStockLevel)
		switch {
		case ratio < e.thresholds.CriticalReorderRate:
			signal.ReorderUrgency = UrgencyCritical
		case p.Quantity < p.MinStockLevel:
			signal.ReorderUrgency = UrgencyLow
		}
	}

	if soldInWindow > 0 {
		dailyRate := float64(soldInWindow) / float64(e.thresholds.VelocityWindowDays)
		daysLeft := int(math.Floor(float64(p.Quantity) / dailyRate))
		alert := VelocityNormal
		switch {
		case daysLeft <= e.thresholds.CriticalDaysLeft:
			alert = VelocityCritical
		case daysLeft <= e.thresholds.WarningDaysLeft:
			alert = VelocityWarning
		}
		signal.Velocity = &VelocitySignal{
			DailyRate:      math.Round(dailyRate*100) / 100,
			DaysUntilEmpty: daysLeft,
			Alert:          alert,
		}
	}

	return signal, nil
}

// EvaluateAll derives signals for every product in the snapshot. Units sold
// per product are counted over the velocity window ending at today.
func (e *HealthEvaluator) EvaluateAll(snap Snapshot, today time.Time) ([]InventoryHealthSignal, error) {
	sold := e.unitsSoldByProduct(snap, today)
	signals := make([]InventoryHealthSignal, 0, len(snap.Products))
	for _, p := range snap.Products {
		signal, err := e.Evaluate(p, today, sold[p.ID])
		if err != nil {
			return nil, err
		}
		signals = append(signals, signal)
	}
	sort.Slice(signals, func(i, j int) bool {
		return signals[i].ProductID.String() < signals[j].ProductID.String()
	})
	return signals, nil
}

func (e *HealthEvaluator) unitsSoldByProduct(snap Snapshot, today time.Time) map[uuid.UUID]int64 {
	win := PeriodWindow{Start: today.AddDate(0, 0, -e.thresholds.VelocityWindowDays), End: today}
	orders := snap.OrderByID()
	sold := make(map[uuid.UUID]int64)
	for _, item := range snap.LineItems {
		order, ok := orders[item.OrderID]
		if !ok || !win.Contains(order.CreatedAt) {
			continue
		}
		if item.Quantity > 0 {
			sold[item.ProductID] += item.Quantity
		}
	}
	return sold
}
