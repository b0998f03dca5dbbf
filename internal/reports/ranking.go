package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RankedEntity is one row of a top-N listing, flat enough for direct tabular
// projection by export consumers.
type RankedEntity struct {
	EntityID      string          `json:"entityId"`
	DisplayName   string          `json:"displayName"`
	MetricValue   decimal.Decimal `json:"metricValue"`
	Count         int             `json:"count"`
	FirstActivity *time.Time      `json:"firstActivity,omitempty"`
	LastActivity  *time.Time      `json:"lastActivity,omitempty"`
}

// RankKey identifies the entity a record contributes to.
type RankKey struct {
	ID   string
	Name string
	At   time.Time
}

// Rank groups records by key, sums each group's metric, and returns at most
// limit entries sorted strictly descending by metric value. Ties break by
// entity id ascending so identical inputs always produce identical output.
// keyFn returning ok=false drops the record (e.g. an unresolved foreign key).
func Rank[T any](records []T, keyFn func(T) (RankKey, bool), metricFn func(T) decimal.Decimal, limit int) []RankedEntity {
	return rankOrdered(records, keyFn, metricFn, limit, false)
}

// RankAscending is Rank with the sort inverted; used for slow-mover listings
// where the least active entities surface first. The id tie-break is unchanged.
func RankAscending[T any](records []T, keyFn func(T) (RankKey, bool), metricFn func(T) decimal.Decimal, limit int) []RankedEntity {
	return rankOrdered(records, keyFn, metricFn, limit, true)
}

func rankOrdered[T any](records []T, keyFn func(T) (RankKey, bool), metricFn func(T) decimal.Decimal, limit int, ascending bool) []RankedEntity {
	if limit < 0 {
		limit = 0
	}
	groups := make(map[string]*RankedEntity)
	order := make([]string, 0)
	for _, record := range records {
		key, ok := keyFn(record)
		if !ok {
			continue
		}
		entry, seen := groups[key.ID]
		if !seen {
			entry = &RankedEntity{EntityID: key.ID, DisplayName: key.Name, MetricValue: decimal.Zero}
			groups[key.ID] = entry
			order = append(order, key.ID)
		}
		entry.MetricValue = entry.MetricValue.Add(metricFn(record))
		entry.Count++
		if !key.At.IsZero() {
			at := key.At
			if entry.FirstActivity == nil || at.Before(*entry.FirstActivity) {
				entry.FirstActivity = &at
			}
			if entry.LastActivity == nil || at.After(*entry.LastActivity) {
				entry.LastActivity = &at
			}
		}
	}

	ranked := make([]RankedEntity, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *groups[id])
	}
	sort.Slice(ranked, func(i, j int) bool {
		cmp := ranked[i].MetricValue.Cmp(ranked[j].MetricValue)
		if cmp == 0 {
			return ranked[i].EntityID < ranked[j].EntityID
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// entityEvent is a pre-normalised record contribution: foreign keys resolved
// and money already converted into the base currency.
type entityEvent struct {
	key   RankKey
	value decimal.Decimal
}

func rankEvents(events []entityEvent, limit int, ascending bool) []RankedEntity {
	return rankOrdered(events,
		func(e entityEvent) (RankKey, bool) { return e.key, true },
		func(e entityEvent) decimal.Decimal { return e.value },
		limit, ascending)
}

// Ranker produces the prebuilt top-N listings for the report screens.
type Ranker struct {
	rates RateTable
}

// NewRanker constructs a Ranker bound to a rate table.
func NewRanker(rates RateTable) *Ranker {
	return &Ranker{rates: rates}
}

// TopCustomersBySpend ranks customers by normalised total spend inside the
// window. Orders without a resolvable customer are dropped from the listing.
func (r *Ranker) TopCustomersBySpend(snap Snapshot, win PeriodWindow, limit int) ([]RankedEntity, error) {
	customers := snap.CustomerByID()
	events := make([]entityEvent, 0, len(snap.Orders))
	for _, order := range snap.Orders {
		if !win.Contains(order.CreatedAt) {
			continue
		}
		customer, ok := customers[order.CustomerID]
		if !ok {
			continue
		}
		amount, err := r.rates.ToBase(order.GrandTotal, order.Currency)
		if err != nil {
			return nil, err
		}
		events = append(events, entityEvent{
			key:   RankKey{ID: customer.ID.String(), Name: customer.Name, At: order.CreatedAt},
			value: amount,
		})
	}
	return rankEvents(events, limit, false), nil
}

// TopProductsByUnits ranks products by units sold inside the window.
func (r *Ranker) TopProductsByUnits(snap Snapshot, win PeriodWindow, limit int) ([]RankedEntity, error) {
	return r.productEvents(snap, win, limit, false, func(item OrderLineItem, _ Product) decimal.Decimal {
		return decimal.NewFromInt(item.Quantity)
	})
}

// TopProductsByRevenue ranks products by normalised line revenue.
func (r *Ranker) TopProductsByRevenue(snap Snapshot, win PeriodWindow, limit int) ([]RankedEntity, error) {
	return r.productRevenueEvents(snap, win, limit, false)
}

// SlowMovers lists the products with the fewest units sold, lowest first.
func (r *Ranker) SlowMovers(snap Snapshot, win PeriodWindow, limit int) ([]RankedEntity, error) {
	return r.productEvents(snap, win, limit, true, func(item OrderLineItem, _ Product) decimal.Decimal {
		return decimal.NewFromInt(item.Quantity)
	})
}

// TopCategoriesByRevenue ranks product categories by normalised line revenue.
func (r *Ranker) TopCategoriesByRevenue(snap Snapshot, win PeriodWindow, limit int) ([]RankedEntity, error) {
	orders := snap.OrderByID()
	products := snap.ProductByID()
	events := make([]entityEvent, 0, len(snap.LineItems))
	for _, item := range snap.LineItems {
		order, ok := orders[item.OrderID]
		if !ok || !win.Contains(order.CreatedAt) {
			continue
		}
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		amount, err := r.rates.ToBase(item.LineTotal, order.Currency)
		if err != nil {
			return nil, err
		}
		events = append(events, entityEvent{
			key:   RankKey{ID: product.CategoryID.String(), Name: product.CategoryName, At: order.CreatedAt},
			value: amount,
		})
	}
	return rankEvents(events, limit, false), nil
}

func (r *Ranker) productEvents(snap Snapshot, win PeriodWindow, limit int, ascending bool, metric func(OrderLineItem, Product) decimal.Decimal) ([]RankedEntity, error) {
	orders := snap.OrderByID()
	products := snap.ProductByID()
	events := make([]entityEvent, 0, len(snap.LineItems))
	for _, item := range snap.LineItems {
		order, ok := orders[item.OrderID]
		if !ok || !win.Contains(order.CreatedAt) {
			continue
		}
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		if item.Quantity < 0 {
			return nil, &InvalidQuantityError{Field: "lineItem.quantity", Value: item.Quantity}
		}
		events = append(events, entityEvent{
			key:   RankKey{ID: product.ID.String(), Name: product.Name, At: order.CreatedAt},
			value: metric(item, product),
		})
	}
	return rankEvents(events, limit, ascending), nil
}

func (r *Ranker) productRevenueEvents(snap Snapshot, win PeriodWindow, limit int, ascending bool) ([]RankedEntity, error) {
	orders := snap.OrderByID()
	products := snap.ProductByID()
	events := make([]entityEvent, 0, len(snap.LineItems))
	for _, item := range snap.LineItems {
		order, ok := orders[item.OrderID]
		if !ok || !win.Contains(order.CreatedAt) {
			continue
		}
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		amount, err := r.rates.ToBase(item.LineTotal, order.Currency)
		if err != nil {
			return nil, err
		}
		events = append(events, entityEvent{
			key:   RankKey{ID: product.ID.String(), Name: product.Name, At: order.CreatedAt},
			value: amount,
		})
	}
	return rankEvents(events, limit, ascending), nil
}
