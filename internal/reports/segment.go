package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical bucket names. Display labels are resolved by the injected
// message catalog at assembly time, never here.
const (
	BucketHigh       = "high"
	BucketMedium     = "medium"
	BucketLow        = "low"
	BucketFrequent   = "frequent"
	BucketRegular    = "regular"
	BucketOccasional = "occasional"
	BucketOneTime    = "one-time"
)

// SegmentRule pairs a predicate with the bucket it assigns. Rules are
// evaluated top to bottom; the first match wins.
type SegmentRule[T any] struct {
	Bucket string
	Match  func(T) bool
}

// Classifier assigns every value to exactly one named bucket. The fallback
// bucket guarantees exhaustiveness: a value matching no rule still lands
// somewhere, and first-match-wins guarantees mutual exclusion.
type Classifier[T any] struct {
	rules    []SegmentRule[T]
	fallback string
}

// NewClassifier builds a classifier from ordered rules and a fallback bucket.
func NewClassifier[T any](rules []SegmentRule[T], fallback string) Classifier[T] {
	return Classifier[T]{rules: rules, fallback: fallback}
}

// Classify returns the bucket name for v.
func (c Classifier[T]) Classify(v T) string {
	for _, rule := range c.rules {
		if rule.Match(v) {
			return rule.Bucket
		}
	}
	return c.fallback
}

// Buckets lists every bucket the classifier can produce, rule order first,
// fallback last.
func (c Classifier[T]) Buckets() []string {
	names := make([]string, 0, len(c.rules)+1)
	for _, rule := range c.rules {
		names = append(names, rule.Bucket)
	}
	return append(names, c.fallback)
}

// ValueTierCutoffs configures monetary tier boundaries in the base currency.
// High is strictly above High; medium is strictly above Low; the rest is low.
type ValueTierCutoffs struct {
	High decimal.Decimal
	Low  decimal.Decimal
}

// ValueTierClassifier buckets a monetary total into high/medium/low.
// Boundary values belong to the lower rule: exactly High is medium,
// High+0.01 is high.
func ValueTierClassifier(cutoffs ValueTierCutoffs) Classifier[decimal.Decimal] {
	return NewClassifier([]SegmentRule[decimal.Decimal]{
		{Bucket: BucketHigh, Match: func(v decimal.Decimal) bool { return v.GreaterThan(cutoffs.High) }},
		{Bucket: BucketMedium, Match: func(v decimal.Decimal) bool { return v.GreaterThan(cutoffs.Low) }},
	}, BucketLow)
}

// FrequencyCutoffs configures order-count tier boundaries.
type FrequencyCutoffs struct {
	Frequent   int
	Regular    int
	Occasional int
}

// FrequencyTierClassifier buckets an order count into frequent/regular/
// occasional/one-time using inclusive lower bounds.
func FrequencyTierClassifier(cutoffs FrequencyCutoffs) Classifier[int] {
	return NewClassifier([]SegmentRule[int]{
		{Bucket: BucketFrequent, Match: func(n int) bool { return n >= cutoffs.Frequent }},
		{Bucket: BucketRegular, Match: func(n int) bool { return n >= cutoffs.Regular }},
		{Bucket: BucketOccasional, Match: func(n int) bool { return n >= cutoffs.Occasional }},
	}, BucketOneTime)
}

// SegmentBucket reports one bucket with its members. Flat and serialisable.
type SegmentBucket struct {
	BucketName string   `json:"bucketName"`
	Label      string   `json:"label"`
	Members    []string `json:"members,omitempty"`
	Count      int      `json:"count"`
}

// Segment partitions entities into buckets using the classifier. The union
// of all buckets equals the input set and no entity appears twice; bucket
// order follows the classifier's rule order, member order the input order.
// Empty buckets are kept so consumers always see the full tier layout.
func Segment[T, V any](entities []T, idFn func(T) string, valueFn func(T) V, c Classifier[V]) []SegmentBucket {
	byBucket := make(map[string][]string, len(c.rules)+1)
	for _, entity := range entities {
		bucket := c.Classify(valueFn(entity))
		byBucket[bucket] = append(byBucket[bucket], idFn(entity))
	}
	buckets := make([]SegmentBucket, 0, len(c.rules)+1)
	for _, name := range c.Buckets() {
		members := byBucket[name]
		buckets = append(buckets, SegmentBucket{BucketName: name, Members: members, Count: len(members)})
	}
	return buckets
}

// CustomerStanding is the per-customer aggregate the classifiers and the
// customer report consume.
type CustomerStanding struct {
	CustomerID    string          `json:"customerId"`
	Name          string          `json:"name"`
	OrderCount    int             `json:"orderCount"`
	TotalSpent    decimal.Decimal `json:"totalSpent"`
	AvgOrderValue decimal.Decimal `json:"avgOrderValue"`
	FirstOrderAt  *time.Time      `json:"firstOrderAt,omitempty"`
	LastOrderAt   *time.Time      `json:"lastOrderAt,omitempty"`
}

// CustomerStandings aggregates orders inside the window into per-customer
// totals, normalised into the base currency. Orders without a resolvable
// customer are skipped. Output is ordered by total spent descending with the
// usual id tie-break so identical inputs always produce identical output.
func CustomerStandings(snap Snapshot, rates RateTable, win PeriodWindow) ([]CustomerStanding, error) {
	customers := snap.CustomerByID()
	byID := make(map[string]*CustomerStanding)
	order := make([]string, 0)
	for _, o := range snap.Orders {
		if !win.Contains(o.CreatedAt) {
			continue
		}
		customer, ok := customers[o.CustomerID]
		if !ok {
			continue
		}
		amount, err := rates.ToBase(o.GrandTotal, o.Currency)
		if err != nil {
			return nil, err
		}
		id := customer.ID.String()
		standing, seen := byID[id]
		if !seen {
			standing = &CustomerStanding{CustomerID: id, Name: customer.Name, TotalSpent: decimal.Zero}
			byID[id] = standing
			order = append(order, id)
		}
		standing.OrderCount++
		standing.TotalSpent = standing.TotalSpent.Add(amount)
		at := o.CreatedAt
		if standing.FirstOrderAt == nil || at.Before(*standing.FirstOrderAt) {
			standing.FirstOrderAt = &at
		}
		if standing.LastOrderAt == nil || at.After(*standing.LastOrderAt) {
			standing.LastOrderAt = &at
		}
	}

	standings := make([]CustomerStanding, 0, len(order))
	for _, id := range order {
		standing := byID[id]
		if standing.OrderCount > 0 {
			standing.AvgOrderValue = standing.TotalSpent.Div(decimal.NewFromInt(int64(standing.OrderCount))).Round(2)
		}
		standings = append(standings, *standing)
	}
	sort.Slice(standings, func(i, j int) bool {
		cmp := standings[i].TotalSpent.Cmp(standings[j].TotalSpent)
		if cmp == 0 {
			return standings[i].CustomerID < standings[j].CustomerID
		}
		return cmp > 0
	})
	return standings, nil
}
