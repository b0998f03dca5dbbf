package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func testAssembler() *Assembler {
	return NewAssembler(testRates(), DefaultThresholds(), NewLabels(language.English, DefaultCatalog()))
}

func assemblerSnapshot() Snapshot {
	march := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.UTC)
	february := time.Date(2025, time.February, 10, 9, 0, 0, 0, time.UTC)
	sold := march

	widget := testProduct(1, "Widget", 10, "100")
	widget.LastSoldAt = &sold
	gadget := testProduct(2, "Gadget", 0, "50")

	return Snapshot{
		Orders: []Order{
			testOrder(11, march, "12000", byCustomer(testID(201)), paid()),
			testOrder(12, march, "500", byCustomer(testID(202))),
			testOrder(13, february, "6000", byCustomer(testID(201)), paid()),
		},
		LineItems: []OrderLineItem{
			testItem(11, 1, 4, "12000"),
			testItem(12, 2, 1, "500"),
			testItem(13, 1, 2, "6000"),
		},
		Products: []Product{widget, gadget},
		Expenses: []Expense{testExpense(31, march, "300", CurrencyCZK)},
		Customers: []Customer{
			testCustomer(201, "Alice", february),
			testCustomer(202, "Bob", march),
		},
	}
}

func TestAssemblerFinancial(t *testing.T) {
	snap := assemblerSnapshot()
	report, err := testAssembler().Financial(snap, wholeOf(2025, time.March), 3)
	require.NoError(t, err)

	assert.True(t, report.Metrics.Revenue.Equal(mustDec("12500")))
	// Product cost 4*100 + 1*50 = 450, plus 300 expenses.
	assert.True(t, report.Metrics.Cost.Equal(mustDec("750")))
	assert.True(t, report.Metrics.CashCollected.Equal(mustDec("12000")))

	require.Len(t, report.OrderValueSegments, 3)
	high := report.OrderValueSegments[0]
	assert.Equal(t, BucketHigh, high.BucketName)
	assert.Equal(t, "High value", high.Label)
	assert.Equal(t, 1, high.Count, "only the 12000 order clears the 10000 cutoff")

	require.NotEmpty(t, report.TopCategories)
	assert.Equal(t, "General", report.TopCategories[0].DisplayName)

	require.Len(t, report.MonthlyTrend, 3)
	assert.Equal(t, "2025-01", report.MonthlyTrend[0].Month)
	assert.Equal(t, "2025-03", report.MonthlyTrend[2].Month)
	assert.True(t, report.MonthlyTrend[0].Revenue.IsZero())
	assert.True(t, report.MonthlyTrend[1].Revenue.Equal(mustDec("6000")))
	assert.True(t, report.MonthlyTrend[2].Revenue.Equal(mustDec("12500")))
}

func TestAssemblerCustomers(t *testing.T) {
	snap := assemblerSnapshot()
	win := wholeOf(2025, time.March).Current
	report, err := testAssembler().Customers(snap, win, 10)
	require.NoError(t, err)

	require.Len(t, report.Standings, 2)
	assert.Equal(t, "Alice", report.Standings[0].Name)
	assert.True(t, report.Standings[0].TotalSpent.Equal(mustDec("12000")),
		"February order stays outside the window")

	require.Len(t, report.TopCustomers, 2)
	assert.Equal(t, "Alice", report.TopCustomers[0].DisplayName)

	require.Len(t, report.ValueSegments, 3)
	assert.Equal(t, "Medium value", report.ValueSegments[1].Label)
	assert.Equal(t, 1, report.ValueSegments[1].Count)
	assert.Equal(t, 1, report.ValueSegments[2].Count)

	require.Len(t, report.FrequencySegments, 4)
	oneTime := report.FrequencySegments[3]
	assert.Equal(t, BucketOneTime, oneTime.BucketName)
	assert.Equal(t, 2, oneTime.Count)

	assert.Equal(t, 1, report.NewCustomers, "only Bob signed up inside the window")
}

func TestAssemblerInventory(t *testing.T) {
	snap := assemblerSnapshot()
	asOf := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	// A large recent sale pushes the widget's sell-through into critical.
	snap.Orders = append(snap.Orders, testOrder(14, asOf.AddDate(0, 0, -5), "0"))
	snap.LineItems = append(snap.LineItems, testItem(14, 1, 116, "0"))
	report, err := testAssembler().Inventory(snap, asOf)
	require.NoError(t, err)

	assert.Equal(t, asOf, report.AsOf)
	require.Len(t, report.Signals, 2)

	totals := report.Totals
	assert.Equal(t, int64(10), totals.TotalUnits)
	// Widget 10 * 200 selling price; Gadget holds none.
	assert.True(t, totals.TotalStockValue.Equal(mustDec("2000")))
	assert.Equal(t, 1, totals.OutOfStockCount)
	assert.Equal(t, 1, totals.DeadStockCount, "Gadget never sold")

	require.Len(t, report.VelocityAlerts, 1)
	alert := report.VelocityAlerts[0]
	assert.Equal(t, "Widget", alert.Name)
	require.NotNil(t, alert.Velocity)
	assert.Equal(t, VelocityCritical, alert.Velocity.Alert)
}

func TestAssemblerDashboard(t *testing.T) {
	snap := assemblerSnapshot()
	summary, err := testAssembler().Dashboard(snap, wholeOf(2025, time.March), 5)
	require.NoError(t, err)

	assert.True(t, summary.Metrics.Revenue.Equal(mustDec("12500")))
	require.NotEmpty(t, summary.TopProducts)
	assert.Equal(t, "Widget", summary.TopProducts[0].DisplayName)
	require.NotEmpty(t, summary.TopCustomers)
	assert.Equal(t, "Alice", summary.TopCustomers[0].DisplayName)
	assert.Equal(t, 1, summary.Inventory.OutOfStockCount)
}

func TestAssemblerPropagatesCurrencyErrors(t *testing.T) {
	snap := assemblerSnapshot()
	snap.Orders = append(snap.Orders, testOrder(99,
		time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC), "10",
		inCurrency("GBP"), byCustomer(testID(201))))

	_, err := testAssembler().Financial(snap, wholeOf(2025, time.March), 0)
	require.ErrorIs(t, err, ErrUnsupportedCurrency)

	_, err = testAssembler().Customers(snap, wholeOf(2025, time.March).Current, 10)
	require.ErrorIs(t, err, ErrUnsupportedCurrency)
}
