package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

func seedLedger(t *testing.T, orders *OrderUC, recs []domain.OrderRecord) {
	t.Helper()
	ctx := context.Background()
	for _, rec := range recs {
		require.NoError(t, orders.Grid.AppendRow(ctx, domain.SheetOrders, rec.Row()))
	}
}

func TestWeeklyReport(t *testing.T) {
	orders, _, _ := newOrderFixture(t)
	analytics := NewAnalyticsUC(orders)

	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	analytics.now = func() time.Time { return now }

	money := decimal.RequireFromString

	seedLedger(t, orders, []domain.OrderRecord{
		{
			RevisionLabel: domain.RevisionOriginal, InvoiceID: "ORD-AAAA0001",
			Timestamp: now.AddDate(0, 0, -2), TotalPieces: 6,
			TotalCommission: money("12.00"), TotalAmount: money("30.00"),
			ClientName: "Corner Store",
			Items:      []domain.LineItem{{SKU: "W-1", Quantity: 3, UnitPrice: money("10.00")}},
		},
		{
			RevisionLabel: "Rev:1", InvoiceID: "ORD-AAAA0001",
			Timestamp: now.AddDate(0, 0, -1), TotalPieces: 4,
			TotalCommission: money("8.00"), TotalAmount: money("20.00"),
			ClientName: "Corner Store",
			Items:      []domain.LineItem{{SKU: "W-1", Quantity: 2, UnitPrice: money("10.00")}},
		},
		{
			RevisionLabel: domain.RevisionOriginal, InvoiceID: "ORD-BBBB0002",
			Timestamp: now.AddDate(0, 0, -3), TotalPieces: 2,
			TotalCommission: money("3.00"), TotalAmount: money("12.00"),
			ClientName: "Main St Deli",
			Items:      []domain.LineItem{{SKU: "P-1", Quantity: 2, UnitPrice: money("6.00")}},
		},
		{
			// inside the month, outside the week
			RevisionLabel: domain.RevisionOriginal, InvoiceID: "ORD-CCCC0003",
			Timestamp: now.AddDate(0, 0, -20), TotalPieces: 10,
			TotalCommission: money("15.00"), TotalAmount: money("50.00"),
			ClientName: "Main St Deli",
			Items:      []domain.LineItem{{SKU: "P-1", Quantity: 10, UnitPrice: money("5.00")}},
		},
		{
			// outside the quarter entirely
			RevisionLabel: domain.RevisionOriginal, InvoiceID: "ORD-DDDD0004",
			Timestamp: now.AddDate(0, 0, -120), TotalPieces: 1,
			TotalCommission: money("1.00"), TotalAmount: money("5.00"),
			ClientName: "Corner Store",
		},
	})

	report, err := analytics.WeeklyReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.WeekOrders)
	assert.Equal(t, 1, report.WeekRevisions)
	assert.Equal(t, 12, report.WeekPieces)
	assert.Equal(t, "62.00", report.WeekAmount.StringFixed(2))
	assert.Equal(t, "23.00", report.WeekCommission.StringFixed(2))

	// 5 units of W-1 against 2 of P-1 inside the week
	assert.Equal(t, "W-1", report.TopSKU)
	assert.Equal(t, 5, report.TopSKUUnits)

	require.Len(t, report.Customers, 2)
	// sorted by quarter total, Main St Deli leads with 62.00
	deli := report.Customers[0]
	assert.Equal(t, "Main St Deli", deli.ClientName)
	assert.Equal(t, 1, deli.WeekOrders)
	assert.Equal(t, "12.00", deli.WeekTotal.StringFixed(2))
	assert.Equal(t, "62.00", deli.MonthTotal.StringFixed(2))
	assert.Equal(t, "62.00", deli.QuarterTotal.StringFixed(2))

	corner := report.Customers[1]
	assert.Equal(t, "Corner Store", corner.ClientName)
	assert.Equal(t, 2, corner.WeekOrders)
	assert.Equal(t, "50.00", corner.QuarterTotal.StringFixed(2))
}

func TestWeeklyReportEmptyLedger(t *testing.T) {
	orders, _, _ := newOrderFixture(t)
	analytics := NewAnalyticsUC(orders)

	report, err := analytics.WeeklyReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.WeekOrders)
	assert.Empty(t, report.Customers)
	assert.Equal(t, "", report.TopSKU)
}
