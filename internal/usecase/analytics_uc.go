package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

// CustomerActivity summarizes one client's ledger footprint across
// trailing windows.
type CustomerActivity struct {
	ClientName   string          `json:"clientName"`
	WeekOrders   int             `json:"weekOrders"`
	WeekTotal    decimal.Decimal `json:"weekTotal"`
	MonthTotal   decimal.Decimal `json:"monthTotal"`
	QuarterTotal decimal.Decimal `json:"quarterTotal"`
	LastOrder    time.Time       `json:"lastOrder"`
}

// OperationsReport is the weekly dashboard payload.
type OperationsReport struct {
	GeneratedAt    time.Time          `json:"generatedAt"`
	WeekOrders     int                `json:"weekOrders"`
	WeekRevisions  int                `json:"weekRevisions"`
	WeekPieces     int                `json:"weekPieces"`
	WeekAmount     decimal.Decimal    `json:"weekAmount"`
	WeekCommission decimal.Decimal    `json:"weekCommission"`
	TopSKU         string             `json:"topSku"`
	TopSKUUnits    int                `json:"topSkuUnits"`
	Customers      []CustomerActivity `json:"customers"`
}

// AnalyticsUC derives reporting aggregates from the order ledger. It
// is read-only and tolerates malformed rows the same way the order
// history listing does.
type AnalyticsUC struct {
	Orders *OrderUC

	// now is swappable for tests.
	now func() time.Time
}

func NewAnalyticsUC(orders *OrderUC) *AnalyticsUC {
	return &AnalyticsUC{Orders: orders, now: time.Now}
}

// WeeklyReport aggregates the trailing 7 days, with customer activity
// over trailing 7/30/90 day windows. Revision rows count toward
// revenue exactly like originals; the ledger is append-only and each
// row is one priced commit.
func (uc *AnalyticsUC) WeeklyReport(ctx context.Context) (*OperationsReport, error) {
	records, err := uc.Orders.GetByClient(ctx, "")
	if err != nil {
		return nil, err
	}

	now := uc.now()
	weekStart := now.AddDate(0, 0, -7)
	monthStart := now.AddDate(0, 0, -30)
	quarterStart := now.AddDate(0, 0, -90)

	report := &OperationsReport{
		GeneratedAt:    now,
		WeekAmount:     decimal.Zero,
		WeekCommission: decimal.Zero,
	}

	skuUnits := map[string]int{}
	byCustomer := map[string]*CustomerActivity{}

	for _, rec := range records {
		if rec.Timestamp.IsZero() || rec.Timestamp.Before(quarterStart) {
			continue
		}

		key := strings.ToLower(rec.ClientName)
		act, ok := byCustomer[key]
		if !ok {
			act = &CustomerActivity{
				ClientName:   rec.ClientName,
				WeekTotal:    decimal.Zero,
				MonthTotal:   decimal.Zero,
				QuarterTotal: decimal.Zero,
			}
			byCustomer[key] = act
		}
		act.QuarterTotal = act.QuarterTotal.Add(rec.TotalAmount)
		if rec.Timestamp.After(act.LastOrder) {
			act.LastOrder = rec.Timestamp
		}
		if rec.Timestamp.After(monthStart) {
			act.MonthTotal = act.MonthTotal.Add(rec.TotalAmount)
		}
		if !rec.Timestamp.After(weekStart) {
			continue
		}

		act.WeekOrders++
		act.WeekTotal = act.WeekTotal.Add(rec.TotalAmount)

		if domain.RevisionNumber(rec.RevisionLabel) > 0 {
			report.WeekRevisions++
		} else {
			report.WeekOrders++
		}
		report.WeekPieces += rec.TotalPieces
		report.WeekAmount = report.WeekAmount.Add(rec.TotalAmount)
		report.WeekCommission = report.WeekCommission.Add(rec.TotalCommission)

		for _, item := range rec.Items {
			skuUnits[item.SKU] += item.Quantity
		}
	}

	for sku, units := range skuUnits {
		if units > report.TopSKUUnits || (units == report.TopSKUUnits && sku < report.TopSKU) {
			report.TopSKU = sku
			report.TopSKUUnits = units
		}
	}

	report.Customers = make([]CustomerActivity, 0, len(byCustomer))
	for _, act := range byCustomer {
		report.Customers = append(report.Customers, *act)
	}
	sort.Slice(report.Customers, func(a, b int) bool {
		if !report.Customers[a].QuarterTotal.Equal(report.Customers[b].QuarterTotal) {
			return report.Customers[a].QuarterTotal.GreaterThan(report.Customers[b].QuarterTotal)
		}
		return report.Customers[a].ClientName < report.Customers[b].ClientName
	})
	return report, nil
}
