package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLineItemToken(t *testing.T) {
	li := LineItem{SKU: "W-1", Quantity: 3, UnitPrice: decimal.NewFromFloat(10), WasOnSale: true}
	assert.Equal(t, "[3|@W-1|$10.00|T]", li.Token())

	li.WasOnSale = false
	li.UnitPrice = decimal.NewFromFloat(7.5)
	assert.Equal(t, "[3|@W-1|$7.50|F]", li.Token())
}

func TestParseLineItemToken(t *testing.T) {
	testCases := []struct {
		name  string
		token string
		want  LineItem
		ok    bool
	}{
		{
			name:  "full token",
			token: "[3|@W-1|$10.00|T]",
			want:  LineItem{SKU: "W-1", Quantity: 3, UnitPrice: decimal.RequireFromString("10.00"), WasOnSale: true},
			ok:    true,
		},
		{
			name:  "not on sale",
			token: "[2|@ABC|$5.25|F]",
			want:  LineItem{SKU: "ABC", Quantity: 2, UnitPrice: decimal.RequireFromString("5.25")},
			ok:    true,
		},
		{
			name:  "missing price and flag",
			token: "[4|@XYZ]",
			want:  LineItem{SKU: "XYZ", Quantity: 4, UnitPrice: decimal.Zero},
			ok:    true,
		},
		{
			name:  "garbage price",
			token: "[4|@XYZ|$abc|T]",
			want:  LineItem{SKU: "XYZ", Quantity: 4, UnitPrice: decimal.Zero, WasOnSale: true},
			ok:    true,
		},
		{name: "empty cell", token: "", ok: false},
		{name: "plain text", token: "carried over note", ok: false},
		{name: "no sku", token: "[3|@]", ok: false},
		{name: "no qty", token: "[x|@W-1]", ok: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseLineItemToken(tc.token)
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				return
			}
			assert.Equal(t, tc.want.SKU, got.SKU)
			assert.Equal(t, tc.want.Quantity, got.Quantity)
			assert.True(t, tc.want.UnitPrice.Equal(got.UnitPrice), "price %s != %s", tc.want.UnitPrice, got.UnitPrice)
			assert.Equal(t, tc.want.WasOnSale, got.WasOnSale)
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	orig := LineItem{SKU: "GUM-MINT-12", Quantity: 24, UnitPrice: decimal.RequireFromString("3.99"), WasOnSale: true}
	got, ok := ParseLineItemToken(orig.Token())
	assert.True(t, ok)
	assert.Equal(t, orig.SKU, got.SKU)
	assert.Equal(t, orig.Quantity, got.Quantity)
	assert.True(t, orig.UnitPrice.Equal(got.UnitPrice))
	assert.Equal(t, orig.WasOnSale, got.WasOnSale)
}

func TestValidSKU(t *testing.T) {
	assert.True(t, ValidSKU("W-1"))
	assert.True(t, ValidSKU("GUM-MINT-12"))
	assert.False(t, ValidSKU(""))
	assert.False(t, ValidSKU("A|B"))
	assert.False(t, ValidSKU("A]B"))
}

func TestBaseInvoiceID(t *testing.T) {
	assert.Equal(t, "ORD-1A2B3C4D", BaseInvoiceID("ORD-1A2B3C4D"))
	assert.Equal(t, "ORD-1A2B3C4D", BaseInvoiceID("Rev:2 ORD-1A2B3C4D"))
	assert.Equal(t, "ORD-1A2B3C4D", BaseInvoiceID("  Rev:12 ORD-1A2B3C4D "))
	assert.Equal(t, "", BaseInvoiceID(""))
}

func TestRevisionNumber(t *testing.T) {
	assert.Equal(t, 0, RevisionNumber(RevisionOriginal))
	assert.Equal(t, 0, RevisionNumber(""))
	assert.Equal(t, 1, RevisionNumber("Rev:1"))
	assert.Equal(t, 12, RevisionNumber("Rev:12"))
}

func TestOrderRecordRow(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	rec := OrderRecord{
		RevisionLabel:   RevisionOriginal,
		InvoiceID:       "ORD-AAAA1111",
		Timestamp:       ts,
		TotalPieces:     6,
		TotalCommission: decimal.RequireFromString("12.00"),
		TotalAmount:     decimal.RequireFromString("30.00"),
		ClientName:      "Corner Store",
		Comment:         "leave at dock",
		Address:         "12 Bay Rd",
		Items: []LineItem{
			{SKU: "W-1", Quantity: 3, UnitPrice: decimal.RequireFromString("10.00"), WasOnSale: true},
		},
	}

	row := rec.Row()
	assert.Len(t, row, ColItemsStart+1)
	assert.Equal(t, "Original", row[ColRevision])
	assert.Equal(t, "ORD-AAAA1111", row[ColInvoice])
	assert.Equal(t, ts.Format(time.RFC3339), row[ColTimestamp])
	assert.Equal(t, "6", row[ColTotalPieces])
	assert.Equal(t, "12.00", row[ColTotalCommission])
	assert.Equal(t, "30.00", row[ColTotalAmount])
	assert.Equal(t, "Corner Store", row[ColClient])
	assert.Equal(t, "leave at dock", row[ColComment])
	assert.Equal(t, "12 Bay Rd", row[ColAddress])
	assert.Equal(t, "[3|@W-1|$10.00|T]", row[ColItemsStart])
}
