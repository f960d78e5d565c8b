package render

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

func TestRenderWritesArtifact(t *testing.T) {
	r, err := NewHTMLRenderer(t.TempDir())
	require.NoError(t, err)

	url, err := r.Render(context.Background(), domain.Invoice{
		InvoiceID:     "ORD-AAAA1111",
		RevisionLabel: domain.RevisionOriginal,
		ClientName:    "Corner Store",
		Address:       "12 Bay Rd",
		Comment:       "leave at dock",
		Date:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Total:         decimal.RequireFromString("30.00"),
		Items: []domain.LineItem{
			{SKU: "W-1", Quantity: 3, UnitPrice: decimal.RequireFromString("10.00"), WasOnSale: true},
		},
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "file://"))

	body, err := os.ReadFile(strings.TrimPrefix(url, "file://"))
	require.NoError(t, err)
	html := string(body)

	assert.Contains(t, html, "ORD-AAAA1111")
	assert.Contains(t, html, "Corner Store")
	assert.Contains(t, html, "March 1st, 2026")
	assert.Contains(t, html, "$30.00")
	assert.Contains(t, html, "W-1")
	assert.Contains(t, html, "SALE")
	assert.NotContains(t, html, "Rev", "original orders carry no revision tag")
}

func TestRenderRevisionNaming(t *testing.T) {
	dir := t.TempDir()
	r, err := NewHTMLRenderer(dir)
	require.NoError(t, err)

	url, err := r.Render(context.Background(), domain.Invoice{
		InvoiceID:     "ORD-AAAA1111",
		RevisionLabel: "Rev:2",
		ClientName:    "Corner Store",
		Date:          time.Date(2026, 3, 22, 0, 0, 0, 0, time.UTC),
		Total:         decimal.Zero,
	})
	require.NoError(t, err)
	assert.Contains(t, url, "ORD-AAAA1111-Rev2.html")

	body, _ := os.ReadFile(strings.TrimPrefix(url, "file://"))
	assert.Contains(t, string(body), "Rev:2")
	assert.Contains(t, string(body), "March 22nd, 2026")
}

func TestOrdinalDate(t *testing.T) {
	testCases := []struct {
		day  int
		want string
	}{
		{1, "January 1st, 2026"},
		{2, "January 2nd, 2026"},
		{3, "January 3rd, 2026"},
		{4, "January 4th, 2026"},
		{11, "January 11th, 2026"},
		{12, "January 12th, 2026"},
		{13, "January 13th, 2026"},
		{21, "January 21st, 2026"},
		{22, "January 22nd, 2026"},
		{23, "January 23rd, 2026"},
		{31, "January 31st, 2026"},
	}
	for _, tc := range testCases {
		got := ordinalDate(time.Date(2026, 1, tc.day, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, tc.want, got)
	}
}
