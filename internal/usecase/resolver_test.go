package usecase

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

func resolvedParent(t *testing.T, raw domain.RawProduct, row int) *domain.Product {
	t.Helper()
	raw.Node = "Parent"
	p := ResolveProduct(raw, nil, row)
	return &p
}

func TestResolveProductInheritance(t *testing.T) {
	parent := resolvedParent(t, domain.RawProduct{
		Name:            "Berry Gummies",
		Category:        "Edibles",
		Brand:           "SweetCo",
		Description:     "Assorted berry gummies",
		Image:           "http://img/berry.png",
		Price:           "$12.00",
		SalePrice:       "9.50",
		CommissionRate:  "2.0",
		SaleCommission:  "1.25",
		UnitsPerCase:    "10",
		BackgroundColor: "#336699",
		Variation:       "Flavor",
		Variation2:      "Strength",
	}, 2)

	child := ResolveProduct(domain.RawProduct{
		SKU:       "BG-STRAW-500",
		Variation: "Strawberry",
	}, parent, 3)

	assert.Equal(t, "Berry Gummies", child.Name)
	assert.Equal(t, "Edibles", child.Category)
	assert.Equal(t, "SweetCo", child.Brand)
	assert.Equal(t, "Assorted berry gummies", child.Description)
	assert.Equal(t, "http://img/berry.png", child.Image)
	assert.True(t, decimal.RequireFromString("12").Equal(child.Price))
	assert.True(t, decimal.RequireFromString("9.5").Equal(child.SalePrice))
	assert.True(t, decimal.RequireFromString("2.0").Equal(child.CommissionRate))
	assert.True(t, decimal.RequireFromString("1.25").Equal(child.SaleCommission))
	assert.Equal(t, 10, child.UnitsPerCase)
	assert.Equal(t, parent.ID, child.GroupID)
	assert.Equal(t, "Berry Gummies", child.GroupName)
	assert.Equal(t, "#336699", child.GroupColor)

	// parent variation cells become the child's attribute labels
	assert.Equal(t, "Flavor", child.HeaderVariation)
	assert.Equal(t, "Strength", child.HeaderVariation2)
}

func TestResolveProductOwnValuesWin(t *testing.T) {
	parent := resolvedParent(t, domain.RawProduct{
		Name:  "Berry Gummies",
		Price: "12.00",
	}, 2)

	child := ResolveProduct(domain.RawProduct{
		SKU:   "BG-SOUR-500",
		Name:  "Sour Gummies",
		Price: "14.00",
	}, parent, 3)

	assert.Equal(t, "Sour Gummies", child.Name)
	assert.True(t, decimal.RequireFromString("14").Equal(child.Price))
	// group identity still comes from the parent
	assert.Equal(t, "Berry Gummies", child.GroupName)
}

func TestResolveProductSaleFlagAsymmetry(t *testing.T) {
	saleParent := resolvedParent(t, domain.RawProduct{Name: "G", OnSale: "TRUE"}, 2)
	plainParent := resolvedParent(t, domain.RawProduct{Name: "G"}, 2)

	testCases := []struct {
		name    string
		parent  *domain.Product
		childOn string
		want    bool
	}{
		{"child off parent on stays on", saleParent, "", true},
		{"child FALSE cannot revoke parent", saleParent, "FALSE", true},
		{"child on parent off enables", plainParent, "1", true},
		{"both off", plainParent, "no way", false},
		{"truthy yes", plainParent, "yes", true},
		{"truthy x", plainParent, "x", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := ResolveProduct(domain.RawProduct{SKU: "S", OnSale: tc.childOn}, tc.parent, 3)
			assert.Equal(t, tc.want, p.OnSale)
		})
	}
}

func TestResolveProductDefaults(t *testing.T) {
	p := ResolveProduct(domain.RawProduct{SKU: "LONE-1", Name: "Standalone"}, nil, 5)

	assert.Equal(t, "Uncategorized", p.Category)
	assert.Equal(t, 1, p.UnitsPerCase)
	assert.True(t, decimal.NewFromFloat(1.5).Equal(p.CommissionRate))
	assert.True(t, decimal.NewFromFloat(1.0).Equal(p.SaleCommission))
	assert.False(t, p.OnSale)
	assert.True(t, p.IsAvailable)
	assert.Equal(t, 5, p.GroupID)
	assert.Equal(t, "Flavor", p.HeaderVariation)
	assert.Equal(t, "Strength", p.HeaderVariation2)
	assert.Equal(t, "Format", p.HeaderVariation3)
	assert.Equal(t, "Units", p.HeaderVariation4)
}

func TestResolveProductAvailability(t *testing.T) {
	off := ResolveProduct(domain.RawProduct{SKU: "A", Name: "A", Inventory: "0"}, nil, 2)
	assert.False(t, off.IsAvailable)

	on := ResolveProduct(domain.RawProduct{SKU: "A", Name: "A", Inventory: "17"}, nil, 2)
	assert.True(t, on.IsAvailable)

	blank := ResolveProduct(domain.RawProduct{SKU: "A", Name: "A"}, nil, 2)
	assert.True(t, blank.IsAvailable)
}

func TestHasCase(t *testing.T) {
	testCases := []struct {
		name string
		raw  domain.RawProduct
		want bool
	}{
		{"keyword in variation", domain.RawProduct{Variation3: "Display Case"}, true},
		{"count glued to unit", domain.RawProduct{Variation3: "10pk"}, true},
		{"pk word boundary", domain.RawProduct{Variation3: "10 pk"}, true},
		{"leading count", domain.RawProduct{Variation3: "12 count tray"}, true},
		{"measurement not a case", domain.RawProduct{Variation2: "500mg"}, false},
		{"ml not a case", domain.RawProduct{Variation2: "30ml"}, false},
		{"units per case", domain.RawProduct{UnitsPerCase: "24"}, true},
		{"single unit", domain.RawProduct{UnitsPerCase: "1"}, false},
		{"empty", domain.RawProduct{}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hasCase(tc.raw))
		})
	}
}

func TestContrastText(t *testing.T) {
	testCases := []struct {
		hex  string
		want string
	}{
		{"#ffffff", "#000000"},
		{"#000000", "#ffffff"},
		{"#f5f5dc", "#000000"},
		{"#123456", "#ffffff"},
		{"#abc", "#000000"},
		{"", "#ffffff"},
		{"#zzzzzz", "#ffffff"},
		{"#12", "#ffffff"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, ContrastText(tc.hex), "hex %q", tc.hex)
	}
}

func TestParseMoney(t *testing.T) {
	def := decimal.NewFromFloat(1.5)
	assert.True(t, decimal.RequireFromString("12.5").Equal(parseMoney("$12.50", decimal.Zero)))
	assert.True(t, decimal.RequireFromString("3").Equal(parseMoney(" 3 usd ", decimal.Zero)))
	assert.True(t, def.Equal(parseMoney("", def)))
	assert.True(t, def.Equal(parseMoney("n/a", def)))
}

func TestLeadingInt(t *testing.T) {
	assert.Equal(t, 12, leadingInt("12 pack"))
	assert.Equal(t, 0, leadingInt("pack of 12"))
	assert.Equal(t, 3, leadingInt("  3"))
	assert.Equal(t, 0, leadingInt(""))
}
