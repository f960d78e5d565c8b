package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

var (
	caseKeywordRe = regexp.MustCompile(`(?i)\b(case|carton|box|multi|pack|bulk|master|pk|ct|disp)\b`)
	numCleanRe    = regexp.MustCompile(`[^0-9.]`)
	leadingIntRe  = regexp.MustCompile(`^\s*(\d+)`)
)

// parseMoney strips currency noise from a cell and parses it, falling
// back to def when nothing numeric remains.
func parseMoney(s string, def decimal.Decimal) decimal.Decimal {
	cleaned := numCleanRe.ReplaceAllString(s, "")
	if cleaned == "" {
		return def
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return def
	}
	return d
}

// leadingInt parses a leading integer out of a cell ("12 pack" -> 12).
func leadingInt(s string) int {
	m := leadingIntRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// isTruthy accepts the sale-flag spellings seen in the wild: checkbox
// true, numeric 1, and the strings true/yes/x/on.
func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "x", "on":
		return true
	}
	return false
}

// isWhiteish reports background values that count as "no colour".
func isWhiteish(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "white", "transparent", "#fff", "#ffffff":
		return true
	}
	return false
}

// ContrastText picks black or white text for a hex background using the
// YIQ luminance Y = 0.299R + 0.587G + 0.114B; black when Y >= 128.
func ContrastText(hex string) string {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) < 6 {
		return "#ffffff"
	}
	r, err1 := strconv.ParseInt(h[0:2], 16, 32)
	g, err2 := strconv.ParseInt(h[2:4], 16, 32)
	b, err3 := strconv.ParseInt(h[4:6], 16, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return "#ffffff"
	}
	yiq := (r*299 + g*587 + b*114) / 1000
	if yiq >= 128 {
		return "#000000"
	}
	return "#ffffff"
}

// hasCase classifies a row as a bulk pack: a keyword in any variation
// cell, a bare count > 1 that is not a measurement (mg/ml/g), or a
// declared units-per-case above one.
func hasCase(raw domain.RawProduct) bool {
	vars := []string{raw.Variation, raw.Variation2, raw.Variation3, raw.Variation4}
	for _, v := range vars {
		v = strings.ToLower(v)
		if caseKeywordRe.MatchString(v) {
			return true
		}
		if n := leadingInt(v); n > 1 &&
			!strings.Contains(v, "mg") && !strings.Contains(v, "ml") && !strings.Contains(v, "g") {
			return true
		}
	}
	return leadingInt(raw.UnitsPerCase) > 1
}

// ResolveProduct turns a raw row plus the nearest preceding parent into
// a resolved Product. Pure and total: every branch degrades to a safe
// default, nothing is ever returned as an error.
//
// Inheritance is verbatim from the parent, never from a sibling. The
// sale flag is strict and asymmetric: a child can add to the parent's
// sale state but never revoke it.
func ResolveProduct(raw domain.RawProduct, parent *domain.Product, sheetRow int) domain.Product {
	isParent := strings.EqualFold(strings.TrimSpace(raw.Node), "parent")

	p := domain.Product{
		ID:       sheetRow,
		IsParent: isParent,
		SKU:      strings.TrimSpace(raw.SKU),
		Ref:      strings.TrimSpace(raw.Ref),

		// "0" disables the product; blank or anything else is available.
		IsAvailable: strings.TrimSpace(raw.Inventory) != "0",

		Variation:  strings.TrimSpace(raw.Variation),
		Variation2: strings.TrimSpace(raw.Variation2),
		Variation3: strings.TrimSpace(raw.Variation3),
		Variation4: strings.TrimSpace(raw.Variation4),

		HasCase: hasCase(raw),
	}

	p.GroupID = sheetRow
	if !isParent && parent != nil {
		p.GroupID = parent.ID
	}

	inherit := func(own string, parentVal func() string) string {
		own = strings.TrimSpace(own)
		if own != "" {
			return own
		}
		if parent != nil {
			return parentVal()
		}
		return ""
	}

	p.Name = inherit(raw.Name, func() string { return parent.Name })
	p.Category = inherit(raw.Category, func() string { return parent.Category })
	if p.Category == "" {
		p.Category = "Uncategorized"
	}
	p.Brand = inherit(raw.Brand, func() string { return parent.Brand })
	p.Description = inherit(raw.Description, func() string { return parent.Description })
	p.Image = inherit(raw.Image, func() string { return parent.Image })
	p.ZoneVariation = inherit(raw.ZoneVariation, func() string { return parent.ZoneVariation })
	p.PDFRangeName = inherit(raw.PDFRangeName, func() string { return parent.PDFRangeName })

	// Parent variation cells are attribute labels; children take the
	// labels from the parent so grids can render consistent headers.
	if parent != nil {
		p.HeaderVariation = parent.Variation
		p.HeaderVariation2 = parent.Variation2
		p.HeaderVariation3 = parent.Variation3
		p.HeaderVariation4 = parent.Variation4
	} else {
		p.HeaderVariation = defaultLabel(isParent, p.Variation, "Flavor")
		p.HeaderVariation2 = defaultLabel(isParent, p.Variation2, "Strength")
		p.HeaderVariation3 = defaultLabel(isParent, p.Variation3, "Format")
		p.HeaderVariation4 = defaultLabel(isParent, p.Variation4, "Units")
	}

	p.Price = parseMoney(raw.Price, decimal.Zero)
	if p.Price.IsZero() && parent != nil {
		p.Price = parent.Price
	}
	p.SalePrice = parseMoney(raw.SalePrice, decimal.Zero)
	if p.SalePrice.IsZero() && parent != nil {
		p.SalePrice = parent.SalePrice
	}

	// STRICT RULE: a child's flag can only enable the sale on top of the
	// parent's state, never disable it.
	if parent != nil {
		p.OnSale = isTruthy(raw.OnSale) || parent.OnSale
	} else {
		p.OnSale = isTruthy(raw.OnSale)
	}

	p.UnitsPerCase = leadingInt(raw.UnitsPerCase)
	if p.UnitsPerCase == 0 {
		if parent != nil && parent.UnitsPerCase > 0 {
			p.UnitsPerCase = parent.UnitsPerCase
		} else {
			p.UnitsPerCase = 1
		}
	}

	p.CommissionRate = parseMoney(raw.CommissionRate, decimal.Zero)
	if !p.CommissionRate.IsPositive() {
		if parent != nil && parent.CommissionRate.IsPositive() {
			p.CommissionRate = parent.CommissionRate
		} else {
			p.CommissionRate = decimal.NewFromFloat(1.5)
		}
	}
	p.SaleCommission = parseMoney(raw.SaleCommission, decimal.Zero)
	if !p.SaleCommission.IsPositive() {
		if parent != nil && parent.SaleCommission.IsPositive() {
			p.SaleCommission = parent.SaleCommission
		} else {
			p.SaleCommission = decimal.NewFromFloat(1.0)
		}
	}

	if !isWhiteish(raw.BackgroundColor) {
		p.BackgroundColor = strings.ToLower(strings.TrimSpace(raw.BackgroundColor))
	}
	p.TextColor = strings.TrimSpace(raw.TextColor)

	p.GroupName = resolveGroupName(raw, parent, isParent)
	p.GroupColor = resolveGroupColor(raw, parent, isParent)
	if parent != nil && parent.TextColor != "" {
		p.GroupTextColor = parent.TextColor
	} else {
		p.GroupTextColor = p.TextColor
	}

	return p
}

func defaultLabel(isParent bool, own, def string) string {
	if isParent && own != "" {
		return own
	}
	return def
}

// Group identity always prefers the parent's trimmed name.
func resolveGroupName(raw domain.RawProduct, parent *domain.Product, isParent bool) string {
	if parent != nil {
		if n := strings.TrimSpace(parent.Name); n != "" {
			return n
		}
	}
	rName := strings.TrimSpace(raw.Name)
	if isParent {
		if rName != "" {
			return rName
		}
		return "Unnamed Group"
	}
	if rName != "" {
		return rName
	}
	if sku := strings.TrimSpace(raw.SKU); sku != "" {
		return sku
	}
	return "Unnamed Product"
}

// Group colour prefers the parent's non-white background, then the
// row's own when the row is itself the parent.
func resolveGroupColor(raw domain.RawProduct, parent *domain.Product, isParent bool) string {
	if parent != nil && !isWhiteish(parent.BackgroundColor) {
		return parent.BackgroundColor
	}
	if isParent && !isWhiteish(raw.BackgroundColor) {
		return strings.ToLower(strings.TrimSpace(raw.BackgroundColor))
	}
	return ""
}
