package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

// CatalogUC builds the resolved product catalog from the PRODUCTS sheet
// and owns every catalog mutation. All mutations invalidate the cache
// before touching the grid.
type CatalogUC struct {
	Grid  domain.Grid
	Cache *CatalogCache
}

func NewCatalogUC(grid domain.Grid, ttlSeconds int) *CatalogUC {
	uc := &CatalogUC{Grid: grid}
	ttl := DefaultCatalogTTL
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	uc.Cache = NewCatalogCache(uc.Load, ttl)
	return uc
}

// Catalog returns the resolved catalog through the cache.
func (uc *CatalogUC) Catalog(ctx context.Context) ([]domain.Product, error) {
	return uc.Cache.Get(ctx)
}

// Load builds the catalog directly from the grid: one pass over the
// data rows, tracking the most recently seen parent as inheritance
// context for the rows below it.
func (uc *CatalogUC) Load(ctx context.Context) ([]domain.Product, error) {
	rows, err := uc.Grid.Rows(ctx, domain.SheetProducts)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(rows) < 2 {
		return []domain.Product{}, nil
	}

	hm := ResolveHeaderMap(rows[0])
	var lastParent *domain.Product
	out := make([]domain.Product, 0, len(rows)-1)

	for i, row := range rows[1:] {
		sheetRow := i + 2
		raw := extractRaw(hm, row, lastParent != nil)

		if strings.EqualFold(raw.Node, "parent") {
			p := ResolveProduct(raw, nil, sheetRow)
			lastParent = &p
			if p.Name != "" {
				out = append(out, p)
			}
			continue
		}

		// Inactive and archived rows never reach the catalog.
		status := strings.ToLower(raw.Status)
		if status == "inactive" || status == "archived" {
			continue
		}

		// Header echoes sometimes survive in the data region.
		if strings.EqualFold(raw.SKU, "sku") || strings.EqualFold(raw.Name, "product name") {
			continue
		}

		p := ResolveProduct(raw, lastParent, sheetRow)
		if p.SKU == "" || p.Name == "" {
			continue
		}
		out = append(out, p)
	}

	return out, nil
}

// extractRaw binds one positional row to named fields. The text colour
// is only resolved for parent/standalone rows; children inherit through
// resolution instead of paying a per-row computation.
func extractRaw(hm HeaderMap, row []string, hasParentContext bool) domain.RawProduct {
	raw := domain.RawProduct{
		Node:            hm.Cell(row, "node"),
		Ref:             hm.Cell(row, "ref"),
		SKU:             hm.Cell(row, "sku"),
		Category:        hm.Cell(row, "category"),
		Name:            hm.Cell(row, "name"),
		ParentName:      hm.Cell(row, "parentName"),
		Variation:       hm.Cell(row, "variation"),
		Variation2:      hm.Cell(row, "variation2"),
		Variation3:      hm.Cell(row, "variation3"),
		Variation4:      hm.Cell(row, "variation4"),
		Price:           hm.Cell(row, "price"),
		SalePrice:       hm.Cell(row, "salePrice"),
		OnSale:          hm.Cell(row, "onSale"),
		UnitsPerCase:    hm.Cell(row, "unitsPerCase"),
		CommissionRate:  hm.Cell(row, "commissionRate"),
		SaleCommission:  hm.Cell(row, "saleCommission"),
		Description:     hm.Cell(row, "description"),
		Image:           hm.Cell(row, "image"),
		BackgroundColor: hm.Cell(row, "backgroundColor"),
		Brand:           hm.Cell(row, "brand"),
		ZoneVariation:   hm.Cell(row, "zoneVariation"),
		PDFRangeName:    hm.Cell(row, "pdfRangeName"),
		Status:          hm.Cell(row, "status"),
		OrderQty:        hm.Cell(row, "orderQty"),
	}

	if idx := hm.Index("inventory"); idx >= 0 && idx < len(row) {
		raw.Inventory = strings.TrimSpace(row[idx])
	} else if len(row) > 0 {
		// Inventory defaults to column A when no header matched.
		raw.Inventory = strings.TrimSpace(row[0])
	}

	isParent := strings.EqualFold(raw.Node, "parent")
	if isParent || !hasParentContext {
		if tc := hm.Cell(row, "textColor"); tc != "" {
			raw.TextColor = tc
		} else if bg := raw.BackgroundColor; strings.HasPrefix(bg, "#") {
			raw.TextColor = ContrastText(bg)
		}
	}

	return raw
}

// NewProduct is one variant in a batch add. Var*Name fields carry the
// attribute labels written onto a freshly created parent row.
type NewProduct struct {
	Ref     string `json:"ref"`
	BaseSKU string `json:"baseSku"`
	SKU     string `json:"sku"`

	Brand       string `json:"brand"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`

	BackgroundColor string `json:"backgroundColor"`
	TextColor       string `json:"textColor"`

	Variation  string `json:"variation"`
	Variation2 string `json:"variation2"`
	Variation3 string `json:"variation3"`
	Variation4 string `json:"variation4"`

	Var1Name string `json:"var1Name"`
	Var2Name string `json:"var2Name"`
	Var3Name string `json:"var3Name"`
	Var4Name string `json:"var4Name"`

	Price     decimal.Decimal `json:"price"`
	SalePrice decimal.Decimal `json:"salePrice"`
	OnSale    bool            `json:"onSale"`

	UnitsPerCase   int             `json:"unitsPerCase"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
	SaleCommission decimal.Decimal `json:"saleCommission"`

	ZoneVariation string `json:"zoneVariation"`
	Inventory     string `json:"inventory"`
}

// AddProductBatch appends a group of variants, creating the parent row
// (preceded by a blank spacer row) when the group does not exist yet.
func (uc *CatalogUC) AddProductBatch(ctx context.Context, items []NewProduct) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	uc.Cache.Invalidate()

	rows, err := uc.Grid.Rows(ctx, domain.SheetProducts)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("products sheet has no header row")
	}
	hm := ResolveHeaderMap(rows[0])
	width := len(rows[0])

	first := items[0]
	catalog, err := uc.Load(ctx)
	if err != nil {
		return 0, err
	}
	parentExists := false
	for _, p := range catalog {
		if p.IsParent && strings.EqualFold(p.Name, first.Name) {
			parentExists = true
			break
		}
	}

	var rowsToAdd [][]string
	if !parentExists {
		rowsToAdd = append(rowsToAdd, make([]string, width))
		rowsToAdd = append(rowsToAdd, buildParentRow(hm, width, first))
	}

	for i, item := range items {
		rowsToAdd = append(rowsToAdd, buildChildRow(hm, width, item, i))
	}

	if err := uc.Grid.AppendRows(ctx, domain.SheetProducts, rowsToAdd); err != nil {
		return 0, fmt.Errorf("append products: %w", err)
	}

	log.Info().
		Str("group", first.Name).
		Int("variants", len(items)).
		Bool("parent_created", !parentExists).
		Msg("product batch added")

	return len(rowsToAdd), nil
}

func buildParentRow(hm HeaderMap, width int, first NewProduct) []string {
	row := make([]string, width)
	set := func(key, val string) {
		if idx := hm.Index(key); idx >= 0 && idx < width {
			row[idx] = val
		}
	}

	set("node", "Parent")
	set("brand", first.Brand)
	set("name", first.Name)
	set("category", first.Category)
	set("description", first.Description)
	set("image", first.Image)
	set("sku", first.BaseSKU)
	set("ref", first.Ref)
	set("backgroundColor", first.BackgroundColor)
	set("zoneVariation", first.ZoneVariation)
	set("commissionRate", moneyOr(first.CommissionRate, "1.5"))
	set("saleCommission", moneyOr(first.SaleCommission, "1.0"))

	textColor := first.TextColor
	if textColor == "" && first.BackgroundColor != "" {
		textColor = ContrastText(first.BackgroundColor)
	}
	set("textColor", textColor)

	// The parent's variation cells hold the attribute labels.
	set("variation", labelOr(first.Var1Name, "Variation 1"))
	set("variation2", labelOr(first.Var2Name, "Variation 2"))
	set("variation3", labelOr(first.Var3Name, "Format"))
	set("variation4", labelOr(first.Var4Name, "Units"))

	return row
}

func buildChildRow(hm HeaderMap, width int, item NewProduct, index int) []string {
	row := make([]string, width)
	set := func(key, val string) {
		if idx := hm.Index(key); idx >= 0 && idx < width {
			row[idx] = val
		}
	}

	sku := item.SKU
	if sku == "" {
		base := item.BaseSKU
		if base == "" {
			base = "SKU"
		}
		sku = fmt.Sprintf("%s-%s-%d", item.Ref, base, index+1)
	}

	set("node", "Child")
	set("brand", item.Brand)
	set("sku", sku)

	// When a parent-name column exists the group identity lives there
	// and the name cell stays blank; otherwise the name cell is the
	// only grouping key and must be populated.
	if hm.Index("parentName") >= 0 {
		set("parentName", item.Name)
	} else {
		set("name", item.Name)
	}

	set("category", item.Category)
	set("variation", item.Variation)
	set("variation2", item.Variation2)
	set("variation3", item.Variation3)
	set("variation4", item.Variation4)
	if item.Price.IsPositive() {
		set("price", item.Price.StringFixed(2))
	}
	if item.SalePrice.IsPositive() {
		set("salePrice", item.SalePrice.StringFixed(2))
	}
	if item.OnSale {
		set("onSale", "TRUE")
	}
	units := item.UnitsPerCase
	if units < 1 {
		units = 1
	}
	set("unitsPerCase", fmt.Sprintf("%d", units))
	set("ref", item.Ref)
	set("description", item.Description)
	set("image", item.Image)
	set("zoneVariation", item.ZoneVariation)
	set("commissionRate", moneyOr(item.CommissionRate, "1.5"))
	set("saleCommission", moneyOr(item.SaleCommission, "1.0"))

	inv := item.Inventory
	if inv == "" {
		inv = "0"
	}
	set("inventory", inv)

	return row
}

// GroupBase is the shared attribute set applied to every row of a
// product group during an update.
type GroupBase struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Color       string `json:"color"`
	TextColor   string `json:"textColor"`

	ZoneVariation  string          `json:"zoneVariation"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
	SaleCommission decimal.Decimal `json:"saleCommission"`

	Var1Name string `json:"var1Name"`
	Var2Name string `json:"var2Name"`
	Var3Name string `json:"var3Name"`
	Var4Name string `json:"var4Name"`
}

// UpdateProductGroup rewrites every row belonging to originalName with
// the new base attributes and per-SKU variant data, then appends any
// variants that do not exist in the sheet yet.
func (uc *CatalogUC) UpdateProductGroup(ctx context.Context, originalName string, base GroupBase, variants []NewProduct) (updated, added int, err error) {
	uc.Cache.Invalidate()

	rows, err := uc.Grid.Rows(ctx, domain.SheetProducts)
	if err != nil {
		return 0, 0, err
	}
	if len(rows) < 2 {
		return 0, 0, fmt.Errorf("products sheet is empty")
	}
	hm := ResolveHeaderMap(rows[0])
	width := len(rows[0])

	varBySKU := make(map[string]NewProduct, len(variants))
	for _, v := range variants {
		varBySKU[v.SKU] = v
	}
	skusFound := make(map[string]bool)
	target := strings.ToLower(strings.TrimSpace(originalName))

	// Children under a matched parent often have blank name cells and
	// rely on inheritance, so membership also follows the sheet layout:
	// every row below the matched parent belongs to the group until the
	// next parent or spacer row.
	underParent := false

	for i := 1; i < len(rows); i++ {
		row := padRow(rows[i], width)
		rowName := strings.ToLower(hm.Cell(row, "name"))
		rowParent := strings.ToLower(hm.Cell(row, "parentName"))
		isParentRow := strings.EqualFold(hm.Cell(row, "node"), "parent")

		if isParentRow {
			underParent = rowName == target
		} else if blankRow(row) {
			underParent = false
		}

		if rowName != target && rowParent != target && !(underParent && !isParentRow && !blankRow(row)) {
			continue
		}

		set := func(key, val string) {
			if idx := hm.Index(key); idx >= 0 && idx < width {
				row[idx] = val
			}
		}

		set("brand", base.Brand)
		set("category", base.Category)
		set("description", base.Description)
		set("image", base.Image)
		set("backgroundColor", base.Color)
		set("zoneVariation", base.ZoneVariation)
		set("commissionRate", moneyOr(base.CommissionRate, "1.5"))
		set("saleCommission", moneyOr(base.SaleCommission, "1.0"))

		if strings.EqualFold(hm.Cell(row, "node"), "parent") {
			set("name", base.Name)
			set("parentName", "")
			set("sku", "") // parents carry no purchasable SKU
			set("variation", base.Var1Name)
			set("variation2", base.Var2Name)
			set("variation3", base.Var3Name)
			set("variation4", base.Var4Name)
		} else {
			if hm.Index("parentName") >= 0 {
				set("name", "")
				set("parentName", base.Name)
			} else {
				set("name", base.Name)
			}
			sku := hm.Cell(row, "sku")
			if v, ok := varBySKU[sku]; ok && sku != "" {
				skusFound[sku] = true
				set("variation", v.Variation)
				set("variation2", v.Variation2)
				set("variation3", v.Variation3)
				set("variation4", v.Variation4)
				set("price", v.Price.StringFixed(2))
				if v.SalePrice.IsPositive() {
					set("salePrice", v.SalePrice.StringFixed(2))
				} else {
					set("salePrice", "")
				}
				if v.OnSale {
					set("onSale", "TRUE")
				} else {
					set("onSale", "")
				}
				units := v.UnitsPerCase
				if units < 1 {
					units = 1
				}
				set("unitsPerCase", fmt.Sprintf("%d", units))
			}
		}

		if err := uc.Grid.SetRow(ctx, domain.SheetProducts, i, row); err != nil {
			return len(skusFound), 0, fmt.Errorf("update product row %d: %w", i, err)
		}
	}

	var newItems []NewProduct
	for _, v := range variants {
		if !skusFound[v.SKU] {
			v.Name = base.Name
			v.Category = base.Category
			v.Description = base.Description
			v.Image = base.Image
			v.BackgroundColor = base.Color
			v.ZoneVariation = base.ZoneVariation
			v.CommissionRate = base.CommissionRate
			v.SaleCommission = base.SaleCommission
			newItems = append(newItems, v)
		}
	}
	if len(newItems) > 0 {
		if _, err := uc.AddProductBatch(ctx, newItems); err != nil {
			return len(skusFound), 0, err
		}
		added = len(newItems)
	}

	log.Info().
		Str("group", base.Name).
		Int("updated", len(skusFound)).
		Int("added", added).
		Msg("product group updated")

	return len(skusFound), added, nil
}

// ArchiveProducts moves the rows for the given SKUs onto the archive
// sheet. Archived rows disappear from the catalog but stay readable.
func (uc *CatalogUC) ArchiveProducts(ctx context.Context, skus []string) (int, error) {
	if len(skus) == 0 {
		return 0, nil
	}
	uc.Cache.Invalidate()

	rows, err := uc.Grid.Rows(ctx, domain.SheetProducts)
	if err != nil {
		return 0, err
	}
	if len(rows) < 2 {
		return 0, nil
	}
	hm := ResolveHeaderMap(rows[0])
	if hm.Index("sku") < 0 {
		return 0, fmt.Errorf("sku column not found")
	}

	want := make(map[string]bool, len(skus))
	for _, s := range skus {
		want[strings.TrimSpace(s)] = true
	}

	var moved [][]string
	var indices []int
	for i := 1; i < len(rows); i++ {
		if want[hm.Cell(rows[i], "sku")] {
			moved = append(moved, rows[i])
			indices = append(indices, i)
		}
	}
	if len(moved) == 0 {
		return 0, domain.ErrNotFound
	}

	archiveRows, err := uc.Grid.Rows(ctx, domain.SheetArchive)
	if err != nil {
		return 0, err
	}
	if len(archiveRows) == 0 {
		if err := uc.Grid.AppendRow(ctx, domain.SheetArchive, rows[0]); err != nil {
			return 0, err
		}
	}
	if err := uc.Grid.AppendRows(ctx, domain.SheetArchive, moved); err != nil {
		return 0, err
	}
	if err := uc.Grid.DeleteRows(ctx, domain.SheetProducts, indices); err != nil {
		return 0, err
	}

	log.Info().Int("archived", len(moved)).Msg("products archived")
	return len(moved), nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return append([]string(nil), row...)
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

func moneyOr(d decimal.Decimal, def string) string {
	if d.IsPositive() {
		return d.String()
	}
	return def
}

func labelOr(s, def string) string {
	if strings.TrimSpace(s) != "" {
		return s
	}
	return def
}
