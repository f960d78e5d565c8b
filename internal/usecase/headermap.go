package usecase

import "strings"

// HeaderMap binds internal field keys to column positions for one
// concrete header row. It is computed once per catalog load and passed
// around as an immutable lookup; a missing key maps to -1.
type HeaderMap struct {
	Indices    map[string]int
	Labels     map[string]string
	RawHeaders []string
}

type headerAlias struct {
	key     string
	aliases []string
}

// productHeaderKeys is ordered by priority: composite keys first so a
// substring pass cannot steal their columns ("sale commission" must win
// over "commission", "sale price" over "price").
var productHeaderKeys = []headerAlias{
	{"totalCommission", []string{"total commission", "sum commission", "calculated commission", "comm total"}},
	{"totalPcsOrdered", []string{"total pcs ordered", "total ordered", "sum qty", "pieces total"}},
	{"saleCommission", []string{"sale commission", "on sale commission", "promo commission", "commission sale"}},
	{"commissionRate", []string{"commission rate", "commission", "comm", "normal commission", "base commission"}},
	{"salePrice", []string{"sale price", "offer price", "discount price", "promo price", "sp", "promo"}},
	{"onSale", []string{"on sale", "active sale", "sale status", "sale active", "promo active", "on-sale", "on sale?", "sale active?", "sale", "sale?", "sales", "promo"}},
	{"price", []string{"unit price", "price", "regular price", "rp"}},
	{"parentName", []string{"parent name", "parent", "group name"}},
	{"zoneVariation", []string{"zone variation name", "zone variation", "zone"}},
	{"pdfRangeName", []string{"pdf range name", "range name", "range code", "rn"}},

	{"node", []string{"product node", "node", "type", "node type", "p/c", "status type", "classification"}},
	{"sku", []string{"sku", "item code", "product code"}},
	{"ref", []string{"reference character", "ref", "reference", "ref code"}},
	{"category", []string{"category", "cat", "department"}},
	{"name", []string{"product name", "name", "base name", "item name"}},

	{"unitsPerCase", []string{"units per case", "units/case", "case count", "case size", "pk size", "units", "box size"}},
	{"orderQty", []string{"order qty", "ordered", "q ordered", "current order", "qty"}},
	{"inventory", []string{"inventory", "stock", "availability", "stock level", "quantity in hand"}},
	{"status", []string{"status", "state", "active?"}},

	{"variation", []string{"variation 1", "var1", "var 1", "flavor", "strain", "flavour", "breed"}},
	{"variation2", []string{"variation 2", "var2", "var 2", "strength", "dosage", "potency"}},
	{"variation3", []string{"variation 3", "var3", "var 3", "format", "pack", "size/weight"}},
	{"variation4", []string{"variation 4", "var4", "var 4", "multiplier", "comm units"}},
	{"backgroundColor", []string{"colour", "color", "hex", "background color"}},
	{"textColor", []string{"text color", "text colour", "font color", "font colour", "txt color"}},
	{"image", []string{"image url", "img", "image", "picture"}},
	{"description", []string{"description", "desc", "product info"}},
}

// ResolveHeaderMap maps internal keys to column positions in two
// passes: exact case-insensitive alias matches, then substring matches
// over still-unassigned columns. First match wins per key, and a
// column, once assigned, is never reassigned. This keeps resolution
// working when source columns are renamed or reordered.
func ResolveHeaderMap(headers []string) HeaderMap {
	hm := HeaderMap{
		Indices:    make(map[string]int, len(productHeaderKeys)),
		Labels:     make(map[string]string, len(productHeaderKeys)),
		RawHeaders: headers,
	}
	assigned := make(map[int]bool, len(headers))

	for i, h := range headers {
		head := strings.ToLower(strings.TrimSpace(h))
		if head == "" {
			continue
		}
		for _, cfg := range productHeaderKeys {
			if !containsExact(cfg.aliases, head) {
				continue
			}
			if _, ok := hm.Indices[cfg.key]; !ok {
				hm.Indices[cfg.key] = i
				hm.Labels[cfg.key] = strings.TrimSpace(h)
				assigned[i] = true
			}
			break
		}
	}

	for i, h := range headers {
		if assigned[i] {
			continue
		}
		head := strings.ToLower(strings.TrimSpace(h))
		if head == "" {
			continue
		}
		for _, cfg := range productHeaderKeys {
			if !containsSubstring(cfg.aliases, head) {
				continue
			}
			if _, ok := hm.Indices[cfg.key]; !ok {
				hm.Indices[cfg.key] = i
				hm.Labels[cfg.key] = strings.TrimSpace(h)
				assigned[i] = true
			}
			break
		}
	}

	return hm
}

func containsExact(aliases []string, head string) bool {
	for _, a := range aliases {
		if a == head {
			return true
		}
	}
	return false
}

func containsSubstring(aliases []string, head string) bool {
	for _, a := range aliases {
		if strings.Contains(head, a) {
			return true
		}
	}
	return false
}

// Cell returns the trimmed cell for an internal key, or "" when the key
// has no column or the row is short.
func (hm HeaderMap) Cell(row []string, key string) string {
	idx, ok := hm.Indices[key]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Index returns the column for a key, -1 when unmapped.
func (hm HeaderMap) Index(key string) int {
	idx, ok := hm.Indices[key]
	if !ok {
		return -1
	}
	return idx
}
