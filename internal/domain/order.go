package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger row layout. Columns 0-8 are fixed; columns 9+ each hold one
// encoded line item token.
const (
	ColRevision = iota
	ColInvoice
	ColTimestamp
	ColTotalPieces
	ColTotalCommission
	ColTotalAmount
	ColClient
	ColComment
	ColAddress
	ColItemsStart
)

const RevisionOriginal = "Original"

// LineItem is one SKU/quantity/price/sale-flag entry within an order.
// It is encoded once into its ledger row and decoded on every read.
type LineItem struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	WasOnSale bool            `json:"wasOnSale"`
}

// Token encodes the item as [{qty}|@{sku}|${price}|{T|F}]. SKUs
// containing '|' or ']' would corrupt the token; ValidSKU rejects them
// before an order reaches encoding.
func (li LineItem) Token() string {
	flag := "F"
	if li.WasOnSale {
		flag = "T"
	}
	return fmt.Sprintf("[%d|@%s|$%s|%s]", li.Quantity, li.SKU, li.UnitPrice.StringFixed(2), flag)
}

// ValidSKU reports whether a SKU is safe to embed in a line item token.
func ValidSKU(sku string) bool {
	return sku != "" && !strings.ContainsAny(sku, "|]")
}

// ParseLineItemToken is the tolerant decoder for ledger item cells.
// Tokens lacking the minimal [qty|@sku| shape yield ok=false; callers
// skip those cells rather than failing the row.
func ParseLineItemToken(token string) (LineItem, bool) {
	if !strings.Contains(token, "[") || !strings.Contains(token, "|") {
		return LineItem{}, false
	}
	s := strings.NewReplacer("[", "", "]", "").Replace(token)
	parts := strings.Split(s, "|")
	if len(parts) < 2 {
		return LineItem{}, false
	}
	qty, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return LineItem{}, false
	}
	sku := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[1]), "@"))
	if sku == "" {
		return LineItem{}, false
	}
	price := decimal.Zero
	if len(parts) > 2 {
		raw := strings.TrimPrefix(strings.TrimSpace(parts[2]), "$")
		if p, err := decimal.NewFromString(raw); err == nil {
			price = p
		}
	}
	sale := len(parts) > 3 && strings.TrimSpace(parts[3]) == "T"
	return LineItem{SKU: sku, Quantity: qty, UnitPrice: price, WasOnSale: sale}, true
}

// OrderRecord is one committed ledger row. Rows are append-only: an
// edit produces a new row with the same invoice id and an incremented
// revision number, never a mutation.
type OrderRecord struct {
	RevisionLabel   string          `json:"revisionLabel"`
	InvoiceID       string          `json:"invoiceId"`
	Timestamp       time.Time       `json:"timestamp"`
	TotalPieces     int             `json:"totalPieces"`
	TotalCommission decimal.Decimal `json:"totalCommission"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ClientName      string          `json:"clientName"`
	Comment         string          `json:"comment"`
	Address         string          `json:"address"`
	Items           []LineItem      `json:"items"`
}

// Row flattens the record into the ledger's wire layout.
func (r OrderRecord) Row() []string {
	row := []string{
		r.RevisionLabel,
		r.InvoiceID,
		r.Timestamp.Format(time.RFC3339),
		strconv.Itoa(r.TotalPieces),
		r.TotalCommission.StringFixed(2),
		r.TotalAmount.StringFixed(2),
		r.ClientName,
		r.Comment,
		r.Address,
	}
	for _, it := range r.Items {
		row = append(row, it.Token())
	}
	return row
}

var revPrefixRe = regexp.MustCompile(`^Rev:\d+\s*`)

// BaseInvoiceID strips a leading "Rev:N" prefix from an invoice
// reference so revision scans always key on the original id.
func BaseInvoiceID(id string) string {
	return strings.TrimSpace(revPrefixRe.ReplaceAllString(strings.TrimSpace(id), ""))
}

// RevisionNumber extracts N from a "Rev:N" label, 0 otherwise.
func RevisionNumber(label string) int {
	if !strings.HasPrefix(label, "Rev:") {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimPrefix(label, "Rev:"))
	return n
}

// OrderLine is one requested line before catalog pricing.
type OrderLine struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// OrderRequest is the input to a ledger commit. EditOrderID, when set,
// marks the request as a revision of an existing invoice.
type OrderRequest struct {
	ClientID    string      `json:"clientId"`
	ClientName  string      `json:"clientName"`
	Comment     string      `json:"comment"`
	Address     string      `json:"address"`
	EditOrderID string      `json:"editOrderId"`
	Lines       []OrderLine `json:"lines"`
}
