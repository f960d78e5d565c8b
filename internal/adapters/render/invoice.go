// Package render writes printable invoice documents for committed
// orders.
package render

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marshallsbest/OrderSystem/internal/domain"
)

// HTMLRenderer writes one self-contained HTML document per committed
// order into Dir and returns a file URL to it.
type HTMLRenderer struct {
	Dir  string
	tmpl *template.Template
}

func NewHTMLRenderer(dir string) (*HTMLRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact dir: %w", err)
	}
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	}).Parse(invoiceTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &HTMLRenderer{Dir: dir, tmpl: tmpl}, nil
}

type invoiceLine struct {
	SKU      string
	Quantity int
	Price    decimal.Decimal
	Subtotal decimal.Decimal
	OnSale   bool
}

type invoiceView struct {
	Title      string
	InvoiceID  string
	Revision   string
	ClientName string
	Address    string
	Comment    string
	DateLabel  string
	Lines      []invoiceLine
	Total      decimal.Decimal
}

func (r *HTMLRenderer) Render(_ context.Context, inv domain.Invoice) (string, error) {
	view := invoiceView{
		Title:      "Invoice " + inv.InvoiceID,
		InvoiceID:  inv.InvoiceID,
		ClientName: inv.ClientName,
		Address:    inv.Address,
		Comment:    inv.Comment,
		DateLabel:  ordinalDate(inv.Date),
		Total:      inv.Total,
	}
	if inv.RevisionLabel != domain.RevisionOriginal {
		view.Revision = inv.RevisionLabel
	}
	for _, item := range inv.Items {
		view.Lines = append(view.Lines, invoiceLine{
			SKU:      item.SKU,
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
			Subtotal: item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			OnSale:   item.WasOnSale,
		})
	}

	name := inv.InvoiceID
	if view.Revision != "" {
		name += "-" + strings.ReplaceAll(view.Revision, ":", "")
	}
	path := filepath.Join(r.Dir, sanitizeName(name)+".html")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	defer f.Close()

	if err := r.tmpl.Execute(f, view); err != nil {
		return "", fmt.Errorf("render invoice: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + abs, nil
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '-'
	}, s)
}

// ordinalDate formats like "September 1st, 2026".
func ordinalDate(t time.Time) string {
	day := t.Day()
	suffix := "th"
	switch {
	case day%100 >= 11 && day%100 <= 13:
	case day%10 == 1:
		suffix = "st"
	case day%10 == 2:
		suffix = "nd"
	case day%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%s %d%s, %d", t.Month().String(), day, suffix, t.Year())
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, serif; margin: 40px; color: #222; }
  h1 { font-size: 22px; margin-bottom: 0; }
  .meta { color: #666; margin-bottom: 24px; }
  table { width: 100%; border-collapse: collapse; }
  th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ddd; }
  th { background: #f4f4f4; }
  td.num, th.num { text-align: right; }
  .sale { color: #b00; font-size: 11px; }
  .total { font-weight: bold; font-size: 16px; }
  .comment { margin-top: 20px; font-style: italic; color: #444; }
</style>
</head>
<body>
<h1>{{.Title}}{{if .Revision}} <small>({{.Revision}})</small>{{end}}</h1>
<div class="meta">
  {{.DateLabel}}<br>
  {{.ClientName}}{{if .Address}}<br>{{.Address}}{{end}}
</div>
<table>
  <tr><th>SKU</th><th class="num">Qty</th><th class="num">Unit</th><th class="num">Subtotal</th></tr>
  {{range .Lines}}
  <tr>
    <td>{{.SKU}}{{if .OnSale}} <span class="sale">SALE</span>{{end}}</td>
    <td class="num">{{.Quantity}}</td>
    <td class="num">{{money .Price}}</td>
    <td class="num">{{money .Subtotal}}</td>
  </tr>
  {{end}}
  <tr><td colspan="3" class="total">Total</td><td class="num total">{{money .Total}}</td></tr>
</table>
{{if .Comment}}<div class="comment">{{.Comment}}</div>{{end}}
</body>
</html>
`

var _ domain.InvoiceRenderer = (*HTMLRenderer)(nil)
