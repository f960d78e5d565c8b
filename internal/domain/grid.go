package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Sheet names used across the grid backends.
const (
	SheetProducts = "PRODUCTS"
	SheetOrders   = "ORDERS"
	SheetClients  = "CLIENT DATA"
	SheetArchive  = "DELETED_PRODUCTS"
)

// OrdersHeader is the expected ledger header row, checked at startup.
var OrdersHeader = []string{
	"Version", "INVOICE_NUMBER", "TIME STAMP", "TOTAL UNITS",
	"COMMISSION", "TOTAL", "CLIENT", "COMMENT", "ADDRESS",
}

// Grid is a tabular 2-D value store with named sheets. Row 0 is the
// header row (the client sheet uses two header rows; callers slice).
// AppendRow must write the whole row as a single operation.
type Grid interface {
	Rows(ctx context.Context, sheet string) ([][]string, error)
	AppendRow(ctx context.Context, sheet string, row []string) error
	AppendRows(ctx context.Context, sheet string, rows [][]string) error
	// SetRow replaces the row at a 0-based absolute index.
	SetRow(ctx context.Context, sheet string, index int, row []string) error
	// DeleteRows removes rows at 0-based absolute indices.
	DeleteRows(ctx context.Context, sheet string, indices []int) error
}

// ClientDirectory resolves client identifiers to directory records.
// A missing id is an ErrNotFound condition for order commits.
type ClientDirectory interface {
	GetByID(ctx context.Context, id string) (*Client, error)
}

// Invoice is the input to the document rendering collaborator.
type Invoice struct {
	InvoiceID     string
	RevisionLabel string
	ClientName    string
	Address       string
	Comment       string
	Date          time.Time
	Total         decimal.Decimal
	Items         []LineItem
}

// InvoiceRenderer produces a document artifact for a committed order
// and returns a reference to it. Failures are swallowed by the commit
// path; rendering never blocks or rolls back a commit.
type InvoiceRenderer interface {
	Render(ctx context.Context, inv Invoice) (string, error)
}
